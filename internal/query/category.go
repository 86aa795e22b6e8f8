package query

import "encoding/json"

// Category identifies where and how a query term matched.
type Category int

const (
	TitleExact Category = iota
	ObjectExact
	TitlePrefix
	ObjectPrefix
	BodyExact
	BodyPrefix
)

var categoryNames = map[Category]string{
	TitleExact:   "title_exact",
	ObjectExact:  "object_exact",
	TitlePrefix:  "title_prefix",
	ObjectPrefix: "object_prefix",
	BodyExact:    "body_exact",
	BodyPrefix:   "body_prefix",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders categories as their stable string names so the result
// payload is self-describing for the UI.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the same string names, so cached results survive a
// round trip through the query cache.
func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cat, n := range categoryNames {
		if n == name {
			*c = cat
			return nil
		}
	}
	*c = -1
	return nil
}
