package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
)

// Snapshot is one fully-built, immutable version of the index. It is safe
// for any number of concurrent readers; rebuilding the corpus produces a
// fresh Snapshot that callers swap in atomically.
type Snapshot struct {
	stamp     string
	tokenizer tokenizer.Config

	docs    []DocumentRef
	objects []ObjectRef

	titleDocs   map[string][]int
	bodyDocs    map[string][]BodyPosting
	objectPosts map[string][]int

	// Sorted term slices backing prefix scans over each postings mapping.
	titleTerms  []string
	bodyTerms   []string
	objectTerms []string
}

// Tables is the raw, exported content of a Snapshot. The builder produces
// one and the codec round-trips one; everything else should use Snapshot's
// read accessors.
type Tables struct {
	Stamp       string
	Tokenizer   tokenizer.Config
	Docs        []DocumentRef
	Objects     []ObjectRef
	TitleDocs   map[string][]int
	BodyDocs    map[string][]BodyPosting
	ObjectPosts map[string][]int
}

// FromTables validates t and freezes it into a Snapshot. All postings must
// reference in-range ordinals; body weights must be positive. The input is
// deep-copied, so later mutation of t cannot leak into the Snapshot.
func FromTables(t Tables) (*Snapshot, error) {
	s := &Snapshot{
		stamp:       t.Stamp,
		tokenizer:   t.Tokenizer,
		docs:        append([]DocumentRef(nil), t.Docs...),
		objects:     append([]ObjectRef(nil), t.Objects...),
		titleDocs:   make(map[string][]int, len(t.TitleDocs)),
		bodyDocs:    make(map[string][]BodyPosting, len(t.BodyDocs)),
		objectPosts: make(map[string][]int, len(t.ObjectPosts)),
	}
	for i, obj := range s.objects {
		if obj.Doc < 0 || obj.Doc >= len(s.docs) {
			return nil, fmt.Errorf("object %d (%q) references document ordinal %d out of range", i, obj.Name, obj.Doc)
		}
	}
	for term, docs := range t.TitleDocs {
		sorted := append([]int(nil), docs...)
		sort.Ints(sorted)
		for _, d := range sorted {
			if d < 0 || d >= len(s.docs) {
				return nil, fmt.Errorf("title postings for %q reference document ordinal %d out of range", term, d)
			}
		}
		s.titleDocs[term] = sorted
		s.titleTerms = append(s.titleTerms, term)
	}
	for term, posts := range t.BodyDocs {
		sorted := append([]BodyPosting(nil), posts...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Doc < sorted[j].Doc })
		for _, p := range sorted {
			if p.Doc < 0 || p.Doc >= len(s.docs) {
				return nil, fmt.Errorf("body postings for %q reference document ordinal %d out of range", term, p.Doc)
			}
			if p.Weight <= 0 {
				return nil, fmt.Errorf("body postings for %q carry non-positive weight %d", term, p.Weight)
			}
		}
		s.bodyDocs[term] = sorted
		s.bodyTerms = append(s.bodyTerms, term)
	}
	for term, objs := range t.ObjectPosts {
		sorted := append([]int(nil), objs...)
		sort.Ints(sorted)
		for _, o := range sorted {
			if o < 0 || o >= len(s.objects) {
				return nil, fmt.Errorf("object postings for %q reference object ordinal %d out of range", term, o)
			}
		}
		s.objectPosts[term] = sorted
		s.objectTerms = append(s.objectTerms, term)
	}
	sort.Strings(s.titleTerms)
	sort.Strings(s.bodyTerms)
	sort.Strings(s.objectTerms)
	return s, nil
}

// Tables returns a deep copy of the snapshot's content for encoding.
func (s *Snapshot) Tables() Tables {
	t := Tables{
		Stamp:       s.stamp,
		Tokenizer:   s.tokenizer,
		Docs:        append([]DocumentRef(nil), s.docs...),
		Objects:     append([]ObjectRef(nil), s.objects...),
		TitleDocs:   make(map[string][]int, len(s.titleDocs)),
		BodyDocs:    make(map[string][]BodyPosting, len(s.bodyDocs)),
		ObjectPosts: make(map[string][]int, len(s.objectPosts)),
	}
	for term, docs := range s.titleDocs {
		t.TitleDocs[term] = append([]int(nil), docs...)
	}
	for term, posts := range s.bodyDocs {
		t.BodyDocs[term] = append([]BodyPosting(nil), posts...)
	}
	for term, objs := range s.objectPosts {
		t.ObjectPosts[term] = append([]int(nil), objs...)
	}
	return t
}

// Stamp returns the corpus build stamp.
func (s *Snapshot) Stamp() string { return s.stamp }

// TokenizerConfig returns the tokenizer configuration the snapshot was built
// with. Queries must be tokenized with the same configuration.
func (s *Snapshot) TokenizerConfig() tokenizer.Config { return s.tokenizer }

// DocCount returns the number of documents in the snapshot.
func (s *Snapshot) DocCount() int { return len(s.docs) }

// ObjectCount returns the number of objects in the snapshot.
func (s *Snapshot) ObjectCount() int { return len(s.objects) }

// TermCount returns the number of distinct indexed terms across the three
// postings mappings.
func (s *Snapshot) TermCount() int {
	distinct := make(map[string]struct{}, len(s.bodyTerms))
	for _, t := range s.titleTerms {
		distinct[t] = struct{}{}
	}
	for _, t := range s.bodyTerms {
		distinct[t] = struct{}{}
	}
	for _, t := range s.objectTerms {
		distinct[t] = struct{}{}
	}
	return len(distinct)
}

// Doc returns the document at ordinal i.
func (s *Snapshot) Doc(i int) DocumentRef { return s.docs[i] }

// Object returns the object at ordinal i.
func (s *Snapshot) Object(i int) ObjectRef { return s.objects[i] }

// TitleDocs returns the ordinals of documents whose title contains term.
// The returned slice must not be modified.
func (s *Snapshot) TitleDocs(term string) []int { return s.titleDocs[term] }

// BodyPostings returns the weighted body postings for term. The returned
// slice must not be modified.
func (s *Snapshot) BodyPostings(term string) []BodyPosting { return s.bodyDocs[term] }

// ObjectPostings returns the ordinals of objects whose name contains term.
// The returned slice must not be modified.
func (s *Snapshot) ObjectPostings(term string) []int { return s.objectPosts[term] }

// TitleTermsWithPrefix returns, in lexical order, every indexed title term
// that starts with prefix (including prefix itself if indexed).
func (s *Snapshot) TitleTermsWithPrefix(prefix string) []string {
	return termsWithPrefix(s.titleTerms, prefix)
}

// BodyTermsWithPrefix returns every indexed body term starting with prefix.
func (s *Snapshot) BodyTermsWithPrefix(prefix string) []string {
	return termsWithPrefix(s.bodyTerms, prefix)
}

// ObjectTermsWithPrefix returns every indexed object term starting with
// prefix.
func (s *Snapshot) ObjectTermsWithPrefix(prefix string) []string {
	return termsWithPrefix(s.objectTerms, prefix)
}

func termsWithPrefix(sorted []string, prefix string) []string {
	if prefix == "" {
		return nil
	}
	start := sort.SearchStrings(sorted, prefix)
	var out []string
	for i := start; i < len(sorted) && strings.HasPrefix(sorted[i], prefix); i++ {
		out = append(out, sorted[i])
	}
	return out
}
