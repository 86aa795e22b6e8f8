// Package codec encodes index snapshots into the distributable on-wire form
// and decodes them back. The payload is framed by a fixed binary header
// carrying a magic number, the format version, the payload length, and a
// CRC-32 of the payload, so a reader can reject truncation, corruption, and
// version skew before touching the content. The payload itself is compact
// JSON: documents and objects are referenced by ordinal and postings are
// keyed by position in a shared sorted term table instead of repeating term
// strings per mapping.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"sort"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
)

const (
	// Magic identifies an encoded snapshot ("PNDX").
	Magic uint32 = 0x504e4458
	// FormatVersion is the current payload format. Decoders reject any
	// other version rather than misinterpreting bytes.
	FormatVersion uint32 = 1

	headerSize = 20
)

type payload struct {
	Stamp            string     `json:"stamp"`
	PreserveCompound bool       `json:"preserve_compound,omitempty"`
	Docs             []docRow   `json:"docs"`
	Objects          []objRow   `json:"objects"`
	Terms            []string   `json:"terms"`
	Titles           [][]int    `json:"titles"`
	Bodies           [][][2]int `json:"bodies"`
	ObjectPosts      [][]int    `json:"object_posts"`
}

type docRow struct {
	ID    string `json:"i"`
	Title string `json:"t"`
	Ref   string `json:"r"`
}

type objRow struct {
	Name   string `json:"n"`
	Doc    int    `json:"d"`
	Anchor string `json:"a,omitempty"`
	Kind   string `json:"k,omitempty"`
}

// Encode serialises a snapshot. Decode(Encode(s)) is structurally equal to
// s: same documents, objects, and postings content.
func Encode(s *index.Snapshot) ([]byte, error) {
	t := s.Tables()

	termSet := make(map[string]struct{}, len(t.BodyDocs))
	for term := range t.TitleDocs {
		termSet[term] = struct{}{}
	}
	for term := range t.BodyDocs {
		termSet[term] = struct{}{}
	}
	for term := range t.ObjectPosts {
		termSet[term] = struct{}{}
	}
	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	p := payload{
		Stamp:            t.Stamp,
		PreserveCompound: t.Tokenizer.PreserveCompound,
		Docs:             make([]docRow, len(t.Docs)),
		Objects:          make([]objRow, len(t.Objects)),
		Terms:            terms,
		Titles:           make([][]int, len(terms)),
		Bodies:           make([][][2]int, len(terms)),
		ObjectPosts:      make([][]int, len(terms)),
	}
	for i, d := range t.Docs {
		p.Docs[i] = docRow{ID: d.ID, Title: d.Title, Ref: d.Ref}
	}
	for i, o := range t.Objects {
		p.Objects[i] = objRow{Name: o.Name, Doc: o.Doc, Anchor: o.Anchor, Kind: o.Kind}
	}
	for i, term := range terms {
		p.Titles[i] = t.TitleDocs[term]
		for _, bp := range t.BodyDocs[term] {
			p.Bodies[i] = append(p.Bodies[i], [2]int{bp.Doc, bp.Weight})
		}
		p.ObjectPosts[i] = t.ObjectPosts[term]
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return frame(body), nil
}

// frame prepends the binary header to an encoded payload.
func frame(body []byte) []byte {
	out := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], Magic)
	binary.LittleEndian.PutUint32(out[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(out[8:16], uint64(len(body)))
	binary.LittleEndian.PutUint32(out[16:20], crc32.ChecksumIEEE(body))
	copy(out[headerSize:], body)
	return out
}

// Decode parses an encoded snapshot. Malformed or corrupt input yields a
// MalformedIndexError and a format-version mismatch yields an
// UnsupportedVersionError; in either case no partial snapshot is returned.
func Decode(data []byte) (*index.Snapshot, error) {
	if len(data) < headerSize {
		return nil, &MalformedIndexError{Reason: "payload shorter than header"}
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != Magic {
		return nil, &MalformedIndexError{Reason: "bad magic number"}
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return nil, &UnsupportedVersionError{Got: version, Supported: FormatVersion}
	}
	length := binary.LittleEndian.Uint64(data[8:16])
	body := data[headerSize:]
	if uint64(len(body)) != length {
		return nil, &MalformedIndexError{Reason: "payload length mismatch"}
	}
	if sum := binary.LittleEndian.Uint32(data[16:20]); sum != crc32.ChecksumIEEE(body) {
		return nil, &MalformedIndexError{Reason: "checksum mismatch"}
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &MalformedIndexError{Reason: "invalid payload encoding", cause: err}
	}
	if len(p.Titles) != len(p.Terms) || len(p.Bodies) != len(p.Terms) || len(p.ObjectPosts) != len(p.Terms) {
		return nil, &MalformedIndexError{Reason: "postings tables misaligned with term table"}
	}

	t := index.Tables{
		Stamp:       p.Stamp,
		Tokenizer:   tokenizer.Config{PreserveCompound: p.PreserveCompound},
		Docs:        make([]index.DocumentRef, len(p.Docs)),
		Objects:     make([]index.ObjectRef, len(p.Objects)),
		TitleDocs:   make(map[string][]int),
		BodyDocs:    make(map[string][]index.BodyPosting),
		ObjectPosts: make(map[string][]int),
	}
	for i, d := range p.Docs {
		t.Docs[i] = index.DocumentRef{ID: d.ID, Title: d.Title, Ref: d.Ref}
	}
	for i, o := range p.Objects {
		t.Objects[i] = index.ObjectRef{Name: o.Name, Doc: o.Doc, Anchor: o.Anchor, Kind: o.Kind}
	}
	for i, term := range p.Terms {
		if len(p.Titles[i]) > 0 {
			t.TitleDocs[term] = p.Titles[i]
		}
		if len(p.Bodies[i]) > 0 {
			posts := make([]index.BodyPosting, len(p.Bodies[i]))
			for j, pair := range p.Bodies[i] {
				posts[j] = index.BodyPosting{Doc: pair[0], Weight: pair[1]}
			}
			t.BodyDocs[term] = posts
		}
		if len(p.ObjectPosts[i]) > 0 {
			t.ObjectPosts[term] = p.ObjectPosts[i]
		}
	}

	snap, err := index.FromTables(t)
	if err != nil {
		return nil, &MalformedIndexError{Reason: "inconsistent postings", cause: err}
	}
	return snap, nil
}
