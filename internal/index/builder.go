package index

import (
	"time"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/stopword"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
)

// BuildConfig controls a build. The zero value uses the default tokenizer
// and the stock stopword set.
type BuildConfig struct {
	Tokenizer tokenizer.Config
	// Stopwords filters body text only; titles and object names are always
	// indexed unfiltered. Nil selects stopword.Default().
	Stopwords stopword.Set
	// Stamp identifies the corpus version this snapshot was built from.
	// Empty defaults to the build time in RFC 3339.
	Stamp string
}

// Build constructs a Snapshot from the full document and object collections
// in a single pass. It never fails on empty titles, empty bodies, or
// documents without objects; it fails fast on duplicate document
// identifiers and on objects referencing unknown documents, returning no
// partial snapshot.
func Build(docs []Document, objects []Object, cfg BuildConfig) (*Snapshot, error) {
	stops := cfg.Stopwords
	if stops == nil {
		stops = stopword.Default()
	}
	stamp := cfg.Stamp
	if stamp == "" {
		stamp = time.Now().UTC().Format(time.RFC3339)
	}

	t := Tables{
		Stamp:       stamp,
		Tokenizer:   cfg.Tokenizer,
		Docs:        make([]DocumentRef, 0, len(docs)),
		Objects:     make([]ObjectRef, 0, len(objects)),
		TitleDocs:   make(map[string][]int),
		BodyDocs:    make(map[string][]BodyPosting),
		ObjectPosts: make(map[string][]int),
	}

	ordinals := make(map[string]int, len(docs))
	for i, doc := range docs {
		if _, seen := ordinals[doc.ID]; seen {
			return nil, &DuplicateIdentifierError{ID: doc.ID}
		}
		ordinals[doc.ID] = i

		ref := doc.Ref
		if ref == "" {
			ref = doc.ID
		}
		t.Docs = append(t.Docs, DocumentRef{ID: doc.ID, Title: doc.Title, Ref: ref})

		// Title terms: set-union semantics, never stopword-filtered.
		seenTitle := make(map[string]struct{})
		for _, tok := range tokenizer.Tokenize(doc.Title, cfg.Tokenizer) {
			if _, dup := seenTitle[tok.Term]; dup {
				continue
			}
			seenTitle[tok.Term] = struct{}{}
			t.TitleDocs[tok.Term] = append(t.TitleDocs[tok.Term], i)
		}

		// Body terms: stopword-filtered, weighted by occurrence count.
		counts := make(map[string]int)
		for _, tok := range stops.Filter(tokenizer.Tokenize(doc.Body, cfg.Tokenizer)) {
			counts[tok.Term]++
		}
		for term, n := range counts {
			t.BodyDocs[term] = append(t.BodyDocs[term], BodyPosting{Doc: i, Weight: n})
		}
	}

	for _, obj := range objects {
		docOrd, ok := ordinals[obj.DocID]
		if !ok {
			return nil, &InvalidObjectReferenceError{Name: obj.Name, DocID: obj.DocID}
		}
		objOrd := len(t.Objects)
		t.Objects = append(t.Objects, ObjectRef{
			Name:   obj.Name,
			Doc:    docOrd,
			Anchor: obj.Anchor,
			Kind:   obj.Kind,
		})

		seenName := make(map[string]struct{})
		for _, tok := range tokenizer.Tokenize(obj.Name, cfg.Tokenizer) {
			if _, dup := seenName[tok.Term]; dup {
				continue
			}
			seenName[tok.Term] = struct{}{}
			t.ObjectPosts[tok.Term] = append(t.ObjectPosts[tok.Term], objOrd)
		}
	}

	return FromTables(t)
}
