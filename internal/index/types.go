// Package index builds immutable, queryable snapshots of a documentation
// corpus. A snapshot holds the documents table, the objects table, and three
// postings mappings: term to title documents, term to weighted body
// documents, and term to objects. Snapshots are built wholesale; there is no
// incremental mutation path.
package index

// Document is one indexable page of the corpus as delivered by the
// documentation generator. Body text is consumed during the build and is
// not retained in the snapshot.
type Document struct {
	// ID is the stable, corpus-unique identifier, typically the page path
	// such as "core/components/mechanisms/mechanism".
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	// Ref is the canonical link target for the rendered page. Empty Ref
	// falls back to ID.
	Ref string `json:"ref,omitempty"`
}

// Object is a named API symbol (class, function, attribute) owned by exactly
// one document. Objects have no independent lifecycle; they disappear with
// their owning document on rebuild.
type Object struct {
	Name   string `json:"name"`
	DocID  string `json:"doc"`
	Anchor string `json:"anchor,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// DocumentRef is the per-document row kept in the snapshot after the body
// text has been discarded.
type DocumentRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Ref   string `json:"ref"`
}

// ObjectRef is the per-object row kept in the snapshot. Doc is the ordinal
// of the owning document in the documents table.
type ObjectRef struct {
	Name   string `json:"name"`
	Doc    int    `json:"doc"`
	Anchor string `json:"anchor,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// BodyPosting is one weighted entry in a body postings list. Weight is the
// raw occurrence count of the term in the document body, which keeps the
// weight monotonic in term frequency.
type BodyPosting struct {
	Doc    int `json:"d"`
	Weight int `json:"w"`
}
