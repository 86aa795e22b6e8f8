package index

import "fmt"

// DuplicateIdentifierError reports two input documents sharing an
// identifier. The build fails rather than silently overwriting, since the
// discarded document's postings would be corrupted.
type DuplicateIdentifierError struct {
	ID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate document identifier %q", e.ID)
}

// InvalidObjectReferenceError reports an object whose owning document does
// not exist in the corpus.
type InvalidObjectReferenceError struct {
	Name  string
	DocID string
}

func (e *InvalidObjectReferenceError) Error() string {
	return fmt.Sprintf("object %q references unknown document %q", e.Name, e.DocID)
}
