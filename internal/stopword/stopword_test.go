package stopword

import (
	"reflect"
	"testing"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
)

func TestFilter(t *testing.T) {
	set := Default()
	tokens := tokenizer.Tokenize("the mechanism and the composition", tokenizer.Config{})
	got := set.Filter(tokens)

	terms := make([]string, 0, len(got))
	for _, tok := range got {
		terms = append(terms, tok.Term)
	}
	want := []string{"mechanism", "composition"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("filtered terms = %v, want %v", terms, want)
	}
}

func TestFilterEmptySetIsIdentity(t *testing.T) {
	tokens := tokenizer.Tokenize("the quick brown fox", tokenizer.Config{})
	got := Set{}.Filter(tokens)
	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("empty set changed tokens: %v", got)
	}
}

func TestExtend(t *testing.T) {
	set := New("mechanism").Extend("composition")
	if !set.Contains("mechanism") || !set.Contains("composition") {
		t.Error("extended set missing expected words")
	}
	base := New("mechanism")
	extended := base.Extend("composition")
	if base.Contains("composition") {
		t.Error("Extend mutated the receiver")
	}
	if len(extended) != 2 {
		t.Errorf("extended set has %d entries, want 2", len(extended))
	}
}

func TestDefaultContainsFunctionWords(t *testing.T) {
	set := Default()
	for _, w := range []string{"the", "and", "of", "with"} {
		if !set.Contains(w) {
			t.Errorf("default set missing %q", w)
		}
	}
	if set.Contains("mechanism") {
		t.Error("default set should not contain content words")
	}
}
