// Package stopword filters high-frequency, low-information terms out of body
// text before it is indexed. Titles and object names are never filtered, so
// a short API symbol stays searchable even when it collides with a stopword.
package stopword

import "github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"

// Set is a stopword membership set keyed by normalised term.
type Set map[string]struct{}

var defaultWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "can",
	"do", "each", "for", "from", "had", "has", "have", "he", "if",
	"in", "is", "it", "its", "no", "not", "of", "on", "or", "so",
	"that", "the", "their", "they", "this", "to", "was", "were",
	"what", "when", "where", "which", "who", "will", "with",
}

// Default returns the stock English stopword set.
func Default() Set {
	return New(defaultWords...)
}

// New builds a Set from the given words. Words are assumed to already be
// normalised the way the tokenizer normalises terms.
func New(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Extend returns a copy of s with the extra words added.
func (s Set) Extend(words ...string) Set {
	out := make(Set, len(s)+len(words))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// Contains reports whether term is a stopword.
func (s Set) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Filter returns the tokens whose terms are not in the set, preserving
// order. Positions are kept as assigned by the tokenizer.
func (s Set) Filter(tokens []tokenizer.Token) []tokenizer.Token {
	if len(s) == 0 {
		return tokens
	}
	out := make([]tokenizer.Token, 0, len(tokens))
	for _, tok := range tokens {
		if s.Contains(tok.Term) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
