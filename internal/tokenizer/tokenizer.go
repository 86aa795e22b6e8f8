// Package tokenizer turns raw text into normalised search terms. The same
// tokenizer configuration must be used when building an index and when
// evaluating a query against it; any divergence breaks term matching.
package tokenizer

import (
	"strings"
	"unicode"
)

// Config controls tokenization. The zero value is the default used for
// documentation corpora: hyphens and underscores split compound words.
type Config struct {
	// PreserveCompound keeps hyphens and underscores inside tokens, so
	// "log_softmax" indexes as one term instead of two.
	PreserveCompound bool
}

// Token is a single normalised term and its ordinal position in the
// tokenized text.
type Token struct {
	Term     string
	Position int
}

// Tokenize splits text into lower-cased tokens. Runs of separators collapse,
// so the output never contains empty terms. Tokenize is a pure function of
// its inputs and always produces the same sequence for the same text.
func Tokenize(text string, cfg Config) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		if cfg.PreserveCompound && (r == '-' || r == '_') {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if cfg.PreserveCompound {
			// A run of bare separators is not a term.
			word = strings.Trim(word, "-_")
			if word == "" {
				continue
			}
		}
		tokens = append(tokens, Token{Term: word, Position: pos})
		pos++
	}
	return tokens
}

// Terms is a convenience wrapper around Tokenize that discards positions.
func Terms(text string, cfg Config) []string {
	tokens := Tokenize(text, cfg)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
