// Package query evaluates free-text queries against an index snapshot. A
// query is tokenized exactly like the corpus was at build time, each term is
// resolved independently against the title, object, and body postings (exact
// and prefix), and a document qualifies only when every query term matches
// it somewhere. Evaluation never mutates the snapshot, so any number of
// callers may search the same snapshot concurrently.
package query

import (
	"sort"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
)

// Category weights. The ordering is contractual: titles outrank objects,
// objects outrank bodies, and within each category an exact match outranks
// a prefix match. Body exact contributions additionally scale with the
// stored term frequency.
const (
	weightTitleExact   = 16.0
	weightObjectExact  = 12.0
	weightTitlePrefix  = 8.0
	weightObjectPrefix = 6.0
	weightBodyExact    = 2.0
	weightBodyPrefix   = 0.5
)

// Match records that a query term matched an indexed term in one category
// of one result document. The UI uses it to decide what to highlight.
type Match struct {
	QueryTerm string   `json:"query_term"`
	IndexTerm string   `json:"index_term"`
	Category  Category `json:"category"`
	// Object is the matched object's ordinal for the two object
	// categories, -1 otherwise.
	Object int `json:"object"`
}

// ScoredResult is one ranked search hit.
type ScoredResult struct {
	Document index.DocumentRef `json:"document"`
	Score    float64           `json:"score"`
	Matches  []Match           `json:"matches"`
}

// Search resolves a raw query string against the snapshot and returns hits
// ordered by descending score, ties broken by ascending document
// identifier. An empty query, or one whose terms match nothing, yields an
// empty result set rather than an error.
func Search(rawQuery string, snap *index.Snapshot) []ScoredResult {
	terms := queryTerms(rawQuery, snap.TokenizerConfig())
	if len(terms) == 0 {
		return nil
	}

	// Per-document running state across terms. A document survives only if
	// every term contributed to it.
	scores := make(map[int]float64)
	matches := make(map[int][]Match)
	matchedAll := make(map[int]int)

	for _, term := range terms {
		perDoc := resolveTerm(term, snap)
		for doc, hit := range perDoc {
			scores[doc] += hit.score
			matches[doc] = append(matches[doc], hit.matches...)
			matchedAll[doc]++
		}
	}

	results := make([]ScoredResult, 0, len(scores))
	for doc, n := range matchedAll {
		if n != len(terms) {
			continue
		}
		results = append(results, ScoredResult{
			Document: snap.Doc(doc),
			Score:    scores[doc],
			Matches:  matches[doc],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	return results
}

// termHit accumulates one query term's contribution to one document.
type termHit struct {
	score   float64
	matches []Match
}

// resolveTerm looks one query term up in all three postings mappings, exact
// and prefix, and returns its contribution per document ordinal.
func resolveTerm(term string, snap *index.Snapshot) map[int]*termHit {
	perDoc := make(map[int]*termHit)
	add := func(doc int, score float64, m Match) {
		hit, ok := perDoc[doc]
		if !ok {
			hit = &termHit{}
			perDoc[doc] = hit
		}
		hit.score += score
		hit.matches = append(hit.matches, m)
	}

	for _, doc := range snap.TitleDocs(term) {
		add(doc, weightTitleExact, Match{QueryTerm: term, IndexTerm: term, Category: TitleExact, Object: -1})
	}
	for _, indexed := range snap.TitleTermsWithPrefix(term) {
		if indexed == term {
			continue // already scored as exact
		}
		for _, doc := range snap.TitleDocs(indexed) {
			add(doc, weightTitlePrefix, Match{QueryTerm: term, IndexTerm: indexed, Category: TitlePrefix, Object: -1})
		}
	}

	for _, obj := range snap.ObjectPostings(term) {
		add(snap.Object(obj).Doc, weightObjectExact, Match{QueryTerm: term, IndexTerm: term, Category: ObjectExact, Object: obj})
	}
	for _, indexed := range snap.ObjectTermsWithPrefix(term) {
		if indexed == term {
			continue
		}
		for _, obj := range snap.ObjectPostings(indexed) {
			add(snap.Object(obj).Doc, weightObjectPrefix, Match{QueryTerm: term, IndexTerm: indexed, Category: ObjectPrefix, Object: obj})
		}
	}

	for _, post := range snap.BodyPostings(term) {
		add(post.Doc, weightBodyExact*float64(post.Weight), Match{QueryTerm: term, IndexTerm: term, Category: BodyExact, Object: -1})
	}
	for _, indexed := range snap.BodyTermsWithPrefix(term) {
		if indexed == term {
			continue
		}
		for _, post := range snap.BodyPostings(indexed) {
			add(post.Doc, weightBodyPrefix, Match{QueryTerm: term, IndexTerm: indexed, Category: BodyPrefix, Object: -1})
		}
	}
	return perDoc
}

// queryTerms tokenizes the raw query with the snapshot's tokenizer
// configuration and deduplicates terms, preserving first-occurrence order.
// The query is never stopword-filtered: a stopword query term simply finds
// no body postings, which is the only behaviour consistent with indexing.
func queryTerms(rawQuery string, cfg tokenizer.Config) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, tok := range tokenizer.Tokenize(rawQuery, cfg) {
		if _, dup := seen[tok.Term]; dup {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
	return terms
}
