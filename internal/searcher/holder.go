// Package searcher serves queries over an in-memory index snapshot and
// swaps in fresh snapshots when the builder announces them.
package searcher

import (
	"sync/atomic"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/query"
)

// Holder owns the currently-served snapshot. Loads are lock-free; Swap
// replaces the snapshot atomically so in-flight queries finish on the
// snapshot they started with.
type Holder struct {
	current atomic.Pointer[index.Snapshot]
}

// NewHolder returns a Holder with no snapshot loaded.
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current snapshot, or nil if none has been loaded yet.
func (h *Holder) Load() *index.Snapshot {
	return h.current.Load()
}

// Swap installs snap as the served snapshot and returns the previous one.
func (h *Holder) Swap(snap *index.Snapshot) *index.Snapshot {
	return h.current.Swap(snap)
}

// Result is the response envelope for one search request.
type Result struct {
	Query     string               `json:"query"`
	Stamp     string               `json:"stamp"`
	TotalHits int                  `json:"total_hits"`
	Results   []query.ScoredResult `json:"results"`
}
