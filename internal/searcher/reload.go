package searcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/store"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/kafka"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/metrics"
)

// ReloadEvent is published by the index builder when a new snapshot has been
// written to shared storage.
type ReloadEvent struct {
	BuildID   string `json:"build_id"`
	Path      string `json:"path"`
	Stamp     string `json:"stamp"`
	DocCount  int    `json:"doc_count"`
	TermCount int    `json:"term_count"`
}

// Invalidator drops cached results that were computed against an older
// snapshot. The query cache satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// HandleReload returns a kafka handler that loads the announced snapshot,
// swaps it in, and invalidates the query cache. A nil invalidator skips
// cache invalidation.
func HandleReload(holder *Holder, inv Invalidator, m *metrics.Metrics, logger *slog.Logger) kafka.MessageHandler {
	return func(ctx context.Context, _ []byte, value []byte) error {
		ev, err := kafka.DecodeJSON[ReloadEvent](value)
		if err != nil {
			// malformed event: commit and move on, redelivery cannot help
			logger.Error("ignoring malformed reload event", "error", err)
			return nil
		}

		snap, err := store.Load(ev.Path)
		if err != nil {
			m.SnapshotReloadsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("loading snapshot %s: %w", ev.Path, err)
		}

		old := holder.Swap(snap)
		m.SnapshotReloadsTotal.WithLabelValues("ok").Inc()
		m.ObserveSnapshot(snap.DocCount(), snap.ObjectCount(), snap.TermCount())

		oldStamp := ""
		if old != nil {
			oldStamp = old.Stamp()
		}
		logger.Info("snapshot reloaded",
			"build_id", ev.BuildID,
			"stamp", snap.Stamp(),
			"previous_stamp", oldStamp,
			"docs", snap.DocCount(),
			"objects", snap.ObjectCount(),
			"terms", snap.TermCount(),
		)

		if inv != nil {
			if err := inv.Invalidate(ctx); err != nil {
				logger.Warn("failed to invalidate query cache", "error", err)
			}
		}
		return nil
	}
}
