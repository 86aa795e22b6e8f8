package searcher

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/store"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/logger"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/metrics"
)

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

func writeSnapshot(t *testing.T, stamp string) string {
	t.Helper()
	docs := []index.Document{
		{ID: "core/scheduler", Title: "Scheduler", Body: "Orders execution.", Ref: "core/scheduler.html"},
	}
	snap, err := index.Build(docs, nil, index.BuildConfig{
		Tokenizer: tokenizer.Config{},
		Stamp:     stamp,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "index.pndx")
	if err := store.Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func reloadEvent(t *testing.T, path string) []byte {
	t.Helper()
	value, err := json.Marshal(ReloadEvent{BuildID: "b1", Path: path, Stamp: "s"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return value
}

func TestHandleReloadSwapsSnapshotAndInvalidates(t *testing.T) {
	holder := NewHolder()
	inv := &fakeInvalidator{}
	handler := HandleReload(holder, inv, metrics.New(), logger.WithComponent("test"))

	path := writeSnapshot(t, "2026-02-01T00:00:00Z")
	if err := handler(context.Background(), nil, reloadEvent(t, path)); err != nil {
		t.Fatalf("handler: %v", err)
	}

	snap := holder.Load()
	if snap == nil {
		t.Fatal("expected a snapshot after reload")
	}
	if snap.Stamp() != "2026-02-01T00:00:00Z" {
		t.Fatalf("Stamp = %q", snap.Stamp())
	}
	if inv.calls != 1 {
		t.Fatalf("invalidator called %d times, want 1", inv.calls)
	}
}

func TestHandleReloadKeepsOldSnapshotOnMissingFile(t *testing.T) {
	holder := NewHolder()
	first := writeSnapshot(t, "old")
	handler := HandleReload(holder, nil, metrics.New(), logger.WithComponent("test"))

	if err := handler(context.Background(), nil, reloadEvent(t, first)); err != nil {
		t.Fatalf("initial reload: %v", err)
	}

	err := handler(context.Background(), nil, reloadEvent(t, filepath.Join(t.TempDir(), "missing.pndx")))
	if err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
	if got := holder.Load().Stamp(); got != "old" {
		t.Fatalf("Stamp = %q, want the previous snapshot to survive", got)
	}
}

func TestHandleReloadIgnoresMalformedEvent(t *testing.T) {
	holder := NewHolder()
	handler := HandleReload(holder, nil, metrics.New(), logger.WithComponent("test"))

	if err := handler(context.Background(), nil, []byte("{not json")); err != nil {
		t.Fatalf("malformed events must be dropped, got error: %v", err)
	}
	if holder.Load() != nil {
		t.Fatal("no snapshot should be installed")
	}
}
