// Package store is the thin I/O layer around the snapshot codec: it saves
// encoded snapshots to the filesystem and loads them back. Writes go to a
// temp file in the target directory and are renamed into place, so readers
// never observe a half-written snapshot.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/codec"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
)

// Save encodes snap and atomically writes it to path, creating parent
// directories as needed.
func Save(path string, snap *index.Snapshot) error {
	data, err := codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot at path. Decode failures surface the
// codec's typed errors unchanged so callers can distinguish corruption from
// version skew.
func Load(path string) (*index.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return codec.Decode(data)
}
