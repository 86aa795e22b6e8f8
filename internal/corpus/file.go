package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
)

// File is the JSON corpus export produced by the documentation generator,
// used when no database is available (CI builds, local development).
type File struct {
	Stamp     string           `json:"stamp,omitempty"`
	Documents []index.Document `json:"documents"`
	Objects   []index.Object   `json:"objects,omitempty"`
}

// ReadFile parses a corpus export from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	return &f, nil
}
