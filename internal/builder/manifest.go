package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest describes a built book directory.
type Manifest struct {
	Version     int       `json:"version"`
	TableCount  int       `json:"table_count"`
	RecordCount int64     `json:"record_count"`
	BuiltAt     time.Time `json:"built_at"`
	Endpoint    string    `json:"endpoint,omitempty"`
	Compression string    `json:"compression"`
}

// ManifestFilename is the manifest's name inside a book directory.
const ManifestFilename = "manifest.json"

// WriteManifest writes the manifest to the output directory.
func WriteManifest(dir string, m *Manifest) error {
	path := filepath.Join(dir, ManifestFilename)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from a book directory.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
