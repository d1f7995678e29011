// Package sink writes the clean lexeme table and its manifest sidecar.
//
// The output file is created (or truncated) in place and written once. A run
// that fails half-way can leave a partial file behind; callers that need an
// all-or-nothing artifact should write to a temporary path and rename.
package sink

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hazyhaar/wuyu-lexeme/pkg/table"
	"gopkg.in/yaml.v3"
)

// WriteCSV writes t to path as UTF-8 CSV and returns the hex SHA-256 of the
// bytes written. Parent directories are created as needed.
func WriteCSV(path string, t *table.Table) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}

	h := sha256.New()
	if err := table.Write(io.MultiWriter(f, h), t); err != nil {
		f.Close()
		return "", fmt.Errorf("write output %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close output %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Manifest describes a written lexeme table.
type Manifest struct {
	Output    string           `yaml:"output"`
	SHA256    string           `yaml:"sha256"`
	Rows      int              `yaml:"rows"`
	Columns   []string         `yaml:"columns"`
	Reference string           `yaml:"reference"`
	Sources   []ManifestSource `yaml:"sources"`
	Dropped   int              `yaml:"dropped_rows"`
	Unmatched int              `yaml:"unmatched_rhymes"`
}

// ManifestSource is one ingested source in a manifest.
type ManifestSource struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Rows    int    `yaml:"rows"`
	Skipped string `yaml:"skipped,omitempty"`
}

// ManifestPath returns the sidecar path of an output file.
func ManifestPath(output string) string {
	return output + ".manifest.yaml"
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadManifest reads a manifest written by WriteManifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
