package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/mattework/internal/scene/memscene"
)

// YAML keeps a scene document in a single YAML file.
type YAML struct {
	path string
}

// NewYAML returns a YAML store for path.
func NewYAML(path string) *YAML {
	return &YAML{path: path}
}

// Load reads the document. A missing file loads as an empty scene.
func (y *YAML) Load() (memscene.Snapshot, error) {
	var snap memscene.Snapshot
	data, err := os.ReadFile(y.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decoding %s: %w", y.path, err)
	}
	if err := snap.Validate(); err != nil {
		return snap, fmt.Errorf("decoding %s: %w", y.path, err)
	}
	return snap, nil
}

// Save writes the document, creating parent directories.
func (y *YAML) Save(snap memscene.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(y.path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(y.path, data, 0644)
}

// Close is a no-op for file documents.
func (y *YAML) Close() error {
	return nil
}
