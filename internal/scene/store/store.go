// Package store loads and saves host scene documents for the CLI host.
package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/mattework/internal/scene/memscene"
)

// Format names a scene document encoding.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// Store reads and writes scene snapshots.
type Store interface {
	Load() (memscene.Snapshot, error)
	Save(snap memscene.Snapshot) error
	Close() error
}

// ParseFormat validates a format name. Empty selects by file extension.
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return FormatSQLite, nil
		default:
			return FormatYAML, nil
		}
	}
	return "", fmt.Errorf("unknown scene format %q", name)
}

// Open returns the store for path in the given format.
func Open(path string, format Format) (Store, error) {
	switch format {
	case FormatYAML:
		return NewYAML(path), nil
	case FormatSQLite:
		return NewSQLite(path)
	}
	return nil, fmt.Errorf("unknown scene format %q", format)
}
