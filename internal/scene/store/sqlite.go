package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/Faultbox/mattework/internal/scene/memscene"
)

var sqliteBuckets = []string{"meshes", "materials", "mattes", "selection"}

// SQLite snapshots a scene into a single table of JSON payloads, one row
// per bucket.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "scene.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS scene (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create scene table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Load reads every bucket. An empty database loads as an empty scene.
func (s *SQLite) Load() (memscene.Snapshot, error) {
	var snap memscene.Snapshot
	rows, err := s.db.Query(`SELECT bucket, payload FROM scene`)
	if err != nil {
		return snap, fmt.Errorf("select scene: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return snap, fmt.Errorf("scan: %w", err)
		}
		var target interface{}
		switch bucket {
		case "meshes":
			target = &snap.Meshes
		case "materials":
			target = &snap.Materials
		case "mattes":
			target = &snap.Mattes
		case "selection":
			target = &snap.Selection
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return snap, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}
	return snap, snap.Validate()
}

// Save replaces every bucket in one transaction.
func (s *SQLite) Save(snap memscene.Snapshot) (retErr error) {
	payloads := map[string]interface{}{
		"meshes":    snap.Meshes,
		"materials": snap.Materials,
		"mattes":    snap.Mattes,
		"selection": snap.Selection,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, tx.Rollback())
		}
	}()
	for _, bucket := range sqliteBuckets {
		data, err := json.Marshal(payloads[bucket])
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.Exec(`INSERT INTO scene(bucket, payload) VALUES(?, ?)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("write %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
