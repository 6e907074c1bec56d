// Package database persists the last good copy of each raw dataset in
// SQLite. Only raw inputs are stored; reconciliation results are always
// recomputed per request.
package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"agrodash/dataset"
)

// ErrNoSnapshot is returned when no usable snapshot exists for a
// dataset name.
var ErrNoSnapshot = errors.New("no snapshot available")

// SnapshotStore keeps one row per logical dataset, replaced on every
// successful fetch.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens (or creates) the store at path and applies the
// schema.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS dataset_snapshots (
		name       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		row_count  INTEGER NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Save replaces the snapshot for a dataset name.
func (s *SnapshotStore) Save(name string, ds *dataset.RawDataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO dataset_snapshots (name, payload, row_count, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			row_count = excluded.row_count,
			fetched_at = excluded.fetched_at
	`, name, string(payload), ds.Len(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}
	return nil
}

// Load returns the snapshot for a dataset name if it is younger than
// maxAge. maxAge <= 0 disables the staleness check.
func (s *SnapshotStore) Load(name string, maxAge time.Duration) (*dataset.RawDataset, error) {
	var payload string
	var fetchedAt time.Time
	err := s.db.QueryRow(`
		SELECT payload, fetched_at FROM dataset_snapshots WHERE name = ?
	`, name).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}

	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, fmt.Errorf("%w: snapshot %s from %s is stale", ErrNoSnapshot, name, fetchedAt.Format(time.RFC3339))
	}

	var ds dataset.RawDataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return &ds, nil
}

// FetchedAt reports when a dataset was last snapshotted.
func (s *SnapshotStore) FetchedAt(name string) (time.Time, error) {
	var fetchedAt time.Time
	err := s.db.QueryRow(`SELECT fetched_at FROM dataset_snapshots WHERE name = ?`, name).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot time for %s: %w", name, err)
	}
	return fetchedAt, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
