// Package manifest tracks per-source ingestion parameters in SQLite so stale
// fragments can be purged when a source is re-ingested with different chunking
// parameters or now yields fewer chunks.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry records how a source was last ingested for one owner.
type Entry struct {
	UserID    string
	Source    string
	ChunkSize int
	Overlap   int
	Fragments int
}

// Manifest is the SQLite-backed ingestion ledger.
type Manifest struct {
	db *sql.DB
}

// Open opens or creates the manifest database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Manifest, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		chunk_size INTEGER NOT NULL,
		overlap INTEGER NOT NULL,
		fragments INTEGER NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, source)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize manifest schema: %w", err)
	}
	return &Manifest{db: db}, nil
}

// Lookup returns the last recorded entry for (userID, source), or nil when
// the source has not been ingested before.
func (m *Manifest) Lookup(ctx context.Context, userID, source string) (*Entry, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT chunk_size, overlap, fragments FROM sources WHERE user_id = ? AND source = ?`,
		userID, source)
	e := Entry{UserID: userID, Source: source}
	if err := row.Scan(&e.ChunkSize, &e.Overlap, &e.Fragments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest lookup: %w", err)
	}
	return &e, nil
}

// Record upserts the entry for (userID, source).
func (m *Manifest) Record(ctx context.Context, e Entry) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO sources (user_id, source, chunk_size, overlap, fragments, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, source) DO UPDATE SET
		   chunk_size = excluded.chunk_size,
		   overlap = excluded.overlap,
		   fragments = excluded.fragments,
		   updated_at = excluded.updated_at`,
		e.UserID, e.Source, e.ChunkSize, e.Overlap, e.Fragments, time.Now())
	if err != nil {
		return fmt.Errorf("manifest record: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (m *Manifest) Close() error {
	return m.db.Close()
}
