// Package store persists serialized documents in a local SQLite database.
// Payloads are stored as opaque JSON blobs; the store never interprets
// block content beyond reading the format version for listings.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/stanza/internal/document"
)

// Store errors.
var (
	// ErrNotFound is returned when no document carries the given id.
	ErrNotFound = errors.New("document not found")

	// ErrEmptyID is returned when an operation is given an empty id.
	ErrEmptyID = errors.New("document id is empty")
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	version    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store is a SQLite-backed document repository.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// SQLite handles one writer at a time; serialize at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a document payload under id. The format version is read out
// of the payload for listings.
func (s *Store) Save(ctx context.Context, id string, payload []byte) error {
	if id == "" {
		return ErrEmptyID
	}
	now := time.Now().UnixMilli()
	version := document.PayloadVersion(payload)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, payload, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload    = excluded.payload,
			version    = excluded.version,
			updated_at = excluded.updated_at`,
		id, payload, version, now, now)
	if err != nil {
		return fmt.Errorf("save document %s: %w", id, err)
	}
	return nil
}

// Load returns the payload stored under id.
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return payload, nil
}

// Info describes a stored document without its payload.
type Info struct {
	ID        string
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// List returns the stored documents, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Info
	for rows.Next() {
		var info Info
		var created, updated int64
		if err := rows.Scan(&info.ID, &info.Version, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		info.CreatedAt = time.UnixMilli(created)
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}
