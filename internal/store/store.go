package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is the index handle: an explicit value threaded as the first
// receiver of every index operation, holding the single *sql.DB connection
// that owns all writes (spec §5, §9 "embedded connection object passed
// everywhere" restated as an explicit handle, not a package-level global).
type Store struct {
	path string
	sql  *sql.DB
}

// Open opens (creating if necessary) the SQLite index at path. The parent
// directory is created if missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if ctx == nil {
		return nil, fmt.Errorf("open store: %w: context is nil", ErrInvalidArgument)
	}

	if path == "" {
		return nil, fmt.Errorf("open store: %w: path is empty", ErrInvalidArgument)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		err := os.MkdirAll(dir, 0o750)
		if err != nil {
			return nil, fmt.Errorf("open store: create directory: %w: %w", ErrIndex, err)
		}
	}

	db, err := openSqlite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Store{path: path, sql: db}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}

	err := s.sql.Close()
	if err != nil {
		return fmt.Errorf("close store: %w: %w", ErrIndex, err)
	}

	return nil
}

// NewScanSessionID returns a fresh identifier to correlate a scan's
// progress callbacks, independent of any persisted state.
func NewScanSessionID() string {
	return uuid.NewString()
}

func (s *Store) db() (*sql.DB, error) {
	if s == nil || s.sql == nil {
		return nil, ErrNotOpen
	}

	return s.sql, nil
}
