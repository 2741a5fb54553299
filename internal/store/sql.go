package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// currentSchemaVersion is stored in SQLite's user_version pragma.
// Increment whenever the schema changes (tables, columns, indices).
const currentSchemaVersion = 1

// sqliteBusyTimeoutMS is how long SQLite waits on a locked database before
// returning SQLITE_BUSY. It backstops the single-writer rule from §5 when
// a second process opens the same index concurrently.
const sqliteBusyTimeoutMS = 10000

// openSqlite opens the index database and applies the configured pragmas.
func openSqlite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open sqlite: %w: path is empty", ErrInvalidArgument)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", ErrIndex, err)
	}

	// A single connection upholds "one index connection owns all writes"
	// (spec §5) without any additional locking.
	db.SetMaxOpenConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w: %w", ErrIndex, err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	err = ensureSchema(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

// applyPragmas configures the SQLite connection using a single batch statement.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = OFF;
	`, sqliteBusyTimeoutMS))
	if err != nil {
		return fmt.Errorf("apply pragmas: %w: %w", ErrIndex, err)
	}

	return nil
}

// storedSchemaVersion reads PRAGMA user_version.
func storedSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	row := db.QueryRowContext(ctx, "PRAGMA user_version")

	var version int

	err := row.Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read user_version: %w: %w", ErrIndex, err)
	}

	return version, nil
}

// ensureSchema creates the three persisted tables (objects, media_metadata,
// bucket_config) if missing, and rebuilds them on a schema version mismatch.
//
// The key↔key relationship between objects and media_metadata is by
// convention only (spec §6) — no FOREIGN KEY is declared, cascades are
// implemented explicitly in DeleteObjects.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	version, err := storedSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema txn: %w: %w", ErrIndex, err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS objects (
			key           TEXT PRIMARY KEY,
			size          INTEGER NOT NULL,
			etag          TEXT NOT NULL,
			is_multipart  INTEGER NOT NULL,
			sha256        TEXT,
			last_modified INTEGER NOT NULL,
			scanned_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_size ON objects(size)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_etag ON objects(etag)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_sha256 ON objects(sha256)`,
		`CREATE TABLE IF NOT EXISTS media_metadata (
			key         TEXT PRIMARY KEY,
			artist      TEXT,
			album       TEXT,
			title       TEXT,
			duration_s  REAL,
			codec       TEXT,
			bitrate     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_artist_title ON media_metadata(artist, title)`,
		`CREATE TABLE IF NOT EXISTS bucket_config (
			bucket       TEXT PRIMARY KEY,
			endpoint_url TEXT,
			updated_at   INTEGER NOT NULL
		)`,
	}

	for i, stmt := range statements {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("schema statement %d: %w: %w", i+1, ErrIndex, err)
		}
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion))
	if err != nil {
		return fmt.Errorf("set user_version: %w: %w", ErrIndex, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit schema txn: %w: %w", ErrIndex, err)
	}

	committed = true

	return nil
}

// isNoRows reports whether err is sql.ErrNoRows, unwrapping join errors.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
