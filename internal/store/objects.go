package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// upsertBatchSize matches the ≥1000-per-call batching spec.md §4.A requires
// of callers; UpsertObjects itself accepts any size and chunks internally.
const upsertBatchSize = 1000

// UpsertObjects inserts or replaces records by key. Replacement overwrites
// every attribute and sets ScannedAt to now. The call is chunked into
// batches of upsertBatchSize so callers may pass arbitrarily large slices.
// Returns the count accepted.
func (s *Store) UpsertObjects(ctx context.Context, records []Object) (int, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		return 0, nil
	}

	for _, rec := range records {
		if rec.Size < 0 {
			return 0, fmt.Errorf("upsert objects: %w: size is negative for key %q", ErrInvalidArgument, rec.Key)
		}

		if rec.SHA256 != "" && !isValidSHA256(rec.SHA256) {
			return 0, fmt.Errorf("upsert objects: %w: malformed sha256 for key %q", ErrInvalidArgument, rec.Key)
		}
	}

	accepted := 0
	now := time.Now().UTC()

	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))

		n, err := upsertBatch(ctx, db, records[start:end], now)
		if err != nil {
			return accepted, err
		}

		accepted += n
	}

	return accepted, nil
}

func upsertBatch(ctx context.Context, db *sql.DB, batch []Object, now time.Time) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert objects: begin txn: %w: %w", ErrIndex, err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO objects (key, size, etag, is_multipart, sha256, last_modified, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			size = excluded.size,
			etag = excluded.etag,
			is_multipart = excluded.is_multipart,
			sha256 = excluded.sha256,
			last_modified = excluded.last_modified,
			scanned_at = excluded.scanned_at
	`)
	if err != nil {
		return 0, fmt.Errorf("upsert objects: prepare: %w: %w", ErrIndex, err)
	}

	defer func() { _ = stmt.Close() }()

	for _, rec := range batch {
		_, err = stmt.ExecContext(ctx,
			rec.Key,
			rec.Size,
			rec.ETag,
			boolToInt(rec.IsMultipart),
			nullableString(rec.SHA256),
			rec.LastModified.UTC().Unix(),
			now.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert objects: exec for key %q: %w: %w", rec.Key, ErrIndex, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("upsert objects: commit: %w: %w", ErrIndex, err)
	}

	committed = true

	return len(batch), nil
}

// DeleteObjects removes objects and cascades to media metadata.
func (s *Store) DeleteObjects(ctx context.Context, keys []string) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete objects: begin txn: %w: %w", ErrIndex, err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for start := 0; start < len(keys); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(keys))
		chunk := keys[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))

		for i, k := range chunk {
			args[i] = k
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM media_metadata WHERE key IN ("+placeholders+")", args...)
		if err != nil {
			return fmt.Errorf("delete objects: cascade media: %w: %w", ErrIndex, err)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM objects WHERE key IN ("+placeholders+")", args...)
		if err != nil {
			return fmt.Errorf("delete objects: %w: %w", ErrIndex, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("delete objects: commit: %w: %w", ErrIndex, err)
	}

	committed = true

	return nil
}

// KeysWithPrefix returns key→etag for every indexed object whose key has
// the given prefix. The scanner uses this to diff a fresh listing against
// what's already indexed.
func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT key, etag FROM objects WHERE key LIKE ? ESCAPE '\\'", likePrefixPattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("keys with prefix: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	result := make(map[string]string)

	for rows.Next() {
		var key, etag string

		err = rows.Scan(&key, &etag)
		if err != nil {
			return nil, fmt.Errorf("keys with prefix: scan: %w: %w", ErrIndex, err)
		}

		result[key] = etag
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("keys with prefix: rows: %w: %w", ErrIndex, err)
	}

	return result, nil
}

// UpdateSHA256 writes a single object's resolved SHA-256 digest.
func (s *Store) UpdateSHA256(ctx context.Context, key, digest string) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if !isValidSHA256(digest) {
		return fmt.Errorf("update sha256: %w: malformed digest", ErrInvalidArgument)
	}

	_, err = db.ExecContext(ctx, "UPDATE objects SET sha256 = ? WHERE key = ?", digest, key)
	if err != nil {
		return fmt.Errorf("update sha256 for key %q: %w: %w", key, ErrIndex, err)
	}

	return nil
}

// AllObjects returns every indexed object whose key starts with prefix,
// ordered by key. Used by the clean command's rename planning and by the
// scan command's media extraction.
func (s *Store) AllObjects(ctx context.Context, prefix string) ([]Object, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT key, size, etag, is_multipart, sha256, last_modified, scanned_at
		FROM objects
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY key
	`, likePrefixPattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("all objects: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	objects := make([]Object, 0)

	for rows.Next() {
		obj, err := scanObjectRow(rows)
		if err != nil {
			return nil, err
		}

		objects = append(objects, obj)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("all objects: rows: %w: %w", ErrIndex, err)
	}

	return objects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObjectRow(row rowScanner) (Object, error) {
	var (
		key          string
		size         int64
		etag         string
		isMultipart  int
		sha256       sql.NullString
		lastModified int64
		scannedAt    int64
	)

	err := row.Scan(&key, &size, &etag, &isMultipart, &sha256, &lastModified, &scannedAt)
	if err != nil {
		return Object{}, fmt.Errorf("scan object: %w: %w", ErrIndex, err)
	}

	return Object{
		Key:          key,
		Size:         size,
		ETag:         etag,
		IsMultipart:  isMultipart != 0,
		SHA256:       sha256.String,
		LastModified: time.Unix(lastModified, 0).UTC(),
		ScannedAt:    time.Unix(scannedAt, 0).UTC(),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: s, Valid: true}
}

func isValidSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}

	for _, r := range s {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isHex {
			return false
		}
	}

	return true
}

// likePrefixPattern escapes % and _ then appends a trailing % wildcard so
// prefix can be used safely with LIKE ... ESCAPE '\'.
func likePrefixPattern(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	return escaped + "%"
}
