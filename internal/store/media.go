package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertMediaMetadata inserts or replaces the tag-extracted metadata for a
// key. Nil fields are stored as SQL NULL.
func (s *Store) UpsertMediaMetadata(ctx context.Context, m MediaMetadata) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO media_metadata (key, artist, album, title, duration_s, codec, bitrate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			artist = excluded.artist,
			album = excluded.album,
			title = excluded.title,
			duration_s = excluded.duration_s,
			codec = excluded.codec,
			bitrate = excluded.bitrate
	`, m.Key, m.Artist, m.Album, m.Title, m.DurationS, m.Codec, m.Bitrate)
	if err != nil {
		return fmt.Errorf("upsert media metadata for key %q: %w: %w", m.Key, ErrIndex, err)
	}

	return nil
}

// MediaMetadataByKey looks up one key's metadata. Returns (MediaMetadata{},
// false, nil) when no row exists.
func (s *Store) MediaMetadataByKey(ctx context.Context, key string) (MediaMetadata, bool, error) {
	db, err := s.db()
	if err != nil {
		return MediaMetadata{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT key, artist, album, title, duration_s, codec, bitrate
		FROM media_metadata WHERE key = ?
	`, key)

	m, err := scanMediaRow(row)
	if err != nil {
		if isNoRows(err) {
			return MediaMetadata{}, false, nil
		}

		return MediaMetadata{}, false, fmt.Errorf("media metadata for key %q: %w: %w", key, ErrIndex, err)
	}

	return m, true, nil
}

// SameWorkGroups joins objects to media_metadata and groups by
// (artist, title), surfacing only groups with two or more distinct files —
// candidate re-encodes or alternate rips of the same recording.
func (s *Store) SameWorkGroups(ctx context.Context) ([]SameWorkGroup, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT m.artist, m.title, o.key, o.size, COALESCE(m.codec, ''), COALESCE(m.bitrate, 0)
		FROM media_metadata m
		JOIN objects o ON o.key = m.key
		WHERE m.artist IS NOT NULL AND m.artist != '' AND m.title IS NOT NULL AND m.title != ''
		ORDER BY m.artist, m.title, o.size DESC, o.key
	`)
	if err != nil {
		return nil, fmt.Errorf("same work groups: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	index := make(map[string]int)

	var groups []SameWorkGroup

	for rows.Next() {
		var (
			artist, title string
			file          SameWorkFile
		)

		err = rows.Scan(&artist, &title, &file.Key, &file.Size, &file.Codec, &file.Bitrate)
		if err != nil {
			return nil, fmt.Errorf("same work groups: scan: %w: %w", ErrIndex, err)
		}

		groupKey := artist + "\x00" + title

		i, ok := index[groupKey]
		if !ok {
			i = len(groups)
			index[groupKey] = i
			groups = append(groups, SameWorkGroup{Artist: artist, Title: title})
		}

		groups[i].Files = append(groups[i].Files, file)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("same work groups: rows: %w: %w", ErrIndex, err)
	}

	result := make([]SameWorkGroup, 0, len(groups))

	for _, g := range groups {
		if len(g.Files) > 1 {
			result = append(result, g)
		}
	}

	return result, nil
}

func scanMediaRow(row *sql.Row) (MediaMetadata, error) {
	var m MediaMetadata

	err := row.Scan(&m.Key, &m.Artist, &m.Album, &m.Title, &m.DurationS, &m.Codec, &m.Bitrate)
	if err != nil {
		return MediaMetadata{}, err
	}

	return m, nil
}
