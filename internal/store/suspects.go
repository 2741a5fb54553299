package store

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/calvinalkan/s3dedup/internal/normalize"
)

// FindSuspectNames groups objects whose basenames normalize to the same
// value but which disagree on ETag: the same logical file, uploaded more
// than once with content that has since drifted (re-encoded, re-tagged,
// partially corrupted). A suspect group requires at least two distinct
// ETags; objects that merely share a normalized name but agree on content
// are ordinary duplicates, not suspects.
func (s *Store) FindSuspectNames(ctx context.Context) ([]SuspectNameGroup, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT key, size, etag, is_multipart, sha256, last_modified, scanned_at
		FROM objects
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("find suspect names: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	index := make(map[string]int)

	var groups []SuspectNameGroup

	for rows.Next() {
		obj, err := scanObjectRow(rows)
		if err != nil {
			return nil, err
		}

		normalized := normalize.Normalize(path.Base(obj.Key))

		i, ok := index[normalized]
		if !ok {
			i = len(groups)
			index[normalized] = i

			groups = append(groups, SuspectNameGroup{Normalized: normalized})
		}

		groups[i].Files = append(groups[i].Files, obj)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("find suspect names: rows: %w: %w", ErrIndex, err)
	}

	result := make([]SuspectNameGroup, 0, len(groups))

	for _, g := range groups {
		if distinctETagCount(g.Files) >= 2 {
			result = append(result, g)
		}
	}

	return result, nil
}

func distinctETagCount(objects []Object) int {
	etags := make(map[string]bool, len(objects))
	for _, o := range objects {
		etags[o.ETag] = true
	}

	return len(etags)
}

// SortSuspectNameGroups orders groups deterministically for report
// rendering.
func SortSuspectNameGroups(groups []SuspectNameGroup) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Normalized < groups[j].Normalized })
}
