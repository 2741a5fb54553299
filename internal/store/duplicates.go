package store

import (
	"context"
	"fmt"
)

// FindSizeDuplicates returns every size that is shared by two or more
// indexed objects. Size collisions are the cheapest first-pass filter:
// any object whose size is unique in the index cannot be a duplicate of
// anything else and is excluded from later passes.
func (s *Store) FindSizeDuplicates(ctx context.Context) ([]int64, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT size FROM objects
		GROUP BY size
		HAVING COUNT(*) > 1
		ORDER BY size
	`)
	if err != nil {
		return nil, fmt.Errorf("find size duplicates: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	var sizes []int64

	for rows.Next() {
		var size int64

		err = rows.Scan(&size)
		if err != nil {
			return nil, fmt.Errorf("find size duplicates: scan: %w: %w", ErrIndex, err)
		}

		sizes = append(sizes, size)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("find size duplicates: rows: %w: %w", ErrIndex, err)
	}

	return sizes, nil
}

// FindETagDuplicates groups single-part objects (is_multipart = 0) sharing
// both size and ETag. A single-part ETag is the whole object's MD5, so an
// ETag match within a size class is a trusted content match with no hash
// needed.
func (s *Store) FindETagDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	return s.groupBy(ctx, `
		SELECT key, size, etag, is_multipart, sha256, last_modified, scanned_at
		FROM objects
		WHERE is_multipart = 0
		ORDER BY size, etag, key
	`, func(o Object) string { return o.ETag })
}

// FindMultipartCandidates returns every object (multipart or not) sharing a
// size class that both (a) has more than one member overall and (b)
// contains at least one unhashed multipart object. Multipart ETags are a
// hash of part hashes, so two multipart objects can be byte-identical yet
// carry different ETags if they were uploaded with a different part-size
// plan; size-class membership is the most this pass can assert on its own,
// and the caller resolves candidates with a full SHA-256 stream hash. The
// single-part siblings of an unhashed multipart object are included too,
// since a multipart upload can be byte-identical to a single-part one of
// the same size.
func (s *Store) FindMultipartCandidates(ctx context.Context) ([]DuplicateGroup, error) {
	return s.groupBy(ctx, `
		WITH candidates AS (
			SELECT size FROM objects
			WHERE is_multipart = 1 AND (sha256 IS NULL OR sha256 = '')
			GROUP BY size
			HAVING size IN (
				SELECT size FROM objects GROUP BY size HAVING COUNT(*) > 1
			)
		)
		SELECT o.key, o.size, o.etag, o.is_multipart, o.sha256, o.last_modified, o.scanned_at
		FROM objects o
		JOIN candidates c ON o.size = c.size
		ORDER BY o.size, o.key
	`, func(o Object) string { return fmt.Sprintf("%d", o.Size) })
}

// FindHashDuplicates groups any objects (multipart or not) sharing a
// resolved SHA-256. This is the final, authoritative pass: a match here is
// a byte-for-byte content match regardless of upload part-size history.
func (s *Store) FindHashDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	return s.groupBy(ctx, `
		SELECT key, size, etag, is_multipart, sha256, last_modified, scanned_at
		FROM objects
		WHERE sha256 IS NOT NULL AND sha256 != ''
		ORDER BY size, sha256, key
	`, func(o Object) string { return o.SHA256 })
}

// GetAllDuplicates returns the union of trusted duplicate groups: every
// single-part ETag group plus every SHA-256 group, skipping any SHA-256
// group whose members are already fully covered by an ETag group (so a
// resolved multipart group isn't double counted against its own
// size-candidate pass).
func (s *Store) GetAllDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	etagGroups, err := s.FindETagDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	hashGroups, err := s.FindHashDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(etagGroups))

	for _, g := range etagGroups {
		seen[groupIdentity(g)] = true
	}

	all := make([]DuplicateGroup, 0, len(etagGroups)+len(hashGroups))
	all = append(all, etagGroups...)

	for _, g := range hashGroups {
		if seen[groupIdentity(g)] {
			continue
		}

		all = append(all, g)
	}

	return all, nil
}

// groupIdentity is a stable key used to dedupe groups across passes: the
// sorted set of member keys, since two passes agreeing on membership
// describe the same physical duplicate set even if keyed by different
// fingerprints.
func groupIdentity(g DuplicateGroup) string {
	id := ""
	for _, o := range g.Objects {
		id += o.Key + "\x00"
	}

	return id
}

// GetStats summarizes the index: total objects/size plus the duplicate
// footprint from GetAllDuplicates.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	db, err := s.db()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats

	row := db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size), 0) FROM objects")

	err = row.Scan(&stats.TotalObjects, &stats.TotalSize)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w: %w", ErrIndex, err)
	}

	groups, err := s.GetAllDuplicates(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats.DuplicateGroups = len(groups)

	for _, g := range groups {
		stats.DuplicateObjects += len(g.Objects) - 1
		stats.WastedBytes += g.WastedBytes()
	}

	return stats, nil
}

// groupBy runs query (which must project the seven object columns in
// order) and partitions the resulting rows by fingerprint(row), keeping
// only groups with two or more members, in row order.
func (s *Store) groupBy(ctx context.Context, query string, fingerprint func(Object) string) ([]DuplicateGroup, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("group objects: %w: %w", ErrIndex, err)
	}

	defer func() { _ = rows.Close() }()

	index := make(map[string]int)

	var groups []DuplicateGroup

	for rows.Next() {
		obj, err := scanObjectRow(rows)
		if err != nil {
			return nil, err
		}

		key := fingerprint(obj)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i

			groups = append(groups, DuplicateGroup{
				Fingerprint: key,
				Size:        obj.Size,
			})
		}

		groups[i].Objects = append(groups[i].Objects, obj)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("group objects: rows: %w: %w", ErrIndex, err)
	}

	result := make([]DuplicateGroup, 0, len(groups))

	for _, g := range groups {
		if len(g.Objects) > 1 {
			result = append(result, g)
		}
	}

	return result, nil
}
