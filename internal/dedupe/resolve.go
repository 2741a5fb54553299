// Package dedupe drives pass 3 of the fingerprint resolver (spec.md
// §4.C/§4.E): it asks the index for multipart size-candidates, streams
// each unresolved one through the hasher, and writes the digest back.
// Passes 1 and 2 are plain index queries and live in internal/store.
package dedupe

import (
	"context"
	"fmt"
	"sort"

	"github.com/calvinalkan/s3dedup/internal/hasher"
	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/store"
)

// ProgressFunc is called once per object as pass 3 processes it.
// done is 1-indexed; total is the number of candidates in the run.
type ProgressFunc func(done, total int, key string)

// indexWriter is the subset of *store.Store the resolver needs, so tests
// can substitute a fake without standing up SQLite.
type indexWriter interface {
	FindMultipartCandidates(ctx context.Context) ([]store.DuplicateGroup, error)
	UpdateSHA256(ctx context.Context, key, digest string) error
}

// ResolveDuplicates runs pass 3: for every multipart size-candidate group,
// every member without a resolved sha256 is streamed through the hasher
// and the digest persisted. Members that already carry a sha256 (from a
// prior, interrupted run) are skipped, making the pass resumable.
//
// Returns the number of objects actually hashed in this call. A failed
// GET aborts the run; objects hashed before the failure remain committed.
func ResolveDuplicates(ctx context.Context, idx indexWriter, client objectstore.Client, bucket string, onProgress ProgressFunc) (int, error) {
	groups, err := idx.FindMultipartCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve duplicates: %w", err)
	}

	candidates := make([]store.Object, 0)

	for _, g := range groups {
		for _, obj := range g.Objects {
			if obj.SHA256 == "" {
				candidates = append(candidates, obj)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Key < candidates[j].Key })

	hashed := 0

	for i, obj := range candidates {
		if err := ctx.Err(); err != nil {
			return hashed, fmt.Errorf("resolve duplicates: %w", err)
		}

		digest, err := hasher.HashObject(ctx, client, bucket, obj.Key)
		if err != nil {
			return hashed, fmt.Errorf("resolve duplicates: %w", err)
		}

		err = idx.UpdateSHA256(ctx, obj.Key, digest)
		if err != nil {
			return hashed, fmt.Errorf("resolve duplicates: %w", err)
		}

		hashed++

		if onProgress != nil {
			onProgress(i+1, len(candidates), obj.Key)
		}
	}

	return hashed, nil
}
