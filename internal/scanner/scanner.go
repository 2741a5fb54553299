// Package scanner reconciles an object-store listing against the index,
// staging new/updated/deleted objects (spec.md §4.D).
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/store"
)

// flushBatchSize matches the Index Store's own batching so a partial
// flush and a full batch upsert behave identically.
const flushBatchSize = 1000

// Result is the reconciliation outcome: how many objects were newly
// indexed, how many changed, and how many were removed because they no
// longer appear under the scanned prefix.
type Result struct {
	New     int
	Updated int
	Deleted int
}

// index is the subset of *store.Store the scanner needs.
type index interface {
	KeysWithPrefix(ctx context.Context, prefix string) (map[string]string, error)
	UpsertObjects(ctx context.Context, records []store.Object) (int, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

// Scan lists bucket/prefix through client, reconciles the listing against
// idx, and returns the counts from doing so. Deletion is confined to keys
// that could have appeared in this listing: scanning a subtree never
// deletes index entries outside that subtree.
func Scan(ctx context.Context, idx index, client objectstore.Client, bucket, prefix string) (Result, error) {
	existing, err := idx.KeysWithPrefix(ctx, prefix)
	if err != nil {
		return Result{}, fmt.Errorf("scan: %w", err)
	}

	seen := make(map[string]bool, len(existing))

	var result Result

	batch := make([]store.Object, 0, flushBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		_, err := idx.UpsertObjects(ctx, batch)
		if err != nil {
			return err
		}

		batch = batch[:0]

		return nil
	}

	for obj, err := range client.ListObjects(ctx, bucket, prefix) {
		if err != nil {
			return result, fmt.Errorf("scan: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scan: %w", err)
		}

		if obj.Size == 0 {
			continue
		}

		seen[obj.Key] = true

		priorETag, known := existing[obj.Key]

		switch {
		case !known:
			result.New++
		case priorETag == obj.ETag:
			continue
		default:
			result.Updated++
		}

		batch = append(batch, store.Object{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			IsMultipart:  objectstore.IsMultipartETag(obj.ETag),
			LastModified: obj.LastModified,
			ScannedAt:    time.Now().UTC(),
		})

		if len(batch) >= flushBatchSize {
			if err := flush(); err != nil {
				return result, fmt.Errorf("scan: %w", err)
			}
		}
	}

	if err := flush(); err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}

	var deletedKeys []string

	for key := range existing {
		if !seen[key] {
			deletedKeys = append(deletedKeys, key)
		}
	}

	if len(deletedKeys) > 0 {
		err := idx.DeleteObjects(ctx, deletedKeys)
		if err != nil {
			return result, fmt.Errorf("scan: %w", err)
		}

		result.Deleted = len(deletedKeys)
	}

	return result, nil
}
