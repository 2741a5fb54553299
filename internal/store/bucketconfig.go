package store

import (
	"context"
	"fmt"
	"time"
)

// SetBucketConfig records the endpoint a bucket was scanned through, so a
// later `generate-script`/`clean` run can recover it without a fresh
// --endpoint-url flag.
func (s *Store) SetBucketConfig(ctx context.Context, bucket, endpointURL string) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if bucket == "" {
		return fmt.Errorf("set bucket config: %w: bucket is empty", ErrInvalidArgument)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO bucket_config (bucket, endpoint_url, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (bucket) DO UPDATE SET
			endpoint_url = excluded.endpoint_url,
			updated_at = excluded.updated_at
	`, bucket, endpointURL, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("set bucket config for %q: %w: %w", bucket, ErrIndex, err)
	}

	return nil
}

// BucketConfig returns the last-recorded endpoint for bucket. Returns
// (BucketConfig{}, false, nil) when nothing has been recorded.
func (s *Store) BucketConfig(ctx context.Context, bucket string) (BucketConfig, bool, error) {
	db, err := s.db()
	if err != nil {
		return BucketConfig{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT bucket, endpoint_url, updated_at FROM bucket_config WHERE bucket = ?
	`, bucket)

	var (
		cfg       BucketConfig
		updatedAt int64
	)

	err = row.Scan(&cfg.Bucket, &cfg.EndpointURL, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return BucketConfig{}, false, nil
		}

		return BucketConfig{}, false, fmt.Errorf("bucket config for %q: %w: %w", bucket, ErrIndex, err)
	}

	cfg.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return cfg, true, nil
}
