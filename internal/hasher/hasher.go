// Package hasher computes SHA-256 digests of object-store content in
// constant memory, for pass 3 of the fingerprint resolver.
package hasher

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/minio/sha256-simd"

	"github.com/calvinalkan/s3dedup/internal/objectstore"
)

// ChunkSize is the default read buffer for HashStream (1 MiB).
const ChunkSize = 1024 * 1024

// HashStream consumes r to EOF in ChunkSize-sized reads and returns the
// lowercase hex SHA-256 digest. Memory use is bounded by ChunkSize
// regardless of stream length.
func HashStream(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)

	_, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", fmt.Errorf("hash stream: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashObject issues a full-object GET against client and streams the body
// through HashStream without retaining it beyond the rolling hash state.
func HashObject(ctx context.Context, client objectstore.Client, bucket, key string) (string, error) {
	body, _, err := client.GetObject(ctx, bucket, key)
	if err != nil {
		return "", fmt.Errorf("hash object %q: %w", key, err)
	}

	defer func() { _ = body.Close() }()

	digest, err := HashStream(body)
	if err != nil {
		return "", fmt.Errorf("hash object %q: %w", key, err)
	}

	return digest, nil
}
