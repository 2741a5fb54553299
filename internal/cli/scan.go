package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinalkan/s3dedup/internal/config"
	"github.com/calvinalkan/s3dedup/internal/dedupe"
	"github.com/calvinalkan/s3dedup/internal/media"
	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/scanner"
	"github.com/calvinalkan/s3dedup/internal/store"

	flag "github.com/spf13/pflag"
)

var errBucketRequired = errors.New("--bucket is required")

// ScanCmd returns the scan command.
func ScanCmd(cfg config.Config) *Command {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.String("bucket", "", "Bucket to scan (required)")
	fs.String("prefix", "", "Key prefix to scan")
	fs.String("db", "", "Override index path")
	fs.Bool("extract-metadata", false, "Extract audio/video tag metadata for media files")
	fs.String("endpoint-url", "", "S3-compatible endpoint URL")

	return &Command{
		Flags: fs,
		Usage: "scan --bucket <bucket> [flags]",
		Short: "Scan a bucket and update the local index",
		Long: "List a bucket (optionally under a prefix), reconcile the listing against " +
			"the local index, then resolve any multipart duplicate candidates by streaming " +
			"hash.",
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return execScan(ctx, io, cfg, fs)
		},
	}
}

func execScan(ctx context.Context, io *IO, cfg config.Config, fs *flag.FlagSet) error {
	bucket, _ := fs.GetString("bucket")
	if bucket == "" {
		return errBucketRequired
	}

	prefix, _ := fs.GetString("prefix")
	dbOverride, _ := fs.GetString("db")
	extractMetadata, _ := fs.GetBool("extract-metadata")
	endpointOverride, _ := fs.GetString("endpoint-url")

	endpointURL := cfg.ResolveEndpointURL(endpointOverride)

	idx, err := store.Open(ctx, cfg.ResolveDBPath(dbOverride))
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	defer func() { _ = idx.Close() }()

	client, err := objectstore.NewS3Client(objectstore.S3ClientConfig{EndpointURL: endpointURL})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	result, err := scanner.Scan(ctx, idx, client, bucket, prefix)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	hashed, err := dedupe.ResolveDuplicates(ctx, idx, client, bucket, func(done, total int, key string) {
		io.ErrPrintln(fmt.Sprintf("hashing %d/%d: %s", done, total, key))
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	extracted := 0

	if extractMetadata {
		extracted, err = extractMediaMetadata(ctx, idx, client, bucket, prefix)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}

	if endpointURL != "" {
		if err := idx.SetBucketConfig(ctx, bucket, endpointURL); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}

	summary := fmt.Sprintf("scanned %s: %d new, %d updated, %d deleted, %d hashed",
		bucket, result.New, result.Updated, result.Deleted, hashed)

	if extractMetadata {
		summary += fmt.Sprintf(", %d media files tagged", extracted)
	}

	io.ErrPrintln(summary)

	return nil
}

// extractMediaMetadata extracts tags for every recognized media key under
// prefix that has no media_metadata row yet, so repeated scans never
// re-download a key already attempted.
func extractMediaMetadata(ctx context.Context, idx *store.Store, client objectstore.Client, bucket, prefix string) (int, error) {
	objects, err := idx.AllObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}

	extracted := 0

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}

		if !media.IsMediaFile(obj.Key) {
			continue
		}

		_, found, err := idx.MediaMetadataByKey(ctx, obj.Key)
		if err != nil {
			return extracted, err
		}

		if found {
			continue
		}

		metadata := media.ExtractMetadata(ctx, client, bucket, obj.Key)

		if err := idx.UpsertMediaMetadata(ctx, metadata); err != nil {
			return extracted, err
		}

		extracted++
	}

	return extracted, nil
}
