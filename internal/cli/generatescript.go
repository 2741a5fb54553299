package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/calvinalkan/s3dedup/internal/config"
	"github.com/calvinalkan/s3dedup/internal/report"
	"github.com/calvinalkan/s3dedup/internal/retention"
	"github.com/calvinalkan/s3dedup/internal/store"

	flag "github.com/spf13/pflag"
)

// GenerateScriptCmd returns the generate-script command.
func GenerateScriptCmd(cfg config.Config) *Command {
	fs := flag.NewFlagSet("generate-script", flag.ContinueOnError)
	fs.String("bucket", "", "Bucket the index was scanned from (required)")
	fs.String("keep", retention.DefaultKeep, "Comma-separated retention criteria")
	fs.String("db", "", "Override index path")
	fs.String("output", "", "Write to file instead of stdout")
	fs.String("endpoint-url", "", "S3-compatible endpoint URL")

	return &Command{
		Flags: fs,
		Usage: "generate-script --bucket <bucket> [flags]",
		Short: "Generate a deletion script for duplicate groups",
		Long:  "Apply a retention policy to every duplicate group and emit a bash script that deletes every non-keeper with aws s3 rm.",
		Exec: func(ctx context.Context, cmdIO *IO, _ []string) error {
			return execGenerateScript(ctx, cmdIO, cfg, fs)
		},
	}
}

func execGenerateScript(ctx context.Context, cmdIO *IO, cfg config.Config, fs *flag.FlagSet) error {
	bucket, _ := fs.GetString("bucket")
	if bucket == "" {
		return errBucketRequired
	}

	keep, _ := fs.GetString("keep")
	dbOverride, _ := fs.GetString("db")
	outputPath, _ := fs.GetString("output")
	endpointOverride, _ := fs.GetString("endpoint-url")

	criteria, err := retention.ParseKeep(keep)
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	idx, err := store.Open(ctx, cfg.ResolveDBPath(dbOverride))
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	defer func() { _ = idx.Close() }()

	endpointURL, err := resolveBucketEndpoint(ctx, idx, bucket, cfg.ResolveEndpointURL(endpointOverride))
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	groups, err := idx.GetAllDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	retention.SortGroupsByFingerprint(groups)

	stats, err := idx.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	script, err := report.GenerateDeleteScript(bucket, criteria, groups, stats, endpointURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	w, closeOutput, err := openScriptOutput(cmdIO, outputPath)
	if err != nil {
		return fmt.Errorf("generate-script: %w", err)
	}

	defer closeOutput()

	if _, err := io.WriteString(w, script); err != nil {
		return fmt.Errorf("generate-script: write output: %w", err)
	}

	return nil
}

// resolveBucketEndpoint prefers an explicit override, falling back to the
// endpoint the bucket was last scanned through so a later generate-script
// run doesn't need to repeat --endpoint-url.
func resolveBucketEndpoint(ctx context.Context, idx *store.Store, bucket, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	recorded, found, err := idx.BucketConfig(ctx, bucket)
	if err != nil {
		return "", err
	}

	if found {
		return recorded.EndpointURL, nil
	}

	return "", nil
}

func openScriptOutput(cmdIO *IO, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmdIO.Out(), func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}
