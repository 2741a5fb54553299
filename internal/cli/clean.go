package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/calvinalkan/s3dedup/internal/config"
	"github.com/calvinalkan/s3dedup/internal/rename"
	"github.com/calvinalkan/s3dedup/internal/report"
	"github.com/calvinalkan/s3dedup/internal/store"

	flag "github.com/spf13/pflag"
)

const defaultCleanRules = "strip-spaces"

var errUnknownRule = errors.New("unknown cleanup rule")

// CleanCmd returns the clean command.
func CleanCmd(cfg config.Config) *Command {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	fs.String("bucket", "", "Bucket the index was scanned from (required)")
	fs.String("prefix", "", "Only plan renames for keys under this prefix")
	fs.String("rules", defaultCleanRules, "Comma-separated cleanup rules to apply")
	fs.String("db", "", "Override index path")
	fs.String("output", "", "Write to file instead of stdout")
	fs.String("endpoint-url", "", "S3-compatible endpoint URL")

	return &Command{
		Flags: fs,
		Usage: "clean --bucket <bucket> [flags]",
		Short: "Generate a rename script for messy keys",
		Long:  "Apply cleanup rules to every indexed key, resolve any resulting target collisions, and emit a bash script that runs aws s3 mv for each rename.",
		Exec: func(ctx context.Context, cmdIO *IO, _ []string) error {
			return execClean(ctx, cmdIO, cfg, fs)
		},
	}
}

func execClean(ctx context.Context, cmdIO *IO, cfg config.Config, fs *flag.FlagSet) error {
	bucket, _ := fs.GetString("bucket")
	if bucket == "" {
		return errBucketRequired
	}

	prefix, _ := fs.GetString("prefix")
	rulesFlag, _ := fs.GetString("rules")
	dbOverride, _ := fs.GetString("db")
	outputPath, _ := fs.GetString("output")
	endpointOverride, _ := fs.GetString("endpoint-url")

	rules, err := resolveRules(rulesFlag)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	idx, err := store.Open(ctx, cfg.ResolveDBPath(dbOverride))
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	defer func() { _ = idx.Close() }()

	endpointURL, err := resolveBucketEndpoint(ctx, idx, bucket, cfg.ResolveEndpointURL(endpointOverride))
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	objects, err := idx.AllObjects(ctx, prefix)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	keys := make([]string, len(objects))
	for i, obj := range objects {
		keys[i] = obj.Key
	}

	plan := rename.Plan(rules, keys)

	script := report.GenerateCleanScript(bucket, plan, endpointURL, time.Now().UTC())

	w, closeOutput, err := openScriptOutput(cmdIO, outputPath)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	defer closeOutput()

	if _, err := io.WriteString(w, script); err != nil {
		return fmt.Errorf("clean: write output: %w", err)
	}

	return nil
}

// resolveRules resolves a comma-separated --rules value against
// rename.AvailableRules, reporting every unknown name before any index
// work begins (spec's validation-error-before-scan policy).
func resolveRules(value string) ([]rename.Rule, error) {
	names := strings.Split(value, ",")

	rules := make([]rename.Rule, 0, len(names))

	var unknown []string

	for _, n := range names {
		name := strings.TrimSpace(n)

		rule, ok := rename.AvailableRules[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}

		rules = append(rules, rule)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (valid: %s)", errUnknownRule, strings.Join(unknown, ", "), validRuleNames())
	}

	return rules, nil
}

func validRuleNames() string {
	names := make([]string, 0, len(rename.AvailableRules))
	for name := range rename.AvailableRules {
		names = append(names, name)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}
