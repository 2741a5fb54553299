package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/calvinalkan/s3dedup/internal/retention"
	"github.com/calvinalkan/s3dedup/internal/store"
)

// GenerateDeleteScript builds the bash deletion script content for
// `generate-script`, choosing one keeper per group via criteria and
// emitting an `aws s3 rm` line for every other member (spec.md §4.H).
func GenerateDeleteScript(bucket string, criteria []string, groups []store.DuplicateGroup, stats store.Stats, endpointURL string, generatedAt time.Time) (string, error) {
	keepLabel := strings.Join(criteria, ",")

	var b strings.Builder

	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# S3 duplicate deletion script\n")
	fmt.Fprintf(&b, "# Bucket: %s\n", bucket)
	fmt.Fprintf(&b, "# Generated: %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "# Retention policy: --keep %s\n", keepLabel)
	fmt.Fprintf(&b, "# Duplicate groups: %d\n", stats.DuplicateGroups)
	fmt.Fprintf(&b, "# Objects to delete: %d\n", stats.DuplicateObjects)
	fmt.Fprintf(&b, "# Reclaimable space: %s\n", HumanSize(stats.WastedBytes))
	b.WriteString("#\n")
	b.WriteString("# WARNING: Review this script before running it!\n")
	b.WriteString("# S3 deletions are IRREVERSIBLE.\n")
	b.WriteString("#\n")
	b.WriteString("# For a dry run, uncomment the next line:\n")
	b.WriteString("# DRY_RUN=\"--dryrun\"\n")
	b.WriteString("\n")
	b.WriteString("set -euo pipefail\n")
	writeEndpointVar(&b, endpointURL)
	b.WriteString("\n")

	if len(groups) == 0 {
		b.WriteString("echo 'No duplicates detected.'\n")
		return b.String(), nil
	}

	deleted := 0

	for i, group := range groups {
		keeper, toDelete, err := retention.SelectKeeper(group, criteria)
		if err != nil {
			return "", fmt.Errorf("generate delete script: %w", err)
		}

		fmt.Fprintf(&b, "# --- Group %d (%d copies, %s reclaimable)\n", i+1, len(group.Objects), HumanSize(group.WastedBytes()))
		fmt.Fprintf(&b, "# Fingerprint: %s\n", group.Fingerprint)
		fmt.Fprintf(&b, "# Kept: %s\n", keeper.Key)

		for _, obj := range toDelete {
			fmt.Fprintf(&b, "aws s3 rm ${DRY_RUN:-} $ENDPOINT 's3://%s/%s'\n", bucket, escapeSingleQuotes(obj.Key))
			deleted++
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "echo 'Done: %d objects deleted, %s reclaimed.'\n", deleted, HumanSize(stats.WastedBytes))

	return b.String(), nil
}

func writeEndpointVar(b *strings.Builder, endpointURL string) {
	if endpointURL != "" {
		fmt.Fprintf(b, "ENDPOINT=\"--endpoint-url %s\"\n", endpointURL)
		return
	}

	b.WriteString("ENDPOINT=\"\"\n")
}

// escapeSingleQuotes escapes an S3 key for safe embedding inside a
// single-quoted shell argument.
func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
