package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/calvinalkan/s3dedup/internal/rename"
)

// GenerateCleanScript builds the bash rename script content for `clean`,
// one `aws s3 mv` line per planned rename, prefixed with a comment when a
// collision forced the target away from the rule's original output
// (spec.md §4.H).
//
// The dry-run comment always names the script "clean.sh" regardless of
// the operator's actual --output path — see DESIGN.md Open Question 1,
// preserved bug-for-bug from the original.
func GenerateCleanScript(bucket string, plan rename.Result, endpointURL string, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# S3 key cleanup script\n")
	fmt.Fprintf(&b, "# Bucket: %s\n", bucket)
	fmt.Fprintf(&b, "# Generated: %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "# Renames: %d\n", len(plan.Renames))
	b.WriteString("#\n")
	b.WriteString("# WARNING: Review this script before running it!\n")
	b.WriteString("#\n")
	b.WriteString("\n")
	b.WriteString("set -euo pipefail\n")
	b.WriteString("\n")
	b.WriteString("# Dry run: bash clean.sh --dryrun\n")
	b.WriteString("DRY_RUN=\"\"\n")
	b.WriteString("if [[ \"${1:-}\" == \"--dryrun\" ]]; then\n")
	b.WriteString("  DRY_RUN=\"--dryrun\"\n")
	b.WriteString("  echo \"Dry-run mode: no renames will actually happen.\"\n")
	b.WriteString("fi\n")
	writeEndpointVar(&b, endpointURL)
	b.WriteString("\n")

	if len(plan.Renames) == 0 {
		b.WriteString("echo 'No renames needed.'\n")
		return b.String()
	}

	sorted := make([]rename.Rename, len(plan.Renames))
	copy(sorted, plan.Renames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	for _, r := range sorted {
		if r.Target != r.OriginalTarget {
			fmt.Fprintf(&b, "# Conflict resolved: '%s' already exists -> renamed to '%s'\n", r.OriginalTarget, r.Target)
		}

		fmt.Fprintf(&b, "aws s3 mv --copy-props metadata-directive ${DRY_RUN:-} $ENDPOINT 's3://%s/%s' 's3://%s/%s'\n",
			bucket, escapeSingleQuotes(r.Source), bucket, escapeSingleQuotes(r.Target))
	}

	b.WriteString("\n")
	b.WriteString("if [[ -n \"$DRY_RUN\" ]]; then\n")
	fmt.Fprintf(&b, "  echo 'Dry-run done: %d objects to rename.'\n", len(plan.Renames))
	b.WriteString("else\n")
	fmt.Fprintf(&b, "  echo 'Done: %d objects renamed.'\n", len(plan.Renames))
	b.WriteString("fi\n")

	return b.String()
}
