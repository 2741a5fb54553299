package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/calvinalkan/s3dedup/internal/report"
	"github.com/calvinalkan/s3dedup/internal/store"
)

func Test_GenerateDeleteScript_Emits_One_Rm_Per_Non_Keeper(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	groups := []store.DuplicateGroup{{
		Fingerprint: "fp1",
		Size:        100,
		Objects: []store.Object{
			{Key: "long-name-copy.txt", LastModified: now},
			{Key: "short.txt", LastModified: now},
		},
	}}

	stats := store.Stats{DuplicateGroups: 1, DuplicateObjects: 1, WastedBytes: 100}

	script, err := report.GenerateDeleteScript("my-bucket", []string{"shortest"}, groups, stats, "", now)
	if err != nil {
		t.Fatalf("generate delete script: %v", err)
	}

	if !strings.HasPrefix(script, "#!/usr/bin/env bash\n") {
		t.Fatalf("script missing shebang: %s", script)
	}

	if !strings.Contains(script, "set -euo pipefail") {
		t.Fatal("script missing set -euo pipefail")
	}

	if strings.Count(script, "aws s3 rm") != 1 {
		t.Fatalf("expected exactly one rm line: %s", script)
	}

	if !strings.Contains(script, "'s3://my-bucket/long-name-copy.txt'") {
		t.Fatalf("script should delete the longer name, kept script: %s", script)
	}

	if strings.Contains(script, "'s3://my-bucket/short.txt'") {
		t.Fatalf("script should not delete the keeper: %s", script)
	}
}

func Test_GenerateDeleteScript_With_Endpoint_Sets_Endpoint_Var(t *testing.T) {
	t.Parallel()

	script, err := report.GenerateDeleteScript("b", []string{"shortest"}, nil, store.Stats{}, "http://localhost:9000", time.Now())
	if err != nil {
		t.Fatalf("generate delete script: %v", err)
	}

	if !strings.Contains(script, `ENDPOINT="--endpoint-url http://localhost:9000"`) {
		t.Fatalf("script missing endpoint var: %s", script)
	}
}

func Test_GenerateDeleteScript_No_Groups_Prints_No_Duplicates_Message(t *testing.T) {
	t.Parallel()

	script, err := report.GenerateDeleteScript("b", []string{"shortest"}, nil, store.Stats{}, "", time.Now())
	if err != nil {
		t.Fatalf("generate delete script: %v", err)
	}

	if !strings.Contains(script, "No duplicates detected.") {
		t.Fatalf("script missing no-duplicates message: %s", script)
	}
}

func Test_GenerateDeleteScript_Escapes_Single_Quotes_In_Keys(t *testing.T) {
	t.Parallel()

	now := time.Now()

	groups := []store.DuplicateGroup{{
		Fingerprint: "fp1",
		Size:        1,
		Objects: []store.Object{
			{Key: "it's a file.txt", LastModified: now},
			{Key: "short.txt", LastModified: now},
		},
	}}

	script, err := report.GenerateDeleteScript("b", []string{"shortest"}, groups, store.Stats{DuplicateGroups: 1, DuplicateObjects: 1}, "", now)
	if err != nil {
		t.Fatalf("generate delete script: %v", err)
	}

	if !strings.Contains(script, `it'\''s a file.txt`) {
		t.Fatalf("script should escape embedded apostrophe: %s", script)
	}
}

func Test_GenerateDeleteScript_Returns_Error_For_Invalid_Criteria(t *testing.T) {
	t.Parallel()

	groups := []store.DuplicateGroup{{Objects: []store.Object{{Key: "a"}, {Key: "b"}}}}

	_, err := report.GenerateDeleteScript("b", []string{"bogus"}, groups, store.Stats{}, "", time.Now())
	if err == nil {
		t.Fatal("expected error for invalid criteria")
	}
}
