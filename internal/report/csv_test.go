package report_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/calvinalkan/s3dedup/internal/report"
	"github.com/calvinalkan/s3dedup/internal/store"
)

func Test_WriteCSV_Emits_One_Row_Per_Object_With_Section_Discriminator(t *testing.T) {
	t.Parallel()

	groups := []store.DuplicateGroup{{
		Fingerprint: "fp1",
		Size:        10,
		Objects:     []store.Object{{Key: "a"}, {Key: "b"}},
	}}

	suspects := []store.SuspectNameGroup{{
		Normalized: "track",
		Files:      []store.Object{{Key: "c", ETag: "e1"}, {Key: "d", ETag: "e2"}},
	}}

	sameWork := []store.SameWorkGroup{{
		Artist: "artist", Title: "title",
		Files: []store.SameWorkFile{{Key: "e", Codec: "flac", Bitrate: 1000, Size: 5000}},
	}}

	r := report.Build(store.Stats{}, groups, suspects, sameWork)

	var buf bytes.Buffer

	if err := report.WriteCSV(&buf, r); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	// header + 2 duplicate rows + 2 suspect rows + 1 same-work row
	if len(records) != 6 {
		t.Fatalf("records = %d, want 6: %+v", len(records), records)
	}

	sections := make(map[string]int)
	for _, row := range records[1:] {
		sections[row[0]]++
	}

	if sections["duplicate"] != 2 || sections["suspect_name"] != 2 || sections["same_work"] != 1 {
		t.Fatalf("section counts = %+v", sections)
	}
}
