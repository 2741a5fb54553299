package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV serializes r as one CSV row per object, with a leading
// "section" discriminator column distinguishing duplicate groups,
// suspect-name groups, and same-work groups (spec.md §4.H).
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{
		"section", "group_key", "group_key_2", "key", "size", "etag",
		"last_modified", "codec", "bitrate",
	})
	if err != nil {
		return fmt.Errorf("write csv report: header: %w", err)
	}

	for _, g := range r.Groups {
		for _, o := range g.Objects {
			err = cw.Write([]string{
				"duplicate", g.Fingerprint, strconv.FormatInt(g.Size, 10),
				o.Key, "", "", o.LastModified, "", "",
			})
			if err != nil {
				return fmt.Errorf("write csv report: duplicate row: %w", err)
			}
		}
	}

	for _, s := range r.SuspectNames {
		for _, f := range s.Files {
			err = cw.Write([]string{
				"suspect_name", s.Normalized, "",
				f.Key, strconv.FormatInt(f.Size, 10), f.ETag, "", "", "",
			})
			if err != nil {
				return fmt.Errorf("write csv report: suspect_name row: %w", err)
			}
		}
	}

	for _, g := range r.SameWork {
		for _, f := range g.Files {
			err = cw.Write([]string{
				"same_work", g.Artist, g.Title,
				f.Key, strconv.FormatInt(f.Size, 10), "", "", f.Codec, strconv.Itoa(f.Bitrate),
			})
			if err != nil {
				return fmt.Errorf("write csv report: same_work row: %w", err)
			}
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv report: flush: %w", err)
	}

	return nil
}
