// Package report renders duplicate-scan results as JSON, CSV, or a
// terminal table, and assembles the bash scripts that actually delete or
// rename keys (spec.md §4.H, §6).
package report

import (
	"time"

	"github.com/calvinalkan/s3dedup/internal/store"
)

// Report is the full, format-independent view of a scan: the fixed JSON
// schema from spec.md §6, reused as the intermediate model for the CSV and
// table renderers too.
type Report struct {
	Stats        StatsView         `json:"stats"`
	Groups       []GroupView       `json:"groups"`
	SuspectNames []SuspectNameView `json:"suspect_names,omitempty"`
	SameWork     []SameWorkView    `json:"same_work,omitempty"`
}

// StatsView mirrors the JSON schema's "stats" object.
type StatsView struct {
	TotalObjects     int64 `json:"total_objects"`
	TotalSize        int64 `json:"total_size"`
	DuplicateGroups  int   `json:"duplicate_groups"`
	DuplicateObjects int   `json:"duplicate_objects"`
	WastedBytes      int64 `json:"wasted_bytes"`
}

// GroupView mirrors one entry of the JSON schema's "groups" array.
type GroupView struct {
	Fingerprint string       `json:"fingerprint"`
	Size        int64        `json:"size"`
	WastedBytes int64        `json:"wasted_bytes"`
	Objects     []ObjectView `json:"objects"`
}

// ObjectView is one member of a GroupView.
type ObjectView struct {
	Key          string `json:"key"`
	LastModified string `json:"last_modified"`
}

// SuspectNameView mirrors one entry of the optional "suspect_names" array.
type SuspectNameView struct {
	Normalized string       `json:"normalized"`
	Files      []FileView   `json:"files"`
}

// FileView is one member of a SuspectNameView.
type FileView struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"etag"`
}

// SameWorkView mirrors one entry of the optional "same_work" array.
type SameWorkView struct {
	Artist string           `json:"artist"`
	Title  string           `json:"title"`
	Files  []SameWorkFileView `json:"files"`
}

// SameWorkFileView is one member of a SameWorkView, ordered by descending
// size per spec.md §4.H.
type SameWorkFileView struct {
	Key     string `json:"key"`
	Codec   string `json:"codec"`
	Bitrate int    `json:"bitrate"`
	Size    int64  `json:"size"`
}

// Build assembles a Report from the raw index query results. Sections
// backed by no data are left as nil slices so the JSON encoder omits
// them, per spec.md §6 ("sections whose source data is empty are
// omitted").
func Build(stats store.Stats, groups []store.DuplicateGroup, suspects []store.SuspectNameGroup, sameWork []store.SameWorkGroup) Report {
	r := Report{
		Stats: StatsView{
			TotalObjects:     stats.TotalObjects,
			TotalSize:        stats.TotalSize,
			DuplicateGroups:  stats.DuplicateGroups,
			DuplicateObjects: stats.DuplicateObjects,
			WastedBytes:      stats.WastedBytes,
		},
		Groups: []GroupView{},
	}

	for _, g := range groups {
		gv := GroupView{
			Fingerprint: g.Fingerprint,
			Size:        g.Size,
			WastedBytes: g.WastedBytes(),
		}

		for _, o := range g.Objects {
			gv.Objects = append(gv.Objects, ObjectView{
				Key:          o.Key,
				LastModified: o.LastModified.Format(time.RFC3339),
			})
		}

		r.Groups = append(r.Groups, gv)
	}

	for _, s := range suspects {
		sv := SuspectNameView{Normalized: s.Normalized}

		for _, f := range s.Files {
			sv.Files = append(sv.Files, FileView{Key: f.Key, Size: f.Size, ETag: f.ETag})
		}

		r.SuspectNames = append(r.SuspectNames, sv)
	}

	for _, g := range sameWork {
		wv := SameWorkView{Artist: g.Artist, Title: g.Title}

		for _, f := range g.Files {
			wv.Files = append(wv.Files, SameWorkFileView{Key: f.Key, Codec: f.Codec, Bitrate: f.Bitrate, Size: f.Size})
		}

		r.SameWork = append(r.SameWork, wv)
	}

	return r
}
