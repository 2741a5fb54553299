package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders r as a human-readable terminal report: a summary
// line followed by one table per non-empty section (spec.md §4.H).
func WriteTable(w io.Writer, r Report) error {
	fmt.Fprintf(w, "Objects scanned:     %d\n", r.Stats.TotalObjects)
	fmt.Fprintf(w, "Total size:          %s\n", HumanSize(r.Stats.TotalSize))
	fmt.Fprintf(w, "Duplicate groups:    %d\n", r.Stats.DuplicateGroups)
	fmt.Fprintf(w, "Duplicate objects:   %d\n", r.Stats.DuplicateObjects)
	fmt.Fprintf(w, "Reclaimable space:   %s\n", HumanSize(r.Stats.WastedBytes))
	fmt.Fprintln(w)

	if len(r.Groups) == 0 {
		fmt.Fprintln(w, "No duplicates detected.")
	} else {
		writeGroupsTable(w, r.Groups)
	}

	if len(r.SuspectNames) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suspect names (same normalized name, different content):")
		writeSuspectNamesTable(w, r.SuspectNames)
	}

	if len(r.SameWork) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Same work, different files:")
		writeSameWorkTable(w, r.SameWork)
	}

	return nil
}

func writeGroupsTable(w io.Writer, groups []GroupView) {
	sorted := make([]GroupView, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WastedBytes > sorted[j].WastedBytes })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Copies", "File size", "Wasted space", "Files"})
	table.SetRowLine(true)
	table.SetAutoWrapText(false)

	for i, g := range sorted {
		var keys string

		for j, o := range g.Objects {
			if j > 0 {
				keys += "\n"
			}

			keys += o.Key
		}

		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", len(g.Objects)),
			HumanSize(g.Size),
			HumanSize(g.WastedBytes),
			keys,
		})
	}

	table.Render()
}

func writeSuspectNamesTable(w io.Writer, groups []SuspectNameView) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Normalized name", "Files"})
	table.SetRowLine(true)
	table.SetAutoWrapText(false)

	for _, g := range groups {
		var keys string

		for j, f := range g.Files {
			if j > 0 {
				keys += "\n"
			}

			keys += fmt.Sprintf("%s (%s)", f.Key, f.ETag)
		}

		table.Append([]string{g.Normalized, keys})
	}

	table.Render()
}

func writeSameWorkTable(w io.Writer, groups []SameWorkView) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Artist", "Title", "Files"})
	table.SetRowLine(true)
	table.SetAutoWrapText(false)

	for _, g := range groups {
		var keys string

		for j, f := range g.Files {
			if j > 0 {
				keys += "\n"
			}

			keys += fmt.Sprintf("%s (%s, %dkbps, %s)", f.Key, f.Codec, f.Bitrate, HumanSize(f.Size))
		}

		table.Append([]string{g.Artist, g.Title, keys})
	}

	table.Render()
}
