package report

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// WriteJSON serializes r to w using the fixed schema from spec.md §6,
// two-space indented to match the original's `json.dumps(..., indent=2)`.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}

	return nil
}
