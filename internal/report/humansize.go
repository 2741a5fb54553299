package report

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize renders a byte count as a human-readable string with one
// decimal place, stepping through B/KB/MB/GB/TB/PB at each factor of
// 1024.
func HumanSize(sizeBytes int64) string {
	size := float64(sizeBytes)

	for _, unit := range sizeUnits {
		if size > -1024 && size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}

		size /= 1024
	}

	return fmt.Sprintf("%.1f PB", size)
}
