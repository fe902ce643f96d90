package timer

import "fmt"

// FormatDuration renders ms as HH:MM:SS, flooring to whole seconds.
// Non-positive input renders as 00:00:00.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "00:00:00"
	}

	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
