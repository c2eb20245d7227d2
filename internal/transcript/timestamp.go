package transcript

import "fmt"

// FormatTimestamp renders seconds as HH:MM:SS. Fractional seconds are
// truncated and hours keep counting past 24. Negative values render as
// 00:00:00.
func FormatTimestamp(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
