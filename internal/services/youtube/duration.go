package youtube

import (
	"regexp"
	"strconv"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration converts an ISO 8601 duration such as "PT1H2M3S" into
// seconds. ok is false for empty or malformed values, and for "P0D", which
// the API reports for live broadcasts still in progress.
func parseDuration(value string) (float64, bool) {
	m := isoDuration.FindStringSubmatch(value)
	if m == nil || value == "P" || value == "PT" {
		return 0, false
	}
	units := []int{86400, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * unit
	}
	if total == 0 {
		return 0, false
	}
	return float64(total), true
}
