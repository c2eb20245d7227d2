package selection

import (
	"sort"
	"strings"
)

// Candidate describes a video available for processing.
type Candidate struct {
	ID         string
	Title      string
	UploadDate string // YYYYMMDD
	Duration   *float64
	WasLive    bool
	IsLive     bool
	URL        string
	Uploader   string
}

// Live reports whether the candidate is or was a live broadcast.
func (c Candidate) Live() bool {
	return c.WasLive || c.IsLive
}

// Options configure Filter. Zero values leave the corresponding rule off.
type Options struct {
	MaxCount             int
	DurationLimitMinutes int
	LiveOnly             bool
}

// Filter applies the selection rules and returns a new slice.
func Filter(candidates []Candidate, opts Options) []Candidate {
	limit := float64(opts.DurationLimitMinutes) * 60

	var live, regular []Candidate
	for _, c := range candidates {
		if strings.TrimSpace(c.ID) == "" {
			continue
		}
		if opts.DurationLimitMinutes > 0 && c.Duration != nil && *c.Duration > limit {
			continue
		}
		if c.Live() {
			live = append(live, c)
		} else {
			regular = append(regular, c)
		}
	}

	newestFirst(live)
	newestFirst(regular)

	out := make([]Candidate, 0, len(live)+len(regular))
	out = append(out, live...)
	if !opts.LiveOnly {
		out = append(out, regular...)
	}
	if opts.MaxCount > 0 && len(out) > opts.MaxCount {
		out = out[:opts.MaxCount]
	}
	return out
}

// newestFirst sorts by upload date descending. YYYYMMDD strings order
// chronologically, and a missing date sorts last.
func newestFirst(list []Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UploadDate > list[j].UploadDate
	})
}
