package pipeline

import (
	"time"

	"vidscribe/internal/search"
)

// Outcome is the result of processing one unit.
type Outcome struct {
	VideoFile         string        `json:"video_file"`
	Title             string        `json:"title,omitempty"`
	LocalPath         string        `json:"local_path,omitempty"`
	TranscriptFile    string        `json:"transcript_file,omitempty"`
	SearchResultsFile string        `json:"search_results_file,omitempty"`
	SegmentsCount     int           `json:"segments_count,omitempty"`
	KeywordMatches    int           `json:"keyword_matches"`
	Success           bool          `json:"success"`
	Error             string        `json:"error,omitempty"`
	// ErrorCategory is a short failure label (see services.Category).
	ErrorCategory     string        `json:"error_category,omitempty"`
	Elapsed           time.Duration `json:"-"`
}

// BatchResult accumulates outcomes for a run.
type BatchResult struct {
	RunID          string                    `json:"run_id"`
	Processed      []Outcome                 `json:"processed"`
	Failed         []Outcome                 `json:"failed"`
	KeywordMatches map[string][]search.Match `json:"keyword_matches"`
	StartTime      time.Time                 `json:"start_time"`
	EndTime        time.Time                 `json:"end_time"`
	Interrupted    bool                      `json:"interrupted,omitempty"`
}

// TotalMatches sums keyword matches over successful units.
func (r *BatchResult) TotalMatches() int {
	total := 0
	for _, o := range r.Processed {
		total += o.KeywordMatches
	}
	return total
}

// Attempted returns how many units were started.
func (r *BatchResult) Attempted() int {
	return len(r.Processed) + len(r.Failed)
}
