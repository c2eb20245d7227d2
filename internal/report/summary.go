package report

import (
	"fmt"
	"path/filepath"
	"time"

	"vidscribe/internal/fileutil"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/search"
)

// File name prefixes for persisted summaries.
const (
	BatchPrefix   = "batch_results"
	ChannelPrefix = "channel_summary"
)

// BatchSummary is the persisted record of a batch run.
type BatchSummary struct {
	RunID          string                    `json:"run_id"`
	Processed      []pipeline.Outcome        `json:"processed"`
	Failed         []pipeline.Outcome        `json:"failed"`
	KeywordMatches map[string][]search.Match `json:"keyword_matches"`
	StartTime      time.Time                 `json:"start_time"`
	EndTime        time.Time                 `json:"end_time"`
	Interrupted    bool                      `json:"interrupted,omitempty"`
	TotalProcessed int                       `json:"total_processed"`
	TotalFailed    int                       `json:"total_failed"`
	TotalMatches   int                       `json:"total_matches"`
}

// NewBatchSummary copies result and adds totals.
func NewBatchSummary(result *pipeline.BatchResult) BatchSummary {
	if result == nil {
		result = &pipeline.BatchResult{}
	}
	summary := BatchSummary{
		RunID:          result.RunID,
		Processed:      nonNilOutcomes(result.Processed),
		Failed:         nonNilOutcomes(result.Failed),
		KeywordMatches: result.KeywordMatches,
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		Interrupted:    result.Interrupted,
		TotalProcessed: len(result.Processed),
		TotalFailed:    len(result.Failed),
		TotalMatches:   result.TotalMatches(),
	}
	if summary.KeywordMatches == nil {
		summary.KeywordMatches = map[string][]search.Match{}
	}
	return summary
}

// ChannelInfo describes the channel a run drew from.
type ChannelInfo struct {
	Title      string `json:"title"`
	Uploader   string `json:"uploader,omitempty"`
	URL        string `json:"url,omitempty"`
	VideoCount int    `json:"video_count"`
}

// ChannelVideo is one successfully processed channel video.
type ChannelVideo struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	MatchesCount   int    `json:"matches_count"`
	TranscriptFile string `json:"transcript_file"`
}

// ChannelFailure is one channel video that failed.
type ChannelFailure struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ChannelSummary is the persisted record of a channel run.
type ChannelSummary struct {
	RunID           string           `json:"run_id"`
	ChannelInfo     ChannelInfo      `json:"channel_info"`
	Keywords        []string         `json:"keywords"`
	ModelUsed       string           `json:"model_used"`
	ProcessingDate  time.Time        `json:"processing_date"`
	TotalVideos     int              `json:"total_videos"`
	TotalFailed     int              `json:"total_failed"`
	TotalMatches    int              `json:"total_matches"`
	Interrupted     bool             `json:"interrupted,omitempty"`
	VideosProcessed []ChannelVideo   `json:"videos_processed"`
	VideosFailed    []ChannelFailure `json:"videos_failed"`
}

// ChannelOptions carries run settings recorded in a channel summary.
type ChannelOptions struct {
	Keywords []string
	Model    string
	// Considered is the number of catalog entries inspected before selection.
	Considered int
}

// NewChannelSummary builds the channel summary. TotalVideos counts the
// successfully processed videos.
func NewChannelSummary(info ChannelInfo, result *pipeline.BatchResult, opts ChannelOptions) ChannelSummary {
	if result == nil {
		result = &pipeline.BatchResult{}
	}
	if opts.Considered > 0 {
		info.VideoCount = opts.Considered
	}
	processed := make([]ChannelVideo, 0, len(result.Processed))
	for _, o := range result.Processed {
		processed = append(processed, ChannelVideo{
			Title:          o.Title,
			URL:            o.VideoFile,
			MatchesCount:   o.KeywordMatches,
			TranscriptFile: o.TranscriptFile,
		})
	}
	failed := make([]ChannelFailure, 0, len(result.Failed))
	for _, o := range result.Failed {
		failed = append(failed, ChannelFailure{Title: o.Title, URL: o.VideoFile, Error: o.Error})
	}
	keywords := append([]string(nil), opts.Keywords...)
	if keywords == nil {
		keywords = []string{}
	}
	date := result.EndTime
	if date.IsZero() {
		date = time.Now()
	}
	return ChannelSummary{
		RunID:           result.RunID,
		ChannelInfo:     info,
		Keywords:        keywords,
		ModelUsed:       opts.Model,
		ProcessingDate:  date,
		TotalVideos:     len(result.Processed),
		TotalFailed:     len(result.Failed),
		TotalMatches:    result.TotalMatches(),
		Interrupted:     result.Interrupted,
		VideosProcessed: processed,
		VideosFailed:    failed,
	}
}

// FileName returns <prefix>_YYYYMMDD_HHMMSS.json for the given time.
func FileName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, at.Format("20060102_150405"))
}

// Save writes v into dir as <prefix>_YYYYMMDD_HHMMSS.json and returns the path.
func Save(dir, prefix string, at time.Time, v any) (string, error) {
	path := filepath.Join(dir, FileName(prefix, at))
	if err := fileutil.WriteJSON(path, v); err != nil {
		return "", fmt.Errorf("save %s: %w", prefix, err)
	}
	return path, nil
}

func nonNilOutcomes(in []pipeline.Outcome) []pipeline.Outcome {
	if in == nil {
		return []pipeline.Outcome{}
	}
	return in
}
