package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidscribe/internal/pipeline"
)

// Kind names the command that produced a run.
type Kind string

const (
	KindTranscribe Kind = "transcribe"
	KindBatch      Kind = "batch"
	KindChannel    Kind = "channel"
)

// Run is one row of the ledger.
type Run struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Source       string    `json:"source,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	Processed    int       `json:"processed"`
	Failed       int       `json:"failed"`
	TotalMatches int       `json:"total_matches"`
	Interrupted  bool      `json:"interrupted,omitempty"`
	SummaryPath  string    `json:"summary_path,omitempty"`
}

// Duration returns the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFromResult converts a batch result into a ledger row.
func RunFromResult(kind Kind, source string, result *pipeline.BatchResult, summaryPath string) Run {
	return Run{
		ID:           result.RunID,
		Kind:         kind,
		Source:       source,
		StartedAt:    result.StartTime,
		FinishedAt:   result.EndTime,
		Processed:    len(result.Processed),
		Failed:       len(result.Failed),
		TotalMatches: result.TotalMatches(),
		Interrupted:  result.Interrupted,
		SummaryPath:  summaryPath,
	}
}

// Video is one recorded outcome.
type Video struct {
	RunID          string    `json:"run_id"`
	Reference      string    `json:"reference"`
	Title          string    `json:"title,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	ErrorCategory  string    `json:"error_category,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	SearchPath     string    `json:"search_path,omitempty"`
	MatchCount     int       `json:"match_count"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, kind, source, started_at, finished_at, processed, failed, total_matches, interrupted, summary_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		kind        string
		source      sql.NullString
		started     string
		finished    sql.NullString
		interrupted int
		summary     sql.NullString
	)
	if err := row.Scan(&run.ID, &kind, &source, &started, &finished,
		&run.Processed, &run.Failed, &run.TotalMatches, &interrupted, &summary); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = Kind(kind)
	run.Source = source.String
	run.SummaryPath = summary.String
	run.Interrupted = interrupted != 0
	if ts, err := parseTimeString(started); err == nil {
		run.StartedAt = ts
	}
	if finished.Valid {
		if ts, err := parseTimeString(finished.String); err == nil {
			run.FinishedAt = ts
		}
	}
	return run, nil
}

func scanVideo(row scanner) (Video, error) {
	var (
		v          Video
		title      sql.NullString
		success    int
		errMsg     sql.NullString
		category   sql.NullString
		transcript sql.NullString
		searchPath sql.NullString
		processed  string
	)
	if err := row.Scan(&v.RunID, &v.Reference, &title, &success, &errMsg, &category,
		&transcript, &searchPath, &v.MatchCount, &processed); err != nil {
		return Video{}, fmt.Errorf("scan video: %w", err)
	}
	v.Title = title.String
	v.Success = success != 0
	v.Error = errMsg.String
	v.ErrorCategory = category.String
	v.TranscriptPath = transcript.String
	v.SearchPath = searchPath.String
	if ts, err := parseTimeString(processed); err == nil {
		v.ProcessedAt = ts
	}
	return v, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
