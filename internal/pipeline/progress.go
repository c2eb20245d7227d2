package pipeline

import (
	"context"
	"log/slog"

	"vidscribe/internal/logging"
)

// Progress receives run lifecycle events. Implementations must not block for
// long; they run on the pipeline goroutine.
type Progress interface {
	Start(total int)
	Begin(index int, unit Unit)
	Done(index int, outcome Outcome)
	Finish(result *BatchResult)
}

// Recorder persists outcomes as they happen.
type Recorder interface {
	RecordOutcome(ctx context.Context, runID string, outcome Outcome) error
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Begin(int, Unit) {}
func (nopProgress) Done(int, Outcome) {}
func (nopProgress) Finish(*BatchResult) {}

// LogProgress reports progress through structured logs.
type LogProgress struct {
	Logger *slog.Logger
	total  int
}

func (p *LogProgress) Start(total int) {
	p.total = total
	p.logger().Info("run started", logging.Int("videos", total))
}

func (p *LogProgress) Begin(index int, unit Unit) {
	p.logger().Info("processing video",
		logging.Int("index", index+1),
		logging.Int("total", p.total),
		logging.String(logging.FieldVideo, unit.Label()),
	)
}

func (p *LogProgress) Done(index int, outcome Outcome) {
	if outcome.Success {
		p.logger().Info("video complete",
			logging.Int("index", index+1),
			logging.String(logging.FieldVideo, outcome.VideoFile),
			logging.String("transcript", outcome.TranscriptFile),
			logging.Int("matches", outcome.KeywordMatches),
			logging.Duration("elapsed", outcome.Elapsed),
		)
		return
	}
	logging.WarnWithContext(p.logger(), "video failed", "video_failed",
		logging.Int("index", index+1),
		logging.String(logging.FieldVideo, outcome.VideoFile),
		logging.String("reason", outcome.Error),
		logging.String(logging.FieldErrorHint, "inspect the error and rerun the video on its own"),
		logging.String(logging.FieldImpact, "no transcript was written for this video"),
	)
}

func (p *LogProgress) Finish(result *BatchResult) {
	p.logger().Info("run finished",
		logging.Int("processed", len(result.Processed)),
		logging.Int("failed", len(result.Failed)),
		logging.Int("matches", result.TotalMatches()),
		logging.Bool("interrupted", result.Interrupted),
	)
}

func (p *LogProgress) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return p.Logger
}
