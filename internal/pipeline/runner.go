package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vidscribe/internal/logging"
	"vidscribe/internal/search"
	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
	"vidscribe/internal/transcript"
)

// LockFileName guards an output directory against concurrent runs.
const LockFileName = ".vidscribe.lock"

// ErrOutputLocked reports another run writing into the same output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Runner executes batches of units.
type Runner struct {
	engine   *lazyEngine
	opts     Options
	logger   *slog.Logger
	progress Progress
	recorder Recorder
	now      func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithProgress sets the progress sink.
func WithProgress(p Progress) RunnerOption {
	return func(r *Runner) {
		if p != nil {
			r.progress = p
		}
	}
}

// WithRecorder mirrors outcomes to r.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock overrides time.Now (for tests).
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a runner. The loader is invoked at most once, the first
// time a run has work to do.
func NewRunner(loader Loader, opts Options, logger *slog.Logger, extra ...RunnerOption) *Runner {
	r := &Runner{
		engine:   &lazyEngine{loader: loader},
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		progress: nopProgress{},
		now:      time.Now,
	}
	for _, opt := range extra {
		opt(r)
	}
	return r
}

// Run processes units in order. The returned error is non-nil only for
// failures that prevent the run from starting (engine load, output lock);
// per-unit failures are reported in the result.
func (r *Runner) Run(ctx context.Context, units []Unit) (*BatchResult, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	result := &BatchResult{
		RunID:          runID,
		Processed:      []Outcome{},
		Failed:         []Outcome{},
		KeywordMatches: map[string][]search.Match{},
		StartTime:      r.now(),
	}
	if len(units) == 0 {
		result.EndTime = r.now()
		return result, nil
	}

	unlock, err := r.lockOutput()
	if err != nil {
		return nil, err
	}
	defer unlock()

	engine, err := r.engine.get(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrModelLoad) {
			err = services.Wrap(services.ErrModelLoad, "transcribe", "load engine", "", err)
		}
		logging.ErrorWithContext(logger, "transcription engine unavailable", "engine_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `vidscribe check` to verify the toolchain and credentials"),
		)
		return nil, err
	}

	r.progress.Start(len(units))
	for i, unit := range units {
		if ctx.Err() != nil {
			result.Interrupted = true
			logging.WarnWithContext(logger, "run interrupted", "run_interrupted",
				logging.Int("remaining", len(units)-i),
				logging.String(logging.FieldImpact, "remaining videos were not processed"),
				logging.String(logging.FieldErrorHint, "rerun to process the remaining videos"),
			)
			break
		}
		r.progress.Begin(i, unit)

		// Units are not preemptible: once started they run to completion.
		unitCtx := services.WithVideo(context.WithoutCancel(ctx), unit.Reference)
		outcome, matches := r.process(unitCtx, engine, unit)

		if outcome.Success {
			result.Processed = append(result.Processed, outcome)
			if len(matches) > 0 {
				result.KeywordMatches[unit.Reference] = matches
			}
		} else {
			result.Failed = append(result.Failed, outcome)
		}
		if r.recorder != nil {
			if err := r.recorder.RecordOutcome(unitCtx, runID, outcome); err != nil {
				logging.WarnWithContext(logger, "history update failed", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this video may be reprocessed by --skip-processed"),
				)
			}
		}
		r.progress.Done(i, outcome)
	}
	result.EndTime = r.now()
	r.progress.Finish(result)
	return result, nil
}

// process runs one unit and converts every failure, panics included, into a
// failed outcome.
func (r *Runner) process(ctx context.Context, engine Transcriber, unit Unit) (outcome Outcome, matches []search.Match) {
	started := r.now()
	outcome = Outcome{VideoFile: unit.Reference, Title: unit.Title}
	fail := func(msg, category string) {
		outcome.Success = false
		outcome.Error = msg
		outcome.ErrorCategory = category
		outcome.TranscriptFile = ""
		outcome.SearchResultsFile = ""
		outcome.SegmentsCount = 0
		outcome.KeywordMatches = 0
		matches = nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			fail(fmt.Sprintf("panic: %v", rec), "panic")
			logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "video processing panicked", "unit_panic",
				logging.Alert("panic"),
				logging.String(logging.FieldImpact, "this video was marked failed; the run continues"),
			)
		}
		outcome.Elapsed = r.now().Sub(started)
	}()

	logger := logging.WithContext(ctx, r.logger)

	mediaPath, err := unit.resolve(services.WithStage(ctx, "resolve"))
	if err != nil {
		fail(err.Error(), services.Category(err))
		return outcome, nil
	}
	outcome.LocalPath = mediaPath

	tr, err := engine.Transcribe(services.WithStage(ctx, "transcribe"), mediaPath)
	if err != nil {
		fail("transcription failed: "+err.Error(), services.Category(err))
		return outcome, nil
	}
	if tr == nil {
		fail("transcription failed", "empty_transcript")
		return outcome, nil
	}

	stem := unit.Stem
	if strings.TrimSpace(stem) == "" {
		stem = textutil.Stem(mediaPath)
	}
	paths := r.opts.paths(mediaPath, stem)
	if err := transcript.Save(tr, paths.transcript, r.opts.Format); err != nil {
		fail("failed to save transcript: "+err.Error(), "write")
		return outcome, nil
	}
	outcome.TranscriptFile = paths.transcript
	outcome.SegmentsCount = len(tr.Segments)
	logger.Debug("transcript saved",
		logging.String("path", paths.transcript),
		logging.Int("segments", len(tr.Segments)),
	)

	if len(r.opts.Keywords) > 0 {
		matches = search.Search(tr, r.opts.Keywords, r.opts.ContextRadius)
		if len(matches) > 0 && !r.opts.NoSearchFile {
			record := search.NewRecord(mediaPath, r.opts.Keywords, matches, r.opts.StampSearch)
			record.VideoInfo = unit.VideoInfo
			if err := record.Save(paths.search); err != nil {
				fail("failed to save search results: "+err.Error(), "write")
				return outcome, nil
			}
			outcome.SearchResultsFile = paths.search
		}
		outcome.KeywordMatches = len(matches)
	}

	outcome.Success = true
	return outcome, matches
}

func (r *Runner) lockOutput() (func(), error) {
	dir := strings.TrimSpace(r.opts.OutputDir)
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "output dir", dir, err)
	}
	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock output", dir, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock output", dir, ErrOutputLocked)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}
