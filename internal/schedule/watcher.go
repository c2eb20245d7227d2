package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Watcher fires Job on a cron schedule.
type Watcher struct {
	spec   string
	job    Job
	logger *slog.Logger
	cron   *cron.Cron
	sched  cron.Schedule
	loc    *time.Location

	mu   sync.Mutex
	runs int
	last error
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithLocation evaluates the schedule in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(w *Watcher) {
		w.loc = loc
	}
}

// New validates spec and builds a watcher. Standard five-field expressions
// and descriptors such as @hourly are accepted.
func New(spec string, job Job, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if job == nil {
		return nil, services.Wrap(services.ErrValidation, "schedule", "new", "Job is required", nil)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "parse", fmt.Sprintf("Invalid schedule %q", spec), err)
	}
	w := &Watcher{
		spec:   spec,
		job:    job,
		logger: logging.NewComponentLogger(logger, "schedule"),
		sched:  sched,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.loc == nil {
		w.loc = time.Local
	}
	adapter := cronLogger{w.logger}
	w.cron = cron.New(
		cron.WithLocation(w.loc),
		cron.WithLogger(adapter),
		cron.WithChain(cron.SkipIfStillRunning(adapter)),
	)
	return w, nil
}

// Next reports the first activation after t.
func (w *Watcher) Next(t time.Time) time.Time {
	return w.sched.Next(t.In(w.loc))
}

// Runs returns how many times the job has completed.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// LastError returns the error of the most recent run.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Run blocks until ctx is cancelled. When immediate is set the job also runs
// once before the first tick.
func (w *Watcher) Run(ctx context.Context, immediate bool) error {
	if _, err := w.cron.AddFunc(w.spec, func() { w.fire(ctx) }); err != nil {
		return services.Wrap(services.ErrConfiguration, "schedule", "add job", "Failed to register schedule", err)
	}
	w.logger.Info("watch started",
		logging.String("schedule", w.spec),
		logging.String("next_run", w.Next(time.Now()).Format(time.RFC3339)),
	)
	if immediate {
		w.fire(ctx)
	}
	w.cron.Start()

	<-ctx.Done()
	stopped := w.cron.Stop()
	<-stopped.Done()
	w.logger.Info("watch stopped", logging.Int("runs", w.Runs()))
	return nil
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	w.logger.Info("scheduled run starting")
	err := w.job(ctx)

	w.mu.Lock()
	w.runs++
	w.last = err
	w.mu.Unlock()

	if err != nil {
		logging.ErrorWithContext(w.logger, "scheduled run failed", "schedule_run_failed",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(start)),
		)
		return
	}
	w.logger.Info("scheduled run finished",
		logging.Duration("elapsed", time.Since(start)),
		logging.String("next_run", w.Next(time.Now()).Format(time.RFC3339)),
	)
}

// cronLogger routes cron's internal messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{logging.Error(err)}, keysAndValues...)
	l.logger.Warn("cron: "+msg, args...)
}
