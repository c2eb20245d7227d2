package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/logging"
	"vidscribe/internal/notifications"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/preflight"
	"vidscribe/internal/schedule"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags channelFlags
	var scheduleFlag string
	var now bool

	cmd := &cobra.Command{
		Use:   "watch <url|@handle>",
		Short: "Transcribe new channel videos on a schedule",
		Long: "Runs the channel workflow on a cron schedule until interrupted. " +
			"Videos already transcribed in an earlier run are always skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			opts, err := flags.run.options(cmd, cfg)
			if err != nil {
				return err
			}
			if err := preflight.Require(cfg, preflight.ScopeChannel); err != nil {
				return err
			}

			spec := cfg.Watch.Schedule
			if s := strings.TrimSpace(scheduleFlag); s != "" {
				spec = s
			}
			ref := args[0]
			out := cmd.OutOrStdout()
			notifier := notifications.NewService(cfg)
			job := func(jobCtx context.Context) error {
				run, err := runChannel(jobCtx, ctx, channelRequest{
					ref:           ref,
					opts:          opts,
					skipProcessed: true,
					progress:      &pipeline.LogProgress{Logger: logger},
				})
				if err != nil {
					notifyWarn(logger, notifier.NotifyError(context.WithoutCancel(jobCtx), err, "watch "+ref))
					return err
				}
				fmt.Fprintf(out, "%s processed=%d failed=%d matches=%d\n",
					run.result.EndTime.Format("2006-01-02 15:04:05"),
					len(run.result.Processed), len(run.result.Failed), run.result.TotalMatches())
				notifyWarn(logger, notifier.NotifyRunCompleted(context.WithoutCancel(jobCtx), runReport(run)))
				return nil
			}

			watcher, err := schedule.New(spec, job, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s on schedule %q (Ctrl+C to stop)\n", ref, spec)
			logger.Debug("watch configured", logging.String("channel", ref))
			return watcher.Run(cmd.Context(), now)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&scheduleFlag, "schedule", "", "Cron expression overriding watch.schedule")
	cmd.Flags().BoolVar(&now, "now", false, "Run once immediately before waiting for the schedule")
	return cmd
}

func runReport(run *channelRun) notifications.RunReport {
	report := notifications.RunReport{
		Channel:   run.summary.ChannelInfo.Title,
		Processed: len(run.result.Processed),
		Failed:    len(run.result.Failed),
		Matches:   run.result.TotalMatches(),
		Duration:  run.result.EndTime.Sub(run.result.StartTime),
	}
	for _, outcome := range run.result.Processed {
		if outcome.KeywordMatches > 0 {
			report.MatchedTitles = append(report.MatchedTitles, videoLabel(outcome))
		}
	}
	return report
}

func notifyWarn(logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(logger, "notification not delivered", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "watch results are still saved to disk"),
	)
}
