package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/report"
	"vidscribe/internal/selection"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var recursive bool
	var maxVideos int
	var maxDuration int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Transcribe every video in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			paths, err := pipeline.Discover(dir, recursive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			status := out
			if jsonOut {
				status = cmd.ErrOrStderr()
			}
			if len(paths) == 0 {
				fmt.Fprintf(status, "No video files found in %s\n", dir)
				return nil
			}

			var units []pipeline.Unit
			if maxVideos > 0 || maxDuration > 0 {
				candidates := pipeline.LocalCandidates(cmd.Context(), paths, pipeline.FFprobe(cfg.FFprobeBinary()))
				selected := selection.Filter(candidates, selection.Options{
					MaxCount:             maxVideos,
					DurationLimitMinutes: maxDuration,
				})
				units = pipeline.LocalUnits(selected)
				fmt.Fprintf(status, "Selected %d of %d video(s)\n", len(units), len(paths))
			} else {
				for _, p := range paths {
					units = append(units, pipeline.LocalUnit(p))
				}
				fmt.Fprintf(status, "Found %d video(s)\n", len(units))
			}

			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			opts.StampSearch = true
			summaryDir := dir
			if opts.OutputDir != "" {
				opts.Layout = pipeline.LayoutPerVideo
				summaryDir = opts.OutputDir
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runner := pipeline.NewRunner(newEngine(cfg), opts, logger,
				pipeline.WithRecorder(store),
				pipeline.WithProgress(newProgress(cmd.ErrOrStderr(), logger)),
			)
			result, err := runner.Run(cmd.Context(), units)
			if err != nil {
				return err
			}

			summaryPath, err := report.Save(summaryDir, report.BatchPrefix, time.Now(), report.NewBatchSummary(result))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				summaryPath = ""
			}
			finishRun(cmd, store, history.KindBatch, dir, result, summaryPath)

			if jsonOut {
				return writeJSON(cmd, report.NewBatchSummary(result))
			}
			printRunSummary(out, result)
			if summaryPath != "" {
				fmt.Fprintf(out, "Batch results saved to %s\n", filepath.Clean(summaryPath))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Include videos in subdirectories (--recursive=false for the top level only)")
	cmd.Flags().IntVar(&maxVideos, "max-videos", 0, "Process at most this many videos (0 = all)")
	cmd.Flags().IntVar(&maxDuration, "max-duration", 0, "Skip videos longer than this many minutes (0 = no limit)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the batch summary as JSON")
	return cmd
}
