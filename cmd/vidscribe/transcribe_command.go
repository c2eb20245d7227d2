package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/transcript"
)

// runFlags are the options shared by every command that transcribes.
type runFlags struct {
	model        string
	format       string
	outputDir    string
	keywords     []string
	keywordsFile string
	context      int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model size (tiny, base, small, medium, large)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Transcript format (json, txt, csv)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for transcripts and results")
	cmd.Flags().StringArrayVarP(&f.keywords, "search", "s", nil, "Keyword to search for (repeatable)")
	cmd.Flags().StringVar(&f.keywordsFile, "keywords-file", "", "YAML file listing keywords")
	cmd.Flags().IntVarP(&f.context, "context", "C", 5, "Words of context on each side of a match")
}

// options applies the flags to cfg and builds pipeline options.
func (f *runFlags) options(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	if err := applyModelFlag(cfg, f.model); err != nil {
		return pipeline.Options{}, err
	}
	formatName := cfg.Output.Format
	if strings.TrimSpace(f.format) != "" {
		formatName = f.format
	}
	format, err := transcript.ParseFormat(formatName)
	if err != nil {
		return pipeline.Options{}, err
	}
	keywords, err := resolveKeywords(cfg, f.keywords, f.keywordsFile)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.DefaultOptions()
	opts.Format = format
	opts.Keywords = keywords
	opts.ContextRadius = contextRadius(cfg, f.context, cmd.Flags().Changed("context"))
	if dir := strings.TrimSpace(f.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.OutputDir = expanded
	}
	return opts, nil
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var saveSearch bool

	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a single video file",
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
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("video not found: %s", path)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory; use the batch command", path)
			}

			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			if opts.OutputDir != "" {
				opts.Layout = pipeline.LayoutFlat
			}
			opts.StampSearch = true
			opts.NoSearchFile = !saveSearch

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			engine := newEngine(cfg)
			runner := pipeline.NewRunner(engine, opts, logger,
				pipeline.WithRecorder(store),
				pipeline.WithProgress(&pipeline.LogProgress{Logger: logger}),
			)
			result, err := runner.Run(cmd.Context(), []pipeline.Unit{pipeline.LocalUnit(path)})
			if err != nil {
				return err
			}
			finishRun(cmd, store, history.KindTranscribe, path, result, "")

			out := cmd.OutOrStdout()
			if len(result.Failed) > 0 {
				return errors.New(result.Failed[0].Error)
			}
			if result.Interrupted || len(result.Processed) == 0 {
				return fmt.Errorf("transcription interrupted")
			}
			outcome := result.Processed[0]
			fmt.Fprintf(out, "Transcript saved to %s (%d segments)\n", outcome.TranscriptFile, outcome.SegmentsCount)
			if len(opts.Keywords) > 0 {
				printMatches(out, opts.Keywords, result.KeywordMatches[outcome.VideoFile])
				if outcome.SearchResultsFile != "" {
					fmt.Fprintf(out, "Search results saved to %s\n", outcome.SearchResultsFile)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&saveSearch, "save-search", false, "Also write matches to a search results file")
	return cmd
}

// finishRun stores the run totals. Ledger failures only warn; the artifacts
// on disk are the primary output.
func finishRun(cmd *cobra.Command, store *history.Store, kind history.Kind, source string, result *pipeline.BatchResult, summaryPath string) {
	if store == nil || result == nil || result.RunID == "" {
		return
	}
	if err := store.FinishRun(context.WithoutCancel(cmd.Context()), history.RunFromResult(kind, source, result, summaryPath)); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run in history: %v\n", err)
	}
}
