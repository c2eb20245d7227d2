package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/report"
	"vidscribe/internal/search"
	"vidscribe/internal/selection"
	"vidscribe/internal/services"
	"vidscribe/internal/services/youtube"
	"vidscribe/internal/services/ytdlp"
)

// catalog lists a channel's recent uploads.
type catalog interface {
	ListChannel(ctx context.Context, ref string) (ytdlp.Channel, error)
}

// downloader fetches one video into a directory.
type downloader interface {
	Download(ctx context.Context, videoURL, dir string) (ytdlp.Download, error)
}

// newCatalog and newDownloader are replaced in tests.
var (
	newCatalog = func(ctx context.Context, cfg *config.Config) (catalog, error) {
		if cfg.Channel.Catalog == config.CatalogYouTubeAPI {
			return youtube.New(ctx, youtube.Config{
				APIKey: cfg.Channel.YouTubeAPIKey,
				Limit:  cfg.Channel.PlaylistEnd,
			})
		}
		return ytdlpClient(cfg), nil
	}
	newDownloader = func(cfg *config.Config) downloader {
		return ytdlpClient(cfg)
	}
)

func ytdlpClient(cfg *config.Config) *ytdlp.Client {
	return ytdlp.New(ytdlp.Config{
		Binary:      cfg.YTDLPBinary(),
		PlaylistEnd: cfg.Channel.PlaylistEnd,
		Format:      cfg.Channel.DownloadFormat,
	})
}

type channelFlags struct {
	run           runFlags
	liveOnly      bool
	maxVideos     int
	maxDuration   int
	skipProcessed bool
	catalog       string
	jsonOut       bool
}

func (f *channelFlags) register(cmd *cobra.Command) {
	f.run.register(cmd)
	cmd.Flags().BoolVar(&f.liveOnly, "live-only", true, "Only process videos that are or were live streams")
	cmd.Flags().IntVar(&f.maxVideos, "max-videos", 5, "Process at most this many videos")
	cmd.Flags().IntVar(&f.maxDuration, "max-duration", 60, "Skip videos longer than this many minutes (0 = no limit)")
	cmd.Flags().BoolVar(&f.skipProcessed, "skip-processed", false, "Skip videos already transcribed in an earlier run")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Channel listing backend (ytdlp, youtube_api)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the channel summary as JSON")
}

// apply copies explicitly set flags over the configured channel defaults.
func (f *channelFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("live-only") {
		cfg.Channel.LiveOnly = f.liveOnly
	}
	if flags.Changed("max-videos") {
		cfg.Channel.MaxVideos = f.maxVideos
	}
	if flags.Changed("max-duration") {
		cfg.Channel.MaxDurationMinutes = f.maxDuration
	}
	if catalog := strings.TrimSpace(f.catalog); catalog != "" {
		switch catalog {
		case config.CatalogYTDLP, config.CatalogYouTubeAPI:
			cfg.Channel.Catalog = catalog
		default:
			return fmt.Errorf("invalid catalog %q (expected %s or %s)", catalog, config.CatalogYTDLP, config.CatalogYouTubeAPI)
		}
	}
	if cfg.Channel.MaxVideos < 0 || cfg.Channel.MaxDurationMinutes < 0 {
		return fmt.Errorf("max-videos and max-duration must not be negative")
	}
	return nil
}

func newChannelCommand(ctx *commandContext) *cobra.Command {
	var flags channelFlags

	cmd := &cobra.Command{
		Use:   "channel <url|@handle>",
		Short: "Download and transcribe recent videos from a channel",
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
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			opts, err := flags.run.options(cmd, cfg)
			if err != nil {
				return err
			}

			status := cmd.OutOrStdout()
			if flags.jsonOut {
				status = cmd.ErrOrStderr()
			}
			run, err := runChannel(cmd.Context(), ctx, channelRequest{
				ref:           args[0],
				opts:          opts,
				skipProcessed: flags.skipProcessed,
				progress:      newProgress(cmd.ErrOrStderr(), logger),
				status:        status,
			})
			if err != nil {
				return err
			}
			if flags.jsonOut {
				return writeJSON(cmd, run.summary)
			}
			out := cmd.OutOrStdout()
			printRunSummary(out, run.result)
			if run.summaryPath != "" {
				fmt.Fprintf(out, "Channel summary saved to %s\n", run.summaryPath)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

type channelRequest struct {
	ref           string
	opts          pipeline.Options
	skipProcessed bool
	progress      pipeline.Progress
	status        io.Writer
}

type channelRun struct {
	result      *pipeline.BatchResult
	summary     report.ChannelSummary
	summaryPath string
}

// runChannel lists the channel, selects videos, and runs the pipeline over
// them. It is shared by the channel and watch commands.
func runChannel(ctx context.Context, cmdCtx *commandContext, req channelRequest) (*channelRun, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return nil, err
	}
	logger = logging.NewComponentLogger(logger, "channel")
	status := req.status
	if status == nil {
		status = io.Discard
	}

	opts := req.opts
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.Paths.OutputDir
	}
	opts.Layout = pipeline.LayoutChannel
	opts.StampSearch = false

	cat, err := newCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(status, "Listing %s\n", ytdlp.NormalizeChannelURL(req.ref))
	channel, err := cat.ListChannel(ctx, req.ref)
	if err != nil {
		return nil, err
	}
	logger.Info("channel listed",
		logging.String("channel", channel.Title),
		logging.Int("entries", len(channel.Entries)),
	)

	store, err := cmdCtx.openHistory()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	selected, err := selectChannelVideos(ctx, channel.Entries, cfg.Channel, req.skipProcessed, store, logger)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(status, "Channel: %s (%d recent videos, %d selected)\n", channel.Title, len(channel.Entries), len(selected))

	dl := newDownloader(cfg)
	downloadDir := cfg.DownloadDirFor(opts.OutputDir)
	units := make([]pipeline.Unit, 0, len(selected))
	for _, c := range selected {
		units = append(units, downloadUnit(c, dl, downloadDir))
	}

	engine := newEngine(cfg)
	progress := req.progress
	if progress == nil {
		progress = &pipeline.LogProgress{Logger: logger}
	}
	runner := pipeline.NewRunner(engine, opts, logger,
		pipeline.WithRecorder(store),
		pipeline.WithProgress(progress),
	)
	result, err := runner.Run(ctx, units)
	if err != nil {
		return nil, err
	}

	summary := report.NewChannelSummary(report.ChannelInfo{
		Title:    channel.Title,
		Uploader: channel.Uploader,
		URL:      channel.URL,
	}, result, report.ChannelOptions{
		Keywords:   opts.Keywords,
		Model:      engine.Model(),
		Considered: len(channel.Entries),
	})
	summaryPath, err := report.Save(opts.OutputDir, report.ChannelPrefix, time.Now(), summary)
	if err != nil {
		logging.WarnWithContext(logger, "channel summary not saved", "summary_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "per-video transcripts were still written"),
		)
		summaryPath = ""
	}
	if result.RunID != "" {
		run := history.RunFromResult(history.KindChannel, channel.URL, result, summaryPath)
		if err := store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			logging.WarnWithContext(logger, "run not recorded in history", "history_write_failed", logging.Error(err))
		}
	}
	return &channelRun{result: result, summary: summary, summaryPath: summaryPath}, nil
}

// selectChannelVideos applies the duration and live filters, drops videos
// already transcribed when asked, then caps the count.
func selectChannelVideos(ctx context.Context, entries []selection.Candidate, cfg config.Channel, skipProcessed bool, store *history.Store, logger *slog.Logger) ([]selection.Candidate, error) {
	filtered := selection.Filter(entries, selection.Options{
		DurationLimitMinutes: cfg.MaxDurationMinutes,
		LiveOnly:             cfg.LiveOnly,
	})
	if skipProcessed && len(filtered) > 0 {
		refs := make([]string, 0, len(filtered))
		for _, c := range filtered {
			refs = append(refs, c.URL)
		}
		done, err := store.ProcessedReferences(ctx, refs)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "channel", "skip processed", "history lookup failed", err)
		}
		kept := filtered[:0:0]
		for _, c := range filtered {
			if done[c.URL] {
				logger.Debug("skipping processed video", logging.String(logging.FieldVideo, c.URL))
				continue
			}
			kept = append(kept, c)
		}
		filtered = kept
	}
	if cfg.MaxVideos > 0 && len(filtered) > cfg.MaxVideos {
		filtered = filtered[:cfg.MaxVideos]
	}
	return filtered, nil
}

// downloadUnit resolves a catalog entry by downloading it on demand.
func downloadUnit(c selection.Candidate, dl downloader, dir string) pipeline.Unit {
	info := &search.VideoInfo{Title: c.Title, URL: c.URL}
	if c.Duration != nil {
		info.Duration = *c.Duration
	}
	return pipeline.Unit{
		Reference: c.URL,
		Title:     c.Title,
		VideoInfo: info,
		Resolve: func(ctx context.Context) (string, error) {
			d, err := dl.Download(ctx, c.URL, dir)
			if err != nil {
				return "", err
			}
			if d.Duration > 0 {
				info.Duration = d.Duration
			}
			return d.Path, nil
		},
	}
}
