package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"vidscribe/internal/selection"
	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
)

// Defaults mirror what keeps channel runs fast: only recent uploads are
// inspected and downloads are capped at 720p.
const (
	DefaultBinary      = "yt-dlp"
	DefaultPlaylistEnd = 50
	DefaultFormat      = "best[height<=720]"
)

// downloadExtensions are the containers yt-dlp produces for the default format.
var downloadExtensions = []string{".mp4", ".mkv", ".webm"}

// Config captures yt-dlp settings.
type Config struct {
	Binary      string
	PlaylistEnd int
	Format      string
}

// Channel describes a listed channel.
type Channel struct {
	Title       string
	Uploader    string
	Description string
	URL         string
	Entries     []selection.Candidate
}

// Download describes a downloaded video.
type Download struct {
	Path       string
	Title      string
	URL        string
	UploadDate string
	Duration   float64
	ViewCount  int64
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client runs yt-dlp.
type Client struct {
	cfg    Config
	runner Runner
}

// New returns a client with defaults applied.
func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.PlaylistEnd <= 0 {
		cfg.PlaylistEnd = DefaultPlaylistEnd
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = DefaultFormat
	}
	return &Client{cfg: cfg, runner: execRunner}
}

// WithRunner replaces command execution (for testing).
func (c *Client) WithRunner(r Runner) {
	c.runner = r
}

// NormalizeChannelURL expands handles and bare names into channel URLs.
func NormalizeChannelURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "@"):
		return "https://www.youtube.com/" + ref
	default:
		return "https://www.youtube.com/c/" + ref
	}
}

// VideoURL returns the watch URL for a video id.
func VideoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

type entry struct {
	Type        string   `json:"_type"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Channel     string   `json:"channel"`
	Description string   `json:"description"`
	UploadDate  string   `json:"upload_date"`
	Duration    *float64 `json:"duration"`
	WasLive     *bool    `json:"was_live"`
	IsLive      *bool    `json:"is_live"`
	LiveStatus  string   `json:"live_status"`
	WebpageURL  string   `json:"webpage_url"`
	ViewCount   *int64   `json:"view_count"`
	Entries     []*entry `json:"entries"`

	Filepath  string `json:"filepath"`
	Filename  string `json:"_filename"`
	Filename2 string `json:"filename"`
}

// ListChannel returns the channel title and its most recent videos.
func (c *Client) ListChannel(ctx context.Context, channelRef string) (Channel, error) {
	url := NormalizeChannelURL(channelRef)
	if url == "" {
		return Channel{}, services.Wrap(services.ErrValidation, "catalog", "yt-dlp", "channel reference required", nil)
	}
	out, err := c.runner(ctx, c.cfg.Binary,
		"--dump-single-json",
		"--playlist-end", fmt.Sprint(c.cfg.PlaylistEnd),
		"--ignore-errors",
		"--no-warnings",
		url,
	)
	if err != nil {
		return Channel{}, services.Wrap(services.ErrExternalTool, "catalog", "yt-dlp", "list "+url, err)
	}
	var root entry
	if err := json.Unmarshal(bytes.TrimSpace(out), &root); err != nil {
		return Channel{}, services.Wrap(services.ErrExternalTool, "catalog", "yt-dlp", "parse listing", err)
	}

	channel := Channel{
		Title:       firstNonEmpty(root.Title, root.Channel, "Unknown Channel"),
		Uploader:    firstNonEmpty(root.Uploader, root.Channel, "Unknown"),
		Description: root.Description,
		URL:         url,
	}
	seen := make(map[string]struct{})
	var walk func(list []*entry)
	walk = func(list []*entry) {
		for _, e := range list {
			if e == nil {
				continue
			}
			if len(e.Entries) > 0 || e.Type == "playlist" {
				walk(e.Entries)
				continue
			}
			if e.ID == "" {
				continue
			}
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			channel.Entries = append(channel.Entries, e.candidate(channel.Uploader))
		}
	}
	walk(root.Entries)
	return channel, nil
}

func (e *entry) candidate(fallbackUploader string) selection.Candidate {
	url := e.WebpageURL
	if url == "" {
		url = VideoURL(e.ID)
	}
	return selection.Candidate{
		ID:         e.ID,
		Title:      e.Title,
		UploadDate: e.UploadDate,
		Duration:   e.Duration,
		WasLive:    (e.WasLive != nil && *e.WasLive) || e.LiveStatus == "was_live" || e.LiveStatus == "post_live",
		IsLive:     (e.IsLive != nil && *e.IsLive) || e.LiveStatus == "is_live",
		URL:        url,
		Uploader:   firstNonEmpty(e.Uploader, fallbackUploader),
	}
}

// Download fetches videoURL into dir.
func (c *Client) Download(ctx context.Context, videoURL, dir string) (Download, error) {
	if strings.TrimSpace(videoURL) == "" {
		return Download{}, services.Wrap(services.ErrValidation, "download", "yt-dlp", "video url required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Download{}, fmt.Errorf("download: ensure dir: %w", err)
	}
	out, err := c.runner(ctx, c.cfg.Binary,
		"--format", c.cfg.Format,
		"--output", filepath.Join(dir, "%(title)s.%(ext)s"),
		"--no-simulate",
		"--dump-json",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		videoURL,
	)
	if err != nil {
		return Download{}, services.Wrap(services.ErrExternalTool, "download", "yt-dlp", videoURL, err)
	}
	var info entry
	if err := json.Unmarshal(bytes.TrimSpace(out), &info); err != nil {
		return Download{}, services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "parse metadata", err)
	}

	path := locate(dir, info)
	if path == "" {
		return Download{}, services.Wrap(services.ErrNotFound, "download", "yt-dlp", "downloaded file not found for "+videoURL, nil)
	}
	result := Download{
		Path:       path,
		Title:      firstNonEmpty(info.Title, "unknown"),
		URL:        videoURL,
		UploadDate: info.UploadDate,
	}
	if info.Duration != nil {
		result.Duration = *info.Duration
	}
	if info.ViewCount != nil {
		result.ViewCount = *info.ViewCount
	}
	return result, nil
}

// locate finds the downloaded file, trusting yt-dlp's reported path first and
// falling back to a title match inside dir.
func locate(dir string, info entry) string {
	for _, candidate := range []string{info.Filepath, info.Filename, info.Filename2} {
		if candidate == "" {
			continue
		}
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	clean := textutil.SanitizeFileName(info.Title)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), clean) {
			continue
		}
		if slices.Contains(downloadExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
