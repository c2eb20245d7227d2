package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vidscribe/internal/config"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/services/ytdlp"
	"vidscribe/internal/testsupport"
	"vidscribe/internal/transcript"
)

type cliTestEnv struct {
	cfg        *config.Config
	baseDir    string
	configPath string
	outputDir  string
	stateDir   string
}

// setupCLITestEnv writes a config.toml pointing every directory into a temp
// dir and returns its location.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	env := &cliTestEnv{
		cfg:        cfg,
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  cfg.Paths.OutputDir,
		stateDir:   cfg.Paths.StateDir,
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(env.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func writeVideo(t *testing.T, path string) {
	t.Helper()
	testsupport.WriteVideo(t, path, time.Time{})
}

// fakeEngine transcribes every file to the same sentence unless told to fail.
type fakeEngine struct {
	mu      sync.Mutex
	text    string
	fail    map[string]error
	loadErr error
	calls   []string
}

func (f *fakeEngine) Load(context.Context) (pipeline.Transcriber, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f, nil
}

func (f *fakeEngine) Model() string { return "fake-base" }

func (f *fakeEngine) Transcribe(_ context.Context, mediaPath string) (*transcript.Transcript, error) {
	f.mu.Lock()
	f.calls = append(f.calls, mediaPath)
	f.mu.Unlock()
	if err := f.fail[filepath.Base(mediaPath)]; err != nil {
		return nil, err
	}
	text := f.text
	if text == "" {
		text = "today we discuss the weather forecast"
	}
	return textTranscript(text), nil
}

func textTranscript(text string) *transcript.Transcript {
	fields := strings.Fields(text)
	words := make([]transcript.Word, 0, len(fields))
	for i, w := range fields {
		start, end := float64(i), float64(i)+0.5
		words = append(words, transcript.Word{Word: w, Start: &start, End: &end})
	}
	return &transcript.Transcript{
		Text:     text,
		Language: "en",
		Segments: []transcript.Segment{{
			Start: 0,
			End:   float64(len(fields)),
			Text:  text,
			Words: words,
		}},
	}
}

func stubEngine(t *testing.T, engine *fakeEngine) {
	t.Helper()
	prev := newEngine
	newEngine = func(*config.Config) transcriptionEngine { return engine }
	t.Cleanup(func() { newEngine = prev })
}

type fakeCatalog struct {
	channel ytdlp.Channel
	err     error
}

func (f fakeCatalog) ListChannel(context.Context, string) (ytdlp.Channel, error) {
	return f.channel, f.err
}

// fakeDownloader writes <id>.mp4 for watch URLs.
type fakeDownloader struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, videoURL, dir string) (ytdlp.Download, error) {
	f.mu.Lock()
	f.calls = append(f.calls, videoURL)
	f.mu.Unlock()
	idx := strings.LastIndex(videoURL, "v=")
	if idx < 0 {
		return ytdlp.Download{}, services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "unsupported url", errors.New(videoURL))
	}
	id := videoURL[idx+2:]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ytdlp.Download{}, err
	}
	path := filepath.Join(dir, id+".mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return ytdlp.Download{}, err
	}
	return ytdlp.Download{Path: path, Title: id, URL: videoURL, Duration: 42}, nil
}

func stubChannel(t *testing.T, cat catalog, dl downloader) {
	t.Helper()
	prevCat, prevDL := newCatalog, newDownloader
	newCatalog = func(context.Context, *config.Config) (catalog, error) { return cat, nil }
	newDownloader = func(*config.Config) downloader { return dl }
	t.Cleanup(func() {
		newCatalog = prevCat
		newDownloader = prevDL
	})
}
