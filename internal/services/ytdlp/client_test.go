package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"vidscribe/internal/services"
)

const channelListing = `{
  "_type": "playlist",
  "title": "Example Channel - Videos",
  "channel": "Example Channel",
  "uploader": "Example",
  "entries": [
    {"_type": "playlist", "title": "Live", "entries": [
      {"id": "live1", "title": "Town hall", "upload_date": "20240310", "duration": 5400, "was_live": true},
      {"id": "live2", "title": "Q&A", "upload_date": "20240301", "duration": 1800, "live_status": "post_live"}
    ]},
    {"_type": "playlist", "title": "Videos", "entries": [
      {"id": "vid1", "title": "Launch", "upload_date": "20240305", "duration": 600, "webpage_url": "https://youtu.be/vid1"},
      {"id": "live1", "title": "Town hall", "upload_date": "20240310", "duration": 5400, "was_live": true},
      {"id": "", "title": "broken"},
      null
    ]}
  ]
}`

func TestNormalizeChannelURL(t *testing.T) {
	cases := map[string]string{
		"@example":                         "https://www.youtube.com/@example",
		"example":                          "https://www.youtube.com/c/example",
		"https://www.youtube.com/@example": "https://www.youtube.com/@example",
		"  ":                               "",
	}
	for in, want := range cases {
		if got := NormalizeChannelURL(in); got != want {
			t.Fatalf("NormalizeChannelURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListChannelFlattensTabs(t *testing.T) {
	client := New(Config{})
	var gotArgs []string
	client.WithRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != DefaultBinary {
			t.Fatalf("unexpected binary %q", name)
		}
		gotArgs = args
		return []byte(channelListing), nil
	})

	channel, err := client.ListChannel(context.Background(), "@example")
	if err != nil {
		t.Fatalf("ListChannel: %v", err)
	}
	if !slices.Contains(gotArgs, "50") || gotArgs[len(gotArgs)-1] != "https://www.youtube.com/@example" {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if channel.Title != "Example Channel - Videos" || channel.Uploader != "Example" {
		t.Fatalf("unexpected channel %+v", channel)
	}
	if len(channel.Entries) != 3 {
		t.Fatalf("expected 3 unique entries, got %d", len(channel.Entries))
	}
	live1, live2, vid1 := channel.Entries[0], channel.Entries[1], channel.Entries[2]
	if !live1.WasLive || live1.URL != VideoURL("live1") || *live1.Duration != 5400 {
		t.Fatalf("unexpected live1 %+v", live1)
	}
	if !live2.WasLive {
		t.Fatalf("expected post_live to count as was_live: %+v", live2)
	}
	if vid1.WasLive || vid1.IsLive || vid1.URL != "https://youtu.be/vid1" || vid1.Uploader != "Example" {
		t.Fatalf("unexpected vid1 %+v", vid1)
	}
}

func TestListChannelWrapsFailure(t *testing.T) {
	client := New(Config{})
	client.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("HTTP Error 404")
	})
	_, err := client.ListChannel(context.Background(), "missing")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestDownloadUsesReportedPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Launch.mp4")
	client := New(Config{Format: "worst"})
	client.WithRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if !slices.Contains(args, "worst") {
			t.Fatalf("expected configured format in %v", args)
		}
		if err := os.WriteFile(file, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(`{"id":"vid1","title":"Launch","duration":600,"upload_date":"20240305","view_count":42,"filepath":"` + file + `"}`), nil
	})

	dl, err := client.Download(context.Background(), VideoURL("vid1"), dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if dl.Path != file || dl.Title != "Launch" || dl.Duration != 600 || dl.ViewCount != 42 {
		t.Fatalf("unexpected download %+v", dl)
	}
}

func TestDownloadFallsBackToTitleMatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Q_A session.webm")
	client := New(Config{})
	client.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		if err := os.WriteFile(file, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(`{"id":"x","title":"Q?A session"}`), nil
	})

	dl, err := client.Download(context.Background(), VideoURL("x"), dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if dl.Path != file {
		t.Fatalf("expected title match %q, got %q", file, dl.Path)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	client := New(Config{})
	client.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"id":"x","title":"Ghost"}`), nil
	})
	_, err := client.Download(context.Background(), VideoURL("x"), t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
