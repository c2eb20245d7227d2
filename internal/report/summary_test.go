package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidscribe/internal/pipeline"
	"vidscribe/internal/report"
	"vidscribe/internal/search"
)

func sampleResult() *pipeline.BatchResult {
	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return &pipeline.BatchResult{
		RunID: "run-42",
		Processed: []pipeline.Outcome{
			{VideoFile: "https://youtu.be/a", Title: "Alpha", TranscriptFile: "/out/transcripts/Alpha_transcript.json", KeywordMatches: 2, Success: true},
			{VideoFile: "https://youtu.be/c", Title: "Gamma", TranscriptFile: "/out/transcripts/Gamma_transcript.json", Success: true},
		},
		Failed: []pipeline.Outcome{
			{VideoFile: "https://youtu.be/b", Title: "Beta", Error: "transcription failed: no audio"},
		},
		KeywordMatches: map[string][]search.Match{
			"https://youtu.be/a": {{Keyword: "launch", Timestamp: 1}, {Keyword: "launch", Timestamp: 9}},
		},
		StartTime: start,
		EndTime:   start.Add(time.Minute),
	}
}

func TestNewBatchSummaryTotals(t *testing.T) {
	summary := report.NewBatchSummary(sampleResult())
	if summary.TotalProcessed != 2 || summary.TotalFailed != 1 || summary.TotalMatches != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.RunID != "run-42" {
		t.Fatalf("run id = %q", summary.RunID)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"processed", "failed", "keyword_matches", "start_time", "end_time", "total_processed", "total_failed", "total_matches"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if decoded["start_time"] != "2026-03-04T05:06:07Z" {
		t.Fatalf("start_time = %v", decoded["start_time"])
	}
}

func TestNewBatchSummaryEmpty(t *testing.T) {
	summary := report.NewBatchSummary(nil)
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Processed      []any          `json:"processed"`
		Failed         []any          `json:"failed"`
		KeywordMatches map[string]any `json:"keyword_matches"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Processed == nil || decoded.Failed == nil || decoded.KeywordMatches == nil {
		t.Fatalf("empty summary should render empty collections, got %s", data)
	}
}

func TestNewChannelSummary(t *testing.T) {
	info := report.ChannelInfo{Title: "Launch Channel", Uploader: "Launch Co"}
	summary := report.NewChannelSummary(info, sampleResult(), report.ChannelOptions{
		Keywords:   []string{"launch"},
		Model:      "base",
		Considered: 12,
	})
	if summary.ChannelInfo.VideoCount != 12 {
		t.Fatalf("video count = %d", summary.ChannelInfo.VideoCount)
	}
	if summary.TotalVideos != 2 || summary.TotalFailed != 1 || summary.TotalMatches != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if len(summary.VideosProcessed) != 2 || summary.VideosProcessed[0].Title != "Alpha" || summary.VideosProcessed[0].MatchesCount != 2 {
		t.Fatalf("videos processed = %+v", summary.VideosProcessed)
	}
	if summary.VideosProcessed[0].URL != "https://youtu.be/a" {
		t.Fatalf("url = %q", summary.VideosProcessed[0].URL)
	}
	if len(summary.VideosFailed) != 1 || summary.VideosFailed[0].Error != "transcription failed: no audio" {
		t.Fatalf("videos failed = %+v", summary.VideosFailed)
	}
	if summary.ModelUsed != "base" {
		t.Fatalf("model = %q", summary.ModelUsed)
	}
	if !summary.ProcessingDate.Equal(sampleResult().EndTime) {
		t.Fatalf("processing date = %v", summary.ProcessingDate)
	}
}

func TestSaveWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	path, err := report.Save(dir, report.BatchPrefix, at, report.NewBatchSummary(sampleResult()))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "batch_results_20260102_150405.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded report.BatchSummary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TotalMatches != 2 {
		t.Fatalf("decoded total matches = %d", decoded.TotalMatches)
	}
	if got := report.FileName(report.ChannelPrefix, at); got != "channel_summary_20260102_150405.json" {
		t.Fatalf("channel file name = %q", got)
	}
}
