package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"vidscribe/internal/pipeline"
	"vidscribe/internal/search"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	errs    map[string]error
	nils    map[string]bool
	panics  map[string]bool
	onCall  func(path string)
	phrases map[string]string
}

func (f *fakeEngine) Transcribe(_ context.Context, mediaPath string) (*transcript.Transcript, error) {
	f.mu.Lock()
	f.calls = append(f.calls, mediaPath)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(mediaPath)
	}
	base := filepath.Base(mediaPath)
	if f.panics[base] {
		panic("decoder exploded")
	}
	if err := f.errs[base]; err != nil {
		return nil, err
	}
	if f.nils[base] {
		return nil, nil
	}
	text := "we talk about the weather today"
	if phrase, ok := f.phrases[base]; ok {
		text = phrase
	}
	return sampleTranscript(text), nil
}

func sampleTranscript(text string) *transcript.Transcript {
	fields := strings.Fields(text)
	words := make([]transcript.Word, 0, len(fields))
	for i, w := range fields {
		words = append(words, transcript.Word{
			Word:  w,
			Start: transcript.Seconds(float64(i)),
			End:   transcript.Seconds(float64(i) + 0.5),
		})
	}
	return &transcript.Transcript{
		Text: text,
		Segments: []transcript.Segment{{
			ID:    0,
			Start: 0,
			End:   float64(len(fields)),
			Text:  text,
			Words: words,
		}},
	}
}

func localUnits(t *testing.T, dir string, names ...string) []pipeline.Unit {
	t.Helper()
	units := make([]pipeline.Unit, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		units = append(units, pipeline.LocalUnit(path))
	}
	return units
}

func references(outcomes []pipeline.Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, filepath.Base(o.VideoFile))
	}
	return out
}

func TestRunIsolatesUnitFailures(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4", "b.mp4", "c.mp4")
	engine := &fakeEngine{errs: map[string]error{
		"b.mp4": services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "decoder error", nil),
	}}
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Second)
	}

	runner := pipeline.NewRunner(pipeline.Static(engine), pipeline.DefaultOptions(), nil, pipeline.WithClock(clock))
	result, err := runner.Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.StartTime.Equal(start.Add(time.Second)) || !result.EndTime.After(result.StartTime) {
		t.Fatalf("run times = %v .. %v", result.StartTime, result.EndTime)
	}
	for _, o := range append(append([]pipeline.Outcome{}, result.Processed...), result.Failed...) {
		if o.Elapsed != time.Second {
			t.Fatalf("elapsed for %s = %v, want one clock tick", o.VideoFile, o.Elapsed)
		}
	}

	if got := strings.Join(references(result.Processed), ","); got != "a.mp4,c.mp4" {
		t.Fatalf("processed = %s", got)
	}
	if got := strings.Join(references(result.Failed), ","); got != "b.mp4" {
		t.Fatalf("failed = %s", got)
	}
	if msg := result.Failed[0].Error; msg != "transcription failed: external tool error: transcribe: whisperx: decoder error" {
		t.Fatalf("failure message = %q", msg)
	}
	if cat := result.Failed[0].ErrorCategory; cat != "external_tool" {
		t.Fatalf("failure category = %q", cat)
	}
	if result.Processed[0].ErrorCategory != "" {
		t.Fatalf("success should carry no category, got %q", result.Processed[0].ErrorCategory)
	}
	if result.Failed[0].TranscriptFile != "" {
		t.Fatalf("failed unit should not report a transcript, got %q", result.Failed[0].TranscriptFile)
	}
	for _, o := range result.Processed {
		want := strings.TrimSuffix(o.VideoFile, ".mp4") + "_transcript.json"
		if o.TranscriptFile != want {
			t.Fatalf("transcript path = %q, want %q", o.TranscriptFile, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("transcript missing: %v", err)
		}
		if o.SegmentsCount != 1 {
			t.Fatalf("segments = %d", o.SegmentsCount)
		}
	}
	if len(engine.calls) != 3 {
		t.Fatalf("engine calls = %d", len(engine.calls))
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	if result.Interrupted {
		t.Fatal("run should not be interrupted")
	}
}

func TestRunLoaderFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4", "b.mp4")
	engine := &fakeEngine{}
	loads := 0
	loader := pipeline.LoaderFunc(func(context.Context) (pipeline.Transcriber, error) {
		loads++
		return nil, errors.New("model weights missing")
	})

	runner := pipeline.NewRunner(loader, pipeline.DefaultOptions(), nil)
	for i := 0; i < 2; i++ {
		result, err := runner.Run(context.Background(), units)
		if err == nil {
			t.Fatal("expected fatal error")
		}
		if result != nil {
			t.Fatalf("expected nil result, got %+v", result)
		}
		if !errors.Is(err, services.ErrModelLoad) {
			t.Fatalf("expected ErrModelLoad, got %v", err)
		}
		if !services.Fatal(err) {
			t.Fatal("model load errors should be fatal")
		}
	}
	if loads != 1 {
		t.Fatalf("loader called %d times, want 1", loads)
	}
	if len(engine.calls) != 0 {
		t.Fatal("no unit should be attempted")
	}
}

func TestRunLoadsEngineOnce(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}
	loads := 0
	loader := pipeline.LoaderFunc(func(context.Context) (pipeline.Transcriber, error) {
		loads++
		return engine, nil
	})
	runner := pipeline.NewRunner(loader, pipeline.DefaultOptions(), nil)
	if _, err := runner.Run(context.Background(), localUnits(t, dir, "a.mp4", "b.mp4")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := runner.Run(context.Background(), localUnits(t, dir, "c.mp4")); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if loads != 1 {
		t.Fatalf("loader called %d times, want 1", loads)
	}
	if len(engine.calls) != 3 {
		t.Fatalf("engine calls = %d", len(engine.calls))
	}
}

func TestRunEmptyUnitsSkipsLoader(t *testing.T) {
	loader := pipeline.LoaderFunc(func(context.Context) (pipeline.Transcriber, error) {
		t.Fatal("loader should not be called")
		return nil, nil
	})
	result, err := pipeline.NewRunner(loader, pipeline.DefaultOptions(), nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted() != 0 || result.Processed == nil || result.Failed == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunStopsAtUnitBoundaryWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4", "b.mp4", "c.mp4")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := &fakeEngine{}
	engine.onCall = func(string) { cancel() }

	result, err := pipeline.NewRunner(pipeline.Static(engine), pipeline.DefaultOptions(), nil).Run(ctx, units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Interrupted {
		t.Fatal("expected interrupted run")
	}
	if got := strings.Join(references(result.Processed), ","); got != "a.mp4" {
		t.Fatalf("in-flight unit should complete, processed = %s", got)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
	if len(engine.calls) != 1 {
		t.Fatalf("engine calls = %d, want 1", len(engine.calls))
	}
}

func TestRunRecoversFromPanics(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4", "b.mp4")
	engine := &fakeEngine{panics: map[string]bool{"a.mp4": true}}

	result, err := pipeline.NewRunner(pipeline.Static(engine), pipeline.DefaultOptions(), nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 1 || !strings.Contains(result.Failed[0].Error, "decoder exploded") {
		t.Fatalf("expected captured panic, got %+v", result.Failed)
	}
	if result.Failed[0].ErrorCategory != "panic" {
		t.Fatalf("panic category = %q", result.Failed[0].ErrorCategory)
	}
	if len(result.Processed) != 1 {
		t.Fatalf("batch should continue after a panic, processed = %d", len(result.Processed))
	}
}

func TestRunNilTranscriptFails(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4")
	engine := &fakeEngine{nils: map[string]bool{"a.mp4": true}}

	result, err := pipeline.NewRunner(pipeline.Static(engine), pipeline.DefaultOptions(), nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Error != "transcription failed" {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
}

func TestRunTranscriptSaveFailure(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4")
	// A directory occupying the transcript path makes the final rename fail.
	if err := os.MkdirAll(filepath.Join(dir, "a_transcript.json", "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := pipeline.NewRunner(pipeline.Static(&fakeEngine{}), pipeline.DefaultOptions(), nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 1 || !strings.HasPrefix(result.Failed[0].Error, "failed to save transcript: ") {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
}

func TestRunResolveFailure(t *testing.T) {
	unit := pipeline.Unit{
		Reference: "https://www.youtube.com/watch?v=abc",
		Title:     "Remote",
		Resolve: func(context.Context) (string, error) {
			return "", errors.New("download failed: HTTP 403")
		},
	}
	result, err := pipeline.NewRunner(pipeline.Static(&fakeEngine{}), pipeline.DefaultOptions(), nil).Run(context.Background(), []pipeline.Unit{unit})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected one failure, got %+v", result)
	}
	got := result.Failed[0]
	if got.Error != "download failed: HTTP 403" || got.Title != "Remote" || got.VideoFile != unit.Reference {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}

func TestRunChannelLayoutWritesSearchOnlyForMatches(t *testing.T) {
	out := t.TempDir()
	downloads := filepath.Join(out, pipeline.VideosDir)
	if err := os.MkdirAll(downloads, 0o755); err != nil {
		t.Fatal(err)
	}
	units := localUnits(t, downloads, "first.mp4", "second.mp4")
	units[0].VideoInfo = &search.VideoInfo{Title: "First", URL: "https://www.youtube.com/watch?v=1"}
	engine := &fakeEngine{phrases: map[string]string{
		"first.mp4": "the launch is next week and the Launch matters",
	}}

	opts := pipeline.DefaultOptions()
	opts.OutputDir = out
	opts.Layout = pipeline.LayoutChannel
	opts.Keywords = []string{"launch"}
	opts.Format = transcript.FormatTXT

	result, err := pipeline.NewRunner(pipeline.Static(engine), opts, nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Processed) != 2 {
		t.Fatalf("processed = %d, failed = %+v", len(result.Processed), result.Failed)
	}

	first, second := result.Processed[0], result.Processed[1]
	if want := filepath.Join(out, pipeline.TranscriptsDir, "first_transcript.txt"); first.TranscriptFile != want {
		t.Fatalf("transcript = %q, want %q", first.TranscriptFile, want)
	}
	if want := filepath.Join(out, pipeline.SearchResultsDir, "first_search.json"); first.SearchResultsFile != want {
		t.Fatalf("search file = %q, want %q", first.SearchResultsFile, want)
	}
	if first.KeywordMatches != 2 {
		t.Fatalf("matches = %d", first.KeywordMatches)
	}
	if second.SearchResultsFile != "" || second.KeywordMatches != 0 {
		t.Fatalf("unmatched unit should not write search results: %+v", second)
	}
	if _, err := os.Stat(filepath.Join(out, pipeline.SearchResultsDir, "second_search.json")); !os.IsNotExist(err) {
		t.Fatalf("unexpected search file for second unit: %v", err)
	}
	if len(result.KeywordMatches) != 1 || len(result.KeywordMatches[units[0].Reference]) != 2 {
		t.Fatalf("keyword matches = %+v", result.KeywordMatches)
	}
	if result.TotalMatches() != 2 {
		t.Fatalf("total matches = %d", result.TotalMatches())
	}

	data, err := os.ReadFile(first.SearchResultsFile)
	if err != nil {
		t.Fatalf("read search file: %v", err)
	}
	var record search.Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("decode search record: %v", err)
	}
	if record.VideoInfo == nil || record.VideoInfo.Title != "First" {
		t.Fatalf("expected video info in record, got %+v", record.VideoInfo)
	}
	if record.Timestamp != "" {
		t.Fatalf("channel records carry no timestamp, got %q", record.Timestamp)
	}
	if len(record.Matches) != 2 || record.Matches[0].Timestamp > record.Matches[1].Timestamp {
		t.Fatalf("unexpected matches: %+v", record.Matches)
	}
}

func TestRunPerVideoLayout(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	units := localUnits(t, src, "talk.mkv")
	opts := pipeline.DefaultOptions()
	opts.OutputDir = out
	opts.Layout = pipeline.LayoutPerVideo
	opts.Format = transcript.FormatCSV

	result, err := pipeline.NewRunner(pipeline.Static(&fakeEngine{}), opts, nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := filepath.Join(out, "talk", "talk_transcript.csv")
	if result.Processed[0].TranscriptFile != want {
		t.Fatalf("transcript = %q, want %q", result.Processed[0].TranscriptFile, want)
	}
}

func TestRunFlatLayout(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	units := localUnits(t, src, "talk.mp4")
	opts := pipeline.DefaultOptions()
	opts.OutputDir = out
	opts.Layout = pipeline.LayoutFlat
	opts.Keywords = []string{"weather"}
	opts.StampSearch = true

	result, err := pipeline.NewRunner(pipeline.Static(&fakeEngine{}), opts, nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := result.Processed[0]
	if got.TranscriptFile != filepath.Join(out, "talk_transcript.json") {
		t.Fatalf("transcript = %q", got.TranscriptFile)
	}
	if got.SearchResultsFile != filepath.Join(out, "talk_search_results.json") {
		t.Fatalf("search = %q", got.SearchResultsFile)
	}
}

func TestRunNoSearchFileCountsMatchesOnly(t *testing.T) {
	src := t.TempDir()
	units := localUnits(t, src, "talk.mp4")
	opts := pipeline.DefaultOptions()
	opts.Keywords = []string{"weather"}
	opts.NoSearchFile = true

	result, err := pipeline.NewRunner(pipeline.Static(&fakeEngine{}), opts, nil).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := result.Processed[0]
	if out.KeywordMatches != 1 || out.SearchResultsFile != "" {
		t.Fatalf("outcome = %+v", out)
	}
	if len(result.KeywordMatches[out.VideoFile]) != 1 {
		t.Fatalf("matches should still be reported: %+v", result.KeywordMatches)
	}
	if _, err := os.Stat(filepath.Join(src, "talk_search_results.json")); !os.IsNotExist(err) {
		t.Fatalf("search file should not exist, stat err = %v", err)
	}
}

func TestRunRejectsLockedOutputDir(t *testing.T) {
	out := t.TempDir()
	lock := flock.New(filepath.Join(out, pipeline.LockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-lock failed: %v", err)
	}
	defer func() { _ = lock.Unlock() }()

	opts := pipeline.DefaultOptions()
	opts.OutputDir = out
	opts.Layout = pipeline.LayoutPerVideo
	units := localUnits(t, t.TempDir(), "a.mp4")

	_, err = pipeline.NewRunner(pipeline.Static(&fakeEngine{}), opts, nil).Run(context.Background(), units)
	if !errors.Is(err, pipeline.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

type recordingSink struct {
	events   []string
	outcomes []pipeline.Outcome
	runIDs   []string
	failNext bool
}

func (r *recordingSink) Start(total int) { r.events = append(r.events, "start") }
func (r *recordingSink) Begin(index int, unit pipeline.Unit) { r.events = append(r.events, "begin") }
func (r *recordingSink) Done(index int, out pipeline.Outcome) { r.events = append(r.events, "done") }
func (r *recordingSink) Finish(result *pipeline.BatchResult) { r.events = append(r.events, "finish") }

func (r *recordingSink) RecordOutcome(_ context.Context, runID string, outcome pipeline.Outcome) error {
	r.runIDs = append(r.runIDs, runID)
	r.outcomes = append(r.outcomes, outcome)
	if r.failNext {
		r.failNext = false
		return errors.New("database is locked")
	}
	return nil
}

func TestRunReportsProgressAndRecordsOutcomes(t *testing.T) {
	dir := t.TempDir()
	units := localUnits(t, dir, "a.mp4", "b.mp4")
	sink := &recordingSink{failNext: true}
	engine := &fakeEngine{errs: map[string]error{"b.mp4": errors.New("bad audio")}}

	result, err := pipeline.NewRunner(pipeline.Static(engine), pipeline.DefaultOptions(), nil,
		pipeline.WithProgress(sink),
		pipeline.WithRecorder(sink),
	).Run(context.Background(), units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(sink.events, ","); got != "start,begin,done,begin,done,finish" {
		t.Fatalf("events = %s", got)
	}
	if len(sink.outcomes) != 2 || sink.outcomes[0].Success == sink.outcomes[1].Success {
		t.Fatalf("recorded outcomes = %+v", sink.outcomes)
	}
	for _, id := range sink.runIDs {
		if id != result.RunID {
			t.Fatalf("recorder saw run id %q, want %q", id, result.RunID)
		}
	}
	if len(result.Processed) != 1 {
		t.Fatal("recorder failures must not fail the unit")
	}
}
