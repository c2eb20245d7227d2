package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"vidscribe/internal/pipeline"
	"vidscribe/internal/search"
	"vidscribe/internal/transcript"
)

func printMatches(out io.Writer, keywords []string, matches []search.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(out, "No matches for %d keyword(s)\n", len(keywords))
		return
	}
	counts := search.CountByKeyword(matches)
	fmt.Fprintf(out, "Found %d match(es)\n", len(matches))
	for _, kw := range keywords {
		if n := counts[kw]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", kw, n)
		}
	}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{transcript.FormatTimestamp(m.Timestamp), m.Keyword, m.Context})
	}
	fmt.Fprintln(out, renderTable([]string{"Time", "Keyword", "Context"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
}

func printRunSummary(out io.Writer, result *pipeline.BatchResult) {
	if result == nil {
		return
	}
	rows := make([][]string, 0, result.Attempted())
	for _, o := range result.Processed {
		rows = append(rows, []string{videoLabel(o), "ok", strconv.Itoa(o.KeywordMatches), o.TranscriptFile})
	}
	for _, o := range result.Failed {
		rows = append(rows, []string{videoLabel(o), "failed", "-", o.Error})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Video", "Status", "Matches", "Output"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	fmt.Fprintf(out, "Processed: %d  Failed: %d  Matches: %d\n",
		len(result.Processed), len(result.Failed), result.TotalMatches())
	if result.Interrupted {
		fmt.Fprintln(out, "Run interrupted; remaining videos were not started")
	}
}

func videoLabel(o pipeline.Outcome) string {
	if o.Title != "" {
		return truncateLabel(o.Title, 50)
	}
	return filepath.Base(o.VideoFile)
}
