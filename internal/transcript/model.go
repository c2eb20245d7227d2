package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Word is a single recognized word with optional alignment.
type Word struct {
	Word        string   `json:"word"`
	Start       *float64 `json:"start,omitempty"`
	End         *float64 `json:"end,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

// Text returns the word with surrounding whitespace removed.
func (w Word) Text() string {
	return strings.TrimSpace(w.Word)
}

// StartOr returns the word start, or fallback when the word is unaligned.
func (w Word) StartOr(fallback float64) float64 {
	if w.Start == nil {
		return fallback
	}
	return *w.Start
}

// EndOr returns the word end, or fallback when the word is unaligned.
func (w Word) EndOr(fallback float64) float64 {
	if w.End == nil {
		return fallback
	}
	return *w.End
}

// Segment is a contiguous span of speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the full recognition result for one media file.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// Empty reports whether the transcript carries no segments.
func (t *Transcript) Empty() bool {
	return t == nil || len(t.Segments) == 0
}

// Duration returns the end of the last segment.
func (t *Transcript) Duration() float64 {
	if t.Empty() {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// JoinedText concatenates trimmed segment texts with single spaces. Backends
// that do not report a top-level text use this to fill it in.
func (t *Transcript) JoinedText() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Seconds is a convenience for building optional word timings.
func Seconds(v float64) *float64 {
	return &v
}

// Load reads a JSON transcript from disk.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	if t.Text == "" {
		t.Text = t.JoinedText()
	}
	return &t, nil
}
