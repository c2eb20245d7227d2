package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"vidscribe/internal/transcript"
)

type responseWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type responseSegment struct {
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Text  string         `json:"text"`
	Words []responseWord `json:"words"`
}

type response struct {
	Language string            `json:"language"`
	Segments []responseSegment `json:"segments"`
}

// ParseResponse converts the model's JSON answer into a transcript. Code
// fences are tolerated, segments are ordered by start time, and segments
// without words are split on whitespace with the segment timing.
func ParseResponse(text string) (*transcript.Transcript, error) {
	cleaned := stripFence(text)
	if cleaned == "" {
		return nil, errors.New("empty transcript response")
	}
	var payload response
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse transcript response: %w", err)
	}

	sort.SliceStable(payload.Segments, func(i, j int) bool {
		return payload.Segments[i].Start < payload.Segments[j].Start
	})

	out := &transcript.Transcript{
		Language: strings.ToLower(strings.TrimSpace(payload.Language)),
		Segments: make([]transcript.Segment, 0, len(payload.Segments)),
	}
	for _, seg := range payload.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		converted := transcript.Segment{
			ID:    len(out.Segments),
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		if len(seg.Words) == 0 {
			for _, field := range strings.Fields(seg.Text) {
				converted.Words = append(converted.Words, transcript.Word{Word: field})
			}
		}
		for _, w := range seg.Words {
			converted.Words = append(converted.Words, transcript.Word{Word: w.Word, Start: w.Start, End: w.End})
		}
		out.Segments = append(out.Segments, converted)
	}
	out.Text = out.JoinedText()
	return out, nil
}

func stripFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
