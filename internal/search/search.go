package search

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"vidscribe/internal/transcript"
)

// DefaultContextWords is the number of words captured on each side of a match.
const DefaultContextWords = 5

// Match is a single keyword hit inside a transcript.
type Match struct {
	Keyword       string  `json:"keyword"`
	Timestamp     float64 `json:"timestamp"`
	EndTime       float64 `json:"end_time"`
	Context       string  `json:"context"`
	SegmentText   string  `json:"segment_text"`
	FormattedTime string  `json:"formatted_time"`
}

type matcher struct {
	keyword string
	pattern *regexp.Regexp
}

func compile(keywords []string) []matcher {
	out := make([]matcher, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		out = append(out, matcher{
			keyword: kw,
			pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(norm.NFC.String(kw))),
		})
	}
	return out
}

// Search returns every keyword occurrence in t ordered by start time. Equal
// start times keep segment order, then keyword order, then word order.
// radius is the number of context words kept on each side of a match; a
// negative radius is treated as zero. Keywords are processed in the order
// given and matches are not de-duplicated, so overlapping keywords can report
// the same word more than once.
func Search(t *transcript.Transcript, keywords []string, radius int) []Match {
	matches := make([]Match, 0)
	if t.Empty() {
		return matches
	}
	matchers := compile(keywords)
	if len(matchers) == 0 {
		return matches
	}
	if radius < 0 {
		radius = 0
	}

	for _, seg := range t.Segments {
		segText := strings.TrimSpace(seg.Text)
		normText := norm.NFC.String(segText)
		words := wordTexts(seg.Words)
		for _, m := range matchers {
			if !m.pattern.MatchString(normText) {
				continue
			}
			for i, w := range seg.Words {
				if !m.pattern.MatchString(norm.NFC.String(words[i])) {
					continue
				}
				start := w.StartOr(seg.Start)
				matches = append(matches, Match{
					Keyword:       m.keyword,
					Timestamp:     start,
					EndTime:       w.EndOr(seg.End),
					Context:       contextWindow(words, i, radius),
					SegmentText:   segText,
					FormattedTime: transcript.FormatTimestamp(start),
				})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp < matches[j].Timestamp
	})
	return matches
}

func wordTexts(words []transcript.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text()
	}
	return out
}

// contextWindow joins words[i-radius:i+radius+1], clamped to the slice, and
// highlights words[i].
func contextWindow(words []string, i, radius int) string {
	lo := max(0, i-radius)
	hi := min(len(words), i+radius+1)
	parts := make([]string, 0, hi-lo)
	for j := lo; j < hi; j++ {
		if j == i {
			parts = append(parts, "**"+words[j]+"**")
			continue
		}
		parts = append(parts, words[j])
	}
	return strings.Join(parts, " ")
}

// CountByKeyword tallies matches per keyword.
func CountByKeyword(matches []Match) map[string]int {
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.Keyword]++
	}
	return counts
}
