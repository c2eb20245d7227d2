package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxFileNameRunes keeps generated names well under common filesystem limits
// once suffixes such as "_search_results.json" are appended.
const maxFileNameRunes = 180

// SanitizeFileName replaces filesystem-unsafe characters in a filename with
// underscores and drops control characters. Returns "untitled" for names that
// end up empty.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(strings.TrimSpace(b.String()), ".")
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		out = strings.TrimSpace(string(runes[:maxFileNameRunes]))
	}
	if out == "" {
		return "untitled"
	}
	return out
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
