package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weekly Update: Q3/Q4 <draft>?", "Weekly Update_ Q3_Q4 _draft__"},
		{`a\b|c*d"e`, "a_b_c_d_e"},
		{"  spaced  ", "spaced"},
		{"tab\there", "tabhere"},
		{"Café «live»", "Café «live»"},
		{"...", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileNameTruncates(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("é", 400))
	if n := len([]rune(got)); n != maxFileNameRunes {
		t.Fatalf("expected %d runes, got %d", maxFileNameRunes, n)
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/videos/My Talk.final.mp4"); got != "My Talk.final" {
		t.Fatalf("unexpected stem %q", got)
	}
}
