package audio

import (
	"slices"
	"testing"

	"vidscribe/internal/media/ffprobe"
)

func streams() []ffprobe.Stream {
	return []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "fre"}},
		{Index: 2, CodecType: "audio", Tags: map[string]string{"language": "eng"}, Disposition: map[string]int{"default": 1}},
		{Index: 3, CodecType: "audio", Tags: map[string]string{"language": "spa"}},
	}
}

func TestSelectPrefersLanguageHint(t *testing.T) {
	ordinal, ok := Select(streams(), "spanish")
	if !ok || ordinal != 2 {
		t.Fatalf("expected spanish track ordinal 2, got %d %v", ordinal, ok)
	}
}

func TestSelectFallsBackToDefault(t *testing.T) {
	ordinal, ok := Select(streams(), "")
	if !ok || ordinal != 1 {
		t.Fatalf("expected default track ordinal 1, got %d %v", ordinal, ok)
	}
}

func TestSelectFirstWhenNoDefault(t *testing.T) {
	ordinal, ok := Select(streams()[:2], "de")
	if !ok || ordinal != 0 {
		t.Fatalf("expected first track, got %d %v", ordinal, ok)
	}
}

func TestSelectWithoutAudio(t *testing.T) {
	if _, ok := Select([]ffprobe.Stream{{CodecType: "video"}}, ""); ok {
		t.Fatal("expected no audio selection")
	}
}

func TestExtractArgs(t *testing.T) {
	args, err := ExtractArgs("in.mkv", 2, "out.flac", FLAC)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"0:a:2", "flac", "16000", "out.flac"} {
		if !slices.Contains(args, want) {
			t.Fatalf("expected %q in %v", want, args)
		}
	}
	if _, err := ExtractArgs("in.mkv", -1, "out.wav", WAV); err == nil {
		t.Fatal("expected error for negative stream")
	}
	if FLAC.MIMEType() != "audio/flac" || WAV.MIMEType() != "audio/wav" {
		t.Fatal("unexpected mime types")
	}
}
