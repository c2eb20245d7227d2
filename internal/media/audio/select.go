package audio

import (
	"context"
	"errors"
	"strings"

	langpkg "vidscribe/internal/language"
	"vidscribe/internal/media/ffprobe"
)

// Select returns the ordinal (among audio streams) of the track to
// transcribe. A track matching the language hint wins, then the track flagged
// default, then the first one. ok is false when there is no audio at all.
func Select(streams []ffprobe.Stream, languageHint string) (ordinal int, ok bool) {
	audio := make([]ffprobe.Stream, 0, len(streams))
	for _, stream := range streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			audio = append(audio, stream)
		}
	}
	if len(audio) == 0 {
		return 0, false
	}

	if want := langpkg.ToISO2(languageHint); want != "" {
		for i, stream := range audio {
			if langpkg.ToISO2(streamLanguage(stream)) == want {
				return i, true
			}
		}
	}
	for i, stream := range audio {
		if stream.Disposition["default"] == 1 {
			return i, true
		}
	}
	return 0, true
}

func streamLanguage(stream ffprobe.Stream) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "LANG"} {
		if value, ok := stream.Tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

// ErrNoAudio reports a media file without any audio stream.
var ErrNoAudio = errors.New("no audio stream")

// Choose probes path with ffprobe and selects a stream. An empty
// ffprobeBinary skips probing and picks the first audio stream.
func Choose(ctx context.Context, ffprobeBinary, path, languageHint string) (int, error) {
	if strings.TrimSpace(ffprobeBinary) == "" {
		return 0, nil
	}
	probe, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return 0, err
	}
	ordinal, ok := Select(probe.Streams, languageHint)
	if !ok {
		return 0, ErrNoAudio
	}
	return ordinal, nil
}
