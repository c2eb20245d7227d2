package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Encoding selects the container and codec for extracted audio.
type Encoding string

const (
	// WAV is 16-bit PCM, what local speech models expect.
	WAV Encoding = "wav"
	// FLAC is lossless but compact, suited to uploads.
	FLAC Encoding = "flac"
)

// MIMEType returns the content type for uploads.
func (e Encoding) MIMEType() string {
	if e == FLAC {
		return "audio/flac"
	}
	return "audio/wav"
}

// Extract writes one audio stream of source to dest as mono 16kHz audio.
// stream is the ordinal among audio streams (0 is the first).
func Extract(ctx context.Context, ffmpegBinary, source string, stream int, dest string, enc Encoding) error {
	args, err := ExtractArgs(source, stream, dest, enc)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExtractArgs builds the ffmpeg arguments used by Extract.
func ExtractArgs(source string, stream int, dest string, enc Encoding) ([]string, error) {
	if stream < 0 {
		return nil, fmt.Errorf("extract audio: invalid audio stream %d", stream)
	}
	codec := "pcm_s16le"
	if enc == FLAC {
		codec = "flac"
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", stream),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", codec,
		dest,
	}, nil
}
