// Package audio chooses which audio stream of a video to transcribe and
// extracts it as mono 16kHz audio with ffmpeg.
//
// Primary entry points:
//   - Select: picks a stream ordinal from ffprobe output
//   - Extract: runs ffmpeg to write WAV or FLAC
package audio
