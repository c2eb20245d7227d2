// Package whisperx runs WhisperX through uvx to produce word-aligned
// transcripts.
//
// This package handles:
//   - Audio extraction to mono 16kHz WAV via ffmpeg
//   - WhisperX invocation with word alignment and JSON output
//   - Conversion of WhisperX JSON into transcript.Transcript
//
// Configuration options (model, language, CUDA, VAD method) are passed via
// Config. Service satisfies pipeline.Loader; loading verifies the external
// tools exist so a broken install fails the run before any video is touched.
package whisperx
