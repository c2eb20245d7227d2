// Package transcript defines the time-aligned transcript model shared by the
// transcription backends, the keyword search engine, and the writers that
// persist transcripts as plain text, CSV, or JSON.
//
// A Transcript is produced once per video and treated as read-only afterwards.
// Word timings are optional because aligners occasionally fail to place a word
// (numbers and symbols are common offenders); consumers fall back to the
// enclosing segment's timing when a word has none.
package transcript
