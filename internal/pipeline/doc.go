// Package pipeline runs transcription jobs over an ordered list of videos.
//
// Runner processes units one at a time: resolve the unit to a local file
// (downloading when needed), transcribe it, persist the transcript, search it
// for keywords, and persist any matches. A failure in any step is recorded
// against that unit and the run moves on; only a failure to load the
// transcription engine aborts the run, and it does so before any unit starts.
//
// Cancellation is observed between units. Work already in progress for a
// unit finishes so artifacts are never left half written.
//
// Discover builds local units from a directory of videos, optionally probing
// durations and dates so the selection filter can be applied to local files.
package pipeline
