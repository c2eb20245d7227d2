// Package history persists a ledger of pipeline runs and per-video outcomes in
// SQLite.
//
// The ledger answers two questions: what ran recently (`vidscribe history`)
// and whether a channel video was already transcribed successfully
// (`--skip-processed`). Store implements pipeline.Recorder so outcomes are
// written as each video finishes rather than at the end of a run.
package history
