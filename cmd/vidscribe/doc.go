// Package main hosts the vidscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline runs:
// single-file transcription, directory batches, and channel downloads, plus
// the scheduled watcher, history inspection, and configuration scaffolding.
// It centralizes configuration resolution and logging setup so subcommands
// only assemble units and options.
//
// Add functionality to the internal packages first, then surface it here.
package main
