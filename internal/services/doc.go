// Package services defines shared utilities consumed by the pipeline and the
// external integrations (transcription engines, downloaders, catalogs).
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, video references, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper that separate fatal
//     failures (model loading, configuration) from per-video failures.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across the pipeline.
package services
