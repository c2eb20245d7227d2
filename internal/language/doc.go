// Package language normalizes the language hints passed to transcription
// engines. Codes, BCP 47 tags, and common English names all reduce to
// ISO 639-1 through golang.org/x/text/language.
package language
