// Package search locates keyword occurrences in word-aligned transcripts.
//
// Matching is literal and case-insensitive. A segment is first screened on its
// full text, then each word is tested individually, so a keyword only matches
// when it is contained in a single word: multi-word phrases spanning a word
// boundary are never reported. Each match carries a context window of
// neighbouring words with the matched word wrapped in ** markers.
//
// Results are persisted as JSON records alongside the transcript, and keyword
// lists can be loaded from YAML files.
package search
