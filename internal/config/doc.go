// Package config loads, normalizes, and validates vidscribe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// reads TOML files, loads a .env file when present, and honours environment
// fallbacks such as GEMINI_API_KEY and YOUTUBE_API_KEY. Commands obtain every
// setting through Config so paths arrive absolute and enumerations arrive
// lower-cased and checked.
package config
