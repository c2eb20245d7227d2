// Package youtube lists channel uploads through the YouTube Data API v3.
//
// It is an alternative to yt-dlp listing when an API key is available: it is
// faster, needs no local tooling, and reports live broadcast details reliably.
// Requests are paced with a token-bucket limiter to stay inside quota bursts.
package youtube
