// Package ytdlp wraps the yt-dlp CLI for channel listing and video downloads.
//
// ListChannel asks yt-dlp for full metadata of a channel's most recent
// uploads (nested tabs such as Videos and Live are flattened) and converts
// them into selection candidates. Download fetches one video at capped
// resolution and reports where the file landed.
package ytdlp
