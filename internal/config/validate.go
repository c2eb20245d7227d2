package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"vidscribe/internal/transcript"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateChannel(); err != nil {
		return err
	}
	if _, err := transcript.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		return fmt.Errorf("watch.schedule %q: %w", c.Watch.Schedule, err)
	}
	if c.Watch.NtfyRequestTimeout < 0 {
		return errors.New("watch.ntfy_request_timeout must be >= 0")
	}
	return c.validateLogging()
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendWhisperX, BackendGemini:
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendWhisperX, BackendGemini, c.Transcription.Backend)
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.Backend == BackendWhisperX && c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.hf_token is required for pyannote VAD (or set HF_TOKEN)")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.ContextWords > 100 {
		return fmt.Errorf("search.context_words must be at most 100, got %d", c.Search.ContextWords)
	}
	return nil
}

func (c *Config) validateChannel() error {
	switch c.Channel.Catalog {
	case CatalogYTDLP:
	case CatalogYouTubeAPI:
		if c.Channel.YouTubeAPIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/vidscribe/config.toml"
			}
			return fmt.Errorf("channel.youtube_api_key is required for the youtube_api catalog. Set YOUTUBE_API_KEY or edit %s", defaultPath)
		}
	default:
		return fmt.Errorf("channel.catalog must be %q or %q, got %q", CatalogYTDLP, CatalogYouTubeAPI, c.Channel.Catalog)
	}
	if c.Channel.MaxVideos < 0 {
		return errors.New("channel.max_videos must be zero or positive")
	}
	if c.Channel.MaxDurationMinutes < 0 {
		return errors.New("channel.max_duration_minutes must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", strings.TrimSpace(c.Logging.Level))
	}
}
