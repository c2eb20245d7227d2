package main

import (
	"fmt"
	"slices"
	"strings"

	"vidscribe/internal/config"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services/gemini"
	"vidscribe/internal/services/whisperx"
)

// transcriptionEngine is a Loader that can name its model for summaries.
type transcriptionEngine interface {
	pipeline.Loader
	Model() string
}

// newEngine builds the configured backend. Tests replace it with a fake.
var newEngine = func(cfg *config.Config) transcriptionEngine {
	t := cfg.Transcription
	if t.Backend == config.BackendGemini {
		return gemini.NewService(gemini.Config{
			APIKey:        t.GeminiAPIKey,
			Model:         t.GeminiModel,
			Language:      t.Language,
			FFmpegBinary:  cfg.FFmpegBinary(),
			FFprobeBinary: cfg.FFprobeBinary(),
		})
	}
	return whisperx.NewService(whisperx.Config{
		Model:         t.Model,
		Language:      t.Language,
		CUDAEnabled:   t.CUDAEnabled,
		VADMethod:     t.VADMethod,
		HFToken:       t.HFToken,
		UVXBinary:     cfg.UVXBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
	}, cfg.FFmpegBinary())
}

// applyModelFlag validates a --model override and applies it to the backend
// in use.
func applyModelFlag(cfg *config.Config, model string) error {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return nil
	}
	if cfg.Transcription.Backend == config.BackendGemini {
		cfg.Transcription.GeminiModel = model
		return nil
	}
	if !slices.Contains(whisperx.ModelSizes, model) {
		return fmt.Errorf("invalid model %q (expected one of %s)", model, strings.Join(whisperx.ModelSizes, ", "))
	}
	cfg.Transcription.Model = model
	return nil
}
