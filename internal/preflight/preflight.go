package preflight

import (
	"fmt"
	"strings"

	"vidscribe/internal/config"
	"vidscribe/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Scope selects which workflow the checks are for.
type Scope int

const (
	// ScopeLocal covers transcription of files already on disk.
	ScopeLocal Scope = iota
	// ScopeChannel adds the catalog and download requirements.
	ScopeChannel
)

// MinFreeBytes is the free space below which the output directory check fails.
const MinFreeBytes uint64 = 1 << 30

// RunAll executes the directory, disk, and credential checks for cfg.
// Binary checks are reported separately by CheckSystemDeps.
func RunAll(cfg *config.Config, scope Scope) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckFreeSpace("Output free space", cfg.Paths.OutputDir, MinFreeBytes))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Transcription.Backend == config.BackendGemini {
		results = append(results, CheckCredential("Gemini API key", cfg.Transcription.GeminiAPIKey))
	}
	if cfg.Transcription.Backend == config.BackendWhisperX && cfg.Transcription.VADMethod == "pyannote" {
		results = append(results, CheckCredential("Hugging Face token", cfg.Transcription.HFToken))
	}
	if scope == ScopeChannel {
		if cfg.Channel.Catalog == config.CatalogYouTubeAPI {
			results = append(results, CheckCredential("YouTube API key", cfg.Channel.YouTubeAPIKey))
		}
		if dir := strings.TrimSpace(cfg.Paths.DownloadDir); dir != "" {
			results = append(results, CheckDirectoryAccess("Download directory", dir))
		}
	}
	return results
}

// CheckCredential reports whether a secret is configured without printing it.
func CheckCredential(name, value string) Result {
	value = strings.TrimSpace(value)
	if value == "" {
		return Result{Name: name, Detail: "missing"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("configured (%s)", mask(value))}
}

func mask(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// Require runs every check for scope and returns a configuration error naming
// each failure.
func Require(cfg *config.Config, scope Scope) error {
	var failures []string
	for _, result := range RunAll(cfg, scope) {
		if !result.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	for _, status := range CheckSystemDeps(cfg, scope) {
		if !status.Available && !status.Optional {
			failures = append(failures, fmt.Sprintf("%s: %s", status.Name, status.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "require",
		"Environment not ready: "+strings.Join(failures, "; "), nil)
}
