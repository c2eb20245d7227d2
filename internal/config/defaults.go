package config

const (
	defaultOutputDir          = "~/vidscribe"
	defaultLogDir             = "~/.local/share/vidscribe/logs"
	defaultStateDir           = "~/.local/share/vidscribe"
	defaultBackend            = BackendWhisperX
	defaultModel              = "base"
	defaultVADMethod          = "silero"
	defaultGeminiModel        = "gemini-2.5-flash"
	defaultContextWords       = 5
	defaultCatalog            = CatalogYTDLP
	defaultPlaylistEnd        = 50
	defaultMaxVideos          = 5
	defaultMaxDurationMinutes = 60
	defaultDownloadFormat     = "best[height<=720]"
	defaultOutputFormat       = "json"
	defaultWatchSchedule      = "0 */6 * * *"
	defaultNtfyTimeout        = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Transcription: Transcription{
			Backend:     defaultBackend,
			Model:       defaultModel,
			VADMethod:   defaultVADMethod,
			GeminiModel: defaultGeminiModel,
		},
		Search: Search{
			ContextWords: defaultContextWords,
		},
		Channel: Channel{
			Catalog:            defaultCatalog,
			PlaylistEnd:        defaultPlaylistEnd,
			MaxVideos:          defaultMaxVideos,
			MaxDurationMinutes: defaultMaxDurationMinutes,
			LiveOnly:           true,
			DownloadFormat:     defaultDownloadFormat,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Watch: Watch{
			Schedule:           defaultWatchSchedule,
			NtfyRequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
