package whisperx

import "strings"

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3" or a size alias).
	Model string
	// Language is a language hint; empty lets WhisperX detect it.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// UVXBinary overrides the uvx executable.
	UVXBinary string
	// FFprobeBinary enables audio stream selection; empty uses the first stream.
	FFprobeBinary string
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v3"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)

// ModelSizes lists the size aliases accepted on the command line.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// ResolveModel maps a size alias to a concrete WhisperX model name. Names that
// are not aliases pass through untouched so specific checkpoints such as
// "large-v3-turbo" or "distil-large-v3" remain usable.
func ResolveModel(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultModel
	case "large":
		return "large-v3"
	case "tiny", "base", "small", "medium":
		return strings.ToLower(strings.TrimSpace(name))
	default:
		return strings.TrimSpace(name)
	}
}
