package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscribe/internal/deps"
	langpkg "vidscribe/internal/language"
	"vidscribe/internal/media/audio"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	uvxBinary     string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	uvx := strings.TrimSpace(cfg.UVXBinary)
	if uvx == "" {
		uvx = UVXCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		uvxBinary:    uvx,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the resolved model name for logging.
func (s *Service) Model() string {
	return ResolveModel(s.cfg.Model)
}

// Load verifies ffmpeg and uvx are reachable. WhisperX itself is fetched by
// uvx on first use and cached afterwards.
func (s *Service) Load(_ context.Context) (pipeline.Transcriber, error) {
	if s.commandRunner != nil {
		return s, nil
	}
	err := deps.Require([]deps.Requirement{
		{Name: "FFmpeg", Command: s.ffmpegBinary},
		{Name: "uvx", Command: s.uvxBinary},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrModelLoad, "transcribe", "whisperx "+s.Model(), "", err)
	}
	return s, nil
}

// Transcribe extracts audio from mediaPath, runs WhisperX on it, and returns
// the aligned transcript. Intermediate files live in a temporary directory
// removed before returning.
func (s *Service) Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "source path required", nil)
	}
	workDir, err := os.MkdirTemp("", "vidscribe-whisperx-")
	if err != nil {
		return nil, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	stream, err := audio.Choose(ctx, s.cfg.FFprobeBinary, mediaPath, s.cfg.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "probe audio", "", err)
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	wavPath := filepath.Join(workDir, stem+".wav")
	if err := s.extractAudio(ctx, mediaPath, stream, wavPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "extract audio", "", err)
	}

	if err := s.run(ctx, s.uvxBinary, s.buildArgs(wavPath, workDir)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "", err)
	}

	result, err := LoadTranscript(filepath.Join(workDir, stem+".json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx output", "", err)
	}
	return result, nil
}

func (s *Service) extractAudio(ctx context.Context, source string, stream int, dest string) error {
	if s.commandRunner != nil {
		args, err := audio.ExtractArgs(source, stream, dest, audio.WAV)
		if err != nil {
			return err
		}
		return s.commandRunner(ctx, s.ffmpegBinary, args...)
	}
	return audio.Extract(ctx, s.ffmpegBinary, source, stream, dest, audio.WAV)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(string(output), 5))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 40)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// wxWord is a word entry in WhisperX JSON. Words WhisperX could not align
// (digits, symbols) carry no start or end.
type wxWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type wxSegment struct {
	Text  string   `json:"text"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Words []wxWord `json:"words"`
}

// wxPayload is the JSON structure from WhisperX output.
type wxPayload struct {
	Language string      `json:"language"`
	Segments []wxSegment `json:"segments"`
}

// LoadTranscript parses a WhisperX JSON file.
func LoadTranscript(jsonPath string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	return ParseTranscript(data)
}

// ParseTranscript converts WhisperX JSON output into a transcript.
func ParseTranscript(data []byte) (*transcript.Transcript, error) {
	var payload wxPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	out := &transcript.Transcript{
		Language: payload.Language,
		Segments: make([]transcript.Segment, 0, len(payload.Segments)),
	}
	for i, seg := range payload.Segments {
		converted := transcript.Segment{
			ID:    i,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
			Words: make([]transcript.Word, 0, len(seg.Words)),
		}
		for _, w := range seg.Words {
			converted.Words = append(converted.Words, transcript.Word{
				Word:        w.Word,
				Start:       w.Start,
				End:         w.End,
				Probability: w.Score,
			})
		}
		out.Segments = append(out.Segments, converted)
	}
	out.Text = out.JoinedText()
	return out, nil
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
