package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	langpkg "vidscribe/internal/language"
	"vidscribe/internal/media/audio"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Config captures Gemini transcription settings.
type Config struct {
	APIKey        string
	Model         string
	Language      string
	FFmpegBinary  string
	FFprobeBinary string
}

// backend isolates the genai calls so transcription can be exercised without
// network access.
type backend interface {
	Upload(ctx context.Context, path, mimeType string) (name, uri string, err error)
	Generate(ctx context.Context, model, prompt, uri, mimeType string) (string, error)
	Delete(ctx context.Context, name string)
}

// Service transcribes audio with Gemini.
type Service struct {
	cfg     Config
	backend backend
	extract func(ctx context.Context, source string, stream int, dest string) error
}

// NewService returns an unloaded service. Load creates the API client.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	s := &Service{cfg: cfg}
	s.extract = func(ctx context.Context, source string, stream int, dest string) error {
		return audio.Extract(ctx, s.cfg.FFmpegBinary, source, stream, dest, audio.FLAC)
	}
	return s
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Load builds the genai client. A missing API key or client failure is a
// model load error.
func (s *Service) Load(ctx context.Context) (pipeline.Transcriber, error) {
	if s.backend != nil {
		return s, nil
	}
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrModelLoad, "transcribe", "gemini", "api key not configured (set GEMINI_API_KEY)", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrModelLoad, "transcribe", "gemini", "create client", err)
	}
	s.backend = &genaiBackend{client: client}
	return s, nil
}

// Transcribe uploads the extracted audio of mediaPath and parses the model's
// JSON transcript.
func (s *Service) Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error) {
	if s.backend == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "gemini", "service not loaded", nil)
	}
	workDir, err := os.MkdirTemp("", "vidscribe-gemini-")
	if err != nil {
		return nil, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	stream, err := audio.Choose(ctx, s.cfg.FFprobeBinary, mediaPath, s.cfg.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "probe audio", "", err)
	}
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	audioPath := filepath.Join(workDir, stem+".flac")
	if err := s.extract(ctx, mediaPath, stream, audioPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "extract audio", "", err)
	}

	name, uri, err := s.backend.Upload(ctx, audioPath, audio.FLAC.MIMEType())
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "gemini upload", "", err)
	}
	defer s.backend.Delete(context.WithoutCancel(ctx), name)

	text, err := s.backend.Generate(ctx, s.cfg.Model, buildPrompt(s.cfg.Language), uri, audio.FLAC.MIMEType())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "gemini generate", "", err)
	}
	result, err := ParseResponse(text)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "gemini response", "", err)
	}
	if result.Language == "" {
		result.Language = langpkg.ToISO2(s.cfg.Language)
	}
	return result, nil
}

func buildPrompt(language string) string {
	var b strings.Builder
	b.WriteString("Transcribe the speech in this audio verbatim.\n")
	if iso := langpkg.ToISO2(language); iso != "" {
		fmt.Fprintf(&b, "The spoken language is %s.\n", langpkg.DisplayName(iso))
	}
	b.WriteString(`Respond with JSON only, using this shape:
{"language": "<ISO 639-1 code>",
 "segments": [{"start": <seconds>, "end": <seconds>, "text": "<sentence>",
               "words": [{"word": "<word>", "start": <seconds>, "end": <seconds>}]}]}
Segments are sentences in chronological order. Times are seconds from the
start of the audio as decimal numbers. Every spoken word appears in exactly
one segment's words list.`)
	return b.String()
}

type genaiBackend struct {
	client *genai.Client
}

func (g *genaiBackend) Upload(ctx context.Context, path, mimeType string) (string, string, error) {
	file, err := g.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return "", "", err
	}
	return file.Name, file.URI, nil
}

func (g *genaiBackend) Generate(ctx context.Context, model, prompt, uri, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromURI(uri, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return text, nil
}

func (g *genaiBackend) Delete(ctx context.Context, name string) {
	if name == "" {
		return
	}
	_, _ = g.client.Files.Delete(ctx, name, nil)
}
