package google

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// MaxGeminiInline is the inline request size limit of generateContent.
const MaxGeminiInline = 20 << 20

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiTranscriber asks a Gemini model to transcribe inline audio.
type GeminiTranscriber struct {
	config     GeminiConfig
	httpClient *http.Client
	catalog    *document.Catalog
	logger     *zap.Logger
}

func NewGeminiTranscriber(cfg GeminiConfig, catalog *document.Catalog, client *http.Client, logger *zap.Logger) (*GeminiTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeMissingAPIKey, "GOOGLE_API_KEY or GEMINI_API_KEY is not set", false, errors.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiTranscriber{config: cfg, httpClient: client, catalog: catalog, logger: logger}, nil
}

func (g *GeminiTranscriber) Name() model.ProviderName {
	return model.ProviderGoogle
}

// Prompt builds the transcription instruction for a document type.
func Prompt(def *document.Definition) string {
	var b strings.Builder
	b.WriteString("Transcribe this audio recording verbatim. Return only the transcript text, without commentary or formatting.")
	if def == nil {
		return b.String()
	}
	if def.Language != "" {
		fmt.Fprintf(&b, " The speech is in language %q.", def.Language)
	}
	if def.Prompt != "" {
		fmt.Fprintf(&b, " Context: %s", def.Prompt)
	}
	if len(def.Phrases) > 0 {
		fmt.Fprintf(&b, " Expected vocabulary: %s.", strings.Join(def.Phrases, ", "))
	}
	return b.String()
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error) {
	if err := provider.CheckAudio(model.ProviderGoogle, audio, MaxGeminiInline); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(audio.Path)
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeFileNotFound, "read audio file", false, err)
	}
	mime := detectMIME(audio)
	if !strings.HasPrefix(mime, "audio/") {
		mime = "audio/mpeg"
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.config.BaseURL},
	})
	if err != nil {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "create gemini client", false, err)
	}

	def := definition(g.catalog, docType)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mime),
			genai.NewPartFromText(Prompt(def)),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, g.config.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, g.handleAPIError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, provider.NewError(model.ProviderGoogle, provider.CodeEmptyResult, "gemini returned no text", false, nil)
	}
	g.logger.Debug("gemini transcription done", zap.String("file", audio.Name), zap.String("model", g.config.Model), zap.Duration("took", time.Since(start)))

	language := ""
	if def != nil {
		language = def.Language
	}
	return &model.TranscriptionResult{
		Text:         text,
		Provider:     model.ProviderGoogle,
		DocumentType: docType,
		Language:     language,
		Model:        g.config.Model,
		Source:       audio.Path,
	}, nil
}

func (g *GeminiTranscriber) handleAPIError(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return provider.FromStatus(model.ProviderGoogle, apiErr.Code, apiErr.Message, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return provider.NewError(model.ProviderGoogle, provider.CodeTimeout, "request timed out", true, err)
	}
	return provider.NewError(model.ProviderGoogle, provider.CodeUnknown, "gemini request failed", true, err)
}
