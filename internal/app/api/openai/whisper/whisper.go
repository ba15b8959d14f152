package whisper

import (
	"context"
	stderrors "errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// MaxFileSize is the upload limit of the transcription endpoint.
const MaxFileSize = 25 << 20

// Config configures a RemoteTranscriber.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client  *openai.Client
	config  Config
	catalog *document.Catalog
	logger  *zap.Logger
}

// NewRemoteTranscriber creates a RemoteTranscriber. httpClient may be nil.
func NewRemoteTranscriber(cfg Config, catalog *document.Catalog, httpClient *http.Client, logger *zap.Logger) (*RemoteTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, provider.NewError(model.ProviderOpenAI, provider.CodeMissingAPIKey, "OPENAI_API_KEY is not set", false, errors.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &RemoteTranscriber{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		catalog: catalog,
		logger:  logger,
	}, nil
}

func (rt *RemoteTranscriber) Name() model.ProviderName {
	return model.ProviderOpenAI
}

// Transcribe uploads the audio with the prompt and language of the document type.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error) {
	if err := provider.CheckAudio(model.ProviderOpenAI, audio, MaxFileSize); err != nil {
		return nil, err
	}

	req := openai.AudioRequest{
		Model:       rt.config.Model,
		FilePath:    audio.Path,
		Temperature: rt.config.Temperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if rt.catalog != nil {
		if def, err := rt.catalog.Lookup(docType.String()); err == nil {
			req.Prompt = def.Prompt
			req.Language = def.Language
		}
	}

	if rt.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, handleAPIError(ctx, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, provider.NewError(model.ProviderOpenAI, provider.CodeEmptyResult, "the API returned an empty transcription", false, nil)
	}

	rt.logger.Debug("openai transcription done",
		zap.String("file", audio.Name),
		zap.String("model", req.Model),
		zap.Float64("audio_seconds", resp.Duration),
		zap.Duration("took", time.Since(start)))

	language := resp.Language
	if language == "" {
		language = req.Language
	}
	return &model.TranscriptionResult{
		Text:         text,
		Provider:     model.ProviderOpenAI,
		DocumentType: docType,
		Language:     language,
		Confidence:   confidence(resp),
		Model:        req.Model,
		Source:       audio.Path,
	}, nil
}

// confidence is the mean per-segment probability, exp(avg_logprob).
// It is 0 when the response carries no segments.
func confidence(resp openai.AudioResponse) float64 {
	if len(resp.Segments) == 0 {
		return 0
	}
	var sum float64
	for _, s := range resp.Segments {
		sum += math.Exp(s.AvgLogprob)
	}
	return math.Round(sum/float64(len(resp.Segments))*1000) / 1000
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return provider.FromStatus(model.ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return provider.FromStatus(model.ProviderOpenAI, reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return provider.NewError(model.ProviderOpenAI, provider.CodeTimeout, "request timed out", true, err)
	}
	return provider.NewError(model.ProviderOpenAI, provider.CodeUnknown, "transcription request failed", true, err)
}
