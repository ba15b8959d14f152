// Package provider defines the transcription contract shared by every
// speech-to-text backend and the name-keyed registry used to select one.
package provider

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/config"
)

// Transcriber turns one resolved audio file into text. Implementations
// return *errors.TranscriptionError on failure.
type Transcriber interface {
	Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error)
	Name() model.ProviderName
}

// Options is what a Creator receives. HTTPClient may be nil.
type Options struct {
	Settings   config.TranscriptionSettings
	Catalog    *document.Catalog
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Creator builds a Transcriber from Options.
type Creator func(opts Options) (Transcriber, error)

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc struct {
	ProviderName model.ProviderName
	Fn           func(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error)
}

func (f TranscriberFunc) Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error) {
	return f.Fn(ctx, docType, audio)
}

func (f TranscriberFunc) Name() model.ProviderName {
	return f.ProviderName
}

// Log returns the configured logger, or a no-op logger.
func (o Options) Log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
