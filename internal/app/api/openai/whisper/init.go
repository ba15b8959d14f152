package whisper

import (
	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/model"
)

func init() {
	// Register openai provider with the factory
	provider.Register(model.ProviderOpenAI, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration
func createOpenAIProvider(opts provider.Options) (provider.Transcriber, error) {
	s := opts.Settings
	t, err := NewRemoteTranscriber(Config{
		APIKey:      s.OpenAI.APIKey,
		Model:       s.OpenAI.Model,
		BaseURL:     s.OpenAI.BaseURL,
		Temperature: s.OpenAI.Temperature,
		Timeout:     s.Timeout,
	}, opts.Catalog, opts.HTTPClient, opts.Log().Named("openai"))
	if err != nil {
		return nil, err
	}
	return t, nil
}
