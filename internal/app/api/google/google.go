// Package google transcribes audio with Google: the Cloud Speech-to-Text
// REST API by default, or Gemini audio understanding when the backend is
// set to "gemini".
package google

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/model"
)

const (
	BackendSpeech = "speech"
	BackendGemini = "gemini"
)

func init() {
	provider.Register(model.ProviderGoogle, createGoogleProvider)
}

func createGoogleProvider(opts provider.Options) (provider.Transcriber, error) {
	s := opts.Settings.Google
	logger := opts.Log().Named("google")

	if strings.EqualFold(s.Backend, BackendGemini) {
		t, err := NewGeminiTranscriber(GeminiConfig{
			APIKey:  s.APIKey,
			Model:   s.Model,
			BaseURL: s.BaseURL,
			Timeout: opts.Settings.Timeout,
		}, opts.Catalog, opts.HTTPClient, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	t, err := NewSpeechTranscriber(SpeechConfig{
		APIKey:       s.APIKey,
		Model:        s.Model,
		BaseURL:      s.BaseURL,
		LanguageCode: s.LanguageCode,
		Timeout:      opts.Settings.Timeout,
	}, opts.Catalog, opts.HTTPClient, logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// definition looks up the catalog entry; a missing catalog or type yields nil.
func definition(catalog *document.Catalog, docType model.DocumentType) *document.Definition {
	if catalog == nil {
		return nil
	}
	def, err := catalog.Lookup(docType.String())
	if err != nil {
		return nil
	}
	return def
}

// detectMIME returns the MIME type of the resolved audio, sniffing the file
// when the locator did not record one.
func detectMIME(audio model.AudioReference) string {
	if audio.MIMEType != "" {
		return audio.MIMEType
	}
	mime, err := mimetype.DetectFile(audio.Path)
	if err != nil {
		return ""
	}
	m := mime.String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return m
}
