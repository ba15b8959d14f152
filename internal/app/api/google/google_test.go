package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/config"
)

const testKey = "AIzaTest-1234567890abcdef1234567890"

var mp3Bytes = []byte("ID3\x04\x00fake mp3 payload")

func tempAudio(t *testing.T, name string, data []byte) model.AudioReference {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return model.AudioReference{Name: name, Path: path}
}

func newSpeech(t *testing.T, baseURL string) *SpeechTranscriber {
	t.Helper()
	g, err := NewSpeechTranscriber(SpeechConfig{APIKey: testKey, BaseURL: baseURL, LanguageCode: "fr-FR", Timeout: time.Second}, document.Default(), nil, nil)
	require.NoError(t, err)
	return g
}

func TestSpeechTranscriber_Transcribe(t *testing.T) {
	var got recognizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1p1beta1/speech:recognize", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		_, _ = w.Write([]byte(`{"results": [
			{"alternatives": [{"transcript": "Patient Jean Dupont.", "confidence": 0.9}], "languageCode": "fr-fr"},
			{"alternatives": [{"transcript": " Diagnostic angine. ", "confidence": 0.7}]},
			{"alternatives": []}
		]}`))
	}))
	defer server.Close()

	audio := tempAudio(t, "session42.mp3", mp3Bytes)
	res, err := newSpeech(t, server.URL).Transcribe(context.Background(), model.DocumentCRConsultation, audio)
	require.NoError(t, err)

	assert.Equal(t, "Patient Jean Dupont. Diagnostic angine.", res.Text)
	assert.Equal(t, model.ProviderGoogle, res.Provider)
	assert.Equal(t, "fr-fr", res.Language)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	assert.Equal(t, audio.Path, res.Source)

	assert.Equal(t, "MP3", got.Config.Encoding)
	assert.Equal(t, "fr-FR", got.Config.LanguageCode)
	assert.True(t, got.Config.EnableAutomaticPunctuation)
	require.Len(t, got.Config.SpeechContexts, 1)
	assert.Contains(t, got.Config.SpeechContexts[0].Phrases, "diagnostic")
	decoded, err := base64.StdEncoding.DecodeString(got.Audio.Content)
	require.NoError(t, err)
	assert.Equal(t, mp3Bytes, decoded)
}

func TestSpeechTranscriber_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		code      string
		retryable bool
		contains  string
	}{
		{"bad key", http.StatusBadRequest, `{"error": {"code": 400, "message": "API key not valid.", "status": "INVALID_ARGUMENT"}}`, provider.CodeInvalidAudio, false, "API key not valid"},
		{"forbidden", http.StatusForbidden, `{"error": {"code": 403, "message": "Speech API has not been used", "status": "PERMISSION_DENIED"}}`, provider.CodeAuthentication, false, "PERMISSION"},
		{"quota", http.StatusTooManyRequests, `{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`, provider.CodeRateLimited, true, "Quota exceeded"},
		{"server", http.StatusServiceUnavailable, `oops`, provider.CodeAPIError, true, "Service Unavailable"},
		{"no speech", http.StatusOK, `{}`, provider.CodeEmptyResult, false, "no speech"},
		{"garbage", http.StatusOK, `{"results": [`, provider.CodeAPIError, false, "parse response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newSpeech(t, server.URL).Transcribe(context.Background(), model.DocumentCRConsultation, tempAudio(t, "a.mp3", mp3Bytes))
			var terr *errors.TranscriptionError
			require.True(t, errors.As(err, &terr), "got %v", err)
			assert.Equal(t, "google", terr.Provider)
			assert.Equal(t, tt.code, terr.Code)
			assert.Equal(t, tt.retryable, terr.Retryable)
			if tt.code == provider.CodeAuthentication {
				assert.Contains(t, terr.Error(), "API key")
			} else {
				assert.Contains(t, terr.Error(), tt.contains)
			}
		})
	}
}

func TestSpeechTranscriber_RejectsUnsupportedFormat(t *testing.T) {
	g := newSpeech(t, "http://127.0.0.1:0")
	audio := tempAudio(t, "a.m4a", []byte("\x00\x00\x00\x20ftypM4A "))
	audio.MIMEType = "audio/x-m4a"

	_, err := g.Transcribe(context.Background(), model.DocumentCRConsultation, audio)
	var terr *errors.TranscriptionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, provider.CodeInvalidAudio, terr.Code)
	assert.Contains(t, terr.Suggestions[0], "convert-audio")
}

func TestEncoding(t *testing.T) {
	enc, rate, ok := Encoding("mp3", "")
	assert.True(t, ok)
	assert.Equal(t, "MP3", enc)
	assert.Zero(t, rate)

	enc, rate, ok = Encoding("", "audio/ogg")
	assert.True(t, ok)
	assert.Equal(t, "OGG_OPUS", enc)
	assert.Equal(t, 48000, rate)

	_, _, ok = Encoding("m4a", "audio/x-m4a")
	assert.False(t, ok)
}

func TestGeminiTranscriber_Transcribe(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &payload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Patient Jean Dupont, angine.\n"}]}}]}`))
	}))
	defer server.Close()

	g, err := NewGeminiTranscriber(GeminiConfig{APIKey: testKey, BaseURL: server.URL, Timeout: time.Second}, document.Default(), nil, nil)
	require.NoError(t, err)

	audio := tempAudio(t, "session42.mp3", mp3Bytes)
	res, err := g.Transcribe(context.Background(), model.DocumentCRConsultation, audio)
	require.NoError(t, err)
	assert.Equal(t, "Patient Jean Dupont, angine.", res.Text)
	assert.Equal(t, model.ProviderGoogle, res.Provider)
	assert.Equal(t, "fr", res.Language)
	assert.Equal(t, "gemini-2.0-flash", res.Model)

	raw, _ := json.Marshal(payload)
	assert.Contains(t, string(raw), "audio/mpeg")
	assert.Contains(t, string(raw), base64.StdEncoding.EncodeToString(mp3Bytes))
	assert.Contains(t, string(raw), "Transcribe this audio recording verbatim")
}

func TestGeminiTranscriber_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	g, err := NewGeminiTranscriber(GeminiConfig{APIKey: testKey, BaseURL: server.URL}, document.Default(), nil, nil)
	require.NoError(t, err)

	_, err = g.Transcribe(context.Background(), model.DocumentCRConsultation, tempAudio(t, "a.mp3", mp3Bytes))
	var terr *errors.TranscriptionError
	require.True(t, errors.As(err, &terr), "got %v", err)
	assert.Equal(t, provider.CodeRateLimited, terr.Code)
	assert.True(t, terr.Retryable)
}

func TestCreateGoogleProvider(t *testing.T) {
	_, err := provider.New("google", provider.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingAPIKey))

	speech, err := provider.New("google", provider.Options{Settings: config.TranscriptionSettings{
		Google: config.GoogleSettings{APIKey: testKey, Backend: BackendSpeech},
	}})
	require.NoError(t, err)
	assert.IsType(t, &SpeechTranscriber{}, speech)

	gemini, err := provider.New("google", provider.Options{Settings: config.TranscriptionSettings{
		Google: config.GoogleSettings{APIKey: testKey, Backend: BackendGemini},
	}})
	require.NoError(t, err)
	assert.IsType(t, &GeminiTranscriber{}, gemini)
	assert.Equal(t, model.ProviderGoogle, gemini.Name())
}

func TestPrompt(t *testing.T) {
	assert.NotContains(t, Prompt(nil), "Context")
	p := Prompt(&document.Definition{Language: "fr", Prompt: "Consultation.", Phrases: []string{"ordonnance"}})
	assert.Contains(t, p, `language "fr"`)
	assert.Contains(t, p, "Context: Consultation.")
	assert.Contains(t, p, "ordonnance")
}
