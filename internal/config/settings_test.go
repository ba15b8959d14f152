package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates Load from the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"EXTRACTION_BASE_URL", "N8N_BASE_URL", "EXTRACTION_AUTH_TOKEN",
		"VOCAL_DATA_ROOT", "VOCAL_PROVIDER", "LOG_LEVEL",
		"VOCAL_HISTORY_DRIVER", "VOCAL_HISTORY_DSN", "VOCAL_SERVER_ADDR",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	settings, _, err := Load("")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(settings.Paths.DataRoot))
	assert.Equal(t, filepath.Join(settings.Paths.DataRoot, "audio"), settings.Paths.AudioRoot)
	assert.Equal(t, filepath.Join(settings.Paths.DataRoot, "reports"), settings.Paths.ReportsDir)
	assert.Equal(t, []string{".m4a"}, settings.Audio.SourceExtensions)
	assert.Equal(t, ".mp3", settings.Audio.CanonicalExtension)
	assert.Equal(t, "openai", settings.Transcription.DefaultProvider)
	assert.Equal(t, DefaultOpenAITimeout, settings.Transcription.Timeout)
	assert.Equal(t, DefaultExtractionTimeout, settings.Extraction.Timeout)
	assert.Equal(t, 0, settings.Extraction.MaxRetries)
	assert.Equal(t, DefaultGoogleSpeechModel, settings.Transcription.Google.Model)
	assert.Equal(t, "sqlite3", settings.History.Driver)
	assert.Equal(t, filepath.Join(settings.Paths.DataRoot, "history.db"), settings.History.DSN)
	assert.Equal(t, "127.0.0.1:8080", settings.Server.Addr)
	assert.Equal(t, "release", settings.Server.Mode)
	assert.Equal(t, DefaultServerReadTimeout, settings.Server.ReadTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("N8N_HOST", "n8n.internal")
	t.Setenv("OPENAI_API_KEY", "sk-1234567890abcdef1234567890abcdef")

	path := writeConfig(t, `
paths:
  data_root: /srv/vocal
audio:
  source_extensions: [m4a, ".WAV", ".m4a"]
  parallel: 4
transcription:
  default_provider: google
  timeout: 45s
  google:
    backend: gemini
extraction:
  base_url: http://${N8N_HOST}:5678/
  max_retries: 2
  endpoints:
    cr_consultation: https://hooks.example.com/cr
`)

	settings, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/vocal", settings.Paths.DataRoot)
	assert.Equal(t, "/srv/vocal/text", settings.Paths.TextDir)
	assert.Equal(t, []string{".m4a", ".wav"}, settings.Audio.SourceExtensions)
	assert.Equal(t, 4, settings.Audio.Parallel)
	assert.Equal(t, "google", settings.Transcription.DefaultProvider)
	assert.Equal(t, 45*time.Second, settings.Transcription.Timeout)
	assert.Equal(t, DefaultGeminiModel, settings.Transcription.Google.Model)
	assert.Equal(t, "http://n8n.internal:5678", settings.Extraction.BaseURL)
	assert.Equal(t, 2, settings.Extraction.MaxRetries)
	assert.Equal(t, "sk-1234567890abcdef1234567890abcdef", settings.Transcription.OpenAI.APIKey)

	url, err := settings.Extraction.Endpoint("cr_consultation")
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/cr", url)

	url, err = settings.Extraction.Endpoint("bilan")
	require.NoError(t, err)
	assert.Equal(t, "http://n8n.internal:5678/webhook/bilan", url)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOCAL_PROVIDER", "google")
	t.Setenv("EXTRACTION_BASE_URL", "https://extract.example.com")

	path := writeConfig(t, `
transcription:
  default_provider: openai
extraction:
  base_url: https://ignored.example.com
`)

	settings, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "google", settings.Transcription.DefaultProvider)
	assert.Equal(t, "https://extract.example.com", settings.Extraction.BaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		contains string
	}{
		{"unknown provider", "transcription:\n  default_provider: azure\n", "default_provider"},
		{"bad backend", "transcription:\n  google:\n    backend: vertex\n", "backend"},
		{"too many retries", "extraction:\n  max_retries: 50\n", "max_retries"},
		{"bad endpoint", "extraction:\n  endpoints:\n    cr_consultation: not-a-url\n", "endpoints"},
		{"bad log format", "log:\n  format: xml\n", "format"},
		{"unknown history driver", "history:\n  driver: mysql\n", "driver"},
		{"postgres without dsn", "history:\n  driver: postgres\n", "dsn"},
		{"bad server mode", "server:\n  mode: prod\n", "mode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, _, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadWarnsOnSuspiciousKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "not-an-openai-key")

	_, warnings, err := Load("")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "OpenAI")
}

func TestEndpointWithoutBaseURL(t *testing.T) {
	_, err := ExtractionSettings{}.Endpoint("cr_consultation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction.base_url")
}
