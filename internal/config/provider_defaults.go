package config

import "time"

// Default configuration constants
const (
	// Timeout defaults
	DefaultOpenAITimeout     = 120 * time.Second
	DefaultGoogleTimeout     = 120 * time.Second
	DefaultExtractionTimeout = 60 * time.Second

	// Retry defaults
	DefaultExtractionRetries      = 0
	DefaultExtractionRetryBackoff = 2 * time.Second

	// Model defaults
	DefaultOpenAIModel       = "whisper-1"
	DefaultGoogleSpeechModel = "default"
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGoogleLanguage    = "fr-FR"

	// Audio defaults
	DefaultSourceExtension    = ".m4a"
	DefaultCanonicalExtension = ".mp3"
	DefaultFFmpegPath         = "ffmpeg"
	DefaultFFprobePath        = "ffprobe"
	DefaultMP3Quality         = "2"

	// Layout defaults, relative to the data root
	DefaultDataRoot   = "data"
	DefaultAudioDir   = "audio"
	DefaultTextDir    = "text"
	DefaultRecordsDir = "records"
	DefaultReportsDir = "reports"

	DefaultHistoryDriver = "sqlite3"
	DefaultHistoryFile   = "history.db"

	DefaultServerAddr        = "127.0.0.1:8080"
	DefaultServerMode        = "release"
	DefaultServerReadTimeout = 30 * time.Second

	DefaultProvider = "openai"
)

// ProviderDefaults holds default call settings for an external service
type ProviderDefaults struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// GetProviderDefaults returns default configuration for a given provider type
func GetProviderDefaults(providerType string) ProviderDefaults {
	switch providerType {
	case "openai":
		return ProviderDefaults{Timeout: DefaultOpenAITimeout}
	case "google":
		return ProviderDefaults{Timeout: DefaultGoogleTimeout}
	case "extraction":
		return ProviderDefaults{
			Timeout: DefaultExtractionTimeout,
			Retries: DefaultExtractionRetries,
			Backoff: DefaultExtractionRetryBackoff,
		}
	default:
		return ProviderDefaults{Timeout: 60 * time.Second}
	}
}
