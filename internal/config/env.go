package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
	Google string
}

// envPaths are probed in order; the first existing file wins.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads environment variables from the first .env file found.
// It returns the loaded path, or "" when none exists.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}
	return "", nil
}

// GetAPIKeys retrieves API keys from environment variables.
// GEMINI_API_KEY is accepted as a fallback for the Google key.
func GetAPIKeys() *APIKeys {
	google := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if google == "" {
		google = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	return &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Google: google,
	}
}

// CheckAPIKeys returns one warning per configured key with a suspicious
// format. Missing keys are not reported here; providers fail on use.
func CheckAPIKeys(apiKeys *APIKeys) []string {
	var warnings []string
	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if apiKeys.Google != "" {
		if err := ValidateAPIKey(apiKeys.Google, "Google"); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
