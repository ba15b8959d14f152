package provider

import (
	"fmt"
	"os"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// Error codes shared by the backends.
const (
	CodeMissingAPIKey  = "missing_api_key"
	CodeAuthentication = "authentication_failed"
	CodeRateLimited    = "rate_limit_exceeded"
	CodeInvalidAudio   = "invalid_file"
	CodeFileTooLarge   = "file_too_large"
	CodeFileNotFound   = "file_not_found"
	CodeTimeout        = "timeout"
	CodeAPIError       = "api_error"
	CodeEmptyResult    = "empty_result"
	CodeUnknown        = "unknown_error"
)

// NewError builds a TranscriptionError for provider p.
func NewError(p model.ProviderName, code, message string, retryable bool, cause error) *errors.TranscriptionError {
	return &errors.TranscriptionError{
		Code:      code,
		Message:   message,
		Provider:  string(p),
		Retryable: retryable,
		Err:       cause,
	}
}

// FromStatus maps an HTTP status returned by a speech API to a TranscriptionError.
func FromStatus(p model.ProviderName, status int, message string, cause error) *errors.TranscriptionError {
	switch {
	case status == 401 || status == 403:
		e := NewError(p, CodeAuthentication, fmt.Sprintf("%s API key is invalid or missing: %s", p, message), false, cause)
		e.Suggestions = []string{"Check the API key in your environment or configuration"}
		return e
	case status == 429:
		e := NewError(p, CodeRateLimited, fmt.Sprintf("%s quota or rate limit exceeded: %s", p, message), true, cause)
		e.Suggestions = []string{"Wait a moment and try again"}
		return e
	case status == 413:
		return NewError(p, CodeFileTooLarge, "audio file is too large for the API", false, cause)
	case status == 400 || status == 415:
		e := NewError(p, CodeInvalidAudio, fmt.Sprintf("invalid audio or request: %s", message), false, cause)
		e.Suggestions = []string{"Check the file format", "Run convert-audio first"}
		return e
	case status >= 500:
		return NewError(p, CodeAPIError, fmt.Sprintf("%s API error (status %d): %s", p, status, message), true, cause)
	default:
		return NewError(p, CodeAPIError, fmt.Sprintf("%s API error (status %d): %s", p, status, message), false, cause)
	}
}

// CheckAudio verifies the file exists and is at most maxBytes (0 = no limit).
func CheckAudio(p model.ProviderName, audio model.AudioReference, maxBytes int64) error {
	if audio.Path == "" {
		return NewError(p, CodeFileNotFound, "audio reference is not resolved", false, nil)
	}
	info, err := os.Stat(audio.Path)
	if err != nil {
		return NewError(p, CodeFileNotFound, fmt.Sprintf("input file not found: %s", audio.Path), false, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return NewError(p, CodeFileTooLarge, fmt.Sprintf("%s is %d bytes, limit is %d", audio.Name, info.Size(), maxBytes), false, nil)
	}
	return nil
}
