package errors

import (
	"net/http"

	apperrors "vocal-assistant/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBadRequest ErrorKind = "bad_request"
	KindNotFound   ErrorKind = "not_found"
	KindBadGateway ErrorKind = "bad_gateway"
	KindInternal   ErrorKind = "internal"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// FromError maps a pipeline error onto an API error. An *APIError anywhere
// in the chain is returned as is.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr
	}

	msg := err.Error()
	var (
		extraction    *apperrors.ExtractionError
		transcription *apperrors.TranscriptionError
		tmpl          *apperrors.TemplateError
	)
	switch {
	case apperrors.As(err, &extraction) && extraction.Kind == apperrors.SchemaMismatch:
		return &APIError{Kind: KindValidation, Message: msg, Details: extraction.Fields}
	case apperrors.Is(err, apperrors.ErrMissingAPIKey), apperrors.Is(err, apperrors.ErrInvalidConfig):
		return &APIError{Kind: KindInternal, Message: msg}
	case apperrors.Is(err, apperrors.ErrFileNotFound):
		return &APIError{Kind: KindNotFound, Message: msg}
	case apperrors.Is(err, apperrors.ErrUnknownDocumentType), apperrors.Is(err, apperrors.ErrProviderNotFound):
		return &APIError{Kind: KindBadRequest, Message: msg}
	case apperrors.Is(err, apperrors.ErrServiceUnavailable), apperrors.As(err, &transcription):
		return &APIError{Kind: KindBadGateway, Message: msg}
	case apperrors.As(err, &tmpl):
		return &APIError{Kind: KindValidation, Message: msg}
	default:
		return &APIError{Kind: KindInternal, Message: msg}
	}
}
