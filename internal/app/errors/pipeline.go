package errors

import (
	"fmt"
	"strings"
)

// ConversionError is a per-file audio conversion failure. It never aborts a batch.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
	Err         error    `json:"-"`
}

func (e *TranscriptionError) Error() string {
	msg := fmt.Sprintf("%s transcription failed [%s]: %s", e.Provider, e.Code, e.Message)
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// ExtractionKind separates service failures from bad data.
type ExtractionKind int

const (
	ServiceUnavailable ExtractionKind = iota + 1
	SchemaMismatch
)

func (k ExtractionKind) String() string {
	switch k {
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case SchemaMismatch:
		return "SchemaMismatch"
	default:
		return "Unknown"
	}
}

// ExtractionError is returned by the extraction client. Fields is set for
// SchemaMismatch, StatusCode for HTTP failures.
type ExtractionError struct {
	Kind         ExtractionKind
	DocumentType string
	Fields       []string
	StatusCode   int
	Err          error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "extraction %s (%s)", e.Kind, e.DocumentType)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " fields [%s]", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches ErrServiceUnavailable and ErrSchemaMismatch by kind.
func (e *ExtractionError) Is(target error) bool {
	switch target {
	case ErrServiceUnavailable:
		return e.Kind == ServiceUnavailable
	case ErrSchemaMismatch:
		return e.Kind == SchemaMismatch
	}
	return false
}

// TemplateError signals drift between a document schema and its report template.
type TemplateError struct {
	DocumentType string
	Placeholders []string
	Err          error
}

func (e *TemplateError) Error() string {
	msg := fmt.Sprintf("template %s", e.DocumentType)
	if len(e.Placeholders) > 0 {
		msg += fmt.Sprintf(": no field for placeholders [%s]", strings.Join(e.Placeholders, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// StageError carries the pipeline context of a failure.
type StageError struct {
	Stage    string
	Input    string
	Provider string
	Err      error
}

func (e *StageError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s stage failed for %s (provider %s): %v", e.Stage, e.Input, e.Provider, e.Err)
	}
	return fmt.Sprintf("%s stage failed for %s: %v", e.Stage, e.Input, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
