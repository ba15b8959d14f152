package model

// TranscriptionResult is the text produced for one audio input. Provider is
// metadata only.
type TranscriptionResult struct {
	Text         string       `json:"text"`
	Provider     ProviderName `json:"provider"`
	DocumentType DocumentType `json:"document_type"`
	Language     string       `json:"language,omitempty"`
	Confidence   float64      `json:"confidence,omitempty"`
	Model        string       `json:"model,omitempty"`
	Source       string       `json:"source"`
}
