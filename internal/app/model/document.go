package model

// DocumentType selects the transcription hints, extraction schema and report
// template used for a run.
type DocumentType string

const (
	DocumentCRConsultation DocumentType = "cr_consultation"
)

func (d DocumentType) String() string {
	return string(d)
}

// ProviderName identifies a transcription backend.
type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderGoogle ProviderName = "google"
)

func (p ProviderName) String() string {
	return string(p)
}
