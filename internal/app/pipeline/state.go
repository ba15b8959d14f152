package pipeline

import (
	"time"

	"vocal-assistant/internal/app/model"
)

// State is where a run is. Runs only move forward; Failed is terminal and
// reachable from any state.
type State int

const (
	Idle State = iota
	Converting
	Transcribing
	Extracting
	Rendering
	Done
	Failed
)

var stateNames = [...]string{"Idle", "Converting", "Transcribing", "Extracting", "Rendering", "Done", "Failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Outcome is the overall result of a finished run.
type Outcome string

const (
	Succeeded       Outcome = "Succeeded"
	PartiallyFailed Outcome = "PartiallyFailed"
	OutcomeFailed   Outcome = "Failed"
)

// Operation names the entry point a run started from. The values double as
// CLI command names.
type Operation string

const (
	OpConvertAudio   Operation = "convert-audio"
	OpSpeechToText   Operation = "speech_to_text"
	OpTextExtraction Operation = "text_extraction"
	OpPDFGeneration  Operation = "pdf_generation"
	OpFullProcessing Operation = "full_processing"
)

// RunReport is everything a run produced. Fields of stages that did not run
// are zero.
type RunReport struct {
	RunID        string
	Operation    Operation
	DocumentType model.DocumentType
	Input        string
	Provider     model.ProviderName

	State   State
	Outcome Outcome
	// Stage is the state the run failed in; Idle when it succeeded.
	Stage State

	Conversions        []model.ConversionRecord
	ConversionFailures []error
	Skipped            []string

	Transcription  *model.TranscriptionResult
	TranscriptPath string
	Record         *model.StructuredRecord
	RecordPath     string
	Artifact       *model.ReportArtifact

	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Entry is the history row of the report.
func (r *RunReport) Entry() model.RunEntry {
	e := model.RunEntry{
		RunID:        r.RunID,
		Operation:    string(r.Operation),
		DocumentType: r.DocumentType,
		Input:        r.Input,
		Provider:     r.Provider,
		State:        r.State.String(),
		Outcome:      string(r.Outcome),
		StartedAt:    r.StartedAt,
		Duration:     r.Duration,
	}
	if r.Err != nil {
		e.Stage = r.Stage.String()
		e.ErrorMessage = r.Err.Error()
	}
	return e
}
