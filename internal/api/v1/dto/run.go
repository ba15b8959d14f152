package dto

import (
	"time"

	apierrors "vocal-assistant/internal/api/errors"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/pipeline"
)

// RunRequest starts one orchestrator operation. Input is the audio name,
// transcript or record file depending on the operation; convert-audio takes
// an optional Subfolder instead.
type RunRequest struct {
	Operation    string `json:"operation" binding:"required,oneof=convert-audio speech_to_text text_extraction pdf_generation full_processing"`
	DocumentType string `json:"document_type" binding:"required_unless=Operation convert-audio"`
	Input        string `json:"input" binding:"required_unless=Operation convert-audio"`
	Provider     string `json:"provider" binding:"omitempty,oneof=openai google"`
	Subfolder    string `json:"subfolder"`
	SkipRender   bool   `json:"skip_render"`
}

type RunResponse struct {
	RunID          string                   `json:"run_id"`
	Operation      string                   `json:"operation"`
	DocumentType   string                   `json:"document_type,omitempty"`
	Input          string                   `json:"input"`
	Provider       string                   `json:"provider,omitempty"`
	State          string                   `json:"state"`
	Outcome        string                   `json:"outcome"`
	Stage          string                   `json:"stage,omitempty"`
	Conversions    []model.ConversionRecord `json:"conversions,omitempty"`
	Failures       []string                 `json:"conversion_failures,omitempty"`
	Skipped        []string                 `json:"skipped,omitempty"`
	Transcript     string                   `json:"transcript,omitempty"`
	TranscriptPath string                   `json:"transcript_path,omitempty"`
	Fields         map[string]any           `json:"fields,omitempty"`
	RecordPath     string                   `json:"record_path,omitempty"`
	Report         *model.ReportArtifact    `json:"report,omitempty"`
	Error          *apierrors.APIError      `json:"error,omitempty"`
	StartedAt      time.Time                `json:"started_at"`
	DurationMS     int64                    `json:"duration_ms"`
}

// NewRunResponse flattens rep; apiErr is attached when the run failed.
func NewRunResponse(rep *pipeline.RunReport, apiErr *apierrors.APIError) RunResponse {
	resp := RunResponse{
		RunID:          rep.RunID,
		Operation:      string(rep.Operation),
		DocumentType:   rep.DocumentType.String(),
		Input:          rep.Input,
		Provider:       string(rep.Provider),
		State:          rep.State.String(),
		Outcome:        string(rep.Outcome),
		Conversions:    rep.Conversions,
		Skipped:        rep.Skipped,
		TranscriptPath: rep.TranscriptPath,
		RecordPath:     rep.RecordPath,
		Error:          apiErr,
		StartedAt:      rep.StartedAt,
		DurationMS:     rep.Duration.Milliseconds(),
	}
	if rep.Outcome == pipeline.OutcomeFailed {
		resp.Stage = rep.Stage.String()
	}
	for _, f := range rep.ConversionFailures {
		resp.Failures = append(resp.Failures, f.Error())
	}
	if rep.Transcription != nil {
		resp.Transcript = rep.Transcription.Text
	}
	if rep.Record != nil {
		resp.Fields = rep.Record.Fields
	}
	if rep.Artifact != nil {
		report := *rep.Artifact
		report.Record = nil
		resp.Report = &report
	}
	return resp
}

// RunsResponse lists stored runs, newest first.
type RunsResponse struct {
	Runs []model.RunEntry `json:"runs"`
}

type FieldResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type DocumentResponse struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Subfolder string          `json:"subfolder"`
	Language  string          `json:"language,omitempty"`
	Fields    []FieldResponse `json:"fields"`
}

func NewDocumentResponse(def *document.Definition) DocumentResponse {
	resp := DocumentResponse{
		Type:      def.Type.String(),
		Title:     def.Title,
		Subfolder: def.Subfolder,
		Language:  def.Language,
	}
	for _, f := range def.Schema.Fields {
		resp.Fields = append(resp.Fields, FieldResponse{Name: f.Name, Type: string(f.Type), Required: f.Required})
	}
	return resp
}
