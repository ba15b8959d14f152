package model

import "time"

// RunEntry is the persisted summary of one orchestrator run.
type RunEntry struct {
	RunID        string        `json:"run_id"`
	Operation    string        `json:"operation"`
	DocumentType DocumentType  `json:"document_type,omitempty"`
	Input        string        `json:"input"`
	Provider     ProviderName  `json:"provider,omitempty"`
	State        string        `json:"state"`
	Outcome      string        `json:"outcome"`
	Stage        string        `json:"stage,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Failed reports whether the run ended with an error.
func (e RunEntry) Failed() bool {
	return e.ErrorMessage != ""
}
