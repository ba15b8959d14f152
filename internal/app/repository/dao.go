// Package repository keeps the history of pipeline runs in a SQL database.
package repository

import (
	"context"

	"vocal-assistant/internal/app/model"
)

// RunDAO persists run summaries.
type RunDAO interface {
	Close() error

	RecordRun(ctx context.Context, entry model.RunEntry) error

	// ListRuns returns the most recent runs first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]model.RunEntry, error)
}

// NopDAO discards everything. It stands in when history is disabled or the
// database cannot be opened.
type NopDAO struct{}

func (NopDAO) Close() error { return nil }

func (NopDAO) RecordRun(context.Context, model.RunEntry) error { return nil }

func (NopDAO) ListRuns(context.Context, int) ([]model.RunEntry, error) { return nil, nil }
