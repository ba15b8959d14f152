package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vocal-assistant/internal/app/extraction"
	"vocal-assistant/internal/app/model"
)

var _ extraction.Extractor = (*MockExtractor)(nil)

// MockExtractor is a testify mock of extraction.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, req extraction.Request) (*model.StructuredRecord, error) {
	args := m.Called(ctx, req)
	var rec *model.StructuredRecord
	switch v := args.Get(0).(type) {
	case func(context.Context, extraction.Request) *model.StructuredRecord:
		rec = v(ctx, req)
	case *model.StructuredRecord:
		rec = v
	}
	return rec, args.Error(1)
}

// Returning answers every request with a copy of fields.
func (m *MockExtractor) Returning(fields map[string]any) *MockExtractor {
	m.On("Extract", mock.Anything, mock.Anything).Return(
		func(_ context.Context, req extraction.Request) *model.StructuredRecord {
			copied := make(map[string]any, len(fields))
			for k, v := range fields {
				copied[k] = v
			}
			return &model.StructuredRecord{DocumentType: req.DocumentType, Source: req.Source, Fields: copied}
		},
		nil,
	)
	return m
}
