package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/model"
)

var _ provider.Transcriber = (*MockTranscriber)(nil)

// MockTranscriber is a testify mock of provider.Transcriber. Name is not
// mocked; it returns ProviderName.
type MockTranscriber struct {
	mock.Mock
	ProviderName model.ProviderName
}

func NewMockTranscriber(name model.ProviderName) *MockTranscriber {
	return &MockTranscriber{ProviderName: name}
}

// Transcribe returns the configured result. The first return value may be
// a func computing the result from the arguments.
func (m *MockTranscriber) Transcribe(ctx context.Context, docType model.DocumentType, audio model.AudioReference) (*model.TranscriptionResult, error) {
	args := m.Called(ctx, docType, audio)
	var res *model.TranscriptionResult
	switch v := args.Get(0).(type) {
	case func(context.Context, model.DocumentType, model.AudioReference) *model.TranscriptionResult:
		res = v(ctx, docType, audio)
	case *model.TranscriptionResult:
		res = v
	}
	return res, args.Error(1)
}

func (m *MockTranscriber) Name() model.ProviderName {
	return m.ProviderName
}

// Returning sets up a successful transcription of text for any input. The
// result's Source is the resolved audio path.
func (m *MockTranscriber) Returning(text string) *MockTranscriber {
	m.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(
		func(_ context.Context, docType model.DocumentType, audio model.AudioReference) *model.TranscriptionResult {
			return &model.TranscriptionResult{
				Text:         text,
				Provider:     m.ProviderName,
				DocumentType: docType,
				Source:       audio.Path,
			}
		},
		nil,
	)
	return m
}
