package extraction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

// RetryingExtractor retries ServiceUnavailable failures with exponential
// backoff. A SchemaMismatch is returned at once: asking again does not fix
// the data.
type RetryingExtractor struct {
	next       Extractor
	maxRetries int
	initial    time.Duration
	logger     *zap.Logger
}

// NewRetryingExtractor decorates next. With maxRetries <= 0 it returns next.
func NewRetryingExtractor(next Extractor, maxRetries int, initial time.Duration, logger *zap.Logger) Extractor {
	if maxRetries <= 0 {
		return next
	}
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingExtractor{next: next, maxRetries: maxRetries, initial: initial, logger: logger.Named("extraction")}
}

func (r *RetryingExtractor) Extract(ctx context.Context, req Request) (*model.StructuredRecord, error) {
	op := func() (*model.StructuredRecord, error) {
		rec, err := r.next.Extract(ctx, req)
		if err != nil && !errors.Is(err, errors.ErrServiceUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return rec, err
	}

	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(r.initial),
		backoff.WithMaxElapsedTime(0),
	)
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.maxRetries)), ctx)

	return backoff.RetryNotifyWithData(op, b, func(err error, wait time.Duration) {
		r.logger.Warn("extraction failed, retrying",
			zap.String("document_type", req.DocumentType.String()),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}
