package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/souqly/backend/internal/domain/shared"
)

// retryable reports whether an error is a transient infrastructure failure.
// Validation, security, and business-rule failures are returned to the
// caller immediately and never retried.
func retryable(err error) bool {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code == shared.ErrPersistence.Code || de.Code == shared.ErrTimeout.Code
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// withRetry runs fn up to maxAttempts times with linear backoff between
// attempts. Only transient infrastructure errors are retried.
func withRetry(ctx context.Context, maxAttempts int, backoff time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		// Linear backoff: attempt n waits n * backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * backoff):
		}
	}
	return err
}
