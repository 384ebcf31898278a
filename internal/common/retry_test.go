package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return NewTransientIOError("write", errors.New("database is locked"))
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return NewTransientIOError("write", errors.New("database is locked"))
	}, fastRetry())

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_DoesNotRetryValidationErrors(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return NewValidationError("amount", "must be positive")
	}, fastRetry())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestWithRetry_DoesNotRetryNotFound(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return NewNotFoundError("goal", "g-1")
	}, fastRetry())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return NewTransientIOError("write", errors.New("database is locked"))
	}, fastRetry())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTransientIOError("write", errors.New("busy"))))
	assert.False(t, IsRetryable(NewValidationError("field", "bad")))
	assert.False(t, IsRetryable(NewNotFoundError("bill", "b-1")))
	assert.False(t, IsRetryable(nil))
}
