// Package engine implements the ledger's cyclical-obligation logic:
// installment splitting, period aggregation, invoice cycles, budget
// tracking, goal progress, and bill/receivable scheduling. Everything is
// a synchronous computation over the storage snapshot; derived values
// (invoices, budget usage) are recomputed on every read, never cached.
package engine

import (
	"context"
	"time"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/service"
)

// Engine orchestrates the obligation calculations over a storage backend.
// It never branches on which Storage implementation it was given.
type Engine struct {
	storage service.Storage
	now     func() time.Time
	retry   service.RetryOptions
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now". Tests use this to pin
// time-window math to fixed instants.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRetryOptions overrides the backoff applied to storage writes.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(e *Engine) {
		e.retry = opts
	}
}

// New creates an engine over the given storage.
func New(storage service.Storage, opts ...Option) *Engine {
	e := &Engine{
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// write runs a storage mutation, retrying transient failures with
// backoff. Validation and not-found failures pass through on the first
// attempt.
func (e *Engine) write(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, e.retry)
}
