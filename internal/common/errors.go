// Package common provides shared utilities and types used across the
// application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrNotFound indicates an operation on an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry indicates an insert that collided with an
	// existing row (e.g. an import hash already present).
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrStoreUnavailable indicates the backing store could not be
	// reached; the failed write is not applied to local state.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError rejects an operation before any state mutation. A
// rejected operation is never partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation failure for a named field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an update or delete of an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found failure for an entity id.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransientIOError wraps a transient persistence failure. Callers may
// retry; local optimistic state remains unsynced until a write succeeds.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStoreUnavailable, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

// NewTransientIOError wraps err as a retryable persistence failure.
func NewTransientIOError(op string, err error) error {
	return &TransientIOError{Op: op, Err: err}
}

// AuthorizationError reports an attempt to act on another user's data.
// Always fatal, never retried.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized: %s", e.Reason)
}

// IsRetryable determines if an error should trigger a retry. Only
// transient I/O failures qualify; validation, not-found, and
// authorization failures are final.
func IsRetryable(err error) bool {
	var transient *TransientIOError
	return errors.As(err, &transient)
}
