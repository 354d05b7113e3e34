package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals invalid input rejected before any I/O.
	ErrValidation = errors.New("validation failed")
	// ErrNoOverage signals a payment attempt with nothing owed.
	ErrNoOverage = errors.New("no overage to charge")
	// ErrInvalidCredential signals a malformed provider secret.
	ErrInvalidCredential = errors.New("invalid provider credential")
	// ErrCredentialNotConfigured signals that no provider secret is stored or configured.
	ErrCredentialNotConfigured = errors.New("provider credential not configured")
	// ErrOperationInProgress signals that the same operation is already in flight.
	ErrOperationInProgress = errors.New("operation already in progress")
	// ErrInvalidTransition signals a disallowed charge status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrProviderUnavailable signals a payment provider failure.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrAlreadyExists signals a write to an immutable record that is already stored.
	ErrAlreadyExists = errors.New("already exists")
)

// FieldError is a validation failure for a single input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// NewFieldError creates a validation error for field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
