// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger, the classifier and the reconciliation engine.
var (
	// Storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWriteConflict      = errors.New("write conflict")
	ErrNotFound           = errors.New("not found")

	// Edit validation errors.
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidValue = errors.New("invalid value")

	// Classifier errors.
	ErrModelNotTrained    = errors.New("model not trained")
	ErrClassifierContract = errors.New("classifier contract violation")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
