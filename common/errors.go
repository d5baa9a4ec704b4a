// Package common provides shared constants, types, and utilities
// used across the Display Panel application.
package common

import "errors"

// Sentinel errors for display operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Command errors.
	ErrExecutionFailed = errors.New("command could not be executed")
	ErrNonZeroExit     = errors.New("command exited with non-zero status")

	// Probe and match errors.
	ErrMatchNotFound = errors.New("value not found in supported options")
	ErrInvalidMode   = errors.New("invalid display mode")
	ErrInvalidScale  = errors.New("invalid scale option")

	// Controller errors.
	ErrApplyFailed    = errors.New("failed to apply display settings")
	ErrInvalidIndex   = errors.New("selection index out of range")
	ErrNotInitialized = errors.New("display controller not initialized")
	ErrBusy           = errors.New("another display operation is in progress")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
