// Package apperr holds the error values shared across the workspace layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrAlreadyExists        = errors.New("already exists")
	ErrHasChildren          = errors.New("plot node has children; delete children first")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrStaleResponse        = errors.New("stale response discarded")
	ErrInvalidMove          = errors.New("cannot move a node under itself or its descendants")
)

// ValidationError reports a rejected create/update input. It is shown to the
// writer as an inline message, never treated as a failure of the process.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError for op. A nil err yields nil.
func Invalid(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
