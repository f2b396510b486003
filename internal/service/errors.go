package service

import (
	"errors"
	"fmt"
)

var (
	ErrNameImmutable    = errors.New("name change not allowed for goals on approved activity reports")
	ErrTitleImmutable   = errors.New("title change not allowed for objectives on approved activity reports")
	ErrNothingToRestore = errors.New("goal has no previous status to restore")
	ErrReasonRequired   = errors.New("closing or suspending a goal needs a reason, change its status instead")
	ErrInvalidInput     = errors.New("invalid input")
)

// ValidationError names the field that failed and why. It unwraps to the
// sentinel describing the failure so callers can match with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}
