package lifecycle

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidReason = errors.New("invalid close/suspend reason")

var CloseReasons = []string{
	"Duplicate goal",
	"Recipient request",
	"TTA complete",
}

var SuspendReasons = []string{
	"Key staff turnover / vacancies",
	"Recipient is not responding",
	"Recipient request",
	"Regional Office request",
}

// ValidateReason checks that reason is allowed when moving a goal into status.
// Non-terminal statuses take no reason.
func ValidateReason(status Status, reason string) error {
	var allowed []string
	switch status {
	case StatusClosed:
		allowed = CloseReasons
	case StatusSuspended:
		allowed = SuspendReasons
	default:
		return nil
	}

	if !slices.Contains(allowed, reason) {
		return fmt.Errorf("%w for %s: %q", ErrInvalidReason, status, reason)
	}
	return nil
}
