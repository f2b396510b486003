// Package lifecycle holds the goal status enumeration and the rules that
// stamp status timestamps on a goal.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/ttahub/ttahub/internal/model"
)

type Status string

const (
	StatusUnset      Status = ""
	StatusDraft      Status = "Draft"
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusSuspended  Status = "Suspended"
	StatusClosed     Status = "Closed"
)

var ErrInvalidStatus = errors.New("invalid goal status")

// Statuses lists every stored value in display order.
var Statuses = []Status{
	StatusDraft,
	StatusNotStarted,
	StatusInProgress,
	StatusSuspended,
	StatusClosed,
}

// labels maps stored values to what the UI shows. Only values that differ are listed.
var labels = map[Status]string{
	StatusSuspended: "Ceased/Suspended",
}

// ParseStatus accepts only stored values. Display labels such as
// "Ceased/Suspended" and the retired "Completed" are rejected.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if status == StatusUnset {
		return status, nil
	}
	for _, known := range Statuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// IsTerminal reports whether the status is one a goal is closed or suspended into.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusSuspended
}

// Stamp records entry into status on the goal. The first* timestamp for a
// status is write-once; the last* timestamp moves on every entry.
func Stamp(goal *model.Goal, status string, now time.Time) error {
	parsed, err := ParseStatus(status)
	if err != nil {
		return err
	}

	first, last := timestamps(goal, parsed)
	if first == nil {
		return nil
	}

	if *first == nil {
		t := now
		*first = &t
	}
	t := now
	*last = &t
	return nil
}

func timestamps(goal *model.Goal, status Status) (first, last **time.Time) {
	switch status {
	case StatusNotStarted:
		return &goal.FirstNotStartedAt, &goal.LastNotStartedAt
	case StatusInProgress:
		return &goal.FirstInProgressAt, &goal.LastInProgressAt
	case StatusSuspended:
		return &goal.FirstSuspendedAt, &goal.LastSuspendedAt
	case StatusClosed:
		return &goal.FirstClosedAt, &goal.LastClosedAt
	default:
		return nil, nil
	}
}
