package lifecycle

import (
	"fmt"
)

// Objective statuses. Objectives keep no status timestamps.
const (
	ObjectiveNotStarted = "Not Started"
	ObjectiveInProgress = "In Progress"
	ObjectiveSuspended  = "Suspended"
	ObjectiveComplete   = "Complete"
)

var objectiveStatuses = []string{
	"",
	ObjectiveNotStarted,
	ObjectiveInProgress,
	ObjectiveSuspended,
	ObjectiveComplete,
}

func ValidateObjectiveStatus(s string) error {
	for _, known := range objectiveStatuses {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: objective status %q", ErrInvalidStatus, s)
}
