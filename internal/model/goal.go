package model

import (
	"fmt"
	"time"
)

// Goal field names as they appear in a change set.
const (
	GoalFieldName                = "name"
	GoalFieldStatus              = "status"
	GoalFieldTimeframe           = "timeframe"
	GoalFieldEndDate             = "end_date"
	GoalFieldCloseSuspendReason  = "close_suspend_reason"
	GoalFieldCloseSuspendContext = "close_suspend_context"
	GoalFieldPreviousStatus      = "previous_status"
	GoalFieldOnApprovedAR        = "on_approved_ar"
	GoalFieldGoalTemplateID      = "goal_template_id"
)

// Goal is one grant's instance of a goal. The first*/last* pairs record when
// the goal entered each status.
type Goal struct {
	ID                  int64      `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Status              string     `db:"status" json:"status"`
	Timeframe           string     `db:"timeframe" json:"timeframe"`
	EndDate             *time.Time `db:"end_date" json:"endDate"`
	CloseSuspendReason  string     `db:"close_suspend_reason" json:"closeSuspendReason"`
	CloseSuspendContext string     `db:"close_suspend_context" json:"closeSuspendContext"`
	GrantID             int64      `db:"grant_id" json:"grantId"`
	GoalTemplateID      int64      `db:"goal_template_id" json:"goalTemplateId"`
	PreviousStatus      string     `db:"previous_status" json:"previousStatus"`
	OnApprovedAR        *bool      `db:"on_approved_ar" json:"onApprovedAR"`

	FirstNotStartedAt *time.Time `db:"first_not_started_at" json:"firstNotStartedAt"`
	LastNotStartedAt  *time.Time `db:"last_not_started_at" json:"lastNotStartedAt"`
	FirstInProgressAt *time.Time `db:"first_in_progress_at" json:"firstInProgressAt"`
	LastInProgressAt  *time.Time `db:"last_in_progress_at" json:"lastInProgressAt"`
	FirstSuspendedAt  *time.Time `db:"first_suspended_at" json:"firstSuspendedAt"`
	LastSuspendedAt   *time.Time `db:"last_suspended_at" json:"lastSuspendedAt"`
	FirstClosedAt     *time.Time `db:"first_closed_at" json:"firstClosedAt"`
	LastClosedAt      *time.Time `db:"last_closed_at" json:"lastClosedAt"`

	// Written only by historical imports; the status lifecycle never sets them.
	FirstCeasedSuspendedAt *time.Time `db:"first_ceased_suspended_at" json:"firstCeasedSuspendedAt"`
	LastCeasedSuspendedAt  *time.Time `db:"last_ceased_suspended_at" json:"lastCeasedSuspendedAt"`
	FirstCompletedAt       *time.Time `db:"first_completed_at" json:"firstCompletedAt"`
	LastCompletedAt        *time.Time `db:"last_completed_at" json:"lastCompletedAt"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// GoalNumber is the display identifier, e.g. "R1-G-42".
func GoalNumber(regionID, goalID int64) string {
	return fmt.Sprintf("R%d-G-%d", regionID, goalID)
}

// IsOnApprovedAR reports whether an approved activity report references the goal.
func (g *Goal) IsOnApprovedAR() bool {
	return g.OnApprovedAR != nil && *g.OnApprovedAR
}
