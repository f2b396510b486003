package model

import (
	"time"
)

const (
	ObjectiveFieldTitle               = "title"
	ObjectiveFieldStatus              = "status"
	ObjectiveFieldOnApprovedAR        = "on_approved_ar"
	ObjectiveFieldObjectiveTemplateID = "objective_template_id"
)

type Objective struct {
	ID                  int64     `db:"id" json:"id"`
	GoalID              int64     `db:"goal_id" json:"goalId"`
	Title               string    `db:"title" json:"title"`
	Status              string    `db:"status" json:"status"`
	ObjectiveTemplateID int64     `db:"objective_template_id" json:"objectiveTemplateId"`
	OnApprovedAR        *bool     `db:"on_approved_ar" json:"onApprovedAR"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

func (o *Objective) IsOnApprovedAR() bool {
	return o.OnApprovedAR != nil && *o.OnApprovedAR
}
