package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

const (
	GoalSortRecent = "recent"
	GoalSortName   = "name"
	GoalSortStatus = "status"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

const goalColumns = `id, name, status, timeframe, end_date, close_suspend_reason, close_suspend_context,
	grant_id, goal_template_id, previous_status, on_approved_ar,
	first_not_started_at, last_not_started_at, first_in_progress_at, last_in_progress_at,
	first_suspended_at, last_suspended_at, first_closed_at, last_closed_at,
	first_ceased_suspended_at, last_ceased_suspended_at, first_completed_at, last_completed_at,
	created_at, updated_at`

type GoalRepository interface {
	WithTx(tx *sqlx.Tx) GoalRepository
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, id int64) (*model.Goal, error)
	ByGrant(ctx context.Context, grantID int64, sortBy string) ([]*model.Goal, error)
	ByRegion(ctx context.Context, regionID int64) ([]*model.Goal, error)
	ByTemplate(ctx context.Context, templateID int64) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	SetOnApprovedAR(ctx context.Context, ids []int64, onApprovedAR bool, updatedAt time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type goalRepository struct {
	db Querier
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) WithTx(tx *sqlx.Tx) GoalRepository {
	return &goalRepository{db: tx}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (name, status, timeframe, end_date, close_suspend_reason, close_suspend_context,
	              grant_id, goal_template_id, previous_status, on_approved_ar,
	              first_not_started_at, last_not_started_at, first_in_progress_at, last_in_progress_at,
	              first_suspended_at, last_suspended_at, first_closed_at, last_closed_at,
	              created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	          RETURNING id`

	return sqlx.GetContext(ctx, r.db, &goal.ID, query,
		goal.Name,
		goal.Status,
		goal.Timeframe,
		goal.EndDate,
		goal.CloseSuspendReason,
		goal.CloseSuspendContext,
		goal.GrantID,
		goal.GoalTemplateID,
		goal.PreviousStatus,
		goal.IsOnApprovedAR(),
		goal.FirstNotStartedAt,
		goal.LastNotStartedAt,
		goal.FirstInProgressAt,
		goal.LastInProgressAt,
		goal.FirstSuspendedAt,
		goal.LastSuspendedAt,
		goal.FirstClosedAt,
		goal.LastClosedAt,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
}

func (r *goalRepository) ByID(ctx context.Context, id int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, goal, query, id)
	if isNoRows(err) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) ByGrant(ctx context.Context, grantID int64, sortBy string) ([]*model.Goal, error) {
	var goals []*model.Goal

	// Validate and build ORDER BY clause
	var orderBy string
	switch sortBy {
	case GoalSortName:
		orderBy = "ORDER BY LOWER(name) ASC, id ASC"
	case GoalSortStatus:
		orderBy = "ORDER BY status ASC, updated_at DESC"
	default: // GoalSortRecent or empty
		orderBy = "ORDER BY updated_at DESC, id DESC"
	}

	query := `SELECT ` + goalColumns + ` FROM goals WHERE grant_id = $1 ` + orderBy

	err := sqlx.SelectContext(ctx, r.db, &goals, query, grantID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) ByRegion(ctx context.Context, regionID int64) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT ` + goalColumns + ` FROM goals
	          WHERE grant_id IN (SELECT id FROM grants WHERE region_id = $1)
	          ORDER BY id ASC`

	err := sqlx.SelectContext(ctx, r.db, &goals, query, regionID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) ByTemplate(ctx context.Context, templateID int64) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT ` + goalColumns + ` FROM goals WHERE goal_template_id = $1 ORDER BY id ASC`

	err := sqlx.SelectContext(ctx, r.db, &goals, query, templateID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// Update writes every mutable column. grant_id is never updated.
func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE goals
	          SET name = $1, status = $2, timeframe = $3, end_date = $4,
	              close_suspend_reason = $5, close_suspend_context = $6,
	              goal_template_id = $7, previous_status = $8, on_approved_ar = $9,
	              first_not_started_at = $10, last_not_started_at = $11,
	              first_in_progress_at = $12, last_in_progress_at = $13,
	              first_suspended_at = $14, last_suspended_at = $15,
	              first_closed_at = $16, last_closed_at = $17,
	              updated_at = $18
	          WHERE id = $19`

	result, err := r.db.ExecContext(ctx, query,
		goal.Name,
		goal.Status,
		goal.Timeframe,
		goal.EndDate,
		goal.CloseSuspendReason,
		goal.CloseSuspendContext,
		goal.GoalTemplateID,
		goal.PreviousStatus,
		goal.IsOnApprovedAR(),
		goal.FirstNotStartedAt,
		goal.LastNotStartedAt,
		goal.FirstInProgressAt,
		goal.LastInProgressAt,
		goal.FirstSuspendedAt,
		goal.LastSuspendedAt,
		goal.FirstClosedAt,
		goal.LastClosedAt,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		return err
	}

	return expectRow(result, ErrGoalNotFound)
}

func (r *goalRepository) SetOnApprovedAR(ctx context.Context, ids []int64, onApprovedAR bool, updatedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE goals SET on_approved_ar = ?, updated_at = ? WHERE id IN (?)`, onApprovedAR, updatedAt, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *goalRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM goals WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectRow(result, ErrGoalNotFound)
}
