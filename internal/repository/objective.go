package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

var (
	ErrObjectiveNotFound = errors.New("objective not found")
)

const objectiveColumns = `id, goal_id, title, status, objective_template_id, on_approved_ar, created_at, updated_at`

type ObjectiveRepository interface {
	WithTx(tx *sqlx.Tx) ObjectiveRepository
	Create(ctx context.Context, objective *model.Objective) error
	ByID(ctx context.Context, id int64) (*model.Objective, error)
	ByGoal(ctx context.Context, goalID int64) ([]*model.Objective, error)
	Update(ctx context.Context, objective *model.Objective) error
	Delete(ctx context.Context, id int64) error
}

type objectiveRepository struct {
	db Querier
}

func NewObjectiveRepository(db *sqlx.DB) ObjectiveRepository {
	return &objectiveRepository{db: db}
}

func (r *objectiveRepository) WithTx(tx *sqlx.Tx) ObjectiveRepository {
	return &objectiveRepository{db: tx}
}

func (r *objectiveRepository) Create(ctx context.Context, objective *model.Objective) error {
	query := `INSERT INTO objectives (goal_id, title, status, objective_template_id, on_approved_ar, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	return sqlx.GetContext(ctx, r.db, &objective.ID, query,
		objective.GoalID,
		objective.Title,
		objective.Status,
		objective.ObjectiveTemplateID,
		objective.IsOnApprovedAR(),
		objective.CreatedAt,
		objective.UpdatedAt,
	)
}

func (r *objectiveRepository) ByID(ctx context.Context, id int64) (*model.Objective, error) {
	objective := &model.Objective{}
	query := `SELECT ` + objectiveColumns + ` FROM objectives WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, objective, query, id)
	if isNoRows(err) {
		return nil, ErrObjectiveNotFound
	}
	if err != nil {
		return nil, err
	}

	return objective, nil
}

func (r *objectiveRepository) ByGoal(ctx context.Context, goalID int64) ([]*model.Objective, error) {
	var objectives []*model.Objective
	query := `SELECT ` + objectiveColumns + ` FROM objectives WHERE goal_id = $1 ORDER BY id ASC`

	err := sqlx.SelectContext(ctx, r.db, &objectives, query, goalID)
	if err != nil {
		return nil, err
	}

	return objectives, nil
}

func (r *objectiveRepository) Update(ctx context.Context, objective *model.Objective) error {
	query := `UPDATE objectives
	          SET title = $1, status = $2, objective_template_id = $3, on_approved_ar = $4, updated_at = $5
	          WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		objective.Title,
		objective.Status,
		objective.ObjectiveTemplateID,
		objective.IsOnApprovedAR(),
		objective.UpdatedAt,
		objective.ID,
	)
	if err != nil {
		return err
	}

	return expectRow(result, ErrObjectiveNotFound)
}

func (r *objectiveRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM objectives WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectRow(result, ErrObjectiveNotFound)
}
