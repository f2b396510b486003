package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

var (
	ErrGoalTemplateNotFound = errors.New("goal template not found")
	// ErrStaleTemplate is returned by a guarded rename when the template was
	// renamed more recently than the caller's change.
	ErrStaleTemplate = errors.New("template changed by a newer update")
)

const goalTemplateColumns = `id, hash, template_name, region_id, creation_method, last_used, created_at, updated_at`

type GoalTemplateRepository interface {
	WithTx(tx *sqlx.Tx) GoalTemplateRepository
	// FindOrCreate returns the template for (hash, regionID), inserting
	// defaults when none exists. At most one row exists per key.
	FindOrCreate(ctx context.Context, hash string, regionID int64, defaults *model.GoalTemplate) (*model.GoalTemplate, bool, error)
	ByID(ctx context.Context, id int64) (*model.GoalTemplate, error)
	Templates(ctx context.Context, regionID int64) ([]*model.GoalTemplate, error)
	// UpdateName sets template_name. When notAfter is non-nil the write only
	// applies if the row was last updated at or before notAfter.
	UpdateName(ctx context.Context, id int64, name string, updatedAt time.Time, notAfter *time.Time) error
}

type goalTemplateRepository struct {
	db Querier
}

func NewGoalTemplateRepository(db *sqlx.DB) GoalTemplateRepository {
	return &goalTemplateRepository{db: db}
}

func (r *goalTemplateRepository) WithTx(tx *sqlx.Tx) GoalTemplateRepository {
	return &goalTemplateRepository{db: tx}
}

func (r *goalTemplateRepository) FindOrCreate(ctx context.Context, hash string, regionID int64, defaults *model.GoalTemplate) (*model.GoalTemplate, bool, error) {
	// A concurrent insert of the same key makes ours a no-op; the select
	// below then reads the winner's row.
	insert := `INSERT INTO goal_templates (hash, template_name, region_id, creation_method, last_used, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           ON CONFLICT (hash, region_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, insert,
		hash,
		defaults.TemplateName,
		regionID,
		defaults.CreationMethod,
		defaults.LastUsed,
		defaults.CreatedAt,
		defaults.UpdatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	template := &model.GoalTemplate{}
	query := `SELECT ` + goalTemplateColumns + ` FROM goal_templates WHERE hash = $1 AND region_id = $2`
	err = sqlx.GetContext(ctx, r.db, template, query, hash, regionID)
	if err != nil {
		return nil, false, err
	}

	return template, inserted > 0, nil
}

func (r *goalTemplateRepository) ByID(ctx context.Context, id int64) (*model.GoalTemplate, error) {
	template := &model.GoalTemplate{}
	query := `SELECT ` + goalTemplateColumns + ` FROM goal_templates WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, template, query, id)
	if isNoRows(err) {
		return nil, ErrGoalTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	return template, nil
}

func (r *goalTemplateRepository) Templates(ctx context.Context, regionID int64) ([]*model.GoalTemplate, error) {
	var templates []*model.GoalTemplate
	query := `SELECT ` + goalTemplateColumns + ` FROM goal_templates WHERE region_id = $1 ORDER BY LOWER(template_name) ASC, id ASC`

	err := sqlx.SelectContext(ctx, r.db, &templates, query, regionID)
	if err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *goalTemplateRepository) UpdateName(ctx context.Context, id int64, name string, updatedAt time.Time, notAfter *time.Time) error {
	if notAfter == nil {
		query := `UPDATE goal_templates SET template_name = $1, updated_at = $2 WHERE id = $3`
		result, err := r.db.ExecContext(ctx, query, name, updatedAt, id)
		if err != nil {
			return err
		}
		return expectRow(result, ErrGoalTemplateNotFound)
	}

	current, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if current.UpdatedAt.After(*notAfter) {
		return ErrStaleTemplate
	}

	query := `UPDATE goal_templates SET template_name = $1, updated_at = $2 WHERE id = $3 AND updated_at = $4`
	result, err := r.db.ExecContext(ctx, query, name, updatedAt, id, current.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(result, ErrStaleTemplate)
}
