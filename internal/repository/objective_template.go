package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

var (
	ErrObjectiveTemplateNotFound = errors.New("objective template not found")
)

const objectiveTemplateColumns = `id, hash, template_title, region_id, creation_method, last_used, created_at, updated_at`

type ObjectiveTemplateRepository interface {
	WithTx(tx *sqlx.Tx) ObjectiveTemplateRepository
	FindOrCreate(ctx context.Context, hash string, regionID int64, defaults *model.ObjectiveTemplate) (*model.ObjectiveTemplate, bool, error)
	ByID(ctx context.Context, id int64) (*model.ObjectiveTemplate, error)
	UpdateTitle(ctx context.Context, id int64, title string, updatedAt time.Time) error
}

type objectiveTemplateRepository struct {
	db Querier
}

func NewObjectiveTemplateRepository(db *sqlx.DB) ObjectiveTemplateRepository {
	return &objectiveTemplateRepository{db: db}
}

func (r *objectiveTemplateRepository) WithTx(tx *sqlx.Tx) ObjectiveTemplateRepository {
	return &objectiveTemplateRepository{db: tx}
}

func (r *objectiveTemplateRepository) FindOrCreate(ctx context.Context, hash string, regionID int64, defaults *model.ObjectiveTemplate) (*model.ObjectiveTemplate, bool, error) {
	insert := `INSERT INTO objective_templates (hash, template_title, region_id, creation_method, last_used, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           ON CONFLICT (hash, region_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, insert,
		hash,
		defaults.TemplateTitle,
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

	template := &model.ObjectiveTemplate{}
	query := `SELECT ` + objectiveTemplateColumns + ` FROM objective_templates WHERE hash = $1 AND region_id = $2`
	err = sqlx.GetContext(ctx, r.db, template, query, hash, regionID)
	if err != nil {
		return nil, false, err
	}

	return template, inserted > 0, nil
}

func (r *objectiveTemplateRepository) ByID(ctx context.Context, id int64) (*model.ObjectiveTemplate, error) {
	template := &model.ObjectiveTemplate{}
	query := `SELECT ` + objectiveTemplateColumns + ` FROM objective_templates WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, template, query, id)
	if isNoRows(err) {
		return nil, ErrObjectiveTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	return template, nil
}

func (r *objectiveTemplateRepository) UpdateTitle(ctx context.Context, id int64, title string, updatedAt time.Time) error {
	query := `UPDATE objective_templates SET template_title = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, title, updatedAt, id)
	if err != nil {
		return err
	}

	return expectRow(result, ErrObjectiveTemplateNotFound)
}
