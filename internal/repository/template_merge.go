package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// TemplateTable describes a template table and the rows that point at it.
type TemplateTable struct {
	Name       string // template table
	NameColumn string // display name column on the template table
	RefTable   string // table holding the foreign key
	RefColumn  string // foreign key column on RefTable
}

var (
	GoalTemplates = TemplateTable{
		Name:       "goal_templates",
		NameColumn: "template_name",
		RefTable:   "goals",
		RefColumn:  "goal_template_id",
	}
	ObjectiveTemplates = TemplateTable{
		Name:       "objective_templates",
		NameColumn: "template_title",
		RefTable:   "objectives",
		RefColumn:  "objective_template_id",
	}
)

// TemplateRow is the slice of a template row that merging needs.
type TemplateRow struct {
	ID        int64      `db:"id"`
	RegionID  int64      `db:"region_id"`
	Hash      string     `db:"hash"`
	Name      string     `db:"name"`
	LastUsed  *time.Time `db:"last_used"`
	CreatedAt time.Time  `db:"created_at"`
}

type TemplateMergeRepository interface {
	WithTx(tx *sqlx.Tx) TemplateMergeRepository
	// Rows returns every template ordered by region, oldest first.
	Rows(ctx context.Context, table TemplateTable) ([]*TemplateRow, error)
	// Repoint moves references from one template to another and returns how many moved.
	Repoint(ctx context.Context, table TemplateTable, fromID, toID int64) (int64, error)
	Delete(ctx context.Context, table TemplateTable, id int64) error
	TouchLastUsed(ctx context.Context, table TemplateTable, id int64, lastUsed time.Time) error
	// HashOwner returns the id of the template holding hash in regionID, or 0.
	HashOwner(ctx context.Context, table TemplateTable, regionID int64, hash string) (int64, error)
	SetHash(ctx context.Context, table TemplateTable, id int64, hash string) error
}

type templateMergeRepository struct {
	db Querier
}

func NewTemplateMergeRepository(db *sqlx.DB) TemplateMergeRepository {
	return &templateMergeRepository{db: db}
}

func (r *templateMergeRepository) WithTx(tx *sqlx.Tx) TemplateMergeRepository {
	return &templateMergeRepository{db: tx}
}

func (r *templateMergeRepository) Rows(ctx context.Context, table TemplateTable) ([]*TemplateRow, error) {
	var rows []*TemplateRow
	query := `SELECT id, region_id, hash, ` + table.NameColumn + ` AS name, last_used, created_at
	          FROM ` + table.Name + `
	          ORDER BY region_id ASC, created_at ASC, id ASC`

	err := sqlx.SelectContext(ctx, r.db, &rows, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *templateMergeRepository) Repoint(ctx context.Context, table TemplateTable, fromID, toID int64) (int64, error) {
	query := `UPDATE ` + table.RefTable + ` SET ` + table.RefColumn + ` = $1 WHERE ` + table.RefColumn + ` = $2`
	result, err := r.db.ExecContext(ctx, query, toID, fromID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *templateMergeRepository) Delete(ctx context.Context, table TemplateTable, id int64) error {
	query := `DELETE FROM ` + table.Name + ` WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *templateMergeRepository) TouchLastUsed(ctx context.Context, table TemplateTable, id int64, lastUsed time.Time) error {
	query := `UPDATE ` + table.Name + ` SET last_used = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, lastUsed, id)
	return err
}

func (r *templateMergeRepository) HashOwner(ctx context.Context, table TemplateTable, regionID int64, hash string) (int64, error) {
	var id int64
	query := `SELECT id FROM ` + table.Name + ` WHERE region_id = $1 AND hash = $2`
	err := sqlx.GetContext(ctx, r.db, &id, query, regionID, hash)
	if isNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *templateMergeRepository) SetHash(ctx context.Context, table TemplateTable, id int64, hash string) error {
	query := `UPDATE ` + table.Name + ` SET hash = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, hash, id)
	return err
}
