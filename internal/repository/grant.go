package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

var (
	ErrGrantNotFound = errors.New("grant not found")
)

type GrantRepository interface {
	WithTx(tx *sqlx.Tx) GrantRepository
	Create(ctx context.Context, grant *model.Grant) error
	ByID(ctx context.Context, id int64) (*model.Grant, error)
	ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Grant, error)
}

type grantRepository struct {
	db Querier
}

func NewGrantRepository(db *sqlx.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) WithTx(tx *sqlx.Tx) GrantRepository {
	return &grantRepository{db: tx}
}

func (r *grantRepository) Create(ctx context.Context, grant *model.Grant) error {
	query := `INSERT INTO grants (region_id, number, recipient_name, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	return sqlx.GetContext(ctx, r.db, &grant.ID, query,
		grant.RegionID,
		grant.Number,
		grant.RecipientName,
		grant.CreatedAt,
	)
}

func (r *grantRepository) ByID(ctx context.Context, id int64) (*model.Grant, error) {
	grant := &model.Grant{}
	query := `SELECT id, region_id, number, recipient_name, created_at FROM grants WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, grant, query, id)
	if isNoRows(err) {
		return nil, ErrGrantNotFound
	}
	if err != nil {
		return nil, err
	}

	return grant, nil
}

func (r *grantRepository) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Grant, error) {
	grants := make(map[int64]*model.Grant, len(ids))
	if len(ids) == 0 {
		return grants, nil
	}

	query, args, err := sqlx.In(`SELECT id, region_id, number, recipient_name, created_at FROM grants WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var rows []*model.Grant
	err = sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, g := range rows {
		grants[g.ID] = g
	}
	return grants, nil
}
