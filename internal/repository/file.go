package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

const fileColumns = `files.id, files.filename, files.original_name, files.mime_type, files.size, files.storage_path, files.created_at`

type FileRepository interface {
	WithTx(tx *sqlx.Tx) FileRepository
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	AttachToObjective(ctx context.Context, link *model.ObjectiveFile) error
	ObjectiveFiles(ctx context.Context, objectiveID int64) ([]*model.File, error)
	Delete(ctx context.Context, id string) error
}

type fileRepository struct {
	db Querier
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) WithTx(tx *sqlx.Tx) FileRepository {
	return &fileRepository{db: tx}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (id, filename, original_name, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.Filename,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, file, query, id)
	if isNoRows(err) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) AttachToObjective(ctx context.Context, link *model.ObjectiveFile) error {
	query := `INSERT INTO objective_files (objective_id, file_id, created_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	return sqlx.GetContext(ctx, r.db, &link.ID, query, link.ObjectiveID, link.FileID, link.CreatedAt)
}

func (r *fileRepository) ObjectiveFiles(ctx context.Context, objectiveID int64) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT ` + fileColumns + ` FROM files
	          JOIN objective_files ON objective_files.file_id = files.id
	          WHERE objective_files.objective_id = $1
	          ORDER BY files.created_at ASC`

	err := sqlx.SelectContext(ctx, r.db, &files, query, objectiveID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectRow(result, ErrFileNotFound)
}
