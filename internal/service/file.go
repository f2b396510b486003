package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
	"github.com/ttahub/ttahub/internal/storage"
)

// Upload describes an incoming attachment.
type Upload struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	now      func() time.Time
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		now:      time.Now,
	}
}

// Upload stores the body under folder and creates the file record.
// Note: size and type limits are checked by the caller.
func (s *FileService) Upload(ctx context.Context, folder string, upload Upload) (*model.File, error) {
	ext := strings.ToLower(filepath.Ext(upload.Name))
	filename := uuid.New().String() + ext
	storagePath := path.Join(folder, filename)

	err := s.storage.Save(ctx, storagePath, upload.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	file := &model.File{
		ID:           uuid.New().String(),
		Filename:     filename,
		OriginalName: filepath.Base(upload.Name),
		MimeType:     upload.MimeType,
		Size:         upload.Size,
		StoragePath:  storagePath,
		CreatedAt:    s.now(),
	}

	err = s.fileRepo.Create(ctx, file)
	if err != nil {
		s.removeStored(ctx, storagePath)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return file, nil
}

// URL returns a download link for the file.
func (s *FileService) URL(ctx context.Context, file *model.File) (string, error) {
	if file == nil {
		return "", nil
	}
	return s.storage.URL(ctx, file.StoragePath)
}

// Delete removes a file from storage and database
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	err = s.fileRepo.Delete(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	// Storage cleanup is best effort.
	s.removeStored(ctx, file.StoragePath)
	return nil
}

func (s *FileService) removeStored(ctx context.Context, storagePath string) {
	err := s.storage.Delete(ctx, storagePath)
	if err != nil {
		slog.Error("failed to delete file from storage", "error", err, "path", storagePath)
	}
}
