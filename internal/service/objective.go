package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/lifecycle"
	"github.com/ttahub/ttahub/internal/metrics"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
)

type CreateObjectiveInput struct {
	Title        string `json:"title"`
	Status       string `json:"status"`
	OnApprovedAR *bool  `json:"onApprovedAR"`
}

type UpdateObjectiveInput struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// ObjectiveService mirrors GoalService for objectives: each objective is
// linked to an ObjectiveTemplate keyed by its title and the region of its
// goal's grant.
type ObjectiveService struct {
	db         *sqlx.DB
	grants     repository.GrantRepository
	goals      repository.GoalRepository
	objectives repository.ObjectiveRepository
	templates  repository.ObjectiveTemplateRepository
	fileRepo   repository.FileRepository
	files      *FileService
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewObjectiveService(
	db *sqlx.DB,
	grants repository.GrantRepository,
	goals repository.GoalRepository,
	objectives repository.ObjectiveRepository,
	templates repository.ObjectiveTemplateRepository,
	fileRepo repository.FileRepository,
	files *FileService,
	m *metrics.Metrics,
) *ObjectiveService {
	return &ObjectiveService{
		db:         db,
		grants:     grants,
		goals:      goals,
		objectives: objectives,
		templates:  templates,
		fileRepo:   fileRepo,
		files:      files,
		metrics:    m,
		now:        time.Now,
	}
}

func (s *ObjectiveService) prepare(ctx context.Context, tx *sqlx.Tx, objective *model.Objective, changes Changes, regionID int64) error {
	if objective.OnApprovedAR == nil {
		onApprovedAR := false
		objective.OnApprovedAR = &onApprovedAR
	}

	if objective.ID != 0 && objective.IsOnApprovedAR() && changes.Has(model.ObjectiveFieldTitle) {
		return invalid(model.ObjectiveFieldTitle, ErrTitleImmutable)
	}

	if changes.Has(model.ObjectiveFieldStatus) {
		err := lifecycle.ValidateObjectiveStatus(objective.Status)
		if err != nil {
			return invalid(model.ObjectiveFieldStatus, err)
		}
	}

	if objective.ObjectiveTemplateID == 0 {
		lastUsed := objective.CreatedAt
		template, created, err := s.templates.WithTx(tx).FindOrCreate(ctx, TemplateHash(objective.Title), regionID, &model.ObjectiveTemplate{
			TemplateTitle:  objective.Title,
			CreationMethod: model.CreationMethodAutomatic,
			LastUsed:       &lastUsed,
			CreatedAt:      objective.CreatedAt,
			UpdatedAt:      objective.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve objective template: %w", err)
		}
		if created {
			s.metrics.TemplateCreated("objective")
		}
		objective.ObjectiveTemplateID = template.ID
	}

	return nil
}

// regionOf returns the region of the grant that owns goalID.
func (s *ObjectiveService) regionOf(ctx context.Context, tx *sqlx.Tx, goalID int64) (int64, error) {
	goal, err := s.goals.WithTx(tx).ByID(ctx, goalID)
	if err != nil {
		return 0, err
	}

	grant, err := s.grants.WithTx(tx).ByID(ctx, goal.GrantID)
	if err != nil {
		return 0, err
	}
	return grant.RegionID, nil
}

func (s *ObjectiveService) Create(ctx context.Context, goalID int64, in CreateObjectiveInput) (*model.Objective, error) {
	now := s.now()
	objective := &model.Objective{
		GoalID:       goalID,
		Title:        in.Title,
		Status:       in.Status,
		OnApprovedAR: in.OnApprovedAR,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		regionID, err := s.regionOf(ctx, tx, goalID)
		if err != nil {
			return err
		}

		err = s.prepare(ctx, tx, objective, Changes{model.ObjectiveFieldTitle, model.ObjectiveFieldStatus}, regionID)
		if err != nil {
			return err
		}

		return s.objectives.WithTx(tx).Create(ctx, objective)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create objective: %w", err)
	}

	return objective, nil
}

func (s *ObjectiveService) ByID(ctx context.Context, id int64) (*model.Objective, error) {
	return s.objectives.ByID(ctx, id)
}

func (s *ObjectiveService) ByGoal(ctx context.Context, goalID int64) ([]*model.Objective, error) {
	return s.objectives.ByGoal(ctx, goalID)
}

func (s *ObjectiveService) Update(ctx context.Context, id int64, in UpdateObjectiveInput) (*model.Objective, error) {
	var (
		objective *model.Objective
		changes   Changes
	)

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		objective, err = s.objectives.WithTx(tx).ByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Title != nil && *in.Title != objective.Title {
			objective.Title = *in.Title
			changes = append(changes, model.ObjectiveFieldTitle)
		}
		if in.Status != nil && *in.Status != objective.Status {
			objective.Status = *in.Status
			changes = append(changes, model.ObjectiveFieldStatus)
		}
		if len(changes) == 0 {
			return nil
		}

		regionID, err := s.regionOf(ctx, tx, objective.GoalID)
		if err != nil {
			return err
		}

		objective.UpdatedAt = s.now()
		err = s.prepare(ctx, tx, objective, changes, regionID)
		if err != nil {
			return err
		}

		return s.objectives.WithTx(tx).Update(ctx, objective)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update objective: %w", err)
	}

	if changes.Has(model.ObjectiveFieldTitle) {
		err = s.templates.UpdateTitle(ctx, objective.ObjectiveTemplateID, objective.Title, objective.UpdatedAt)
		if err != nil {
			s.metrics.TemplateRenamed("objective", metrics.ResultError)
			slog.Error("objective saved without template update", "error", err,
				"objective_id", objective.ID, "template_id", objective.ObjectiveTemplateID)
			return objective, nil
		}
		s.metrics.TemplateRenamed("objective", "applied")
	}

	return objective, nil
}

// Delete removes the objective and then, best effort, its attached files.
func (s *ObjectiveService) Delete(ctx context.Context, id int64) error {
	files, err := s.fileRepo.ObjectiveFiles(ctx, id)
	if err != nil {
		return err
	}

	err = s.objectives.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, file := range files {
		err = s.files.Delete(ctx, file.ID)
		if err != nil {
			slog.Error("failed to delete objective file", "error", err, "objective_id", id, "file_id", file.ID)
		}
	}
	return nil
}

// AttachFile stores an upload and links it to the objective. The stored
// file is removed again when the link cannot be written.
func (s *ObjectiveService) AttachFile(ctx context.Context, objectiveID int64, upload Upload) (*model.File, error) {
	_, err := s.objectives.ByID(ctx, objectiveID)
	if err != nil {
		return nil, err
	}

	file, err := s.files.Upload(ctx, "objectives/"+strconv.FormatInt(objectiveID, 10), upload)
	if err != nil {
		return nil, err
	}

	err = s.fileRepo.AttachToObjective(ctx, &model.ObjectiveFile{
		ObjectiveID: objectiveID,
		FileID:      file.ID,
		CreatedAt:   s.now(),
	})
	if err != nil {
		delErr := s.files.Delete(ctx, file.ID)
		if delErr != nil {
			slog.Error("failed to clean up unattached file", "error", delErr, "file_id", file.ID)
		}
		return nil, fmt.Errorf("failed to attach file: %w", err)
	}

	slog.Info("file attached", "objective_id", objectiveID, "file_id", file.ID)
	return file, nil
}

func (s *ObjectiveService) Files(ctx context.Context, objectiveID int64) ([]*model.File, error) {
	_, err := s.objectives.ByID(ctx, objectiveID)
	if err != nil {
		return nil, err
	}

	return s.fileRepo.ObjectiveFiles(ctx, objectiveID)
}
