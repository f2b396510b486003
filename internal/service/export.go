package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ttahub/ttahub/internal/export"
	"github.com/ttahub/ttahub/internal/repository"
)

type ExportService struct {
	grants repository.GrantRepository
	goals  repository.GoalRepository
}

func NewExportService(grants repository.GrantRepository, goals repository.GoalRepository) *ExportService {
	return &ExportService{
		grants: grants,
		goals:  goals,
	}
}

// RegionGoals writes every goal in the region to w.
func (s *ExportService) RegionGoals(ctx context.Context, regionID int64, format export.Format, w io.Writer) error {
	goals, err := s.goals.ByRegion(ctx, regionID)
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}

	grantIDs := make([]int64, 0, len(goals))
	for _, goal := range goals {
		grantIDs = append(grantIDs, goal.GrantID)
	}

	grants, err := s.grants.ByIDs(ctx, grantIDs)
	if err != nil {
		return fmt.Errorf("failed to load grants: %w", err)
	}

	err = export.Write(w, format, export.Rows(goals, grants))
	if err != nil {
		return err
	}

	slog.Info("goals exported", "region_id", regionID, "format", format, "count", len(goals))
	return nil
}
