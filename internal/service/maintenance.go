package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/metrics"
	"github.com/ttahub/ttahub/internal/repository"
)

// MergeResult summarises one dedup run.
type MergeResult struct {
	Groups    int   // duplicate groups found
	Removed   int   // templates deleted
	Repointed int64 // goal or objective rows moved to the kept template
	Rehashed  int   // kept templates whose hash was reset to match their name
}

// MaintenanceService holds data repair steps that are safe to run more than
// once. Each run is a single transaction.
type MaintenanceService struct {
	db      *sqlx.DB
	merges  repository.TemplateMergeRepository
	metrics *metrics.Metrics
}

func NewMaintenanceService(db *sqlx.DB, merges repository.TemplateMergeRepository, m *metrics.Metrics) *MaintenanceService {
	return &MaintenanceService{
		db:      db,
		merges:  merges,
		metrics: m,
	}
}

// DedupGoalTemplates merges goal templates that share a region and
// normalized name. The kept template is the one whose hash matches the name,
// or the oldest when none does; its hash is then reset so later saves of the
// name find it.
func (s *MaintenanceService) DedupGoalTemplates(ctx context.Context) (*MergeResult, error) {
	return s.dedup(ctx, "goal", repository.GoalTemplates)
}

// DedupObjectiveTemplates is DedupGoalTemplates for objective templates.
func (s *MaintenanceService) DedupObjectiveTemplates(ctx context.Context) (*MergeResult, error) {
	return s.dedup(ctx, "objective", repository.ObjectiveTemplates)
}

func (s *MaintenanceService) dedup(ctx context.Context, kind string, table repository.TemplateTable) (*MergeResult, error) {
	result := &MergeResult{}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		merges := s.merges.WithTx(tx)

		rows, err := merges.Rows(ctx, table)
		if err != nil {
			slog.Error("dedup: failed to load templates", "error", err, "table", table.Name)
			return err
		}

		for _, group := range groupTemplates(rows) {
			if len(group) < 2 {
				continue
			}
			result.Groups++

			hash := TemplateHash(group[0].Name)
			keep := keeper(group, hash)
			lastUsed := keep.LastUsed
			for _, dup := range group {
				if dup == keep {
					continue
				}

				moved, err := merges.Repoint(ctx, table, dup.ID, keep.ID)
				if err != nil {
					slog.Error("dedup: failed to repoint references", "error", err, "table", table.Name, "from", dup.ID, "to", keep.ID)
					return err
				}
				result.Repointed += moved

				err = merges.Delete(ctx, table, dup.ID)
				if err != nil {
					slog.Error("dedup: failed to delete duplicate", "error", err, "table", table.Name, "template_id", dup.ID)
					return err
				}
				result.Removed++

				if dup.LastUsed != nil && (lastUsed == nil || dup.LastUsed.After(*lastUsed)) {
					lastUsed = dup.LastUsed
				}
			}

			if lastUsed != nil && lastUsed != keep.LastUsed {
				err = merges.TouchLastUsed(ctx, table, keep.ID, *lastUsed)
				if err != nil {
					slog.Error("dedup: failed to update last_used", "error", err, "table", table.Name, "template_id", keep.ID)
					return err
				}
			}

			if keep.Hash == hash {
				continue
			}

			owner, err := merges.HashOwner(ctx, table, keep.RegionID, hash)
			if err != nil {
				slog.Error("dedup: failed to look up hash owner", "error", err, "table", table.Name, "template_id", keep.ID)
				return err
			}
			if owner != 0 {
				// A renamed template still answers to this name.
				slog.Warn("dedup: name hash held by another template, keeping old hash",
					"table", table.Name, "template_id", keep.ID, "owner_id", owner)
				continue
			}

			err = merges.SetHash(ctx, table, keep.ID, hash)
			if err != nil {
				slog.Error("dedup: failed to reset hash", "error", err, "table", table.Name, "template_id", keep.ID)
				return err
			}
			result.Rehashed++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dedup %s templates: %w", kind, err)
	}

	s.metrics.Merged(kind, result.Removed)
	slog.Info("dedup finished", "kind", kind, "groups", result.Groups, "removed", result.Removed,
		"repointed", result.Repointed, "rehashed", result.Rehashed)
	return result, nil
}

// groupTemplates splits rows into groups sharing a region and normalized
// name. Groups and their members keep the order of rows.
func groupTemplates(rows []*repository.TemplateRow) [][]*repository.TemplateRow {
	type key struct {
		regionID int64
		name     string
	}

	var groups [][]*repository.TemplateRow
	index := make(map[key]int)
	for _, row := range rows {
		k := key{regionID: row.RegionID, name: NormalizeTemplateName(row.Name)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row)
	}
	return groups
}

// keeper picks the group member whose hash already matches the name,
// falling back to the first.
func keeper(group []*repository.TemplateRow, hash string) *repository.TemplateRow {
	for _, row := range group {
		if row.Hash == hash {
			return row
		}
	}
	return group[0]
}
