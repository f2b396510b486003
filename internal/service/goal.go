package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ttahub/ttahub/internal/lifecycle"
	"github.com/ttahub/ttahub/internal/metrics"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
)

// Changes lists the fields one save modifies, using the model.*Field* names.
type Changes []string

func (c Changes) Has(field string) bool {
	return slices.Contains(c, field)
}

// StatusNotifier is told about goals that were closed or suspended.
type StatusNotifier interface {
	GoalStatusChanged(ctx context.Context, goal *model.Goal, grant *model.Grant) error
}

type CreateGoalInput struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Timeframe      string     `json:"timeframe"`
	EndDate        *time.Time `json:"endDate"`
	GrantID        int64      `json:"grantId"`
	GoalTemplateID int64      `json:"goalTemplateId"`
	OnApprovedAR   *bool      `json:"onApprovedAR"`
}

// UpdateGoalInput holds optional edits; nil fields are left alone.
type UpdateGoalInput struct {
	Name         *string    `json:"name"`
	Status       *string    `json:"status"`
	Timeframe    *string    `json:"timeframe"`
	EndDate      *time.Time `json:"endDate"`
	ClearEndDate bool       `json:"clearEndDate"`
}

// apply copies the edits onto goal. Closing or suspending needs a reason,
// so those statuses are refused here and left to ChangeStatus.
func (in UpdateGoalInput) apply(goal *model.Goal) (Changes, error) {
	var changes Changes

	if in.Name != nil && *in.Name != goal.Name {
		goal.Name = *in.Name
		changes = append(changes, model.GoalFieldName)
	}
	if in.Status != nil && *in.Status != goal.Status {
		if lifecycle.Status(*in.Status).IsTerminal() {
			return nil, invalid(model.GoalFieldStatus, ErrReasonRequired)
		}
		changes = append(changes, moveStatus(goal, *in.Status, "", "")...)
	}
	if in.Timeframe != nil && *in.Timeframe != goal.Timeframe {
		goal.Timeframe = *in.Timeframe
		changes = append(changes, model.GoalFieldTimeframe)
	}
	switch {
	case in.ClearEndDate && goal.EndDate != nil:
		goal.EndDate = nil
		changes = append(changes, model.GoalFieldEndDate)
	case !in.ClearEndDate && in.EndDate != nil && (goal.EndDate == nil || !goal.EndDate.Equal(*in.EndDate)):
		goal.EndDate = in.EndDate
		changes = append(changes, model.GoalFieldEndDate)
	}

	return changes, nil
}

// moveStatus sets the goal's status, remembering the one it leaves. The
// close/suspend reason is kept only while the goal is closed or suspended.
func moveStatus(goal *model.Goal, status, reason, reasonContext string) Changes {
	changes := Changes{model.GoalFieldStatus, model.GoalFieldPreviousStatus}
	goal.PreviousStatus = goal.Status
	goal.Status = status

	if !lifecycle.Status(status).IsTerminal() {
		reason, reasonContext = "", ""
	}
	if goal.CloseSuspendReason != reason || goal.CloseSuspendContext != reasonContext {
		goal.CloseSuspendReason = reason
		goal.CloseSuspendContext = reasonContext
		changes = append(changes, model.GoalFieldCloseSuspendReason, model.GoalFieldCloseSuspendContext)
	}
	return changes
}

type GoalService struct {
	db                *sqlx.DB
	grants            repository.GrantRepository
	goals             repository.GoalRepository
	templates         repository.GoalTemplateRepository
	notifier          StatusNotifier
	metrics           *metrics.Metrics
	checkTemplateName bool
	now               func() time.Time
}

func NewGoalService(
	db *sqlx.DB,
	grants repository.GrantRepository,
	goals repository.GoalRepository,
	templates repository.GoalTemplateRepository,
	notifier StatusNotifier,
	m *metrics.Metrics,
	checkTemplateName bool,
) *GoalService {
	return &GoalService{
		db:                db,
		grants:            grants,
		goals:             goals,
		templates:         templates,
		notifier:          notifier,
		metrics:           m,
		checkTemplateName: checkTemplateName,
		now:               time.Now,
	}
}

// ValidateAndPrepare runs before every goal insert or update, inside the
// write transaction. It fills defaults, enforces the approved-report name
// guard, stamps status timestamps and resolves the goal's template. regionID
// is the region of the goal's grant.
func (s *GoalService) ValidateAndPrepare(ctx context.Context, tx *sqlx.Tx, goal *model.Goal, changes Changes, regionID int64) error {
	if goal.OnApprovedAR == nil {
		onApprovedAR := false
		goal.OnApprovedAR = &onApprovedAR
	}

	if goal.ID != 0 && goal.IsOnApprovedAR() && changes.Has(model.GoalFieldName) {
		return invalid(model.GoalFieldName, ErrNameImmutable)
	}

	if changes.Has(model.GoalFieldStatus) {
		err := lifecycle.Stamp(goal, goal.Status, goal.UpdatedAt)
		if err != nil {
			return invalid(model.GoalFieldStatus, err)
		}
	}

	if goal.GoalTemplateID == 0 {
		template, err := s.ResolveTemplate(ctx, tx, goal.Name, regionID, goal.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to resolve goal template: %w", err)
		}
		goal.GoalTemplateID = template.ID
	}

	return nil
}

// ResolveTemplate finds or creates the template for name within regionID.
func (s *GoalService) ResolveTemplate(ctx context.Context, tx *sqlx.Tx, name string, regionID int64, usedAt time.Time) (*model.GoalTemplate, error) {
	lastUsed := usedAt
	template, created, err := s.templates.WithTx(tx).FindOrCreate(ctx, TemplateHash(name), regionID, &model.GoalTemplate{
		TemplateName:   name,
		CreationMethod: model.CreationMethodAutomatic,
		LastUsed:       &lastUsed,
		CreatedAt:      usedAt,
		UpdatedAt:      usedAt,
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.metrics.TemplateCreated("goal")
		slog.Debug("goal template created", "template_id", template.ID, "region_id", regionID)
	}
	return template, nil
}

// PostCommit runs after an update has committed. A name change is copied to
// the goal's template; the last goal renamed wins unless the template name
// check is enabled. Closing or suspending a goal sends a notification.
func (s *GoalService) PostCommit(ctx context.Context, goal *model.Goal, grant *model.Grant, changes Changes) error {
	if changes.Has(model.GoalFieldStatus) {
		s.metrics.StatusEntered(goal.Status)
		s.notify(ctx, goal, grant)
	}

	if !changes.Has(model.GoalFieldName) {
		return nil
	}

	var notAfter *time.Time
	if s.checkTemplateName {
		notAfter = &goal.UpdatedAt
	}

	err := s.templates.UpdateName(ctx, goal.GoalTemplateID, goal.Name, goal.UpdatedAt, notAfter)
	if errors.Is(err, repository.ErrStaleTemplate) {
		s.metrics.TemplateRenamed("goal", "skipped")
		slog.Warn("goal template renamed by a newer update, skipping", "goal_id", goal.ID, "template_id", goal.GoalTemplateID)
		return nil
	}
	if err != nil {
		s.metrics.TemplateRenamed("goal", metrics.ResultError)
		return fmt.Errorf("failed to propagate goal name to template: %w", err)
	}

	s.metrics.TemplateRenamed("goal", "applied")
	return nil
}

func (s *GoalService) notify(ctx context.Context, goal *model.Goal, grant *model.Grant) {
	if s.notifier == nil || !lifecycle.Status(goal.Status).IsTerminal() {
		return
	}

	err := s.notifier.GoalStatusChanged(ctx, goal, grant)
	if err != nil {
		slog.Error("failed to send goal status notification", "error", err, "goal_id", goal.ID)
	}
}

func (s *GoalService) Create(ctx context.Context, in CreateGoalInput) (*model.Goal, error) {
	now := s.now()
	goal := &model.Goal{
		Name:           in.Name,
		Status:         in.Status,
		Timeframe:      in.Timeframe,
		EndDate:        in.EndDate,
		GrantID:        in.GrantID,
		GoalTemplateID: in.GoalTemplateID,
		OnApprovedAR:   in.OnApprovedAR,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	changes := Changes{
		model.GoalFieldName,
		model.GoalFieldStatus,
		model.GoalFieldTimeframe,
		model.GoalFieldEndDate,
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		grant, err := s.grants.WithTx(tx).ByID(ctx, in.GrantID)
		if err != nil {
			return err
		}

		err = s.ValidateAndPrepare(ctx, tx, goal, changes, grant.RegionID)
		if err != nil {
			return err
		}

		return s.goals.WithTx(tx).Create(ctx, goal)
	})
	s.metrics.GoalSaved("create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	if goal.Status != "" {
		s.metrics.StatusEntered(goal.Status)
	}
	return goal, nil
}

func (s *GoalService) ByID(ctx context.Context, id int64) (*model.Goal, error) {
	return s.goals.ByID(ctx, id)
}

// GoalWithGrant returns the goal together with the grant that owns it.
func (s *GoalService) GoalWithGrant(ctx context.Context, id int64) (*model.Goal, *model.Grant, error) {
	goal, err := s.goals.ByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	grant, err := s.grants.ByID(ctx, goal.GrantID)
	if err != nil {
		return nil, nil, err
	}

	return goal, grant, nil
}

// GrantGoals returns the grant and its goals.
func (s *GoalService) GrantGoals(ctx context.Context, grantID int64, sortBy string) (*model.Grant, []*model.Goal, error) {
	grant, err := s.grants.ByID(ctx, grantID)
	if err != nil {
		return nil, nil, err
	}

	goals, err := s.goals.ByGrant(ctx, grantID, sortBy)
	if err != nil {
		return nil, nil, err
	}
	return grant, goals, nil
}

func (s *GoalService) Templates(ctx context.Context, regionID int64) ([]*model.GoalTemplate, error) {
	return s.templates.Templates(ctx, regionID)
}

// TemplateGoals returns the template and every goal that uses it.
func (s *GoalService) TemplateGoals(ctx context.Context, templateID int64) (*model.GoalTemplate, []*model.Goal, error) {
	template, err := s.templates.ByID(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}

	goals, err := s.goals.ByTemplate(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	return template, goals, nil
}

func (s *GoalService) Update(ctx context.Context, id int64, in UpdateGoalInput) (*model.Goal, error) {
	return s.update(ctx, id, "update", in.apply)
}

// ChangeStatus moves a goal to status. Closing or suspending requires a
// reason from the allowed list. The prior status is remembered so a close
// or suspend can be undone with RestorePreviousStatus.
func (s *GoalService) ChangeStatus(ctx context.Context, id int64, status, reason, reasonContext string) (*model.Goal, error) {
	parsed, err := lifecycle.ParseStatus(status)
	if err != nil {
		return nil, invalid(model.GoalFieldStatus, err)
	}

	err = lifecycle.ValidateReason(parsed, reason)
	if err != nil {
		return nil, invalid(model.GoalFieldCloseSuspendReason, err)
	}

	return s.update(ctx, id, "change_status", func(goal *model.Goal) (Changes, error) {
		if goal.Status == status {
			return nil, nil
		}

		return moveStatus(goal, status, reason, reasonContext), nil
	})
}

// RestorePreviousStatus undoes a close or suspend.
func (s *GoalService) RestorePreviousStatus(ctx context.Context, id int64) (*model.Goal, error) {
	return s.update(ctx, id, "restore_status", func(goal *model.Goal) (Changes, error) {
		if !lifecycle.Status(goal.Status).IsTerminal() || goal.PreviousStatus == "" {
			return nil, ErrNothingToRestore
		}

		goal.Status = goal.PreviousStatus
		goal.PreviousStatus = ""
		goal.CloseSuspendReason = ""
		goal.CloseSuspendContext = ""
		return Changes{
			model.GoalFieldStatus,
			model.GoalFieldPreviousStatus,
			model.GoalFieldCloseSuspendReason,
			model.GoalFieldCloseSuspendContext,
		}, nil
	})
}

// MarkOnApprovedAR flags goals referenced by an approved activity report.
// Once flagged, their names can no longer change.
func (s *GoalService) MarkOnApprovedAR(ctx context.Context, ids []int64, onApprovedAR bool) (int64, error) {
	n, err := s.goals.SetOnApprovedAR(ctx, ids, onApprovedAR, s.now())
	s.metrics.GoalSaved("mark_approved", err)
	if err != nil {
		return 0, fmt.Errorf("failed to mark goals: %w", err)
	}
	return n, nil
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	err := s.goals.Delete(ctx, id)
	s.metrics.GoalSaved("delete", err)
	return err
}

// update loads the goal, applies mutate and saves it through the pipeline.
// A mutate that reports no changes skips the write.
func (s *GoalService) update(ctx context.Context, id int64, op string, mutate func(*model.Goal) (Changes, error)) (*model.Goal, error) {
	var (
		goal    *model.Goal
		grant   *model.Grant
		changes Changes
	)

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		goal, err = s.goals.WithTx(tx).ByID(ctx, id)
		if err != nil {
			return err
		}

		changes, err = mutate(goal)
		if err != nil || len(changes) == 0 {
			return err
		}

		grant, err = s.grants.WithTx(tx).ByID(ctx, goal.GrantID)
		if err != nil {
			return err
		}

		goal.UpdatedAt = s.now()
		err = s.ValidateAndPrepare(ctx, tx, goal, changes, grant.RegionID)
		if err != nil {
			return err
		}

		return s.goals.WithTx(tx).Update(ctx, goal)
	})
	s.metrics.GoalSaved(op, err)
	if err != nil {
		return nil, fmt.Errorf("failed to %s goal: %w", op, err)
	}

	if len(changes) == 0 {
		return goal, nil
	}

	err = s.PostCommit(ctx, goal, grant, changes)
	if err != nil {
		// The goal is committed; only its template lags.
		slog.Error("goal saved without template update", "error", err, "goal_id", goal.ID, "template_id", goal.GoalTemplateID)
	}
	return goal, nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = fn(tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}
