package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
)

// importedTemplate inserts a template the way a bulk import would, with a
// hash that does not follow the trimmed-name rule.
func (e *env) importedTemplate(t *testing.T, hash, name string, regionID int64, createdAt time.Time) *model.GoalTemplate {
	t.Helper()

	lastUsed := createdAt
	template, created, err := e.templates.FindOrCreate(context.Background(), hash, regionID, &model.GoalTemplate{
		TemplateName:   name,
		CreationMethod: model.CreationMethodCurated,
		LastUsed:       &lastUsed,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	})
	require.NoError(t, err)
	require.True(t, created)
	return template
}

func TestDedupGoalTemplates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	grant := e.grant(t, 1, "01CH0001")

	oldest := e.importedTemplate(t, "legacy-1", "Improve attendance", 1, t0)
	dup := e.importedTemplate(t, "legacy-2", "Improve attendance  ", 1, t0.Add(time.Hour))
	later := e.importedTemplate(t, "legacy-3", "Improve attendance", 1, t0.Add(48*time.Hour))
	otherRegion := e.importedTemplate(t, "legacy-4", "Improve attendance", 2, t0)

	var goalIDs []int64
	for _, templateID := range []int64{oldest.ID, dup.ID, later.ID} {
		goal, err := e.goals.Create(ctx, CreateGoalInput{GrantID: grant.ID, Name: "Improve attendance", GoalTemplateID: templateID})
		require.NoError(t, err)
		goalIDs = append(goalIDs, goal.ID)
	}

	result, err := e.maint.DedupGoalTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, int64(2), result.Repointed)
	assert.Equal(t, 1, result.Rehashed)

	for _, id := range goalIDs {
		goal, err := e.goals.ByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, oldest.ID, goal.GoalTemplateID)
	}

	kept, err := e.templates.ByID(ctx, oldest.ID)
	require.NoError(t, err)
	requireTime(t, t0.Add(48*time.Hour), kept.LastUsed)

	_, err = e.templates.ByID(ctx, dup.ID)
	assert.ErrorIs(t, err, repository.ErrGoalTemplateNotFound)
	_, err = e.templates.ByID(ctx, otherRegion.ID)
	assert.NoError(t, err, "other regions are untouched")

	assert.Equal(t, float64(2), testutil.ToFloat64(e.metrics.TemplatesMerged.WithLabelValues("goal")))

	again, err := e.maint.DedupGoalTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Groups, "a second run finds nothing")

	next := e.goal(t, grant.ID, "Improve attendance", "")
	assert.Equal(t, oldest.ID, next.GoalTemplateID, "new goals find the kept template")
}

func TestDedupGoalTemplates_KeepsTemplateMatchingName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	grant := e.grant(t, 1, "01CH0001")

	renamed := e.goal(t, grant.ID, "Old", "")
	_, err := e.goals.Update(ctx, renamed.ID, UpdateGoalInput{Name: ptr("New")})
	require.NoError(t, err)
	fresh := e.goal(t, grant.ID, "New", "")
	require.NotEqual(t, renamed.GoalTemplateID, fresh.GoalTemplateID)

	result, err := e.maint.DedupGoalTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 0, result.Rehashed)

	_, err = e.templates.ByID(ctx, renamed.GoalTemplateID)
	assert.ErrorIs(t, err, repository.ErrGoalTemplateNotFound, "the template with the stale hash goes")

	later := e.goal(t, grant.ID, "New", "")
	assert.Equal(t, fresh.GoalTemplateID, later.GoalTemplateID)

	moved, err := e.goals.ByID(ctx, renamed.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.GoalTemplateID, moved.GoalTemplateID)

	again, err := e.maint.DedupGoalTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Groups)
}

func TestDedupGoalTemplates_HashHeldByRenamedTemplate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	grant := e.grant(t, 1, "01CH0001")

	first := e.importedTemplate(t, "legacy-1", "Plan", 1, t0)
	e.importedTemplate(t, "legacy-2", "Plan\t", 1, t0.Add(time.Hour))

	holder := e.goal(t, grant.ID, "Plan", "")
	_, err := e.goals.Update(ctx, holder.ID, UpdateGoalInput{Name: ptr("Other")})
	require.NoError(t, err)

	result, err := e.maint.DedupGoalTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 0, result.Rehashed)

	kept, err := e.templates.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "legacy-1", kept.Hash)

	other, err := e.templates.ByID(ctx, holder.GoalTemplateID)
	require.NoError(t, err)
	assert.Equal(t, TemplateHash("Plan"), other.Hash)
	assert.Equal(t, "Other", other.TemplateName)
}

func TestDedupObjectiveTemplates_NothingToDo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	grant := e.grant(t, 1, "01CH0001")
	goal := e.goal(t, grant.ID, "Goal", "")
	_, err := e.objectives.Create(ctx, goal.ID, CreateObjectiveInput{Title: "One"})
	require.NoError(t, err)
	_, err = e.objectives.Create(ctx, goal.ID, CreateObjectiveInput{Title: "Two"})
	require.NoError(t, err)

	result, err := e.maint.DedupObjectiveTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MergeResult{}, result)
	assert.Equal(t, 2, e.count(t, "objective_templates"))
}

func TestGroupTemplates(t *testing.T) {
	rows := []*repository.TemplateRow{
		{ID: 1, RegionID: 1, Name: "a"},
		{ID: 2, RegionID: 1, Name: "b"},
		{ID: 3, RegionID: 1, Name: "a\t\n"},
		{ID: 4, RegionID: 2, Name: "b"},
		{ID: 5, RegionID: 1, Name: " a"},
	}

	groups := groupTemplates(rows)
	require.Len(t, groups, 3)
	require.Len(t, groups[0], 3)
	assert.Equal(t, []int64{1, 3, 5}, []int64{groups[0][0].ID, groups[0][1].ID, groups[0][2].ID})
	assert.Len(t, groups[1], 1)
	assert.Len(t, groups[2], 1)
	assert.Empty(t, groupTemplates(nil))
}

func TestKeeper(t *testing.T) {
	group := []*repository.TemplateRow{
		{ID: 1, Hash: "legacy"},
		{ID: 2, Hash: TemplateHash("a")},
	}

	assert.Equal(t, int64(2), keeper(group, TemplateHash("a")).ID)
	assert.Equal(t, int64(1), keeper(group, TemplateHash("b")).ID)
}
