package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/db/dbtest"
	"github.com/ttahub/ttahub/internal/model"
)

type fixture struct {
	grants    GrantRepository
	goals     GoalRepository
	templates GoalTemplateRepository
}

func newFixture(t *testing.T) *fixture {
	database := dbtest.New(t)
	return &fixture{
		grants:    NewGrantRepository(database),
		goals:     NewGoalRepository(database),
		templates: NewGoalTemplateRepository(database),
	}
}

func (f *fixture) goal(t *testing.T, regionID int64, number, name string) *model.Goal {
	t.Helper()
	ctx := context.Background()

	grant := &model.Grant{RegionID: regionID, Number: number, CreatedAt: t0}
	require.NoError(t, f.grants.Create(ctx, grant))

	template, _, err := f.templates.FindOrCreate(ctx, "hash-"+name, regionID, defaults(name, t0))
	require.NoError(t, err)

	approved := false
	goal := &model.Goal{
		Name:           name,
		Status:         "Draft",
		GrantID:        grant.ID,
		GoalTemplateID: template.ID,
		OnApprovedAR:   &approved,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
	require.NoError(t, f.goals.Create(ctx, goal))
	return goal
}

func TestGoal_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	goal := f.goal(t, 1, "01CH0001", "Goal")

	closedAt := t0.Add(time.Hour)
	goal.Status = "Closed"
	goal.PreviousStatus = "Draft"
	goal.CloseSuspendReason = "TTA complete"
	goal.FirstClosedAt = &closedAt
	goal.LastClosedAt = &closedAt
	goal.UpdatedAt = closedAt
	require.NoError(t, f.goals.Update(ctx, goal))

	got, err := f.goals.ByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Closed", got.Status)
	assert.Equal(t, "Draft", got.PreviousStatus)
	assert.Equal(t, "TTA complete", got.CloseSuspendReason)
	require.NotNil(t, got.FirstClosedAt)
	assert.True(t, closedAt.Equal(*got.FirstClosedAt))
	assert.Nil(t, got.FirstCompletedAt)
	assert.False(t, got.IsOnApprovedAR())

	goal.ID = 404
	assert.ErrorIs(t, f.goals.Update(ctx, goal), ErrGoalNotFound)
}

func TestGoal_Queries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.goal(t, 1, "01CH0001", "Beta")
	b := f.goal(t, 1, "01CH0002", "Alpha")
	c := f.goal(t, 2, "02CH0001", "Gamma")

	region1, err := f.goals.ByRegion(ctx, 1)
	require.NoError(t, err)
	require.Len(t, region1, 2)
	assert.Equal(t, a.ID, region1[0].ID)
	assert.Equal(t, b.ID, region1[1].ID)

	byTemplate, err := f.goals.ByTemplate(ctx, c.GoalTemplateID)
	require.NoError(t, err)
	require.Len(t, byTemplate, 1)

	grants, err := f.grants.ByIDs(ctx, []int64{a.GrantID, c.GrantID, 404})
	require.NoError(t, err)
	assert.Len(t, grants, 2)
	assert.Equal(t, int64(2), grants[c.GrantID].RegionID)
}

func TestGoal_SetOnApprovedAR(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.goal(t, 1, "01CH0001", "A")
	b := f.goal(t, 1, "01CH0002", "B")

	n, err := f.goals.SetOnApprovedAR(ctx, []int64{a.ID, b.ID, 404}, true, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := f.goals.ByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOnApprovedAR())

	n, err = f.goals.SetOnApprovedAR(ctx, nil, true, t0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGoal_ForeignKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.goals.Create(ctx, &model.Goal{GrantID: 404, GoalTemplateID: 404, CreatedAt: t0, UpdatedAt: t0})
	assert.Error(t, err)

	_, err = f.grants.ByID(ctx, 404)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}
