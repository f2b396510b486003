package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/db/dbtest"
	"github.com/ttahub/ttahub/internal/metrics"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
	"github.com/ttahub/ttahub/internal/storage"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// clock hands out strictly increasing times, one minute apart.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fakeNotifier struct {
	mu    sync.Mutex
	goals []int64
}

func (n *fakeNotifier) GoalStatusChanged(_ context.Context, goal *model.Goal, _ *model.Grant) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.goals = append(n.goals, goal.ID)
	return nil
}

type env struct {
	db         *sqlx.DB
	clock      *clock
	notifier   *fakeNotifier
	metrics    *metrics.Metrics
	grants     repository.GrantRepository
	goalRepo   repository.GoalRepository
	templates  repository.GoalTemplateRepository
	objTmpls   repository.ObjectiveTemplateRepository
	goals      *GoalService
	objectives *ObjectiveService
	files      *FileService
	maint      *MaintenanceService
	exports    *ExportService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database := dbtest.New(t)
	c := &clock{now: t0}
	notifier := &fakeNotifier{}
	m := metrics.New(prometheus.NewRegistry())

	grants := repository.NewGrantRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	templates := repository.NewGoalTemplateRepository(database)
	objTmpls := repository.NewObjectiveTemplateRepository(database)
	fileRepo := repository.NewFileRepository(database)

	store, err := storage.NewDiskStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	goals := NewGoalService(database, grants, goalRepo, templates, notifier, m, false)
	goals.now = c.Now

	files := NewFileService(fileRepo, store)
	files.now = c.Now

	objectives := NewObjectiveService(database, grants, goalRepo, repository.NewObjectiveRepository(database), objTmpls, fileRepo, files, m)
	objectives.now = c.Now

	return &env{
		db:         database,
		clock:      c,
		notifier:   notifier,
		metrics:    m,
		grants:     grants,
		goalRepo:   goalRepo,
		templates:  templates,
		objTmpls:   objTmpls,
		goals:      goals,
		objectives: objectives,
		files:      files,
		maint:      NewMaintenanceService(database, repository.NewTemplateMergeRepository(database), m),
		exports:    NewExportService(grants, goalRepo),
	}
}

func (e *env) grant(t *testing.T, regionID int64, number string) *model.Grant {
	t.Helper()

	grant := &model.Grant{
		RegionID:      regionID,
		Number:        number,
		RecipientName: "Recipient " + number,
		CreatedAt:     t0,
	}
	require.NoError(t, e.grants.Create(context.Background(), grant))
	return grant
}

func (e *env) goal(t *testing.T, grantID int64, name, status string) *model.Goal {
	t.Helper()

	goal, err := e.goals.Create(context.Background(), CreateGoalInput{
		GrantID: grantID,
		Name:    name,
		Status:  status,
	})
	require.NoError(t, err)
	return goal
}

func (e *env) count(t *testing.T, table string) int {
	t.Helper()

	var n int
	require.NoError(t, e.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func requireTime(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()

	require.NotNil(t, got)
	require.Truef(t, want.Equal(*got), "want %s, got %s", want, *got)
}

func ptr[T any](v T) *T {
	return &v
}
