package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/ttahub/ttahub/internal/app"
	"github.com/ttahub/ttahub/internal/handler"
	"github.com/ttahub/ttahub/internal/middleware"
)

// SetupRoutes builds the HTTP handler. ctx bounds background work started by
// middleware.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService, app.ObjectiveService, app.ExportService)
	objective := handler.NewObjectiveHandler(app.ObjectiveService, app.FileService)

	exportLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", app.Metrics.Handler())

	// ============================================================================
	// GOALS
	// ============================================================================

	mux.HandleFunc("POST /api/goals", goal.Create)
	mux.HandleFunc("GET /api/goals/{id}", goal.Get)
	mux.HandleFunc("PUT /api/goals/{id}", goal.Update)
	mux.HandleFunc("DELETE /api/goals/{id}", goal.Delete)
	mux.HandleFunc("PUT /api/goals/{id}/status", goal.ChangeStatus)
	mux.HandleFunc("POST /api/goals/{id}/restore-status", goal.RestoreStatus)
	mux.HandleFunc("PUT /api/goals/approved-ar", goal.MarkApprovedAR)
	mux.HandleFunc("GET /api/grants/{id}/goals", goal.GrantGoals)
	mux.HandleFunc("GET /api/regions/{id}/goal-templates", goal.RegionTemplates)
	mux.HandleFunc("GET /api/goal-templates/{id}/goals", goal.TemplateGoals)
	mux.HandleFunc("GET /api/regions/{id}/goals/export", exportLimiter.Limit(goal.Export))

	// ============================================================================
	// OBJECTIVES
	// ============================================================================

	mux.HandleFunc("POST /api/goals/{id}/objectives", objective.Create)
	mux.HandleFunc("PUT /api/objectives/{id}", objective.Update)
	mux.HandleFunc("DELETE /api/objectives/{id}", objective.Delete)
	mux.HandleFunc("GET /api/objectives/{id}/files", objective.Files)
	mux.HandleFunc("POST /api/objectives/{id}/files", objective.UploadFile)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
	)
}
