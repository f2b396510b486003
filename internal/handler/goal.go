package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ttahub/ttahub/internal/export"
	"github.com/ttahub/ttahub/internal/lifecycle"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/repository"
	"github.com/ttahub/ttahub/internal/service"
)

type goalResponse struct {
	*model.Goal
	GoalNumber  string             `json:"goalNumber"`
	StatusLabel string             `json:"statusLabel"`
	Objectives  []*model.Objective `json:"objectives,omitempty"`
}

func newGoalResponse(goal *model.Goal, regionID int64) goalResponse {
	return goalResponse{
		Goal:        goal,
		GoalNumber:  model.GoalNumber(regionID, goal.ID),
		StatusLabel: lifecycle.Status(goal.Status).Label(),
	}
}

type statusRequest struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Context string `json:"context"`
}

type approvedARRequest struct {
	GoalIDs      []int64 `json:"goalIds"`
	OnApprovedAR bool    `json:"onApprovedAR"`
}

type templateGoalsResponse struct {
	Template *model.GoalTemplate `json:"template"`
	Goals    []goalResponse      `json:"goals"`
}

type GoalHandler struct {
	goalService      *service.GoalService
	objectiveService *service.ObjectiveService
	exportService    *service.ExportService
}

func NewGoalHandler(goalService *service.GoalService, objectiveService *service.ObjectiveService, exportService *service.ExportService) *GoalHandler {
	return &GoalHandler{
		goalService:      goalService,
		objectiveService: objectiveService,
		exportService:    exportService,
	}
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateGoalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Create(r.Context(), in)
	if errors.Is(err, repository.ErrGrantNotFound) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: repository.ErrGrantNotFound.Error(), Field: "grantId"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, goal.ID)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, grant, err := h.goalService.GoalWithGrant(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	objectives, err := h.objectiveService.ByGoal(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := newGoalResponse(goal, grant.RegionID)
	resp.Objectives = objectives
	writeJSON(w, http.StatusOK, resp)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in service.UpdateGoalInput
	err = decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.goalService.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, id)
}

func (h *GoalHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in statusRequest
	err = decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.goalService.ChangeStatus(r.Context(), id, in.Status, in.Reason, in.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, id)
}

func (h *GoalHandler) RestoreStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.goalService.RestorePreviousStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, id)
}

// MarkApprovedAR sets the approved activity report flag on a batch of goals.
func (h *GoalHandler) MarkApprovedAR(w http.ResponseWriter, r *http.Request) {
	var in approvedARRequest
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(in.GoalIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "goalIds is required", Field: "goalIds"})
		return
	}

	n, err := h.goalService.MarkOnApprovedAR(r.Context(), in.GoalIDs, in.OnApprovedAR)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.goalService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) GrantGoals(w http.ResponseWriter, r *http.Request) {
	grantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = repository.GoalSortRecent
	}

	grant, goals, err := h.goalService.GrantGoals(r.Context(), grantID, sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		resp = append(resp, newGoalResponse(goal, grant.RegionID))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GoalHandler) RegionTemplates(w http.ResponseWriter, r *http.Request) {
	regionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	templates, err := h.goalService.Templates(r.Context(), regionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if templates == nil {
		templates = []*model.GoalTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *GoalHandler) TemplateGoals(w http.ResponseWriter, r *http.Request) {
	templateID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	template, goals, err := h.goalService.TemplateGoals(r.Context(), templateID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := templateGoalsResponse{Template: template, Goals: make([]goalResponse, 0, len(goals))}
	for _, goal := range goals {
		resp.Goals = append(resp.Goals, newGoalResponse(goal, template.RegionID))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	regionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.exportService.RegionGoals(r.Context(), regionID, format, &buf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("region-%s-goals.%s", strconv.FormatInt(regionID, 10), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	_, err = buf.WriteTo(w)
	if err != nil {
		slog.Warn("export response interrupted", "error", err, "region_id", regionID)
	}
}

// respond re-reads the goal so the body carries its goal number.
func (h *GoalHandler) respond(w http.ResponseWriter, r *http.Request, status int, id int64) {
	goal, grant, err := h.goalService.GoalWithGrant(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, status, newGoalResponse(goal, grant.RegionID))
}
