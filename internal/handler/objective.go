package handler

import (
	"net/http"

	"github.com/ttahub/ttahub/internal/model"
	"github.com/ttahub/ttahub/internal/service"
	"github.com/ttahub/ttahub/internal/validation"
)

type fileResponse struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

type ObjectiveHandler struct {
	objectiveService *service.ObjectiveService
	fileService      *service.FileService
}

func NewObjectiveHandler(objectiveService *service.ObjectiveService, fileService *service.FileService) *ObjectiveHandler {
	return &ObjectiveHandler{
		objectiveService: objectiveService,
		fileService:      fileService,
	}
}

func (h *ObjectiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in service.CreateObjectiveInput
	err = decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	objective, err := h.objectiveService.Create(r.Context(), goalID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, objective)
}

func (h *ObjectiveHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in service.UpdateObjectiveInput
	err = decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	objective, err := h.objectiveService.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, objective)
}

func (h *ObjectiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.objectiveService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ObjectiveHandler) Files(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	files, err := h.objectiveService.Files(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, file := range files {
		item, err := h.fileResponse(r, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ObjectiveHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.AttachmentConstraints.MaxSize+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file is required", Field: "file"})
		return
	}
	defer file.Close()

	mimeType, err := validation.ValidateFile(header, validation.AttachmentConstraints)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: "file"})
		return
	}

	stored, err := h.objectiveService.AttachFile(r.Context(), id, service.Upload{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.fileResponse(r, stored)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ObjectiveHandler) fileResponse(r *http.Request, file *model.File) (fileResponse, error) {
	url, err := h.fileService.URL(r.Context(), file)
	if err != nil {
		return fileResponse{}, err
	}

	return fileResponse{
		ID:           file.ID,
		OriginalName: file.OriginalName,
		MimeType:     file.MimeType,
		Size:         file.Size,
		URL:          url,
	}, nil
}
