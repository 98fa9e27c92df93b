package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"codemarks/internal/checklist"
	"codemarks/internal/contextutil"
)

// ChecklistService is the checklist service as seen from the HTTP layer.
type ChecklistService interface {
	CreateProcess(ctx context.Context, name string) (*checklist.Process, error)
	ListProcesses(ctx context.Context) ([]checklist.Process, error)
	GetProcess(ctx context.Context, id string) (*checklist.Process, error)
	UpdateProcess(ctx context.Context, id string, upd checklist.ProcessUpdate) (*checklist.Process, error)
	DeleteProcess(ctx context.Context, id string) error
	Export(ctx context.Context, processID string) (string, error)
	Import(ctx context.Context, data []byte) (*checklist.Process, error)
	Resync(ctx context.Context, processID string) (*checklist.SyncReport, error)

	AddTask(ctx context.Context, processID string, in checklist.TaskUpdate) (*checklist.Task, error)
	UpdateTask(ctx context.Context, processID, taskID string, upd checklist.TaskUpdate) (*checklist.Task, error)
	ToggleTask(ctx context.Context, processID, taskID string) (*checklist.Task, error)
	RemoveTask(ctx context.Context, processID, taskID string) error
	Relink(ctx context.Context, processID, taskID string) (*checklist.Task, error)
	OpenTask(ctx context.Context, processID, taskID string) (*checklist.OpenResult, error)
}

// ProcessHandler handles HTTP requests for processes.
type ProcessHandler struct {
	service ChecklistService
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(service ChecklistService) *ProcessHandler {
	return &ProcessHandler{service: service}
}

// CreateProcessRequest is the optional body of POST /api/processes.
type CreateProcessRequest struct {
	Name string `json:"name"`
}

// ProcessListResponse wraps the process list.
type ProcessListResponse struct {
	Processes []checklist.Process `json:"processes"`
}

// ExportResponse names the written document.
type ExportResponse struct {
	Path string `json:"path"`
}

// List handles GET /api/processes.
func (h *ProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	processes, err := h.service.ListProcesses(r.Context())
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to list processes")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, ProcessListResponse{Processes: processes})
}

// Create handles POST /api/processes.
func (h *ProcessHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	proc, err := h.service.CreateProcess(ctx, req.Name)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create process")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, proc)
}

// Import handles POST /api/processes/import. The body is an exported process document.
func (h *ProcessHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	proc, err := h.service.Import(ctx, data)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to import process")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, proc)
}

// Get handles GET /api/processes/{id}.
func (h *ProcessHandler) Get(w http.ResponseWriter, r *http.Request) {
	proc, err := h.service.GetProcess(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to get process")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, proc)
}

// Update handles PATCH /api/processes/{id}.
func (h *ProcessHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checklist.ProcessUpdate
	if err := decodeJSON(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	proc, err := h.service.UpdateProcess(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update process")
		return
	}
	writeJSON(ctx, w, http.StatusOK, proc)
}

// Delete handles DELETE /api/processes/{id}.
func (h *ProcessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProcess(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r.Context(), err, "Failed to delete process")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/processes/{id}/export.
func (h *ProcessHandler) Export(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to export process")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, ExportResponse{Path: path})
}

// Resync handles GET /api/processes/{id}/resync.
func (h *ProcessHandler) Resync(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Resync(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to resync process")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, report)
}
