package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"codemarks/internal/checklist"
	"codemarks/internal/contextutil"
)

// TaskHandler handles HTTP requests for the tasks of a process.
type TaskHandler struct {
	service ChecklistService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service ChecklistService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Add handles POST /api/processes/{id}/tasks. An empty body adds an empty task.
func (h *TaskHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checklist.TaskUpdate
	if err := decodeJSON(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.AddTask(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to add task")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, task)
}

// Update handles PATCH /api/processes/{id}/tasks/{taskID}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checklist.TaskUpdate
	if err := decodeJSON(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.UpdateTask(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update task")
		return
	}
	writeJSON(ctx, w, http.StatusOK, task)
}

// Toggle handles POST /api/processes/{id}/tasks/{taskID}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.ToggleTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to toggle task")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, task)
}

// Relink handles POST /api/processes/{id}/tasks/{taskID}/relink.
func (h *TaskHandler) Relink(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Relink(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to relink task")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, task)
}

// Open handles POST /api/processes/{id}/tasks/{taskID}/open.
func (h *TaskHandler) Open(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.OpenTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to open task")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

// Delete handles DELETE /api/processes/{id}/tasks/{taskID}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID")); err != nil {
		handleServiceError(w, r.Context(), err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
