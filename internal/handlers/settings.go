package handlers

import (
	"net/http"

	"codemarks/internal/contextutil"
	"codemarks/internal/marker"
	"codemarks/internal/settings"
)

// SettingsHandler reads and edits the marker settings.
type SettingsHandler struct {
	index MarkerIndex
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(index MarkerIndex) *SettingsHandler {
	return &SettingsHandler{index: index}
}

// SettingsRequest carries the fields to change; omitted fields are kept.
type SettingsRequest struct {
	Marker      *string `json:"marker"`
	StoragePath *string `json:"storagePath"`
}

// SettingsResponse is the current settings, plus scan stats when the marker changed.
type SettingsResponse struct {
	settings.Settings
	Stats *marker.ScanStats `json:"stats,omitempty"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.index.Settings(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(ctx, w, http.StatusOK, SettingsResponse{Settings: current})
}

// Put handles PUT /api/settings.
// Changing the marker persists it and rescans; changing the storage path only persists.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var resp SettingsResponse
	if req.StoragePath != nil {
		if err := h.index.SetStoragePath(ctx, *req.StoragePath); err != nil {
			logger.ErrorContext(ctx, "failed to save storage path", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}
	if req.Marker != nil {
		stats, err := h.index.SetMarker(ctx, *req.Marker)
		if err != nil {
			logger.ErrorContext(ctx, "failed to apply marker", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		resp.Stats = &stats
	}

	current, err := h.index.Settings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	resp.Settings = current
	writeJSON(ctx, w, http.StatusOK, resp)
}
