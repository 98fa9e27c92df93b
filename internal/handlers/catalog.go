package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"codemarks/internal/contextutil"
	"codemarks/internal/marker"
	"codemarks/internal/settings"
)

// MarkerIndex is the part of marker.Index the HTTP layer uses.
type MarkerIndex interface {
	Catalog(ctx context.Context) *marker.Catalog
	ScriptNames(ctx context.Context) []string
	Reload(ctx context.Context) (marker.ScanStats, error)
	Stats() (marker.ScanStats, time.Time, bool)
	Stale() bool
	Settings(ctx context.Context) (settings.Settings, error)
	SetMarker(ctx context.Context, token string) (marker.ScanStats, error)
	SetStoragePath(ctx context.Context, path string) error
}

// CatalogHandler serves the marker catalog.
type CatalogHandler struct {
	index MarkerIndex
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(index MarkerIndex) *CatalogHandler {
	return &CatalogHandler{index: index}
}

// ScriptsResponse lists the files carrying marker lines.
type ScriptsResponse struct {
	Scripts []string `json:"scripts"`
}

// ScriptResponse describes one file of the catalog.
type ScriptResponse struct {
	Name   string   `json:"name"`
	Index  int      `json:"index"`
	Labels []string `json:"labels"`
}

// LineResponse resolves an ordinal to a line.
type LineResponse struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Line    int    `json:"line"` // 1-based
	Label   string `json:"label"`
}

// StatsResponse reports the last scan.
type StatsResponse struct {
	Stats     marker.ScanStats `json:"stats"`
	ScannedAt string           `json:"scannedAt,omitempty"`
	Stale     bool             `json:"stale"`
}

// Scripts handles GET /api/catalog/scripts.
func (h *CatalogHandler) Scripts(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, ScriptsResponse{Scripts: h.index.ScriptNames(r.Context())})
}

// Script handles GET /api/catalog/scripts/{name}.
func (h *CatalogHandler) Script(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cat := h.index.Catalog(r.Context())

	idx := cat.ScriptIndex(name)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Script not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, ScriptResponse{
		Name:   name,
		Index:  idx,
		Labels: cat.Labels(name),
	})
}

// Line handles GET /api/catalog/scripts/{name}/lines/{ordinal}.
func (h *CatalogHandler) Line(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ordinal, err := strconv.Atoi(chi.URLParam(r, "ordinal"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Ordinal must be an integer")
		return
	}

	cat := h.index.Catalog(r.Context())
	line, ok := cat.LineNumber(name, ordinal)
	if !ok {
		writeError(w, http.StatusNotFound, "Marker line not found")
		return
	}
	label, _ := cat.Label(name, ordinal)

	writeJSON(r.Context(), w, http.StatusOK, LineResponse{
		Name:    name,
		Ordinal: ordinal,
		Line:    line,
		Label:   label,
	})
}

// Refresh handles POST /api/catalog/refresh.
// Settings are re-read from disk before the rescan.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "catalog refresh triggered via API")
	if _, err := h.index.Reload(ctx); err != nil {
		logger.ErrorContext(ctx, "catalog refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to refresh catalog")
		return
	}
	h.writeStats(w, r)
}

// Stats handles GET /api/catalog/stats.
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.index.Stats(); !ok {
		h.index.Catalog(r.Context())
	}
	h.writeStats(w, r)
}

func (h *CatalogHandler) writeStats(w http.ResponseWriter, r *http.Request) {
	stats, scannedAt, ok := h.index.Stats()
	resp := StatsResponse{Stats: stats, Stale: h.index.Stale()}
	if ok {
		resp.ScannedAt = scannedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}
