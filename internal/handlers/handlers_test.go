package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"codemarks/internal/checklist"
	"codemarks/internal/marker"
	"codemarks/internal/settings"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeIndex is a MarkerIndex over a fixed catalog.
type fakeIndex struct {
	settings  settings.Settings
	catalog   *marker.Catalog
	stats     marker.ScanStats
	scanned   bool
	reloadErr error
	markerErr error
}

func newFakeIndex() *fakeIndex {
	files := []marker.SourceFile{
		{Name: "Main", Text: "package main\n// TODO : first\n\n// TODO : second\n"},
		{Name: "Util", Text: "// TODO : helper\n"},
	}
	cat, stats := marker.Scan("TODO", files)
	return &fakeIndex{
		settings: settings.Settings{Marker: "TODO"},
		catalog:  cat,
		stats:    stats,
		scanned:  true,
	}
}

func (f *fakeIndex) Catalog(context.Context) *marker.Catalog { return f.catalog }

func (f *fakeIndex) ScriptNames(context.Context) []string { return f.catalog.ScriptNames() }

func (f *fakeIndex) Reload(context.Context) (marker.ScanStats, error) { return f.stats, f.reloadErr }

func (f *fakeIndex) Stats() (marker.ScanStats, time.Time, bool) {
	return f.stats, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), f.scanned
}

func (f *fakeIndex) Stale() bool { return !f.scanned }

func (f *fakeIndex) Settings(context.Context) (settings.Settings, error) { return f.settings, nil }

func (f *fakeIndex) SetMarker(_ context.Context, token string) (marker.ScanStats, error) {
	if f.markerErr != nil {
		return marker.ScanStats{}, f.markerErr
	}
	f.settings.Marker = token
	return f.stats, nil
}

func (f *fakeIndex) SetStoragePath(_ context.Context, path string) error {
	f.settings.StoragePath = path
	return nil
}

// stubService embeds the interface so tests only implement what they call.
type stubService struct {
	ChecklistService
	err     error
	created string
}

func (s *stubService) CreateProcess(_ context.Context, name string) (*checklist.Process, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = name
	return &checklist.Process{ID: "p1", Name: name}, nil
}

func (s *stubService) GetProcess(_ context.Context, id string) (*checklist.Process, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &checklist.Process{ID: id}, nil
}

func (s *stubService) RemoveTask(context.Context, string, string) error { return s.err }

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation error",
			err:        &checklist.ValidationError{Field: "name", Message: "cannot be empty"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Validation error: validation error on field name: cannot be empty",
		},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("outer: %w", &checklist.ValidationError{Field: "storagePath", Message: "is not configured"}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        checklist.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Resource not found",
		},
		{
			name:       "target not found",
			err:        fmt.Errorf("%w: Main[3]", checklist.ErrTargetNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "target not found: Main[3]",
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(w, context.Background(), tt.err, "Failed")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decode[ErrorResponse](t, w)
			if tt.wantMsg != "" && resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestCatalogHandler(t *testing.T) {
	h := NewCatalogHandler(newFakeIndex())
	r := chi.NewRouter()
	r.Get("/scripts", h.Scripts)
	r.Get("/scripts/{name}", h.Script)
	r.Get("/scripts/{name}/lines/{ordinal}", h.Line)
	r.Get("/stats", h.Stats)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "scripts", path: "/scripts", wantStatus: http.StatusOK, wantBody: `{"scripts":["Main","Util"]}`},
		{name: "script", path: "/scripts/Util", wantStatus: http.StatusOK, wantBody: `{"name":"Util","index":1,"labels":["helper"]}`},
		{name: "unknown script", path: "/scripts/Nope", wantStatus: http.StatusNotFound},
		{name: "line", path: "/scripts/Main/lines/1", wantStatus: http.StatusOK, wantBody: `{"name":"Main","ordinal":1,"line":4,"label":"second"}`},
		{name: "line out of range", path: "/scripts/Main/lines/2", wantStatus: http.StatusNotFound},
		{name: "negative ordinal", path: "/scripts/Main/lines/-1", wantStatus: http.StatusNotFound},
		{name: "bad ordinal", path: "/scripts/Main/lines/x", wantStatus: http.StatusBadRequest},
		{name: "stats", path: "/stats", wantStatus: http.StatusOK, wantBody: `"scannedAt":"2026-01-02T03:04:05Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("GET %s body = %s, want it to contain %s", tt.path, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestCatalogHandler_RefreshFailure(t *testing.T) {
	idx := newFakeIndex()
	idx.reloadErr = errors.New("walk failed")
	h := NewCatalogHandler(idx)

	w := httptest.NewRecorder()
	h.Refresh(w, httptest.NewRequest(http.MethodPost, "/refresh", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Refresh() status = %d, want 500", w.Code)
	}
}

func TestSettingsHandler_Put(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		markerErr  error
		wantStatus int
		want       settings.Settings
		wantStats  bool
	}{
		{
			name:       "marker only",
			body:       `{"marker": "FIXME"}`,
			wantStatus: http.StatusOK,
			want:       settings.Settings{Marker: "FIXME"},
			wantStats:  true,
		},
		{
			name:       "storage path only",
			body:       `{"storagePath": "lists"}`,
			wantStatus: http.StatusOK,
			want:       settings.Settings{Marker: "TODO", StoragePath: "lists"},
		},
		{
			name:       "empty body keeps settings",
			body:       ``,
			wantStatus: http.StatusOK,
			want:       settings.Settings{Marker: "TODO"},
		},
		{
			name:       "invalid body",
			body:       `{"marker": `,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "save failure",
			body:       `{"marker": "X"}`,
			markerErr:  errors.New("read-only"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newFakeIndex()
			idx.markerErr = tt.markerErr
			h := NewSettingsHandler(idx)

			w := httptest.NewRecorder()
			h.Put(w, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("Put() status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decode[SettingsResponse](t, w)
			if resp.Settings != tt.want {
				t.Errorf("Put() settings = %+v, want %+v", resp.Settings, tt.want)
			}
			if (resp.Stats != nil) != tt.wantStats {
				t.Errorf("Put() stats present = %v, want %v", resp.Stats != nil, tt.wantStats)
			}
		})
	}
}

func TestProcessHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantName   string
	}{
		{name: "no body", body: "", wantStatus: http.StatusCreated, wantName: ""},
		{name: "named", body: `{"name": "Release"}`, wantStatus: http.StatusCreated, wantName: "Release"},
		{name: "invalid body", body: `[`, wantStatus: http.StatusBadRequest},
		{
			name:       "name in use",
			body:       `{"name": "Release"}`,
			err:        &checklist.ValidationError{Field: "name", Message: "already in use"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			h := NewProcessHandler(svc)

			w := httptest.NewRecorder()
			h.Create(w, httptest.NewRequest(http.MethodPost, "/api/processes", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("Create() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusCreated && svc.created != tt.wantName {
				t.Errorf("CreateProcess() called with %q, want %q", svc.created, tt.wantName)
			}
		})
	}
}

func TestProcessHandler_GetUsesURLParam(t *testing.T) {
	h := NewProcessHandler(&stubService{})
	r := chi.NewRouter()
	r.Get("/api/processes/{id}", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/processes/abc", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Get() status = %d, want 200", w.Code)
	}
	if proc := decode[checklist.Process](t, w); proc.ID != "abc" {
		t.Errorf("Get() id = %q, want abc", proc.ID)
	}
}

func TestTaskHandler_DeleteNotFound(t *testing.T) {
	h := NewTaskHandler(&stubService{err: checklist.ErrNotFound})

	w := httptest.NewRecorder()
	h.Delete(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Delete() status = %d, want 404", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name        string
		pingErr     error
		scanned     bool
		method      string
		wantStatus  int
		wantCatalog string
	}{
		{name: "healthy", scanned: true, method: http.MethodGet, wantStatus: http.StatusOK, wantCatalog: "ok"},
		{name: "not scanned yet", scanned: false, method: http.MethodGet, wantStatus: http.StatusOK, wantCatalog: "not_scanned"},
		{name: "database down", pingErr: errors.New("closed"), scanned: true, method: http.MethodGet, wantStatus: http.StatusServiceUnavailable, wantCatalog: "ok"},
		{name: "wrong method", method: http.MethodPost, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newFakeIndex()
			idx.scanned = tt.scanned
			h := NewHealthHandler(fakePinger{err: tt.pingErr}, idx)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.method != http.MethodGet {
				return
			}
			resp := decode[HealthResponse](t, w)
			if resp.Checks["catalog"] != tt.wantCatalog {
				t.Errorf("catalog check = %q, want %q", resp.Checks["catalog"], tt.wantCatalog)
			}
			if tt.pingErr != nil && len(resp.Issues) == 0 {
				t.Error("expected issues when the database is down")
			}
		})
	}
}
