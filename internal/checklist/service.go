// Package checklist manages processes (named checklists) whose tasks point at marker lines.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codemarks/internal/contextutil"
	"codemarks/internal/marker"
	"codemarks/internal/opener"
	"codemarks/internal/settings"
	"codemarks/internal/storage"
)

const (
	defaultProcessName = "NewProcess"
	maxNameAttempts    = 10000
)

// CatalogIndex is the marker index as seen from the checklist service.
type CatalogIndex interface {
	Catalog(ctx context.Context) *marker.Catalog
	Settings(ctx context.Context) (settings.Settings, error)
}

// Locator maps a catalog file name to its path on disk.
type Locator interface {
	Locate(name string, occurrence int) (string, bool)
}

// Service implements process and task operations on top of the stores and the marker index.
type Service struct {
	processes storage.ProcessStore
	tasks     storage.TaskStore
	index     CatalogIndex
	locator   Locator
	opener    opener.Opener
	root      string // relative storage paths are resolved against it
}

// NewService creates a new Service. A nil opener disables OpenTask's editor launch.
func NewService(processes storage.ProcessStore, tasks storage.TaskStore, index CatalogIndex, locator Locator, open opener.Opener, root string) *Service {
	if open == nil {
		open = opener.Disabled{}
	}
	return &Service{
		processes: processes,
		tasks:     tasks,
		index:     index,
		locator:   locator,
		opener:    open,
		root:      root,
	}
}

// CreateProcess creates an empty process.
// A blank name picks the first free name out of NewProcess, NewProcess1, NewProcess2, ...
func (s *Service) CreateProcess(ctx context.Context, name string) (*Process, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rec := &storage.ProcessRecord{}
	name = strings.TrimSpace(name)
	if name == "" {
		if err := s.createUnique(ctx, defaultProcessName, rec); err != nil {
			return nil, err
		}
	} else {
		rec.Name = name
		if err := s.processes.Create(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return nil, &ValidationError{Field: "name", Message: "already in use"}
			}
			return nil, WrapError(err, "failed to create process")
		}
	}

	logger.InfoContext(ctx, "process created", "process_id", rec.ID, "name", rec.Name)
	return processFromRecord(rec), nil
}

// createUnique inserts rec under base, or base followed by the first free number.
func (s *Service) createUnique(ctx context.Context, base string, rec *storage.ProcessRecord) error {
	existing, err := s.processes.List(ctx)
	if err != nil {
		return WrapError(err, "failed to list processes")
	}
	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[p.Name] = struct{}{}
	}

	for i := 0; i < maxNameAttempts; i++ {
		name := base
		if i > 0 {
			name = base + strconv.Itoa(i)
		}
		if _, ok := taken[name]; ok {
			continue
		}

		rec.Name = name
		err := s.processes.Create(ctx, rec)
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost a race with another writer.
			taken[name] = struct{}{}
			continue
		}
		if err != nil {
			return WrapError(err, "failed to create process")
		}
		return nil
	}
	return fmt.Errorf("failed to find a free process name for %q", base)
}

// ListProcesses returns all processes without their tasks.
func (s *Service) ListProcesses(ctx context.Context) ([]Process, error) {
	records, err := s.processes.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list processes")
	}
	out := make([]Process, 0, len(records))
	for i := range records {
		out = append(out, *processFromRecord(&records[i]))
	}
	return out, nil
}

// GetProcess returns a process with its tasks resolved against the current catalog
// and its full description rendered to HTML.
func (s *Service) GetProcess(ctx context.Context, id string) (*Process, error) {
	rec, err := s.getProcessRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.tasks.ListByProcess(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to list tasks")
	}

	cat := s.index.Catalog(ctx)
	proc := processFromRecord(rec)
	proc.Tasks = make([]Task, 0, len(records))
	for i := range records {
		proc.Tasks = append(proc.Tasks, resolveTask(cat, &records[i]))
	}

	html, err := RenderDescription(proc.FullDescription)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render description", "process_id", id, "error", err)
	} else {
		proc.DescriptionHTML = html
	}
	return proc, nil
}

// UpdateProcess changes the name and descriptions of a process.
func (s *Service) UpdateProcess(ctx context.Context, id string, upd ProcessUpdate) (*Process, error) {
	rec, err := s.getProcessRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
		}
		rec.Name = name
	}
	if upd.ShortDescription != nil {
		rec.ShortDescription = *upd.ShortDescription
	}
	if upd.FullDescription != nil {
		rec.FullDescription = *upd.FullDescription
	}

	if err := s.processes.Update(ctx, rec); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nil, &ValidationError{Field: "name", Message: "already in use"}
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to update process")
	}
	return s.GetProcess(ctx, id)
}

// DeleteProcess removes a process and its tasks.
func (s *Service) DeleteProcess(ctx context.Context, id string) error {
	if err := s.processes.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return WrapError(err, "failed to delete process")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "process deleted", "process_id", id)
	return nil
}

func (s *Service) getProcessRecord(ctx context.Context, id string) (*storage.ProcessRecord, error) {
	rec, err := s.processes.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to get process")
	}
	return rec, nil
}
