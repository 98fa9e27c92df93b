package checklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codemarks/internal/contextutil"
	"codemarks/internal/marker"
	"codemarks/internal/opener"
	"codemarks/internal/storage"
)

// AddTask appends a task to a process. A zero TaskUpdate adds an empty task.
func (s *Service) AddTask(ctx context.Context, processID string, in TaskUpdate) (*Task, error) {
	if _, err := s.getProcessRecord(ctx, processID); err != nil {
		return nil, err
	}

	cat := s.index.Catalog(ctx)
	rec := &storage.TaskRecord{ProcessID: processID}
	if err := applyTaskUpdate(cat, rec, in); err != nil {
		return nil, err
	}

	if err := s.tasks.Append(ctx, rec); err != nil {
		return nil, WrapError(err, "failed to add task")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "task added",
		"process_id", processID, "task_id", rec.ID, "target_script", rec.TargetScript, "target_index", rec.TargetIndex)
	task := resolveTask(cat, rec)
	return &task, nil
}

// UpdateTask changes the title or target of a task.
// A new target must resolve against the current catalog; its label key is recorded.
func (s *Service) UpdateTask(ctx context.Context, processID, taskID string, upd TaskUpdate) (*Task, error) {
	rec, err := s.getTaskRecord(ctx, processID, taskID)
	if err != nil {
		return nil, err
	}

	cat := s.index.Catalog(ctx)
	if err := applyTaskUpdate(cat, rec, upd); err != nil {
		return nil, err
	}
	if err := s.saveTask(ctx, rec); err != nil {
		return nil, err
	}

	task := resolveTask(cat, rec)
	return &task, nil
}

// ToggleTask flips the done state of a task.
func (s *Service) ToggleTask(ctx context.Context, processID, taskID string) (*Task, error) {
	rec, err := s.getTaskRecord(ctx, processID, taskID)
	if err != nil {
		return nil, err
	}

	rec.Done = !rec.Done
	if err := s.saveTask(ctx, rec); err != nil {
		return nil, err
	}

	task := resolveTask(s.index.Catalog(ctx), rec)
	return &task, nil
}

// RemoveTask deletes a task from a process.
func (s *Service) RemoveTask(ctx context.Context, processID, taskID string) error {
	if _, err := s.getTaskRecord(ctx, processID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return WrapError(err, "failed to delete task")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "task removed", "process_id", processID, "task_id", taskID)
	return nil
}

// Resync compares every task's stored ordinal with the key recorded when the target was set.
// It only reports; nothing is rewritten.
func (s *Service) Resync(ctx context.Context, processID string) (*SyncReport, error) {
	if _, err := s.getProcessRecord(ctx, processID); err != nil {
		return nil, err
	}
	records, err := s.tasks.ListByProcess(ctx, processID)
	if err != nil {
		return nil, WrapError(err, "failed to list tasks")
	}

	cat := s.index.Catalog(ctx)
	report := &SyncReport{ProcessID: processID, Tasks: make([]TaskSync, 0, len(records))}
	for i := range records {
		ts := syncTask(cat, &records[i])
		if ts.Status == SyncMoved || ts.Status == SyncMissing {
			report.Drifted++
		}
		report.Tasks = append(report.Tasks, ts)
	}

	if report.Drifted > 0 {
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "process targets drifted", "process_id", processID, "drifted", report.Drifted)
	}
	return report, nil
}

// Relink moves a task's ordinal to wherever its recorded key now lives.
func (s *Service) Relink(ctx context.Context, processID, taskID string) (*Task, error) {
	rec, err := s.getTaskRecord(ctx, processID, taskID)
	if err != nil {
		return nil, err
	}
	if rec.TargetScript == "" {
		return nil, &ValidationError{Field: "targetScript", Message: "task has no target"}
	}
	if rec.TargetKey == "" {
		return nil, &ValidationError{Field: "targetKey", Message: "task has no key to relink from"}
	}

	cat := s.index.Catalog(ctx)
	ordinal, ok := cat.Find(rec.TargetScript, rec.TargetKey)
	if !ok {
		return nil, fmt.Errorf("%w: no line in %s matches the recorded key", ErrTargetNotFound, rec.TargetScript)
	}

	if ordinal != rec.TargetIndex {
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "task relinked",
			"task_id", rec.ID, "target_script", rec.TargetScript, "from", rec.TargetIndex, "to", ordinal)
		rec.TargetIndex = ordinal
		if err := s.saveTask(ctx, rec); err != nil {
			return nil, err
		}
	}

	task := resolveTask(cat, rec)
	return &task, nil
}

// OpenTask resolves a task to a file path and 1-based line and hands it to the opener.
// With no opener configured the location is still returned with Opened set to false.
func (s *Service) OpenTask(ctx context.Context, processID, taskID string) (*OpenResult, error) {
	rec, err := s.getTaskRecord(ctx, processID, taskID)
	if err != nil {
		return nil, err
	}
	if rec.TargetScript == "" {
		return nil, &ValidationError{Field: "targetScript", Message: "task has no target"}
	}

	cat := s.index.Catalog(ctx)
	line, ok := cat.LineNumber(rec.TargetScript, rec.TargetIndex)
	if !ok {
		return nil, fmt.Errorf("%w: %s[%d]", ErrTargetNotFound, rec.TargetScript, rec.TargetIndex)
	}
	occurrence, _ := cat.Occurrence(rec.TargetScript)
	path, ok := s.locator.Locate(rec.TargetScript, occurrence)
	if !ok {
		return nil, fmt.Errorf("%w: no file for %s", ErrTargetNotFound, rec.TargetScript)
	}

	result := &OpenResult{Path: path, Line: line}
	err = s.opener.Open(ctx, path, line)
	switch {
	case errors.Is(err, opener.ErrDisabled):
	case err != nil:
		return nil, WrapError(err, "failed to open task target")
	default:
		result.Opened = true
	}
	return result, nil
}

func (s *Service) getTaskRecord(ctx context.Context, processID, taskID string) (*storage.TaskRecord, error) {
	rec, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to get task")
	}
	if rec.ProcessID != processID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Service) saveTask(ctx context.Context, rec *storage.TaskRecord) error {
	if err := s.tasks.Update(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return WrapError(err, "failed to update task")
	}
	return nil
}

func applyTaskUpdate(cat *marker.Catalog, rec *storage.TaskRecord, upd TaskUpdate) error {
	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.TargetScript == nil && upd.TargetIndex == nil {
		return nil
	}

	script := rec.TargetScript
	if upd.TargetScript != nil {
		script = strings.TrimSpace(*upd.TargetScript)
	}
	ordinal := rec.TargetIndex
	if upd.TargetIndex != nil {
		ordinal = *upd.TargetIndex
	}

	if script == "" {
		rec.TargetScript = ""
		rec.TargetIndex = 0
		rec.TargetKey = ""
		return nil
	}
	if ordinal < 0 {
		return &ValidationError{Field: "targetIndex", Message: "must not be negative"}
	}

	label, ok := cat.Label(script, ordinal)
	if !ok {
		return fmt.Errorf("%w: %s[%d]", ErrTargetNotFound, script, ordinal)
	}
	rec.TargetScript = script
	rec.TargetIndex = ordinal
	rec.TargetKey = marker.Key(script, label)
	return nil
}

func resolveTask(cat *marker.Catalog, rec *storage.TaskRecord) Task {
	task := Task{
		ID:                rec.ID,
		Done:              rec.Done,
		Title:             rec.Title,
		TargetScript:      rec.TargetScript,
		TargetScriptIndex: cat.ScriptIndex(rec.TargetScript),
		TargetIndex:       rec.TargetIndex,
		TargetKey:         rec.TargetKey,
	}
	if line, ok := cat.LineNumber(rec.TargetScript, rec.TargetIndex); ok {
		task.Line = line
		task.Label, _ = cat.Label(rec.TargetScript, rec.TargetIndex)
	}
	return task
}

func syncTask(cat *marker.Catalog, rec *storage.TaskRecord) TaskSync {
	ts := TaskSync{
		TaskID:         rec.ID,
		Title:          rec.Title,
		TargetScript:   rec.TargetScript,
		TargetIndex:    rec.TargetIndex,
		SuggestedIndex: -1,
	}

	switch {
	case rec.TargetScript == "":
		ts.Status = SyncUnset
	case rec.TargetKey == "":
		ts.Status = SyncUnkeyed
	default:
		if label, ok := cat.Label(rec.TargetScript, rec.TargetIndex); ok && marker.Key(rec.TargetScript, label) == rec.TargetKey {
			ts.Status = SyncOK
		} else if ordinal, found := cat.Find(rec.TargetScript, rec.TargetKey); found {
			ts.Status = SyncMoved
			ts.SuggestedIndex = ordinal
		} else {
			ts.Status = SyncMissing
		}
	}
	return ts
}
