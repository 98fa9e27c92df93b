package checklist

import (
	"time"

	"codemarks/internal/storage"
)

// Process is a named checklist with its tasks.
type Process struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"shortDescription"`
	FullDescription  string    `json:"fullDescription"`
	DescriptionHTML  string    `json:"descriptionHtml,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Tasks            []Task    `json:"tasks,omitempty"`
}

// Task is a checklist item pointing at a marker line.
// TargetScriptIndex, Line and Label are resolved against the current catalog on every read.
type Task struct {
	ID                string `json:"id"`
	Done              bool   `json:"state"`
	Title             string `json:"title"`
	TargetScript      string `json:"targetScript"`
	TargetScriptIndex int    `json:"targetScriptIndex"` // -1 when the script has no markers
	TargetIndex       int    `json:"targetIndex"`
	TargetKey         string `json:"targetKey,omitempty"`
	Line              int    `json:"line,omitempty"` // 1-based; 0 when the target does not resolve
	Label             string `json:"label,omitempty"`
}

// ProcessUpdate carries the fields to change; nil fields are left as they are.
type ProcessUpdate struct {
	Name             *string `json:"name"`
	ShortDescription *string `json:"shortDescription"`
	FullDescription  *string `json:"fullDescription"`
}

// TaskUpdate carries the fields to change; nil fields are left as they are.
// Setting TargetScript to "" clears the target.
type TaskUpdate struct {
	Title        *string `json:"title"`
	TargetScript *string `json:"targetScript"`
	TargetIndex  *int    `json:"targetIndex"`
}

// Drift states reported by Resync.
const (
	SyncOK      = "ok"      // the stored key is still at the stored ordinal
	SyncMoved   = "moved"   // the key now lives at another ordinal; Relink would fix it
	SyncMissing = "missing" // the script or the key is gone
	SyncUnkeyed = "unkeyed" // no key recorded, nothing to compare against
	SyncUnset   = "unset"   // the task has no target
)

// TaskSync is the drift state of one task.
type TaskSync struct {
	TaskID         string `json:"taskId"`
	Title          string `json:"title"`
	TargetScript   string `json:"targetScript"`
	TargetIndex    int    `json:"targetIndex"`
	Status         string `json:"status"`
	SuggestedIndex int    `json:"suggestedIndex"` // -1 unless Status is moved
}

// SyncReport lists the drift state of every task in a process.
type SyncReport struct {
	ProcessID string     `json:"processId"`
	Tasks     []TaskSync `json:"tasks"`
	Drifted   int        `json:"drifted"`
}

// OpenResult is where a task points on disk.
type OpenResult struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Opened bool   `json:"opened"`
}

func processFromRecord(rec *storage.ProcessRecord) *Process {
	return &Process{
		ID:               rec.ID,
		Name:             rec.Name,
		ShortDescription: rec.ShortDescription,
		FullDescription:  rec.FullDescription,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}
