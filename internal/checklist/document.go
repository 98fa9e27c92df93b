package checklist

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"codemarks/internal/contextutil"
	"codemarks/internal/storage"
)

//go:embed schema/process.schema.json
var processSchemaJSON string

var processSchema = jsonschema.MustCompileString("process.schema.json", processSchemaJSON)

// document is the on-disk form of an exported process.
type document struct {
	Name             string         `json:"name"`
	ShortDescription string         `json:"shortDescription"`
	FullDescription  string         `json:"fullDescription"`
	Tasks            []documentTask `json:"tasks"`
}

type documentTask struct {
	State        bool   `json:"state"`
	Title        string `json:"title"`
	TargetScript string `json:"targetScript"`
	TargetIndex  int    `json:"targetIndex"`
	TargetKey    string `json:"targetKey,omitempty"`
}

// Export writes a process as an indented JSON document into the configured storage path
// and returns the file written. A relative storage path is resolved against the code root.
func (s *Service) Export(ctx context.Context, processID string) (string, error) {
	current, err := s.index.Settings(ctx)
	if err != nil {
		return "", WrapError(err, "failed to load settings")
	}
	dir := strings.TrimSpace(current.StoragePath)
	if dir == "" {
		return "", &ValidationError{Field: "storagePath", Message: "is not configured"}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.root, dir)
	}

	rec, err := s.getProcessRecord(ctx, processID)
	if err != nil {
		return "", err
	}
	tasks, err := s.tasks.ListByProcess(ctx, processID)
	if err != nil {
		return "", WrapError(err, "failed to list tasks")
	}

	doc := document{
		Name:             rec.Name,
		ShortDescription: rec.ShortDescription,
		FullDescription:  rec.FullDescription,
		Tasks:            make([]documentTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, documentTask{
			State:        t.Done,
			Title:        t.Title,
			TargetScript: t.TargetScript,
			TargetIndex:  t.TargetIndex,
			TargetKey:    t.TargetKey,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", WrapError(err, "failed to encode process")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", WrapError(err, "failed to create storage directory")
	}

	path := filepath.Join(dir, exportFileName(rec)+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", WrapError(err, "failed to write process document")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "process exported", "process_id", processID, "path", path, "tasks", len(doc.Tasks))
	return path, nil
}

// Import creates a new process from an exported document.
// A name already in use gets the first free numeric suffix.
func (s *Service) Import(ctx context.Context, data []byte) (*Process, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Field: "document", Message: "invalid JSON: " + err.Error()}
	}
	if err := processSchema.Validate(raw); err != nil {
		return nil, schemaValidationError(err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Message: err.Error()}
	}

	base := strings.TrimSpace(doc.Name)
	if base == "" {
		base = defaultProcessName
	}
	rec := &storage.ProcessRecord{
		ShortDescription: doc.ShortDescription,
		FullDescription:  doc.FullDescription,
	}
	if err := s.createUnique(ctx, base, rec); err != nil {
		return nil, err
	}

	for _, t := range doc.Tasks {
		task := &storage.TaskRecord{
			ProcessID:    rec.ID,
			Done:         t.State,
			Title:        t.Title,
			TargetScript: t.TargetScript,
			TargetIndex:  t.TargetIndex,
			TargetKey:    t.TargetKey,
		}
		if err := s.tasks.Append(ctx, task); err != nil {
			if delErr := s.processes.Delete(ctx, rec.ID); delErr != nil {
				contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to remove partially imported process", "process_id", rec.ID, "error", delErr)
			}
			return nil, WrapError(err, "failed to import task")
		}
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "process imported", "process_id", rec.ID, "name", rec.Name, "tasks", len(doc.Tasks))
	return s.GetProcess(ctx, rec.ID)
}

// exportFileName slugs the process name, falling back to the ID.
func exportFileName(rec *storage.ProcessRecord) string {
	if name, err := slug.Normalize(rec.Name); err == nil && name != "" {
		return name
	}
	return rec.ID
}

// schemaValidationError reports the first leaf cause of a schema failure.
func schemaValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Field: "document", Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	field := strings.TrimPrefix(strings.TrimSpace(ve.InstanceLocation), "/")
	if field == "" {
		field = "document"
	}
	return &ValidationError{Field: field, Message: ve.Message}
}
