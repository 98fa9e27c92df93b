package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_task_store.go -package=mocks codemarks/internal/storage TaskStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TaskStore defines the interface for task storage operations.
type TaskStore interface {
	// Append inserts a task at the end of its process.
	// A UUID is generated when task.ID is empty; task.Position is set by the store.
	Append(ctx context.Context, task *TaskRecord) error

	// GetByID gets a task by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// ListByProcess returns the tasks of a process ordered by position.
	ListByProcess(ctx context.Context, processID string) ([]TaskRecord, error)

	// Update saves state, title and target fields. Returns ErrNotFound if not found.
	Update(ctx context.Context, task *TaskRecord) error

	// Delete removes a task. Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
}

// TaskRepo provides methods for task operations.
// It implements the TaskStore interface.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo creates a new TaskRepo.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, process_id, position, done, title, target_script, target_index, target_key"

// Append inserts a task after the last task of its process.
func (r *TaskRepo) Append(ctx context.Context, task *TaskRecord) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, process_id, position, done, title, target_script, target_index, target_key)
		 SELECT ?, ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?, ?, ? FROM tasks WHERE process_id = ?`,
		task.ID, task.ProcessID, task.Done, task.Title, task.TargetScript, task.TargetIndex, task.TargetKey, task.ProcessID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	created, err := r.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	*task = *created
	return nil
}

// GetByID gets a task by its ID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*TaskRecord, error) {
	var t TaskRecord
	err := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id).
		Scan(&t.ID, &t.ProcessID, &t.Position, &t.Done, &t.Title, &t.TargetScript, &t.TargetIndex, &t.TargetKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &t, nil
}

// ListByProcess returns the tasks of a process ordered by position.
// Returns an empty slice if the process has no tasks (not an error).
func (r *TaskRepo) ListByProcess(ctx context.Context, processID string) ([]TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE process_id = ? ORDER BY position",
		processID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := []TaskRecord{}
	for rows.Next() {
		var t TaskRecord
		if err := rows.Scan(&t.ID, &t.ProcessID, &t.Position, &t.Done, &t.Title, &t.TargetScript, &t.TargetIndex, &t.TargetKey); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// Update saves state, title and target fields.
func (r *TaskRepo) Update(ctx context.Context, task *TaskRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET done = ?, title = ?, target_script = ?, target_index = ?, target_key = ?
		 WHERE id = ?`,
		task.Done, task.Title, task.TargetScript, task.TargetIndex, task.TargetKey, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(result)
}
