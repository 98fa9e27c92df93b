package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_process_store.go -package=mocks codemarks/internal/storage ProcessStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ProcessStore defines the interface for process storage operations.
type ProcessStore interface {
	// Create inserts a new process. A UUID is generated when process.ID is empty.
	// Returns ErrDuplicate if the name is taken.
	Create(ctx context.Context, process *ProcessRecord) error

	// GetByID gets a process by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ProcessRecord, error)

	// GetByName gets a process by its name. Returns ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (*ProcessRecord, error)

	// List returns all processes ordered by name.
	List(ctx context.Context) ([]ProcessRecord, error)

	// Update saves name and descriptions. Returns ErrNotFound or ErrDuplicate.
	Update(ctx context.Context, process *ProcessRecord) error

	// Delete removes a process and, through the foreign key, its tasks.
	Delete(ctx context.Context, id string) error
}

// ProcessRepo provides methods for process operations.
// It implements the ProcessStore interface.
type ProcessRepo struct {
	db *sql.DB
}

// NewProcessRepo creates a new ProcessRepo.
func NewProcessRepo(db *sql.DB) *ProcessRepo {
	return &ProcessRepo{db: db}
}

const processColumns = "id, name, short_description, full_description, created_at, updated_at"

// Create inserts a new process.
func (r *ProcessRepo) Create(ctx context.Context, process *ProcessRecord) error {
	if process.ID == "" {
		process.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO processes (id, name, short_description, full_description) VALUES (?, ?, ?, ?)",
		process.ID, process.Name, process.ShortDescription, process.FullDescription,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert process: %w", err)
	}

	created, err := r.GetByID(ctx, process.ID)
	if err != nil {
		return err
	}
	*process = *created
	return nil
}

// GetByID gets a process by its ID.
func (r *ProcessRepo) GetByID(ctx context.Context, id string) (*ProcessRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+processColumns+" FROM processes WHERE id = ?", id)
	return scanProcess(row)
}

// GetByName gets a process by its name.
func (r *ProcessRepo) GetByName(ctx context.Context, name string) (*ProcessRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+processColumns+" FROM processes WHERE name = ?", name)
	return scanProcess(row)
}

// List returns all processes ordered by name.
// Returns an empty slice if there are none.
func (r *ProcessRepo) List(ctx context.Context) ([]ProcessRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+processColumns+" FROM processes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	processes := []ProcessRecord{}
	for rows.Next() {
		var p ProcessRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.ShortDescription, &p.FullDescription, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}
		processes = append(processes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return processes, nil
}

// Update saves name and descriptions and bumps updated_at.
func (r *ProcessRepo) Update(ctx context.Context, process *ProcessRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE processes SET name = ?, short_description = ?, full_description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		process.Name, process.ShortDescription, process.FullDescription, process.ID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	return nil
}

// Delete removes a process and its tasks.
func (r *ProcessRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM processes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete process: %w", err)
	}
	return requireAffected(result)
}

func scanProcess(row *sql.Row) (*ProcessRecord, error) {
	var p ProcessRecord
	err := row.Scan(&p.ID, &p.Name, &p.ShortDescription, &p.FullDescription, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query process: %w", err)
	}
	return &p, nil
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
