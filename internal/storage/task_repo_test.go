package storage

import (
	"context"
	"errors"
	"testing"
)

func createProcess(t *testing.T, repo *ProcessRepo, name string) *ProcessRecord {
	t.Helper()
	p := &ProcessRecord{Name: name}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}
	return p
}

func TestTaskRepo_AppendAssignsPositions(t *testing.T) {
	db := newTestDB(t)
	processes := NewProcessRepo(db)
	repo := NewTaskRepo(db)
	ctx := context.Background()

	a := createProcess(t, processes, "a")
	b := createProcess(t, processes, "b")

	var appended []*TaskRecord
	for i, pid := range []string{a.ID, a.ID, b.ID, a.ID} {
		task := &TaskRecord{ProcessID: pid, Title: string(rune('w' + i)), TargetScript: "Main", TargetIndex: i}
		if err := repo.Append(ctx, task); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		appended = append(appended, task)
	}

	wantPositions := []int{0, 1, 0, 2}
	for i, task := range appended {
		if task.ID == "" {
			t.Errorf("task %d has no ID", i)
		}
		if task.Position != wantPositions[i] {
			t.Errorf("task %d position = %d, want %d", i, task.Position, wantPositions[i])
		}
	}

	got, err := repo.ListByProcess(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByProcess() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByProcess() len = %d, want 3", len(got))
	}
	for i, title := range []string{"w", "x", "z"} {
		if got[i].Title != title {
			t.Errorf("ListByProcess()[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestTaskRepo_AppendUnknownProcess(t *testing.T) {
	repo := NewTaskRepo(newTestDB(t))

	err := repo.Append(context.Background(), &TaskRecord{ProcessID: "missing", Title: "orphan"})
	if err == nil {
		t.Error("Append() for unknown process expected foreign key error, got nil")
	}
}

func TestTaskRepo_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepo(db)
	ctx := context.Background()
	p := createProcess(t, NewProcessRepo(db), "p")

	task := &TaskRecord{ProcessID: p.ID, Title: "check"}
	if err := repo.Append(ctx, task); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	task.Done = true
	task.Title = "checked"
	task.TargetScript = "Util"
	task.TargetIndex = 2
	task.TargetKey = "abcd"
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != *task {
		t.Errorf("GetByID() = %+v, want %+v", got, task)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	tests := []struct {
		name string
		call func() error
	}{
		{name: "get", call: func() error { _, err := repo.GetByID(ctx, task.ID); return err }},
		{name: "update", call: func() error { return repo.Update(ctx, task) }},
		{name: "delete", call: func() error { return repo.Delete(ctx, task.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}
