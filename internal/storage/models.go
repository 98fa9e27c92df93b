package storage

import "time"

// ProcessRecord is a named checklist.
type ProcessRecord struct {
	ID               string // UUID
	Name             string // Unique display name
	ShortDescription string
	FullDescription  string // Markdown
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TaskRecord is a checklist item pointing at a marker line.
type TaskRecord struct {
	ID           string // UUID
	ProcessID    string // Foreign key to processes.id
	Position     int    // Order within the process (starts at 0)
	Done         bool
	Title        string
	TargetScript string // Catalog file name
	TargetIndex  int    // Ordinal into the file's marker lines, not a line number
	TargetKey    string // Stable hint of the label the ordinal pointed at when set
}
