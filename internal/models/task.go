package models

import "time"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a to-do item with an ordered list of subtasks.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon,omitempty"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	DueDate   string    `json:"dueDate,omitempty"` // YYYY-MM-DD
	Category  string    `json:"category"`
	ProjectID *string   `json:"projectId"`
	Subtasks  []Subtask `json:"subtasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtask is a checklist item inside a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.Subtasks = append([]Subtask{}, t.Subtasks...)
	t.ProjectID = cloneID(t.ProjectID)
	return t
}
