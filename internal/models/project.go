package models

import "time"

// Project groups notes, tasks, lore and plot nodes. A nil project id on an
// entity marks it as global: visible from every project.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Genre       string    `json:"genre,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SameProject reports whether two nullable project ids are equal.
func SameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ProjectRef returns a pointer to id, or nil for the empty string.
func ProjectRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
