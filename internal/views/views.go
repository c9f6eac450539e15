// Package views holds the derived, read-only projections of the workspace:
// project scoping, search and category filters, the lore graph and
// repetition analysis. All functions are pure and never mutate their input.
package views

import (
	"sort"
	"strings"

	"github.com/ashval/inkweaver/internal/models"
)

// InScope reports whether an entity owned by project is visible while
// active is selected. Global entities (nil project) are visible in every
// scope, and a nil active project shows everything.
func InScope(project, active *string) bool {
	if active == nil || project == nil {
		return true
	}
	return *project == *active
}

// TaskStatus filters tasks by completion.
type TaskStatus string

const (
	StatusAll       TaskStatus = "all"
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus maps s to a TaskStatus, defaulting to StatusAll.
func ParseTaskStatus(s string) TaskStatus {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive, "pending", "open":
		return StatusActive
	case StatusCompleted, "done":
		return StatusCompleted
	default:
		return StatusAll
	}
}

// Filter is the common note/task/lore filter. Empty fields do not filter.
type Filter struct {
	Project  *string
	Query    string
	Category string
	Status   TaskStatus      // tasks only
	Type     models.LoreType // lore only
}

// Notes applies f to notes, keeping their order.
func Notes(notes []models.Note, f Filter) []models.Note {
	q := query(f.Query)
	out := []models.Note{}
	for _, n := range notes {
		if !InScope(n.ProjectID, f.Project) || !categoryMatch(n.Category, f.Category) {
			continue
		}
		if q != "" && !containsAny(q, n.Title, n.RawMarkdownContent, n.Category) && !tagMatch(q, n.Tags) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Tasks applies f to tasks, keeping their order. The query matches title,
// category and subtask titles.
func Tasks(tasks []models.Task, f Filter) []models.Task {
	q := query(f.Query)
	out := []models.Task{}
	for _, t := range tasks {
		if !InScope(t.ProjectID, f.Project) || !categoryMatch(t.Category, f.Category) {
			continue
		}
		switch f.Status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		if q != "" && !containsAny(q, t.Title, t.Category) && !subtaskMatch(q, t.Subtasks) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Lore applies f to lore entries, keeping their order. Category is matched
// against the entry type when Type is unset.
func Lore(entries []models.LoreEntry, f Filter) []models.LoreEntry {
	q := query(f.Query)
	out := []models.LoreEntry{}
	for _, e := range entries {
		if !InScope(e.ProjectID, f.Project) {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Type == "" && !categoryMatch(string(e.Type), f.Category) {
			continue
		}
		if q != "" && !containsAny(q, e.Title, e.Content, string(e.Type), e.Role) && !tagMatch(q, e.Tags) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// PlotNodes returns the nodes visible in the active project.
func PlotNodes(nodes []models.PlotNode, active *string) []models.PlotNode {
	out := []models.PlotNode{}
	for _, n := range nodes {
		if InScope(n.ProjectID, active) {
			out = append(out, n)
		}
	}
	return out
}

// Categories returns the distinct non-empty note categories visible in the
// active project, sorted case-insensitively.
func Categories(notes []models.Note, active *string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, n := range notes {
		c := strings.TrimSpace(n.Category)
		if c == "" || seen[strings.ToLower(c)] || !InScope(n.ProjectID, active) {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func query(q string) string { return strings.ToLower(strings.TrimSpace(q)) }

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func tagMatch(q string, tags []string) bool {
	return containsAny(q, tags...)
}

func subtaskMatch(q string, subs []models.Subtask) bool {
	for _, s := range subs {
		if strings.Contains(strings.ToLower(s.Title), q) {
			return true
		}
	}
	return false
}

func categoryMatch(have, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(strings.TrimSpace(have), want)
}
