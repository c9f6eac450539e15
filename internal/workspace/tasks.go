package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
)

// Tasks returns all tasks, most recently updated first.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.data.Tasks))
	for i, t := range s.data.Tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task returns the task with id.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.data.Tasks[i].Clone(), true
}

// CreateTask adds a task, defaulting the priority to medium.
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := in.Validate(); err != nil {
		return models.Task{}, apperr.Invalid("create task", err)
	}
	in.ProjectID = ref(in.ProjectID)

	s.mu.Lock()
	if !s.projectKnown(in.ProjectID) {
		s.mu.Unlock()
		return models.Task{}, apperr.Invalid("create task", errors.New("unknown project"))
	}
	now := s.now()
	t := models.Task{
		ID:        s.newID(),
		Title:     in.Title,
		Icon:      in.Icon,
		Priority:  in.Priority,
		DueDate:   in.DueDate,
		Category:  strings.TrimSpace(in.Category),
		ProjectID: in.ProjectID,
		Subtasks:  []models.Subtask{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, title := range in.Subtasks {
		if title = strings.TrimSpace(title); title != "" {
			t.Subtasks = append(t.Subtasks, models.Subtask{ID: s.newID(), Title: title})
		}
	}
	s.data.Tasks = append(s.data.Tasks, t)
	sortTasks(s.data.Tasks)
	s.commit(ctx, Change{Collection: CollectionTask, Kind: Created, ID: t.ID})
	return t.Clone(), nil
}

// UpdateTask applies patch to the task with id. A missing id is a no-op
// reported by found=false.
func (s *Store) UpdateTask(ctx context.Context, id string, patch TaskPatch) (models.Task, bool, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, false, apperr.Invalid("update task", err)
	}
	return s.mutateTask(ctx, id, func(t *models.Task) error {
		if patch.ProjectID != nil && !s.projectKnown(ref(patch.ProjectID)) {
			return apperr.Invalid("update task", errors.New("unknown project"))
		}
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Icon != nil {
			t.Icon = *patch.Icon
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			t.DueDate = strings.TrimSpace(*patch.DueDate)
		}
		if patch.Category != nil {
			t.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.ProjectID != nil {
			t.ProjectID = ref(patch.ProjectID)
		}
		return nil
	})
}

// ToggleTask flips the completed flag of a task.
func (s *Store) ToggleTask(ctx context.Context, id string) (models.Task, bool) {
	t, found, _ := s.mutateTask(ctx, id, func(t *models.Task) error {
		t.Completed = !t.Completed
		return nil
	})
	return t, found
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
	s.commit(ctx, Change{Collection: CollectionTask, Kind: Deleted, ID: id})
	return true
}

// AddSubtask appends a checklist item to a task.
func (s *Store) AddSubtask(ctx context.Context, taskID, title string) (models.Task, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, false, apperr.Invalid("add subtask", errTitleRequired)
	}
	return s.mutateTask(ctx, taskID, func(t *models.Task) error {
		t.Subtasks = append(t.Subtasks, models.Subtask{ID: s.newID(), Title: title})
		return nil
	})
}

// AddSubtasks appends several checklist items at once, skipping blanks.
func (s *Store) AddSubtasks(ctx context.Context, taskID string, titles []string) (models.Task, bool) {
	t, found, _ := s.mutateTask(ctx, taskID, func(t *models.Task) error {
		for _, title := range titles {
			if title = strings.TrimSpace(title); title != "" {
				t.Subtasks = append(t.Subtasks, models.Subtask{ID: s.newID(), Title: title})
			}
		}
		return nil
	})
	return t, found
}

// ToggleSubtask flips the completed flag of a subtask. found is false when
// either the task or the subtask does not exist.
func (s *Store) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, bool) {
	t, found, err := s.mutateTask(ctx, taskID, func(t *models.Task) error {
		for k := range t.Subtasks {
			if t.Subtasks[k].ID == subtaskID {
				t.Subtasks[k].Completed = !t.Subtasks[k].Completed
				return nil
			}
		}
		return apperr.ErrNotFound
	})
	return t, found && err == nil
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, bool) {
	t, found, err := s.mutateTask(ctx, taskID, func(t *models.Task) error {
		for k := range t.Subtasks {
			if t.Subtasks[k].ID == subtaskID {
				t.Subtasks = append(t.Subtasks[:k], t.Subtasks[k+1:]...)
				return nil
			}
		}
		return apperr.ErrNotFound
	})
	return t, found && err == nil
}

// mutateTask runs fn on the task under the write lock. An error from fn
// aborts without persisting.
func (s *Store) mutateTask(ctx context.Context, id string, fn func(*models.Task) error) (models.Task, bool, error) {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, false, nil
	}
	scratch := s.data.Tasks[i].Clone()
	if err := fn(&scratch); err != nil {
		s.mu.Unlock()
		return models.Task{}, true, err
	}
	scratch.UpdatedAt = s.stamp(scratch.UpdatedAt)
	s.data.Tasks[i] = scratch
	sortTasks(s.data.Tasks)
	s.commit(ctx, Change{Collection: CollectionTask, Kind: Updated, ID: id})
	return scratch.Clone(), true, nil
}

func (s *Store) taskIndex(id string) int {
	for i := range s.data.Tasks {
		if s.data.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
