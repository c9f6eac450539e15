package workspace

import (
	"context"
	"strings"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
)

// Projects returns all projects ordered by name.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project{}, s.data.Projects...)
}

// Project returns the project with id.
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.projectIndex(id)
	if i < 0 {
		return models.Project{}, false
	}
	return s.data.Projects[i], true
}

// CreateProject adds a project.
func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return models.Project{}, apperr.Invalid("create project", err)
	}
	now := s.now()
	p := models.Project{
		ID:          s.newID(),
		Name:        in.Name,
		Genre:       strings.TrimSpace(in.Genre),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.data.Projects = append(s.data.Projects, p)
	sortProjects(s.data.Projects)
	s.commit(ctx, Change{Collection: CollectionProject, Kind: Created, ID: p.ID})
	return p, nil
}

// UpdateProject applies patch to the project with id. A missing id is a
// no-op reported by found=false.
func (s *Store) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (models.Project, bool, error) {
	if err := patch.Validate(); err != nil {
		return models.Project{}, false, apperr.Invalid("update project", err)
	}

	s.mu.Lock()
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Project{}, false, nil
	}
	p := &s.data.Projects[i]
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Genre != nil {
		p.Genre = strings.TrimSpace(*patch.Genre)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	p.UpdatedAt = s.stamp(p.UpdatedAt)
	out := *p
	sortProjects(s.data.Projects)
	s.commit(ctx, Change{Collection: CollectionProject, Kind: Updated, ID: id})
	return out, true, nil
}

// DeleteProject removes a project. Entities assigned to it become global,
// and the active project is cleared when it was this one.
func (s *Store) DeleteProject(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Projects = append(s.data.Projects[:i], s.data.Projects[i+1:]...)

	owned := func(p *string) bool { return p != nil && *p == id }
	for k := range s.data.Notes {
		if owned(s.data.Notes[k].ProjectID) {
			s.data.Notes[k].ProjectID = nil
		}
	}
	for k := range s.data.Tasks {
		if owned(s.data.Tasks[k].ProjectID) {
			s.data.Tasks[k].ProjectID = nil
		}
	}
	for k := range s.data.LoreEntries {
		if owned(s.data.LoreEntries[k].ProjectID) {
			s.data.LoreEntries[k].ProjectID = nil
		}
	}
	for k := range s.data.PlotNodes {
		if owned(s.data.PlotNodes[k].ProjectID) {
			s.data.PlotNodes[k].ProjectID = nil
		}
	}
	if owned(s.activeProject) {
		s.activeProject = nil
		s.saveActiveProjectLocked()
	}
	s.commit(ctx, Change{Collection: CollectionProject, Kind: Deleted, ID: id})
	return true
}

// ActiveProject returns the active project id, nil when none is selected.
func (s *Store) ActiveProject() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeProject == nil {
		return nil
	}
	id := *s.activeProject
	return &id
}

// SetActiveProject selects the project views are scoped to. nil or "" clears
// the selection; an unknown id yields apperr.ErrNotFound.
func (s *Store) SetActiveProject(id *string) error {
	id = ref(id)
	s.mu.Lock()
	if id != nil && s.projectIndex(*id) < 0 {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.activeProject = id
	s.saveActiveProjectLocked()
	s.mu.Unlock()

	s.notify(Change{Collection: CollectionPreferences, Kind: Updated, ID: "activeProject"})
	return nil
}

func (s *Store) projectIndex(id string) int {
	for i := range s.data.Projects {
		if s.data.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

// projectKnown reports whether a reference is nil or names a project.
func (s *Store) projectKnown(id *string) bool {
	return id == nil || s.projectIndex(*id) >= 0
}
