package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/parser"
)

// LoreEntries returns all lore entries ordered by title.
func (s *Store) LoreEntries() []models.LoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LoreEntry, len(s.data.LoreEntries))
	for i, e := range s.data.LoreEntries {
		out[i] = e.Clone()
	}
	return out
}

// LoreEntry returns the lore entry with id.
func (s *Store) LoreEntry(id string) (models.LoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.loreIndex(id)
	if i < 0 {
		return models.LoreEntry{}, false
	}
	return s.data.LoreEntries[i].Clone(), true
}

// CreateLore adds a lore entry. An empty type defaults to Other.
func (s *Store) CreateLore(ctx context.Context, in LoreInput) (models.LoreEntry, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Type == "" {
		in.Type = models.LoreOther
	} else if t, ok := models.ParseLoreType(string(in.Type)); ok {
		in.Type = t
	}
	if err := in.Validate(); err != nil {
		return models.LoreEntry{}, apperr.Invalid("create lore", err)
	}
	in.ProjectID = ref(in.ProjectID)

	s.mu.Lock()
	if !s.projectKnown(in.ProjectID) {
		s.mu.Unlock()
		return models.LoreEntry{}, apperr.Invalid("create lore", errors.New("unknown project"))
	}
	e := s.newLore(in)
	s.data.LoreEntries = append(s.data.LoreEntries, e)
	sortLore(s.data.LoreEntries)
	s.commit(ctx, Change{Collection: CollectionLore, Kind: Created, ID: e.ID})
	return e.Clone(), nil
}

func (s *Store) newLore(in LoreInput) models.LoreEntry {
	e := models.LoreEntry{
		ID:              s.newID(),
		Title:           in.Title,
		Type:            in.Type,
		Content:         in.Content,
		Tags:            cleanTags(in.Tags),
		CreatedAt:       s.now(),
		ProjectID:       in.ProjectID,
		Role:            strings.TrimSpace(in.Role),
		Age:             strings.TrimSpace(in.Age),
		Gender:          strings.TrimSpace(in.Gender),
		Status:          strings.TrimSpace(in.Status),
		AvatarURL:       strings.TrimSpace(in.AvatarURL),
		CharacterArcana: cleanList(in.CharacterArcana),
		Relationships:   cleanRelationships(in.Relationships),
		CustomFields:    cleanFields(in.CustomFields),
	}
	return e
}

// UpdateLore applies patch to the lore entry with id. A missing id is a
// no-op reported by found=false.
func (s *Store) UpdateLore(ctx context.Context, id string, patch LorePatch) (models.LoreEntry, bool, error) {
	if err := patch.Validate(); err != nil {
		return models.LoreEntry{}, false, apperr.Invalid("update lore", err)
	}

	s.mu.Lock()
	i := s.loreIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.LoreEntry{}, false, nil
	}
	if patch.ProjectID != nil && !s.projectKnown(ref(patch.ProjectID)) {
		s.mu.Unlock()
		return models.LoreEntry{}, true, apperr.Invalid("update lore", errors.New("unknown project"))
	}
	e := &s.data.LoreEntries[i]
	if patch.Title != nil {
		e.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Type != nil {
		e.Type, _ = models.ParseLoreType(string(*patch.Type))
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.Tags != nil {
		e.Tags = cleanTags(*patch.Tags)
	}
	if patch.ProjectID != nil {
		e.ProjectID = ref(patch.ProjectID)
	}
	setTrimmed(&e.Role, patch.Role)
	setTrimmed(&e.Age, patch.Age)
	setTrimmed(&e.Gender, patch.Gender)
	setTrimmed(&e.Status, patch.Status)
	setTrimmed(&e.AvatarURL, patch.AvatarURL)
	if patch.CharacterArcana != nil {
		e.CharacterArcana = cleanList(*patch.CharacterArcana)
	}
	if patch.Relationships != nil {
		e.Relationships = cleanRelationships(*patch.Relationships)
	}
	if patch.CustomFields != nil {
		e.CustomFields = cleanFields(*patch.CustomFields)
	}
	out := e.Clone()
	sortLore(s.data.LoreEntries)
	s.commit(ctx, Change{Collection: CollectionLore, Kind: Updated, ID: id})
	return out, true, nil
}

// DeleteLore removes a lore entry and clears plot links to it.
// Relationships targeting it stay in place as dangling ids.
func (s *Store) DeleteLore(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.loreIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.LoreEntries = append(s.data.LoreEntries[:i], s.data.LoreEntries[i+1:]...)
	changes := []Change{{Collection: CollectionLore, Kind: Deleted, ID: id}}

	for k := range s.data.PlotNodes {
		if p := s.data.PlotNodes[k].LinkedLoreEntryID; p != nil && *p == id {
			s.data.PlotNodes[k].LinkedLoreEntryID = nil
			changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: s.data.PlotNodes[k].ID})
		}
	}
	s.commit(ctx, changes...)
	return true
}

// AutoCreateLore scans text for [[Title|Type]] and @Name notation and
// creates an entry for every title not already present among the lore
// visible to projectID (its own entries and global ones). It returns the
// entries it created.
func (s *Store) AutoCreateLore(ctx context.Context, projectID *string, text string) ([]models.LoreEntry, error) {
	matches := parser.ExtractNotation(text)
	if len(matches) == 0 {
		return []models.LoreEntry{}, nil
	}
	projectID = ref(projectID)

	s.mu.Lock()
	if !s.projectKnown(projectID) {
		s.mu.Unlock()
		return nil, apperr.Invalid("auto-create lore", errors.New("unknown project"))
	}
	existing := make(map[string]bool, len(s.data.LoreEntries))
	for _, e := range s.data.LoreEntries {
		if e.ProjectID == nil || models.SameProject(e.ProjectID, projectID) {
			existing[strings.ToLower(e.Title)] = true
		}
	}

	created := []models.LoreEntry{}
	var changes []Change
	for _, m := range matches {
		key := strings.ToLower(m.Title)
		if existing[key] {
			continue
		}
		existing[key] = true
		var pid *string
		if projectID != nil {
			v := *projectID
			pid = &v
		}
		e := s.newLore(LoreInput{Title: m.Title, Type: m.Type, ProjectID: pid})
		s.data.LoreEntries = append(s.data.LoreEntries, e)
		created = append(created, e.Clone())
		changes = append(changes, Change{Collection: CollectionLore, Kind: Created, ID: e.ID})
	}
	if len(created) == 0 {
		s.mu.Unlock()
		return created, nil
	}
	sortLore(s.data.LoreEntries)
	s.commit(ctx, changes...)
	return created, nil
}

func (s *Store) loreIndex(id string) int {
	for i := range s.data.LoreEntries {
		if s.data.LoreEntries[i].ID == id {
			return i
		}
	}
	return -1
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cleanRelationships(in []models.Relationship) []models.Relationship {
	var out []models.Relationship
	for _, r := range in {
		r.TargetCharacterID = strings.TrimSpace(r.TargetCharacterID)
		if r.TargetCharacterID == "" {
			continue
		}
		r.RelationshipType = strings.TrimSpace(r.RelationshipType)
		out = append(out, r)
	}
	return out
}

func cleanFields(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = v
		}
	}
	return out
}
