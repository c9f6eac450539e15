package workspace

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/markdown"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/parser"
)

// Notes returns all notes, most recently updated first.
func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.data.Notes))
	for i, n := range s.data.Notes {
		out[i] = n.Clone()
	}
	return out
}

// Note returns the note with id.
func (s *Store) Note(id string) (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.noteIndex(id)
	if i < 0 {
		return models.Note{}, false
	}
	return s.data.Notes[i].Clone(), true
}

// CreateNote adds a note. The HTML content is rendered from the Markdown
// source.
func (s *Store) CreateNote(ctx context.Context, in NoteInput) (models.Note, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return models.Note{}, apperr.Invalid("create note", err)
	}
	in.ProjectID = ref(in.ProjectID)

	s.mu.Lock()
	if !s.projectKnown(in.ProjectID) {
		s.mu.Unlock()
		return models.Note{}, apperr.Invalid("create note", errors.New("unknown project"))
	}
	now := s.now()
	n := models.Note{
		ID:                 s.newID(),
		Title:              in.Title,
		Icon:               in.Icon,
		Content:            markdown.ToHTML(in.Content),
		RawMarkdownContent: in.Content,
		Category:           strings.TrimSpace(in.Category),
		Tags:               cleanTags(in.Tags),
		CreatedAt:          now,
		UpdatedAt:          now,
		Versions:           []models.NoteVersion{},
		ProjectID:          in.ProjectID,
	}
	s.data.Notes = append(s.data.Notes, n)
	sortNotes(s.data.Notes)
	s.commit(ctx, Change{Collection: CollectionNote, Kind: Created, ID: n.ID})
	return n.Clone(), nil
}

// UpdateNote applies patch to the note with id. When the Markdown source
// changes the previous content is archived as a version. A missing id is a
// no-op reported by found=false.
func (s *Store) UpdateNote(ctx context.Context, id string, patch NotePatch) (models.Note, bool, error) {
	if err := patch.Validate(); err != nil {
		return models.Note{}, false, apperr.Invalid("update note", err)
	}

	s.mu.Lock()
	i := s.noteIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Note{}, false, nil
	}
	if patch.ProjectID != nil && !s.projectKnown(ref(patch.ProjectID)) {
		s.mu.Unlock()
		return models.Note{}, true, apperr.Invalid("update note", errors.New("unknown project"))
	}

	n := &s.data.Notes[i]
	if patch.Content != nil && *patch.Content != n.RawMarkdownContent {
		s.archive(n)
		n.RawMarkdownContent = *patch.Content
		n.Content = markdown.ToHTML(*patch.Content)
	}
	if patch.Title != nil {
		n.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Icon != nil {
		n.Icon = *patch.Icon
	}
	if patch.Category != nil {
		n.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		n.Tags = cleanTags(*patch.Tags)
	}
	if patch.ProjectID != nil {
		n.ProjectID = ref(patch.ProjectID)
	}
	n.UpdatedAt = s.stamp(n.UpdatedAt)
	out := n.Clone()
	sortNotes(s.data.Notes)
	s.commit(ctx, Change{Collection: CollectionNote, Kind: Updated, ID: id})
	return out, true, nil
}

// DeleteNote removes a note and clears plot links pointing at it.
func (s *Store) DeleteNote(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.noteIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Notes = append(s.data.Notes[:i], s.data.Notes[i+1:]...)
	changes := []Change{{Collection: CollectionNote, Kind: Deleted, ID: id}}
	for k := range s.data.PlotNodes {
		if p := s.data.PlotNodes[k].LinkedNoteID; p != nil && *p == id {
			s.data.PlotNodes[k].LinkedNoteID = nil
			changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: s.data.PlotNodes[k].ID})
		}
	}
	s.commit(ctx, changes...)
	return true
}

// NoteVersions returns the archived versions of a note, newest first.
func (s *Store) NoteVersions(id string) ([]models.NoteVersion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.noteIndex(id)
	if i < 0 {
		return nil, false
	}
	return append([]models.NoteVersion{}, s.data.Notes[i].Versions...), true
}

// RevertNote restores the version archived at ts. The current content is
// archived first, so a revert can itself be reverted.
func (s *Store) RevertNote(ctx context.Context, id string, ts time.Time) (models.Note, error) {
	s.mu.Lock()
	i := s.noteIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Note{}, apperr.ErrNotFound
	}
	n := &s.data.Notes[i]
	var target *models.NoteVersion
	for k := range n.Versions {
		if n.Versions[k].Timestamp.Equal(ts) {
			v := n.Versions[k]
			target = &v
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return models.Note{}, fmt.Errorf("version %s: %w", ts.Format(time.RFC3339Nano), apperr.ErrNotFound)
	}

	s.archive(n)
	n.Content = target.Content
	n.RawMarkdownContent = target.RawMarkdownContent
	n.UpdatedAt = s.stamp(n.UpdatedAt)
	out := n.Clone()
	sortNotes(s.data.Notes)
	s.commit(ctx, Change{Collection: CollectionNote, Kind: Updated, ID: id})
	return out, nil
}

// ExportNote renders a note as a Markdown document with YAML front matter.
// A metadata block already present in the source (fenced or dashed) is
// merged into the front matter; note fields win on conflicting keys.
func (s *Store) ExportNote(id string) (filename string, body string, err error) {
	n, ok := s.Note(id)
	if !ok {
		return "", "", apperr.ErrNotFound
	}

	fm := map[string]any{}
	prose := n.RawMarkdownContent
	if existing, rest := parser.SplitFrontmatter(prose); existing != nil {
		for k, v := range existing {
			fm[k] = v
		}
		prose = rest
	} else if split := parser.SplitMetadata(prose); split.Found && split.Fields != nil {
		for k, v := range split.Fields {
			fm[k] = v
		}
		prose = split.Prose
	}

	fm["title"] = n.Title
	fm["created"] = n.CreatedAt.Format(time.RFC3339)
	fm["updated"] = n.UpdatedAt.Format(time.RFC3339)
	if n.Category != "" {
		fm["category"] = n.Category
	}
	if len(n.Tags) > 0 {
		fm["tags"] = n.Tags
	}
	if n.ProjectID != nil {
		if p, ok := s.Project(*n.ProjectID); ok {
			fm["project"] = p.Name
		}
	}

	body, err = parser.FormatFrontmatter(fm, prose)
	if err != nil {
		return "", "", fmt.Errorf("export note %s: %w", id, err)
	}
	return exportFilename(n.Title), body, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}._ -]+`)

func exportFilename(title string) string {
	name := strings.TrimSpace(unsafeFilenameRe.ReplaceAllString(title, "_"))
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "note"
	}
	return name + ".md"
}

// archive pushes the note's current content onto its version list,
// newest first and capped. Timestamps are strictly increasing.
func (s *Store) archive(n *models.Note) {
	var prev time.Time
	if len(n.Versions) > 0 {
		prev = n.Versions[0].Timestamp
	}
	v := models.NoteVersion{
		Timestamp:          s.stamp(prev),
		Content:            n.Content,
		RawMarkdownContent: n.RawMarkdownContent,
	}
	n.Versions = append([]models.NoteVersion{v}, n.Versions...)
	if len(n.Versions) > models.MaxNoteVersions {
		n.Versions = n.Versions[:models.MaxNoteVersions]
	}
}

func (s *Store) noteIndex(id string) int {
	for i := range s.data.Notes {
		if s.data.Notes[i].ID == id {
			return i
		}
	}
	return -1
}
