package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/normalize"
)

// PlotNodes returns all plot nodes ordered by Order.
func (s *Store) PlotNodes() []models.PlotNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PlotNode, len(s.data.PlotNodes))
	for i, p := range s.data.PlotNodes {
		out[i] = p.Clone()
	}
	return out
}

// PlotNode returns the plot node with id.
func (s *Store) PlotNode(id string) (models.PlotNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.plotIndex(id)
	if i < 0 {
		return models.PlotNode{}, false
	}
	return s.data.PlotNodes[i].Clone(), true
}

// CreatePlotNode adds a node under in.ParentID, or as a root when nil. A
// child inherits its parent's project.
func (s *Store) CreatePlotNode(ctx context.Context, in PlotInput) (models.PlotNode, error) {
	if err := in.Validate(); err != nil {
		return models.PlotNode{}, apperr.Invalid("create plot node", err)
	}
	parent := ref(in.ParentID)
	project := ref(in.ProjectID)

	s.mu.Lock()
	if parent != nil {
		pi := s.plotIndex(*parent)
		if pi < 0 {
			s.mu.Unlock()
			return models.PlotNode{}, apperr.Invalid("create plot node", errors.New("unknown parent"))
		}
		project = s.data.PlotNodes[pi].ProjectID
	}
	if err := s.checkPlotRefsLocked(project, ref(in.LinkedNoteID), ref(in.LinkedLoreEntryID)); err != nil {
		s.mu.Unlock()
		return models.PlotNode{}, apperr.Invalid("create plot node", err)
	}

	order := len(s.childrenLocked(parent))
	if in.Order != nil {
		order = *in.Order
	}
	n := models.PlotNode{
		ID:                s.newID(),
		Text:              strings.TrimSpace(in.Text),
		Order:             order,
		ParentID:          parent,
		ChildrenIDs:       []string{},
		LinkedNoteID:      ref(in.LinkedNoteID),
		LinkedLoreEntryID: ref(in.LinkedLoreEntryID),
		IsExpanded:        true,
	}
	if project != nil {
		v := *project
		n.ProjectID = &v
	}
	s.data.PlotNodes = append(s.data.PlotNodes, n)
	s.reorderLocked(parent, n.ID, order)
	out := s.data.PlotNodes[s.plotIndex(n.ID)].Clone()

	changes := []Change{{Collection: CollectionPlot, Kind: Created, ID: n.ID}}
	if parent != nil {
		changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: *parent})
	}
	s.commit(ctx, changes...)
	return out, nil
}

// UpdatePlotNode applies patch to a node. Setting one link clears the
// other. A missing id is a no-op reported by found=false.
func (s *Store) UpdatePlotNode(ctx context.Context, id string, patch PlotPatch) (models.PlotNode, bool, error) {
	if err := patch.Validate(); err != nil {
		return models.PlotNode{}, false, apperr.Invalid("update plot node", err)
	}

	s.mu.Lock()
	i := s.plotIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.PlotNode{}, false, nil
	}
	n := s.data.PlotNodes[i].Clone()
	if patch.Text != nil {
		n.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.IsExpanded != nil {
		n.IsExpanded = *patch.IsExpanded
	}
	if patch.LinkedNoteID != nil {
		n.LinkedNoteID = ref(patch.LinkedNoteID)
		if n.LinkedNoteID != nil {
			n.LinkedLoreEntryID = nil
		}
	}
	if patch.LinkedLoreEntryID != nil {
		n.LinkedLoreEntryID = ref(patch.LinkedLoreEntryID)
		if n.LinkedLoreEntryID != nil {
			n.LinkedNoteID = nil
		}
	}
	if err := s.checkPlotRefsLocked(n.ProjectID, n.LinkedNoteID, n.LinkedLoreEntryID); err != nil {
		s.mu.Unlock()
		return models.PlotNode{}, true, apperr.Invalid("update plot node", err)
	}
	s.data.PlotNodes[i] = n
	s.commit(ctx, Change{Collection: CollectionPlot, Kind: Updated, ID: id})
	return n.Clone(), true, nil
}

// MovePlotNode re-parents a node (nil makes it a root) and places it at
// order among its new siblings. Moving a node under itself or one of its
// descendants fails with apperr.ErrInvalidMove.
func (s *Store) MovePlotNode(ctx context.Context, id string, parentID *string, order int) (models.PlotNode, error) {
	parent := ref(parentID)

	s.mu.Lock()
	i := s.plotIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.PlotNode{}, apperr.ErrNotFound
	}
	if parent != nil {
		if s.plotIndex(*parent) < 0 {
			s.mu.Unlock()
			return models.PlotNode{}, apperr.Invalid("move plot node", errors.New("unknown parent"))
		}
		if s.isDescendantLocked(*parent, id) {
			s.mu.Unlock()
			return models.PlotNode{}, apperr.ErrInvalidMove
		}
	}
	old := s.data.PlotNodes[i].ParentID
	s.data.PlotNodes[i].ParentID = parent
	if !sameRef(old, parent) {
		s.reorderLocked(old, "", 0)
	}
	s.reorderLocked(parent, id, order)
	out := s.data.PlotNodes[s.plotIndex(id)].Clone()

	changes := []Change{{Collection: CollectionPlot, Kind: Updated, ID: id}}
	if old != nil {
		changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: *old})
	}
	if parent != nil && !sameRef(old, parent) {
		changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: *parent})
	}
	s.commit(ctx, changes...)
	return out, nil
}

// DeletePlotNode removes a leaf node. A node with children is refused with
// apperr.ErrHasChildren.
func (s *Store) DeletePlotNode(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.plotIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if len(s.childrenLocked(&id)) > 0 {
		s.mu.Unlock()
		return true, apperr.ErrHasChildren
	}
	parent := s.data.PlotNodes[i].ParentID
	s.data.PlotNodes = append(s.data.PlotNodes[:i], s.data.PlotNodes[i+1:]...)
	s.reorderLocked(parent, "", 0)

	changes := []Change{{Collection: CollectionPlot, Kind: Deleted, ID: id}}
	if parent != nil {
		changes = append(changes, Change{Collection: CollectionPlot, Kind: Updated, ID: *parent})
	}
	s.commit(ctx, changes...)
	return true, nil
}

// reorderLocked renumbers the children of parent 0..n-1, placing placeID
// at position at when it is set. It then rebuilds ChildrenIDs and restores
// collection order.
func (s *Store) reorderLocked(parent *string, placeID string, at int) {
	var siblings []string
	for _, n := range s.childrenLocked(parent) {
		if n.ID != placeID {
			siblings = append(siblings, n.ID)
		}
	}
	if placeID != "" {
		if at < 0 {
			at = 0
		}
		if at > len(siblings) {
			at = len(siblings)
		}
		siblings = append(siblings, "")
		copy(siblings[at+1:], siblings[at:])
		siblings[at] = placeID
	}
	for pos, id := range siblings {
		s.data.PlotNodes[s.plotIndex(id)].Order = pos
	}
	normalize.RebuildChildren(s.data.PlotNodes)
	sortPlot(s.data.PlotNodes)
}

// childrenLocked returns the nodes whose parent is parent, by Order.
func (s *Store) childrenLocked(parent *string) []models.PlotNode {
	var out []models.PlotNode
	for _, n := range s.data.PlotNodes {
		if sameRef(n.ParentID, parent) {
			out = append(out, n)
		}
	}
	sortPlot(out)
	return out
}

// isDescendantLocked reports whether node is ancestor or sits below it.
func (s *Store) isDescendantLocked(node, ancestor string) bool {
	seen := map[string]bool{}
	for cur := &node; cur != nil && !seen[*cur]; {
		if *cur == ancestor {
			return true
		}
		seen[*cur] = true
		i := s.plotIndex(*cur)
		if i < 0 {
			return false
		}
		cur = s.data.PlotNodes[i].ParentID
	}
	return false
}

func (s *Store) checkPlotRefsLocked(project, note, lore *string) error {
	if !s.projectKnown(project) {
		return errors.New("unknown project")
	}
	if note != nil && s.noteIndex(*note) < 0 {
		return errors.New("linked note does not exist")
	}
	if lore != nil && s.loreIndex(*lore) < 0 {
		return errors.New("linked lore entry does not exist")
	}
	return nil
}

func (s *Store) plotIndex(id string) int {
	for i := range s.data.PlotNodes {
		if s.data.PlotNodes[i].ID == id {
			return i
		}
	}
	return -1
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
