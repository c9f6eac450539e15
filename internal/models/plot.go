package models

// PlotNode is one beat of the hierarchical plot outline. ParentID nil marks a
// root. ChildrenIDs mirrors the nodes whose ParentID points here and is
// rebuilt by the store after every outline change.
type PlotNode struct {
	ID                string   `json:"id"`
	Text              string   `json:"text"`
	Order             int      `json:"order"`
	ParentID          *string  `json:"parentId"`
	ChildrenIDs       []string `json:"childrenIds"`
	LinkedNoteID      *string  `json:"linkedNoteId,omitempty"`
	LinkedLoreEntryID *string  `json:"linkedLoreEntryId,omitempty"`
	ProjectID         *string  `json:"projectId"`
	IsExpanded        bool     `json:"isExpanded"`
}

// Clone returns a deep copy of p.
func (p PlotNode) Clone() PlotNode {
	p.ParentID = cloneID(p.ParentID)
	p.ChildrenIDs = append([]string{}, p.ChildrenIDs...)
	p.LinkedNoteID = cloneID(p.LinkedNoteID)
	p.LinkedLoreEntryID = cloneID(p.LinkedLoreEntryID)
	p.ProjectID = cloneID(p.ProjectID)
	return p
}
