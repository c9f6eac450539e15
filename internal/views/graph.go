package views

import (
	"github.com/ashval/inkweaver/internal/checksum"
	"github.com/ashval/inkweaver/internal/models"
)

// Canvas size the graph coordinates are spread over.
const (
	GraphWidth  = 1000.0
	GraphHeight = 700.0
)

// GraphNode is one lore entry on the graph canvas.
type GraphNode struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Type  models.LoreType `json:"type"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
}

// GraphEdge is one relationship between two lore entries.
type GraphEdge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Graph is the lore relationship graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// LoreGraph builds the graph of the lore visible in the active project.
// Node positions are derived from the entry id, so the layout is stable
// across calls. Relationships whose target is not in scope produce no edge.
func LoreGraph(entries []models.LoreEntry, active *string) Graph {
	g := Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	visible := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !InScope(e.ProjectID, active) {
			continue
		}
		visible[e.ID] = true
		x, y := checksum.Position(e.ID, GraphWidth, GraphHeight)
		g.Nodes = append(g.Nodes, GraphNode{ID: e.ID, Label: e.Title, Type: e.Type, X: x, Y: y})
	}
	for _, e := range entries {
		if !visible[e.ID] {
			continue
		}
		for _, r := range e.Relationships {
			if !visible[r.TargetCharacterID] || r.TargetCharacterID == e.ID {
				continue
			}
			g.Edges = append(g.Edges, GraphEdge{
				Source:      e.ID,
				Target:      r.TargetCharacterID,
				Label:       r.RelationshipType,
				Description: r.Description,
			})
		}
	}
	return g
}
