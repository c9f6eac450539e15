// Package models defines the domain types of the Inkweaver workspace.
package models

import "time"

// MaxNoteVersions caps the archived snapshots kept per note.
const MaxNoteVersions = 10

// Note is a writer's note. RawMarkdownContent is the source of truth;
// Content is the HTML rendered from it.
type Note struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Icon               string        `json:"icon,omitempty"`
	Content            string        `json:"content"`
	RawMarkdownContent string        `json:"rawMarkdownContent"`
	Category           string        `json:"category"`
	Tags               []string      `json:"tags"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	Versions           []NoteVersion `json:"versions"`
	ProjectID          *string       `json:"projectId"`
}

// NoteVersion is an archived snapshot of a note's content.
type NoteVersion struct {
	Timestamp          time.Time `json:"timestamp"`
	Content            string    `json:"content"`
	RawMarkdownContent string    `json:"rawMarkdownContent"`
}

// Clone returns a deep copy of n.
func (n Note) Clone() Note {
	n.Tags = append([]string{}, n.Tags...)
	n.Versions = append([]NoteVersion{}, n.Versions...)
	n.ProjectID = cloneID(n.ProjectID)
	return n
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
