package api

import (
	"time"

	"github.com/ashval/inkweaver/internal/index"
	"github.com/ashval/inkweaver/internal/models"
)

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// RevertRequest selects an archived note version by its timestamp.
type RevertRequest struct {
	Timestamp time.Time `json:"timestamp" example:"2026-03-01T12:00:00Z" validate:"required"`
}

// SubtaskRequest is the body for adding a subtask.
type SubtaskRequest struct {
	Title string `json:"title" example:"Outline chapter 3" validate:"required"`
}

// AutoLoreRequest is the body for notation-driven lore creation.
type AutoLoreRequest struct {
	ProjectID *string `json:"projectId"`
	Text      string  `json:"text" example:"[[Elina|Character]] reached @Moonwell" validate:"required"`
}

// MoveRequest re-parents and/or reorders a plot node. A null parentId
// moves the node to the root.
type MoveRequest struct {
	ParentID *string `json:"parentId"`
	Order    int     `json:"order" example:"0"`
}

// ThemeRequest carries the active theme.
type ThemeRequest struct {
	Theme models.Theme `json:"theme" example:"ashval" validate:"required"`
}

// LearnedWordRequest adds a word to the repetition allow-list.
type LearnedWordRequest struct {
	Word string `json:"word" example:"Ashval" validate:"required"`
}

// ActiveProjectRequest carries the active project id (null for none).
type ActiveProjectRequest struct {
	ProjectID *string `json:"projectId"`
}

// RepetitionRequest asks for repeated words in a passage. Threshold 0 uses
// the stored preference.
type RepetitionRequest struct {
	Text      string `json:"text" validate:"required"`
	Threshold int    `json:"threshold" example:"3"`
}

// SaveReplyRequest stores an AI reply as a note.
type SaveReplyRequest struct {
	Title     string  `json:"title"`
	Reply     string  `json:"reply" validate:"required"`
	ProjectID *string `json:"projectId"`
}

// AvatarURLRequest uploads an avatar from a data: or http(s) URL.
type AvatarURLRequest struct {
	URL string `json:"url" example:"data:image/png;base64,..." validate:"required"`
}

// AvatarUploadResponse is returned after a successful avatar upload.
type AvatarUploadResponse struct {
	URL  string           `json:"url" example:"/avatars/0190-elina.png" validate:"required"`
	Lore models.LoreEntry `json:"lore" validate:"required"`
}
