package api

import (
	"fmt"
	"net/http"

	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes in the project scope, newest first
//	@Tags			notes
//	@Produce		json
//	@Param			project		query		string	false	"Project scope (default: active project, 'all' for everything)"
//	@Param			q			query		string	false	"Free-text filter over title, content, tags and category"
//	@Param			category	query		string	false	"Category filter ('all' for none)"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := views.Notes(h.ws.Notes(), filterFrom(r, h.scope(r)))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// NoteCategories handles GET /api/notes/categories.
func (h *Handler) NoteCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": views.Categories(h.ws.Notes(), h.scope(r)),
	})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ws.Note(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note from Markdown
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		workspace.NoteInput	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in workspace.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.ws.CreateNote(r.Context(), in)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PATCH /api/notes/{id}. A content change archives the
// previous version.
//
//	@Summary		Update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		workspace.NotePatch	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch workspace.NotePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	n, ok, err := h.ws.UpdateNote(r.Context(), idParam(r), patch)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{id}?confirm=true.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id		path	string	true	"Note id"
//	@Param			confirm	query	bool	true	"Must be true"
//	@Success		204		"Note deleted"
//	@Failure		404		{object}	errResponse
//	@Failure		428		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if notFound(w, h.ws.DeleteNote(r.Context(), idParam(r))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NoteVersions handles GET /api/notes/{id}/versions.
func (h *Handler) NoteVersions(w http.ResponseWriter, r *http.Request) {
	vs, ok := h.ws.NoteVersions(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": vs})
}

// RevertNote handles POST /api/notes/{id}/revert.
func (h *Handler) RevertNote(w http.ResponseWriter, r *http.Request) {
	var req RevertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.ws.RevertNote(r.Context(), idParam(r), req.Timestamp)
	if err != nil {
		writeError(w, "revert note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// ExportNote handles GET /api/notes/{id}/export: the note as a Markdown
// file with YAML front matter.
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.ws.ExportNote(idParam(r))
	if err != nil {
		writeError(w, "export note", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
