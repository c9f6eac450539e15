package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

// ListLore handles GET /api/lore (?project, q, type).
func (h *Handler) ListLore(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r, h.scope(r))
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" && !strings.EqualFold(t, "all") {
		lt, ok := models.ParseLoreType(t)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown lore type"))
			return
		}
		f.Type = lt
	}
	entries := views.Lore(h.ws.LoreEntries(), f)
	writeJSON(w, http.StatusOK, map[string]any{"lore": entries, "total": len(entries)})
}

// LoreTypes handles GET /api/lore/types.
func (h *Handler) LoreTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": models.LoreTypes})
}

// GetLore handles GET /api/lore/{id}.
func (h *Handler) GetLore(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ws.LoreEntry(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateLore handles POST /api/lore.
func (h *Handler) CreateLore(w http.ResponseWriter, r *http.Request) {
	var in workspace.LoreInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.ws.CreateLore(r.Context(), in)
	if err != nil {
		writeError(w, "create lore", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateLore handles PATCH /api/lore/{id}.
func (h *Handler) UpdateLore(w http.ResponseWriter, r *http.Request) {
	var patch workspace.LorePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	e, ok, err := h.ws.UpdateLore(r.Context(), idParam(r), patch)
	if err != nil {
		writeError(w, "update lore", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteLore handles DELETE /api/lore/{id}?confirm=true. Plot links to the
// entry are cleared; relationships naming it are kept.
func (h *Handler) DeleteLore(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if notFound(w, h.ws.DeleteLore(r.Context(), idParam(r))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AutoCreateLore handles POST /api/lore/auto: creates entries for every
// [[Title|Type]] / @Name in the text not already known in the project.
func (h *Handler) AutoCreateLore(w http.ResponseWriter, r *http.Request) {
	var req AutoLoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.ws.AutoCreateLore(r.Context(), req.ProjectID, req.Text)
	if err != nil {
		writeError(w, "auto-create lore", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

// LoreGraph handles GET /api/lore/graph.
//
//	@Summary		Lore relationship graph for the project scope
//	@Tags			lore
//	@Produce		json
//	@Param			project	query		string	false	"Project scope (default: active project, 'all' for everything)"
//	@Success		200		{object}	views.Graph
//	@Security		BearerAuth
//	@Router			/lore/graph [get]
func (h *Handler) LoreGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.LoreGraph(h.ws.LoreEntries(), h.scope(r)))
}

// LoreMentions handles GET /api/lore/{id}/mentions: the notes and lore
// entries whose text references the entry's title.
func (h *Handler) LoreMentions(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ws.LoreEntry(idParam(r))
	if notFound(w, ok) {
		return
	}
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index is not available"))
		return
	}
	ids, err := h.idx.Mentioning(e.Title)
	if err != nil {
		h.logger.Error("mentions failed", slog.String("id", e.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != e.ID {
			out = append(out, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": out})
}
