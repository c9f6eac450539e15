package api

import (
	"net/http"

	"github.com/ashval/inkweaver/internal/workspace"
)

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"projects":        h.ws.Projects(),
		"activeProjectId": h.ws.ActiveProject(),
	})
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ws.Project(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in workspace.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.ws.CreateProject(r.Context(), in)
	if err != nil {
		writeError(w, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProject handles PATCH /api/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch workspace.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, ok, err := h.ws.UpdateProject(r.Context(), idParam(r), patch)
	if err != nil {
		writeError(w, "update project", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}?confirm=true. Notes,
// tasks, lore and plot nodes of the project become global.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if notFound(w, h.ws.DeleteProject(r.Context(), idParam(r))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetActiveProject handles GET /api/active-project.
func (h *Handler) GetActiveProject(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ActiveProjectRequest{ProjectID: h.ws.ActiveProject()})
}

// SetActiveProject handles PUT /api/active-project. A null id clears the
// selection.
func (h *Handler) SetActiveProject(w http.ResponseWriter, r *http.Request) {
	var req ActiveProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ws.SetActiveProject(req.ProjectID); err != nil {
		writeError(w, "set active project", err)
		return
	}
	writeJSON(w, http.StatusOK, ActiveProjectRequest{ProjectID: h.ws.ActiveProject()})
}
