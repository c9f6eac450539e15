package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

// ListTasks handles GET /api/tasks (?project, q, category, status).
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := views.Tasks(h.ws.Tasks(), filterFrom(r, h.scope(r)))
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "total": len(tasks)})
}

// GetTask handles GET /api/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ws.Task(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in workspace.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.ws.CreateTask(r.Context(), in)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch workspace.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t, ok, err := h.ws.UpdateTask(r.Context(), idParam(r), patch)
	if err != nil {
		writeError(w, "update task", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ws.ToggleTask(r.Context(), idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}?confirm=true.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if notFound(w, h.ws.DeleteTask(r.Context(), idParam(r))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSubtask handles POST /api/tasks/{id}/subtasks.
func (h *Handler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	var req SubtaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, ok, err := h.ws.AddSubtask(r.Context(), idParam(r), req.Title)
	if err != nil {
		writeError(w, "add subtask", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ToggleSubtask handles POST /api/tasks/{id}/subtasks/{sid}/toggle.
func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ws.ToggleSubtask(r.Context(), idParam(r), chi.URLParam(r, "sid"))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteSubtask handles DELETE /api/tasks/{id}/subtasks/{sid}.
func (h *Handler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ws.DeleteSubtask(r.Context(), idParam(r), chi.URLParam(r, "sid"))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SuggestSubtasks handles POST /api/tasks/{id}/suggest[?apply=true]. A
// failed or malformed model reply yields an empty list.
func (h *Handler) SuggestSubtasks(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	apply := r.URL.Query().Get("apply") == "true"
	suggestions, err := h.ai.SuggestSubtasks(r.Context(), idParam(r), apply)
	if err != nil {
		writeError(w, "suggest subtasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions, "applied": apply && len(suggestions) > 0})
}
