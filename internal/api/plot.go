package api

import (
	"net/http"

	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

// ListPlot handles GET /api/plot. Nodes come in outline order; clients
// build the tree from parentId / childrenIds.
func (h *Handler) ListPlot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"nodes": views.PlotNodes(h.ws.PlotNodes(), h.scope(r))})
}

// GetPlotNode handles GET /api/plot/{id}.
func (h *Handler) GetPlotNode(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ws.PlotNode(idParam(r))
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreatePlotNode handles POST /api/plot.
func (h *Handler) CreatePlotNode(w http.ResponseWriter, r *http.Request) {
	var in workspace.PlotInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.ws.CreatePlotNode(r.Context(), in)
	if err != nil {
		writeError(w, "create plot node", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdatePlotNode handles PATCH /api/plot/{id}.
func (h *Handler) UpdatePlotNode(w http.ResponseWriter, r *http.Request) {
	var patch workspace.PlotPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	n, ok, err := h.ws.UpdatePlotNode(r.Context(), idParam(r), patch)
	if err != nil {
		writeError(w, "update plot node", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// MovePlotNode handles POST /api/plot/{id}/move.
func (h *Handler) MovePlotNode(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.ws.MovePlotNode(r.Context(), idParam(r), req.ParentID, req.Order)
	if err != nil {
		writeError(w, "move plot node", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeletePlotNode handles DELETE /api/plot/{id}?confirm=true. Nodes with
// children are refused with 409.
func (h *Handler) DeletePlotNode(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	found, err := h.ws.DeletePlotNode(r.Context(), idParam(r))
	if err != nil {
		writeError(w, "delete plot node", err)
		return
	}
	if notFound(w, found) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
