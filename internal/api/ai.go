package api

import (
	"net/http"
	"strings"

	"github.com/ashval/inkweaver/internal/assistant"
)

// sessionHeader names the assistant session a request belongs to; one per
// browser tab keeps tabs from cancelling each other.
const sessionHeader = "X-Session-ID"

func (h *Handler) requireAI(w http.ResponseWriter) bool {
	if h.ai == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI assistant is not configured"))
		return false
	}
	return true
}

// AIModes handles GET /api/ai/modes.
func (h *Handler) AIModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"modes": assistant.Modes()})
}

// AIPreview handles POST /api/ai/preview: the payload a request would send,
// without calling the model.
func (h *Handler) AIPreview(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	var req assistant.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.ai.Preview(req)
	if err != nil {
		writeError(w, "ai preview", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AIGenerate handles POST /api/ai/generate.
//
//	@Summary		Run an AI writer mode
//	@Description	A model failure is reported in the body as {"ok": false}; a request superseded by a newer one in the same session gets 409.
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string				false	"Assistant session"
//	@Param			body			body		assistant.Request	true	"Mode, input and context"
//	@Success		200				{object}	assistant.Outcome
//	@Failure		400				{object}	errResponse
//	@Failure		409				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ai/generate [post]
func (h *Handler) AIGenerate(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	var req assistant.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.ai.Generate(r.Context(), strings.TrimSpace(r.Header.Get(sessionHeader)), req)
	if err != nil {
		writeError(w, "ai generate", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AISaveNote handles POST /api/ai/save-note.
func (h *Handler) AISaveNote(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	var req SaveReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.ai.SaveAsNote(r.Context(), req.Title, req.Reply, req.ProjectID)
	if err != nil {
		writeError(w, "save reply", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
