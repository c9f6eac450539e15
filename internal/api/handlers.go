package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashval/inkweaver/internal/assistant"
	"github.com/ashval/inkweaver/internal/avatars"
	"github.com/ashval/inkweaver/internal/index"
	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

// Handler holds API route handlers.
type Handler struct {
	ws      *workspace.Store
	idx     index.Index
	ai      *assistant.Service
	avatars *avatars.Store
	logger  *slog.Logger
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithIndex enables /search and lore mentions.
func WithIndex(idx index.Index) HandlerOption {
	return func(h *Handler) { h.idx = idx }
}

// WithAssistant enables the AI routes.
func WithAssistant(ai *assistant.Service) HandlerOption {
	return func(h *Handler) { h.ai = ai }
}

// WithAvatars enables avatar uploads.
func WithAvatars(a *avatars.Store) HandlerOption {
	return func(h *Handler) { h.avatars = a }
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a new Handler.
func NewHandler(ws *workspace.Store, opts ...HandlerOption) *Handler {
	h := &Handler{ws: ws, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// scope resolves the ?project= parameter: absent means the active project,
// "all" means every project.
func (h *Handler) scope(r *http.Request) *string {
	q := r.URL.Query()
	if !q.Has("project") {
		return h.ws.ActiveProject()
	}
	p := strings.TrimSpace(q.Get("project"))
	if p == "" || p == "all" {
		return nil
	}
	return &p
}

func filterFrom(r *http.Request, project *string) views.Filter {
	q := r.URL.Query()
	return views.Filter{
		Project:  project,
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Status:   views.ParseTaskStatus(q.Get("status")),
	}
}

// notFound writes a 404 unless found.
func notFound(w http.ResponseWriter, found bool) bool {
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return true
	}
	return false
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes and lore
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			project	query		string	false	"Project scope (default: active project, 'all' for everything)"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index is not available"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, h.scope(r), limit)
	if err != nil {
		h.logger.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetSnapshot handles GET /api/snapshot.
//
//	@Summary		Export the whole workspace envelope
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	models.AppData
//	@Header			200	{string}	ETag	"Checksum to send back as If-Match"
//	@Security		BearerAuth
//	@Router			/snapshot [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, _ *http.Request) {
	data, sum := h.ws.Snapshot()
	if sum != "" {
		w.Header().Set("ETag", `"`+sum+`"`)
	}
	writeJSON(w, http.StatusOK, data)
}

// PutSnapshot handles PUT /api/snapshot.
//
//	@Summary		Replace the whole workspace with optimistic concurrency
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string	false	"ETag from GET /snapshot"
//	@Success		200		{object}	models.AppData
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshot [put]
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	sum, err := h.ws.Import(r.Context(), body, ifMatch)
	if err != nil {
		writeError(w, "import snapshot", err)
		return
	}
	data, _ := h.ws.Snapshot()
	if sum != "" {
		w.Header().Set("ETag", `"`+sum+`"`)
	}
	writeJSON(w, http.StatusOK, data)
}

// Repetitions handles POST /api/analysis/repetitions.
func (h *Handler) Repetitions(w http.ResponseWriter, r *http.Request) {
	var req RepetitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.ws.Preferences().AIWriter.RepetitionThreshold
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"words": views.RepeatedWords(req.Text, threshold, h.ws.LearnedWords()),
	})
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
