package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashval/inkweaver/internal/models"
)

// GetPreferences handles GET /api/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Preferences())
}

// PutPreferences handles PUT /api/preferences. The body replaces the
// stored preferences; missing fields fall back to their defaults.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	p := models.DefaultPreferences()
	if !decodeJSON(w, r, &p) {
		return
	}
	out, err := h.ws.SetPreferences(r.Context(), p)
	if err != nil {
		writeError(w, "set preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTheme handles GET /api/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ThemeRequest{Theme: h.ws.Theme()})
}

// PutTheme handles PUT /api/theme.
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ws.SetTheme(r.Context(), req.Theme); err != nil {
		writeError(w, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeRequest{Theme: h.ws.Theme()})
}

// GetPomodoro handles GET /api/pomodoro.
func (h *Handler) GetPomodoro(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Pomodoro())
}

// PutPomodoro handles PUT /api/pomodoro.
func (h *Handler) PutPomodoro(w http.ResponseWriter, r *http.Request) {
	var c models.PomodoroConfig
	if !decodeJSON(w, r, &c) {
		return
	}
	if err := h.ws.SetPomodoro(r.Context(), c); err != nil {
		writeError(w, "set pomodoro", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Pomodoro())
}

// ListLearnedWords handles GET /api/learned-words.
func (h *Handler) ListLearnedWords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"words": h.ws.LearnedWords()})
}

// AddLearnedWord handles POST /api/learned-words.
func (h *Handler) AddLearnedWord(w http.ResponseWriter, r *http.Request) {
	var req LearnedWordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	words, err := h.ws.AddLearnedWord(req.Word)
	if err != nil {
		writeError(w, "add learned word", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

// ForgetLearnedWord handles DELETE /api/learned-words/{word}.
func (h *Handler) ForgetLearnedWord(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"words": h.ws.ForgetLearnedWord(chi.URLParam(r, "word"))})
}
