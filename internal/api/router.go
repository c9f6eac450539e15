package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// Avatar uploads are only routed when the handler has an avatar store.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Get("/{id}", h.GetProject)
		r.Patch("/{id}", h.UpdateProject)
		r.Delete("/{id}", h.DeleteProject)
	})
	r.Get("/active-project", h.GetActiveProject)
	r.Put("/active-project", h.SetActiveProject)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/categories", h.NoteCategories)
		r.Get("/{id}", h.GetNote)
		r.Patch("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
		r.Get("/{id}/versions", h.NoteVersions)
		r.Post("/{id}/revert", h.RevertNote)
		r.Get("/{id}/export", h.ExportNote)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
		r.Post("/{id}/toggle", h.ToggleTask)
		r.Post("/{id}/subtasks", h.AddSubtask)
		r.Post("/{id}/subtasks/{sid}/toggle", h.ToggleSubtask)
		r.Delete("/{id}/subtasks/{sid}", h.DeleteSubtask)
		r.Post("/{id}/suggest", h.SuggestSubtasks)
	})

	r.Route("/lore", func(r chi.Router) {
		r.Get("/", h.ListLore)
		r.Post("/", h.CreateLore)
		r.Get("/types", h.LoreTypes)
		r.Get("/graph", h.LoreGraph)
		r.Post("/auto", h.AutoCreateLore)
		r.Get("/{id}", h.GetLore)
		r.Patch("/{id}", h.UpdateLore)
		r.Delete("/{id}", h.DeleteLore)
		r.Get("/{id}/mentions", h.LoreMentions)
		if h.avatars != nil {
			r.Post("/{id}/avatar", NewAvatarHandler(h.ws, h.avatars).Upload)
		}
	})

	r.Route("/plot", func(r chi.Router) {
		r.Get("/", h.ListPlot)
		r.Post("/", h.CreatePlotNode)
		r.Get("/{id}", h.GetPlotNode)
		r.Patch("/{id}", h.UpdatePlotNode)
		r.Delete("/{id}", h.DeletePlotNode)
		r.Post("/{id}/move", h.MovePlotNode)
	})

	// Settings.
	r.Get("/preferences", h.GetPreferences)
	r.Put("/preferences", h.PutPreferences)
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.PutTheme)
	r.Get("/pomodoro", h.GetPomodoro)
	r.Put("/pomodoro", h.PutPomodoro)
	r.Get("/learned-words", h.ListLearnedWords)
	r.Post("/learned-words", h.AddLearnedWord)
	r.Delete("/learned-words/{word}", h.ForgetLearnedWord)

	// Whole-workspace export/import.
	r.Get("/snapshot", h.GetSnapshot)
	r.Put("/snapshot", h.PutSnapshot)

	r.Get("/search", h.Search)
	r.Post("/analysis/repetitions", h.Repetitions)

	r.Route("/ai", func(r chi.Router) {
		r.Get("/modes", h.AIModes)
		r.Post("/preview", h.AIPreview)
		r.Post("/generate", h.AIGenerate)
		r.Post("/save-note", h.AISaveNote)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
