package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashval/inkweaver/internal/avatars"
	"github.com/ashval/inkweaver/internal/workspace"
)

// AvatarHandler accepts character portraits and serves them back.
type AvatarHandler struct {
	ws    *workspace.Store
	store *avatars.Store
}

// NewAvatarHandler creates a handler over the avatar store.
func NewAvatarHandler(ws *workspace.Store, store *avatars.Store) *AvatarHandler {
	return &AvatarHandler{ws: ws, store: store}
}

// ServeFile handles GET /avatars/{filename}.
func (h *AvatarHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.store.Path(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/lore/{id}/avatar, either multipart/form-data
// (field "file") or JSON {"url": "..."} with a data: or http(s) URL. The
// entry's avatarUrl is set to the saved image.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if _, ok := h.ws.LoreEntry(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var (
		data     []byte
		filename string
		ext      string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, avatars.MaxSize+(1<<20))
		if err := r.ParseMultipartForm(avatars.MaxSize); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
			return
		}
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, avatars.MaxSize+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
			return
		}
		filename = filepath.Base(header.Filename)
	} else {
		var req AvatarURLRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var err error
		data, filename, ext, err = avatars.Fetch(r.Context(), req.URL)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
	}

	url, err := h.store.Save(id, filename, ext, data)
	if err != nil {
		writeError(w, "save avatar", err)
		return
	}
	e, ok, err := h.ws.UpdateLore(r.Context(), id, workspace.LorePatch{AvatarURL: &url})
	if err != nil {
		writeError(w, "set avatar", err)
		return
	}
	if notFound(w, ok) {
		return
	}
	writeJSON(w, http.StatusCreated, AvatarUploadResponse{URL: url, Lore: e})
}
