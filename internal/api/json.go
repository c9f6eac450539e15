package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/assistant"
	"github.com/ashval/inkweaver/internal/avatars"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error  string            `json:"error" validate:"required"`
	Fields map[string]string `json:"fields,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		body := errorBody(ve.Error())
		var fields validation.Errors
		if errors.As(ve.Err, &fields) {
			body.Fields = make(map[string]string, len(fields))
			for k, fe := range fields {
				body.Fields[k] = fe.Error()
			}
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, avatars.ErrInvalidImage):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("workspace changed since it was read"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrHasChildren),
		errors.Is(err, apperr.ErrInvalidMove),
		errors.Is(err, apperr.ErrStaleResponse):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConfirmationRequired):
		writeJSON(w, http.StatusPreconditionRequired, errorBody("add ?confirm=true to delete"))
	case errors.Is(err, assistant.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
