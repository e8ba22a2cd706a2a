package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/quest"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps engine and domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		verr *quest.ValidationError
		perr *quest.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		logger.Error("storage unavailable", "op", perr.Op, "error", perr.Err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "progress could not be saved, please try again",
			Retryable: true,
		})
	case errors.Is(err, engine.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
	case errors.Is(err, quest.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quest.ErrBusy):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: quest.ErrBusy.Error(), Retryable: true})
	case errors.Is(err, quest.ErrStageLocked), errors.Is(err, quest.ErrTimeUp):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
