package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/quest"
)

func handleStages(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Stages(sessionFrom(r)))
	}
}

func handleOpenStage(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stageID, err := intParam(r, "stageID")
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		view, err := eng.OpenStage(sessionFrom(r), stageID)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleLeaveStage(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.LeaveStage(sessionFrom(r))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleStartChallenge(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stageID, index, err := challengeParams(r)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		timer, err := eng.StartChallenge(sessionFrom(r), stageID, index)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, timer)
	}
}

func handleCountdown(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Countdown())
	}
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, &quest.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}

func challengeParams(r *http.Request) (stageID, index int, err error) {
	if stageID, err = intParam(r, "stageID"); err != nil {
		return 0, 0, err
	}
	if index, err = intParam(r, "index"); err != nil {
		return 0, 0, err
	}
	return stageID, index, nil
}
