package server

import (
	"log/slog"
	"net/http"

	"github.com/lybotics/stagequest/internal/engine"
)

type LoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type LoginResponse struct {
	Token  string          `json:"token"`
	Player SessionResponse `json:"player"`
}

// SessionResponse describes the logged-in player.
type SessionResponse struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	IsAdmin         bool   `json:"isAdmin"`
	CurrentStage    int    `json:"currentStage,omitempty"`
	CompletedStages int    `json:"completedStages"`
	TotalScore      int    `json:"totalScore"`
}

func newSessionResponse(eng *engine.Engine, sess *engine.Session) SessionResponse {
	p := sess.Player()
	return SessionResponse{
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		IsAdmin:         eng.IsAdmin(sess),
		CurrentStage:    sess.CurrentStage(),
		CompletedStages: p.CompletedStages(),
		TotalScore:      p.TotalScore(),
	}
}

func handleLogin(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, err := eng.Login(r.Context(), engine.LoginInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:  sess.Token,
			Player: newSessionResponse(eng, sess),
		})
	}
}

func handleLogout(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eng.Logout(r.Context(), sessionFrom(r)); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleSession(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newSessionResponse(eng, sessionFrom(r)))
	}
}
