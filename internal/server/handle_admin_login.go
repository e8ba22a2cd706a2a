package server

import (
	"net/http"
	"time"

	"github.com/lybotics/stagequest/internal/engine"
)

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminMeResponse is the response for POST /api/admin/login.
type AdminMeResponse struct {
	Email            string `json:"email"`
	PasswordRequired bool   `json:"passwordRequired"`
}

func handleAdminLogin(eng *engine.Engine, admins *adminSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if !eng.IsAdmin(sess) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		if !admins.passwordRequired() {
			writeJSON(w, http.StatusOK, AdminMeResponse{Email: sess.Email})
			return
		}

		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}

		id, err := admins.login(sess.Email, req.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(12 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminMeResponse{Email: sess.Email, PasswordRequired: true})
	}
}

func handleAdminLogout(admins *adminSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(adminCookieName)
		if err == nil && cookie.Value != "" {
			admins.logout(cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
