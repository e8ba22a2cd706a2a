package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lybotics/stagequest/internal/engine"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// sessionMiddleware resolves the bearer token to a live session.
func sessionMiddleware(logger *slog.Logger, eng *engine.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := eng.Resume(r.Context(), bearerToken(r))
			if err != nil {
				writeDomainError(w, logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminMiddleware admits sessions of the configured admin email and, when a
// password is configured, only with a valid admin cookie.
func adminMiddleware(eng *engine.Engine, admins *adminSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFrom(r)
			if !eng.IsAdmin(sess) {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			if !admins.valid(r, sess.Email) {
				writeError(w, http.StatusUnauthorized, "admin password login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionFrom(r *http.Request) *engine.Session {
	return r.Context().Value(ctxKeySession).(*engine.Session)
}
