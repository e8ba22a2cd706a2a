package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	eng := opts.Engine
	admins := newAdminSessions(opts.AdminPasswordHash)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Stage Quest API", "/openapi.json", "/docs"))

	r.Get("/ws/events", handleWSEvents(logger, eng, opts.Broker))
	r.Get("/api/events", handleEvents(eng, opts.Broker))

	r.Post("/api/login", handleLogin(logger, eng))
	r.Get("/api/leaderboard", handleLeaderboard(logger, eng))
	r.Get("/api/countdown", handleCountdown(eng))

	// Player routes, bearer token required.
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(logger, eng))
		r.Post("/api/logout", handleLogout(logger, eng))
		r.Get("/api/session", handleSession(eng))
		r.Get("/api/stages", handleStages(eng))
		r.Get("/api/stages/{stageID}", handleOpenStage(logger, eng))
		r.Post("/api/stages/{stageID}/leave", handleLeaveStage(eng))
		r.Post("/api/stages/{stageID}/challenges/{index}/start", handleStartChallenge(logger, eng))
		r.Post("/api/stages/{stageID}/challenges/{index}/answer", handleAnswer(logger, eng))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(sessionMiddleware(logger, eng))
		r.Post("/login", handleAdminLogin(eng, admins))
		r.Post("/logout", handleAdminLogout(admins))

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware(eng, admins))
			r.Get("/players", handleAdminPlayers(logger, eng))
			r.Get("/stats", handleAdminStats(logger, eng))
			r.Get("/export", handleAdminExport(logger, eng))
		})
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
