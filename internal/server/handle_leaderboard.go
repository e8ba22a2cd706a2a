package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lybotics/stagequest/internal/engine"
)

type LeaderboardRow struct {
	Rank            int       `json:"rank"`
	Name            string    `json:"name"`
	CompletedStages int       `json:"completedStages"`
	TotalScore      int       `json:"totalScore"`
	LastActive      time.Time `json:"lastActive"`
}

func handleLeaderboard(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		entries, err := eng.Leaderboard(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		rows := make([]LeaderboardRow, 0, len(entries))
		for i, e := range entries {
			rows = append(rows, LeaderboardRow{
				Rank:            i + 1,
				Name:            e.Name,
				CompletedStages: e.CompletedStages,
				TotalScore:      e.TotalScore,
				LastActive:      e.LastActiveAt,
			})
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
