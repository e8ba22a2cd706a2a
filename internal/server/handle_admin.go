package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/quest"
)

type AdminPlayer struct {
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	RegistrationDate time.Time `json:"registrationDate"`
	CompletedStages  int       `json:"completedStages"`
	TotalScore       int       `json:"totalScore"`
}

type AdminStats struct {
	Participants int              `json:"participants"`
	Stages       []AdminStageStat `json:"stages"`
}

type AdminStageStat struct {
	StageID   int             `json:"stageId"`
	Title     string          `json:"title"`
	Icon      string          `json:"icon"`
	Completed int             `json:"completed"`
	Percent   decimal.Decimal `json:"percent"`
}

func handleAdminPlayers(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := eng.Participants(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, lo.Map(rows, func(p quest.Participant, _ int) AdminPlayer {
			return AdminPlayer{
				Name:             p.Name,
				Email:            p.Email,
				Phone:            p.Phone,
				RegistrationDate: p.RegistrationAt,
				CompletedStages:  p.CompletedStages,
				TotalScore:       p.TotalScore,
			}
		}))
	}
}

func handleAdminStats(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := eng.Stats(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminStats{
			Participants: stats.Participants,
			Stages: lo.Map(stats.Stages, func(s quest.StageStat, _ int) AdminStageStat {
				return AdminStageStat(s)
			}),
		})
	}
}

func handleAdminExport(logger *slog.Logger, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := eng.Export(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		name := fmt.Sprintf("lybotics-quest-export-%s.json", data.ExportDate.Format("2006-01-02"))
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		writeJSON(w, http.StatusOK, data)
	}
}
