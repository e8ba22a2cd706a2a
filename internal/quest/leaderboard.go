package quest

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LeaderboardEntry is a derived, never stored, ranking row.
type LeaderboardEntry struct {
	Name            string
	Email           string
	CompletedStages int
	TotalScore      int
	LastActiveAt    time.Time
}

// Rank orders players by completed stages, then total score, both
// descending. Full ties keep the input order.
func Rank(players []Player) []LeaderboardEntry {
	entries := lo.Map(players, func(p Player, _ int) LeaderboardEntry {
		return LeaderboardEntry{
			Name:            p.Name,
			Email:           p.Email,
			CompletedStages: p.CompletedStages(),
			TotalScore:      p.TotalScore(),
			LastActiveAt:    p.LastActiveAt,
		}
	})
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.CompletedStages, a.CompletedStages); c != 0 {
			return c
		}
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	return entries
}

// StageStat is the completion rate of one stage across all players.
type StageStat struct {
	StageID   int
	Title     string
	Icon      string
	Completed int
	Percent   decimal.Decimal
}

// Stats aggregates the admin progress view.
type Stats struct {
	Participants int
	Stages       []StageStat
}

// ComputeStats counts, per catalog stage, how many players completed it.
// Percentages are rounded to one decimal place.
func ComputeStats(c *Catalog, players []Player) Stats {
	total := len(players)
	stats := Stats{Participants: total}
	for _, s := range c.Stages {
		done := lo.CountBy(players, func(p Player) bool {
			pr := p.StageProgress(s.ID)
			return pr != nil && pr.Completed
		})
		stats.Stages = append(stats.Stages, StageStat{
			StageID:   s.ID,
			Title:     s.Title,
			Icon:      s.Icon,
			Completed: done,
			Percent:   percent(done, total),
		})
	}
	return stats
}

func percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1)
}

// Participant is one row of the admin participants list.
type Participant struct {
	Name            string
	Email           string
	Phone           string
	RegistrationAt  time.Time
	CompletedStages int
	TotalScore      int
}

// Participants lists players in input order.
func Participants(players []Player) []Participant {
	return lo.Map(players, func(p Player, _ int) Participant {
		return Participant{
			Name:            p.Name,
			Email:           p.Email,
			Phone:           p.Phone,
			RegistrationAt:  p.RegistrationAt,
			CompletedStages: p.CompletedStages(),
			TotalScore:      p.TotalScore(),
		}
	})
}
