package engine

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/lybotics/stagequest/internal/quest"
	"github.com/lybotics/stagequest/internal/storage"
)

// Leaderboard ranks every stored player.
func (e *Engine) Leaderboard(ctx context.Context) ([]quest.LeaderboardEntry, error) {
	players, err := e.store.LoadAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return quest.Rank(players), nil
}

// Stats returns the per-stage completion rates.
func (e *Engine) Stats(ctx context.Context) (quest.Stats, error) {
	players, err := e.store.LoadAllPlayers(ctx)
	if err != nil {
		return quest.Stats{}, err
	}
	return quest.ComputeStats(e.catalog, players), nil
}

// Participants lists every player in registration order.
func (e *Engine) Participants(ctx context.Context) ([]quest.Participant, error) {
	players, err := e.store.LoadAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return quest.Participants(players), nil
}

// ExportData is the full dump offered to admins.
type ExportData struct {
	Players    []storage.PlayerDoc `json:"players"`
	ExportDate time.Time           `json:"exportDate"`
	Version    string              `json:"version"`
}

// Export dumps every player record.
func (e *Engine) Export(ctx context.Context) (ExportData, error) {
	players, err := e.store.LoadAllPlayers(ctx)
	if err != nil {
		return ExportData{}, err
	}
	return ExportData{
		Players:    lo.Map(players, func(p quest.Player, _ int) storage.PlayerDoc { return storage.NewPlayerDoc(p) }),
		ExportDate: e.clock.Now(),
		Version:    e.catalog.Version,
	}, nil
}

// Countdown describes the time left until the next stage unlocks.
type Countdown struct {
	Now         time.Time        `json:"now"`
	NextUnlock  *time.Time       `json:"nextUnlock,omitempty"`
	Remaining   *quest.Remaining `json:"remaining,omitempty"`
	Text        string           `json:"text"`
	AllUnlocked bool             `json:"allUnlocked"`
	GameStart   time.Time        `json:"gameStart,omitzero"`
	GameEnd     time.Time        `json:"gameEnd,omitzero"`
}

// Countdown reports the next unlock relative to the engine clock.
func (e *Engine) Countdown() Countdown {
	return e.countdownAt(e.clock.Now())
}

func (e *Engine) countdownAt(now time.Time) Countdown {
	cd := Countdown{Now: now, GameStart: e.gameStart, GameEnd: e.gameEnd}
	next, ok := quest.NextUnlock(e.catalog.Stages, now)
	if !ok {
		cd.AllUnlocked = true
		cd.Text = "all stages available"
		return cd
	}
	r := quest.SplitDuration(next.Sub(now))
	cd.NextUnlock = &next
	cd.Remaining = &r
	cd.Text = humanize.RelTime(next, now, "ago", "from now")
	return cd
}
