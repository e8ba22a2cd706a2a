// Package storage persists players and session tokens. Two backends are
// provided: SQLStore keeps JSONB documents in SQLite and RedisStore keeps
// msgpack values in Redis. A deployment uses exactly one.
package storage

import (
	"context"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// Store is the durable collaborator of the engine. Missing records yield
// quest.ErrNotFound; backend failures are wrapped in *quest.PersistenceError.
type Store interface {
	LoadPlayer(ctx context.Context, email string) (quest.Player, error)
	SavePlayer(ctx context.Context, p quest.Player) error
	// LoadAllPlayers returns every player ordered by registration time.
	LoadAllPlayers(ctx context.Context) ([]quest.Player, error)

	SaveSession(ctx context.Context, token, email string) error
	LookupSession(ctx context.Context, token string) (email string, err error)
	DeleteSession(ctx context.Context, token string) error

	// Check reports whether the backend is reachable.
	Check(ctx context.Context) error
}

// PlayerDoc is the stored and exported shape of a player record.
type PlayerDoc struct {
	Name             string        `json:"name" msgpack:"name"`
	Email            string        `json:"email" msgpack:"email"`
	Phone            string        `json:"phone" msgpack:"phone"`
	RegistrationDate time.Time     `json:"registrationDate" msgpack:"registrationDate"`
	LastActive       time.Time     `json:"lastActive" msgpack:"lastActive"`
	Progress         []ProgressDoc `json:"progress" msgpack:"progress"`
}

type ProgressDoc struct {
	StageID             int   `json:"stageId" msgpack:"stageId"`
	Completed           bool  `json:"completed" msgpack:"completed"`
	Score               int   `json:"score" msgpack:"score"`
	Attempts            int   `json:"attempts" msgpack:"attempts"`
	CompletedChallenges []int `json:"completedChallenges" msgpack:"completedChallenges"`
}

// NewPlayerDoc converts a domain player to its document form.
func NewPlayerDoc(p quest.Player) PlayerDoc {
	d := PlayerDoc{
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		RegistrationDate: p.RegistrationAt,
		LastActive:       p.LastActiveAt,
		Progress:         make([]ProgressDoc, 0, len(p.Progress)),
	}
	for _, pr := range p.Progress {
		done := pr.CompletedChallenges
		if done == nil {
			done = []int{}
		}
		d.Progress = append(d.Progress, ProgressDoc{
			StageID:             pr.StageID,
			Completed:           pr.Completed,
			Score:               pr.Score,
			Attempts:            pr.Attempts,
			CompletedChallenges: done,
		})
	}
	return d
}

// Player converts the document back to the domain type.
func (d PlayerDoc) Player() quest.Player {
	p := quest.Player{
		Name:           d.Name,
		Email:          d.Email,
		Phone:          d.Phone,
		RegistrationAt: d.RegistrationDate,
		LastActiveAt:   d.LastActive,
		Progress:       make([]quest.PlayerProgress, 0, len(d.Progress)),
	}
	for _, pr := range d.Progress {
		p.Progress = append(p.Progress, quest.PlayerProgress{
			StageID:             pr.StageID,
			Completed:           pr.Completed,
			Score:               pr.Score,
			Attempts:            pr.Attempts,
			CompletedChallenges: pr.CompletedChallenges,
		})
	}
	return p
}

func persistErr(op string, err error) error {
	return &quest.PersistenceError{Op: op, Err: err}
}
