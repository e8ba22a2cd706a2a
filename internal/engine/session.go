package engine

import (
	"sync"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// Session is one logged-in player. It owns the player's in-memory record,
// the stage currently on screen and any running speed-challenge timers.
// All methods are safe for concurrent use.
type Session struct {
	Token string
	Email string

	mu      sync.Mutex
	player  quest.Player
	stageID int
	timers  map[int]*countdown
	closed  bool
}

// countdown is a running speed-challenge timer. startedAt is the first
// start of the challenge, so a re-armed countdown keeps its deadline.
type countdown struct {
	stageID   int
	index     int
	limit     int
	startedAt time.Time
	timer     Timer
	expired   bool
}

// remaining is the whole seconds left at now.
func (c *countdown) remaining(now time.Time) int {
	if c.expired {
		return 0
	}
	r := c.limit - int(now.Sub(c.startedAt)/time.Second)
	return max(r, 0)
}

func newSession(token string, p quest.Player) *Session {
	return &Session{
		Token:  token,
		Email:  p.Email,
		player: p,
		timers: make(map[int]*countdown),
	}
}

// Player returns a copy of the session's player record.
func (s *Session) Player() quest.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Clone()
}

// CurrentStage returns the id of the stage on screen, or 0.
func (s *Session) CurrentStage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageID
}

// Closed reports whether the session was logged out or replaced.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// cancelTimersLocked stops every running countdown. s.mu must be held.
func (s *Session) cancelTimersLocked() {
	for i, c := range s.timers {
		c.timer.Stop()
		delete(s.timers, i)
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimersLocked()
	s.stageID = 0
	s.closed = true
}
