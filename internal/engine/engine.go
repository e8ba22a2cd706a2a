// Package engine orchestrates play: sessions, stage navigation, answer
// submission with durable writes, speed-challenge timers and the unlock
// poller. Domain rules live in package quest; persistence in storage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/lybotics/stagequest/internal/quest"
	"github.com/lybotics/stagequest/internal/storage"
)

// ErrNoSession is returned when a token does not resolve to a session.
var ErrNoSession = errors.New("no session")

type Options struct {
	Clock    Clock
	Notifier Notifier
	Logger   *slog.Logger

	// AdminEmail grants the admin views. It is a display gate only.
	AdminEmail string
	// GameStart and GameEnd override the catalog's advertised window.
	GameStart time.Time
	GameEnd   time.Time
}

type Engine struct {
	catalog    *quest.Catalog
	store      storage.Store
	clock      Clock
	notify     Notifier
	logger     *slog.Logger
	adminEmail string
	gameStart  time.Time
	gameEnd    time.Time

	mu       sync.Mutex
	sessions map[string]*Session // by token
	byEmail  map[string]*Session
	guards   map[string]*guard

	// speed outlives sessions so logging in again cannot re-arm a
	// countdown. Keyed by email.
	speed map[string]map[challengeKey]*speedRun
}

// guard is the write semaphore of one player. refs counts the callers
// holding or trying it; the entry is dropped when it reaches zero.
type guard struct {
	sem  *semaphore.Weighted
	refs int
}

func New(c *quest.Catalog, store storage.Store, opts Options) *Engine {
	e := &Engine{
		catalog:    c,
		store:      store,
		clock:      opts.Clock,
		notify:     opts.Notifier,
		logger:     opts.Logger,
		adminEmail: normalizeEmail(opts.AdminEmail),
		gameStart:  c.StartAt,
		gameEnd:    c.EndAt,
		sessions:   make(map[string]*Session),
		byEmail:    make(map[string]*Session),
		guards:     make(map[string]*guard),
		speed:      make(map[string]map[challengeKey]*speedRun),
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	if e.notify == nil {
		e.notify = nopNotifier{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if !opts.GameStart.IsZero() {
		e.gameStart = opts.GameStart
	}
	if !opts.GameEnd.IsZero() {
		e.gameEnd = opts.GameEnd
	}
	return e
}

// Catalog returns the loaded catalog.
func (e *Engine) Catalog() *quest.Catalog { return e.catalog }

// LoginInput is the login form.
type LoginInput struct {
	Name  string
	Email string
	Phone string
}

// Login creates the player on first sight of the email, otherwise updates
// name, phone and last activity. It persists the player and a fresh session
// token. Any other live session of the same player is closed.
func (e *Engine) Login(ctx context.Context, in LoginInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return nil, &quest.ValidationError{Field: "name", Reason: "is required"}
	}
	if email == "" {
		return nil, &quest.ValidationError{Field: "email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &quest.ValidationError{Field: "email", Reason: "is not a valid address"}
	}

	release, err := e.acquire(email)
	if err != nil {
		return nil, err
	}
	defer release()

	now := e.clock.Now()
	p, err := e.store.LoadPlayer(ctx, email)
	created := false
	switch {
	case errors.Is(err, quest.ErrNotFound):
		p = quest.NewPlayer(e.catalog, name, email, phone, now)
		created = true
	case err != nil:
		return nil, err
	default:
		p.Name = name
		p.Phone = phone
		p.LastActiveAt = now
		p.EnsureProgress(e.catalog)
	}

	if err := e.store.SavePlayer(ctx, p); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := e.store.SaveSession(ctx, token, email); err != nil {
		return nil, err
	}

	s := newSession(token, p)
	e.register(ctx, s)
	e.logger.Info("player logged in", "email", email, "created", created)
	return s, nil
}

// Resume returns the live session for token, or rebuilds it from the
// persisted token after a restart.
func (e *Engine) Resume(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	e.mu.Lock()
	s, ok := e.sessions[token]
	e.mu.Unlock()
	if ok {
		return s, nil
	}

	email, err := e.store.LookupSession(ctx, token)
	if errors.Is(err, quest.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	p, err := e.store.LoadPlayer(ctx, email)
	if errors.Is(err, quest.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	p.EnsureProgress(e.catalog)

	e.mu.Lock()
	if live, ok := e.sessions[token]; ok {
		e.mu.Unlock()
		return live, nil
	}
	s = newSession(token, p)
	old := e.swapLocked(s)
	e.mu.Unlock()

	e.retire(ctx, s, old)
	e.logger.Info("session resumed", "email", email)
	return s, nil
}

// Logout closes s, cancelling its timers, and forgets its token.
func (e *Engine) Logout(ctx context.Context, s *Session) error {
	e.unregister(s)
	s.close()
	return e.store.DeleteSession(ctx, s.Token)
}

// IsAdmin reports whether the session's player may see the admin views.
func (e *Engine) IsAdmin(s *Session) bool {
	return e.adminEmail != "" && s.Email == e.adminEmail
}

// register makes s the only live session of its player.
func (e *Engine) register(ctx context.Context, s *Session) {
	e.mu.Lock()
	old := e.swapLocked(s)
	e.mu.Unlock()
	e.retire(ctx, s, old)
}

// swapLocked installs s and returns the session it replaces, if any.
// e.mu must be held.
func (e *Engine) swapLocked(s *Session) *Session {
	old := e.byEmail[s.Email]
	if old != nil {
		delete(e.sessions, old.Token)
	}
	e.sessions[s.Token] = s
	e.byEmail[s.Email] = s
	return old
}

// retire closes the session s replaced and forgets its token.
func (e *Engine) retire(ctx context.Context, s, old *Session) {
	if old == nil || old.Token == s.Token {
		return
	}
	old.close()
	if err := e.store.DeleteSession(ctx, old.Token); err != nil {
		e.logger.Warn("dropping replaced session", "email", s.Email, "error", err)
	}
}

func (e *Engine) unregister(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, s.Token)
	if e.byEmail[s.Email] == s {
		delete(e.byEmail, s.Email)
	}
}

// acquire takes the per-player write guard without waiting. A concurrent
// write for the same player yields quest.ErrBusy.
func (e *Engine) acquire(email string) (func(), error) {
	e.mu.Lock()
	g, ok := e.guards[email]
	if !ok {
		g = &guard{sem: semaphore.NewWeighted(1)}
		e.guards[email] = g
	}
	g.refs++
	e.mu.Unlock()

	if !g.sem.TryAcquire(1) {
		e.dropGuard(email, g)
		return nil, fmt.Errorf("player %s: %w", email, quest.ErrBusy)
	}
	return func() {
		g.sem.Release(1)
		e.dropGuard(email, g)
	}, nil
}

func (e *Engine) dropGuard(email string, g *guard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g.refs--
	if g.refs == 0 && e.guards[email] == g {
		delete(e.guards, email)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
