package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// Outcome is the result of a recorded submission.
type Outcome struct {
	StageID        int  `json:"stageId"`
	ChallengeIndex int  `json:"challengeIndex"`
	Correct        bool `json:"correct"`

	// PointsAwarded is what was added to the stage score. It is zero when
	// the challenge had already been completed.
	PointsAwarded    int          `json:"pointsAwarded"`
	Bonus            int          `json:"bonus,omitempty"`
	Feedback         string       `json:"feedback,omitempty"`
	AlreadyCompleted bool         `json:"alreadyCompleted,omitempty"`
	Score            int          `json:"score"`
	Attempts         int          `json:"attempts"`
	StageCompleted   bool         `json:"stageCompleted"`
	Progress         ProgressView `json:"progress"`
}

// Stages lists every stage with the session player's status. Challenges are
// omitted; use OpenStage to get them.
func (e *Engine) Stages(s *Session) []StageView {
	now := e.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]StageView, 0, len(e.catalog.Stages))
	for _, st := range e.catalog.Stages {
		views = append(views, newStageView(st, progressOf(&s.player, st.ID), now, false))
	}
	return views
}

// OpenStage makes stage id the current stage of s and returns it with its
// challenges. Timers of a previously open stage are cancelled.
func (e *Engine) OpenStage(s *Session, id int) (StageView, error) {
	st, ok := e.catalog.Stage(id)
	if !ok {
		return StageView{}, fmt.Errorf("stage %d: %w", id, quest.ErrNotFound)
	}
	now := e.clock.Now()
	if !quest.IsUnlocked(st, now) {
		return StageView{}, fmt.Errorf("stage %d: %w", id, quest.ErrStageLocked)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stageID != id {
		s.cancelTimersLocked()
		s.stageID = id
	}
	return newStageView(st, progressOf(&s.player, id), now, true), nil
}

// LeaveStage returns s to the stage list and cancels its timers.
func (e *Engine) LeaveStage(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimersLocked()
	s.stageID = 0
}

// StartChallenge arms the countdown of a speed challenge. The deadline is
// fixed by the first start: arming it again, also after leaving the stage,
// resumes the same countdown. An expired or correctly answered challenge
// returns quest.ErrTimeUp.
func (e *Engine) StartChallenge(s *Session, stageID, index int) (TimerView, error) {
	st, ch, err := e.lookup(stageID, index)
	if err != nil {
		return TimerView{}, err
	}
	if ch.Kind != quest.KindSpeedChallenge {
		return TimerView{}, &quest.ValidationError{Field: "challenge", Reason: "has no countdown"}
	}

	now := e.clock.Now()
	limit := time.Duration(ch.TimeLimit) * time.Second

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return TimerView{}, ErrNoSession
	}

	run := e.startSpeedRun(s.Email, challengeKey{st.ID, index}, now)
	deadline := run.startedAt.Add(limit)
	if run.done || !now.Before(deadline) {
		return TimerView{}, fmt.Errorf("stage %d challenge %d: %w", st.ID, index, quest.ErrTimeUp)
	}

	if s.stageID != st.ID {
		s.cancelTimersLocked()
		s.stageID = st.ID
	}
	view := TimerView{
		StageID:        st.ID,
		ChallengeIndex: index,
		TimeLimit:      ch.TimeLimit,
		Deadline:       deadline,
	}
	if c, ok := s.timers[index]; ok && !c.expired {
		return view, nil
	}

	c := &countdown{stageID: st.ID, index: index, limit: ch.TimeLimit, startedAt: run.startedAt}
	c.timer = e.clock.AfterFunc(deadline.Sub(now), func() { e.expire(s, c) })
	s.timers[index] = c
	return view, nil
}

type challengeKey struct {
	stageID int
	index   int
}

// speedRun records when a player first started a speed challenge.
type speedRun struct {
	startedAt time.Time
	done      bool
}

// startSpeedRun returns the player's run of key, starting it at now when
// there is none yet.
func (e *Engine) startSpeedRun(email string, key challengeKey, now time.Time) speedRun {
	e.mu.Lock()
	defer e.mu.Unlock()
	runs := e.speed[email]
	if runs == nil {
		runs = make(map[challengeKey]*speedRun)
		e.speed[email] = runs
	}
	run, ok := runs[key]
	if !ok {
		run = &speedRun{startedAt: now}
		runs[key] = run
	}
	return *run
}

func (e *Engine) finishSpeedRun(email string, key challengeKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if run, ok := e.speed[email][key]; ok {
		run.done = true
	}
}

func (e *Engine) expire(s *Session, c *countdown) {
	s.mu.Lock()
	if s.timers[c.index] != c {
		s.mu.Unlock()
		return
	}
	c.expired = true
	email := s.Email
	s.mu.Unlock()

	e.logger.Debug("speed challenge expired", "email", email, "stage", c.stageID, "challenge", c.index)
	e.notify.Notify(email, Event{Type: EventTimeUp, StageID: c.stageID, ChallengeIndex: intPtr(c.index)})
}

// Submit evaluates an answer and records it. The new progress is durably
// written before it becomes visible in memory; a failed write leaves the
// session as it was and returns a *quest.PersistenceError so the player can
// retry. Rejected input returns a *quest.ValidationError and a late speed
// answer quest.ErrTimeUp; neither counts as an attempt.
func (e *Engine) Submit(ctx context.Context, s *Session, stageID, idx int, sub quest.Submission) (Outcome, error) {
	st, ch, err := e.lookup(stageID, idx)
	if err != nil {
		return Outcome{}, err
	}
	now := e.clock.Now()
	if !quest.IsUnlocked(st, now) {
		return Outcome{}, fmt.Errorf("stage %d: %w", stageID, quest.ErrStageLocked)
	}

	release, err := e.acquire(s.Email)
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrNoSession
	}
	if ch.Kind == quest.KindSpeedChallenge {
		sub.TimeRemaining = 0
		if c, ok := s.timers[idx]; ok && c.stageID == stageID {
			sub.TimeRemaining = c.remaining(now)
		}
	}
	verdict, err := quest.Evaluate(ch, sub)
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}

	next := s.player.Clone()
	pr := next.StageProgress(stageID)
	if pr == nil {
		next.Progress = append(next.Progress, quest.PlayerProgress{StageID: stageID})
		pr = next.StageProgress(stageID)
	}
	already := pr.HasCompleted(idx)
	updated, effects := quest.Reduce(st, *pr, quest.AnswerEvaluated{ChallengeIndex: idx, Verdict: verdict})
	*pr = updated
	next.LastActiveAt = now
	s.mu.Unlock()

	if err := e.store.SavePlayer(ctx, next); err != nil {
		e.logger.Warn("saving progress", "email", s.Email, "stage", stageID, "challenge", idx, "error", err)
		return Outcome{}, err
	}

	s.mu.Lock()
	s.player = next
	// A wrong answer leaves the countdown running.
	if ch.Kind == quest.KindSpeedChallenge && verdict.Correct {
		if c, ok := s.timers[idx]; ok {
			c.timer.Stop()
			delete(s.timers, idx)
		}
		e.finishSpeedRun(s.Email, challengeKey{stageID, idx})
	}
	s.mu.Unlock()

	out := Outcome{
		StageID:          stageID,
		ChallengeIndex:   idx,
		Correct:          verdict.Correct,
		Feedback:         verdict.Feedback,
		AlreadyCompleted: already,
		Score:            updated.Score,
		Attempts:         updated.Attempts,
		Progress:         newProgressView(updated),
	}
	for _, ef := range effects {
		switch ef.Kind {
		case quest.EffectChallengeCompleted:
			out.PointsAwarded = ef.Points
			out.Bonus = verdict.Bonus
		case quest.EffectStageCompleted:
			out.StageCompleted = true
		}
	}

	e.notify.Notify(s.Email, Event{
		Type:           EventAnswerRecorded,
		StageID:        stageID,
		ChallengeIndex: intPtr(idx),
		Correct:        out.Correct,
		Points:         out.PointsAwarded,
		Score:          out.Score,
		Attempts:       out.Attempts,
	})
	if out.StageCompleted {
		e.notify.Notify(s.Email, Event{Type: EventStageCompleted, StageID: stageID, Score: out.Score})
		e.logger.Info("stage completed", "email", s.Email, "stage", stageID, "score", out.Score)
	}
	return out, nil
}

func (e *Engine) lookup(stageID, index int) (quest.Stage, quest.Challenge, error) {
	st, ok := e.catalog.Stage(stageID)
	if !ok {
		return quest.Stage{}, quest.Challenge{}, fmt.Errorf("stage %d: %w", stageID, quest.ErrNotFound)
	}
	if index < 0 || index >= len(st.Challenges) {
		return quest.Stage{}, quest.Challenge{}, fmt.Errorf("stage %d challenge %d: %w", stageID, index, quest.ErrNotFound)
	}
	return st, st.Challenges[index], nil
}

func progressOf(p *quest.Player, stageID int) quest.PlayerProgress {
	if pr := p.StageProgress(stageID); pr != nil {
		return *pr
	}
	return quest.PlayerProgress{StageID: stageID}
}
