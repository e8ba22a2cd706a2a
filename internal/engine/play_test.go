package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

func TestStagesAndOpenStage(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "sara@example.com")

	views := f.engine.Stages(s)
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	if views[0].Status != quest.StatusInProgress || views[1].Status != quest.StatusLocked {
		t.Errorf("statuses = %s %s", views[0].Status, views[1].Status)
	}
	if views[0].Challenges != nil {
		t.Error("stage list should not include challenges")
	}

	if _, err := f.engine.OpenStage(s, 2); !errors.Is(err, quest.ErrStageLocked) {
		t.Errorf("open locked err = %v", err)
	}
	if _, err := f.engine.OpenStage(s, 9); !errors.Is(err, quest.ErrNotFound) {
		t.Errorf("open missing err = %v", err)
	}

	v, err := f.engine.OpenStage(s, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(v.Challenges) != 2 || s.CurrentStage() != 1 {
		t.Errorf("challenges = %d current = %d", len(v.Challenges), s.CurrentStage())
	}
}

func TestSubmitScoresOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	out, err := f.engine.Submit(ctx, s, 1, 0, choice(0))
	if err != nil {
		t.Fatalf("wrong answer: %v", err)
	}
	if out.Correct || out.Attempts != 1 || out.Score != 0 {
		t.Errorf("wrong answer outcome = %+v", out)
	}

	out, err = f.engine.Submit(ctx, s, 1, 0, choice(1))
	if err != nil {
		t.Fatalf("right answer: %v", err)
	}
	if !out.Correct || out.PointsAwarded != 10 || out.Score != 10 || out.Attempts != 2 {
		t.Errorf("right answer outcome = %+v", out)
	}

	out, err = f.engine.Submit(ctx, s, 1, 0, choice(1))
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if !out.AlreadyCompleted || out.PointsAwarded != 0 || out.Score != 10 || out.Attempts != 3 {
		t.Errorf("repeat outcome = %+v", out)
	}

	stored, err := f.store.LoadPlayer(ctx, s.Email)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pr := stored.StageProgress(1); pr.Score != 10 || pr.Attempts != 3 {
		t.Errorf("stored progress = %+v", pr)
	}
}

func TestSubmitRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	tests := []struct {
		name    string
		stage   int
		index   int
		sub     quest.Submission
		wantErr error
	}{
		{"no choice", 1, 0, quest.Submission{}, nil},
		{"locked stage", 2, 0, quest.Submission{Text: "gear"}, quest.ErrStageLocked},
		{"missing challenge", 1, 7, choice(0), quest.ErrNotFound},
		{"speed without timer", 1, 1, choice(0), quest.ErrTimeUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Submit(ctx, s, tt.stage, tt.index, tt.sub)
			if tt.wantErr == nil {
				if !quest.IsValidation(err) {
					t.Errorf("err = %v, want validation error", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	p := s.Player()
	if got := p.StageProgress(1).Attempts; got != 0 {
		t.Errorf("attempts = %d, rejected submissions must not count", got)
	}
}

func TestSpeedChallengeBonusAndExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	tv, err := f.engine.StartChallenge(s, 1, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !tv.Deadline.Equal(t0.Add(30 * time.Second)) {
		t.Errorf("deadline = %v", tv.Deadline)
	}

	f.clock.Advance(10 * time.Second)
	out, err := f.engine.Submit(ctx, s, 1, 1, choice(0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Bonus != 5 || out.PointsAwarded != 25 {
		t.Errorf("outcome = %+v, want bonus 5 and 25 points", out)
	}

	// The countdown is consumed by the submission.
	if _, err := f.engine.Submit(ctx, s, 1, 1, choice(0)); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("second submit err = %v, want ErrTimeUp", err)
	}

	if _, err := f.engine.StartChallenge(s, 1, 1); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("restart after answer err = %v, want ErrTimeUp", err)
	}
}

func TestSpeedChallengeExpiryIsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	if _, err := f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(31 * time.Second)
	if !slices.Contains(f.events.types(), EventTimeUp) {
		t.Errorf("events = %v, want time_up", f.events.types())
	}
	if _, err := f.engine.Submit(ctx, s, 1, 1, choice(0)); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("late submit err = %v, want ErrTimeUp", err)
	}

	if _, err := f.engine.StartChallenge(s, 1, 1); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("restart after expiry err = %v, want ErrTimeUp", err)
	}
	if _, err := f.engine.Submit(ctx, s, 1, 1, choice(0)); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("submit after restart err = %v, want ErrTimeUp", err)
	}

	again := f.login(t, "sara@example.com")
	if _, err := f.engine.StartChallenge(again, 1, 1); !errors.Is(err, quest.ErrTimeUp) {
		t.Errorf("restart after new login err = %v, want ErrTimeUp", err)
	}
	p := again.Player()
	if pr := p.StageProgress(1); pr.Score != 0 || pr.Attempts != 0 {
		t.Errorf("progress = %+v, expired challenge must not score", pr)
	}
}

func TestSpeedChallengeKeepsFirstDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	if _, err := f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(5 * time.Second)
	out, err := f.engine.Submit(ctx, s, 1, 1, choice(1))
	if err != nil {
		t.Fatalf("wrong answer: %v", err)
	}
	if out.Correct || out.Attempts != 1 {
		t.Errorf("wrong answer outcome = %+v", out)
	}

	// Neither a second start nor leaving the stage resets the countdown.
	tv, err := f.engine.StartChallenge(s, 1, 1)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !tv.Deadline.Equal(t0.Add(30 * time.Second)) {
		t.Errorf("deadline = %v, want the first one", tv.Deadline)
	}
	f.engine.LeaveStage(s)
	f.clock.Advance(15 * time.Second)
	if tv, err = f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start after leave: %v", err)
	}
	if !tv.Deadline.Equal(t0.Add(30 * time.Second)) {
		t.Errorf("deadline after leave = %v", tv.Deadline)
	}

	out, err = f.engine.Submit(ctx, s, 1, 1, choice(0))
	if err != nil {
		t.Fatalf("right answer: %v", err)
	}
	if !out.Correct || out.Bonus != 0 || out.PointsAwarded != 20 {
		t.Errorf("outcome = %+v, want 20 points without bonus", out)
	}

	f.clock.Advance(time.Minute)
	if slices.Contains(f.events.types(), EventTimeUp) {
		t.Error("time_up fired after the challenge was answered")
	}
}

func TestSpeedChallengeNoBonusAfterHalf(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "sara@example.com")

	if _, err := f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(15 * time.Second)
	out, err := f.engine.Submit(context.Background(), s, 1, 1, choice(0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Bonus != 0 || out.PointsAwarded != 20 {
		t.Errorf("outcome = %+v, want 20 points without bonus", out)
	}
}

func TestLeaveStageCancelsTimer(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "sara@example.com")

	if _, err := f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.engine.LeaveStage(s)
	f.clock.Advance(time.Minute)

	if slices.Contains(f.events.types(), EventTimeUp) {
		t.Error("time_up fired for a cancelled countdown")
	}
	if s.CurrentStage() != 0 {
		t.Errorf("current stage = %d, want 0", s.CurrentStage())
	}

	if _, err := f.engine.StartChallenge(s, 1, 0); !quest.IsValidation(err) {
		t.Errorf("start quiz err = %v, want validation error", err)
	}
}

func TestSubmitPersistenceFailureLeavesState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	f.store.setFail(true)
	_, err := f.engine.Submit(ctx, s, 1, 0, choice(1))
	if !quest.IsPersistence(err) {
		t.Fatalf("err = %v, want persistence error", err)
	}
	p := s.Player()
	if pr := p.StageProgress(1); pr.Score != 0 || pr.Attempts != 0 {
		t.Errorf("in-memory progress changed after failed write: %+v", pr)
	}

	f.store.setFail(false)
	out, err := f.engine.Submit(ctx, s, 1, 0, choice(1))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if out.Score != 10 || out.Attempts != 1 {
		t.Errorf("retry outcome = %+v", out)
	}
}

func TestStageCompletionNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "sara@example.com")

	if _, err := f.engine.Submit(ctx, s, 1, 0, choice(1)); err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	if _, err := f.engine.StartChallenge(s, 1, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := f.engine.Submit(ctx, s, 1, 1, choice(0))
	if err != nil {
		t.Fatalf("submit speed: %v", err)
	}
	if !out.StageCompleted || !out.Progress.Completed || out.Score != 35 {
		t.Errorf("outcome = %+v", out)
	}

	want := []string{EventAnswerRecorded, EventAnswerRecorded, EventStageCompleted}
	if got := f.events.types(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	for _, e := range f.events.events {
		if e.email != s.Email {
			t.Errorf("event %s sent to %q", e.ev.Type, e.email)
		}
	}
}
