package engine

import (
	"context"
	"testing"
	"time"
)

func TestLeaderboardAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.login(t, "a@example.com")
	f.clock.Advance(time.Minute)
	b := f.login(t, "b@example.com")
	if _, err := f.engine.Submit(ctx, b, 1, 0, choice(1)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	board, err := f.engine.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Email != b.Email || board[1].Email != a.Email {
		t.Errorf("board = %+v", board)
	}

	stats, err := f.engine.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Participants != 2 || len(stats.Stages) != 2 {
		t.Errorf("stats = %+v", stats)
	}

	rows, err := f.engine.Participants(ctx)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(rows) != 2 || rows[0].Email != a.Email {
		t.Errorf("participants = %+v", rows)
	}

	dump, err := f.engine.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if dump.Version != "test" || len(dump.Players) != 2 || !dump.ExportDate.Equal(f.clock.Now()) {
		t.Errorf("export = %+v", dump)
	}
	if dump.Players[1].Progress[0].Score != 10 {
		t.Errorf("exported progress = %+v", dump.Players[1].Progress)
	}
}

func TestCountdown(t *testing.T) {
	f := newFixture(t)

	cd := f.engine.Countdown()
	if cd.AllUnlocked || cd.NextUnlock == nil {
		t.Fatalf("countdown = %+v", cd)
	}
	if cd.Remaining.Days != 2 || cd.Remaining.Hours != 0 {
		t.Errorf("remaining = %+v, want 2 days", *cd.Remaining)
	}
	if cd.Text != "2 days from now" {
		t.Errorf("text = %q", cd.Text)
	}

	f.clock.Advance(48 * time.Hour)
	cd = f.engine.Countdown()
	if !cd.AllUnlocked || cd.Text != "all stages available" || cd.Remaining != nil {
		t.Errorf("after unlock = %+v", cd)
	}
}
