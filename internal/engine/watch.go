package engine

import (
	"context"
	"slices"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// WatchUnlocks polls the unlock gate every interval and broadcasts
// stage_unlocked for each stage that opened since the previous poll, plus a
// countdown event. It returns nil when ctx is done.
func (e *Engine) WatchUnlocks(ctx context.Context, interval time.Duration) error {
	w := &unlockWatch{known: quest.UnlockedIDs(e.catalog.Stages, e.clock.Now())}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.poll(w)
		}
	}
}

type unlockWatch struct {
	known []int
}

func (e *Engine) poll(w *unlockWatch) {
	now := e.clock.Now()
	ids := quest.UnlockedIDs(e.catalog.Stages, now)
	for _, id := range ids {
		if slices.Contains(w.known, id) {
			continue
		}
		e.logger.Info("stage unlocked", "stage", id)
		e.notify.Notify("", Event{Type: EventStageUnlocked, StageID: id})
	}
	w.known = ids

	cd := e.countdownAt(now)
	e.notify.Notify("", Event{Type: EventCountdown, Countdown: &cd})
}
