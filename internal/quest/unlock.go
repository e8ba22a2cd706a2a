package quest

import "time"

// IsUnlocked reports whether stage is playable at now. Once true it stays
// true for every later now.
func IsUnlocked(stage Stage, now time.Time) bool {
	return !now.Before(stage.UnlockAt)
}

// NextUnlock returns the earliest UnlockAt among stages still locked at now.
// ok is false when every stage is unlocked.
func NextUnlock(stages []Stage, now time.Time) (next time.Time, ok bool) {
	for _, s := range stages {
		if !now.Before(s.UnlockAt) {
			continue
		}
		if !ok || s.UnlockAt.Before(next) {
			next = s.UnlockAt
			ok = true
		}
	}
	return next, ok
}

// UnlockedIDs returns the ids of the stages unlocked at now, in catalog order.
func UnlockedIDs(stages []Stage, now time.Time) []int {
	var ids []int
	for _, s := range stages {
		if IsUnlocked(s, now) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// StageStatus is the per-player state of a stage.
type StageStatus string

const (
	StatusLocked     StageStatus = "locked"
	StatusInProgress StageStatus = "in_progress"
	StatusCompleted  StageStatus = "completed"
)

// Status derives the state of stage for a player. A stage is locked while
// the unlock gate says so, regardless of stored progress.
func Status(stage Stage, p PlayerProgress, now time.Time) StageStatus {
	switch {
	case !IsUnlocked(stage, now):
		return StatusLocked
	case p.Completed:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Remaining splits d into whole days, hours, minutes and seconds, the way
// the countdown is displayed.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// SplitDuration breaks d down for display. Negative durations yield zero.
func SplitDuration(d time.Duration) Remaining {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
