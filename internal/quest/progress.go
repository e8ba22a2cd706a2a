package quest

import "slices"

// PlayerProgress is a player's record for one stage.
//
// Completed is true exactly when every challenge index of the stage is in
// CompletedChallenges. Score is the sum of points awarded for the indexes in
// CompletedChallenges and never decreases.
type PlayerProgress struct {
	StageID             int
	Completed           bool
	Score               int
	Attempts            int
	CompletedChallenges []int
}

// Clone returns a copy that shares no memory with p.
func (p PlayerProgress) Clone() PlayerProgress {
	p.CompletedChallenges = slices.Clone(p.CompletedChallenges)
	return p
}

// HasCompleted reports whether challenge index i was already answered
// correctly.
func (p PlayerProgress) HasCompleted(i int) bool {
	return slices.Contains(p.CompletedChallenges, i)
}

// AnswerEvaluated is the event fed to Reduce after the evaluator has judged
// a submission for ChallengeIndex.
type AnswerEvaluated struct {
	ChallengeIndex int
	Verdict        Verdict
}

// EffectKind names a side effect requested by Reduce.
type EffectKind string

const (
	// EffectPersist asks the caller to durably write the new state before
	// reporting success.
	EffectPersist EffectKind = "persist"
	// EffectChallengeCompleted is emitted on the first correct answer for
	// a challenge index.
	EffectChallengeCompleted EffectKind = "challenge_completed"
	// EffectStageCompleted is emitted once, when the last missing challenge
	// of the stage is completed.
	EffectStageCompleted EffectKind = "stage_completed"
)

// Effect is an instruction for the engine produced by Reduce.
type Effect struct {
	Kind           EffectKind
	StageID        int
	ChallengeIndex int
	Points         int
	Score          int
}

// Reduce applies ev to state and returns the next state together with the
// effects the caller must carry out. state is not modified.
//
// Every evaluation counts one attempt. Only the first correct evaluation of
// a challenge index changes the score. Completion is one-way.
func Reduce(stage Stage, state PlayerProgress, ev AnswerEvaluated) (PlayerProgress, []Effect) {
	next := state.Clone()
	next.Attempts++

	effects := []Effect{{Kind: EffectPersist, StageID: stage.ID}}

	if !ev.Verdict.Correct || next.HasCompleted(ev.ChallengeIndex) {
		return next, effects
	}

	next.CompletedChallenges = append(next.CompletedChallenges, ev.ChallengeIndex)
	next.Score += ev.Verdict.PointsAwarded
	effects = append(effects, Effect{
		Kind:           EffectChallengeCompleted,
		StageID:        stage.ID,
		ChallengeIndex: ev.ChallengeIndex,
		Points:         ev.Verdict.PointsAwarded,
		Score:          next.Score,
	})

	if !next.Completed && len(next.CompletedChallenges) == len(stage.Challenges) {
		next.Completed = true
		effects = append(effects, Effect{
			Kind:    EffectStageCompleted,
			StageID: stage.ID,
			Score:   next.Score,
		})
	}
	return next, effects
}
