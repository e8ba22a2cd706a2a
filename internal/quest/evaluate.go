package quest

import (
	"math"
	"strings"
)

// Point is a click position in image coordinates.
type Point struct {
	X float64
	Y float64
}

// Submission is a raw player answer. Which fields are read depends on the
// challenge kind.
type Submission struct {
	// Choice is the selected option (quiz, speed-challenge), hotspot
	// (image-hunt) or location (map-quest) index.
	Choice *int
	// Text is the typed answer for text variants, code-puzzle, password and
	// code-fix.
	Text string
	// Click is a raw image-hunt click, resolved with HitTest when Choice is
	// not set.
	Click *Point

	// Minigame outcome.
	Collected int
	CodeFixed bool
	Elapsed   int // seconds of simulated time used by robot-sim

	// TimeRemaining is the whole seconds left on a speed challenge's
	// countdown. The caller measures it; the evaluator only judges it.
	TimeRemaining int
}

// Verdict is the outcome of evaluating a submission.
type Verdict struct {
	Correct       bool
	PointsAwarded int
	Bonus         int
	Feedback      string
}

const (
	defaultPlatformerTarget = 10
	defaultRobotSimTarget   = 5
	defaultRobotSimLimit    = 60
)

// Evaluate judges s against c. A ValidationError means the submission was
// empty or malformed and must not count as an attempt. ErrTimeUp means a
// speed challenge arrived after its countdown; it earns nothing.
func Evaluate(c Challenge, s Submission) (Verdict, error) {
	switch {
	case c.Kind.IsChoice():
		return evaluateChoice(c, s)
	case c.Kind.IsText():
		return evaluateText(c, s.Text, c.CaseSensitive)
	}

	switch c.Kind {
	case KindCodePuzzle:
		return evaluateCodePuzzle(c, s)
	case KindImageHunt:
		return evaluateImageHunt(c, s)
	case KindMapQuest:
		return evaluateMapQuest(c, s)
	case KindPassword:
		return evaluateText(c, s.Text, false)
	case KindCodeFix:
		return evaluateCodeFix(c, s)
	case KindPlatformer:
		target := orDefault(c.Target, defaultPlatformerTarget)
		return award(c, s.Collected >= target && s.CodeFixed), nil
	case KindRobotSim:
		target := orDefault(c.Target, defaultRobotSimTarget)
		limit := orDefault(c.TimeLimit, defaultRobotSimLimit)
		if s.Elapsed < 0 {
			return Verdict{}, invalid("elapsed", "must not be negative")
		}
		return award(c, s.Collected >= target && s.Elapsed <= limit), nil
	}
	return Verdict{}, invalid("kind", "unsupported challenge kind "+string(c.Kind))
}

func evaluateChoice(c Challenge, s Submission) (Verdict, error) {
	if s.Choice == nil {
		return Verdict{}, invalid("choice", "an option must be selected")
	}
	if *s.Choice < 0 || *s.Choice >= len(c.Options) {
		return Verdict{}, invalid("choice", "option out of range")
	}

	correct := *s.Choice == c.CorrectOption
	if c.Kind != KindSpeedChallenge {
		return award(c, correct), nil
	}

	if s.TimeRemaining <= 0 {
		return Verdict{}, ErrTimeUp
	}
	v := award(c, correct)
	// Bonus when more than half of the time limit is left.
	if correct && s.TimeRemaining*2 > c.TimeLimit {
		v.Bonus = c.BonusPoints
		v.PointsAwarded += c.BonusPoints
	}
	return v, nil
}

func evaluateText(c Challenge, text string, caseSensitive bool) (Verdict, error) {
	got := strings.TrimSpace(text)
	if got == "" {
		return Verdict{}, invalid("text", "an answer is required")
	}
	want := strings.TrimSpace(c.CorrectAnswer)
	if !caseSensitive {
		got = strings.ToLower(got)
		want = strings.ToLower(want)
	}
	return award(c, got == want), nil
}

func evaluateCodePuzzle(c Challenge, s Submission) (Verdict, error) {
	got := strings.ToLower(strings.TrimSpace(s.Text))
	if got == "" {
		return Verdict{}, invalid("text", "an answer is required")
	}
	accepted := c.PossibleAnswers
	if len(accepted) == 0 {
		accepted = []string{c.CorrectAnswer}
	}
	for _, a := range accepted {
		if strings.ToLower(strings.TrimSpace(a)) == got {
			return award(c, true), nil
		}
	}
	return award(c, false), nil
}

func evaluateImageHunt(c Challenge, s Submission) (Verdict, error) {
	idx := -1
	switch {
	case s.Choice != nil:
		idx = *s.Choice
	case s.Click != nil:
		i, ok := HitTest(c.Hotspots, *s.Click)
		if !ok {
			return Verdict{}, invalid("click", "no hotspot at this position")
		}
		idx = i
	default:
		return Verdict{}, invalid("choice", "an area of the image must be selected")
	}
	if idx < 0 || idx >= len(c.Hotspots) {
		return Verdict{}, invalid("choice", "hotspot out of range")
	}

	h := c.Hotspots[idx]
	v := award(c, h.IsCorrect)
	if !h.IsCorrect {
		v.Feedback = h.Feedback
	}
	return v, nil
}

func evaluateMapQuest(c Challenge, s Submission) (Verdict, error) {
	if s.Choice == nil {
		return Verdict{}, invalid("choice", "a location must be selected")
	}
	idx := *s.Choice
	if idx < 0 || idx >= len(c.Locations) {
		return Verdict{}, invalid("choice", "location out of range")
	}

	loc := c.Locations[idx]
	v := award(c, loc.IsCorrect)
	if !loc.IsCorrect {
		v.Feedback = loc.Feedback
	}
	return v, nil
}

func evaluateCodeFix(c Challenge, s Submission) (Verdict, error) {
	got := squash(s.Text)
	if got == "" {
		return Verdict{}, invalid("text", "code is required")
	}
	want := squash(c.CorrectAnswer)
	return award(c, strings.Contains(got, want) || strings.Contains(want, got)), nil
}

// HitTest returns the index of the hotspot containing p. When hotspots
// overlap the last one wins.
func HitTest(hotspots []Hotspot, p Point) (int, bool) {
	hit := -1
	for i, h := range hotspots {
		if math.Hypot(p.X-h.X, p.Y-h.Y) <= h.Radius {
			hit = i
		}
	}
	return hit, hit >= 0
}

func award(c Challenge, correct bool) Verdict {
	if !correct {
		return Verdict{}
	}
	return Verdict{Correct: true, PointsAwarded: c.Points}
}

// squash lower-cases s and drops all whitespace.
func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
