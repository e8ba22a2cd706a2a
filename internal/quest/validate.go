package quest

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the catalog invariants and returns every violation found.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Stages) == 0 {
		errs = append(errs, errors.New("catalog has no stages"))
	}
	if !c.StartAt.IsZero() && !c.EndAt.IsZero() && !c.EndAt.After(c.StartAt) {
		errs = append(errs, errors.New("endAt must be after startAt"))
	}

	seen := make(map[int]bool, len(c.Stages))
	for _, s := range c.Stages {
		if s.ID <= 0 {
			errs = append(errs, fmt.Errorf("stage %q: id must be positive", s.Title))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("stage %d: duplicate id", s.ID))
		}
		seen[s.ID] = true

		if s.UnlockAt.IsZero() {
			errs = append(errs, fmt.Errorf("stage %d: unlockAt is required", s.ID))
		}
		if len(s.Challenges) == 0 {
			errs = append(errs, fmt.Errorf("stage %d: no challenges", s.ID))
		}
		for i, ch := range s.Challenges {
			if err := ch.validate(); err != nil {
				errs = append(errs, fmt.Errorf("stage %d challenge %d: %w", s.ID, i, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c Challenge) validate() error {
	if !c.Kind.Known() {
		return fmt.Errorf("unknown kind %q", c.Kind)
	}
	if c.Points < 0 {
		return errors.New("points must not be negative")
	}

	switch {
	case c.Kind.IsChoice():
		if len(c.Options) < 2 {
			return errors.New("at least two options are required")
		}
		if c.CorrectOption < 0 || c.CorrectOption >= len(c.Options) {
			return fmt.Errorf("correct option %d out of range", c.CorrectOption)
		}
		if c.Kind == KindSpeedChallenge {
			if c.TimeLimit <= 0 {
				return errors.New("timeLimit must be positive")
			}
			if c.BonusPoints < 0 {
				return errors.New("bonusPoints must not be negative")
			}
		}
	case c.Kind.IsText(), c.Kind == KindPassword, c.Kind == KindCodeFix:
		if strings.TrimSpace(c.CorrectAnswer) == "" {
			return errors.New("correctAnswer is required")
		}
	}

	switch c.Kind {
	case KindCodePuzzle:
		if len(c.PossibleAnswers) == 0 && strings.TrimSpace(c.CorrectAnswer) == "" {
			return errors.New("possibleAnswers or correctAnswer is required")
		}
	case KindImageHunt:
		n := 0
		for _, h := range c.Hotspots {
			if h.Radius <= 0 {
				return errors.New("hotspot radius must be positive")
			}
			if h.IsCorrect {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("exactly one correct hotspot required, got %d", n)
		}
	case KindMapQuest:
		n := 0
		for _, l := range c.Locations {
			if l.IsCorrect {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("exactly one correct location required, got %d", n)
		}
	case KindPlatformer, KindRobotSim:
		if c.Target < 0 || c.TimeLimit < 0 {
			return errors.New("target and timeLimit must not be negative")
		}
	}
	return nil
}
