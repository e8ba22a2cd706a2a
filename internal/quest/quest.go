// Package quest defines the core domain of the stage quest: the content
// model, the unlock gate, answer evaluation, the per-stage progress state
// machine and the leaderboard. It performs no I/O.
package quest

import "time"

// Kind identifies a challenge variant.
type Kind string

const (
	KindQuiz           Kind = "quiz"
	KindSpeedChallenge Kind = "speed-challenge"
	KindPuzzle         Kind = "puzzle"
	KindImageHunt      Kind = "image-hunt"
	KindCodePuzzle     Kind = "code-puzzle"
	KindMapQuest       Kind = "map-quest"

	// Free-text variants evaluated like KindPuzzle.
	KindCipher         Kind = "cipher"
	KindCodeCalc       Kind = "code_puzzle"
	KindHiddenCode     Kind = "hidden_code"
	KindBinary         Kind = "binary"
	KindHex            Kind = "hex"
	KindLocationPuzzle Kind = "location_puzzle"
	KindJSONPuzzle     Kind = "json_puzzle"
	KindASCIIPuzzle    Kind = "ascii_puzzle"
	KindSequencePuzzle Kind = "sequence_puzzle"
	KindColorCode      Kind = "color_code"
	KindFinalRiddle    Kind = "final_riddle"

	// Minigames. Only their scoring contract lives here.
	KindPassword   Kind = "password"
	KindCodeFix    Kind = "code-fix"
	KindPlatformer Kind = "platformer"
	KindRobotSim   Kind = "robot-sim"
)

var textKinds = map[Kind]bool{
	KindPuzzle:         true,
	KindCipher:         true,
	KindCodeCalc:       true,
	KindHiddenCode:     true,
	KindBinary:         true,
	KindHex:            true,
	KindLocationPuzzle: true,
	KindJSONPuzzle:     true,
	KindASCIIPuzzle:    true,
	KindSequencePuzzle: true,
	KindColorCode:      true,
	KindFinalRiddle:    true,
}

// IsText reports whether k is answered with free text compared against
// CorrectAnswer.
func (k Kind) IsText() bool { return textKinds[k] }

// IsChoice reports whether k is answered by picking one of Options.
func (k Kind) IsChoice() bool { return k == KindQuiz || k == KindSpeedChallenge }

// Known reports whether k is a recognized variant.
func (k Kind) Known() bool {
	switch k {
	case KindQuiz, KindSpeedChallenge, KindImageHunt, KindCodePuzzle, KindMapQuest,
		KindPassword, KindCodeFix, KindPlatformer, KindRobotSim:
		return true
	}
	return k.IsText()
}

// Stage is a themed, time-gated collection of challenges. Immutable after
// the catalog is loaded.
type Stage struct {
	ID          int
	Title       string
	Icon        string
	Description string
	UnlockAt    time.Time
	Challenges  []Challenge
}

// Challenge is one scorable task within a stage. Which fields are
// meaningful depends on Kind.
type Challenge struct {
	Kind     Kind
	Question string
	Points   int
	Hint     string

	// quiz, speed-challenge
	Options       []string
	CorrectOption int

	// text variants, password, code-fix, code-puzzle fallback
	CorrectAnswer string
	CaseSensitive bool

	// speed-challenge, robot-sim
	TimeLimit   int // seconds
	BonusPoints int

	// image-hunt
	ImageURL string
	Hotspots []Hotspot

	// code-puzzle
	CodeTemplate    string
	CodeLanguage    string
	PossibleAnswers []string

	// map-quest
	MapCenter Coordinate
	Locations []Location

	// platformer, robot-sim
	Target int
}

// Hotspot is a circular clickable region on an image-hunt image.
type Hotspot struct {
	X         float64
	Y         float64
	Radius    float64
	IsCorrect bool
	Feedback  string
}

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Location is a selectable marker on a map-quest map.
type Location struct {
	Name      string
	Lat       float64
	Lng       float64
	IsCorrect bool
	Feedback  string
}

// Catalog is the ordered, versioned list of stages. StartAt and EndAt bound
// the advertised game window; they are informational and do not gate play.
type Catalog struct {
	Version string
	StartAt time.Time
	EndAt   time.Time
	Stages  []Stage
}

// Stage returns the stage with the given id.
func (c *Catalog) Stage(id int) (Stage, bool) {
	for _, s := range c.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// Player is a registered participant. Email is the identity key.
type Player struct {
	Name           string
	Email          string
	Phone          string
	RegistrationAt time.Time
	LastActiveAt   time.Time
	Progress       []PlayerProgress
}

// StageProgress returns a pointer to the progress record for stageID, or nil.
func (p *Player) StageProgress(stageID int) *PlayerProgress {
	for i := range p.Progress {
		if p.Progress[i].StageID == stageID {
			return &p.Progress[i]
		}
	}
	return nil
}

// CompletedStages counts stages marked completed.
func (p Player) CompletedStages() int {
	n := 0
	for _, pr := range p.Progress {
		if pr.Completed {
			n++
		}
	}
	return n
}

// TotalScore sums the score over all stages.
func (p Player) TotalScore() int {
	total := 0
	for _, pr := range p.Progress {
		total += pr.Score
	}
	return total
}

// Clone returns a deep copy of p.
func (p Player) Clone() Player {
	out := p
	out.Progress = make([]PlayerProgress, len(p.Progress))
	for i, pr := range p.Progress {
		out.Progress[i] = pr.Clone()
	}
	return out
}

// NewPlayer creates a player with all-zero progress for every stage in c.
func NewPlayer(c *Catalog, name, email, phone string, now time.Time) Player {
	p := Player{
		Name:           name,
		Email:          email,
		Phone:          phone,
		RegistrationAt: now,
		LastActiveAt:   now,
		Progress:       make([]PlayerProgress, 0, len(c.Stages)),
	}
	for _, s := range c.Stages {
		p.Progress = append(p.Progress, PlayerProgress{StageID: s.ID})
	}
	return p
}

// EnsureProgress appends zero progress for catalog stages missing from p,
// e.g. after a catalog gained a stage. It reports whether p changed.
func (p *Player) EnsureProgress(c *Catalog) bool {
	changed := false
	for _, s := range c.Stages {
		if p.StageProgress(s.ID) == nil {
			p.Progress = append(p.Progress, PlayerProgress{StageID: s.ID})
			changed = true
		}
	}
	return changed
}
