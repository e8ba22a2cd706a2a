package engine

import (
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// StageView is a stage as shown to a player, with its status and progress.
// Challenges are present only for unlocked stages and never carry answers.
type StageView struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Icon        string            `json:"icon"`
	Description string            `json:"description"`
	UnlockAt    time.Time         `json:"unlockAt"`
	Status      quest.StageStatus `json:"status"`
	Progress    ProgressView      `json:"progress"`
	Challenges  []ChallengeView   `json:"challenges,omitempty"`
}

type ProgressView struct {
	Completed           bool  `json:"completed"`
	Score               int   `json:"score"`
	Attempts            int   `json:"attempts"`
	CompletedChallenges []int `json:"completedChallenges"`
}

// ChallengeView is the answer-free projection of a challenge.
type ChallengeView struct {
	Index        int               `json:"index"`
	Type         quest.Kind        `json:"type"`
	Question     string            `json:"question"`
	Points       int               `json:"points"`
	Hint         string            `json:"hint,omitempty"`
	Options      []string          `json:"options,omitempty"`
	TimeLimit    int               `json:"timeLimit,omitempty"`
	BonusPoints  int               `json:"bonusPoints,omitempty"`
	ImageURL     string            `json:"imageUrl,omitempty"`
	Hotspots     []HotspotView     `json:"hotspots,omitempty"`
	CodeTemplate string            `json:"codeTemplate,omitempty"`
	CodeLanguage string            `json:"codeLanguage,omitempty"`
	MapCenter    *quest.Coordinate `json:"mapCenter,omitempty"`
	Locations    []LocationView    `json:"locations,omitempty"`
	Target       int               `json:"target,omitempty"`
	Completed    bool              `json:"completed"`
}

type HotspotView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type LocationView struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// TimerView describes a started speed-challenge countdown.
type TimerView struct {
	StageID        int       `json:"stageId"`
	ChallengeIndex int       `json:"challengeIndex"`
	TimeLimit      int       `json:"timeLimit"`
	Deadline       time.Time `json:"deadline"`
}

func newProgressView(p quest.PlayerProgress) ProgressView {
	done := p.CompletedChallenges
	if done == nil {
		done = []int{}
	}
	return ProgressView{
		Completed:           p.Completed,
		Score:               p.Score,
		Attempts:            p.Attempts,
		CompletedChallenges: done,
	}
}

func newStageView(s quest.Stage, p quest.PlayerProgress, now time.Time, withChallenges bool) StageView {
	v := StageView{
		ID:          s.ID,
		Title:       s.Title,
		Icon:        s.Icon,
		Description: s.Description,
		UnlockAt:    s.UnlockAt,
		Status:      quest.Status(s, p, now),
		Progress:    newProgressView(p.Clone()),
	}
	if !withChallenges || v.Status == quest.StatusLocked {
		return v
	}
	for i, ch := range s.Challenges {
		v.Challenges = append(v.Challenges, newChallengeView(i, ch, p.HasCompleted(i)))
	}
	return v
}

func newChallengeView(i int, ch quest.Challenge, completed bool) ChallengeView {
	v := ChallengeView{
		Index:        i,
		Type:         ch.Kind,
		Question:     ch.Question,
		Points:       ch.Points,
		Hint:         ch.Hint,
		Options:      ch.Options,
		TimeLimit:    ch.TimeLimit,
		BonusPoints:  ch.BonusPoints,
		ImageURL:     ch.ImageURL,
		CodeTemplate: ch.CodeTemplate,
		CodeLanguage: ch.CodeLanguage,
		Target:       ch.Target,
		Completed:    completed,
	}
	for _, h := range ch.Hotspots {
		v.Hotspots = append(v.Hotspots, HotspotView{X: h.X, Y: h.Y, Radius: h.Radius})
	}
	if ch.Kind == quest.KindMapQuest {
		c := ch.MapCenter
		v.MapCenter = &c
	}
	for _, l := range ch.Locations {
		v.Locations = append(v.Locations, LocationView{Name: l.Name, Lat: l.Lat, Lng: l.Lng})
	}
	return v
}
