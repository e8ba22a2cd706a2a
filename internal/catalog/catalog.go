// Package catalog loads the static stage tables. A catalog is read whole at
// startup, validated, and never modified afterwards.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lybotics/stagequest/internal/quest"
)

//go:embed tables/*.yaml
var tables embed.FS

// Built-in catalog names.
const (
	Classic     = "classic"
	Interactive = "interactive"
)

// Names lists the embedded catalogs.
func Names() []string { return []string{Classic, Interactive} }

type yamlCatalog struct {
	Version string      `yaml:"version"`
	StartAt string      `yaml:"startAt"`
	EndAt   string      `yaml:"endAt"`
	Stages  []yamlStage `yaml:"stages"`
}

type yamlStage struct {
	ID          int             `yaml:"id"`
	Title       string          `yaml:"title"`
	Icon        string          `yaml:"icon"`
	Description string          `yaml:"description"`
	UnlockAt    string          `yaml:"unlockAt"`
	Challenges  []yamlChallenge `yaml:"challenges"`
}

type yamlChallenge struct {
	Type            string         `yaml:"type"`
	Question        string         `yaml:"question"`
	Points          int            `yaml:"points"`
	Hint            string         `yaml:"hint,omitempty"`
	Options         []string       `yaml:"options,omitempty"`
	CorrectOption   *int           `yaml:"correctOption,omitempty"`
	CorrectAnswer   yaml.Node      `yaml:"correctAnswer,omitempty"`
	CaseSensitive   bool           `yaml:"caseSensitive,omitempty"`
	TimeLimit       int            `yaml:"timeLimit,omitempty"`
	BonusPoints     int            `yaml:"bonusPoints,omitempty"`
	ImageURL        string         `yaml:"imageUrl,omitempty"`
	Hotspots        []yamlHotspot  `yaml:"hotspots,omitempty"`
	CodeTemplate    string         `yaml:"codeTemplate,omitempty"`
	CodeLanguage    string         `yaml:"codeLanguage,omitempty"`
	PossibleAnswers []string       `yaml:"possibleAnswers,omitempty"`
	MapCenter       *yamlCoord     `yaml:"mapCenter,omitempty"`
	Locations       []yamlLocation `yaml:"locations,omitempty"`
	Target          int            `yaml:"target,omitempty"`
}

type yamlHotspot struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Radius    float64 `yaml:"radius"`
	IsCorrect bool    `yaml:"isCorrect"`
	Feedback  string  `yaml:"feedback"`
}

type yamlCoord struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type yamlLocation struct {
	Name      string  `yaml:"name"`
	Lat       float64 `yaml:"lat"`
	Lng       float64 `yaml:"lng"`
	IsCorrect bool    `yaml:"isCorrect"`
	Feedback  string  `yaml:"feedback"`
}

// Load returns the named embedded catalog, or reads name as a YAML file
// path when it is not a built-in name. The result is validated.
func Load(name string) (*quest.Catalog, error) {
	var (
		data []byte
		err  error
	)
	switch name {
	case Classic, Interactive:
		data, err = tables.ReadFile("tables/" + name + ".yaml")
	default:
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", name, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*quest.Catalog, error) {
	var yc yamlCatalog
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	c := &quest.Catalog{Version: yc.Version}
	var err error
	if c.StartAt, err = parseTime(yc.StartAt); err != nil {
		return nil, fmt.Errorf("startAt: %w", err)
	}
	if c.EndAt, err = parseTime(yc.EndAt); err != nil {
		return nil, fmt.Errorf("endAt: %w", err)
	}

	for _, ys := range yc.Stages {
		s, err := ys.toStage()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", ys.ID, err)
		}
		c.Stages = append(c.Stages, s)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (ys yamlStage) toStage() (quest.Stage, error) {
	unlockAt, err := parseTime(ys.UnlockAt)
	if err != nil {
		return quest.Stage{}, fmt.Errorf("unlockAt: %w", err)
	}
	s := quest.Stage{
		ID:          ys.ID,
		Title:       ys.Title,
		Icon:        ys.Icon,
		Description: ys.Description,
		UnlockAt:    unlockAt,
	}
	for i, yc := range ys.Challenges {
		ch, err := yc.toChallenge()
		if err != nil {
			return quest.Stage{}, fmt.Errorf("challenge %d: %w", i, err)
		}
		s.Challenges = append(s.Challenges, ch)
	}
	return s, nil
}

func (yc yamlChallenge) toChallenge() (quest.Challenge, error) {
	ch := quest.Challenge{
		Kind:            quest.Kind(yc.Type),
		Question:        yc.Question,
		Points:          yc.Points,
		Hint:            yc.Hint,
		Options:         yc.Options,
		CaseSensitive:   yc.CaseSensitive,
		TimeLimit:       yc.TimeLimit,
		BonusPoints:     yc.BonusPoints,
		ImageURL:        yc.ImageURL,
		CodeTemplate:    yc.CodeTemplate,
		CodeLanguage:    yc.CodeLanguage,
		PossibleAnswers: yc.PossibleAnswers,
		Target:          yc.Target,
	}

	// Choice kinds may give the correct index either as correctOption or,
	// like the legacy tables, as an integer correctAnswer.
	answer := strings.TrimSpace(yc.CorrectAnswer.Value)
	if ch.Kind.IsChoice() {
		switch {
		case yc.CorrectOption != nil:
			ch.CorrectOption = *yc.CorrectOption
		case answer != "":
			n, err := strconv.Atoi(answer)
			if err != nil {
				return ch, fmt.Errorf("correctAnswer %q is not an option index", answer)
			}
			ch.CorrectOption = n
		default:
			return ch, errors.New("correctOption is required")
		}
	} else {
		ch.CorrectAnswer = yc.CorrectAnswer.Value
	}

	for _, h := range yc.Hotspots {
		ch.Hotspots = append(ch.Hotspots, quest.Hotspot(h))
	}
	for _, l := range yc.Locations {
		ch.Locations = append(ch.Locations, quest.Location(l))
	}
	if yc.MapCenter != nil {
		ch.MapCenter = quest.Coordinate(*yc.MapCenter)
	}
	return ch, nil
}

// parseTime accepts RFC 3339. An empty string yields the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
