package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

func TestLoadEmbedded(t *testing.T) {
	tests := []struct {
		name   string
		stages int
	}{
		{Classic, 8},
		{Interactive, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(tt.name)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(c.Stages) != tt.stages {
				t.Errorf("stages = %d, want %d", len(c.Stages), tt.stages)
			}
			if c.Version == "" {
				t.Error("version is empty")
			}
			for i := 1; i < len(c.Stages); i++ {
				if c.Stages[i].UnlockAt.Before(c.Stages[i-1].UnlockAt) {
					t.Errorf("stage %d unlocks before stage %d", c.Stages[i].ID, c.Stages[i-1].ID)
				}
			}
		})
	}
}

func TestInteractiveFirstStage(t *testing.T) {
	c, err := Load(Interactive)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s, ok := c.Stage(1)
	if !ok {
		t.Fatal("stage 1 missing")
	}
	want := time.Date(2024, 12, 1, 0, 0, 0, 0, time.FixedZone("", 2*60*60))
	if !s.UnlockAt.Equal(want) {
		t.Errorf("unlockAt = %v, want %v", s.UnlockAt, want)
	}

	hunt := s.Challenges[0]
	if hunt.Kind != quest.KindImageHunt || len(hunt.Hotspots) != 2 || !hunt.Hotspots[0].IsCorrect {
		t.Errorf("image hunt = %+v", hunt)
	}

	speed := s.Challenges[2]
	if speed.Kind != quest.KindSpeedChallenge || speed.TimeLimit != 10 || speed.BonusPoints != 10 || speed.CorrectOption != 1 {
		t.Errorf("speed challenge = %+v", speed)
	}
}

func TestClassicTextAnswersStayStrings(t *testing.T) {
	c, err := Load(Classic)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, _ := c.Stage(2)
	if got := s.Challenges[3].CorrectAnswer; got != "2" {
		t.Errorf("correctAnswer = %q, want \"2\"", got)
	}
	if got := s.Challenges[0].CorrectOption; got != 1 {
		t.Errorf("correctOption = %d, want 1", got)
	}
}

const sample = `
version: test
stages:
  - id: 1
    title: One
    unlockAt: "2024-12-01T00:00:00Z"
    challenges:
      - type: quiz
        question: pick
        options: [a, b]
        correctAnswer: 1
        points: 10
      - type: puzzle
        question: word
        correctAnswer: 42
        points: 5
`

func TestParseLegacyCorrectAnswer(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ch := c.Stages[0].Challenges
	if ch[0].CorrectOption != 1 {
		t.Errorf("quiz correct option = %d, want 1", ch[0].CorrectOption)
	}
	if ch[1].CorrectAnswer != "42" {
		t.Errorf("puzzle answer = %q, want 42", ch[1].CorrectAnswer)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "stages: [", "parse yaml"},
		{"bad time", "stages:\n  - id: 1\n    unlockAt: tomorrow\n", "unlockAt"},
		{"no stages", "version: x\n", "no stages"},
		{"bad option index", strings.Replace(sample, "correctAnswer: 1", "correctAnswer: b", 1), "not an option index"},
		{"unknown kind", strings.Replace(sample, "type: puzzle", "type: trivia", 1), "unknown kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Version != "test" {
		t.Errorf("version = %q, want test", c.Version)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
