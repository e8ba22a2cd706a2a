package server

import (
	"net/http"
	"testing"

	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/quest"
)

func intp(i int) *int { return &i }

func TestLoginAndSession(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/api/login", "", LoginRequest{Name: " Sara ", Email: "SARA@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[LoginResponse](t, w)
	if resp.Token == "" || resp.Player.Email != "sara@example.com" || resp.Player.Name != "Sara" {
		t.Errorf("login response = %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/api/session", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session: expected 200, got %d", w.Code)
	}
	if s := decode[SessionResponse](t, w); s.IsAdmin || s.Email != "sara@example.com" {
		t.Errorf("session = %+v", s)
	}

	w = env.do(t, http.MethodPost, "/api/logout", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, "/api/session", resp.Token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("session after logout: expected 401, got %d", w.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing name", LoginRequest{Email: "a@b.org"}, http.StatusBadRequest},
		{"missing email", LoginRequest{Name: "Sara"}, http.StatusBadRequest},
		{"bad json", "nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/login", "", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestPlayerRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, "")

	for _, path := range []string{"/api/session", "/api/stages", "/api/stages/1"} {
		w := env.do(t, http.MethodGet, path, "bogus", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestStagesRoutes(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.login(t, "sara@example.com")

	w := env.do(t, http.MethodGet, "/api/stages", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stages := decode[[]engine.StageView](t, w)
	if len(stages) != 2 || stages[0].Status != quest.StatusInProgress || stages[1].Status != quest.StatusLocked {
		t.Errorf("stages = %+v", stages)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/stages/1", http.StatusOK},
		{"/api/stages/2", http.StatusConflict},
		{"/api/stages/9", http.StatusNotFound},
		{"/api/stages/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := env.do(t, http.MethodGet, tt.path, token, nil); w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, w.Code)
		}
	}

	w = env.do(t, http.MethodGet, "/api/stages/1", token, nil)
	stage := decode[engine.StageView](t, w)
	if len(stage.Challenges) != 3 || stage.Challenges[0].Options[1] != "b" {
		t.Errorf("stage = %+v", stage)
	}
}

func TestAnswerFlow(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.login(t, "sara@example.com")
	base := "/api/stages/1/challenges/"

	w := env.do(t, http.MethodPost, base+"0/answer", token, AnswerRequest{Choice: intp(0)})
	if w.Code != http.StatusOK {
		t.Fatalf("wrong answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if out := decode[engine.Outcome](t, w); out.Correct || out.Attempts != 1 {
		t.Errorf("wrong answer outcome = %+v", out)
	}

	w = env.do(t, http.MethodPost, base+"1/answer", token, AnswerRequest{Text: " GEAR "})
	if out := decode[engine.Outcome](t, w); !out.Correct || out.PointsAwarded != 15 || out.Score != 15 {
		t.Errorf("puzzle outcome = %+v", out)
	}

	if w = env.do(t, http.MethodPost, base+"1/answer", token, AnswerRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty answer: expected 400, got %d", w.Code)
	}
	if w = env.do(t, http.MethodPost, base+"2/answer", token, AnswerRequest{Choice: intp(0)}); w.Code != http.StatusConflict {
		t.Errorf("speed without start: expected 409, got %d", w.Code)
	}
	if w = env.do(t, http.MethodPost, base+"7/answer", token, AnswerRequest{Choice: intp(0)}); w.Code != http.StatusNotFound {
		t.Errorf("missing challenge: expected 404, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"2/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if tv := decode[engine.TimerView](t, w); tv.TimeLimit != 30 {
		t.Errorf("timer = %+v", tv)
	}
	if w = env.do(t, http.MethodPost, base+"0/start", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("start quiz: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"2/answer", token, AnswerRequest{Choice: intp(0)})
	if w.Code != http.StatusOK {
		t.Fatalf("speed answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if out := decode[engine.Outcome](t, w); out.Bonus != 5 || out.StageCompleted {
		t.Errorf("speed outcome = %+v", out)
	}
	if w = env.do(t, http.MethodPost, base+"2/start", token, nil); w.Code != http.StatusConflict {
		t.Errorf("restart answered speed challenge: expected 409, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"0/answer", token, AnswerRequest{Choice: intp(1)})
	out := decode[engine.Outcome](t, w)
	if !out.StageCompleted || out.Score != 50 || out.Attempts != 4 {
		t.Errorf("final outcome = %+v", out)
	}

	if w = env.do(t, http.MethodPost, "/api/stages/1/leave", token, nil); w.Code != http.StatusOK {
		t.Errorf("leave: expected 200, got %d", w.Code)
	}
}

func TestLeaderboardAndCountdown(t *testing.T) {
	env := newTestEnv(t, "")
	a := env.login(t, "a@example.com")
	env.login(t, "b@example.com")
	env.do(t, http.MethodPost, "/api/stages/1/challenges/0/answer", a, AnswerRequest{Choice: intp(1)})

	w := env.do(t, http.MethodGet, "/api/leaderboard?limit=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	rows := decode[[]LeaderboardRow](t, w)
	if len(rows) != 1 || rows[0].Rank != 1 || rows[0].TotalScore != 10 {
		t.Errorf("rows = %+v", rows)
	}

	if w := env.do(t, http.MethodGet, "/api/leaderboard?limit=x", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/countdown", "", nil)
	cd := decode[engine.Countdown](t, w)
	if cd.AllUnlocked || cd.NextUnlock == nil || cd.Remaining == nil {
		t.Errorf("countdown = %+v", cd)
	}
}
