package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lybotics/stagequest/internal/database"
	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/migrations"
	"github.com/lybotics/stagequest/internal/quest"
	"github.com/lybotics/stagequest/internal/storage"
)

const adminEmail = "coach@lybotics.org"

func testCatalog() *quest.Catalog {
	return &quest.Catalog{
		Version: "test",
		Stages: []quest.Stage{
			{
				ID:       1,
				Title:    "Basics",
				Icon:     "🤖",
				UnlockAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
				Challenges: []quest.Challenge{
					{Kind: quest.KindQuiz, Question: "q", Points: 10, Options: []string{"a", "b"}, CorrectOption: 1},
					{Kind: quest.KindPuzzle, Question: "p", Points: 15, CorrectAnswer: "gear"},
					{Kind: quest.KindSpeedChallenge, Question: "s", Points: 20, Options: []string{"x", "y"}, TimeLimit: 30, BonusPoints: 5},
				},
			},
			{
				ID:       2,
				Title:    "Later",
				UnlockAt: time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC),
				Challenges: []quest.Challenge{
					{Kind: quest.KindPuzzle, Question: "p", Points: 15, CorrectAnswer: "gear"},
				},
			},
		},
	}
}

type testEnv struct {
	handler http.Handler
	engine  *engine.Engine
	broker  *Broker
}

func newTestEnv(t *testing.T, passwordHash string) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := NewBroker()
	eng := engine.New(testCatalog(), storage.NewSQLStore(db), engine.Options{
		Notifier:   broker,
		Logger:     logger,
		AdminEmail: adminEmail,
	})
	srv := New(":0", logger, Options{
		Engine:            eng,
		Broker:            broker,
		AdminPasswordHash: passwordHash,
	}, nil)

	return &testEnv{handler: srv.Handler(), engine: eng, broker: broker}
}

// do sends a JSON request and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", "", LoginRequest{Name: "Sara", Email: email, Phone: "0911"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (body %q)", v, err, w.Body.String())
	}
	return v
}
