package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lybotics/stagequest/internal/quest"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore implements Store with one JSONB document per player. The schema
// is created by the migrations package.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) LoadPlayer(ctx context.Context, email string) (quest.Player, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM players WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return quest.Player{}, quest.ErrNotFound
	}
	if err != nil {
		return quest.Player{}, persistErr("load player", err)
	}

	var d PlayerDoc
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return quest.Player{}, persistErr("decode player", err)
	}
	return d.Player(), nil
}

func (s *SQLStore) SavePlayer(ctx context.Context, p quest.Player) error {
	data, err := json.Marshal(NewPlayerDoc(p))
	if err != nil {
		return persistErr("encode player", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (email, registered_at, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(email) DO UPDATE SET data = excluded.data`,
		p.Email, p.RegistrationAt.UTC().Format(timeLayout), string(data),
	)
	if err != nil {
		return persistErr("save player", err)
	}
	return nil
}

func (s *SQLStore) LoadAllPlayers(ctx context.Context) ([]quest.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM players ORDER BY registered_at, email`,
	)
	if err != nil {
		return nil, persistErr("load players", err)
	}
	defer rows.Close()

	var players []quest.Player
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, persistErr("load players", err)
		}
		var d PlayerDoc
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, persistErr("decode player", err)
		}
		players = append(players, d.Player())
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("load players", err)
	}
	return players, nil
}

func (s *SQLStore) SaveSession(ctx context.Context, token, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO player_sessions (id, email, created_at) VALUES (?, ?, ?)`,
		token, email, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return persistErr("save session", err)
	}
	return nil
}

func (s *SQLStore) LookupSession(ctx context.Context, token string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT email FROM player_sessions WHERE id = ?`, token,
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", quest.ErrNotFound
	}
	if err != nil {
		return "", persistErr("lookup session", err)
	}
	return email, nil
}

// DeleteSession removes token. Deleting an unknown token is not an error.
func (s *SQLStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM player_sessions WHERE id = ?`, token,
	); err != nil {
		return persistErr("delete session", err)
	}
	return nil
}

func (s *SQLStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Ensure SQLStore implements Store at compile time.
var _ Store = (*SQLStore)(nil)
