package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lybotics/stagequest/internal/quest"
)

// OpenRedis connects to rawURL, retrying the initial ping with exponential
// backoff until ctx is done or the attempts run out.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// RedisStore implements Store on Redis. Players are msgpack values under
// player:<email>; the players sorted set, scored by registration time,
// fixes the listing order. Sessions are plain strings.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// DefaultRedisPrefix namespaces the keys of a deployment.
const DefaultRedisPrefix = "stagequest:"

// NewRedisStore namespaces every key with prefix (may be empty).
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) playerKey(email string) string { return s.prefix + "player:" + email }
func (s *RedisStore) sessionKey(token string) string { return s.prefix + "session:" + token }
func (s *RedisStore) indexKey() string { return s.prefix + "players" }

func (s *RedisStore) LoadPlayer(ctx context.Context, email string) (quest.Player, error) {
	data, err := s.rdb.Get(ctx, s.playerKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quest.Player{}, quest.ErrNotFound
	}
	if err != nil {
		return quest.Player{}, persistErr("load player", err)
	}
	return decodePlayer(data)
}

func (s *RedisStore) SavePlayer(ctx context.Context, p quest.Player) error {
	data, err := msgpack.Marshal(NewPlayerDoc(p))
	if err != nil {
		return persistErr("encode player", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.playerKey(p.Email), data, 0)
		pipe.ZAddNX(ctx, s.indexKey(), redis.Z{
			Score:  float64(p.RegistrationAt.UnixMilli()),
			Member: p.Email,
		})
		return nil
	})
	if err != nil {
		return persistErr("save player", err)
	}
	return nil
}

func (s *RedisStore) LoadAllPlayers(ctx context.Context) ([]quest.Player, error) {
	emails, err := s.rdb.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, persistErr("load players", err)
	}
	if len(emails) == 0 {
		return nil, nil
	}

	keys := make([]string, len(emails))
	for i, e := range emails {
		keys[i] = s.playerKey(e)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, persistErr("load players", err)
	}

	players := make([]quest.Player, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a value
		}
		p, err := decodePlayer([]byte(raw))
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, token, email string) error {
	if err := s.rdb.Set(ctx, s.sessionKey(token), email, 0).Err(); err != nil {
		return persistErr("save session", err)
	}
	return nil
}

func (s *RedisStore) LookupSession(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.Get(ctx, s.sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", quest.ErrNotFound
	}
	if err != nil {
		return "", persistErr("lookup session", err)
	}
	return email, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, s.sessionKey(token)).Err(); err != nil {
		return persistErr("delete session", err)
	}
	return nil
}

func (s *RedisStore) Check(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func decodePlayer(data []byte) (quest.Player, error) {
	var d PlayerDoc
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return quest.Player{}, persistErr("decode player", err)
	}
	return d.Player(), nil
}

// Ensure RedisStore implements Store at compile time.
var _ Store = (*RedisStore)(nil)
