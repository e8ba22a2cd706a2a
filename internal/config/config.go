package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBPath       string `env:"DB_PATH" envDefault:"data/stagequest.db"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Catalog is a built-in catalog name or a path to a YAML file.
	Catalog string `env:"CATALOG" envDefault:"interactive"`
	// GameStart and GameEnd override the window advertised by the catalog.
	GameStart time.Time `env:"GAME_START_DATE"`
	GameEnd   time.Time `env:"GAME_END_DATE"`

	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	UnlockPollInterval time.Duration `env:"UNLOCK_POLL_INTERVAL" envDefault:"1s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q", c.StoreBackend)
	}
	if !c.GameStart.IsZero() && !c.GameEnd.IsZero() && !c.GameEnd.After(c.GameStart) {
		return errors.New("GAME_END_DATE must be after GAME_START_DATE")
	}
	if c.UnlockPollInterval <= 0 {
		return errors.New("UNLOCK_POLL_INTERVAL must be positive")
	}
	return nil
}
