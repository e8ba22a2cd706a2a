package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/lybotics/stagequest/internal/catalog"
	"github.com/lybotics/stagequest/internal/config"
	"github.com/lybotics/stagequest/internal/database"
	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/handler/health"
	"github.com/lybotics/stagequest/internal/migrations"
	"github.com/lybotics/stagequest/internal/server"
	"github.com/lybotics/stagequest/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded", "name", cfg.Catalog, "version", cat.Version, "stages", len(cat.Stages))

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	broker := server.NewBroker()
	eng := engine.New(cat, store, engine.Options{
		Notifier:   broker,
		Logger:     logger,
		AdminEmail: cfg.AdminEmail,
		GameStart:  cfg.GameStart,
		GameEnd:    cfg.GameEnd,
	})

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Options{
		Engine:            eng,
		Broker:            broker,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SPADir:            cfg.SPADir,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			cfg.StoreBackend: store,
		}).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return eng.WatchUnlocks(gctx, cfg.UnlockPollInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := storage.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis")
		return storage.NewRedisStore(rdb, storage.DefaultRedisPrefix), func() { rdb.Close() }, nil

	default:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		if err := migrations.Run(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)
		return storage.NewSQLStore(db), func() { db.Close() }, nil
	}
}
