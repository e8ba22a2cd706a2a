// questctl is the operator CLI for the stage quest.
//
// Usage:
//
//	questctl catalog validate [name|file...]  - Validate catalogs
//	questctl catalog show [name|file]         - List the stages of a catalog
//	questctl leaderboard [--limit n]          - Show the ranking
//	questctl stats                            - Show per-stage completion
//	questctl export [--out file]              - Dump every player as JSON
//
// Storage is configured with the same environment variables as the server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lybotics/stagequest/internal/catalog"
	"github.com/lybotics/stagequest/internal/config"
	"github.com/lybotics/stagequest/internal/database"
	"github.com/lybotics/stagequest/internal/engine"
	"github.com/lybotics/stagequest/internal/migrations"
	"github.com/lybotics/stagequest/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	verbose bool
	catalog string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "questctl",
		Short: "Operate the Lybotics stage quest",
		Long: `questctl inspects catalogs and the stored players of a stage quest
deployment. It reads STORE_BACKEND, DB_PATH, REDIS_URL and CATALOG like the
server does.

Examples:
  questctl catalog validate
  questctl leaderboard --limit 10
  questctl export --out players.json`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.catalog, "catalog", "", "Catalog name or YAML file (default: $CATALOG)")

	root.AddCommand(newCatalogCmd(a))
	root.AddCommand(newLeaderboardCmd(a))
	root.AddCommand(newStatsCmd(a))
	root.AddCommand(newExportCmd(a))
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "questctl",
		Level:           level,
	}))
}

// openEngine loads configuration, the catalog and the configured store.
// The returned func releases the store.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	name := cfg.Catalog
	if a.catalog != "" {
		name = a.catalog
	}
	cat, err := catalog.Load(name)
	if err != nil {
		return nil, nil, err
	}

	var (
		store   storage.Store
		release func()
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := storage.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store, release = storage.NewRedisStore(rdb, storage.DefaultRedisPrefix), func() { rdb.Close() }
	default:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		if err := migrations.Run(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		store, release = storage.NewSQLStore(db), func() { db.Close() }
	}
	a.logger.Debug("store opened", "backend", cfg.StoreBackend, "catalog", cat.Version)

	return engine.New(cat, store, engine.Options{Logger: a.logger}), release, nil
}
