// Command load-results copies the dilemma store and the parsed choice
// artifact into PostgreSQL for ad-hoc SQL. Reloading the same artifact only
// inserts rows appended since the previous load.
//
// Flags:
//
//	--artifact    artifact CSV (default paths.artifact_path)
//	--no-migrate  skip applying migrations
//	--config      path to config YAML
//
// Requires database.dsn (DATABASE_DSN). Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dilma-lab/dilma/internal/adapter/postgres"
	"github.com/dilma-lab/dilma/internal/adapter/postgres/results"
	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/aggregator"
	"github.com/dilma-lab/dilma/internal/app/warehouse"
	"github.com/dilma-lab/dilma/internal/config"
	"github.com/dilma-lab/dilma/internal/dilemma"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	artifact := flag.String("artifact", "", "artifact CSV")
	noMigrate := flag.Bool("no-migrate", false, "skip applying migrations")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("load-results", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if *artifact != "" {
		cfg.Paths.ArtifactPath = *artifact
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, !*noMigrate, logger); err != nil {
		logger.Error("load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) error {
	if err := cfg.Database.RequireDatabase(); err != nil {
		return err
	}

	if migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
			return err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, _, err := dilemma.Load(ctx, cfg.Paths.DilemmasDir, logger)
	if err != nil {
		return fmt.Errorf("load dilemma store: %w", err)
	}
	rows, err := aggregator.ReadArtifact(cfg.Paths.ArtifactPath)
	if err != nil {
		return err
	}

	loader := warehouse.New(postgres.NewTxManager(pool), results.New(pool), logger)
	_, err = loader.Load(ctx, store, cfg.Paths.ArtifactPath, rows)
	return err
}
