// Command check-dilemmas validates every dilemma file against the value
// vocabulary and, with --results, folds raw answer logs into the tabular
// artifact.
//
// Flags:
//
//	--config   path to config YAML (optional; falls back to CONFIG_PATH, ./config.yaml, env)
//	--store    dilemma store directory (default paths.dilemmas_dir)
//	--results  raw answer log file or directory to aggregate (optional)
//
// Exit codes: 0 = store valid, 1 = violations found or the store could not be
// checked. Aggregation problems, including an artifact schema mismatch, are
// logged and never change the exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/aggregator"
	"github.com/dilma-lab/dilma/internal/app/checker"
	"github.com/dilma-lab/dilma/internal/config"
	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
	"github.com/dilma-lab/dilma/internal/vocabulary"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	storeDir := flag.String("store", "", "dilemma store directory")
	resultsPath := flag.String("results", "", "raw answer log file or directory to aggregate")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("check-dilemmas", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if *storeDir != "" {
		cfg.Paths.DilemmasDir = *storeDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, *resultsPath, logger))
}

func run(ctx context.Context, cfg *config.Config, resultsPath string, logger *slog.Logger) int {
	vocab, err := vocabulary.Load(cfg.Paths.VocabularyPath)
	if err != nil {
		logger.Error("load vocabulary", slog.String("error", err.Error()))
		return 1
	}

	report, err := checker.New(vocab, logger).Check(ctx, cfg.Paths.DilemmasDir)
	if err != nil {
		logger.Error("check failed", slog.String("error", err.Error()))
		return 1
	}
	for _, v := range report.Violations {
		fmt.Println(v.String())
	}
	logger.Info("check complete",
		slog.Int("files", report.Files),
		slog.Int("records", report.Records),
		slog.Int("errors", report.Errors()),
	)

	code := 0
	if report.Errors() > 0 {
		code = 1
	}

	if resultsPath != "" {
		if err := aggregate(ctx, cfg, resultsPath, logger); err != nil {
			var mismatch *aggregator.SchemaMismatchError
			if errors.As(err, &mismatch) {
				logger.Error("artifact schema mismatch",
					slog.String("path", mismatch.Path),
					slog.Any("found", mismatch.Found),
				)
			} else {
				logger.Error("aggregation failed", slog.String("error", err.Error()))
			}
		}
	}
	return code
}

func aggregate(ctx context.Context, cfg *config.Config, resultsPath string, logger *slog.Logger) error {
	art, err := aggregator.OpenArtifact(cfg.Paths.ArtifactPath)
	if err != nil {
		return err
	}
	defer art.Close()

	store, loaded, err := dilemma.Load(ctx, cfg.Paths.DilemmasDir, logger)
	if err != nil {
		return fmt.Errorf("load dilemma store: %w", err)
	}
	if store.Len() == 0 {
		return fmt.Errorf("dilemma store %s: %w", cfg.Paths.DilemmasDir, domain.ErrUnsupportedInput)
	}
	logger.Info("dilemma store loaded", slog.Int("dilemmas", store.Len()), slog.Int("malformed", loaded.Malformed), slog.Int("duplicates", loaded.Duplicates))

	res, err := aggregator.New(store, art, logger).FoldPath(ctx, resultsPath)
	if err != nil {
		return err
	}
	if err := art.Flush(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}

	logger.Info("aggregation complete",
		slog.String("artifact", art.Path()),
		slog.Int("files", res.Files),
		slog.Int("lines", res.Lines),
		slog.Int("rows", res.Rows),
		slog.Int("skipped", res.Skipped),
		slog.Int("malformed", res.Malformed),
		slog.Int("unparseable", res.Unparseable),
		slog.Int("unknown", res.Unknown),
	)
	return nil
}
