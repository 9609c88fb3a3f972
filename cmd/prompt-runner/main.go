// Command prompt-runner sends every dilemma to one chat model and appends
// the answers to a JSONL log. Neutral twins under dilemmas-neutral are
// processed after the originals.
//
// Flags:
//
//	--model             model name; the provider is chosen by prefix (required)
//	--dilemmas          dilemma file or directory (default paths.dilemmas_dir)
//	-r, --recursive     walk the directory recursively
//	--dry               print prompts instead of calling the model
//	--out               answer log to append to (optional; answers are only logged without it)
//	--strength          prime|okay|weak (aliases strict|medium|all), default weak
//	--temperature       sampling temperature (default 0)
//	--reasoning-effort  reasoning effort for models that accept one
//	--config            path to config YAML
//
// Exit codes: 0 = success (individual failed calls do not fail the run),
// 1 = configuration error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dilma-lab/dilma/internal/adapter/provider/llm"
	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/collector"
	"github.com/dilma-lab/dilma/internal/domain"
)

func main() {
	var recursive bool
	configPath := flag.String("config", "", "path to config YAML")
	model := flag.String("model", "", "model name")
	dilemmas := flag.String("dilemmas", "", "dilemma file or directory")
	flag.BoolVar(&recursive, "recursive", false, "walk the directory recursively")
	flag.BoolVar(&recursive, "r", false, "shorthand for --recursive")
	dry := flag.Bool("dry", false, "print prompts instead of calling the model")
	out := flag.String("out", "", "answer log to append to")
	strength := flag.String("strength", "weak", "prime|okay|weak (aliases strict|medium|all)")
	temperature := flag.Float64("temperature", 0, "sampling temperature")
	effort := flag.String("reasoning-effort", "", "reasoning effort for models that accept one")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("prompt-runner", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if *model == "" {
		logger.Error("--model is required")
		os.Exit(1)
	}
	level, ok := domain.ParseStrengthFilter(*strength)
	if !ok {
		logger.Error("invalid --strength", slog.String("value", *strength))
		os.Exit(1)
	}
	path := *dilemmas
	if path == "" {
		path = cfg.Paths.DilemmasDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client llm.ChatClient
	if !*dry {
		client, err = llm.NewClient(ctx, cfg.LLM, llm.Options{
			Model:           *model,
			Temperature:     *temperature,
			ReasoningEffort: *effort,
		}, logger)
		if err != nil {
			logger.Error("create model client", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	c := collector.New(client, collector.Options{
		Model:     *model,
		Strength:  level,
		Recursive: recursive,
		DryRun:    *dry,
		OutPath:   *out,
	}, os.Stdout, logger)

	res, err := c.Run(ctx, path)
	if err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("run complete",
		slog.String("run_id", res.RunID),
		slog.Int("files", res.Files),
		slog.Int("processed", res.Processed),
		slog.Int("skipped_strength", res.SkippedStrength),
		slog.Int("failed", res.Failed),
		slog.Int("malformed", res.Malformed),
	)
}
