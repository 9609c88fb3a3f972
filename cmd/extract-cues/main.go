// Command extract-cues scans a raw answer log for culturally identifying
// cues, writes the matching entries to a JSONL file and prints how often
// each cue occurred.
//
// Flags:
//
//	--in        raw answer log (required)
//	--out       output JSONL for matching entries (default <results_dir>/cue_matches.jsonl)
//	--patterns  YAML file with a patterns list (default: built-in cue list)
//	--config    path to config YAML
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/cues"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	in := flag.String("in", "", "raw answer log")
	out := flag.String("out", "", "output JSONL for matching entries")
	patternsPath := flag.String("patterns", "", "YAML file with a patterns list")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("extract-cues", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if *in == "" {
		logger.Error("--in is required")
		os.Exit(1)
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.ResultsDir, "cue_matches.jsonl")
	}

	scanner := cues.MustDefault()
	if *patternsPath != "" {
		patterns, err := cues.LoadPatterns(*patternsPath)
		if err != nil {
			logger.Error("load patterns", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if scanner, err = cues.NewScanner(patterns); err != nil {
			logger.Error("compile patterns", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, scanner, *in, outPath, logger); err != nil {
		logger.Error("scan failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, s *cues.Scanner, in, outPath string, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	res, err := s.ScanFile(ctx, in, w, logger)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	for _, c := range res.Counts {
		fmt.Printf("%6d  %s\n", c.Count, c.Cue)
	}
	logger.Info("scan complete",
		slog.String("out", outPath),
		slog.Int("lines", res.Lines),
		slog.Int("matched", res.Matched),
		slog.Int("malformed", res.Malformed),
	)
	return nil
}
