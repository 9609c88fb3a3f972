// Command neutralize writes a culturally neutral copy of the dilemma store.
//
// Flags:
//
//	--in        source tree (default paths.dilemmas_dir)
//	--out       destination tree (default paths.neutral_dir)
//	--in-place  rewrite the neutral tree itself
//	--config    path to config YAML
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/neutralizer"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	in := flag.String("in", "", "source tree")
	out := flag.String("out", "", "destination tree")
	inPlace := flag.Bool("in-place", false, "rewrite the neutral tree itself")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("neutralize", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	src, dst := *in, *out
	if dst == "" {
		dst = cfg.Paths.NeutralDir
	}
	switch {
	case *inPlace:
		src = dst
	case src == "":
		src = cfg.Paths.DilemmasDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := neutralizer.MustDefault().Run(ctx, src, dst, logger)
	if err != nil {
		logger.Error("neutralize failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("neutralize complete",
		slog.String("in", src),
		slog.String("out", dst),
		slog.Int("files", res.Files),
		slog.Int("records", res.Records),
		slog.Int("changed", res.Changed),
		slog.Int("malformed", res.Malformed),
	)
}
