// Command fetch-sefaria downloads the Bavli, Yerushalmi and Mishnah text of
// each tractate from Sefaria and extracts plain text next to the raw JSON.
// Texts already on disk are skipped, so an interrupted run can be resumed.
//
// Flags:
//
//	--tractate  comma-separated tractates to fetch (default: the whole catalog)
//	--dry-run   list planned fetches without downloading
//	--config    path to config YAML
//
// Exit codes: 0 = success, 1 = error or at least one failed fetch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dilma-lab/dilma/internal/adapter/provider/sefaria"
	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/app/fetcher"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	tractates := flag.String("tractate", "", "comma-separated tractates to fetch")
	dryRun := flag.Bool("dry-run", false, "list planned fetches without downloading")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("fetch-sefaria", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	var names []string
	for _, t := range strings.Split(*tractates, ",") {
		if t = strings.TrimSpace(t); t != "" {
			names = append(names, t)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := fetcher.New(sefaria.NewClient(cfg.Sefaria, logger), fetcher.Options{
		SourcesDir: cfg.Paths.SourcesDir,
		TextsDir:   cfg.Paths.TextsDir,
		Tractates:  names,
		Delay:      cfg.Sefaria.Delay,
		DryRun:     *dryRun,
	}, logger)

	res, err := f.Run(ctx)
	if err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, t := range res.Planned {
		fmt.Printf("%s\t%s\t%s\n", t.Tractate, t.Kind, t.Ref)
	}

	logger.Info("fetch complete",
		slog.Int("tractates", res.Tractates),
		slog.Int("fetched", res.Fetched),
		slog.Int("skipped", res.Skipped),
		slog.Int("not_found", res.NotFound),
		slog.Int("failed", res.Failed),
	)
	if res.Failed > 0 {
		os.Exit(1)
	}
}
