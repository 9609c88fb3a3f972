// Command dashboard opens the terminal view of value-label distributions:
// an overview of tags, per-axis counts per model, and a model comparison.
//
// Flags:
//
//	--config    path to config YAML
//	--axes      axes YAML (default paths.axes_path, then the built-in axes)
//	--log-file  file to log to while the dashboard runs (default: discard)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/service/views"
	"github.com/dilma-lab/dilma/internal/transport/tui"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	axesPath := flag.String("axes", "", "axes YAML")
	logFile := flag.String("log-file", "", "file to log to while the dashboard runs")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("dashboard", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if *axesPath == "" {
		*axesPath = cfg.Paths.AxesPath
	}

	// The terminal belongs to the dashboard once it starts.
	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Error("open log file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	tuiLogger := slog.New(slog.NewJSONHandler(w, nil)).With(slog.String("tool", "dashboard"))

	axes, err := views.LoadAxes(*axesPath)
	if err != nil {
		logger.Error("load axes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := views.NewService(axes, func(ctx context.Context) (*views.Dataset, error) {
		return views.LoadDataset(ctx, cfg.Paths.DilemmasDir, cfg.Paths.ArtifactPath, tuiLogger)
	}, tuiLogger)
	if err := svc.Reload(context.Background()); err != nil {
		logger.Error("load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	a, err := tui.NewApp(svc)
	if err != nil {
		logger.Error("create dashboard", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := tui.Run(a); err != nil {
		logger.Error("dashboard exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
