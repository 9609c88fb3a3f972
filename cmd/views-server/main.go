// Command views-server serves the distribution views as a JSON API and
// reloads the dataset whenever the artifact changes.
//
// Flags:
//
//	--config  path to config YAML
//	--axes    axes YAML (default paths.axes_path, then the built-in axes)
//
// When database.dsn is set, /health also reports the results warehouse.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dilma-lab/dilma/internal/adapter/postgres"
	"github.com/dilma-lab/dilma/internal/app"
	"github.com/dilma-lab/dilma/internal/config"
	"github.com/dilma-lab/dilma/internal/service/views"
	"github.com/dilma-lab/dilma/internal/transport/rest"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML")
	axesPath := flag.String("axes", "", "axes YAML")
	flag.Parse()

	cfg, logger, err := app.Bootstrap("views-server", *configPath)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if *axesPath != "" {
		cfg.Paths.AxesPath = *axesPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	axes, err := views.LoadAxes(cfg.Paths.AxesPath)
	if err != nil {
		return fmt.Errorf("load axes: %w", err)
	}

	svc := views.NewService(axes, func(ctx context.Context) (*views.Dataset, error) {
		return views.LoadDataset(ctx, cfg.Paths.DilemmasDir, cfg.Paths.ArtifactPath, logger)
	}, logger)
	if err := svc.Reload(ctx); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	health := rest.NewHealthHandler(svc, nil, app.BuildVersion())
	if cfg.Database.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		health = rest.NewHealthHandler(svc, pool, app.BuildVersion())
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Views.Host, strconv.Itoa(cfg.Views.Port)),
		Handler:      rest.NewRouter(health, rest.NewViewsHandler(svc, logger), logger),
		ReadTimeout:  cfg.Views.ReadTimeout,
		WriteTimeout: cfg.Views.WriteTimeout,
	}

	// The watcher needs the artifact directory even before the first run.
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.ArtifactPath), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return views.Watch(gctx, svc, cfg.Paths.ArtifactPath, cfg.Views.ReloadDebounce, logger)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Views.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
