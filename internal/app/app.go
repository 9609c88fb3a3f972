package app

import (
	"log/slog"

	"github.com/dilma-lab/dilma/internal/config"
)

// Bootstrap is the shared entry point of every dilma tool. It loads
// configuration (explicit path, CONFIG_PATH, or ./config.yaml), initializes
// the default logger, and logs startup information.
func Bootstrap(tool, configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log).With(slog.String("tool", tool))

	logger.Info("starting",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	return cfg, logger, nil
}
