// Package providers contains dependency injection providers for the chapter timeline server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/chapter-timeline/internal/config"
	"github.com/listenupapp/chapter-timeline/internal/logger"
)

// Args holds the command-line arguments for configuration loading.
type Args []string

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args := do.MustInvoke[Args](i)
	return config.LoadConfig(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting chapter timeline server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"tolerance", cfg.Engine.Tolerance,
		"sponsor_data", cfg.Sponsor.DataPath,
	)

	return log, nil
}
