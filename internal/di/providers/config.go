// Package providers contains dependency injection providers for the Shelfboard server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfboard/internal/config"
	"github.com/listenupapp/shelfboard/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Shelfboard Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"source_driver", cfg.Source.Driver,
		"cache_ttl", cfg.Cache.TTL,
		"ai_enabled", cfg.AIEnabled(),
		"book_search_enabled", cfg.BookSearchEnabled(),
	)

	return log, nil
}
