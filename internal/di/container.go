// Package di provides dependency injection configuration for the Shelfboard server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfboard/internal/config"
	"github.com/listenupapp/shelfboard/internal/di/providers"
	"github.com/listenupapp/shelfboard/internal/logger"
	"github.com/listenupapp/shelfboard/internal/service"
	"github.com/listenupapp/shelfboard/internal/store"
	"github.com/listenupapp/shelfboard/internal/summary"
	"github.com/listenupapp/shelfboard/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Data access
	do.Provide(injector, providers.ProvideSource)
	do.Provide(injector, providers.ProvideTableCache)

	// External clients
	do.Provide(injector, providers.ProvideSummaryProvider)
	do.Provide(injector, providers.ProvideBookSearch)
	do.Provide(injector, providers.ProvideSummaryLimiter)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideBookInfoService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.SourceHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*store.CachedSource](injector)

	_ = do.MustInvoke[*summary.Provider](injector)
	_ = do.MustInvoke[*providers.BookSearchHandle](injector)
	_ = do.MustInvoke[*providers.SummaryLimiterHandle](injector)

	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)
	_ = do.MustInvoke[*service.BookInfoService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
