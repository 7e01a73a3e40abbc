package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfboard/internal/chart"
	"github.com/listenupapp/shelfboard/internal/config"
	"github.com/listenupapp/shelfboard/internal/logger"
	"github.com/listenupapp/shelfboard/internal/service"
	"github.com/listenupapp/shelfboard/internal/store"
	"github.com/listenupapp/shelfboard/internal/summary"
	"github.com/listenupapp/shelfboard/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideDashboardService provides the dashboard service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cache := do.MustInvoke[*store.CachedSource](i)
	validator := do.MustInvoke[*validation.Validator](i)

	zones := chart.NewZonePolicy(cfg.Zones.Special)

	return service.NewDashboardService(cache, validator, zones, log.Logger), nil
}

// ProvideBookInfoService provides the per-book summary and lookup service.
func ProvideBookInfoService(i do.Injector) (*service.BookInfoService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	dashboard := do.MustInvoke[*service.DashboardService](i)
	summaries := do.MustInvoke[*summary.Provider](i)
	search := do.MustInvoke[*BookSearchHandle](i)

	return service.NewBookInfoService(dashboard, summaries, search.Client, log.Logger), nil
}
