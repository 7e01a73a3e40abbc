package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/shelfboard/internal/catalog"
	"github.com/listenupapp/shelfboard/internal/chart"
	"github.com/listenupapp/shelfboard/internal/domain"
	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/store"
	"github.com/listenupapp/shelfboard/internal/validation"
)

// Dashboard is one fully rendered view. Every part is computed from the same
// filtered book set.
type Dashboard struct {
	Criteria   catalog.Criteria      `json:"criteria"`
	Books      []domain.BookView     `json:"books"`
	Summary    chart.Summary         `json:"summary"`
	Categories []chart.CategoryCount `json:"categories"`
	Zones      []chart.ZoneCount     `json:"zones"`
	ZoneOrder  []string              `json:"zone_order"`
	Empty      bool                  `json:"empty"`
	FetchedAt  time.Time             `json:"fetched_at"`
}

// DashboardService renders the inventory dashboard from the cached catalog.
type DashboardService struct {
	cache     *store.CachedSource
	validator *validation.Validator
	zones     chart.ZonePolicy
	logger    *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(cache *store.CachedSource, validator *validation.Validator, zones chart.ZonePolicy, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		cache:     cache,
		validator: validator,
		zones:     zones,
		logger:    logger,
	}
}

// Render fetches the catalog (cache first), filters it, and aggregates the
// filtered set. A data source failure aborts the render.
func (s *DashboardService) Render(ctx context.Context, criteria catalog.Criteria) (*Dashboard, error) {
	if err := s.validator.Validate(criteria); err != nil {
		return nil, err
	}

	c, err := catalog.Load(ctx, s.cache)
	if err != nil {
		return nil, err
	}

	filtered := catalog.ApplyFilters(c.Books, c.Series, c.Aliases, c.Categories, criteria)

	d := &Dashboard{
		Criteria:   criteria,
		Books:      catalog.JoinBooks(filtered, c.Series, c.Categories),
		Summary:    chart.Summarize(filtered),
		Categories: chart.CategoryDistribution(filtered, c.Categories),
		Zones:      chart.ZoneDistribution(filtered, s.zones),
		Empty:      len(filtered) == 0,
		FetchedAt:  s.oldestFetch(),
	}
	d.ZoneOrder = chart.ZoneOrder(d.Zones)

	s.logger.Debug("dashboard rendered",
		"keyword", criteria.Keyword,
		"categories", len(criteria.Categories),
		"rentable_only", criteria.RentableOnly,
		"books", d.Summary.Total,
	)
	return d, nil
}

// oldestFetch returns when the stalest table in the current snapshot was loaded.
func (s *DashboardService) oldestFetch() time.Time {
	var oldest time.Time
	for _, table := range domain.Tables {
		at, ok := s.cache.FetchedAt(table)
		if !ok {
			continue
		}
		if oldest.IsZero() || at.Before(oldest) {
			oldest = at
		}
	}
	return oldest
}

// CategoryNames returns the names offered by the category filter.
func (s *DashboardService) CategoryNames(ctx context.Context) ([]string, error) {
	rows, err := s.cache.FetchTable(ctx, domain.TableCategory)
	if err != nil {
		return nil, err
	}
	categories, err := catalog.DecodeCategories(rows)
	if err != nil {
		return nil, err
	}
	return catalog.CategoryNames(categories), nil
}

// Table returns the raw contents of one catalog table.
func (s *DashboardService) Table(ctx context.Context, name string) (*store.RowSet, error) {
	if !domain.IsTable(name) {
		return nil, domainerrors.NotFoundf("table %q not found", name)
	}
	return s.cache.FetchTable(ctx, name)
}

// Refresh drops the cached tables so the next render reads the store.
func (s *DashboardService) Refresh() {
	s.cache.Invalidate()
}

// Book returns one book joined with its series and category names.
func (s *DashboardService) Book(ctx context.Context, code string) (*domain.BookView, error) {
	if err := s.validator.Var("code", code, "required,bookcode"); err != nil {
		return nil, err
	}

	c, err := catalog.Load(ctx, s.cache)
	if err != nil {
		return nil, err
	}

	b, ok := catalog.FindBook(c.Books, code)
	if !ok {
		return nil, domainerrors.NotFoundf("book %q not found", code)
	}
	view := catalog.JoinBooks([]domain.Book{b}, c.Series, c.Categories)[0]
	return &view, nil
}
