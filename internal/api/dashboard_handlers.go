package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfboard/internal/catalog"
	"github.com/listenupapp/shelfboard/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Render dashboard",
		Description: "Returns the filtered book listing with summary metrics and category and zone distributions",
		Tags:        []string{"Dashboard"},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns category names for the category filter",
		Tags:        []string{"Dashboard"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Refresh catalog",
		Description: "Drops the cached tables so the next request reads the store",
		Tags:        []string{"Dashboard"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTable",
		Method:      http.MethodGet,
		Path:        "/api/v1/tables/{name}",
		Summary:     "Get raw table",
		Description: "Returns the cached rows of one catalog table",
		Tags:        []string{"Dashboard"},
	}, s.handleGetTable)
}

// DashboardInput contains the filter selection.
type DashboardInput struct {
	Keyword      string   `query:"keyword" doc:"Matches book titles, series names, and series aliases"`
	Categories   []string `query:"category" doc:"Category names, comma separated; books in any of them are kept"`
	RentableOnly bool     `query:"rentable_only" doc:"Keep only books that can be rented"`
}

// DashboardOutput wraps the rendered dashboard for Huma.
type DashboardOutput struct {
	Body *service.Dashboard
}

func (s *Server) handleGetDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	d, err := s.services.Dashboard.Render(ctx, catalog.Criteria{
		Keyword:      input.Keyword,
		Categories:   input.Categories,
		RentableOnly: input.RentableOnly,
	})
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: d}, nil
}

// CategoriesResponse lists category names.
type CategoriesResponse struct {
	Categories []string `json:"categories" doc:"Category names in ascending order"`
}

// CategoriesOutput wraps the category list for Huma.
type CategoriesOutput struct {
	Body CategoriesResponse
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoriesOutput, error) {
	names, err := s.services.Dashboard.CategoryNames(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoriesOutput{Body: CategoriesResponse{Categories: names}}, nil
}

// RefreshResponse confirms a cache refresh.
type RefreshResponse struct {
	Refreshed   bool      `json:"refreshed"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// RefreshOutput wraps the refresh confirmation for Huma.
type RefreshOutput struct {
	Body RefreshResponse
}

func (s *Server) handleRefresh(_ context.Context, _ *struct{}) (*RefreshOutput, error) {
	s.services.Dashboard.Refresh()
	return &RefreshOutput{Body: RefreshResponse{Refreshed: true, RefreshedAt: time.Now()}}, nil
}

// TableInput names a catalog table.
type TableInput struct {
	Name string `path:"name" doc:"Table name: series, category, book, or alias"`
}

// TableResponse is one raw table.
type TableResponse struct {
	Table   string           `json:"table"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

// TableOutput wraps a raw table for Huma.
type TableOutput struct {
	Body TableResponse
}

func (s *Server) handleGetTable(ctx context.Context, input *TableInput) (*TableOutput, error) {
	rows, err := s.services.Dashboard.Table(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &TableOutput{Body: TableResponse{
		Table:   rows.Table,
		Columns: rows.Columns,
		Rows:    rows.Records(),
		Count:   rows.Len(),
	}}, nil
}
