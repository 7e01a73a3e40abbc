package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfboard/internal/catalog"
	"github.com/listenupapp/shelfboard/internal/chart"
	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/store"
	"github.com/listenupapp/shelfboard/internal/store/sqlite"
	"github.com/listenupapp/shelfboard/internal/validation"
)

type dashboardFixture struct {
	svc    *DashboardService
	cache  *store.CachedSource
	db     *sqlite.Store
	source *store.SQLSource
}

func setupDashboard(t *testing.T) dashboardFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedCatalog(context.Background(), sqlite.SampleCatalog()))

	source := store.NewSQLSource(db.DB(), sqlite.DriverName, logger)
	cache := store.NewCachedSource(source, time.Minute, logger)
	svc := NewDashboardService(cache, validation.New(), chart.DefaultZonePolicy(), logger)

	return dashboardFixture{svc: svc, cache: cache, db: db, source: source}
}

func bookCodes(d *Dashboard) []string {
	out := make([]string, 0, len(d.Books))
	for _, b := range d.Books {
		out = append(out, b.Code)
	}
	return out
}

func TestDashboardService_RenderAll(t *testing.T) {
	f := setupDashboard(t)

	d, err := f.svc.Render(context.Background(), catalog.Criteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"B001", "B002", "B003", "B004", "B005", "B006", "B007"}, bookCodes(d))
	assert.Equal(t, chart.Summary{Total: 7, Rentable: 4}, d.Summary)
	assert.False(t, d.Empty)
	assert.False(t, d.FetchedAt.IsZero())

	assert.Equal(t, []string{"A", "B", "C", "BA", "OD"}, d.ZoneOrder)

	require.NotEmpty(t, d.Categories)
	assert.Equal(t, "소설", d.Categories[0].Name)
	assert.Equal(t, 3, d.Categories[0].Count)
	assert.Equal(t, chart.UnknownCategory, d.Categories[len(d.Categories)-1].Name)
	assert.True(t, d.Categories[len(d.Categories)-1].Unknown)
}

func TestDashboardService_RenderFiltered(t *testing.T) {
	f := setupDashboard(t)

	d, err := f.svc.Render(context.Background(), catalog.Criteria{Keyword: "one piece", RentableOnly: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"B003", "B004"}, bookCodes(d))
	assert.Equal(t, chart.Summary{Total: 2, Rentable: 2}, d.Summary)
	assert.Equal(t, []chart.CategoryCount{{Name: "만화", Count: 2, Share: 1}}, d.Categories)
	assert.Equal(t, []string{"C"}, d.ZoneOrder)
}

func TestDashboardService_RenderEmpty(t *testing.T) {
	f := setupDashboard(t)

	d, err := f.svc.Render(context.Background(), catalog.Criteria{Keyword: "tolkien"})
	require.NoError(t, err)

	assert.True(t, d.Empty)
	assert.Empty(t, d.Books)
	assert.Empty(t, d.Zones)
	assert.Equal(t, chart.Summary{}, d.Summary)
}

func TestDashboardService_RenderInvalidCriteria(t *testing.T) {
	f := setupDashboard(t)

	_, err := f.svc.Render(context.Background(), catalog.Criteria{Categories: make([]string, 51)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDashboardService_SourceFailureHaltsRender(t *testing.T) {
	f := setupDashboard(t)
	require.NoError(t, f.source.Close())

	_, err := f.svc.Render(context.Background(), catalog.Criteria{})
	assert.ErrorIs(t, err, domainerrors.ErrDataSource)
}

func TestDashboardService_RefreshSeesNewRows(t *testing.T) {
	f := setupDashboard(t)
	ctx := context.Background()

	_, err := f.svc.Render(ctx, catalog.Criteria{})
	require.NoError(t, err)

	_, err = f.db.DB().ExecContext(ctx,
		`INSERT INTO book (book_code, title, location, can_rent) VALUES ('B008', 'New Arrival', 'A-9', 1)`)
	require.NoError(t, err)

	d, err := f.svc.Render(ctx, catalog.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 7, d.Summary.Total, "cached snapshot is served until refresh")

	f.svc.Refresh()
	d, err = f.svc.Render(ctx, catalog.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 8, d.Summary.Total)
}

func TestDashboardService_CategoryNames(t *testing.T) {
	f := setupDashboard(t)

	names, err := f.svc.CategoryNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"만화", "소설", "에세이"}, names)
}

func TestDashboardService_Table(t *testing.T) {
	f := setupDashboard(t)

	rows, err := f.svc.Table(context.Background(), "series")
	require.NoError(t, err)
	assert.Equal(t, 3, rows.Len())

	_, err = f.svc.Table(context.Background(), "users")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDashboardService_Book(t *testing.T) {
	f := setupDashboard(t)
	ctx := context.Background()

	b, err := f.svc.Book(ctx, "B003")
	require.NoError(t, err)
	assert.Equal(t, "원피스 1", b.Title)
	require.NotNil(t, b.SeriesName)
	assert.Equal(t, "원피스", *b.SeriesName)

	_, err = f.svc.Book(ctx, "B999")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.svc.Book(ctx, "bad code!")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
