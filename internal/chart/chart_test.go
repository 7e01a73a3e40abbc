package chart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfboard/internal/catalog"
	"github.com/listenupapp/shelfboard/internal/domain"
)

func TestSummarize(t *testing.T) {
	books := make([]domain.Book, 10)
	for i := range books {
		books[i] = domain.Book{Code: fmt.Sprintf("B%02d", i), CanRent: i < 4}
	}

	assert.Equal(t, Summary{Total: 10, Rentable: 4}, Summarize(books))
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestCategoryDistribution(t *testing.T) {
	id := domain.Int64Ptr
	categories := []domain.Category{{ID: 1, Name: "소설"}, {ID: 2, Name: "만화"}, {ID: 3, Name: "에세이"}}
	books := []domain.Book{
		{Code: "1", CategoryID: id(2)},
		{Code: "2", CategoryID: id(1)},
		{Code: "3", CategoryID: id(2)},
		{Code: "4"},
		{Code: "5", CategoryID: id(99)},
		{Code: "6", CategoryID: id(1)},
		{Code: "7", CategoryID: id(3)},
		{Code: "8"},
		{Code: "9"},
	}

	got := CategoryDistribution(books, categories)
	require.Len(t, got, 4)

	assert.Equal(t, "만화", got[0].Name)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "소설", got[1].Name)
	assert.Equal(t, "에세이", got[2].Name)
	// Unknown holds the most books but still sorts last.
	assert.Equal(t, UnknownCategory, got[3].Name)
	assert.True(t, got[3].Unknown)
	assert.Equal(t, 4, got[3].Count)

	total := 0
	share := 0.0
	for _, c := range got {
		total += c.Count
		share += c.Share
	}
	assert.Equal(t, len(books), total)
	assert.InDelta(t, 1.0, share, 1e-9)
}

func TestCategoryDistribution_RealCategoryNamedUnknown(t *testing.T) {
	id := domain.Int64Ptr
	categories := []domain.Category{{ID: 1, Name: "unknown"}, {ID: 2, Name: "소설"}}
	books := []domain.Book{
		{Code: "1", CategoryID: id(1)},
		{Code: "2", CategoryID: id(1)},
		{Code: "3", CategoryID: id(1)},
		{Code: "4", CategoryID: id(2)},
		{Code: "5"},
		{Code: "6", CategoryID: id(42)},
	}

	got := CategoryDistribution(books, categories)
	require.Len(t, got, 3)

	assert.Equal(t, CategoryCount{Name: "unknown", Count: 3, Share: 0.5}, got[0])
	assert.Equal(t, "소설", got[1].Name)
	assert.False(t, got[1].Unknown)

	assert.Equal(t, UnknownCategory, got[2].Name)
	assert.True(t, got[2].Unknown)
	assert.Equal(t, 2, got[2].Count)
}

func TestCategoryDistribution_Empty(t *testing.T) {
	assert.Empty(t, CategoryDistribution(nil, []domain.Category{{ID: 1, Name: "소설"}}))
}

func TestZoneDistribution_Order(t *testing.T) {
	books := []domain.Book{
		{Code: "1", Location: "A-1"},
		{Code: "2", Location: "C-2"},
		{Code: "3", Location: "BA-1"},
		{Code: "4", Location: "B-3"},
	}

	got := ZoneDistribution(books, DefaultZonePolicy())
	assert.Equal(t, []string{"A", "B", "C", "BA"}, ZoneOrder(got))
	assert.False(t, got[0].Special)
	assert.True(t, got[3].Special)
}

func TestZoneDistribution_CountsAndSpecials(t *testing.T) {
	books := []domain.Book{
		{Code: "1", Location: "OD"},
		{Code: "2", Location: "CT-01"},
		{Code: "3", Location: "BA-1"},
		{Code: "4", Location: "Z-1"},
		{Code: "5", Location: "A-1"},
		{Code: "6", Location: "A-2"},
	}

	got := ZoneDistribution(books, DefaultZonePolicy())
	assert.Equal(t, []ZoneCount{
		{Zone: "A", Count: 2},
		{Zone: "Z", Count: 1},
		{Zone: "BA", Count: 1, Special: true},
		{Zone: "CT", Count: 1, Special: true},
		{Zone: "OD", Count: 1, Special: true},
	}, got)
}

func TestZonePolicy_Configurable(t *testing.T) {
	p := NewZonePolicy([]string{"X", "A"})
	books := []domain.Book{{Location: "A-1"}, {Location: "BA-1"}, {Location: "X"}}

	assert.Equal(t, []string{"BA", "A", "X"}, ZoneOrder(ZoneDistribution(books, p)))
	assert.Equal(t, []string{"A", "X"}, p.SpecialZones())
	assert.Equal(t, []string{"BA", "CT", "OD"}, DefaultZonePolicy().SpecialZones())
}

// A keyword search narrows to one book and every chart reflects only that book.
func TestFilterThenAggregate(t *testing.T) {
	id := domain.Int64Ptr
	series := []domain.Series{{ID: 10, Name: "Harry Potter"}}
	categories := []domain.Category{{ID: 1, Name: "소설"}}
	books := []domain.Book{
		{Code: "B1", Title: "Philosopher's Stone", SeriesID: id(10), CategoryID: id(1), Location: "A-1", CanRent: true},
		{Code: "B2", Title: "Dune", CategoryID: id(1), Location: "OD", CanRent: false},
	}

	filtered := catalog.ApplyFilters(books, series, nil, categories, catalog.Criteria{Keyword: "harry"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "B1", filtered[0].Code)

	assert.Equal(t, Summary{Total: 1, Rentable: 1}, Summarize(filtered))
	assert.Equal(t, []CategoryCount{{Name: "소설", Count: 1, Share: 1}}, CategoryDistribution(filtered, categories))
	assert.Equal(t, []string{"A"}, ZoneOrder(ZoneDistribution(filtered, DefaultZonePolicy())))
}
