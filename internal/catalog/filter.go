package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/shelfboard/internal/domain"
)

// Criteria is the user's current filter selection.
// The zero value selects every book.
type Criteria struct {
	Keyword      string   `json:"keyword" validate:"max=200"`
	Categories   []string `json:"categories" validate:"max=50,dive,max=100"`
	RentableOnly bool     `json:"rentable_only"`
}

// IsEmpty reports whether the criteria would keep every book.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Keyword) == "" && len(c.Categories) == 0 && !c.RentableOnly
}

// matcher does case-insensitive substring tests with Unicode case folding.
// A Caser is stateful, so each matcher owns one.
type matcher struct {
	caser  cases.Caser
	needle string
}

func newMatcher(keyword string) *matcher {
	m := &matcher{caser: cases.Fold()}
	m.needle = m.fold(keyword)
	return m
}

func (m *matcher) fold(s string) string {
	return m.caser.String(norm.NFC.String(s))
}

func (m *matcher) matches(s string) bool {
	return strings.Contains(m.fold(s), m.needle)
}

// ApplyFilters narrows books by keyword, then categories, then rentability.
// Stages compose as a conjunction and input order is preserved.
//
// A keyword matches a book when the title contains it, or when the book's
// series name or any alias of that series contains it.
func ApplyFilters(
	books []domain.Book,
	series []domain.Series,
	aliases []domain.Alias,
	categories []domain.Category,
	c Criteria,
) []domain.Book {
	out := make([]domain.Book, 0, len(books))

	keyword := strings.TrimSpace(c.Keyword)
	var (
		m            *matcher
		targetSeries map[int64]struct{}
	)
	if keyword != "" {
		m = newMatcher(keyword)
		targetSeries = make(map[int64]struct{})
		for _, s := range series {
			if m.matches(s.Name) {
				targetSeries[s.ID] = struct{}{}
			}
		}
		for _, a := range aliases {
			if m.matches(a.Name) {
				targetSeries[a.SeriesID] = struct{}{}
			}
		}
	}

	var categoryIDs map[int64]struct{}
	if len(c.Categories) > 0 {
		categoryIDs = resolveCategoryIDs(categories, c.Categories)
	}

	for _, b := range books {
		if m != nil && !m.matches(b.Title) && !inSeries(b, targetSeries) {
			continue
		}
		if categoryIDs != nil {
			if b.CategoryID == nil {
				continue
			}
			if _, ok := categoryIDs[*b.CategoryID]; !ok {
				continue
			}
		}
		if c.RentableOnly && !b.CanRent {
			continue
		}
		out = append(out, b)
	}
	return out
}

func inSeries(b domain.Book, target map[int64]struct{}) bool {
	if b.SeriesID == nil {
		return false
	}
	_, ok := target[*b.SeriesID]
	return ok
}

// resolveCategoryIDs maps selected names to IDs. Names that match no category
// contribute nothing, so a selection of only unknown names keeps no books.
func resolveCategoryIDs(categories []domain.Category, names []string) map[int64]struct{} {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	ids := make(map[int64]struct{}, len(names))
	for _, cat := range categories {
		if _, ok := wanted[cat.Name]; ok {
			ids[cat.ID] = struct{}{}
		}
	}
	return ids
}

// CategoryNames returns the distinct category names in ascending order,
// as offered by the category multi-select.
func CategoryNames(categories []domain.Category) []string {
	seen := make(map[string]struct{}, len(categories))
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// JoinBooks left-joins books with their series and category names and sorts
// the result by book code. Dangling references leave the joined name nil.
func JoinBooks(books []domain.Book, series []domain.Series, categories []domain.Category) []domain.BookView {
	seriesNames := make(map[int64]string, len(series))
	for _, s := range series {
		seriesNames[s.ID] = s.Name
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	views := make([]domain.BookView, 0, len(books))
	for _, b := range books {
		v := domain.BookView{Book: b}
		if b.SeriesID != nil {
			if name, ok := seriesNames[*b.SeriesID]; ok {
				v.SeriesName = &name
			}
		}
		if b.CategoryID != nil {
			if name, ok := categoryNames[*b.CategoryID]; ok {
				v.CategoryName = &name
			}
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Code < views[j].Code
	})
	return views
}

// FindBook returns the book with the given code.
func FindBook(books []domain.Book, code string) (domain.Book, bool) {
	for _, b := range books {
		if b.Code == code {
			return b, true
		}
	}
	return domain.Book{}, false
}
