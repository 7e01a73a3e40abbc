// Package domain holds the catalog entities read from the external store.
package domain

import "strings"

// Table names in the external store.
const (
	TableSeries   = "series"
	TableCategory = "category"
	TableBook     = "book"
	TableAlias    = "alias"
)

// Tables lists every catalog table in fetch order.
var Tables = []string{TableSeries, TableCategory, TableBook, TableAlias}

// IsTable reports whether name is one of the catalog tables.
func IsTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Series is a named run of books.
type Series struct {
	ID   int64  `json:"series_id"`
	Name string `json:"series_name"`
}

// Alias is an alternate name for a series (translated titles, nicknames).
type Alias struct {
	ID       int64  `json:"alias_id"`
	SeriesID int64  `json:"series_id"`
	Name     string `json:"alias_name"`
}

// Category classifies books (comic, novel, ...).
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

// Book is a physical copy on the shelves. Code is unique and is the display key.
type Book struct {
	Code       string `json:"book_code"`
	Title      string `json:"title"`
	SeriesID   *int64 `json:"series_id,omitempty"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Location   string `json:"location"`
	CanRent    bool   `json:"can_rent"`
}

// Zone returns the shelf area: the location text before the first hyphen,
// or the whole location when it has none.
func (b Book) Zone() string {
	zone, _, _ := strings.Cut(b.Location, "-")
	return zone
}

// Catalog is one consistent snapshot of the four tables.
type Catalog struct {
	Series     []Series
	Aliases    []Alias
	Categories []Category
	Books      []Book
}

// BookView is a book joined with its series and category names.
// Unresolved references leave the joined name nil.
type BookView struct {
	Book
	SeriesName   *string `json:"series_name"`
	CategoryName *string `json:"category_name"`
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
