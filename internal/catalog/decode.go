// Package catalog turns fetched row-sets into typed entities and filters them.
package catalog

import (
	"context"
	"math"
	"strconv"
	"strings"

	domainerrors "github.com/listenupapp/shelfboard/internal/errors"

	"github.com/listenupapp/shelfboard/internal/domain"
	"github.com/listenupapp/shelfboard/internal/store"
)

// Load fetches all four tables from src and decodes them into one snapshot.
// A fetch failure aborts the whole load; there is no partial catalog.
func Load(ctx context.Context, src store.Source) (*domain.Catalog, error) {
	fetch := func(name string) (*store.RowSet, error) {
		return src.FetchTable(ctx, name)
	}

	seriesRows, err := fetch(domain.TableSeries)
	if err != nil {
		return nil, err
	}
	categoryRows, err := fetch(domain.TableCategory)
	if err != nil {
		return nil, err
	}
	bookRows, err := fetch(domain.TableBook)
	if err != nil {
		return nil, err
	}
	aliasRows, err := fetch(domain.TableAlias)
	if err != nil {
		return nil, err
	}

	var c domain.Catalog
	if c.Series, err = DecodeSeries(seriesRows); err != nil {
		return nil, err
	}
	if c.Categories, err = DecodeCategories(categoryRows); err != nil {
		return nil, err
	}
	if c.Books, err = DecodeBooks(bookRows); err != nil {
		return nil, err
	}
	if c.Aliases, err = DecodeAliases(aliasRows); err != nil {
		return nil, err
	}
	return &c, nil
}

// columns resolves required column names to positions in rs.
type columns map[string]int

func requireColumns(rs *store.RowSet, names ...string) (columns, error) {
	if rs == nil {
		return nil, domainerrors.Schemaf("missing row-set")
	}
	cols := make(columns, len(names))
	for _, name := range names {
		idx := rs.ColumnIndex(name)
		if idx < 0 {
			return nil, domainerrors.Schemaf("table %q has no column %q", rs.Table, name).
				WithDetails(map[string]any{"table": rs.Table, "column": name, "columns": rs.Columns})
		}
		cols[name] = idx
	}
	return cols, nil
}

// DecodeSeries reads the series table.
func DecodeSeries(rs *store.RowSet) ([]domain.Series, error) {
	cols, err := requireColumns(rs, "series_id", "series_name")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Series, 0, rs.Len())
	for i, row := range rs.Rows {
		var s domain.Series
		if s.ID, err = intCell(rs, row, cols, i, "series_id"); err != nil {
			return nil, err
		}
		if s.Name, err = stringCell(rs, row, cols, i, "series_name"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeAliases reads the alias table.
func DecodeAliases(rs *store.RowSet) ([]domain.Alias, error) {
	cols, err := requireColumns(rs, "alias_id", "series_id", "alias_name")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Alias, 0, rs.Len())
	for i, row := range rs.Rows {
		var a domain.Alias
		if a.ID, err = intCell(rs, row, cols, i, "alias_id"); err != nil {
			return nil, err
		}
		if a.SeriesID, err = intCell(rs, row, cols, i, "series_id"); err != nil {
			return nil, err
		}
		if a.Name, err = stringCell(rs, row, cols, i, "alias_name"); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// DecodeCategories reads the category table.
func DecodeCategories(rs *store.RowSet) ([]domain.Category, error) {
	cols, err := requireColumns(rs, "category_id", "category_name")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, rs.Len())
	for i, row := range rs.Rows {
		var c domain.Category
		if c.ID, err = intCell(rs, row, cols, i, "category_id"); err != nil {
			return nil, err
		}
		if c.Name, err = stringCell(rs, row, cols, i, "category_name"); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// DecodeBooks reads the book table. series_id and category_id may be NULL.
func DecodeBooks(rs *store.RowSet) ([]domain.Book, error) {
	cols, err := requireColumns(rs, "book_code", "title", "series_id", "category_id", "location", "can_rent")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, rs.Len())
	for i, row := range rs.Rows {
		var b domain.Book
		if b.Code, err = stringCell(rs, row, cols, i, "book_code"); err != nil {
			return nil, err
		}
		if b.Code == "" {
			return nil, cellError(rs, i, "book_code", nil)
		}
		if b.Title, err = optionalStringCell(rs, row, cols, i, "title"); err != nil {
			return nil, err
		}
		if b.SeriesID, err = optionalIntCell(rs, row, cols, i, "series_id"); err != nil {
			return nil, err
		}
		if b.CategoryID, err = optionalIntCell(rs, row, cols, i, "category_id"); err != nil {
			return nil, err
		}
		if b.Location, err = optionalStringCell(rs, row, cols, i, "location"); err != nil {
			return nil, err
		}
		if b.CanRent, err = boolCell(rs, row, cols, i, "can_rent"); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func cell(row []any, cols columns, name string) any {
	idx := cols[name]
	if idx >= len(row) {
		return nil
	}
	return row[idx]
}

func cellError(rs *store.RowSet, row int, column string, value any) error {
	return domainerrors.Schemaf("table %q row %d: invalid %s value %v", rs.Table, row, column, value).
		WithDetails(map[string]any{"table": rs.Table, "row": row, "column": column})
}

func intCell(rs *store.RowSet, row []any, cols columns, i int, name string) (int64, error) {
	v, ok := toInt64(cell(row, cols, name))
	if !ok {
		return 0, cellError(rs, i, name, cell(row, cols, name))
	}
	return v, nil
}

func optionalIntCell(rs *store.RowSet, row []any, cols columns, i int, name string) (*int64, error) {
	raw := cell(row, cols, name)
	if raw == nil {
		return nil, nil
	}
	v, ok := toInt64(raw)
	if !ok {
		return nil, cellError(rs, i, name, raw)
	}
	return &v, nil
}

func stringCell(rs *store.RowSet, row []any, cols columns, i int, name string) (string, error) {
	raw := cell(row, cols, name)
	if raw == nil {
		return "", cellError(rs, i, name, raw)
	}
	s, ok := toString(raw)
	if !ok {
		return "", cellError(rs, i, name, raw)
	}
	return s, nil
}

func optionalStringCell(rs *store.RowSet, row []any, cols columns, i int, name string) (string, error) {
	raw := cell(row, cols, name)
	if raw == nil {
		return "", nil
	}
	s, ok := toString(raw)
	if !ok {
		return "", cellError(rs, i, name, raw)
	}
	return s, nil
}

func boolCell(rs *store.RowSet, row []any, cols columns, i int, name string) (bool, error) {
	raw := cell(row, cols, name)
	if raw == nil {
		return false, nil
	}
	b, ok := toBool(raw)
	if !ok {
		return false, cellError(rs, i, name, raw)
	}
	return b, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return parsed, err == nil
	case []byte:
		return toInt64(string(n))
	default:
		return 0, false
	}
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case int:
		return strconv.Itoa(s), true
	default:
		return "", false
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, b == 0 || b == 1
	case int:
		return b != 0, b == 0 || b == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "1", "y", "yes":
			return true, true
		case "false", "f", "0", "n", "no", "":
			return false, true
		}
		return false, false
	case []byte:
		return toBool(string(b))
	default:
		return false, false
	}
}

