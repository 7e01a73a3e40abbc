package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/shelfboard/internal/domain"
)

// SeedCatalog inserts every entity of c in one transaction.
// Existing rows with the same keys are replaced.
func (s *Store) SeedCatalog(ctx context.Context, c domain.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, sr := range c.Series {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO series (series_id, series_name) VALUES (?, ?)`,
			sr.ID, sr.Name,
		); err != nil {
			return fmt.Errorf("insert series %d: %w", sr.ID, err)
		}
	}

	for _, a := range c.Aliases {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO alias (alias_id, series_id, alias_name) VALUES (?, ?, ?)`,
			a.ID, a.SeriesID, a.Name,
		); err != nil {
			return fmt.Errorf("insert alias %d: %w", a.ID, err)
		}
	}

	for _, cat := range c.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO category (category_id, category_name) VALUES (?, ?)`,
			cat.ID, cat.Name,
		); err != nil {
			return fmt.Errorf("insert category %d: %w", cat.ID, err)
		}
	}

	for _, b := range c.Books {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO book (book_code, title, series_id, category_id, location, can_rent)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			b.Code, b.Title, nullableInt(b.SeriesID), nullableInt(b.CategoryID), b.Location, b.CanRent,
		); err != nil {
			return fmt.Errorf("insert book %s: %w", b.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.logger.Info("catalog seeded",
		"series", len(c.Series),
		"aliases", len(c.Aliases),
		"categories", len(c.Categories),
		"books", len(c.Books),
	)
	return nil
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// SampleCatalog is a small shelf used by the seeder and tests.
func SampleCatalog() domain.Catalog {
	id := domain.Int64Ptr
	return domain.Catalog{
		Series: []domain.Series{
			{ID: 1, Name: "Harry Potter"},
			{ID: 2, Name: "원피스"},
			{ID: 3, Name: "Dune"},
		},
		Aliases: []domain.Alias{
			{ID: 1, SeriesID: 1, Name: "해리 포터"},
			{ID: 2, SeriesID: 2, Name: "One Piece"},
			{ID: 3, SeriesID: 3, Name: "듄"},
		},
		Categories: []domain.Category{
			{ID: 1, Name: "소설"},
			{ID: 2, Name: "만화"},
			{ID: 3, Name: "에세이"},
		},
		Books: []domain.Book{
			{Code: "B001", Title: "Harry Potter and the Philosopher's Stone", SeriesID: id(1), CategoryID: id(1), Location: "A-01-1", CanRent: true},
			{Code: "B002", Title: "Harry Potter and the Chamber of Secrets", SeriesID: id(1), CategoryID: id(1), Location: "A-01-2", CanRent: false},
			{Code: "B003", Title: "원피스 1", SeriesID: id(2), CategoryID: id(2), Location: "C-03-1", CanRent: true},
			{Code: "B004", Title: "원피스 2", SeriesID: id(2), CategoryID: id(2), Location: "C-03-2", CanRent: true},
			{Code: "B005", Title: "Dune", SeriesID: id(3), CategoryID: id(1), Location: "B-02-1", CanRent: false},
			{Code: "B006", Title: "여행의 이유", CategoryID: id(3), Location: "BA-01", CanRent: true},
			{Code: "B007", Title: "Uncatalogued Pamphlet", Location: "OD", CanRent: false},
		},
	}
}
