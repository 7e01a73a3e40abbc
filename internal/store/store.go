// Package store fetches the catalog tables from the external relational store.
//
// The store is read-only: every fetch returns the full, unfiltered table as a
// RowSet. CachedSource layers a per-table time-to-live cache on top.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/listenupapp/shelfboard/internal/errors"

	"github.com/listenupapp/shelfboard/internal/domain"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Source returns full table contents by name.
type Source interface {
	FetchTable(ctx context.Context, name string) (*RowSet, error)
}

// SQLSource reads tables through database/sql. Works with the "sqlite"
// (modernc) and "postgres" (lib/pq) drivers.
type SQLSource struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the catalog database and verifies it is reachable.
// Connection failures are DataSource errors.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, domainerrors.DataSourcef(err, "open %s catalog", driver)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, domainerrors.DataSourcef(err, "configure sqlite catalog")
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, domainerrors.DataSourcef(err, "connect to %s catalog", driver)
	}

	return NewSQLSource(db, driver, logger), nil
}

// NewSQLSource wraps an already opened database.
func NewSQLSource(db *sql.DB, driver string, logger *slog.Logger) *SQLSource {
	return &SQLSource{db: db, driver: driver, logger: logger}
}

// Close closes the underlying database connection.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Ping checks that the database is still reachable.
func (s *SQLSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domainerrors.DataSourcef(err, "ping %s catalog", s.driver)
	}
	return nil
}

// FetchTable runs SELECT * against one of the catalog tables.
// Names outside domain.Tables are rejected before any query is built.
func (s *SQLSource) FetchTable(ctx context.Context, name string) (*RowSet, error) {
	if !domain.IsTable(name) {
		return nil, domainerrors.Validationf("unknown table %q", name)
	}

	start := time.Now()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, name))
	if err != nil {
		return nil, domainerrors.DataSourcef(err, "load table %q", name)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, domainerrors.DataSourcef(err, "read columns of %q", name)
	}

	set := &RowSet{Table: name, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, domainerrors.DataSourcef(err, "scan row of %q", name)
		}
		for i, v := range values {
			// Drivers hand back TEXT as []byte that is only valid until the next Scan.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.DataSourcef(err, "iterate table %q", name)
	}

	s.logger.Debug("table fetched",
		"table", name,
		"rows", len(set.Rows),
		"duration", time.Since(start),
	)

	return set, nil
}
