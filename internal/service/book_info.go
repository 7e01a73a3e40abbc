package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/shelfboard/internal/booksearch"
	"github.com/listenupapp/shelfboard/internal/domain"
	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/summary"
)

// BookInfoService enriches a catalog book with outside information: a
// generated summary or a book search hit.
type BookInfoService struct {
	dashboard *DashboardService
	summaries *summary.Provider
	search    *booksearch.Client
	logger    *slog.Logger
}

// NewBookInfoService creates a new book info service.
func NewBookInfoService(dashboard *DashboardService, summaries *summary.Provider, search *booksearch.Client, logger *slog.Logger) *BookInfoService {
	return &BookInfoService{
		dashboard: dashboard,
		summaries: summaries,
		search:    search,
		logger:    logger,
	}
}

// SummaryConfigured reports whether summaries can be generated.
func (s *BookInfoService) SummaryConfigured() bool {
	return s.summaries.Configured()
}

// LookupConfigured reports whether book search is available.
func (s *BookInfoService) LookupConfigured() bool {
	return s.search.Configured()
}

// Summarize generates a summary for the book with the given code.
func (s *BookInfoService) Summarize(ctx context.Context, code string) (*summary.Result, error) {
	book, err := s.dashboard.Book(ctx, code)
	if err != nil {
		return nil, err
	}

	client, err := s.summaries.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Summarize(ctx, book.Title, categoryOf(book))
}

// SummaryText is the text-only form of Summarize. Generation failures come
// back as a message starting with summary.FailurePrefix; only a failure to
// find the book is returned as an error.
func (s *BookInfoService) SummaryText(ctx context.Context, code string) (string, error) {
	book, err := s.dashboard.Book(ctx, code)
	if err != nil {
		return "", err
	}

	client, err := s.summaries.Client(ctx)
	if err != nil {
		s.logger.Warn("summary client unavailable", "error", err)
		return summary.FailureText(err), nil
	}
	return client.SummaryText(ctx, book.Title, categoryOf(book)), nil
}

// Lookup finds the book in the external book search.
func (s *BookInfoService) Lookup(ctx context.Context, code string) (*booksearch.Item, error) {
	book, err := s.dashboard.Book(ctx, code)
	if err != nil {
		return nil, err
	}

	item, err := s.search.Lookup(ctx, book.Title, categoryOf(book))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainerrors.NotFoundf("no search result for %q", book.Title)
	}
	return item, nil
}

func categoryOf(b *domain.BookView) string {
	if b.CategoryName == nil {
		return ""
	}
	return *b.CategoryName
}
