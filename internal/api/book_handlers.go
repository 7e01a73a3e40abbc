package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfboard/internal/booksearch"
	"github.com/listenupapp/shelfboard/internal/summary"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "summarizeBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{code}/summary",
		Summary:     "Summarize book",
		Description: "Generates a three-section summary of the book using web search. Rate limited per client.",
		Tags:        []string{"Books"},
		Middlewares: huma.Middlewares{s.rateLimitSummaries},
	}, s.handleSummarizeBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookupBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{code}/lookup",
		Summary:     "Look up book",
		Description: "Finds the book in the external book search, skipping box sets",
		Tags:        []string{"Books"},
	}, s.handleLookupBook)
}

// SummaryInput selects a book and the response form.
type SummaryInput struct {
	Code   string `path:"code" maxLength:"64" doc:"Book code"`
	Legacy bool   `query:"legacy" doc:"Return plain text; failures become a message instead of an error"`
}

// SummaryResponse carries either the typed result or, in legacy mode, text.
type SummaryResponse struct {
	Result *summary.Result `json:"result,omitempty"`
	Text   string          `json:"text,omitempty"`
	Failed bool            `json:"failed"`
}

// SummaryOutput wraps the summary for Huma.
type SummaryOutput struct {
	Body SummaryResponse
}

func (s *Server) handleSummarizeBook(ctx context.Context, input *SummaryInput) (*SummaryOutput, error) {
	if input.Legacy {
		text, err := s.services.BookInfo.SummaryText(ctx, input.Code)
		if err != nil {
			return nil, err
		}
		return &SummaryOutput{Body: SummaryResponse{Text: text, Failed: summary.IsFailureText(text)}}, nil
	}

	result, err := s.services.BookInfo.Summarize(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	return &SummaryOutput{Body: SummaryResponse{Result: result}}, nil
}

// LookupInput selects a book.
type LookupInput struct {
	Code string `path:"code" maxLength:"64" doc:"Book code"`
}

// LookupOutput wraps the search hit for Huma.
type LookupOutput struct {
	Body *booksearch.Item
}

func (s *Server) handleLookupBook(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
	item, err := s.services.BookInfo.Lookup(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	return &LookupOutput{Body: item}, nil
}
