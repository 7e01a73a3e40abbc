package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/listenupapp/shelfboard/internal/booksearch"
	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/summary"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *stubGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.prompt = contents[0].Parts[0].Text
	if g.err != nil {
		return nil, g.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(g.text, genai.RoleModel)}},
	}, nil
}

func setupBookInfo(t *testing.T, gen summary.Generator, search http.HandlerFunc) *BookInfoService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := setupDashboard(t)

	var provider *summary.Provider
	if gen != nil {
		provider = summary.NewStaticProvider(summary.NewClient(gen, summary.Config{}, logger), logger)
	} else {
		provider = summary.NewProvider(summary.Config{}, logger)
	}

	cfg := booksearch.Config{}
	if search != nil {
		server := httptest.NewServer(search)
		t.Cleanup(server.Close)
		cfg = booksearch.Config{ClientID: "id", ClientSecret: "secret", BaseURL: server.URL}
	}
	client := booksearch.New(cfg, logger)
	t.Cleanup(client.Close)

	return NewBookInfoService(f.svc, provider, client, logger)
}

const threeSections = "## Author & Work Introduction\na\n## Genre & Characteristics\nb\n## Plot Summary\nc"

func TestBookInfoService_Summarize(t *testing.T) {
	gen := &stubGenerator{text: threeSections}
	svc := setupBookInfo(t, gen, nil)

	res, err := svc.Summarize(context.Background(), "B003")
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, "원피스 1", res.Title)
	assert.Equal(t, "만화", res.Category)
	assert.Contains(t, gen.prompt, "'원피스 1'")
}

func TestBookInfoService_SummarizeNotConfigured(t *testing.T) {
	svc := setupBookInfo(t, nil, nil)

	assert.False(t, svc.SummaryConfigured())
	_, err := svc.Summarize(context.Background(), "B003")
	assert.ErrorIs(t, err, domainerrors.ErrAINotConfigured)

	text, err := svc.SummaryText(context.Background(), "B003")
	require.NoError(t, err)
	assert.True(t, summary.IsFailureText(text))
}

func TestBookInfoService_SummaryTextAbsorbsFailures(t *testing.T) {
	svc := setupBookInfo(t, &stubGenerator{err: errors.New("upstream 500")}, nil)

	text, err := svc.SummaryText(context.Background(), "B001")
	require.NoError(t, err)
	assert.True(t, summary.IsFailureText(text))

	_, err = svc.SummaryText(context.Background(), "B999")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookInfoService_Lookup(t *testing.T) {
	var query string
	svc := setupBookInfo(t, nil, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		w.Write([]byte(`{"items":[{"title":"원피스 1","isbn":"9788952"}]}`))
	})

	item, err := svc.Lookup(context.Background(), "B003")
	require.NoError(t, err)
	assert.Equal(t, "9788952", item.ISBN)
	assert.Equal(t, "코믹원피스 1", query)
}

func TestBookInfoService_LookupNoHit(t *testing.T) {
	svc := setupBookInfo(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"title":"원피스 세트"}]}`))
	})

	_, err := svc.Lookup(context.Background(), "B003")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookInfoService_LookupNotConfigured(t *testing.T) {
	svc := setupBookInfo(t, nil, nil)

	assert.False(t, svc.LookupConfigured())
	_, err := svc.Lookup(context.Background(), "B003")
	assert.ErrorIs(t, err, domainerrors.ErrNotConfigured)
}
