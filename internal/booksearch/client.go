// Package booksearch looks books up in the Naver book search API.
package booksearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/ratelimit"
)

const (
	// DefaultBaseURL is the book search endpoint.
	DefaultBaseURL = "https://openapi.naver.com/v1/search/book.json"

	defaultDisplay = 10
	setMarker      = "세트"
)

// categoryPrefixes rewrites catalog categories into the words the search
// index uses for the same shelves.
var categoryPrefixes = map[string]string{
	"만화": "코믹",
	"소설": "노벨",
}

// Config holds the API credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// Client searches books. Requests are throttled per upstream host.
type Client struct {
	http    *http.Client
	baseURL string
	id      string
	secret  string
	limiter *ratelimit.KeyedRateLimiter
	hostKey string
	logger  *slog.Logger
}

// New creates a client. Missing credentials are reported on each Lookup.
func New(cfg Config, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hostKey := base
	if u, err := url.Parse(base); err == nil {
		hostKey = u.Host
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: base,
		id:      cfg.ClientID,
		secret:  cfg.ClientSecret,
		// The API allows 10 calls per second per application.
		limiter: ratelimit.New(10, 10),
		hostKey: hostKey,
		logger:  logger,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.id != "" && c.secret != ""
}

// Close stops the limiter's background sweep.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Query builds the search text: the category's index word followed by the title.
func Query(title, category string) string {
	if prefix, ok := categoryPrefixes[category]; ok {
		category = prefix
	}
	return category + title
}

// Search runs one search and returns the raw page of results.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	if !c.Configured() {
		return nil, domainerrors.NotConfigured("book search credentials are not configured")
	}
	if err := c.limiter.Wait(ctx, c.hostKey); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(defaultDisplay))
	params.Set("start", "1")
	params.Set("sort", "count")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.id)
	req.Header.Set("X-Naver-Client-Secret", c.secret)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("searching books", "query", query)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domainerrors.DataSourcef(err, "book search request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domainerrors.RateLimited("book search quota exceeded")
	case resp.StatusCode != http.StatusOK:
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, domainerrors.DataSourcef(
			fmt.Errorf("status %d: %s %s", resp.StatusCode, apiErr.ErrorCode, apiErr.ErrorMessage),
			"book search failed",
		)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, domainerrors.DataSourcef(err, "parse book search response")
	}

	c.logger.Debug("book search results", "query", query, "total", page.Total, "count", len(page.Items))
	return page.Items, nil
}

// Lookup searches for a catalog book and returns the first hit that is not a
// box set, or nil when nothing suitable came back.
func (c *Client) Lookup(ctx context.Context, title, category string) (*Item, error) {
	items, err := c.Search(ctx, Query(title, category))
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if strings.Contains(item.Title, setMarker) {
			continue
		}
		item.Title = htmlToMarkdown(item.Title)
		item.Description = htmlToMarkdown(item.Description)
		item.Author = htmlToMarkdown(item.Author)
		return &item, nil
	}
	return nil, nil
}
