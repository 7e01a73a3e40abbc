package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfboard/internal/booksearch"
	"github.com/listenupapp/shelfboard/internal/config"
	"github.com/listenupapp/shelfboard/internal/logger"
	"github.com/listenupapp/shelfboard/internal/ratelimit"
	"github.com/listenupapp/shelfboard/internal/summary"
)

// ProvideSummaryProvider provides the lazily dialed summary client.
func ProvideSummaryProvider(i do.Injector) (*summary.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.AIEnabled() {
		log.Warn("GEMINI_API_KEY not set, book summaries disabled")
	}

	temperature := cfg.Gemini.Temperature
	return summary.NewProvider(summary.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: &temperature,
	}, log.WithComponent("summary").Logger), nil
}

// BookSearchHandle wraps booksearch.Client with Shutdownable.
type BookSearchHandle struct {
	*booksearch.Client
}

// Shutdown implements do.Shutdownable.
func (h *BookSearchHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideBookSearch provides the external book search client.
func ProvideBookSearch(i do.Injector) (*BookSearchHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.BookSearchEnabled() {
		log.Warn("Naver credentials not set, book lookups disabled")
	}

	client := booksearch.New(booksearch.Config{
		ClientID:     cfg.BookSearch.ClientID,
		ClientSecret: cfg.BookSearch.ClientSecret,
	}, log.WithComponent("booksearch").Logger)

	return &BookSearchHandle{Client: client}, nil
}

// SummaryLimiterHandle wraps the per-client summary rate limiter with Shutdownable.
type SummaryLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *SummaryLimiterHandle) Shutdown() error {
	return h.KeyedRateLimiter.Shutdown()
}

// ProvideSummaryLimiter provides the per-client summary rate limiter.
func ProvideSummaryLimiter(i do.Injector) (*SummaryLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &SummaryLimiterHandle{
		KeyedRateLimiter: ratelimit.PerMinute(cfg.RateLimit.AIPerMinute, cfg.RateLimit.AIBurst),
	}, nil
}
