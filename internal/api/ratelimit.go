package api

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
)

// rateLimitSummaries is a huma operation middleware that limits summary
// generation per client IP. Rejected requests get 429 with Retry-After.
func (s *Server) rateLimitSummaries(ctx huma.Context, next func(huma.Context)) {
	if s.summaryLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx)
	if !s.summaryLimiter.Allow(key) {
		retry := s.summaryLimiter.RetryAfter(key)
		ctx.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))

		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests",
			domainerrors.RateLimited("Too many summary requests. Please try again later."))
		return
	}

	next(ctx)
}

// clientIP returns the request's remote host. The router's RealIP middleware
// has already applied X-Forwarded-For and X-Real-IP.
func clientIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
