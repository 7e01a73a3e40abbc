package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"source":      s.checkSource(ctx),
		"summary":     s.checkOptional(s.services.BookInfo != nil && s.services.BookInfo.SummaryConfigured(), "summary API key not configured"),
		"book_search": s.checkOptional(s.services.BookInfo != nil && s.services.BookInfo.LookupConfigured(), "book search credentials not configured"),
	}

	overall := "healthy"
	for _, c := range components {
		switch {
		case c.Status == "unhealthy":
			overall = "unhealthy"
		case c.Status == "degraded" && overall == "healthy":
			overall = "degraded"
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkSource pings the catalog store.
func (s *Server) checkSource(ctx context.Context) ComponentHealth {
	if s.source == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "source not configured",
		}
	}

	start := time.Now()
	err := s.source.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "source unreachable",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkOptional reports an optional integration; missing credentials degrade it.
func (s *Server) checkOptional(configured bool, message string) ComponentHealth {
	if !configured {
		return ComponentHealth{Status: "degraded", Message: message}
	}
	return ComponentHealth{Status: "healthy"}
}
