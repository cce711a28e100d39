package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

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

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"engine":   s.checkEngine(),
		"sponsors": s.checkSponsorSource(),
		"videos":   s.checkTimelines(),
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

func (s *Server) checkEngine() ComponentHealth {
	if s.engine == nil {
		return ComponentHealth{Status: "unhealthy", Message: "engine not configured"}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: fmt.Sprintf("tolerance %gs", s.engine.Tolerance()),
	}
}

// checkSponsorSource reports degraded without a source: timelines still work,
// they just never include sponsor segments unless a client supplies them.
func (s *Server) checkSponsorSource() ComponentHealth {
	if s.timelines == nil || !s.timelines.HasSponsorSource() {
		return ComponentHealth{Status: "degraded", Message: "sponsor source not configured"}
	}
	return ComponentHealth{Status: "healthy"}
}

func (s *Server) checkTimelines() ComponentHealth {
	if s.timelines == nil {
		return ComponentHealth{Status: "unhealthy", Message: "timeline service not configured"}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: formatVideoCount(len(s.timelines.Videos())),
	}
}

func formatVideoCount(count int) string {
	switch count {
	case 0:
		return "no tracked videos"
	case 1:
		return "1 tracked video"
	default:
		return strconv.Itoa(count) + " tracked videos"
	}
}
