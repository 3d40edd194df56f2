package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

const healthTimeout = 3 * time.Second

// HealthHandler runs every check and reports "degraded" when any fails.
// Optional stores may be down without taking the service out of rotation,
// so the status code stays 200.
func HealthHandler(version string, checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		response := HealthResponse{Status: "healthy", Version: version}
		if len(names) > 0 {
			response.Components = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				slog.Warn("Health check failed", "component", name, "error", err)
				response.Components[name] = "unhealthy"
				response.Status = "degraded"
				continue
			}
			response.Components[name] = "healthy"
		}

		JSONResponse(w, response, http.StatusOK)
	}
}
