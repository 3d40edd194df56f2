package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ParseCommaSeparated parses a comma-separated string into a slice
func ParseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// LogRequest logs a completed request, skipping health probes
func LogRequest(r *http.Request, statusCode int, bytes int, duration time.Duration) {
	if r.URL.Path == "/health" {
		return
	}

	fields := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"bytes", bytes,
		"duration", duration.String(),
		"remote_addr", r.RemoteAddr,
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields = append(fields, "request_id", id)
	}

	if statusCode >= 400 {
		fields = append(fields, "query", r.URL.RawQuery)
		slog.WarnContext(r.Context(), "HTTP request error", fields...)
		return
	}
	slog.InfoContext(r.Context(), "HTTP request", fields...)
}

// RequestLogger logs every request once it completes. The wrapped writer
// still supports hijacking, so websocket upgrades pass through it.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		LogRequest(r, status, ww.BytesWritten(), time.Since(start))
	})
}
