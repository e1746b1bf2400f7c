package handler

import (
	"context"
	"log/slog"
	"net/http"

	"registrar/internal/record/models"
	"registrar/pkg/platform/httputil"
)

// Pinger checks that the record backend is reachable.
type Pinger func(ctx context.Context) error

// Counter reports how many records a backend holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Health answers 200 with the record count when the backend responds, 503 otherwise.
func Health(ping Pinger, records Counter, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ping != nil {
			if err := ping(ctx); err != nil {
				logger.WarnContext(ctx, "record backend unreachable", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, models.HealthResponse{Status: "unavailable"})
				return
			}
		}
		n, err := records.Count(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to count records", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, models.HealthResponse{Status: "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Records: n})
	}
}
