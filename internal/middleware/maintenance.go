package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// MaintenanceResponse is the response body during maintenance mode.
type MaintenanceResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Maintenance creates middleware that returns 503 when maintenance mode is
// enabled. Health and status endpoints stay reachable so probes keep working.
func Maintenance(enabled bool, message string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health/") || strings.HasPrefix(r.URL.Path, "/_status/") {
				next.ServeHTTP(w, r)
				return
			}

			if enabled {
				id := requestid.FromContext(r.Context())
				logger.Info("request rejected due to maintenance mode",
					zap.String("request_id", id),
					zap.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "300")
				w.WriteHeader(http.StatusServiceUnavailable)

				resp := MaintenanceResponse{
					Status:    "unavailable",
					Message:   message,
					RequestID: id,
				}
				_ = json.NewEncoder(w).Encode(resp)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
