package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// Recovery creates middleware that keeps handler panics from crashing the
// process. It logs the panic tagged with the request identifier and returns a
// 500 JSON body carrying the same identifier so clients can quote it in
// reports. Placed inside the RequestID middleware, so the request scope is
// still open when the panic is caught here.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					buf := make([]byte, 8192)
					n := runtime.Stack(buf, false)

					id := requestid.FromContext(r.Context())
					if id == "" {
						// Scope already gone (recovery mounted outside the
						// RequestID middleware); the request header side
						// channel still has it.
						id = r.Header.Get(requestid.Header)
					}

					logger.Error("panic recovered in handler",
						zap.String("request_id", id),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.ByteString("stack", buf[:n]),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":      "internal server error",
						"request_id": id,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
