// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// RequestID creates middleware that resolves or generates the correlation
// identifier for every inbound request. Resolution order: the canonical
// X-Request-Id header, then the configured alternate header name (when
// non-empty); an empty header value counts as absent. The resolved identifier
// is installed in a fresh request scope, normalized onto the request's own
// headers, and echoed on the response. The scope is torn down when the
// wrapped handler returns, on panic paths included; handler panics propagate
// unchanged after teardown.
func RequestID(alternate string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestid.Header)
			if id == "" && alternate != "" {
				id = r.Header.Get(alternate)
			}
			if id == "" {
				id = requestid.Generate()
			}

			// Side channel for code that inspects the request directly
			// rather than using ambient lookup.
			r.Header.Set(requestid.Header, id)
			w.Header().Set(requestid.Header, id)

			ctx, scope := requestid.Enter(r.Context(), map[string]any{requestid.Key: id})
			defer func() { _ = scope.Exit() }()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
