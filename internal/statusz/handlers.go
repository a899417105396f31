// Package statusz provides the operational status endpoints under /_status:
// a load-balancer ping and a deliberate-failure endpoint for verifying that
// panic recovery and error correlation work in a deployed environment.
package statusz

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// Handlers holds dependencies for status endpoints.
type Handlers struct {
	logger   *zap.Logger
	networks []netip.Prefix
	version  string
}

// NewHandlers creates status handlers. networks is a space-separated list of
// CIDRs allowed to reach the test endpoints; loopback is always allowed.
// Malformed entries are skipped with a warning rather than failing startup.
func NewHandlers(logger *zap.Logger, networks string) *Handlers {
	h := &Handlers{
		logger:  logger,
		version: moduleVersion(),
	}
	for _, entry := range strings.Fields(networks) {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			logger.Warn("skipping malformed network entry",
				zap.String("entry", entry),
				zap.Error(err),
			)
			continue
		}
		h.networks = append(h.networks, prefix)
	}
	return h
}

func moduleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "unknown"
}

// PingHandler handles GET /_status/ping. Plain OK plus the build version,
// suitable for load balancer checks.
func (h *Handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok %s\n", h.version)
}

// ErrorHandler handles GET /_status/error. It panics on purpose so operators
// can confirm that recovery middleware and request-id tagging of error
// reports are wired correctly. Restricted to approved source addresses.
func (h *Handlers) ErrorHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(r) {
		h.logger.Info("status test endpoint denied",
			zap.String("request_id", requestid.FromContext(r.Context())),
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	panic("test error from /_status/error, ignore")
}

// allowed reports whether the request's source address is loopback or inside
// one of the configured networks.
func (h *Handlers) allowed(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	if addr.IsLoopback() {
		return true
	}
	for _, network := range h.networks {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}
