// Package gateway wires the HTTP surface of the service: a health endpoint,
// the rate-limit enforcement middleware, and a reverse proxy that forwards
// everything else to the protected upstream application.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"gatekeeper/internal/models"
	"gatekeeper/internal/ratelimit"
	"gatekeeper/internal/version"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" && r.URL.Path != "/metrics"
			}),
		))
	}
}

// SetupRoutes configures the HTTP routes for the gateway. The enforcer's
// routing table decides which proxied paths are rate limited; the gateway
// itself only owns /health.
func SetupRoutes(cfg *models.Config, enforcer *ratelimit.Enforcer, proxy http.Handler, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	for _, opt := range opts {
		opt(router)
	}

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)
	router.Use(authContextMiddleware(cfg.Upstream.TrustAuthHeader))
	router.Use(enforcer.Middleware())

	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Everything else belongs to the upstream, API and pages alike.
	router.PathPrefix("/").Handler(proxy)

	return router
}

// healthHandler reports gateway liveness. It is deliberately independent of
// the counter store: a store outage degrades rate limiting, not the gateway.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthCheckResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.GetInfo().Version,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
