package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"gatekeeper/internal/models"
)

// NewProxy builds the reverse proxy forwarding requests to the upstream
// application. Upstream failures surface as a structured 502 rather than
// the default hijacked-connection error.
func NewProxy(upstream string) (http.Handler, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream url must include scheme and host: %s", upstream)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("Upstream proxy error", "error", err, "path", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		errorResp := models.NewErrorResponse("Upstream unavailable", models.ErrorCodeBadGateway)
		json.NewEncoder(w).Encode(errorResp)
	}

	return proxy, nil
}
