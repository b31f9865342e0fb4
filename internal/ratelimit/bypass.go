package ratelimit

import (
	"crypto/subtle"
	"net/http"
)

// BypassHeader carries the operational bypass secret. Requests presenting
// the configured secret skip rate limiting entirely; used for load testing
// and operational overrides.
const BypassHeader = "X-RateLimit-Bypass"

// Gate decides whether a request skips the limiter. It runs before identity
// resolution and any counter store round-trips.
type Gate struct {
	enabled bool
	secret  string
}

// NewGate creates a bypass gate. When enabled is false every request
// bypasses; an empty secret disables header-based bypass.
func NewGate(enabled bool, secret string) *Gate {
	return &Gate{enabled: enabled, secret: secret}
}

// ShouldBypass reports whether the request skips rate limiting: always when
// the limiter is globally disabled, or when the bypass header exactly
// matches the configured secret.
func (g *Gate) ShouldBypass(r *http.Request) bool {
	if !g.enabled {
		return true
	}
	if g.secret == "" {
		return false
	}
	presented := r.Header.Get(BypassHeader)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.secret)) == 1
}
