// Package models - API response types.
// Responses are intentionally small: the gateway only ever speaks for itself
// on health checks, rate limit denials, and proxy failures. Everything else
// is the upstream's body passed through untouched.
package models

import (
	"time"
)

// RateLimitResponse is the body returned with HTTP 429 when a request
// exceeds its quota. RetryAfter mirrors the Retry-After header in seconds.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// NewRateLimitResponse builds the standard over-quota denial body.
func NewRateLimitResponse(retryAfter int) *RateLimitResponse {
	return &RateLimitResponse{
		Error:      "Too Many Requests",
		Message:    "Rate limit exceeded. Please try again later.",
		RetryAfter: retryAfter,
	}
}

// ErrorResponse provides structured error information for gateway-originated
// failures (bad gateway, internal errors). Machine-readable codes allow
// clients to distinguish gateway errors from upstream application errors.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error code constants for gateway-originated responses.
const (
	ErrorCodeBadGateway     = "BAD_GATEWAY"     // 502: Upstream unreachable
	ErrorCodeInternalError  = "INTERNAL_ERROR"  // 500: Gateway-side failure
	ErrorCodeInvalidRequest = "INVALID_REQUEST" // 400/405: Malformed request
)

// NewErrorResponse creates a gateway error body with the current timestamp.
func NewErrorResponse(message, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
}

// HealthCheckResponse reports gateway liveness and component status.
type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
