package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"gatekeeper/internal/models"
)

// Rule maps request paths to a limit class. Rules are evaluated top to
// bottom; the first match wins, so narrower matchers must precede broader
// ones. New endpoints are protected by appending a row, not by editing
// conditional chains.
type Rule struct {
	Match func(path string) bool
	Class Class
}

// PathPrefix returns a matcher for paths starting with prefix.
func PathPrefix(prefix string) func(string) bool {
	return func(path string) bool { return strings.HasPrefix(path, prefix) }
}

// PathContains returns a matcher for paths containing substr.
func PathContains(substr string) func(string) bool {
	return func(path string) bool { return strings.Contains(path, substr) }
}

// DefaultRules is the routing table for the blogging platform's API surface.
// Non-API paths deliberately have no rule and are not rate limited.
func DefaultRules() []Rule {
	return []Rule{
		{Match: PathContains("/api/auth/login"), Class: ClassAuthLogin},
		{Match: PathContains("/api/auth/signup"), Class: ClassAuthSignup},
		{Match: PathContains("/api/auth/reset-password"), Class: ClassAuthPasswordReset},
		{Match: PathPrefix("/api/chat"), Class: ClassChat},
		{Match: PathPrefix("/api/blog/generate"), Class: ClassBlogGeneration},
		{Match: PathPrefix("/api/admin"), Class: ClassAdmin},
		{Match: PathPrefix("/api/"), Class: ClassAPIUser},
	}
}

// CheckResult is the outcome of the manual (in-handler) enforcement form.
// Headers are ready to copy onto the response whether or not the request
// is allowed; Response is the 429 body to send when it is not.
type CheckResult struct {
	Allowed  bool
	Bypassed bool
	Decision Decision
	Headers  http.Header
	Response *models.RateLimitResponse
}

// Enforcer ties the bypass gate, identity resolver, and limiter together
// behind the two enforcement shapes: blanket middleware and per-handler
// Check calls.
type Enforcer struct {
	gate     *Gate
	resolver *Resolver
	limiter  *Limiter
	rules    []Rule
}

// NewEnforcer creates an enforcer using the default routing table.
func NewEnforcer(gate *Gate, resolver *Resolver, limiter *Limiter) *Enforcer {
	return NewEnforcerWithRules(gate, resolver, limiter, DefaultRules())
}

// NewEnforcerWithRules creates an enforcer with a custom routing table.
func NewEnforcerWithRules(gate *Gate, resolver *Resolver, limiter *Limiter, rules []Rule) *Enforcer {
	return &Enforcer{
		gate:     gate,
		resolver: resolver,
		limiter:  limiter,
		rules:    rules,
	}
}

// ClassFor returns the limit class for a request path, or false when the
// path is not rate limited.
func (e *Enforcer) ClassFor(path string) (Class, bool) {
	for _, rule := range e.rules {
		if rule.Match(path) {
			return rule.Class, true
		}
	}
	return "", false
}

// Check runs the full evaluation pipeline for an explicit class: bypass
// gate, identity resolution, class adjustment, window evaluation. Handlers
// needing finer control than the middleware call this directly.
func (e *Enforcer) Check(r *http.Request, class Class) CheckResult {
	if e.gate.ShouldBypass(r) {
		return CheckResult{Allowed: true, Bypassed: true}
	}

	identity := e.resolver.Resolve(r)
	class, identifier := e.bind(class, identity)

	decision := e.limiter.Evaluate(r.Context(), class, identifier)

	result := CheckResult{
		Allowed:  decision.Allowed,
		Decision: decision,
		Headers:  decisionHeaders(decision),
	}
	if !decision.Allowed {
		retryAfter := int(decision.RetryAfter.Seconds())
		result.Headers.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		result.Response = models.NewRateLimitResponse(retryAfter)
	}
	return result
}

// bind picks the concrete class and counter identifier for a caller.
// Anonymous callers of user-scoped classes fall back to the IP-scoped
// public class; privileged callers of the user API are promoted to the
// admin class and its higher ceiling.
func (e *Enforcer) bind(class Class, identity Identity) (Class, string) {
	if class.UserScoped() {
		if identity.UserID == "" {
			return ClassPublic, identity.IP
		}
		if class == ClassAPIUser && identity.Privileged {
			return ClassAdmin, identity.UserID
		}
		return class, identity.UserID
	}
	return class, identity.IP
}

// Middleware returns HTTP middleware enforcing rate limits for paths in the
// routing table. Allowed requests are forwarded with rate limit headers
// attached; denied requests receive a structured 429.
func (e *Enforcer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class, limited := e.ClassFor(r.URL.Path)
			if !limited {
				next.ServeHTTP(w, r)
				return
			}

			result := e.Check(r, class)

			for name, values := range result.Headers {
				for _, v := range values {
					w.Header().Set(name, v)
				}
			}

			if !result.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(result.Response)

				slog.Warn("Rate limit exceeded",
					"class", string(class),
					"path", r.URL.Path,
					"limit", result.Decision.Limit,
					"retry_after", result.Response.RetryAfter,
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// decisionHeaders builds the standard rate limit headers for a decision.
// The reset timestamp is epoch milliseconds, matching what the platform's
// web client already parses.
func decisionHeaders(d Decision) http.Header {
	h := make(http.Header, 3)
	h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	h.Set("X-RateLimit-Reset", fmt.Sprintf("%d", d.ResetAt.UnixMilli()))
	return h
}
