// Package ratelimit provides multi-window, identity-aware rate limiting for
// HTTP requests, backed by a shared sliding-window counter store. It maps
// request paths to named limit classes, evaluates all windows configured for
// a class with AND semantics, and includes HTTP middleware that sets standard
// rate limit response headers.
//
// The limiter is a protective layer, not a security boundary: when the
// counter store is unreachable the request is allowed through (fail-open)
// so a store outage never cascades into a full outage of the platform.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gatekeeper/internal/counter"
)

// Decision is the composite outcome of evaluating a limit class for one
// identifier. It is produced fresh per request and never persisted.
type Decision struct {
	Allowed    bool
	Limit      int           // Maximum requests for the binding window
	Remaining  int           // Requests left in the binding window
	ResetAt    time.Time     // When the binding window resets
	RetryAfter time.Duration // How long to wait (set only when denied)
}

// Limiter evaluates limit classes against the counter store. It holds no
// per-request state; all counters live in the store.
type Limiter struct {
	store  counter.Store
	policy *Policy
}

// NewLimiter creates a limiter that evaluates the given policy against the
// given counter store.
func NewLimiter(store counter.Store, policy *Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Evaluate checks all windows configured for the class against the counter
// store and returns the composite decision. For dual-window classes both
// store calls are issued concurrently and combined with AND semantics: the
// request is allowed only if every window has headroom. On failure the first
// failing window in configured order (the coarser one) supplies the numbers
// surfaced to the caller.
func (l *Limiter) Evaluate(ctx context.Context, class Class, identifier string) Decision {
	windows := l.policy.Windows(class)

	first := windows[0]
	if len(windows) == 1 {
		return finalize(l.evaluateWindow(ctx, class, first, identifier))
	}

	second := windows[1]
	ch := make(chan Decision, 1)
	go func() {
		ch <- l.evaluateWindow(ctx, class, second, identifier)
	}()

	firstDecision := l.evaluateWindow(ctx, class, first, identifier)
	secondDecision := <-ch

	return finalize(combine(firstDecision, secondDecision))
}

// evaluateWindow increments the window's counter and maps the sample to a
// per-window decision. Store failures fail open: the request is allowed with
// neutral numbers and the error is logged, never propagated.
func (l *Limiter) evaluateWindow(ctx context.Context, class Class, w Window, identifier string) Decision {
	key := counterKey(class, w, identifier)

	sample, err := l.store.Increment(ctx, key, w.Duration)
	if err != nil {
		slog.Warn("rate limit counter store unavailable, allowing request",
			"class", string(class),
			"window", w.Duration.String(),
			"error", err,
		)
		return Decision{Allowed: true, ResetAt: time.Now()}
	}

	remaining := w.Max - int(sample.Count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   sample.Count <= int64(w.Max),
		Limit:     w.Max,
		Remaining: remaining,
		ResetAt:   sample.ResetAt,
	}
}

// combine applies AND semantics to two window decisions. When both pass, the
// first (coarser) window's numbers are surfaced; when either fails, the
// first failing one wins, so a simultaneous double failure reports the
// coarser budget the caller should reason about.
func combine(first, second Decision) Decision {
	if first.Allowed && second.Allowed {
		return first
	}
	if !first.Allowed {
		return first
	}
	return second
}

// finalize derives RetryAfter for denied decisions, rounded up to whole
// seconds and never less than one.
func finalize(d Decision) Decision {
	if d.Allowed {
		return d
	}
	secs := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
	if secs < 1 {
		secs = 1
	}
	d.RetryAfter = time.Duration(secs) * time.Second
	return d
}

// counterKey scopes counters per class, window duration, and identifier so
// that exhausting one window never touches another.
func counterKey(class Class, w Window, identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", class, w.Duration, identifier)
}
