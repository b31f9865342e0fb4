// Package counter provides the sliding-window counter store backing all rate
// limit quotas. Counters are keyed by (class, window, identifier) and live
// outside the request path: the Redis backend is shared by every gateway
// instance, while the memory backend serves tests and single-node setups.
// Implementations must provide atomic increment-and-read semantics so that
// concurrent requests for the same key are never lost.
package counter

import (
	"context"
	"time"
)

// Sample is the state of one sliding-window counter immediately after an
// increment: the number of requests currently inside the window and the
// time at which the oldest of them slides out.
type Sample struct {
	Count   int64
	ResetAt time.Time
}

// Store defines the counter store contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Increment atomically records one request under key and returns the
	// resulting window state. The window slides relative to now; entries
	// older than the window duration no longer count.
	Increment(ctx context.Context, key string, window time.Duration) (Sample, error)

	// Close releases connections and stops background goroutines.
	Close() error
}
