package counter

import (
	"fmt"
	"time"

	"gatekeeper/internal/models"
)

// memoryCleanupInterval bounds how long idle keys survive in the memory
// backend. Redis handles expiry itself via PEXPIRE.
const memoryCleanupInterval = 5 * time.Minute

// New instantiates a counter store based on the provided configuration.
// Supported backends:
//   - redis: shared sliding-window counters (production, multi-instance)
//   - memory: in-process counters (testing/development)
func New(cfg models.CounterStoreConfig) (Store, error) {
	switch cfg.Type {
	case models.CounterStoreTypeRedis:
		return NewRedisStore(cfg.Redis)
	case models.CounterStoreTypeMemory:
		return NewMemoryStore(memoryCleanupInterval), nil
	default:
		return nil, fmt.Errorf("unsupported counter store type: %s", cfg.Type)
	}
}
