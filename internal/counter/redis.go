package counter

import (
	"context"
	"fmt"
	"time"

	"gatekeeper/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowLua maintains one sorted set per counter key. Members are
// scored by request time in milliseconds; everything older than the window
// is removed before the new request is added and counted. Returning the
// oldest surviving score lets the caller compute when the window resets.
// Running it as a script keeps remove+add+count atomic under concurrency.
const slidingWindowLua = `
local key = KEYS[1]
local window_ms = tonumber(ARGV[1])
local now_ms = tonumber(ARGV[2])
local member = ARGV[3]

redis.call("ZREMRANGEBYSCORE", key, 0, now_ms - window_ms)
redis.call("ZADD", key, now_ms, member)
local count = redis.call("ZCARD", key)
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
redis.call("PEXPIRE", key, window_ms)

return { count, tonumber(oldest[2]) }
`

// RedisStore is a sliding-window counter store backed by Redis. All gateway
// instances pointed at the same Redis share quota state, so a client cannot
// reset its budget by landing on a different instance.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(cfg models.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{
		client: client,
		script: redis.NewScript(slidingWindowLua),
	}, nil
}

// Increment atomically records one request under key and returns the
// resulting window state.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Sample, error) {
	nowMs := time.Now().UnixMilli()

	// Member must be unique per request; two requests can share a millisecond.
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	values, err := s.script.Run(ctx, s.client, []string{key},
		window.Milliseconds(), nowMs, member).Int64Slice()
	if err != nil {
		return Sample{}, fmt.Errorf("redis sliding window script: %w", err)
	}
	if len(values) != 2 {
		return Sample{}, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	return Sample{
		Count:   values[0],
		ResetAt: time.UnixMilli(values[1]).Add(window),
	}, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
