package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis hash fields for one bucket's state.
const (
	redisKeyPrefix      = "twitter:rate_limit:"
	redisFieldRemaining = "remaining"
	redisFieldResetAt   = "reset_at"
)

// redisStateTTL bounds stale bucket entries; quota windows are minutes, not
// hours, so an hour after the last write the entry is worthless.
const redisStateTTL = time.Hour

// RedisTracker shares bucket state across processes through Redis.
// Lookups degrade to the default unrestricted state when Redis is
// unreachable, keeping the Tracker contract infallible: a lost throttle
// signal is recovered by the response path on the next 429.
type RedisTracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedisTracker creates a Redis-backed rate limit tracker.
func NewRedisTracker(redisClient *redis.Client, logger zerolog.Logger) *RedisTracker {
	return &RedisTracker{
		redis:  redisClient,
		logger: logger,
	}
}

func redisStateKey(key Key) string {
	return redisKeyPrefix + key.Method + ":" + key.Template
}

// Limit returns the last state written for key, or the default state when
// the bucket is unknown or Redis fails.
func (t *RedisTracker) Limit(ctx context.Context, key Key) State {
	fields, err := t.redis.HGetAll(ctx, redisStateKey(key)).Result()
	if err != nil {
		t.logger.Warn().Err(err).
			Str("bucket", key.String()).
			Msg("Rate limit lookup failed, treating bucket as unrestricted")
		return DefaultState()
	}

	if len(fields) == 0 {
		return DefaultState()
	}

	remain, err := strconv.Atoi(fields[redisFieldRemaining])
	if err != nil {
		return DefaultState()
	}

	resetEpoch, err := strconv.ParseInt(fields[redisFieldResetAt], 10, 64)
	if err != nil {
		return DefaultState()
	}

	return State{
		Remaining: remain,
		ResetAt:   time.Unix(resetEpoch, 0),
		Observed:  true,
	}
}

// SetLimit writes the bucket state as one hash so concurrent writers stay
// last-writer-wins without torn reads.
func (t *RedisTracker) SetLimit(ctx context.Context, key Key, state State) {
	stateKey := redisStateKey(key)

	pipe := t.redis.Pipeline()
	pipe.HSet(ctx, stateKey,
		redisFieldRemaining, state.Remaining,
		redisFieldResetAt, state.ResetAt.Unix(),
	)
	pipe.Expire(ctx, stateKey, redisStateTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn().Err(err).
			Str("bucket", key.String()).
			Msg("Failed to store rate limit state in redis")
		return
	}

	observeState(key, state)

	t.logger.Debug().
		Str("bucket", key.String()).
		Int("remaining", state.Remaining).
		Time("reset_at", state.ResetAt).
		Msg("Rate limit state updated")
}
