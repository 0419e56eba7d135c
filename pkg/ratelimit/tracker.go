package ratelimit

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "twitter_rate_limit_remaining",
		Help: "Calls remaining in the current rate limit window by bucket",
	}, []string{"endpoint", "method"})

	rateLimitUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_rate_limit_updates_total",
		Help: "Total rate limit state updates by bucket",
	}, []string{"endpoint", "method"})
)

// Tracker stores the last observed quota per rate-limit bucket.
// Both operations are infallible: lookups for unseen buckets return the
// non-throttling default, and writes are last-writer-wins.
type Tracker interface {
	// Limit returns the current known state for key. Never fails.
	Limit(ctx context.Context, key Key) State

	// SetLimit overwrites the state for key. Never fails; called from the
	// response path only.
	SetLimit(ctx context.Context, key Key, state State)
}

// MemoryTracker keeps bucket state in a process-local map. It is the default
// tracker; its lifecycle is owned by the client instance that created it.
type MemoryTracker struct {
	mu     sync.RWMutex
	states map[Key]State
	logger zerolog.Logger
}

// NewTracker creates an in-memory rate limit tracker.
func NewTracker(logger zerolog.Logger) *MemoryTracker {
	return &MemoryTracker{
		states: make(map[Key]State),
		logger: logger,
	}
}

// Limit returns the last observed state for key, or the default unrestricted
// state if the bucket has never been seen.
func (t *MemoryTracker) Limit(_ context.Context, key Key) State {
	t.mu.RLock()
	state, ok := t.states[key]
	t.mu.RUnlock()

	if !ok {
		return DefaultState()
	}
	return state
}

// SetLimit overwrites the state for key with an atomic snapshot.
func (t *MemoryTracker) SetLimit(_ context.Context, key Key, state State) {
	t.mu.Lock()
	t.states[key] = state
	t.mu.Unlock()

	observeState(key, state)

	t.logger.Debug().
		Str("bucket", key.String()).
		Int("remaining", state.Remaining).
		Time("reset_at", state.ResetAt).
		Msg("Rate limit state updated")
}

// observeState publishes the bucket state to Prometheus. Shared by all
// tracker implementations.
func observeState(key Key, state State) {
	rateLimitRemaining.WithLabelValues(key.Template, key.Method).Set(float64(state.Remaining))
	rateLimitUpdatesTotal.WithLabelValues(key.Template, key.Method).Inc()
}
