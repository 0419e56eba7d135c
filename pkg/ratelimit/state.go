// Package ratelimit tracks per-endpoint rate-limit quotas observed from
// x-rate-limit-remaining and x-rate-limit-reset response headers, and
// answers whether a bucket is exhausted before a request is dispatched.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Header names carrying the quota signal on API responses.
const (
	HeaderRemaining = "x-rate-limit-remaining"
	HeaderReset     = "x-rate-limit-reset"
)

// State is the last quota snapshot observed for one bucket.
// It is a value type; trackers store and return whole snapshots so readers
// never see a torn value.
type State struct {
	// Remaining is the number of calls left in the current quota window.
	Remaining int

	// ResetAt is when the quota window resets.
	ResetAt time.Time

	// Observed reports whether this bucket has ever been seen on a response.
	// Unobserved buckets are unrestricted.
	Observed bool
}

// DefaultState returns the non-throttling state used for buckets that have
// never been observed.
func DefaultState() State {
	return State{
		Remaining: 0,
		ResetAt:   time.Now(),
		Observed:  false,
	}
}

// Exhausted reports whether the bucket has no calls left in its window.
// Unobserved buckets are never exhausted.
func (s State) Exhausted() bool {
	return s.Observed && s.Remaining == 0
}

// TimeUntilReset returns the duration until the quota window resets.
// Returns 0 if the reset time has already passed.
func (s State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// StateFromHeaders parses the rate-limit headers from an API response.
// The reset header carries epoch seconds. Returns false when the remaining
// header is absent or either header fails to parse; responses without the
// quota signal simply do not update the tracker.
func StateFromHeaders(headers http.Header) (State, bool) {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return State{}, false
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return State{}, false
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return State{}, false
	}

	resetEpoch, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return State{}, false
	}

	return State{
		Remaining: remain,
		ResetAt:   time.Unix(resetEpoch, 0),
		Observed:  true,
	}, true
}
