package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/edamsoft-sre/twitter-graph-client/pkg/ratelimit"
)

// Prometheus metrics for the interceptor pair.
var (
	rateLimitWaitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_rate_limit_waits_total",
		Help: "Total requests delayed because their bucket was exhausted",
	}, []string{"endpoint", "method"})

	rateLimitWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "twitter_rate_limit_wait_seconds",
		Help:    "Duration of pre-request rate limit waits",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900},
	}, []string{"endpoint", "method"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_errors_total",
		Help: "Total API errors by kind",
	}, []string{"kind"})
)

// requestInterceptor throttles outbound requests. It is consulted
// synchronously immediately before every dispatch: when the target bucket is
// exhausted it suspends the caller until the quota window resets plus a
// safety margin. It never re-checks after the wait; a real 429 after a race
// is handled by the response path.
type requestInterceptor struct {
	tracker ratelimit.Tracker
	margin  time.Duration
	pacer   *rate.Limiter
	logger  zerolog.Logger
}

// throttle blocks until the request for u may proceed. Returns early with
// the context error when the caller is cancelled mid-wait.
func (ri *requestInterceptor) throttle(ctx context.Context, method string, u *url.URL) error {
	if ri.pacer != nil {
		if err := ri.pacer.Wait(ctx); err != nil {
			return err
		}
	}

	key := ratelimit.NewKey(u, method)
	limit := ri.tracker.Limit(ctx, key)
	if !limit.Exhausted() {
		return nil
	}

	wait := limit.TimeUntilReset() + ri.margin

	ri.logger.Debug().
		Str("bucket", key.String()).
		Time("reset_at", limit.ResetAt).
		Dur("wait", wait).
		Msg("Rate limited, suspending request")

	rateLimitWaitsTotal.WithLabelValues(key.Template, key.Method).Inc()
	rateLimitWaitSeconds.WithLabelValues(key.Template, key.Method).Observe(wait.Seconds())

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// responseInterceptor refreshes the tracker from every response and maps
// non-2xx statuses to typed errors.
type responseInterceptor struct {
	tracker ratelimit.Tracker
	logger  zerolog.Logger
}

// inspect runs both response duties. The limit refresh is unconditional and
// happens before the status check, so bookkeeping is never skipped on error
// responses.
func (ri *responseInterceptor) inspect(ctx context.Context, resp *http.Response) error {
	key := ratelimit.NewKey(resp.Request.URL, resp.Request.Method)

	if state, ok := ratelimit.StateFromHeaders(resp.Header); ok {
		ri.tracker.SetLimit(ctx, key, state)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Error responses: the body is not consumed further.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErrorsTotal.WithLabelValues(string(KindQuotaExceeded)).Inc()
		ri.logger.Warn().
			Str("bucket", key.String()).
			Str("remaining", resp.Header.Get(ratelimit.HeaderRemaining)).
			Msg("Quota exceeded despite pre-request throttle")
		return &APIError{
			Kind:           KindQuotaExceeded,
			StatusCode:     resp.StatusCode,
			QuotaRemaining: resp.Header.Get(ratelimit.HeaderRemaining),
		}
	}

	apiErrorsTotal.WithLabelValues(string(KindUpstreamHTTP)).Inc()
	return &APIError{
		Kind:       KindUpstreamHTTP,
		StatusCode: resp.StatusCode,
		Path:       resp.Request.URL.Path,
	}
}
