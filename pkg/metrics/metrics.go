// Package metrics provides the centralized Prometheus metrics registry for
// the Twitter graph client. All metrics are defined in their respective
// packages (client, cache, ratelimit) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - twitter_rate_limit_remaining{endpoint, method} (Gauge): calls remaining per bucket
//   - twitter_rate_limit_updates_total{endpoint, method} (Counter): tracker writes per bucket
//
// Interceptor Metrics (pkg/client):
//   - twitter_rate_limit_waits_total{endpoint, method} (Counter): requests delayed pre-send
//   - twitter_rate_limit_wait_seconds{endpoint, method} (Histogram): throttle wait durations
//   - twitter_errors_total{kind} (Counter): errors by kind
//     (unavailable, quota_exceeded, upstream_http, malformed_payload)
//
// Request Metrics (pkg/client):
//   - twitter_requests_total{operation, status} (Counter): requests by operation and HTTP status
//   - twitter_operation_duration_seconds{operation} (Histogram): logical operation duration,
//     pagination included
//
// Id Cache Metrics (pkg/cache):
//   - twitter_id_cache_hits_total (Counter): lookup cache hits
//   - twitter_id_cache_misses_total (Counter): lookup cache misses
//   - twitter_id_cache_evictions_total (Counter): capacity evictions
//   - twitter_id_cache_entries (Gauge): current cached entries
//
// Example Prometheus Queries:
//
//   # Throttle pressure per bucket
//   rate(twitter_rate_limit_waits_total[5m])
//
//   # Quota headroom
//   min(twitter_rate_limit_remaining) by (endpoint)
//
//   # Error rate by kind
//   rate(twitter_errors_total[5m])
//
//   # Id cache hit rate
//   rate(twitter_id_cache_hits_total[5m]) /
//   (rate(twitter_id_cache_hits_total[5m]) + rate(twitter_id_cache_misses_total[5m]))
