package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks id-lookup cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitter_id_cache_hits_total",
			Help: "Total number of id lookup cache hits",
		},
	)

	// CacheMisses tracks id-lookup cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitter_id_cache_misses_total",
			Help: "Total number of id lookup cache misses",
		},
	)

	// CacheEvictions tracks entries dropped by capacity pressure
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitter_id_cache_evictions_total",
			Help: "Total number of id lookup cache evictions",
		},
	)

	// CacheSize tracks the current number of cached entries
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitter_id_cache_entries",
			Help: "Current number of cached id lookup entries",
		},
	)
)
