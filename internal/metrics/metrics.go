package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AniListRequests counts outbound GraphQL attempts by outcome
	// (ok, rate_limited, http_error, graphql_error, transport_error).
	AniListRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tempus",
		Subsystem: "anilist",
		Name:      "requests_total",
		Help:      "Outbound AniList requests by outcome.",
	}, []string{"outcome"})

	// AniListRequestDuration observes the latency of outbound attempts
	AniListRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempus",
		Subsystem: "anilist",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound AniList requests.",
		Buckets:   prometheus.DefBuckets,
	})

	// AniListRetries counts retries after HTTP 429
	AniListRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tempus",
		Subsystem: "anilist",
		Name:      "retries_total",
		Help:      "Retries performed after rate-limit responses.",
	})

	// CacheLookups counts response cache lookups by result (hit, miss)
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tempus",
		Subsystem: "anilist",
		Name:      "cache_lookups_total",
		Help:      "Response cache lookups by result.",
	}, []string{"result"})

	// HTTPRequests counts local API requests
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tempus",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Local API requests by method and status code.",
	}, []string{"method", "code"})

	// WatchlistEntries reports the number of entries per watchlist, refreshed by /status
	WatchlistEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tempus",
		Subsystem: "watchlist",
		Name:      "entries",
		Help:      "Entries per watchlist.",
	}, []string{"watchlist"})
)
