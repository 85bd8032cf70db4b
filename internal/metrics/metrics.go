// Package metrics defines the Prometheus collectors for feed fetching and fallbacks
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the transit-layer collectors
type Metrics struct {
	FeedFetchSeconds   *prometheus.HistogramVec
	FeedFetchesTotal   *prometheus.CounterVec
	FeedBytesTotal     *prometheus.CounterVec
	FeedCacheTotal     *prometheus.CounterVec
	DecodeErrorsTotal  *prometheus.CounterVec
	FallbacksTotal     *prometheus.CounterVec
	OptimizationsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with registry
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeedFetchSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meetmta_feed_fetch_seconds",
				Help:    "Time to fetch one upstream GTFS-RT feed",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feed"},
		),
		FeedFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_feed_fetches_total",
				Help: "Upstream feed fetches by outcome",
			},
			[]string{"feed", "outcome"},
		),
		FeedBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_feed_bytes_total",
				Help: "Bytes downloaded per feed",
			},
			[]string{"feed"},
		),
		FeedCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_feed_cache_total",
				Help: "Feed cache lookups by result (hit, miss, stale)",
			},
			[]string{"feed", "result"},
		),
		DecodeErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_decode_errors_total",
				Help: "GTFS-RT payloads that failed to decode, by stage",
			},
			[]string{"stage"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_fallbacks_total",
				Help: "Responses served from fallback data, by kind",
			},
			[]string{"kind"},
		),
		OptimizationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetmta_optimizations_total",
				Help: "Meeting point searches by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.FeedFetchSeconds,
		m.FeedFetchesTotal,
		m.FeedBytesTotal,
		m.FeedCacheTotal,
		m.DecodeErrorsTotal,
		m.FallbacksTotal,
		m.OptimizationsTotal,
	)

	return m
}

// Discard returns collectors that are not registered anywhere
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
