// Package metrics exposes Prometheus metrics for the feed pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FeedMetrics collects feed-pipeline metrics on a private registry.
type FeedMetrics struct {
	registry *prometheus.Registry

	RefreshDuration prometheus.Histogram
	RefreshTotal    *prometheus.CounterVec
	CachedMarkets   prometheus.Gauge
	StaleServes     prometheus.Counter
	MockFallbacks   prometheus.Counter
	UpstreamErrors  *prometheus.CounterVec
	TokenLookups    *prometheus.CounterVec
}

// New creates a FeedMetrics collector with all metrics registered.
func New() *FeedMetrics {
	registry := prometheus.NewRegistry()

	fm := &FeedMetrics{
		registry: registry,

		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swipebet_feed_refresh_duration_seconds",
			Help:    "Wall time of a full cache refresh pass",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipebet_feed_refresh_total",
				Help: "Refresh passes by result",
			},
			[]string{"result"},
		),
		CachedMarkets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swipebet_feed_cached_markets",
			Help: "Markets in the current cache generation",
		}),
		StaleServes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipebet_feed_stale_serves_total",
			Help: "Requests served from an expired cache generation",
		}),
		MockFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swipebet_feed_mock_fallbacks_total",
			Help: "Requests served from the built-in mock set",
		}),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipebet_upstream_errors_total",
				Help: "Upstream fetch errors by source and kind",
			},
			[]string{"source", "kind"},
		),
		TokenLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipebet_token_lookups_total",
				Help: "Token cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		fm.RefreshDuration,
		fm.RefreshTotal,
		fm.CachedMarkets,
		fm.StaleServes,
		fm.MockFallbacks,
		fm.UpstreamErrors,
		fm.TokenLookups,
	)

	return fm
}

// Handler returns the /metrics HTTP handler for this registry.
func (fm *FeedMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(fm.registry, promhttp.HandlerOpts{})
}
