// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	FeedFetchesTotal  *prometheus.CounterVec
	FeedItemsRetained prometheus.Gauge
	FeedFetchLatency  prometheus.Histogram

	// Market metrics
	SnapshotBatchesTotal *prometheus.CounterVec
	SnapshotsFetched     prometheus.Counter
	SnapshotBatchLatency prometheus.Histogram
	SnapshotCacheHits    prometheus.Counter
	SnapshotCacheMisses  prometheus.Counter

	// Store metrics
	TokensRecorded prometheus.Counter
	StoreErrors    *prometheus.CounterVec

	// Health metrics
	LastSuccessfulNewsRefresh prometheus.Gauge
	NewsStale                 prometheus.Gauge
	ConnectedClients          prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates a Metrics instance with all metrics registered on
// reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "declaw"
	}
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: gatherer,

		FeedFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Total feed fetch attempts by outcome",
		}, []string{"outcome"}),
		FeedItemsRetained: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "items_retained",
			Help:      "Number of news items currently retained",
		}),
		FeedFetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a full aggregation cycle",
			Buckets:   prometheus.DefBuckets,
		}),

		SnapshotBatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshot_batches_total",
			Help:      "Total snapshot batch requests by outcome",
		}, []string{"outcome"}),
		SnapshotsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshots_fetched_total",
			Help:      "Total market snapshots fetched",
		}),
		SnapshotBatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshot_batch_duration_seconds",
			Help:      "Duration of one snapshot batch fetch",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshot_cache_hits_total",
			Help:      "Snapshot requests served from cache",
		}),
		SnapshotCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshot_cache_misses_total",
			Help:      "Snapshot requests that went upstream",
		}),

		TokensRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens_recorded_total",
			Help:      "Total deployed tokens recorded",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Store operation errors by operation",
		}, []string{"operation"}),

		LastSuccessfulNewsRefresh: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_news_refresh_timestamp_seconds",
			Help:      "Unix timestamp of the last successful news refresh",
		}),
		NewsStale: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "news_stale",
			Help:      "1 when the news feed has not refreshed recently",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connected_clients",
			Help:      "Currently connected websocket clients",
		}),
	}
}

// Handler serves the registry these metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Handler returns an HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
