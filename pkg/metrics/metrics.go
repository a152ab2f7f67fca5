package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GraphBuildDuration tracks how long a full graph build takes
	GraphBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "network_graph_build_duration_seconds",
			Help:    "Time spent loading events and building the network graph",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EventsProcessed counts events by build outcome (active, inactive, skipped)
	EventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_events_processed_total",
			Help: "Total number of activity events processed, by outcome",
		},
		[]string{"outcome"},
	)

	// GraphSize tracks the size of the current graph
	GraphSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "network_graph_size",
			Help: "Number of nodes, edges and clusters in the current graph",
		},
		[]string{"kind"},
	)

	// ViewCacheRequests counts filtered-view lookups by cache result
	ViewCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_view_cache_requests_total",
			Help: "Total number of filtered view requests, by view and cache result",
		},
		[]string{"view", "result"},
	)

	// HTTPRequests counts API requests by route and status code
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_http_requests_total",
			Help: "Total number of HTTP requests, by route and status code",
		},
		[]string{"route", "code"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(GraphBuildDuration)
	prometheus.MustRegister(EventsProcessed)
	prometheus.MustRegister(GraphSize)
	prometheus.MustRegister(ViewCacheRequests)
	prometheus.MustRegister(HTTPRequests)
}

// ObserveBuild records one completed graph build
func ObserveBuild(elapsed time.Duration, active, inactive, skipped, nodes, edges int) {
	GraphBuildDuration.Observe(elapsed.Seconds())
	EventsProcessed.WithLabelValues("active").Add(float64(active))
	EventsProcessed.WithLabelValues("inactive").Add(float64(inactive))
	EventsProcessed.WithLabelValues("skipped").Add(float64(skipped))
	GraphSize.WithLabelValues("nodes").Set(float64(nodes))
	GraphSize.WithLabelValues("edges").Set(float64(edges))
}
