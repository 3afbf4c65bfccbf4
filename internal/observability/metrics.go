package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream call rate per service (weather, news, exchange). Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per call. Watch for: p99 near the 10s call timeout.
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by category (not_configured, http_status, transport, semantic, parsing).
	UpstreamFailuresTotal *prometheus.CounterVec

	// Research requests. Watch for: traffic volume.
	ResearchRequestsTotal prometheus.Counter

	// Research latency. Bounded by the slowest of the three calls, not their sum.
	ResearchDuration prometheus.Histogram

	// Research branches that ended in a failure, by domain. A spike in one domain
	// with the others flat points at that upstream.
	ResearchBranchFailuresTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of outbound third-party API calls",
		},
		[]string{"service", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Outbound third-party API latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "status"},
	)
	UpstreamFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamFailuresTotal",
			Help: "Total number of adapter failures by category",
		},
		[]string{"service", "category"},
	)
	ResearchRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "researchRequestsTotal",
			Help: "Total number of composite research requests",
		},
	)
	ResearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "researchDurationSeconds",
			Help:    "Composite research latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)
	ResearchBranchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "researchBranchFailuresTotal",
			Help: "Research branches that produced a failure, by domain",
		},
		[]string{"domain"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamFailuresTotal,
		ResearchRequestsTotal, ResearchDuration, ResearchBranchFailuresTotal,
	)
}

// StatusLabel maps an upstream HTTP status code to a low-cardinality label.
// A zero code means no response was received.
func StatusLabel(statusCode int) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
