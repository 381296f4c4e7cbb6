package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Entity metrics
	WorkspacesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentdocs_workspaces_total",
			Help: "Total number of workspaces",
		},
	)

	DocumentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentdocs_documents_total",
			Help: "Total number of documents",
		},
	)

	VersionsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentdocs_versions_total",
			Help: "Total number of document versions",
		},
	)

	CommentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentdocs_comments_total",
			Help: "Total number of comments",
		},
	)

	WorkspacesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentdocs_workspaces_created_total",
			Help: "Total number of workspaces created since start",
		},
	)

	DocumentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentdocs_documents_created_total",
			Help: "Total number of documents created since start",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdocs_api_requests_total",
			Help: "Total number of API requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdocs_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentdocs_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting",
		},
	)

	// Event stream metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdocs_events_published_total",
			Help: "Total number of events published by type",
		},
		[]string{"type"},
	)

	SSESubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentdocs_sse_subscribers",
			Help: "Current number of connected SSE subscribers",
		},
	)

	SSEEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentdocs_sse_events_dropped_total",
			Help: "Total number of events dropped for slow SSE subscribers",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(WorkspacesTotal)
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(VersionsTotal)
	prometheus.MustRegister(CommentsTotal)
	prometheus.MustRegister(WorkspacesCreated)
	prometheus.MustRegister(DocumentsCreated)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(SSESubscribers)
	prometheus.MustRegister(SSEEventsDropped)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time for histogram observations
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in a histogram
func (t *Timer) ObserveDuration(h prometheus.Histogram) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time in a labeled histogram
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
