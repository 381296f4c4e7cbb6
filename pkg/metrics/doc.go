/*
Package metrics provides Prometheus metrics and health checking for Agent
Docs.

All metrics are registered on the default registry at init time and exposed
through Handler() at /metrics. Entity gauges (workspaces, documents,
versions, comments) are refreshed every 15 seconds by the Collector reading
bucket statistics from storage; request counters and histograms are updated
inline by the API middleware, and the SSE gauges track live stream
subscribers.

# Metrics

Entities:
  - agentdocs_workspaces_total, agentdocs_documents_total,
    agentdocs_versions_total, agentdocs_comments_total (gauges)
  - agentdocs_workspaces_created_total, agentdocs_documents_created_total

API:
  - agentdocs_api_requests_total{method,status}
  - agentdocs_api_request_duration_seconds{method}
  - agentdocs_rate_limited_total

Events:
  - agentdocs_events_published_total{type}
  - agentdocs_sse_subscribers
  - agentdocs_sse_events_dropped_total

# Health

The package also carries a process-wide health checker. Components register
themselves and update their status; /health reports overall health, /ready
gates on the critical components (storage, api), and /health/live is a bare
liveness probe.

	metrics.RegisterComponent("storage", true, "")
	...
	metrics.UpdateComponent("storage", false, "database locked")

# Usage

	collector := metrics.NewCollector(store)
	collector.Start()
	defer collector.Stop()

	mux.Handle("/metrics", metrics.Handler())

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.APIRequestDuration, "CreateDocument")
*/
package metrics
