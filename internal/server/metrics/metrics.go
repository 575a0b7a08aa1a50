// Package metrics registers the service's Prometheus collectors.
// HTTP-level metrics are recorded by the httpapi middleware; business
// metrics are updated from the service layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, normalized path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_http_requests_total",
			Help: "Total HTTP requests handled by the content hub service",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and normalized path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

var (
	// CapabilitiesIssued counts issued capabilities by action (PUT/GET).
	CapabilitiesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_capabilities_issued_total",
			Help: "Capabilities (presigned URLs) issued, by action",
		},
		[]string{"action"},
	)

	// StatusTransitions counts status mutation outcomes.
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_status_transitions_total",
			Help: "File status transition attempts, by result",
		},
		[]string{"result"},
	)

	// InjectedFailures counts operations denied by the failure-injection gate.
	InjectedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_injected_failures_total",
			Help: "Guarded operations denied by the failure-injection gate",
		},
		[]string{"operation"},
	)
)
