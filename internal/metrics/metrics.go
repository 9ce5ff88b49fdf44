// Package metrics holds the Prometheus instruments shared by the HTTP
// middleware and the lifecycle manager.  All collectors are registered with
// the global registry, so importing this package is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Cumulative number of HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		})

	LifecycleHookFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_hook_failures_total",
			Help: "Cumulative number of failed startup or shutdown hooks.",
		}, []string{"hook", "phase"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		LifecycleHookFailures,
	)
}
