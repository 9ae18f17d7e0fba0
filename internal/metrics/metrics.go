// Package metrics holds the Prometheus collectors exported by contestwatch.
//
// Collectors are registered on the default registry and exposed by the
// dashboard server at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poller metrics
var (
	// PollInvocationsTotal counts action invocations per poller.
	PollInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestwatch_poll_invocations_total",
			Help: "Total poll action invocations by poller",
		},
		[]string{"poller"},
	)

	// PollSkippedTotal counts ticks dropped because an invocation was still running.
	PollSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestwatch_poll_skipped_total",
			Help: "Ticks skipped while a previous invocation was in flight, by poller",
		},
		[]string{"poller"},
	)

	// PollPanicsTotal counts recovered action panics.
	PollPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestwatch_poll_panics_total",
			Help: "Recovered poll action panics by poller",
		},
		[]string{"poller"},
	)

	// PollInFlight tracks invocations currently running.
	PollInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contestwatch_poll_in_flight",
			Help: "Poll action invocations currently running, by poller",
		},
		[]string{"poller"},
	)
)

// Judge API metrics
var (
	// APIRequestsTotal counts judge API calls by operation and outcome.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestwatch_api_requests_total",
			Help: "Total judge API requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// APIRequestDuration tracks judge API latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contestwatch_api_request_duration_seconds",
			Help:    "Judge API request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

// ObserveAPIRequest records one judge API call.
func ObserveAPIRequest(operation string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	APIRequestsTotal.WithLabelValues(operation, outcome).Inc()
	APIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
