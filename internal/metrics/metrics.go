// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for a fuzzing run.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrialsTotal counts every trial by terminal result. "ok",
	// "server_error" and "transport_error" are classified outcomes;
	// "sample_error", "build_error" and "connect_error" are skipped
	// trials.
	TrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shakedown_trials_total",
		Help: "Total number of trials by terminal result",
	}, []string{"result"})

	// RequestDuration tracks wall time of issued requests.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shakedown_request_duration_seconds",
		Help:    "Duration of issued HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "status"})

	// FailuresRecorded counts rows appended to the failure log.
	FailuresRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shakedown_failures_recorded_total",
		Help: "Total number of failure rows recorded by outcome kind",
	}, []string{"kind"})

	// BodyCaptureFailures counts best-effort body persists that failed.
	BodyCaptureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shakedown_body_capture_failures_total",
		Help: "Total number of failed response body captures",
	})
)

// IncTrial records one finished trial.
func IncTrial(result string) {
	TrialsTotal.WithLabelValues(result).Inc()
}

// ObserveRequestDuration records the duration of one issued request.
func ObserveRequestDuration(method string, status int, d time.Duration) {
	RequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncFailureRecorded records one appended failure row.
func IncFailureRecorded(kind string) {
	FailuresRecorded.WithLabelValues(kind).Inc()
}

// IncBodyCaptureFailure records one failed body capture.
func IncBodyCaptureFailure() {
	BodyCaptureFailures.Inc()
}
