// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package metrics declares the Prometheus collectors exported at /metrics.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough for them to appear in the exposition.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBQueryDuration is labelled by store operation (list_readings, latest_per_sensor, ...).
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensorhub_db_query_duration_seconds",
			Help:    "Duration of datastore operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "source"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_db_query_errors_total",
			Help: "Total number of failed datastore operations",
		},
		[]string{"operation", "source"},
	)

	DBRowsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensorhub_db_rows_returned",
			Help:    "Rows returned per read operation",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"operation", "source"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensorhub_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_breaker_rejections_total",
			Help: "Requests rejected because the circuit breaker was open",
		},
		[]string{"name"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensorhub_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorhub_api_active_requests",
			Help: "Requests currently being served",
		},
	)

	// DatastoreUp is set by the background datastore monitor.
	DatastoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorhub_datastore_up",
			Help: "1 when the last datastore ping succeeded, 0 otherwise",
		},
	)

	// AuditEvents counts audit events by result: written, dropped or failed.
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_audit_events_total",
			Help: "Audit events by write result",
		},
		[]string{"result"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorhub_auth_attempts_total",
			Help: "Authentication operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// RecordDBQuery records one datastore operation. rows < 0 skips the row histogram.
func RecordDBQuery(operation, source string, duration time.Duration, rows int, err error) {
	DBQueryDuration.WithLabelValues(operation, source).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, source).Inc()
		return
	}
	if rows >= 0 {
		DBRowsReturned.WithLabelValues(operation, source).Observe(float64(rows))
	}
}

// RecordAPIRequest records a finished HTTP request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetBreakerState publishes a breaker state as 0, 1 or 2.
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordBreakerRejection counts a call refused by an open breaker.
func RecordBreakerRejection(name string) {
	BreakerRejections.WithLabelValues(name).Inc()
}

// RecordAuthAttempt counts register/login/reset outcomes.
func RecordAuthAttempt(kind, outcome string) {
	AuthAttempts.WithLabelValues(kind, outcome).Inc()
}

// SetDatastoreUp publishes the result of a datastore ping.
func SetDatastoreUp(up bool) {
	if up {
		DatastoreUp.Set(1)
	} else {
		DatastoreUp.Set(0)
	}
}

// RecordAuditEvent counts one audit event outcome.
func RecordAuditEvent(result string) {
	AuditEvents.WithLabelValues(result).Inc()
}
