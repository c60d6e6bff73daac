/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus collectors for Verdict
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdict_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Filter compilation metrics */
	filterCompilationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_filter_compilations_total",
			Help: "Total number of filter compilations",
		},
		[]string{"status"},
	)

	filterCompileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdict_filter_compile_duration_seconds",
			Help:    "Filter compilation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	filterPredicateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdict_filter_predicate_count",
			Help:    "Number of predicates per compiled filter",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	/* Evaluation lifecycle metrics */
	evaluationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_evaluation_transitions_total",
			Help: "Total number of evaluation status transitions",
		},
		[]string{"to_status"},
	)

	evaluationsDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdict_evaluations_deduplicated_total",
			Help: "Total number of evaluation requests collapsed onto an existing fingerprint",
		},
	)

	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdict_evaluation_duration_seconds",
			Help:    "Evaluation computation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		},
		[]string{"task_type"},
	)

	/* Worker metrics */
	evaluationsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "verdict_evaluations_pending",
			Help: "Number of evaluations waiting to be claimed",
		},
	)

	workerClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_worker_claims_total",
			Help: "Total number of worker claim attempts",
		},
		[]string{"outcome"},
	)

	/* Database connection pool metrics */
	dbPoolOpenConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "verdict_db_pool_open_connections",
			Help: "Number of open database connections",
		},
		[]string{"database"},
	)

	dbPoolIdleConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "verdict_db_pool_idle_connections",
			Help: "Number of idle database connections",
		},
		[]string{"database"},
	)

	dbPoolInUseConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "verdict_db_pool_in_use_connections",
			Help: "Number of database connections in use",
		},
		[]string{"database"},
	)

	/* Filtered query metrics */
	filteredQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdict_filtered_query_duration_seconds",
			Help:    "Filtered query execution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"pivot"},
	)
)

/* RecordHTTPRequest records an HTTP request */
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	/* Convert status code to status class for better PromQL queries */
	statusClass := "unknown"
	if status >= 200 && status < 300 {
		statusClass = "2xx"
	} else if status >= 300 && status < 400 {
		statusClass = "3xx"
	} else if status >= 400 && status < 500 {
		statusClass = "4xx"
	} else if status >= 500 {
		statusClass = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, statusClass).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordFilterCompilation records a filter compilation attempt */
func RecordFilterCompilation(status string, predicates int, duration time.Duration) {
	filterCompilationsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		filterCompileDuration.Observe(duration.Seconds())
		filterPredicateCount.Observe(float64(predicates))
	}
}

/* RecordEvaluationTransition records an evaluation status transition */
func RecordEvaluationTransition(toStatus string) {
	evaluationTransitionsTotal.WithLabelValues(toStatus).Inc()
	if toStatus == "pending" {
		evaluationsPending.Inc()
	}
	if toStatus == "running" {
		evaluationsPending.Dec()
	}
}

/* RecordEvaluationDeduplicated records a request collapsed by fingerprint */
func RecordEvaluationDeduplicated() {
	evaluationsDeduplicatedTotal.Inc()
}

/* RecordEvaluationDuration records a completed evaluation's runtime */
func RecordEvaluationDuration(taskType string, duration time.Duration) {
	evaluationDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

/* RecordWorkerClaim records a worker claim attempt */
func RecordWorkerClaim(outcome string) {
	workerClaimsTotal.WithLabelValues(outcome).Inc()
}

/* RecordDBPoolStats records database connection pool statistics */
func RecordDBPoolStats(database string, openConns, idleConns, inUse int) {
	dbPoolOpenConns.WithLabelValues(database).Set(float64(openConns))
	dbPoolIdleConns.WithLabelValues(database).Set(float64(idleConns))
	dbPoolInUseConns.WithLabelValues(database).Set(float64(inUse))
}

/* RecordFilteredQuery records a filtered query execution */
func RecordFilteredQuery(pivot string, duration time.Duration) {
	filteredQueryDuration.WithLabelValues(pivot).Observe(duration.Seconds())
}

/* Handler returns the Prometheus metrics handler */
func Handler() http.Handler {
	return promhttp.Handler()
}
