// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package metrics exposes Prometheus instrumentation for sync runs,
// scraping, reconciliation, the circuit breaker, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_sync_runs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"result"}, // "success", "cancelled", "auth_failed", "scrape_failed", "error"
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelsync_sync_duration_seconds",
			Help:    "Wall-clock duration of complete sync runs",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	SyncRecordsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelsync_sync_records_added_total",
			Help: "Viewing records created by sync runs",
		},
	)

	SyncRecordsExisting = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelsync_sync_records_existing_total",
			Help: "Scraped entries that matched an existing viewing record",
		},
	)

	SyncInProgressRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelsync_sync_in_progress_rejections_total",
			Help: "Sync requests rejected because a run was already active",
		},
	)

	// Scrape Metrics
	ScrapePagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_scrape_pages_total",
			Help: "History pages fetched, by outcome",
		},
		[]string{"result"}, // "ok", "empty", "error"
	)

	ScrapeEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelsync_scrape_entries_total",
			Help: "History entries successfully parsed",
		},
	)

	ScrapeEntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelsync_scrape_entries_skipped_total",
			Help: "History entries skipped due to parse failures",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// API Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelsync_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelsync_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelsync_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// ObserveDBQuery records one database query.
func ObserveDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
