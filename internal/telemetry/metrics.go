/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes prometheus metrics for the HTTP surface and the
// allocation lifecycle.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_api_requests_total",
		Help: "Total number of API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cadence_api_request_duration_seconds",
		Help:    "API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections tracks in-flight requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cadence_api_active_connections",
		Help: "Number of in-flight API requests.",
	})

	// AllocationBatchesTotal counts allocation batch runs.
	AllocationBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadence_allocation_batches_total",
		Help: "Total number of allocation batches run.",
	})

	// MeetingsCreatedTotal counts recurring series created.
	MeetingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadence_meetings_created_total",
		Help: "Total number of recurring meeting series created.",
	})

	// AllocationNoSlotTotal counts names that could not be placed.
	AllocationNoSlotTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadence_allocation_no_slot_total",
		Help: "Total number of names left without a free slot.",
	})

	// AllocationErrorsTotal counts per-item materialization failures.
	AllocationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadence_allocation_errors_total",
		Help: "Total number of per-name errors during allocation batches.",
	})

	// DatabaseQueryDuration observes gorm operation latency by operation and table.
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cadence_database_query_duration_seconds",
		Help:    "Database query duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseErrorsTotal counts database operation errors.
	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_database_errors_total",
		Help: "Total number of database errors.",
	}, []string{"operation", "type"})

	// DatabaseConnectionsActive tracks open connections in the pool.
	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cadence_database_connections_active",
		Help: "Number of open database connections.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
