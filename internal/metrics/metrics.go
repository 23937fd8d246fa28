// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package metrics declares the Prometheus instrumentation for Pawmap.
//
// Metrics cover the map SDK load path (single-flight cache, circuit breaker),
// map session lifecycle, the marker pipeline, the fallback renderer, the
// websocket bridge and the HTTP API. They are registered on the default
// registry through promauto and exposed at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Map SDK Load Metrics
	SDKLoadRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_sdk_load_requests_total",
			Help: "Total number of SDK load requests by how they were satisfied",
		},
		[]string{"outcome"}, // "cached", "shared", "initiated", "rejected"
	)

	SDKFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_sdk_fetches_total",
			Help: "Total number of underlying SDK fetches by result",
		},
		[]string{"result"}, // "success", "failure", "breaker_open"
	)

	SDKFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pawmap_sdk_fetch_duration_seconds",
			Help:    "Duration of underlying SDK fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pawmap_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Map Session Metrics
	MapErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_map_errors_total",
			Help: "Total number of classified map engine errors",
		},
		[]string{"kind", "severity"},
	)

	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_session_transitions_total",
			Help: "Total number of map session state transitions by target state",
		},
		[]string{"state"},
	)

	MarkersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_markers_created_total",
			Help: "Total number of live marker instances created",
		},
		[]string{"category"},
	)

	MarkersDisposed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pawmap_markers_disposed_total",
			Help: "Total number of live marker instances disposed",
		},
	)

	// Marker Pipeline Metrics
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_records_dropped_total",
			Help: "Total number of place records discarded during validation",
		},
		[]string{"category", "reason"},
	)

	MarkersBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_markers_built_total",
			Help: "Total number of markers produced by the transform pipeline",
		},
		[]string{"category"},
	)

	// Fallback Renderer Metrics
	FallbackRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_fallback_renders_total",
			Help: "Total number of fallback renders by mode",
		},
		[]string{"mode"}, // "static", "plot", "notice"
	)

	// Bridge Metrics
	BridgePages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pawmap_bridge_pages",
			Help: "Current number of connected map pages",
		},
	)

	BridgeMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_bridge_messages_total",
			Help: "Total number of bridge messages by direction and type",
		},
		[]string{"direction", "type"},
	)

	// Places Metrics
	PlacesLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pawmap_places_loaded",
			Help: "Number of raw place records loaded per category",
		},
		[]string{"category"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pawmap_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pawmap_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSDKFetch records one underlying SDK fetch.
func RecordSDKFetch(result string, duration time.Duration) {
	SDKFetches.WithLabelValues(result).Inc()
	if duration > 0 {
		SDKFetchDuration.Observe(duration.Seconds())
	}
}

// RecordMapError counts a classified map engine error.
func RecordMapError(kind, severity string) {
	MapErrors.WithLabelValues(kind, severity).Inc()
}

// RecordDroppedRecord counts a place record rejected by validation.
func RecordDroppedRecord(category, reason string) {
	RecordsDropped.WithLabelValues(category, reason).Inc()
}

// RecordCacheAccess counts a hit or miss for the named cache.
func RecordCacheAccess(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordBridgeMessage counts a bridge frame. direction is "in" or "out".
func RecordBridgeMessage(direction, msgType string) {
	BridgeMessages.WithLabelValues(direction, msgType).Inc()
}
