// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locflow_backend_request_total",
			Help: "Total number of backend HTTP request attempts",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locflow_backend_request_duration_seconds",
			Help:    "Duration of backend HTTP requests per attempt",
			Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 12),
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locflow_backend_request_errors_total",
			Help: "Number of backend request attempts that failed",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locflow_backend_request_retries_total",
			Help: "Number of backend request retries performed",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	pollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "locflow_backend_localization_poll_attempts",
			Help:    "Status polls needed until a localization job finished or gave up",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
)

func statusClass(err error, status int) string {
	if err != nil {
		return "error"
	}
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status > 0:
		return "1xx"
	}
	return "unknown"
}

func recordAttemptMetrics(method, endpoint string, status int, duration time.Duration, err error, retry bool) {
	class := statusClass(err, status)
	requestTotal.WithLabelValues(method, endpoint, class).Inc()
	requestDuration.WithLabelValues(method, endpoint, class).Observe(duration.Seconds())
	if class != "2xx" {
		requestErrors.WithLabelValues(method, endpoint, class).Inc()
	}
	if retry {
		requestRetries.WithLabelValues(method, endpoint, class).Inc()
	}
}
