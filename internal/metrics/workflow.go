// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locflow_workflow_step_transitions_total",
		Help: "Workflow step changes by source and target step",
	}, []string{"from", "to"})

	workflowErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locflow_workflow_errors_total",
		Help: "Classified workflow failures by operation and kind",
	}, []string{"operation", "kind"})

	submitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locflow_workflow_submit_duration_seconds",
		Help:    "Duration of the upload-to-analysis submission",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"strategy", "result"})

	campaignsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locflow_campaign_records_total",
		Help: "Campaign records produced by source (backend or fallback)",
	}, []string{"source"})

	progressTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locflow_progress_ticks_total",
		Help: "Localization progress ticks applied",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locflow_sessions_active",
		Help: "Workflow sessions currently held in the registry",
	})

	sessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locflow_sessions_expired_total",
		Help: "Sessions removed by the idle sweeper",
	})
)

// RecordStepTransition counts a step change.
func RecordStepTransition(from, to string) {
	stepTransitions.WithLabelValues(from, to).Inc()
}

// RecordWorkflowError counts a classified failure.
func RecordWorkflowError(operation, kind string) {
	workflowErrors.WithLabelValues(operation, kind).Inc()
}

// ObserveSubmit records one submission; result is "ok" or an error kind.
func ObserveSubmit(strategy, result string, d time.Duration) {
	submitDuration.WithLabelValues(strategy, result).Observe(d.Seconds())
}

// AddCampaignRecords counts n produced records.
func AddCampaignRecords(source string, n int) {
	campaignsGenerated.WithLabelValues(source).Add(float64(n))
}

// IncProgressTick counts one applied tick.
func IncProgressTick() {
	progressTicks.Inc()
}

// SetActiveSessions publishes the registry size.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// IncSessionsExpired counts one idle expiry.
func IncSessionsExpired() {
	sessionsExpired.Inc()
}
