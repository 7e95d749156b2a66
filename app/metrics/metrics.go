// Package metrics provides Prometheus metrics for rss-relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsTotal counts evaluated items by source and outcome.
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "items_total",
			Help:      "Total number of evaluated feed items",
		},
		[]string{"source", "outcome"},
	)

	// DeliveriesTotal counts per-recipient send attempts.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "deliveries_total",
			Help:      "Total number of per-recipient deliveries",
		},
		[]string{"status"},
	)

	// AlertsTotal counts admin alerts.
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "alerts_total",
			Help:      "Total number of administrative alerts",
		},
		[]string{"status"},
	)

	// RunDuration measures pipeline run duration.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	// PersistErrorsTotal counts dedup store and reject log write failures.
	PersistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "persist_errors_total",
			Help:      "Total number of persistence failures",
		},
	)
)

// RecordItem records the outcome of one evaluated item.
func RecordItem(source, outcome string) {
	ItemsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordDelivery records one recipient delivery.
func RecordDelivery(status string) {
	DeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordAlert records one admin alert.
func RecordAlert(status string) {
	AlertsTotal.WithLabelValues(status).Inc()
}

// RecordRun records a finished pipeline run.
func RecordRun(duration float64) {
	RunDuration.Observe(duration)
}

// RecordPersistError records a persistence failure.
func RecordPersistError() {
	PersistErrorsTotal.Inc()
}
