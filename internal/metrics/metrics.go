// Package metrics exposes Prometheus counters for the reminder engine.
// The /metrics endpoint serves these via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersAttempted counts reminders the engine considered sending,
	// labeled by kind ("recurring" or "split").
	RemindersAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paywise",
		Subsystem: "reminders",
		Name:      "attempted_total",
		Help:      "Number of reminders considered for delivery.",
	}, []string{"kind"})

	// RemindersSent counts reminders delivered successfully.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paywise",
		Subsystem: "reminders",
		Name:      "sent_total",
		Help:      "Number of reminders delivered successfully.",
	}, []string{"kind"})

	// RemindersFailed counts reminders that could not be delivered.
	RemindersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paywise",
		Subsystem: "reminders",
		Name:      "failed_total",
		Help:      "Number of reminders that failed to deliver.",
	}, []string{"kind"})

	// RemindersSkipped counts reminders skipped because they were already
	// sent for the same due date.
	RemindersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paywise",
		Subsystem: "reminders",
		Name:      "skipped_total",
		Help:      "Number of reminders skipped by deduplication.",
	}, []string{"kind"})
)
