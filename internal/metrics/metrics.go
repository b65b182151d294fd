// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homeswift"

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts handled requests by route pattern, method and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration observes request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// RequestsCreated counts persisted bookings.
var RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "lifecycle",
	Name:      "requests_created_total",
	Help:      "Total service requests created.",
})

// StatusTransitions counts committed status changes.
var StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "lifecycle",
	Name:      "status_transitions_total",
	Help:      "Total service request status transitions.",
}, []string{"from", "to"})

// ─── Notifications ──────────────────────────────────────────────────────────

// Notifications counts send attempts by message kind and result (sent, failed).
var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notify",
	Name:      "notifications_total",
	Help:      "Total notification send attempts.",
}, []string{"kind", "result"})

// ReminderSweepSent counts reminders marked as sent.
var ReminderSweepSent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notify",
	Name:      "reminder_sweep_sent_total",
	Help:      "Total reminders sent by the sweep.",
})

// Result labels for Notifications
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// NotificationResult maps a send outcome to its label
func NotificationResult(ok bool) string {
	if ok {
		return ResultSent
	}
	return ResultFailed
}
