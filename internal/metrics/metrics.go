// Package metrics defines and registers the custom Prometheus metrics of the
// wellness API. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wellness"

// ── Store metrics ─────────────────────────────────────────────────────────────

// ReadingsSavedTotal counts saved readings.
// Label:
//   - type: "tarot", "horoscope" or "birthchart"
var ReadingsSavedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_saved_total",
		Help:      "Total number of readings saved, by reading type.",
	},
	[]string{"type"},
)

// AppointmentsCreatedTotal counts bookings, excluding idempotent replays.
// Label:
//   - session_type: "video", "phone" or "in_person"
var AppointmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointments_created_total",
		Help:      "Total number of appointments created, by session type.",
	},
	[]string{"session_type"},
)

// AppointmentTransitionsTotal counts accepted status changes.
var AppointmentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_transitions_total",
		Help:      "Total number of appointment status transitions, by source and target status.",
	},
	[]string{"from", "to"},
)

// MutationRollbacksTotal counts optimistic changes reverted after a failed
// backend write.
var MutationRollbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_rollbacks_total",
		Help:      "Total number of optimistic mutations rolled back, by operation.",
	},
	[]string{"operation"},
)

var BackendFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_failures_total",
		Help:      "Total number of failed backend calls, by operation.",
	},
	[]string{"operation"},
)

// ── Write queue metrics ───────────────────────────────────────────────────────

// WriteQueueDepth tracks the writes waiting in each ordered write lane.
// Label:
//   - lane: numeric lane index (e.g. "0", "1", …)
var WriteQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "write_queue_depth",
		Help:      "Current number of backend writes pending in each write lane.",
	},
	[]string{"lane"},
)

// WriteDuration measures backend write latency as seen by the write lanes.
// Label:
//   - operation: "put", "update" or "remove"
var WriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_write_duration_seconds",
		Help:      "Duration of backend writes executed by the write lanes.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)
