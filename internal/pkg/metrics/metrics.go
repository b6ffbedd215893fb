// Package metrics defines and registers all custom Prometheus metrics for the
// dispatch API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto, and are exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register/login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// AuthzDeniedTotal counts requests rejected by the authorization policy.
// Label:
//   - action: the denied action (e.g. "createJob")
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of actions denied by the authorization policy.",
	},
	[]string{"action"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"backend"},
)

// ── Job metrics ───────────────────────────────────────────────────────────────

// JobsCreatedTotal counts newly created dispatch jobs.
var JobsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of dispatch jobs created.",
	},
)

// JobsDeletedTotal counts deleted dispatch jobs.
var JobsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_deleted_total",
		Help:      "Total number of dispatch jobs deleted.",
	},
)

// JobStatusTransitionsTotal counts applied status transitions.
// Labels:
//   - from, to: job statuses (e.g. "Scheduled" -> "In Progress")
var JobStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_status_transitions_total",
		Help:      "Total number of job status transitions applied.",
	},
	[]string{"from", "to"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsProcessedTotal counts audit events persisted successfully.
var AuditEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_processed_total",
		Help:      "Total number of job audit events persisted.",
	},
	[]string{"type"},
)

// AuditEventsErrorsTotal counts audit events that failed to persist.
var AuditEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of job audit events that failed processing.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures how long a single audit event takes to persist.
var AuditProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of audit event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
