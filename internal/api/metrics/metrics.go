// Package metrics defines and registers all custom Prometheus metrics for the
// installation tracker. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "installtrack"

// ── Installation metrics ──────────────────────────────────────────────────────

// InstallationsCreatedTotal counts persisted installation records.
// Label:
//   - path: "single" (POST /api/installations) or "bulk" (POST /api/installations/bulk)
var InstallationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "installations_created_total",
		Help:      "Total number of installation records created, by request path.",
	},
	[]string{"path"},
)

// BulkRowsRejectedTotal counts rows that failed validation in rejected batches.
var BulkRowsRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_rows_rejected_total",
		Help:      "Total number of bulk import rows that failed validation.",
	},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// PartitionMigrationsTotal counts attempts to seed a per-user partition from
// the shared file.
// Label:
//   - result: "seeded" or "failed"
var PartitionMigrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partition_migrations_total",
		Help:      "Per-user partition seeding attempts from the shared file, by result.",
	},
	[]string{"result"},
)

// StoreWriteDuration measures full-file partition rewrites.
var StoreWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_write_duration_seconds",
		Help:      "Duration of a full partition file rewrite.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login requests.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
