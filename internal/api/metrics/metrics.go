// Package metrics defines and registers the custom Prometheus metrics of the
// repair-shop API. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mechshop"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - role: "mechanic" or "customer"
//   - result: "success", "invalid_credentials", "missing_fields" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// GuardRejectionsTotal counts requests rejected by the access guard.
// Labels:
//   - role: the role the guard expected
//   - reason: "header", "malformed", "bad_signature", "expired", "wrong_role",
//     "payload", "not_found" or "error"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of requests rejected by the access guard.",
	},
	[]string{"role", "reason"},
)

// ── Association metrics ───────────────────────────────────────────────────────

// AssociationMutationsTotal counts ticket membership mutations.
// Labels:
//   - kind: "mechanic" or "part"
//   - action: "add", "remove" or "bulk_edit"
//   - changed: "true" when the set changed, "false" for an idempotent no-op
var AssociationMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "association_mutations_total",
		Help:      "Total number of ticket membership mutations.",
	},
	[]string{"kind", "action", "changed"},
)

// RankingCacheTotal counts ranking cache lookups.
// Label:
//   - result: "hit" or "miss"
var RankingCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ranking_cache_total",
		Help:      "Total number of mechanic ranking cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityQueueDepth tracks pending activity in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of ticket activity events pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityPublishedTotal counts activity delivery outcomes.
// Label:
//   - result: "ok", "error" or "dropped"
var ActivityPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_published_total",
		Help:      "Total number of ticket activity events handled by the dispatcher, by result.",
	},
	[]string{"result"},
)

// ActivityPublishDuration measures the time spent delivering one event.
var ActivityPublishDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_publish_duration_seconds",
		Help:      "Duration of a single ticket activity delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)
