// Package metrics defines and registers all custom Prometheus metrics for the
// users API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; the echoprometheus handler mounted at /metrics
// exposes them together with the HTTP request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// Result label values shared by the counters below.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts accounts created.
// Label:
//   - subscription: the tier the account was created with
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created, by subscription tier.",
	},
	[]string{"subscription"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "not_verified"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// VerificationsTotal counts redeemed verification tokens.
var VerificationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of email addresses verified.",
	},
)

// VerificationMailsTotal counts verification emails handed to the mail transport.
// Labels:
//   - kind: "signup" or "resend"
//   - result: "success" or "failure"
var VerificationMailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_mails_total",
		Help:      "Total number of verification emails sent, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Avatar metrics ────────────────────────────────────────────────────────────

// AvatarUpdatesTotal counts avatar uploads.
// Label:
//   - result: "success" or "failure"
var AvatarUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_updates_total",
		Help:      "Total number of avatar uploads processed, by result.",
	},
	[]string{"result"},
)

// AvatarProcessingDuration measures resize + store + persist for one upload.
var AvatarProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "avatar_processing_duration_seconds",
		Help:      "Duration of avatar processing from staged upload to persisted URL.",
		Buckets:   prometheus.DefBuckets,
	},
)

// StagedFilesSweptTotal counts stale upload files removed by the sweeper.
var StagedFilesSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "staged_files_swept_total",
		Help:      "Total number of stale staged upload files removed.",
	},
)
