// Package metrics defines every Prometheus metric EventDesk exports. Metrics
// register with the default registry at package init through promauto and are
// served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventdesk"

// HTTPRequestDuration measures page and API request latency.
// Labels:
//   - method: HTTP method
//   - area: first path segment ("admin", "client", "login", ...)
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by EventDesk.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "area", "status"},
)

// UpstreamCallsTotal counts calls to the PHP API.
// Labels:
//   - operation: API operation name (e.g. "login", "getAllEvents")
//   - outcome: "success", "refused" (status != success) or "error" (transport/decode)
var UpstreamCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_calls_total",
		Help:      "Total number of PHP API calls by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// UpstreamCallDuration measures PHP API round trips.
var UpstreamCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_call_duration_seconds",
		Help:      "Duration of PHP API calls by operation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// GuardDecisionsTotal counts role guard outcomes.
// Label:
//   - outcome: "authenticated", "login" or "role_home"
//   - reason: "ok", "absent", "corrupt", "expired", "unknown_role", "wrong_role"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of role guard evaluations by outcome and reason.",
	},
	[]string{"outcome", "reason"},
)

// OTPEventsTotal counts one-time code activity.
// Labels:
//   - flow: "signup" or "login"
//   - event: "verified", "rejected", "resent", "resend_refused"
var OTPEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_events_total",
		Help:      "Total number of OTP verifications and resends.",
	},
	[]string{"flow", "event"},
)

// SessionNotificationsTotal counts session-changed notifications published.
var SessionNotificationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_notifications_total",
		Help:      "Total number of session-changed notifications published.",
	},
)

// SessionSubscribers tracks open notification streams.
var SessionSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_subscribers",
		Help:      "Current number of open session notification streams.",
	},
)

// DBQueryDuration measures local SQLite statements.
// Label:
//   - op: statement verb and table ("select session_value", "insert ui_preference", ...)
var DBQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_query_duration_seconds",
		Help:      "Duration of local database statements.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	},
	[]string{"op"},
)
