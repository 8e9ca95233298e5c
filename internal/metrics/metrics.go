// Package metrics defines the process-scoped payment metrics exposed at
// /metrics. Collectors are registered once at init and are side-effect only:
// they never influence control flow.
//
// Label cardinality is fixed and small:
//
//   - payment_requests_total{status}:  success | idempotent_hit
//   - payment_failures_total{reason}:  internal_error | bank_rejection | bank_timeout
//   - payment_latency_seconds{outcome}: success plus the three failure reasons
//
// Latency is observed for every terminal (non-replay) outcome, labeled by
// outcome, so failure latency is visible alongside success latency.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label values shared between the orchestrator and tests.
const (
	StatusSuccess       = "success"
	StatusIdempotentHit = "idempotent_hit"

	ReasonInternalError = "internal_error"
	ReasonBankRejection = "bank_rejection"
	ReasonBankTimeout   = "bank_timeout"
)

var (
	// PaymentRequests counts completed payment requests by status.
	PaymentRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Total payment requests received.",
		},
		[]string{"status"},
	)

	// PaymentFailures counts failed payments by failure reason.
	PaymentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_failures_total",
			Help: "Total failed payments.",
		},
		[]string{"reason"},
	)

	// PaymentLatency records pipeline latency in seconds by terminal outcome.
	// Buckets are tuned for a single bounded outbound call per request.
	PaymentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_latency_seconds",
			Help:    "Payment request latency in seconds.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.5, 1, 2},
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(PaymentRequests, PaymentFailures, PaymentLatency)
}
