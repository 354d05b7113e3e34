package metrics

import "github.com/prometheus/client_golang/prometheus"

// Payment provider and billing Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostreamly",
			Name:      "provider_requests_total",
			Help:      "Total number of payment provider requests",
		},
		[]string{"operation", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hostreamly",
			Name:      "provider_request_duration_seconds",
			Help:      "Payment provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostreamly",
			Name:      "provider_errors_total",
			Help:      "Total payment provider errors",
		},
		[]string{"operation", "error_type"}, // "network" / "api" / "decode"
	)

	CredentialTestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostreamly",
			Name:      "credential_tests_total",
			Help:      "Provider connectivity test outcomes",
		},
		[]string{"result"}, // "success" / "failure"
	)

	PaymentSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostreamly",
			Name:      "payment_sessions_total",
			Help:      "Overage payment sessions initiated",
		},
		[]string{"result"}, // "created" / "no_overage" / "error"
	)

	UsageThresholdTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostreamly",
			Name:      "usage_threshold_crossings_total",
			Help:      "Usage threshold crossings by resource, counted once per state change",
		},
		[]string{"resource", "kind"}, // kind: "approaching" / "exceeded"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider and billing metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderErrorsTotal)
	prometheus.MustRegister(CredentialTestsTotal)
	prometheus.MustRegister(PaymentSessionsTotal)
	prometheus.MustRegister(UsageThresholdTotal)
	providerMetricsRegistered = true
}
