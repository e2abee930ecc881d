package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics counts authorization-gate decisions by requested role and outcome.
type AuthMetrics struct {
	decisions *prometheus.CounterVec
}

// NewAuthMetrics registers the gate counters on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_auth_decisions_total",
		Help: "Authorization gate decisions partitioned by requested role and outcome.",
	}, []string{"role", "outcome"})
	reg.MustRegister(decisions)
	return &AuthMetrics{decisions: decisions}
}

// Observe records one decision. outcome is "admitted" or an error code.
func (m *AuthMetrics) Observe(role, outcome string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(role), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
