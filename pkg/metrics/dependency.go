package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DependencyMetrics records latency and failures of outbound calls
// (delivery oracle, payment gateways, completion API).
type DependencyMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewDependencyMetrics registers the outbound call metrics on the provided registerer.
func NewDependencyMetrics(reg prometheus.Registerer) *DependencyMetrics {
	if reg == nil {
		return &DependencyMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_dependency_call_duration_seconds",
		Help:    "Duration of outbound dependency calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dependency"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_dependency_call_failures_total",
		Help: "Failed outbound dependency calls.",
	}, []string{"dependency"})
	reg.MustRegister(duration, failure)
	return &DependencyMetrics{
		duration: duration,
		failure:  failure,
	}
}

// Track observes the call duration and counts a failure when err is non-nil.
func (d *DependencyMetrics) Track(dependency string, started time.Time, err error) {
	if d == nil || d.duration == nil {
		return
	}
	label := normalizeLabel(dependency)
	d.duration.WithLabelValues(label).Observe(time.Since(started).Seconds())
	if err != nil {
		d.failure.WithLabelValues(label).Inc()
	}
}
