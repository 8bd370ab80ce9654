package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace prefixes every metric name, "creditsim" by default.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the name segment between namespace and metric.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets shared by the HTTP, store
// and GC histograms. Buckets must be strictly increasing; others are ignored.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if increasing(buckets) {
			m.latencyBuckets = buckets
		}
	}
}

// WithScoreBuckets sets the credit score histogram buckets.
func WithScoreBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if increasing(buckets) {
			m.scoreBuckets = buckets
		}
	}
}

// WithMetricsEnabled turns recording on or off. Collectors are still
// registered so /healthz keeps a stable shape.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithCustomLabels attaches constant labels, such as a deployment name, to every metric.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.customLabels = labels
		}
	}
}

// WithPrometheusRegistry sets the registerer metrics are created on.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func increasing(b []float64) bool {
	if len(b) == 0 {
		return false
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return false
		}
	}
	return true
}
