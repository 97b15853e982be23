// Package metrics exposes Prometheus counters and gauges for the EPP front
// end and the transfer sweeper. Collectors live behind a nil-safe interface so
// callers can pass a nil Metrics value when the metrics listener is
// disabled, at zero runtime cost.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registryOnce sync.Once
	registry     *prometheus.Registry
	enabled      bool
)

// InitRegistry creates the process-wide Prometheus registry. Must be called
// before NewEPPMetrics when metrics are enabled; later calls return the
// same registry.
func InitRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		enabled = true
	})
	return registry
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
