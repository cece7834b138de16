package soloist

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lomet/soloist/internal/metrics"
)

// NewPrometheusMetrics creates a MetricsCollector that registers and updates
// Prometheus metrics for election activity: reconciliation counts and
// latency, leadership transitions, current leadership status, store errors
// and broadcast traffic.
//
// Parameters:
//   - reg: Registerer for the metrics; nil uses prometheus.DefaultRegisterer
//   - namespace: Prometheus metric namespace; empty uses "soloist"
//
// Returns:
//   - MetricsCollector: Collector to pass via WithMetrics
//
// Example:
//
//	p, err := soloist.NewParticipant(&cfg, store,
//	    soloist.WithMetrics(soloist.NewPrometheusMetrics(nil, "myapp")),
//	)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
