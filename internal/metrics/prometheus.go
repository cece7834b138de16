package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lomet/soloist/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metric registration is lazy: collectors register on first use, so creating
// the collector never panics on duplicate registration during construction.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	reconciles        *prometheus.CounterVec
	reconcileLatency  prometheus.Histogram
	leadershipChanges *prometheus.CounterVec
	leadershipStatus  prometheus.Gauge
	storeErrors       *prometheus.CounterVec
	broadcasts        *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "soloist" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "soloist"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.reconciles = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "participant",
			Name:      "reconciles_total",
			Help:      "Total reconciliation passes by outcome (claim,renew,follower,store_error).",
		}, []string{"outcome"})

		p.reconcileLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "participant",
			Name:      "reconcile_latency_seconds",
			Help:      "Latency of reconciliation passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		})

		p.leadershipChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "participant",
			Name:      "leadership_changes_total",
			Help:      "Total edge transitions of the leadership flag by direction (acquired,lost).",
		}, []string{"direction"})

		p.leadershipStatus = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "participant",
			Name:      "is_leader",
			Help:      "Whether this participant currently believes it is the leader (1=yes,0=no).",
		})

		p.storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total lease store operation failures by operation (get,set,delete).",
		}, []string{"op"})

		p.broadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "messages_total",
			Help:      "Total broadcast bus messages by kind and direction.",
		}, []string{"kind", "direction"})

		p.reg.MustRegister(p.reconciles)
		p.reg.MustRegister(p.reconcileLatency)
		p.reg.MustRegister(p.leadershipChanges)
		p.reg.MustRegister(p.leadershipStatus)
		p.reg.MustRegister(p.storeErrors)
		p.reg.MustRegister(p.broadcasts)
	})
}

// RecordReconcile records one reconciliation pass with its outcome and latency.
func (p *PrometheusCollector) RecordReconcile(outcome string, seconds float64) {
	p.ensureRegistered()
	p.reconciles.WithLabelValues(outcome).Inc()
	p.reconcileLatency.Observe(seconds)
}

// RecordLeadershipChange records an edge transition of the leadership flag.
func (p *PrometheusCollector) RecordLeadershipChange(leader bool) {
	p.ensureRegistered()
	if leader {
		p.leadershipChanges.WithLabelValues("acquired").Inc()
		p.leadershipStatus.Set(1)
	} else {
		p.leadershipChanges.WithLabelValues("lost").Inc()
		p.leadershipStatus.Set(0)
	}
}

// RecordStoreError records a failed store operation.
func (p *PrometheusCollector) RecordStoreError(op string) {
	p.ensureRegistered()
	p.storeErrors.WithLabelValues(op).Inc()
}

// RecordBroadcast records a broadcast message, sent or received.
func (p *PrometheusCollector) RecordBroadcast(kind string, sent bool) {
	p.ensureRegistered()
	direction := "received"
	if sent {
		direction = "sent"
	}
	p.broadcasts.WithLabelValues(kind, direction).Inc()
}
