// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/Lomet/soloist/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used as the default when no collector is
// configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordReconcile discards the reconciliation metric.
func (n *NopMetrics) RecordReconcile(_ string, _ float64) {}

// RecordLeadershipChange discards the leadership transition metric.
func (n *NopMetrics) RecordLeadershipChange(_ bool) {}

// RecordStoreError discards the store error metric.
func (n *NopMetrics) RecordStoreError(_ string) {}

// RecordBroadcast discards the broadcast metric.
func (n *NopMetrics) RecordBroadcast(_ string, _ bool) {}
