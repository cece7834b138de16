package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNopMetrics(t *testing.T) {
	m := NewNop()

	// No-op collector must accept every call without side effects.
	m.RecordReconcile("claim", 0.01)
	m.RecordLeadershipChange(true)
	m.RecordLeadershipChange(false)
	m.RecordStoreError("get")
	m.RecordBroadcast("closing", true)
}

func TestPrometheusCollector_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "test")

	m.RecordReconcile("claim", 0.002)
	m.RecordReconcile("follower", 0.001)
	m.RecordLeadershipChange(true)
	m.RecordStoreError("set")
	m.RecordBroadcast("leadership_changed", false)

	// Second burst must not re-register collectors.
	m.RecordReconcile("renew", 0.003)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	require.True(t, names["test_participant_reconciles_total"])
	require.True(t, names["test_participant_is_leader"])
	require.True(t, names["test_store_errors_total"])
	require.True(t, names["test_bus_messages_total"])
}
