package types

// MetricsCollector receives operational metrics from the participant.
//
// Implementations must be safe for concurrent use. A no-op implementation is
// used when no collector is configured, so callers never need nil checks.
type MetricsCollector interface {
	// RecordReconcile records one reconciliation pass.
	// outcome is one of "claim", "renew", "follower" or "store_error".
	RecordReconcile(outcome string, seconds float64)

	// RecordLeadershipChange records an edge transition of the leadership flag.
	RecordLeadershipChange(leader bool)

	// RecordStoreError records a failed store operation ("get", "set", "delete").
	RecordStoreError(op string)

	// RecordBroadcast records a broadcast bus message, sent or received.
	RecordBroadcast(kind string, sent bool)
}
