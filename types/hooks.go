package types

import "context"

// Hooks defines callbacks for leadership events.
//
// All hooks are optional and called synchronously from the reconciliation
// pass, so the pass's outcome and the callback are always ordered. A slow
// hook delays the next reconciliation; keep work in hooks short and hand
// anything long-running off to a goroutine.
//
// Callback semantics:
//   - OnBecomeLeader and OnLoseLeadership are edge-triggered: they fire
//     exactly once per false→true (respectively true→false) transition of
//     the leadership flag. Renewals while already leader fire neither.
//   - OnOtherDetected is level-triggered: it fires once per reconciliation
//     pass that resolves to follower with a different live owner.
//
// Hook errors are logged but never fail participant operations. Hooks should
// complete quickly and respect context cancellation.
type Hooks struct {
	// OnBecomeLeader is called when this participant acquires the lease.
	OnBecomeLeader func(ctx context.Context) error

	// OnLoseLeadership is called when this participant loses the lease.
	OnLoseLeadership func(ctx context.Context) error

	// OnOtherDetected is called on each follower reconciliation pass that
	// observes a live record owned by another participant.
	OnOtherDetected func(ctx context.Context, ownerID string) error
}
