package lease

import (
	"time"

	"github.com/Lomet/soloist/types"
)

// Action is the outcome of evaluating the acquisition rule.
type Action int

const (
	// ActionClaim writes a fresh record asserting the caller as owner.
	// Chosen when no usable record exists or the prior owner is presumed dead.
	ActionClaim Action = iota

	// ActionRenew is a claim performed by the current owner to refresh its
	// heartbeat timestamp. The store write is identical to ActionClaim;
	// the distinction only matters for observability.
	ActionRenew

	// ActionObserve leaves the record untouched: another live owner exists
	// and the caller remains (or becomes) a follower.
	ActionObserve
)

// String returns the action name for logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionClaim:
		return "claim"
	case ActionRenew:
		return "renew"
	case ActionObserve:
		return "follower"
	default:
		return "unknown"
	}
}

// Decide evaluates the lease acquisition rule against the current record.
//
// The rule is evaluated strictly in this order:
//  1. Record absent (nil, which includes unparsable content) → claim.
//  2. Record older than timeout → prior owner presumed dead → claim.
//  3. Record owned by caller → renew.
//  4. Otherwise → another live owner exists → observe.
//
// Staleness is checked before self-ownership, so an owner that failed to
// renew in time re-claims rather than renews; the write is the same either
// way.
//
// Decide is pure: it performs no I/O and no clock reads, which is what makes
// the race semantics of the surrounding protocol testable. Because the store
// offers no compare-and-set, two participants may both Decide "claim" against
// the same absent or expired record and both write; convergence to a single
// owner happens on the loser's next pass, once it observes the other id with
// a fresher timestamp.
//
// Parameters:
//   - rec: Current record, nil when absent or unparsable
//   - callerID: Identity of the evaluating participant
//   - now: Current wall-clock time
//   - timeout: Staleness threshold
//
// Returns:
//   - Action: The action the caller must take
func Decide(rec *types.LeaseRecord, callerID string, now time.Time, timeout time.Duration) Action {
	if rec == nil {
		return ActionClaim
	}

	if rec.Stale(now, timeout) {
		return ActionClaim
	}

	if rec.OwnedBy(callerID) {
		return ActionRenew
	}

	return ActionObserve
}
