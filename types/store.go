package types

import "context"

// LeaseStore is the durable shared key-value store holding at most one lease
// record per namespace.
//
// The store is explicitly NOT assumed to be atomic: a read-then-write by two
// participants can interleave. The election protocol is built around this
// limitation and provides eventual single-ownership convergence rather than
// strict mutual exclusion. Implementations must not paper over this by adding
// compare-and-set semantics behind the interface; correctness rests on the
// timeout and owner-id comparison in the decision rule.
//
// All operations may fail (store unavailable, quota exceeded). Failures are
// handled at the call site with a fail-safe-to-leader policy and never
// propagated as a crash.
//
// Implementations:
//   - natskv.Store (production, NATS JetStream KV)
//   - testing MemoryStore (deterministic in-memory fake for tests)
type LeaseStore interface {
	// Get reads the lease record for the namespace.
	//
	// Returns (nil, nil) when no record exists or the stored content is
	// unparsable; both are "no known owner" to the protocol.
	Get(ctx context.Context, namespace string) (*LeaseRecord, error)

	// Set writes the lease record for the namespace, overwriting any
	// existing record unconditionally.
	Set(ctx context.Context, namespace string, rec LeaseRecord) error

	// Delete removes the lease record for the namespace. Deleting an
	// absent record is not an error.
	Delete(ctx context.Context, namespace string) error
}

// RecordWatcher delivers change notifications for a namespace key.
//
// Notifications fire only for writes originated by other participants;
// a store handle must suppress events for its own writes. Stores that cannot
// watch simply don't implement this interface, and the participant degrades
// to pure polling.
type RecordWatcher interface {
	// Watch subscribes to foreign modifications of the namespace key.
	// The subscription lives until Stop is called or ctx is cancelled.
	Watch(ctx context.Context, namespace string) (Subscription, error)
}

// Subscription is a live change-notification stream.
type Subscription interface {
	// Changes returns the notification channel. Events are coalesced;
	// receivers must treat each event as "something changed, re-read".
	// The channel is closed when the subscription ends.
	Changes() <-chan struct{}

	// Stop ends the subscription and releases its resources.
	Stop() error
}
