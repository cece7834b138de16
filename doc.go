// Package soloist provides lease-based single-owner election over a shared
// key-value store.
//
// Soloist elects exactly one active owner among cooperating participants that
// share a durable store: one context performs a duplicated-cost activity (a
// connection, a poller, a background sync) while the others stand by and take
// over when the owner disappears. The shared store does not need atomic
// compare-and-swap; correctness comes from timestamped leases, staleness
// timeouts, and eventual convergence rather than locking.
//
// # Quick Start
//
// Basic usage with a NATS-backed store and bus:
//
//	import (
//	    "github.com/Lomet/soloist"
//	    "github.com/Lomet/soloist/natsbus"
//	    "github.com/Lomet/soloist/natskv"
//	)
//
//	store, err := natskv.NewFromConn(ctx, nc, natskv.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bus, err := natsbus.New(nc, "my-app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := soloist.NewParticipant(&soloist.Config{Namespace: "my-app"}, store,
//	    soloist.WithBus(bus),
//	    soloist.WithHooks(&soloist.Hooks{
//	        OnBecomeLeader: func(ctx context.Context) error {
//	            // Start the exclusive activity
//	            return nil
//	        },
//	        OnLoseLeadership: func(ctx context.Context) error {
//	            // Stop the exclusive activity
//	            return nil
//	        },
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close(context.Background())
//
// # Key Features
//
//   - No Atomic Store Required: Works over plain get/set/delete; no CAS,
//     no transactions, no server-side TTL
//   - Edge-Triggered Callbacks: OnBecomeLeader and OnLoseLeadership fire
//     exactly once per transition
//   - Trigger Fan-In: Scheduler ticks, store change events and broadcast
//     messages all converge on one debounced reconciliation path
//   - Graceful Handover: A closing leader deletes its lease and broadcasts
//     so a follower takes over without waiting out the timeout
//   - Fail-Safe To Leader: Store errors resolve toward claiming, never
//     toward a permanently leaderless system
//
// # Consistency Model
//
// Because reads and writes to the store are not atomic, two participants can
// claim an absent or expired lease in the same tick and both briefly act as
// leader. The loser observes the foreign fresher record on its next
// reconciliation and steps down, so ownership converges within one Interval.
// Soloist guarantees eventual convergence to a single owner, not
// instantaneous mutual exclusion; design the exclusive activity to tolerate
// a short overlap.
//
// # Reconciliation
//
// Every participant periodically runs the same pass: read the record, then
// claim when it is absent, malformed or stale, renew when self-owned, or
// stand by when another owner is live. The periodic tick doubles as the
// leader's heartbeat. Store change events and broadcast messages trigger
// additional passes through a short debounce window so bursts coalesce into
// a single evaluation.
//
// # Storage Backends
//
// Any store implementing types.LeaseStore works. The natskv package provides
// a NATS JetStream key-value backend that also implements types.RecordWatcher
// for push-based change events; the natsbus package provides the matching
// broadcast bus over core NATS. The testing package contains an in-memory
// store and bus for tests.
package soloist
