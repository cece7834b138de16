package types

import "context"

// MessageKind identifies the intent of a broadcast message.
type MessageKind string

// Broadcast message kinds.
const (
	// KindLeadershipChanged announces that the sender wrote a new lease
	// record. Receivers should re-evaluate ownership after a short debounce.
	KindLeadershipChanged MessageKind = "leadership_changed"

	// KindClosing announces that the sender is shutting down gracefully and
	// has released its lease. Receivers may claim immediately.
	KindClosing MessageKind = "closing"
)

// Message is the payload exchanged over the broadcast bus.
type Message struct {
	Kind    MessageKind `json:"kind"`
	OwnerID string      `json:"ownerId"`
	SentAt  int64       `json:"sentAt"`
}

// BroadcastBus is an optional best-effort publish/subscribe channel for
// near-instant cross-participant signaling.
//
// The bus offers no delivery guarantee, no ordering guarantee and no
// persistence; it is purely a latency optimization over store polling. It is
// feature-detected at construction: when unavailable the participant runs in
// polling-only mode and remains fully correct, just slower to converge.
//
// Implementations:
//   - natsbus.Bus (production, core NATS pub/sub)
//   - testing MemoryBus (in-memory fake for tests)
type BroadcastBus interface {
	// Publish sends a message to all subscribers. Best effort: errors are
	// logged by the caller and never treated as fatal.
	Publish(ctx context.Context, msg Message) error

	// Subscribe registers a handler for incoming messages and returns an
	// unsubscribe function. Depending on the transport the handler may also
	// receive the participant's own publishes; callers filter by OwnerID.
	Subscribe(handler func(Message)) (func(), error)
}
