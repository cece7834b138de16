// Package natsbus implements the broadcast bus over core NATS publish/subscribe.
//
// Core NATS gives exactly the semantics the protocol asks of its bus: at-most-
// once delivery, no ordering guarantee, no persistence. The bus is a latency
// optimization; participants stay correct on polling alone when it is absent.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Lomet/soloist/types"
)

// Bus is a BroadcastBus backed by a core NATS subject.
type Bus struct {
	nc      *nats.Conn
	subject string
}

// Compile-time assertion that Bus implements BroadcastBus.
var _ types.BroadcastBus = (*Bus)(nil)

// New creates a broadcast bus for the given namespace.
//
// This is the feature-detection point: when nc is nil or the connection is
// closed, New returns an error and the caller runs in polling-only mode.
//
// Parameters:
//   - nc: NATS connection
//   - namespace: Election namespace, used to derive the subject
//
// Returns:
//   - *Bus: New bus instance
//   - error: When no usable connection is available
func New(nc *nats.Conn, namespace string) (*Bus, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if nc.IsClosed() {
		return nil, errors.New("nats connection is closed")
	}

	return &Bus{
		nc:      nc,
		subject: fmt.Sprintf("soloist.lease.%s", namespace),
	}, nil
}

// Publish sends a message to all subscribers of the namespace subject.
//
// Best effort: delivery is not guaranteed and the caller treats errors as
// non-fatal.
func (b *Bus) Publish(_ context.Context, msg types.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}

	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("failed to publish broadcast message: %w", err)
	}

	return nil
}

// Subscribe registers a handler for messages on the namespace subject.
//
// NATS delivers a participant's own publishes back to it; callers filter by
// Message.OwnerID. Undecodable payloads are dropped silently, matching the
// bus's no-guarantee contract.
func (b *Bus) Subscribe(handler func(types.Message)) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		var msg types.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			return
		}

		handler(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to broadcast subject: %w", err)
	}

	unsubscribe := func() {
		_ = sub.Unsubscribe()
	}

	return unsubscribe, nil
}
