package testing

import (
	"context"
	"sync"

	"github.com/Lomet/soloist/types"
)

// MemoryBus is an in-process broadcast bus for tests.
//
// Delivery is synchronous and loops back to the publisher, matching the
// production transport's behavior, so subscriber-side OwnerID filtering gets
// exercised. An injectable publish error simulates an unavailable transport.
type MemoryBus struct {
	mu       sync.Mutex
	handlers map[int]func(types.Message)
	nextID   int
	pubErr   error
	sent     []types.Message
}

var _ types.BroadcastBus = (*MemoryBus)(nil)

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[int]func(types.Message))}
}

// FailPublishes makes subsequent Publish calls return err without delivering.
// Pass nil to restore.
func (b *MemoryBus) FailPublishes(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pubErr = err
}

// Sent returns every message published so far, in order.
func (b *MemoryBus) Sent() []types.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]types.Message(nil), b.sent...)
}

// Publish implements types.BroadcastBus.
func (b *MemoryBus) Publish(_ context.Context, msg types.Message) error {
	b.mu.Lock()
	if b.pubErr != nil {
		err := b.pubErr
		b.mu.Unlock()

		return err
	}
	b.sent = append(b.sent, msg)
	handlers := make([]func(types.Message), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}

	return nil
}

// Subscribe implements types.BroadcastBus.
func (b *MemoryBus) Subscribe(handler func(types.Message)) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}

	return unsubscribe, nil
}
