package testing

import (
	"context"
	"sync"

	"github.com/Lomet/soloist/types"
)

// MemoryStore is a deterministic in-memory lease store for tests.
//
// One MemoryStore models the shared durable store; each participant gets its
// own handle via Handle(). Handles implement both types.LeaseStore and
// types.RecordWatcher, with the same self-origin suppression a real backend
// provides: a handle's watch subscriptions never fire for that handle's own
// writes.
//
// The store mimics the production consistency model exactly: plain read and
// overwrite with no compare-and-set, so tests can interleave two handles'
// read-then-write windows to exercise claim races.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	subs []*memorySubscription
}

// NewMemoryStore creates an empty shared store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Handle returns a participant-scoped view of the store. Each participant
// under test should use its own handle so origin filtering behaves like a
// real backend.
func (s *MemoryStore) Handle() *MemoryHandle {
	return &MemoryHandle{store: s}
}

// SetRaw stores raw bytes for a namespace, bypassing record encoding.
// Useful for injecting malformed or partially written content. All watch
// subscriptions are notified, as for an external writer.
func (s *MemoryStore) SetRaw(namespace string, raw []byte) {
	s.mu.Lock()
	s.data[namespace] = append([]byte(nil), raw...)
	s.mu.Unlock()

	s.notify(namespace, nil)
}

// Raw returns the stored bytes for a namespace and whether a value exists.
func (s *MemoryStore) Raw(namespace string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[namespace]
	if !ok {
		return nil, false
	}

	return append([]byte(nil), raw...), true
}

func (s *MemoryStore) notify(namespace string, origin *MemoryHandle) {
	s.mu.Lock()
	subs := append([]*memorySubscription(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.namespace != namespace {
			continue
		}
		if origin != nil && sub.owner == origin {
			continue
		}
		sub.signal()
	}
}

func (s *MemoryStore) removeSub(target *memorySubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)

			return
		}
	}
}

// MemoryHandle is one participant's view of a MemoryStore.
//
// Fault injection and the read hook make failure and interleaving scenarios
// reproducible without timing games.
type MemoryHandle struct {
	store *MemoryStore

	getErr    error
	setErr    error
	deleteErr error
	getHook   func()
}

var (
	_ types.LeaseStore    = (*MemoryHandle)(nil)
	_ types.RecordWatcher = (*MemoryHandle)(nil)
)

// FailGets makes subsequent Get calls return err. Pass nil to restore.
func (h *MemoryHandle) FailGets(err error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.getErr = err
}

// FailSets makes subsequent Set calls return err. Pass nil to restore.
func (h *MemoryHandle) FailSets(err error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.setErr = err
}

// FailDeletes makes subsequent Delete calls return err. Pass nil to restore.
func (h *MemoryHandle) FailDeletes(err error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.deleteErr = err
}

// SetGetHook installs fn to run after a Get has captured its value but before
// it returns, with no lock held. It lets a test run another handle's full
// read-then-write sequence inside this handle's read window, reproducing the
// claim race deterministically.
func (h *MemoryHandle) SetGetHook(fn func()) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.getHook = fn
}

// Get implements types.LeaseStore.
func (h *MemoryHandle) Get(_ context.Context, namespace string) (*types.LeaseRecord, error) {
	h.store.mu.Lock()
	err := h.getErr
	hook := h.getHook
	raw, ok := h.store.data[namespace]
	h.store.mu.Unlock()

	if err != nil {
		return nil, err
	}

	// The hook runs after the snapshot is taken, so the caller proceeds on
	// a value that may already be outdated. That is the non-atomicity being
	// modeled.
	if hook != nil {
		hook()
	}

	if !ok {
		return nil, nil
	}

	rec, decoded := types.DecodeRecord(raw)
	if !decoded {
		return nil, nil
	}

	return rec, nil
}

// Set implements types.LeaseStore.
func (h *MemoryHandle) Set(_ context.Context, namespace string, rec types.LeaseRecord) error {
	raw, err := types.EncodeRecord(rec)
	if err != nil {
		return err
	}

	h.store.mu.Lock()
	injected := h.setErr
	if injected == nil {
		h.store.data[namespace] = raw
	}
	h.store.mu.Unlock()

	if injected != nil {
		return injected
	}

	h.store.notify(namespace, h)

	return nil
}

// Delete implements types.LeaseStore.
func (h *MemoryHandle) Delete(_ context.Context, namespace string) error {
	h.store.mu.Lock()
	injected := h.deleteErr
	_, existed := h.store.data[namespace]
	if injected == nil {
		delete(h.store.data, namespace)
	}
	h.store.mu.Unlock()

	if injected != nil {
		return injected
	}

	if existed {
		h.store.notify(namespace, h)
	}

	return nil
}

// Watch implements types.RecordWatcher. Events fire only for writes made
// through other handles or SetRaw.
func (h *MemoryHandle) Watch(ctx context.Context, namespace string) (types.Subscription, error) {
	sub := &memorySubscription{
		owner:     h,
		namespace: namespace,
		ch:        make(chan struct{}, 1),
	}

	h.store.mu.Lock()
	h.store.subs = append(h.store.subs, sub)
	h.store.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Stop()
	}()

	return sub, nil
}

type memorySubscription struct {
	owner     *MemoryHandle
	namespace string
	ch        chan struct{}

	mu      sync.Mutex
	stopped bool
}

func (s *memorySubscription) signal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Changes implements types.Subscription.
func (s *memorySubscription) Changes() <-chan struct{} {
	return s.ch
}

// Stop implements types.Subscription.
func (s *memorySubscription) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()

		return nil
	}
	s.stopped = true
	close(s.ch)
	s.mu.Unlock()

	s.owner.store.removeSub(s)

	return nil
}
