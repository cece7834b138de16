// Package natskv implements the lease store on top of NATS JetStream KeyValue.
//
// The store deliberately uses only plain Get/Put/Delete: the election
// protocol is specified against a non-atomic store, and its tested race
// semantics (two participants claiming in the same tick, converging within
// one interval) must be preserved. JetStream's atomic Create and
// Update-with-revision operations exist but are intentionally not used here.
//
// The bucket carries no TTL either: a stale record stays in the store and is
// recognized as stale by readers comparing its age against the configured
// timeout, never by server-side expiry.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Lomet/soloist/internal/kvutil"
	"github.com/Lomet/soloist/types"
)

// Store is a LeaseStore backed by a NATS JetStream KV bucket.
//
// Store also implements types.RecordWatcher. Watch events for the store's own
// writes are suppressed by tracking the revision returned by each Put, so the
// owning participant only hears about foreign modifications.
//
// Each participant must use its own Store instance; sharing one Store between
// participants would merge their self-origin tracking.
type Store struct {
	kv      jetstream.KeyValue
	selfRev atomic.Uint64
}

// Compile-time assertions for the store contracts.
var (
	_ types.LeaseStore    = (*Store)(nil)
	_ types.RecordWatcher = (*Store)(nil)
)

// Config configures the backing KV bucket for NewFromConn.
type Config struct {
	// Bucket is the KV bucket name. Defaults to "soloist-lease".
	Bucket string

	// Replicas is the bucket replication factor. Defaults to 1.
	Replicas int
}

// DefaultBucket is the KV bucket name used when none is configured.
const DefaultBucket = "soloist-lease"

// New creates a Store over an existing KV bucket.
//
// Parameters:
//   - kv: JetStream KV bucket holding lease records
//
// Returns:
//   - *Store: New store instance
func New(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv}
}

// NewFromConn creates a Store from a NATS connection, creating or opening the
// configured bucket.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: NATS connection
//   - cfg: Bucket configuration
//
// Returns:
//   - *Store: New store instance
//   - error: Connection or bucket creation error
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	store, err := natskv.NewFromConn(ctx, nc, natskv.Config{})
func NewFromConn(ctx context.Context, nc *nats.Conn, cfg Config) (*Store, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}

	replicas := cfg.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	kv, err := kvutil.EnsureBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:   bucket,
		History:  1,
		Replicas: replicas,
	}, 5)
	if err != nil {
		return nil, err
	}

	return New(kv), nil
}

// Get reads the lease record for the namespace.
//
// An absent key and unparsable content both yield (nil, nil).
func (s *Store) Get(ctx context.Context, namespace string) (*types.LeaseRecord, error) {
	entry, err := s.kv.Get(ctx, namespace)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil //nolint:nilnil // absent record is a valid state, not an error
		}

		return nil, fmt.Errorf("failed to get lease record: %w", err)
	}

	rec, ok := types.DecodeRecord(entry.Value())
	if !ok {
		return nil, nil //nolint:nilnil // unparsable content is treated as absent
	}

	return rec, nil
}

// Set writes the lease record, unconditionally overwriting any existing one.
func (s *Store) Set(ctx context.Context, namespace string, rec types.LeaseRecord) error {
	raw, err := types.EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to encode lease record: %w", err)
	}

	rev, err := s.kv.Put(ctx, namespace, raw)
	if err != nil {
		return fmt.Errorf("failed to put lease record: %w", err)
	}

	// Remember our own write so the watcher can suppress it.
	s.selfRev.Store(rev)

	return nil
}

// Delete removes the lease record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	err := s.kv.Delete(ctx, namespace)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete lease record: %w", err)
	}

	return nil
}

// Watch subscribes to modifications of the namespace key made by other
// participants. Events for this store's own Puts are filtered out.
func (s *Store) Watch(ctx context.Context, namespace string) (types.Subscription, error) {
	watcher, err := s.kv.Watch(ctx, namespace, jetstream.UpdatesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to watch lease record: %w", err)
	}

	sub := &subscription{
		watcher: watcher,
		ch:      make(chan struct{}, 1),
	}

	go sub.pump(s)

	return sub, nil
}

// subscription adapts a jetstream.KeyWatcher to types.Subscription.
type subscription struct {
	watcher  jetstream.KeyWatcher
	ch       chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// Changes returns the coalesced change-notification channel.
func (s *subscription) Changes() <-chan struct{} {
	return s.ch
}

// Stop ends the subscription.
func (s *subscription) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.watcher.Stop()
	})

	return s.stopErr
}

// pump forwards foreign watch events, coalescing into a 1-buffered channel.
func (s *subscription) pump(store *Store) {
	defer close(s.ch)

	for entry := range s.watcher.Updates() {
		// Nil marks the end of the initial replay sequence.
		if entry == nil {
			continue
		}

		// Skip our own writes: fires only for foreign modifications.
		if entry.Operation() == jetstream.KeyValuePut && entry.Revision() == store.selfRev.Load() {
			continue
		}

		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}
