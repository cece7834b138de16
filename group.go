package soloist

import (
	"context"
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Lomet/soloist/types"
)

// ErrAlreadyJoined is returned when joining a namespace the group already
// participates in.
var ErrAlreadyJoined = errors.New("namespace already joined")

// Factory builds the per-namespace dependencies of a participant.
//
// Each participant needs its own store instance (self-origin tracking is
// per-instance), so the group constructs dependencies lazily per namespace
// instead of sharing one store.
type Factory struct {
	// Store builds the lease store for a namespace. Required.
	Store func(ctx context.Context, namespace string) (types.LeaseStore, error)

	// Bus builds the broadcast bus for a namespace. Optional; when nil the
	// group's participants run in polling-only mode.
	Bus func(ctx context.Context, namespace string) (types.BroadcastBus, error)
}

// Group manages one election participant per namespace.
//
// An application competing for several independent resources (one lease per
// resource name) joins each namespace once; the group tracks the resulting
// participants and shuts them down together. All methods are safe for
// concurrent use.
type Group struct {
	base    Config
	factory Factory
	opts    []Option

	participants *xsync.Map[string, *Participant]
}

// NewGroup creates a group from a base configuration and a dependency
// factory.
//
// The base configuration's Namespace field is ignored; each Join names its
// own namespace. Options are applied to every participant the group creates.
//
// Parameters:
//   - base: Configuration template for all participants
//   - factory: Per-namespace store and bus construction
//   - opts: Options applied to every participant
//
// Returns:
//   - *Group: New group
//   - error: When the factory has no store constructor
func NewGroup(base Config, factory Factory, opts ...Option) (*Group, error) {
	if factory.Store == nil {
		return nil, ErrStoreRequired
	}

	return &Group{
		base:         base,
		factory:      factory,
		opts:         opts,
		participants: xsync.NewMap[string, *Participant](),
	}, nil
}

// Join creates and starts a participant for the namespace.
//
// Parameters:
//   - ctx: Context for dependency construction and startup
//   - namespace: Namespace to compete in
//
// Returns:
//   - *Participant: The started participant
//   - error: ErrAlreadyJoined, construction or startup error
func (g *Group) Join(ctx context.Context, namespace string) (*Participant, error) {
	if _, exists := g.participants.Load(namespace); exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, namespace)
	}

	store, err := g.factory.Store(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to build store for %s: %w", namespace, err)
	}

	cfg := g.base
	cfg.Namespace = namespace

	opts := g.opts
	if g.factory.Bus != nil {
		bus, busErr := g.factory.Bus(ctx, namespace)
		if busErr != nil {
			return nil, fmt.Errorf("failed to build bus for %s: %w", namespace, busErr)
		}
		opts = append(append([]Option{}, g.opts...), WithBus(bus))
	}

	p, err := NewParticipant(&cfg, store, opts...)
	if err != nil {
		return nil, err
	}

	if _, loaded := g.participants.LoadOrStore(namespace, p); loaded {
		// Lost a concurrent Join race; the discarded participant was
		// never started and holds no lease.
		return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, namespace)
	}

	if err := p.Start(ctx); err != nil {
		g.participants.Delete(namespace)

		return nil, err
	}

	return p, nil
}

// Leave gracefully closes the namespace's participant and removes it from
// the group.
//
// Returns:
//   - error: ErrNotStarted when the namespace was never joined, or the
//     participant's close error
func (g *Group) Leave(ctx context.Context, namespace string) error {
	p, loaded := g.participants.LoadAndDelete(namespace)
	if !loaded {
		return ErrNotStarted
	}

	return p.Close(ctx)
}

// Get returns the participant for a namespace, if joined.
func (g *Group) Get(namespace string) (*Participant, bool) {
	return g.participants.Load(namespace)
}

// Leaderships returns the namespaces in which this group currently leads.
func (g *Group) Leaderships() []string {
	var leading []string
	g.participants.Range(func(namespace string, p *Participant) bool {
		if p.IsLeader() {
			leading = append(leading, namespace)
		}

		return true
	})

	return leading
}

// CloseAll gracefully closes every participant in the group. All close
// errors are joined into one.
func (g *Group) CloseAll(ctx context.Context) error {
	var errs []error
	g.participants.Range(func(namespace string, p *Participant) bool {
		if err := p.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", namespace, err))
		}
		g.participants.Delete(namespace)

		return true
	})

	return errors.Join(errs...)
}
