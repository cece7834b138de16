package soloist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Lomet/soloist/internal/hooks"
	"github.com/Lomet/soloist/internal/lease"
	"github.com/Lomet/soloist/internal/logging"
	"github.com/Lomet/soloist/internal/metrics"
	"github.com/Lomet/soloist/internal/trigger"
	"github.com/Lomet/soloist/types"
)

// Participant is the election actor for a single execution context.
//
// It owns a stable opaque identity, runs the lease-acquisition algorithm
// against the shared store, aggregates all trigger sources (scheduler tick,
// store change events, broadcast messages) into one reconciliation path, and
// exposes the resulting leadership state.
//
// Consistency model: the shared store is not atomic, so two participants can
// both claim an absent or expired lease in the same tick and both briefly
// believes themselves leader. The protocol guarantees convergence to a single
// owner within one Interval, not instantaneous mutual exclusion. Design code
// that reacts to OnLoseLeadership accordingly.
//
// Thread safety:
//   - All public methods are safe for concurrent use.
//   - Reconciliation passes are serialized and never re-entrant; overlapping
//     triggers are coalesced, not run concurrently.
//
// Lifecycle:
//   - Create with NewParticipant()
//   - Call Start() to begin competing for the lease
//   - Call Close() for graceful shutdown, wired to the host's termination
//     signal; abrupt termination is covered by the staleness timeout instead
type Participant struct {
	cfg   Config
	store types.LeaseStore
	bus   types.BroadcastBus

	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	now     func() time.Time

	id    string
	fanin *trigger.FanIn

	// State management
	isLeader    atomic.Bool
	reconciling atomic.Bool
	lastRecord  atomic.Pointer[types.LeaseRecord]

	// reconcileMu serializes reconciliation passes (non-reentrancy).
	reconcileMu sync.Mutex

	// Lifecycle management
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	watchSub types.Subscription
	unsubBus func()
	closed   bool
}

// Status is a snapshot of the participant's externally visible state.
type Status struct {
	// ID is the participant's stable opaque identity.
	ID string

	// IsLeader reports whether this participant currently holds the lease.
	IsLeader bool

	// ParticipantCountEstimate is a deliberately coarse approximation:
	// 1 when leader, 2 when follower. See ParticipantCountEstimate.
	ParticipantCountEstimate int

	// Reconciling reports whether a reconciliation pass is in flight.
	Reconciling bool
}

// NewParticipant creates a new election participant.
//
// The participant's identity is generated once here and is stable for its
// lifetime. The store is required; the broadcast bus is optional and provided
// through WithBus.
//
// Returns a concrete *Participant following the "accept interfaces, return
// structs" principle; consumers define their own narrow interfaces for
// mocking when needed.
//
// Parameters:
//   - cfg: Configuration (missing values are filled with defaults)
//   - store: Shared lease store
//   - opts: Optional dependencies (bus, hooks, metrics, logger, time source)
//
// Returns:
//   - *Participant: Initialized participant, not yet started
//   - error: Validation error if the configuration is invalid
//
// Example:
//
//	store, _ := natskv.NewFromConn(ctx, nc, natskv.Config{})
//	bus, _ := natsbus.New(nc, "my-app")
//	p, err := soloist.NewParticipant(&soloist.Config{Namespace: "my-app"}, store,
//	    soloist.WithBus(bus),
//	    soloist.WithHooks(hooks),
//	)
func NewParticipant(cfg *Config, store types.LeaseStore, opts ...Option) (*Participant, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	options := &participantOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Safe defaults for optional dependencies, avoiding nil checks everywhere.
	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	nowFunc := options.nowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	cfg.ValidateWithWarnings(loggerInstance)

	bus := options.bus
	if cfg.DisableBroadcastBus {
		bus = nil
	}

	p := &Participant{
		cfg:     *cfg,
		store:   store,
		bus:     bus,
		hooks:   hooksInstance,
		metrics: metricsCollector,
		logger:  loggerInstance,
		now:     nowFunc,
		id:      uuid.NewString(),
		fanin:   trigger.New(cfg.Interval, cfg.Debounce),
	}

	return p, nil
}

// Start begins competing for the lease.
//
// Registers the change watcher (when the store supports watching) and the
// broadcast bus subscription, runs one synchronous reconciliation pass so the
// caller observes a settled state, then starts the background loop. Watcher
// or bus failures degrade to pure polling and are never fatal.
//
// Parameters:
//   - ctx: Context bounding the startup reconciliation
//
// Returns:
//   - error: ErrAlreadyStarted if already running
func (p *Participant) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.ctx != nil {
		p.mu.Unlock()

		return ErrAlreadyStarted
	}

	// Lifecycle context outlives the startup ctx.
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.mu.Unlock()

	// Change listener is an optional capability of the store.
	if w, ok := p.store.(types.RecordWatcher); ok {
		sub, err := w.Watch(p.ctx, p.cfg.Namespace)
		if err != nil {
			p.logger.Warn("store watch unavailable, relying on polling",
				"namespace", p.cfg.Namespace, "error", err)
		} else {
			p.mu.Lock()
			p.watchSub = sub
			p.mu.Unlock()

			p.wg.Add(1)
			go p.forwardChanges(sub)
		}
	}

	if p.bus != nil {
		unsub, err := p.bus.Subscribe(p.onBusMessage)
		if err != nil {
			p.logger.Warn("broadcast bus unavailable, relying on polling",
				"namespace", p.cfg.Namespace, "error", err)
			p.bus = nil
		} else {
			p.mu.Lock()
			p.unsubBus = unsub
			p.mu.Unlock()
		}
	}

	if err := p.fanin.Start(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.OperationTimeout)
	p.reconcile(opCtx, "startup")
	cancel()

	p.wg.Add(1)
	go p.run()

	p.logger.Info("participant started",
		"id", p.id,
		"namespace", p.cfg.Namespace,
		"leader", p.isLeader.Load(),
		"bus", p.bus != nil,
	)

	return nil
}

// Close gracefully shuts the participant down.
//
// Deregisters the scheduler, change watcher and bus subscription (cancelling
// any pending debounce), waits for background goroutines, then releases the
// lease: the record is deleted only if it is still owned by this participant,
// and a best-effort "closing" broadcast lets followers claim without waiting
// out the timeout. Close may never run on abrupt termination; staleness
// detection via timeout is the real safety net.
//
// Parameters:
//   - ctx: Context bounding shutdown, including the final store operations
//
// Returns:
//   - error: ErrNotStarted if not running, or ctx.Err() on shutdown timeout
func (p *Participant) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.ctx == nil || p.closed {
		p.mu.Unlock()

		return ErrNotStarted
	}
	p.closed = true
	p.cancel()
	watchSub := p.watchSub
	unsubBus := p.unsubBus
	p.mu.Unlock()

	if err := p.fanin.Stop(); err != nil && !errors.Is(err, trigger.ErrNotStarted) {
		p.logger.Error("failed to stop trigger fan-in", "error", err)
	}

	if watchSub != nil {
		if err := watchSub.Stop(); err != nil {
			p.logger.Warn("failed to stop store watcher", "error", err)
		}
	}

	if unsubBus != nil {
		unsubBus()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Error("shutdown timeout exceeded, goroutines may still be running",
			"id", p.id)

		return ctx.Err()
	}

	p.releaseLease(ctx)
	p.logger.Info("participant stopped", "id", p.id, "namespace", p.cfg.Namespace)

	return nil
}

// ID returns the participant's stable opaque identity.
func (p *Participant) ID() string {
	return p.id
}

// IsLeader reports whether this participant currently believes it holds the
// lease. During a claim race the belief can briefly be wrong; see the race
// semantics on Participant.
func (p *Participant) IsLeader() bool {
	return p.isLeader.Load()
}

// IsReconciling reports whether a reconciliation pass is currently in flight.
func (p *Participant) IsReconciling() bool {
	return p.reconciling.Load()
}

// ParticipantCountEstimate returns a deliberately coarse estimate of live
// participants: 1 when leader, 2 when follower.
//
// This is an approximation, not a count of N live participants. An accurate
// count would need a registry of all live identities rather than a single
// owner record, which is a different protocol.
func (p *Participant) ParticipantCountEstimate() int {
	if p.isLeader.Load() {
		return 1
	}

	return 2
}

// Status returns a snapshot of the participant's externally visible state.
func (p *Participant) Status() Status {
	return Status{
		ID:                       p.id,
		IsLeader:                 p.isLeader.Load(),
		ParticipantCountEstimate: p.ParticipantCountEstimate(),
		Reconciling:              p.reconciling.Load(),
	}
}

// LastKnownRecord returns the most recent lease record observed or written by
// this participant, nil before the first reconciliation.
func (p *Participant) LastKnownRecord() *LeaseRecord {
	return p.lastRecord.Load()
}

// ReadCurrentRecord reads the lease record directly from the store.
//
// Returns:
//   - *LeaseRecord: Current record, nil when absent or unparsable
//   - error: Store read error
func (p *Participant) ReadCurrentRecord(ctx context.Context) (*LeaseRecord, error) {
	return p.store.Get(ctx, p.cfg.Namespace)
}

// ReconcileNow runs one reconciliation pass synchronously.
//
// Useful after external events the trigger sources cannot see. The pass is
// serialized with the background loop; it never runs concurrently with
// another pass.
func (p *Participant) ReconcileNow(ctx context.Context) {
	p.reconcile(ctx, "manual")
}

// ForceAcquire unconditionally claims the lease, bypassing the decision rule
// entirely.
//
// It can usurp a live, healthy leader with no negotiation and no warning to
// the incumbent, which discovers the takeover on its next reconciliation.
// Meant for explicit operator-triggered override.
//
// Returns:
//   - error: Store write error; leadership is asserted locally regardless
//     (fail-safe-to-leader)
func (p *Participant) ForceAcquire(ctx context.Context) error {
	p.reconcileMu.Lock()
	defer p.reconcileMu.Unlock()

	err := p.writeRecord(ctx)
	p.setLeader(ctx, true)

	p.logger.Info("force-acquired lease", "id", p.id, "namespace", p.cfg.Namespace)

	return err
}

// Suspend tells the participant its host is about to be backgrounded or
// paused without terminating.
//
// A leader refreshes its lease so a merely-inactive-but-alive owner is not
// spuriously taken over; a follower does nothing. This is the counterpart to
// Close, which is for actual termination.
//
// Returns:
//   - error: Store write error from the renewal, nil for followers
func (p *Participant) Suspend(ctx context.Context) error {
	p.reconcileMu.Lock()
	defer p.reconcileMu.Unlock()

	if !p.isLeader.Load() {
		return nil
	}

	p.logger.Debug("renewing lease before suspend", "id", p.id)

	return p.writeRecord(ctx)
}

// run is the background loop consuming coalesced reconciliation requests.
func (p *Participant) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case reason := <-p.fanin.Requests():
			opCtx, cancel := context.WithTimeout(context.Background(), p.cfg.OperationTimeout)
			p.reconcile(opCtx, string(reason))
			cancel()
		}
	}
}

// forwardChanges feeds store change events into the debounced trigger path.
func (p *Participant) forwardChanges(sub types.Subscription) {
	defer p.wg.Done()

	for range sub.Changes() {
		p.fanin.Notify(trigger.ReasonChange)
	}
}

// onBusMessage handles an incoming broadcast message.
func (p *Participant) onBusMessage(msg types.Message) {
	// Transports may loop our own publishes back; leadership state
	// originated here carries no new information.
	if msg.OwnerID == p.id {
		return
	}

	p.metrics.RecordBroadcast(string(msg.Kind), false)
	p.fanin.Notify(trigger.ReasonBroadcast)
}

// reconcile runs one pass of the acquisition algorithm against the store.
//
// Serialized by reconcileMu: overlapping triggers wait rather than run
// concurrently. Idempotent: a settled follower performs no writes, a settled
// leader rewrites only its own timestamp, and edge callbacks fire only on
// actual transitions.
func (p *Participant) reconcile(ctx context.Context, reason string) {
	p.reconcileMu.Lock()
	defer p.reconcileMu.Unlock()

	p.reconciling.Store(true)
	defer p.reconciling.Store(false)

	start := time.Now()

	rec, err := p.store.Get(ctx, p.cfg.Namespace)
	if err != nil {
		// Fail-safe-to-leader: when ownership cannot be determined we
		// claim rather than risk permanent lock-out. If the store is
		// broken identically for every participant this can produce
		// split ownership; that bias is a deliberate protocol choice.
		p.metrics.RecordStoreError("get")
		p.logger.Warn("lease read failed, assuming leadership",
			"namespace", p.cfg.Namespace, "reason", reason, "error", err)

		_ = p.writeRecord(ctx)
		p.setLeader(ctx, true)
		p.metrics.RecordReconcile("store_error", time.Since(start).Seconds())

		return
	}

	action := lease.Decide(rec, p.id, p.now(), p.cfg.Timeout)

	switch action {
	case lease.ActionClaim, lease.ActionRenew:
		_ = p.writeRecord(ctx)
		p.setLeader(ctx, true)

	case lease.ActionObserve:
		p.lastRecord.Store(rec)
		p.setLeader(ctx, false)
		p.otherDetected(ctx, rec.OwnerID)
	}

	p.logger.Debug("reconciled",
		"reason", reason,
		"action", action.String(),
		"leader", p.isLeader.Load(),
	)
	p.metrics.RecordReconcile(action.String(), time.Since(start).Seconds())
}

// writeRecord writes a fresh record asserting this participant as owner.
// Claim, renew and force-acquire all funnel through here; the write is
// identical for all three.
func (p *Participant) writeRecord(ctx context.Context) error {
	rec := types.LeaseRecord{OwnerID: p.id, AcquiredAt: p.now().UnixMilli()}

	err := p.store.Set(ctx, p.cfg.Namespace, rec)
	if err != nil {
		// Fail-safe-to-leader, same rationale as on the read path.
		p.metrics.RecordStoreError("set")
		p.logger.Warn("lease write failed, assuming leadership anyway",
			"namespace", p.cfg.Namespace, "error", err)
	}

	p.lastRecord.Store(&rec)

	return err
}

// setLeader updates the leadership flag and fires edge-triggered callbacks
// exactly once per transition. Non-transitions return without side effects.
func (p *Participant) setLeader(ctx context.Context, leader bool) {
	if !p.isLeader.CompareAndSwap(!leader, leader) {
		return
	}

	p.metrics.RecordLeadershipChange(leader)

	if leader {
		p.logger.Info("became leader", "id", p.id, "namespace", p.cfg.Namespace)
		p.publish(ctx, types.KindLeadershipChanged)

		if p.hooks.OnBecomeLeader != nil {
			if err := p.hooks.OnBecomeLeader(ctx); err != nil {
				p.logger.Error("become-leader hook error", "error", err)
			}
		}
	} else {
		p.logger.Info("lost leadership", "id", p.id, "namespace", p.cfg.Namespace)

		if p.hooks.OnLoseLeadership != nil {
			if err := p.hooks.OnLoseLeadership(ctx); err != nil {
				p.logger.Error("lose-leadership hook error", "error", err)
			}
		}
	}
}

// otherDetected fires the level-triggered follower callback: once per
// reconciliation pass that observed a live foreign owner.
func (p *Participant) otherDetected(ctx context.Context, ownerID string) {
	if p.hooks.OnOtherDetected == nil {
		return
	}

	if err := p.hooks.OnOtherDetected(ctx, ownerID); err != nil {
		p.logger.Error("other-detected hook error", "owner", ownerID, "error", err)
	}
}

// publish sends a best-effort broadcast; failures degrade silently.
func (p *Participant) publish(ctx context.Context, kind types.MessageKind) {
	if p.bus == nil {
		return
	}

	msg := types.Message{
		Kind:    kind,
		OwnerID: p.id,
		SentAt:  p.now().UnixMilli(),
	}

	if err := p.bus.Publish(ctx, msg); err != nil {
		p.logger.Warn("broadcast publish failed", "kind", kind, "error", err)

		return
	}

	p.metrics.RecordBroadcast(string(kind), true)
}

// releaseLease performs the shutdown cleanup against the store.
//
// The record is re-read first: it is deleted only when still owned by this
// participant. Deleting another owner's live record would be a correctness
// violation, so a participant that already lost leadership leaves the store
// untouched.
func (p *Participant) releaseLease(ctx context.Context) {
	rec, err := p.store.Get(ctx, p.cfg.Namespace)
	if err != nil {
		// Ownership unverifiable; leave the record for timeout-based takeover.
		p.metrics.RecordStoreError("get")
		p.logger.Warn("could not verify lease ownership during shutdown", "error", err)
		p.setLeader(ctx, false)

		return
	}

	if rec == nil || !rec.OwnedBy(p.id) {
		p.setLeader(ctx, false)

		return
	}

	if err := p.store.Delete(ctx, p.cfg.Namespace); err != nil {
		p.metrics.RecordStoreError("delete")
		p.logger.Warn("failed to delete lease during shutdown, followers will wait out the timeout",
			"error", err)
	} else {
		p.logger.Info("released lease", "id", p.id, "namespace", p.cfg.Namespace)
	}

	p.publish(ctx, types.KindClosing)
	p.setLeader(ctx, false)
}
