package trigger

import (
	"errors"
	"sync"
	"time"
)

// Common errors for fan-in lifecycle operations.
var (
	ErrNotStarted     = errors.New("fan-in not started")
	ErrAlreadyStarted = errors.New("fan-in already started")
)

// Reason identifies which signal source requested a reconciliation.
type Reason string

// Trigger sources.
const (
	// ReasonTick is the periodic scheduler tick. For a leader this doubles
	// as the heartbeat that drives lease renewal.
	ReasonTick Reason = "tick"

	// ReasonChange is a store change notification from another participant.
	ReasonChange Reason = "change"

	// ReasonBroadcast is a leadership-changed message from the broadcast bus.
	ReasonBroadcast Reason = "broadcast"
)

// FanIn unifies the three asynchronous trigger sources of the election
// protocol into a single coalesced request stream.
//
// Ticks pass through immediately at the configured interval. Change and
// broadcast notifications are debounced: the first notification arms a short
// timer and further notifications while the timer is pending are dropped.
// The delay avoids reading a record mid-write by the triggering participant,
// and the coalescing prevents a thundering herd when many participants react
// to one write.
//
// Requests are delivered on a buffered channel of capacity one; a request
// arriving while one is already pending is dropped, because a single
// reconciliation pass observes the latest store state anyway.
type FanIn struct {
	interval time.Duration
	debounce time.Duration

	requests chan Reason
	notifyCh chan Reason

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *time.Ticker
}

// New creates a fan-in with the given tick interval and debounce window.
//
// Parameters:
//   - interval: Scheduler tick period (also the leader heartbeat period)
//   - debounce: Delay applied to change and broadcast notifications
//
// Returns:
//   - *FanIn: New fan-in instance, not yet started
func New(interval, debounce time.Duration) *FanIn {
	return &FanIn{
		interval: interval,
		debounce: debounce,
		requests: make(chan Reason, 1),
		notifyCh: make(chan Reason, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins emitting requests in the background.
//
// Returns:
//   - error: ErrAlreadyStarted if already running
func (f *FanIn) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return ErrAlreadyStarted
	}

	f.started = true
	f.ticker = time.NewTicker(f.interval)

	go f.loop()

	return nil
}

// Stop terminates the fan-in, cancelling any pending debounce timer.
//
// Blocks until the background goroutine exits. No requests are emitted after
// Stop returns.
//
// Returns:
//   - error: ErrNotStarted if not running
func (f *FanIn) Stop() error {
	f.mu.Lock()

	if !f.started {
		f.mu.Unlock()
		return ErrNotStarted
	}

	f.ticker.Stop()
	close(f.stopCh)
	f.started = false

	f.mu.Unlock()

	<-f.doneCh

	return nil
}

// Requests returns the coalesced reconciliation request stream.
func (f *FanIn) Requests() <-chan Reason {
	return f.requests
}

// Notify feeds a change or broadcast signal into the debounced path.
//
// Never blocks: signals arriving while one is already queued are dropped,
// which is exactly the coalescing the protocol wants.
//
// Parameters:
//   - reason: Source of the signal, ReasonChange or ReasonBroadcast
func (f *FanIn) Notify(reason Reason) {
	select {
	case f.notifyCh <- reason:
	default:
	}
}

// loop is the background goroutine multiplexing all trigger sources.
func (f *FanIn) loop() {
	defer close(f.doneCh)

	var (
		debTimer *time.Timer
		debC     <-chan time.Time
		pending  Reason
	)

	for {
		select {
		case <-f.stopCh:
			if debTimer != nil {
				debTimer.Stop()
			}

			return

		case <-f.ticker.C:
			f.emit(ReasonTick)

		case reason := <-f.notifyCh:
			// First signal arms the debounce window; signals landing
			// while it is pending are coalesced into the armed one.
			if debC == nil {
				debTimer = time.NewTimer(f.debounce)
				debC = debTimer.C
				pending = reason
			}

		case <-debC:
			debTimer = nil
			debC = nil
			f.emit(pending)
		}
	}
}

// emit queues a request, dropping it when one is already pending.
func (f *FanIn) emit(reason Reason) {
	select {
	case f.requests <- reason:
	default:
	}
}
