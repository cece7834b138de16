package soloist

import "time"

// Option configures a Participant with optional dependencies.
type Option func(*participantOptions)

// participantOptions holds optional Participant configuration.
type participantOptions struct {
	bus     BroadcastBus
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	nowFunc func() time.Time
}

// WithBus provides a broadcast bus for near-instant cross-participant
// signaling.
//
// The bus is optional; without it the participant converges on polling alone.
// Config.DisableBroadcastBus overrides this option.
//
// Parameters:
//   - bus: BroadcastBus implementation
//
// Returns:
//   - Option: Functional option for NewParticipant
//
// Example:
//
//	bus, err := natsbus.New(nc, cfg.Namespace)
//	if err == nil {
//	    p, _ = soloist.NewParticipant(&cfg, store, soloist.WithBus(bus))
//	}
func WithBus(bus BroadcastBus) Option {
	return func(o *participantOptions) {
		o.bus = bus
	}
}

// WithHooks sets leadership event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewParticipant
//
// Example:
//
//	hooks := &soloist.Hooks{
//	    OnBecomeLeader: func(ctx context.Context) error {
//	        return startExclusiveWork(ctx)
//	    },
//	}
//	p, _ := soloist.NewParticipant(&cfg, store, soloist.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *participantOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewParticipant
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *participantOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewParticipant
func WithLogger(logger Logger) Option {
	return func(o *participantOptions) {
		o.logger = logger
	}
}

// WithTimeSource overrides the participant's wall-clock source.
//
// Primarily for tests: injecting a fake clock makes the staleness arithmetic
// of the decision rule fully deterministic.
//
// Parameters:
//   - now: Function returning the current time
//
// Returns:
//   - Option: Functional option for NewParticipant
func WithTimeSource(now func() time.Time) Option {
	return func(o *participantOptions) {
		o.nowFunc = now
	}
}
