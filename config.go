package soloist

import (
	"fmt"
	"time"
)

// Config is the configuration for a Participant.
//
// All duration fields accept standard Go duration strings ("15s", "1m") when
// decoded from YAML.
//
// Timing model:
//   - Interval drives the scheduler tick: followers poll the store and the
//     leader refreshes its lease on every tick. One interval is also the
//     convergence bound after a claim race.
//   - Timeout is the staleness threshold: a record older than Timeout marks
//     its owner as dead and the lease as claimable. Timeout must exceed
//     Interval or a healthy leader would expire between its own heartbeats.
//   - Debounce delays reaction to change and broadcast signals so a burst of
//     notifications coalesces into one reconciliation and a reader does not
//     race the writer mid-write.
type Config struct {
	// Namespace names the contested resource. Participants with the same
	// namespace compete for the same lease.
	Namespace string `yaml:"namespace"`

	// Timeout is how old a lease record may grow before its owner is
	// presumed dead. Recommended: at least 1.5x Interval.
	Timeout time.Duration `yaml:"timeout"`

	// Interval is the scheduler tick period, doubling as the leader's
	// heartbeat period.
	Interval time.Duration `yaml:"interval"`

	// Debounce is the delay applied to change and broadcast notifications
	// before reconciling.
	Debounce time.Duration `yaml:"debounce"`

	// OperationTimeout bounds individual store operations issued by the
	// background reconciliation loop.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// DisableBroadcastBus turns off the broadcast bus even when one was
	// provided. The zero value keeps the bus enabled, which is the default;
	// without a bus the participant degrades to pure polling.
	DisableBroadcastBus bool `yaml:"disableBroadcastBus"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Namespace:        "my-app",
		Timeout:          15 * time.Second,
		Interval:         10 * time.Second,
		Debounce:         100 * time.Millisecond,
		OperationTimeout: 10 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = defaults.Debounce
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
}

// Validate checks configuration constraints.
//
// Hard validation rules:
//   - Timeout > Interval (a healthy leader must renew before expiring)
//   - Debounce < Interval (debounce is a short reaction delay, not a poll)
//   - all durations > 0
//
// Returns:
//   - error: Validation error with explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Timeout <= 0 || cfg.Interval <= 0 || cfg.Debounce <= 0 || cfg.OperationTimeout <= 0 {
		return fmt.Errorf("all durations must be positive (timeout=%v interval=%v debounce=%v operationTimeout=%v)",
			cfg.Timeout, cfg.Interval, cfg.Debounce, cfg.OperationTimeout)
	}

	if cfg.Timeout <= cfg.Interval {
		return fmt.Errorf(
			"Timeout (%v) must be > Interval (%v), otherwise a healthy leader expires between its own heartbeats",
			cfg.Timeout, cfg.Interval,
		)
	}

	if cfg.Debounce >= cfg.Interval {
		return fmt.Errorf(
			"Debounce (%v) must be < Interval (%v)",
			cfg.Debounce, cfg.Interval,
		)
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but non-recommended values.
//
// Called after Validate() in NewParticipant to give operators guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.Timeout < cfg.Interval+cfg.Interval/2 {
		logger.Warn(
			"Timeout is close to Interval, a single delayed heartbeat may cause spurious takeover",
			"timeout", cfg.Timeout,
			"interval", cfg.Interval,
			"recommended", cfg.Interval+cfg.Interval/2,
		)
	}

	if cfg.Debounce > time.Second {
		logger.Warn(
			"Debounce is very long, change reactions will be sluggish",
			"debounce", cfg.Debounce,
			"recommended", "100ms",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Timings are 50-100x faster than production defaults. Use DefaultConfig()
// for real deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Timeout = 300 * time.Millisecond
	cfg.Interval = 100 * time.Millisecond
	cfg.Debounce = 20 * time.Millisecond
	cfg.OperationTimeout = 2 * time.Second

	return cfg
}
