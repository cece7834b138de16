package soloist

import "errors"

// Sentinel errors returned by the Participant.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreRequired is returned when the lease store is nil.
	ErrStoreRequired = errors.New("lease store is required")

	// ErrAlreadyStarted is returned when Start is called on a running participant.
	ErrAlreadyStarted = errors.New("participant already started")

	// ErrNotStarted is returned when Close is called on a participant that
	// hasn't been started or was already closed.
	ErrNotStarted = errors.New("participant not started")
)
