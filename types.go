package soloist

import "github.com/Lomet/soloist/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types and
// interfaces through type aliases. Internal packages depend on `types`
// without depending on the root package, while users get the convenient
// soloist.LeaseRecord, soloist.Hooks, etc.
type (
	LeaseRecord = types.LeaseRecord
	Message     = types.Message
	MessageKind = types.MessageKind
)

// Re-export interfaces from the types package for convenience.
type (
	LeaseStore       = types.LeaseStore
	RecordWatcher    = types.RecordWatcher
	Subscription     = types.Subscription
	BroadcastBus     = types.BroadcastBus
	Hooks            = types.Hooks
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export broadcast message kinds.
const (
	KindLeadershipChanged = types.KindLeadershipChanged
	KindClosing           = types.KindClosing
)
