// Package trigger merges the election protocol's asynchronous signal sources
// (scheduler ticks, store change notifications, broadcast messages) into one
// debounced, coalesced reconciliation request stream.
//
// Keeping the fan-in in a single component with a single output channel is
// what makes the reconciliation loop's idempotence and non-reentrancy easy to
// reason about: the participant consumes requests one at a time and never
// runs two passes concurrently.
package trigger
