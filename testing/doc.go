// Package testing provides test utilities for the Soloist library.
//
// This package offers helpers for setting up test environments: an embedded
// NATS server for integration testing and deterministic in-memory
// implementations of the store and bus interfaces. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single in-process NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewMemoryStore: Shared in-memory lease store with per-participant
//     handles, change notification and fault injection
//   - NewMemoryBus: In-process broadcast bus
//   - NewTestLogger: Logger writing through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    soloisttest "github.com/Lomet/soloist/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := soloisttest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
