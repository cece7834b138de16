package types

import (
	"encoding/json"
	"time"
)

// LeaseRecord is the single shared value recording the current claimed owner
// of a namespace and the time of its last heartbeat.
//
// The record is the sole source of truth for ownership. Absence of a record
// means "no known owner". A record whose age exceeds the configured timeout is
// stale: its owner is presumed dead and any participant may overwrite it.
//
// Wire shape (JSON):
//
//	{"ownerId": "b1f3...", "acquiredAt": 1735689600123}
//
// AcquiredAt is epoch milliseconds. Content that fails to decode into this
// shape is treated identically to an absent record, never as an error.
type LeaseRecord struct {
	// OwnerID is the opaque identity of the participant holding the lease.
	OwnerID string `json:"ownerId"`

	// AcquiredAt is the wall-clock time of the last claim or renewal,
	// in epoch milliseconds.
	AcquiredAt int64 `json:"acquiredAt"`
}

// Age returns how long ago the record was last refreshed.
//
// Parameters:
//   - now: Current wall-clock time
//
// Returns:
//   - time.Duration: Elapsed time since AcquiredAt (negative if the record is from the future)
func (r *LeaseRecord) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.AcquiredAt))
}

// Stale reports whether the record's owner should be presumed dead.
//
// Staleness is inferred by readers, never announced by the dead owner.
//
// Parameters:
//   - now: Current wall-clock time
//   - timeout: Maximum age before the owner is presumed dead
//
// Returns:
//   - bool: true if the record's age exceeds timeout
func (r *LeaseRecord) Stale(now time.Time, timeout time.Duration) bool {
	return r.Age(now) > timeout
}

// OwnedBy reports whether the record belongs to the given participant.
func (r *LeaseRecord) OwnedBy(id string) bool {
	return r.OwnerID == id
}

// EncodeRecord serializes a record to its JSON wire shape.
func EncodeRecord(rec LeaseRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeRecord parses raw store content into a LeaseRecord.
//
// Malformed or empty content yields (nil, false): per the protocol, content we
// cannot parse is indistinguishable from an absent record.
//
// Parameters:
//   - raw: Raw bytes read from the lease store
//
// Returns:
//   - *LeaseRecord: Decoded record, nil if unparsable
//   - bool: true if the content decoded into a usable record
func DecodeRecord(raw []byte) (*LeaseRecord, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var rec LeaseRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}

	// A record without an owner carries no ownership information.
	if rec.OwnerID == "" {
		return nil, false
	}

	return &rec, true
}
