// Package lease implements the pure lease-acquisition decision rule.
//
// The rule decides, from a snapshot of the shared record and the caller's
// identity, whether the caller should claim the lease, renew it, or remain a
// follower. It is deliberately free of I/O and clock access: the surrounding
// participant supplies both, which keeps the rule's ordering and race
// semantics provable in plain table tests.
//
// The shared store offers no atomic compare-and-set, so the rule cannot and
// does not provide strict mutual exclusion. Two participants evaluating the
// same absent or expired record in the same tick may both claim; the protocol
// converges to a single owner within one polling interval when the loser
// observes the other's fresher record.
package lease
