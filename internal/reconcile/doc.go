// Package reconcile computes the minimal patchset that aligns a remote
// snapshot of records with an authoritative local snapshot.
//
// The core is a pure function: it performs no I/O, takes no locks, never
// mutates its inputs, and owns no state between calls. Given the same two
// snapshots it returns a byte-for-byte identical patchset, and permuting
// either input collection leaves the result structurally unchanged.
//
// MODEL:
//
// The remote store supports additions and deletions only. There is no Update
// instruction: a caller that wants to change a record's payload models it as
// a delete plus an add before this package is involved. Consequently a key
// present on both sides with exactly one remote record yields no instruction
// at all, even when the payloads differ.
//
// Remote snapshots may contain several records sharing a primary key. That is
// an expected, handled condition: all but one are scheduled for deletion. The
// survivor is chosen by a deterministic, order-independent rule - the record
// with the lexicographically least fingerprint (see internal/canon) - never
// by encounter order, so reversing the remote list cannot change which record
// survives.
//
// Local snapshots are authoritative and must be internally consistent: a
// duplicated local key is a precondition violation (INVALID_STATE), as is a
// record whose key cannot be resolved (INVALID_RECORD). Either aborts the
// call with no partial patchset.
//
// Applying the patchset - with its retries, backoff, and partial-failure
// recovery - belongs to the caller's applier. Instructions are independently
// and idempotently applicable, so re-deriving and re-applying a patchset from
// a stale snapshot converges instead of oscillating.
package reconcile
