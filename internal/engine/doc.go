// Package engine schedules and orchestrates reconciliation cycles.
//
// One cycle snapshots desired state, snapshots the remote store, computes a
// patchset with the pure core, and hands it to the applier. The engine runs
// cycles strictly one at a time in a single goroutine; the loop owns the
// cadence, the core owns the semantics, and the applier owns remote-store
// failure handling.
//
// Each cycle is stamped with a monotonic cycle number from the logical clock
// and a UUIDv7 token for log correlation. Wall-clock time never participates
// in ordering decisions.
//
// Cycle failures are split by recoverability: snapshot and apply failures are
// transient (the loop logs and retries next tick), while precondition
// violations from the core (INVALID_RECORD, INVALID_STATE) mean the desired
// state itself is malformed - the loop logs these too, since a later snapshot
// may be fixed, but RunOnce callers get the error synchronously.
package engine
