// Package store persists the remote side of reconciliation in SQLite.
//
// The remote_records table deliberately has no uniqueness constraint on
// entity_id: the remote store is allowed to drift into duplicate records for
// one entity, which is exactly the condition reconciliation repairs. Rows are
// addressed by (entity_id, fingerprint) when a patchset deletes one specific
// record among duplicates.
//
// Store satisfies both engine collaborator contracts: it provides remote
// snapshots and applies patchsets. Instructions apply idempotently - deleting
// an already-deleted record or adding an already-present one is a tolerated
// no-op - so re-applying a patchset derived from a stale snapshot converges.
package store
