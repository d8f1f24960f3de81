package reconcile

import (
	"cmp"
	"fmt"

	"github.com/roach88/converge/internal/canon"
)

// KeyFunc extracts a record's primary key. Every record type supplies its
// own extractor; there is no default. Returning an error marks the record
// as having no resolvable key (INVALID_RECORD).
type KeyFunc[T any, K cmp.Ordered] func(T) (K, error)

// FingerprintFunc returns a deterministic content identity for a record.
// The fingerprint's lexicographic order is the total order used to pick the
// surviving record among same-key remote duplicates, so it must depend only
// on the record's content, never on its position in the input.
type FingerprintFunc[T any] func(T) (string, error)

// Reconciler computes patchsets for one (local, remote) record type pair.
//
// The zero value is not usable: LocalKey and RemoteKey are required.
// Fingerprint is optional and defaults to canon.Fingerprint, which covers
// any JSON-representable record type. A Reconciler holds no per-call state
// and is safe for concurrent use.
type Reconciler[K cmp.Ordered, L, R any] struct {
	// LocalKey extracts the primary key of a local record.
	LocalKey KeyFunc[L, K]

	// RemoteKey extracts the primary key of a remote record.
	RemoteKey KeyFunc[R, K]

	// Fingerprint overrides the content-identity rule for remote records.
	// Nil selects canon.Fingerprint.
	Fingerprint FingerprintFunc[R]
}

// Reconcile computes the patchset aligning remote with local.
//
// Inputs are read-only snapshots; they are never mutated and no reference to
// them is retained. The result is deterministic and independent of input
// order: permuting local and/or remote yields a structurally identical
// patchset.
//
// Returns *Error with code INVALID_RECORD when a key or fingerprint cannot
// be resolved, or INVALID_STATE when local contains a duplicated key. No
// partial patchset accompanies an error.
func (rc *Reconciler[K, L, R]) Reconcile(local []L, remote []R) (*Patchset[K, L, R], error) {
	if rc.LocalKey == nil {
		return nil, fmt.Errorf("reconcile: LocalKey extractor is required")
	}
	if rc.RemoteKey == nil {
		return nil, fmt.Errorf("reconcile: RemoteKey extractor is required")
	}
	fp := rc.Fingerprint
	if fp == nil {
		fp = func(rec R) (string, error) { return canon.Fingerprint(rec) }
	}

	localIdx, err := indexLocal(local, rc.LocalKey)
	if err != nil {
		return nil, err
	}
	remoteIdx, err := indexRemote(remote, rc.RemoteKey, fp)
	if err != nil {
		return nil, err
	}

	return buildPatchset(computeDelta(localIdx, remoteIdx)), nil
}

// Reconcile is the package-level convenience form for callers that do not
// need a custom fingerprint rule.
func Reconcile[K cmp.Ordered, L, R any](local []L, remote []R, localKey KeyFunc[L, K], remoteKey KeyFunc[R, K]) (*Patchset[K, L, R], error) {
	rc := Reconciler[K, L, R]{LocalKey: localKey, RemoteKey: remoteKey}
	return rc.Reconcile(local, remote)
}
