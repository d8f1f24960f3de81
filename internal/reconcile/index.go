package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// remoteEntry pairs a remote record with its fingerprint. The fingerprint is
// computed once, at indexing time, and carries the deterministic total order
// used for duplicate-survivor selection and patchset ordering.
type remoteEntry[R any] struct {
	record      R
	fingerprint string
}

// indexLocal builds the key -> record index for the authoritative local
// collection. Local keys must be unique: a duplicate signals INVALID_STATE,
// an unresolvable key signals INVALID_RECORD.
//
// Grouping depends only on key equality, never on input order.
func indexLocal[K cmp.Ordered, L any](records []L, keyOf KeyFunc[L, K]) (map[K]L, error) {
	idx := make(map[K]L, len(records))
	for i, rec := range records {
		key, err := keyOf(rec)
		if err != nil {
			return nil, newInvalidRecord("local", i, err)
		}
		if _, seen := idx[key]; seen {
			return nil, newInvalidState(renderKey(key), i)
		}
		idx[key] = rec
	}
	return idx, nil
}

// indexRemote builds the key -> entries index for the remote collection.
// Remote keys may repeat; records sharing a key collapse into one entry list.
//
// Each list is sorted by fingerprint (ties broken nowhere: equal fingerprints
// mean canonically identical payloads, which are interchangeable), so every
// downstream decision is independent of the order records arrived in.
func indexRemote[K cmp.Ordered, R any](records []R, keyOf KeyFunc[R, K], fp FingerprintFunc[R]) (map[K][]remoteEntry[R], error) {
	idx := make(map[K][]remoteEntry[R], len(records))
	for i, rec := range records {
		key, err := keyOf(rec)
		if err != nil {
			return nil, newInvalidRecord("remote", i, err)
		}
		id, err := fp(rec)
		if err != nil {
			return nil, newInvalidRecord("remote", i, fmt.Errorf("fingerprint: %w", err))
		}
		idx[key] = append(idx[key], remoteEntry[R]{record: rec, fingerprint: id})
	}
	for key := range idx {
		slices.SortStableFunc(idx[key], func(a, b remoteEntry[R]) int {
			return strings.Compare(a.fingerprint, b.fingerprint)
		})
	}
	return idx, nil
}

// renderKey formats a key for diagnostics.
func renderKey[K cmp.Ordered](key K) string {
	return fmt.Sprint(key)
}
