package reconcile

import "cmp"

// delta holds the three operation sets produced by comparing the two indexes:
// additions, deletions for absent keys, and deletions for duplicates. The
// builder in patchset.go merges them into one ordered sequence.
type delta[K cmp.Ordered, L, R any] struct {
	additions map[K]L
	deletions map[K][]remoteEntry[R]
}

// computeDelta compares the local and remote indexes.
//
// For each key exactly one of the following holds:
//   - local only: one addition, no deletions
//   - remote only with n records: n deletions, no additions
//   - both sides with n remote records: n-1 deletions, retaining the entry
//     with the least fingerprint; no additions
//
// A key with exactly one remote record on both sides yields nothing, even
// when payloads differ: update detection is out of scope by model.
func computeDelta[K cmp.Ordered, L, R any](localIdx map[K]L, remoteIdx map[K][]remoteEntry[R]) delta[K, L, R] {
	d := delta[K, L, R]{
		additions: make(map[K]L),
		deletions: make(map[K][]remoteEntry[R]),
	}

	for key, rec := range localIdx {
		if _, present := remoteIdx[key]; !present {
			d.additions[key] = rec
		}
	}

	for key, entries := range remoteIdx {
		if _, present := localIdx[key]; !present {
			d.deletions[key] = entries
			continue
		}
		// Shared key: retain the least-fingerprint entry, delete the rest.
		// Entries arrive sorted by fingerprint from indexRemote.
		if len(entries) > 1 {
			d.deletions[key] = entries[1:]
		}
	}

	return d
}
