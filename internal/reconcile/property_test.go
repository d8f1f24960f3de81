package reconcile

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// idAlphabet is deliberately tiny so generated states collide on keys often:
// overlapping key sets and remote duplicates are the interesting cases.
var idAlphabet = []string{"a", "b", "c", "d", "e"}

func genRemote() *rapid.Generator[[]user] {
	one := rapid.Custom(func(t *rapid.T) user {
		return user{
			ID:    rapid.SampledFrom(idAlphabet).Draw(t, "id"),
			Email: rapid.StringMatching(`[a-z]{1,4}@x\.com`).Draw(t, "email"),
		}
	})
	return rapid.SliceOfN(one, 0, 12)
}

// genLocal draws a local state with unique keys, as the model requires.
func genLocal() *rapid.Generator[[]user] {
	return rapid.Custom(func(t *rapid.T) []user {
		drawn := genRemote().Draw(t, "candidates")
		seen := make(map[string]bool, len(drawn))
		var out []user
		for _, u := range drawn {
			if !seen[u.ID] {
				seen[u.ID] = true
				out = append(out, u)
			}
		}
		return out
	})
}

func shuffled(records []user, seed uint64) []user {
	out := append([]user(nil), records...)
	rng := rand.New(rand.NewSource(int64(seed)))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func reversed(records []user) []user {
	out := append([]user(nil), records...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func TestPropertyOrderInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := genLocal().Draw(t, "local")
		remote := genRemote().Draw(t, "remote")
		seed := rapid.Uint64().Draw(t, "seed")

		base, err := Reconcile(local, remote, userKey, userKey)
		require.NoError(t, err)

		rev, err := Reconcile(reversed(local), reversed(remote), userKey, userKey)
		require.NoError(t, err)
		if diff := cmp.Diff(base.Instructions, rev.Instructions); diff != "" {
			t.Fatalf("reversal changed patchset (-base +reversed):\n%s", diff)
		}

		perm, err := Reconcile(shuffled(local, seed), shuffled(remote, seed+1), userKey, userKey)
		require.NoError(t, err)
		if diff := cmp.Diff(base.Instructions, perm.Instructions); diff != "" {
			t.Fatalf("permutation changed patchset (-base +permuted):\n%s", diff)
		}
	})
}

func TestPropertyDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := genLocal().Draw(t, "local")
		remote := genRemote().Draw(t, "remote")

		first, err := Reconcile(local, remote, userKey, userKey)
		require.NoError(t, err)
		second, err := Reconcile(local, remote, userKey, userKey)
		require.NoError(t, err)

		// Byte-for-byte, not merely structurally equal.
		b1, err := json.Marshal(first)
		require.NoError(t, err)
		b2, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
	})
}

func TestPropertyPerKeyCounts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := genLocal().Draw(t, "local")
		remote := genRemote().Draw(t, "remote")

		ps, err := Reconcile(local, remote, userKey, userKey)
		require.NoError(t, err)

		localKeys := make(map[string]bool, len(local))
		for _, u := range local {
			localKeys[u.ID] = true
		}
		remoteCount := make(map[string]int, len(remote))
		for _, u := range remote {
			remoteCount[u.ID]++
		}

		adds := make(map[string]int)
		dels := make(map[string]int)
		for _, ins := range ps.Instructions {
			switch ins.Op {
			case OpAdd:
				adds[ins.Key]++
			case OpDelete:
				dels[ins.Key]++
			}
		}

		for _, u := range local {
			if remoteCount[u.ID] == 0 {
				assert.Equal(t, 1, adds[u.ID], "local-only key %q", u.ID)
			} else {
				assert.Zero(t, adds[u.ID], "shared key %q must not be added", u.ID)
			}
		}
		for key, n := range remoteCount {
			if localKeys[key] {
				assert.Equal(t, n-1, dels[key], "shared key %q retains one record", key)
			} else {
				assert.Equal(t, n, dels[key], "remote-only key %q fully deleted", key)
			}
		}
	})
}

func TestPropertyIdempotentConvergence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := genLocal().Draw(t, "local")
		remote := genRemote().Draw(t, "remote")

		ps, err := Reconcile(local, remote, userKey, userKey)
		require.NoError(t, err)

		converged := applyToRemote(remote, ps)
		again, err := Reconcile(local, converged, userKey, userKey)
		require.NoError(t, err)
		assert.True(t, again.Empty(), "re-reconcile after apply must be a no-op, got %d instructions", again.Len())
	})
}

// applyToRemote simulates the external applier: deletions remove one matching
// occurrence each, additions append.
func applyToRemote(remote []user, ps *Patchset[string, user, user]) []user {
	out := append([]user(nil), remote...)
	for _, ins := range ps.Instructions {
		switch ins.Op {
		case OpDelete:
			for i, r := range out {
				if r == ins.Delete {
					out = append(out[:i], out[i+1:]...)
					break
				}
			}
		case OpAdd:
			out = append(out, ins.Add)
		}
	}
	return out
}
