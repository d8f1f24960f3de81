package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/converge/internal/canon"
	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/reconcile"
)

// PatchsetSnapshot renders a patchset as canonical JSON for deterministic
// golden comparison. Canonical form keeps the snapshot stable across map
// iteration order and attr key ordering in scenario files.
func PatchsetSnapshot(name string, ps *entity.Patchset) ([]byte, error) {
	instructions := make([]any, len(ps.Instructions))
	for i, ins := range ps.Instructions {
		entry := map[string]any{
			"op":  string(ins.Op),
			"key": ins.Key,
		}
		switch ins.Op {
		case reconcile.OpAdd:
			entry["record"] = ins.Add
		case reconcile.OpDelete:
			entry["record"] = ins.Delete
			entry["fingerprint"] = ins.Fingerprint
		}
		instructions[i] = entry
	}

	return canon.Marshal(map[string]any{
		"scenario":     name,
		"instructions": instructions,
	})
}

// RunWithGolden executes a scenario, checks its expectations, and compares
// the patchset snapshot against testdata/golden/{scenario.Name}.golden.
// Error scenarios (Expect.Error set) skip the golden comparison.
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	result := Run(s)
	for _, failure := range result.Check() {
		t.Errorf("scenario %s: %v", s.Name, failure)
	}
	if result.Err != nil || t.Failed() {
		return
	}

	snapshot, err := PatchsetSnapshot(s.Name, result.Patchset)
	if err != nil {
		t.Fatalf("scenario %s: rendering snapshot: %v", s.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, "golden/"+s.Name, snapshot)
}
