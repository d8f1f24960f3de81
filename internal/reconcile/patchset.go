package reconcile

import (
	"cmp"
	"slices"
)

// Op identifies the kind of a patchset instruction.
type Op string

const (
	// OpAdd instructs the applier to create the local record remotely.
	OpAdd Op = "add"

	// OpDelete instructs the applier to remove one specific remote record.
	OpDelete Op = "delete"
)

// Instruction is a single add or delete step. There is no update variant.
//
// Exactly one of Add and Delete is meaningful, selected by Op; the other
// holds its type's zero value. Deletions carry the record's fingerprint so
// an applier can address one specific record among same-key duplicates.
type Instruction[K cmp.Ordered, L, R any] struct {
	Op  Op
	Key K

	// Add is the local record to create remotely (Op == OpAdd).
	Add L

	// Delete is the remote record to remove (Op == OpDelete).
	Delete R

	// Fingerprint is the content identity of Delete; empty for additions.
	Fingerprint string
}

// Patchset is the ordered instruction sequence that aligns remote with local.
//
// A Patchset is an immutable value after construction: it is safe to share
// across goroutines without synchronization. Instructions are sorted by key
// ascending; deletions under one key are ordered by fingerprint. Two calls
// whose inputs differ only in element order therefore produce patchsets that
// are element-for-element equal, not merely equal as sets.
type Patchset[K cmp.Ordered, L, R any] struct {
	Instructions []Instruction[K, L, R]
}

// Empty reports whether the patchset contains no instructions, i.e. the
// remote snapshot already matches local state.
func (p *Patchset[K, L, R]) Empty() bool {
	return len(p.Instructions) == 0
}

// Len returns the number of instructions.
func (p *Patchset[K, L, R]) Len() int {
	return len(p.Instructions)
}

// Additions returns the local records scheduled for creation, in patchset order.
func (p *Patchset[K, L, R]) Additions() []L {
	var out []L
	for _, ins := range p.Instructions {
		if ins.Op == OpAdd {
			out = append(out, ins.Add)
		}
	}
	return out
}

// Deletions returns the remote records scheduled for removal, in patchset order.
func (p *Patchset[K, L, R]) Deletions() []R {
	var out []R
	for _, ins := range p.Instructions {
		if ins.Op == OpDelete {
			out = append(out, ins.Delete)
		}
	}
	return out
}

// buildPatchset merges the operation sets into one deterministically ordered
// sequence. Keys ascend; a key contributes either its single addition or its
// deletions (already fingerprint-ordered by indexRemote). The fixed ordering
// rule is what lets order-invariance be asserted by structural equality.
func buildPatchset[K cmp.Ordered, L, R any](d delta[K, L, R]) *Patchset[K, L, R] {
	keys := make([]K, 0, len(d.additions)+len(d.deletions))
	for key := range d.additions {
		keys = append(keys, key)
	}
	for key := range d.deletions {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	instructions := make([]Instruction[K, L, R], 0, len(keys))
	for _, key := range keys {
		if rec, ok := d.additions[key]; ok {
			instructions = append(instructions, Instruction[K, L, R]{
				Op:  OpAdd,
				Key: key,
				Add: rec,
			})
			continue
		}
		for _, entry := range d.deletions[key] {
			instructions = append(instructions, Instruction[K, L, R]{
				Op:          OpDelete,
				Key:         key,
				Delete:      entry.record,
				Fingerprint: entry.fingerprint,
			})
		}
	}

	return &Patchset[K, L, R]{Instructions: instructions}
}
