// Package entity defines the concrete record type flowing through the
// converge system: sources produce entities, the store snapshots and applies
// them, and the reconcile core diffs them. The core itself stays generic;
// entity is the glue binding it to the rest of the repo.
package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/converge/internal/canon"
	"github.com/roach88/converge/internal/reconcile"
)

// Entity is an identified record with an opaque attribute payload.
//
// ID is the primary key correlating a desired entity with its remote
// counterpart(s). Attrs carry arbitrary JSON-representable data; the system
// never interprets them beyond fingerprinting.
type Entity struct {
	ID    string         `json:"id" yaml:"id"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// ErrMissingID marks an entity whose primary key cannot be resolved.
var ErrMissingID = errors.New("entity has no id")

// Key extracts an entity's primary key. Satisfies reconcile.KeyFunc.
func Key(e Entity) (string, error) {
	if e.ID == "" {
		return "", ErrMissingID
	}
	return e.ID, nil
}

// Fingerprint computes the entity's content identity over its canonical JSON.
// Satisfies reconcile.FingerprintFunc.
func Fingerprint(e Entity) (string, error) {
	return canon.Fingerprint(e)
}

// CanonicalJSON renders the entity in canonical form. The store persists
// payloads in this form so that fingerprints recomputed from storage match
// the ones computed at reconcile time.
func (e Entity) CanonicalJSON() ([]byte, error) {
	return canon.Marshal(e)
}

// FromJSON decodes an entity from a JSON payload.
func FromJSON(data []byte) (Entity, error) {
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return Entity{}, fmt.Errorf("entity: decode: %w", err)
	}
	return e, nil
}

// Patchset and Instruction instantiate the generic core for entity records.
type (
	Patchset    = reconcile.Patchset[string, Entity, Entity]
	Instruction = reconcile.Instruction[string, Entity, Entity]
)

// Reconcile computes the patchset aligning a remote entity snapshot with the
// desired local one, using Key for identity and Fingerprint for
// duplicate-survivor selection.
func Reconcile(local, remote []Entity) (*Patchset, error) {
	rc := reconcile.Reconciler[string, Entity, Entity]{
		LocalKey:    Key,
		RemoteKey:   Key,
		Fingerprint: Fingerprint,
	}
	return rc.Reconcile(local, remote)
}
