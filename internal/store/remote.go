package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/reconcile"
)

// ApplyStats summarizes the effect of applying one patchset.
// Skipped counts instructions that were already satisfied (idempotent no-ops).
type ApplyStats struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// RemoteSnapshot returns the current remote record set in seq order.
// Implements engine.RemoteSource.
func (s *Store) RemoteSnapshot(ctx context.Context) ([]entity.Entity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM remote_records ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying remote records: %w", err)
	}
	defer rows.Close()

	var entities []entity.Entity
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning remote record: %w", err)
		}
		e, err := entity.FromJSON(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding remote record: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// Apply executes a patchset against the store in one transaction.
// Implements engine.Applier.
//
// Each instruction is idempotent:
//   - an addition whose (entity_id, fingerprint) already exists is skipped
//   - a deletion matching no row is skipped
//
// A deletion removes exactly one row - the least seq matching the
// instruction's identity - never every same-id row. For byte-identical
// duplicates the identity cannot distinguish copies, so re-applying a stale
// patchset may remove the surviving copy; the next derive cycle restores it,
// preserving convergence.
func (s *Store) Apply(ctx context.Context, ps *entity.Patchset) (ApplyStats, error) {
	var stats ApplyStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("beginning apply transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ins := range ps.Instructions {
		switch ins.Op {
		case reconcile.OpAdd:
			added, err := applyAddition(ctx, tx, ins.Add)
			if err != nil {
				return ApplyStats{}, err
			}
			if added {
				stats.Added++
			} else {
				stats.Skipped++
			}
		case reconcile.OpDelete:
			deleted, err := applyDeletion(ctx, tx, ins.Key, ins.Fingerprint)
			if err != nil {
				return ApplyStats{}, err
			}
			if deleted {
				stats.Deleted++
			} else {
				stats.Skipped++
			}
		default:
			return ApplyStats{}, fmt.Errorf("unknown patchset op %q", ins.Op)
		}
	}

	if err := tx.Commit(); err != nil {
		return ApplyStats{}, fmt.Errorf("committing apply transaction: %w", err)
	}
	return stats, nil
}

// applyAddition inserts the record unless its exact content is already
// present. Returns true when a row was inserted.
func applyAddition(ctx context.Context, tx *sql.Tx, e entity.Entity) (bool, error) {
	payload, err := e.CanonicalJSON()
	if err != nil {
		return false, fmt.Errorf("encoding record %q: %w", e.ID, err)
	}
	fp, err := entity.Fingerprint(e)
	if err != nil {
		return false, fmt.Errorf("fingerprinting record %q: %w", e.ID, err)
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM remote_records WHERE entity_id = ? AND fingerprint = ? LIMIT 1",
		e.ID, fp).Scan(&exists)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to insert
	default:
		return false, fmt.Errorf("checking record %q: %w", e.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO remote_records (entity_id, fingerprint, payload) VALUES (?, ?, ?)",
		e.ID, fp, string(payload)); err != nil {
		return false, fmt.Errorf("inserting record %q: %w", e.ID, err)
	}
	return true, nil
}

// applyDeletion removes the least-seq row matching the instruction's
// identity. Returns true when a row was deleted.
func applyDeletion(ctx context.Context, tx *sql.Tx, entityID, fingerprint string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM remote_records
		WHERE seq = (
			SELECT seq FROM remote_records
			WHERE entity_id = ? AND fingerprint = ?
			ORDER BY seq LIMIT 1
		)`, entityID, fingerprint)
	if err != nil {
		return false, fmt.Errorf("deleting record %q: %w", entityID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting record %q: %w", entityID, err)
	}
	return n > 0, nil
}

// Seed inserts records verbatim, duplicates included. Intended for tests and
// for simulating remote drift.
func (s *Store) Seed(ctx context.Context, entities []entity.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entities {
		payload, err := e.CanonicalJSON()
		if err != nil {
			return fmt.Errorf("encoding record %q: %w", e.ID, err)
		}
		fp, err := entity.Fingerprint(e)
		if err != nil {
			return fmt.Errorf("fingerprinting record %q: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO remote_records (entity_id, fingerprint, payload) VALUES (?, ?, ?)",
			e.ID, fp, string(payload)); err != nil {
			return fmt.Errorf("seeding record %q: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of remote records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM remote_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting remote records: %w", err)
	}
	return n, nil
}
