package engine

import (
	"errors"
	"fmt"
)

// CycleError represents a failure of one reconciliation cycle.
//
// Cycle failures:
//   - Snapshot failed: a state provider could not produce its collection
//   - Reconcile failed: the core rejected the snapshots (precondition violation)
//   - Apply failed: the applier could not execute the patchset
type CycleError struct {
	// Code identifies the failed stage.
	Code CycleErrorCode

	// Token identifies the affected cycle.
	Token string

	// Cycle is the logical cycle number.
	Cycle int64

	// Err is the underlying error.
	Err error
}

// CycleErrorCode categorizes cycle failures.
type CycleErrorCode string

const (
	// ErrCodeSnapshotFailed indicates a local or remote snapshot failure.
	ErrCodeSnapshotFailed CycleErrorCode = "SNAPSHOT_FAILED"

	// ErrCodeReconcileFailed indicates the core rejected the snapshots.
	ErrCodeReconcileFailed CycleErrorCode = "RECONCILE_FAILED"

	// ErrCodeApplyFailed indicates the applier failed.
	ErrCodeApplyFailed CycleErrorCode = "APPLY_FAILED"
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: cycle %d (token=%s): %v", e.Code, e.Cycle, e.Token, e.Err)
}

// Unwrap returns the underlying error.
func (e *CycleError) Unwrap() error {
	return e.Err
}

// IsSnapshotError returns true if the error is a snapshot failure.
// Uses errors.As to handle wrapped errors.
func IsSnapshotError(err error) bool {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeSnapshotFailed
	}
	return false
}

// IsApplyError returns true if the error is an applier failure.
func IsApplyError(err error) bool {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeApplyFailed
	}
	return false
}
