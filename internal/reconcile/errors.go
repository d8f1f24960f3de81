package reconcile

import (
	"errors"
	"fmt"
)

// Error represents a precondition violation detected during indexing.
//
// Precondition violations:
//   - Invalid record: a record's primary key cannot be resolved
//   - Invalid state: the local collection contains two records sharing a key
//
// Both abort reconciliation synchronously with no partial patchset. There is
// no recoverable error inside this package; transient failure handling
// belongs to the surrounding system.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Collection names the offending input, "local" or "remote".
	Collection string

	// Position is the index of the offending record within its input
	// collection, or -1 when the violation spans records.
	Position int

	// Key is the rendered primary key, when it could be resolved.
	Key string

	// Err is the underlying extractor error, if any.
	Err error
}

// ErrorCode categorizes reconciliation precondition violations.
type ErrorCode string

const (
	// ErrCodeInvalidRecord indicates a record whose key cannot be resolved.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"

	// ErrCodeInvalidState indicates duplicate keys in the local collection.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (collection=%s, key=%s)", e.Code, e.Message, e.Collection, e.Key)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s (collection=%s, position=%d)", e.Code, e.Message, e.Collection, e.Position)
	}
	return fmt.Sprintf("%s: %s (collection=%s)", e.Code, e.Message, e.Collection)
}

// Unwrap returns the underlying extractor error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidRecord returns true if the error is a key resolution failure.
// Uses errors.As to handle wrapped errors.
func IsInvalidRecord(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidRecord
	}
	return false
}

// IsInvalidState returns true if the error is a local duplicate-key violation.
// Uses errors.As to handle wrapped errors.
func IsInvalidState(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidState
	}
	return false
}

// newInvalidRecord creates an Error for an unresolvable record key.
func newInvalidRecord(collection string, position int, cause error) *Error {
	return &Error{
		Code:       ErrCodeInvalidRecord,
		Message:    "record primary key cannot be resolved",
		Collection: collection,
		Position:   position,
		Err:        cause,
	}
}

// newInvalidState creates an Error for a duplicated local key.
func newInvalidState(key string, position int) *Error {
	return &Error{
		Code:       ErrCodeInvalidState,
		Message:    "local collection contains duplicate primary key",
		Collection: "local",
		Position:   position,
		Key:        key,
	}
}
