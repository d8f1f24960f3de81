package source

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadError represents an error that occurred while loading desired state.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all loaders.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeScanError  = "E002" // Directory scan error
	ErrCodeNoFiles    = "E003" // No source files found
	ErrCodeLoadFailed = "E004" // CUE/YAML load failed
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeInvalid    = "E006" // Schema violation
	ErrCodeDecode     = "E007" // Decode into entities failed

	// Entity-level validation errors
	ErrCodeMissingID   = "E101" // Entity without an id
	ErrCodeDuplicateID = "E102" // Duplicate entity id in desired state
)
