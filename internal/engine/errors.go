package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error that stops a batch, as opposed to the
// per-string failures recorded in AttemptRecord.
//
// Runtime errors include:
//   - Invalid seed: the seed mesh is not a manifold quad mesh
//   - Invalid cursor: the starting cursor is not an edge of the seed
//   - Accounting mismatch: the run statistics violate an identity
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, when one was started.
	RunID string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidSeed indicates the seed mesh cannot be explored.
	ErrCodeInvalidSeed RuntimeErrorCode = "INVALID_SEED"

	// ErrCodeInvalidCursor indicates the starting cursor is not a seed edge.
	ErrCodeInvalidCursor RuntimeErrorCode = "INVALID_CURSOR"

	// ErrCodeAccountingMismatch indicates an accounting identity failed.
	ErrCodeAccountingMismatch RuntimeErrorCode = "ACCOUNTING_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, msg, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsAccountingError returns true if the error is an accounting mismatch.
// Uses errors.As to handle wrapped errors.
func IsAccountingError(err error) bool {
	return hasCode(err, ErrCodeAccountingMismatch)
}

// IsSetupError returns true if the error rejects the seed or the cursor.
func IsSetupError(err error) bool {
	return hasCode(err, ErrCodeInvalidSeed) || hasCode(err, ErrCodeInvalidCursor)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewInvalidSeedError creates a RuntimeError for an unusable seed mesh.
func NewInvalidSeedError(err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidSeed,
		Message: "seed mesh is not a manifold quad mesh",
		Err:     err,
	}
}

// NewInvalidCursorError creates a RuntimeError for a bad starting cursor.
func NewInvalidCursorError(cursor string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidCursor,
		Message: "starting cursor is not usable",
		Details: map[string]string{"cursor": cursor},
		Err:     err,
	}
}

// NewAccountingError creates a RuntimeError for a violated identity.
func NewAccountingError(identity string, got, want int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeAccountingMismatch,
		Message: fmt.Sprintf("%s: got %d, want %d", identity, got, want),
		Details: map[string]string{
			"identity": identity,
			"got":      fmt.Sprintf("%d", got),
			"want":     fmt.Sprintf("%d", want),
		},
	}
}
