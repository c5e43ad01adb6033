package ir

import (
	"errors"
	"fmt"
)

// FailureCode categorizes why a single string attempt was rejected.
//
// Every code is scoped to one string and is non-fatal to the batch:
// the attempt is recorded with its code and the batch moves on.
type FailureCode string

const (
	// CodeUnknownSymbol indicates a symbol absent from the alphabet or
	// without a registered rule.
	CodeUnknownSymbol FailureCode = "UNKNOWN_SYMBOL"

	// CodeRulePrecondition indicates a rule could not be applied given the
	// current cursor and mesh state.
	CodeRulePrecondition FailureCode = "RULE_PRECONDITION_VIOLATED"

	// CodeCursorInvariant indicates the cursor no longer denotes a live
	// directed edge after a rule was applied. This is a rule-set bug caught
	// before it can corrupt later symbols.
	CodeCursorInvariant FailureCode = "CURSOR_INVARIANT_BROKEN"

	// CodeUnificationFailed indicates mesh-wide face winding normalization
	// failed after a syntactically successful replay.
	CodeUnificationFailed FailureCode = "UNIFICATION_FAILED"

	// CodeSmoothingFailed indicates the relaxation step rejected the mesh.
	CodeSmoothingFailed FailureCode = "SMOOTHING_FAILED"

	// CodeNonManifold indicates the resulting mesh is not manifold.
	CodeNonManifold FailureCode = "NON_MANIFOLD"

	// CodeBoundaryChanged indicates the number of boundary loops differs
	// from the seed mesh.
	CodeBoundaryChanged FailureCode = "BOUNDARY_COUNT_CHANGED"
)

// FailureCodes lists every code in reporting order: automaton failures
// first, then validity filter rejections.
var FailureCodes = []FailureCode{
	CodeUnknownSymbol,
	CodeRulePrecondition,
	CodeCursorInvariant,
	CodeUnificationFailed,
	CodeSmoothingFailed,
	CodeNonManifold,
	CodeBoundaryChanged,
}

// IsReplayFailure reports whether the code is produced by the automaton
// driver (replay or unification), as opposed to the validity filter.
func (c FailureCode) IsReplayFailure() bool {
	switch c {
	case CodeUnknownSymbol, CodeRulePrecondition, CodeCursorInvariant, CodeUnificationFailed:
		return true
	}
	return false
}

// NoPosition marks an AttemptError that is not attributable to a symbol.
const NoPosition = -1

// AttemptError describes why one string attempt failed.
//
// Symbol and Position identify the failing symbol for automaton failures;
// for unification and filter failures Position is NoPosition.
type AttemptError struct {
	// Code identifies the failure category.
	Code FailureCode

	// Symbol is the symbol being applied when the failure occurred.
	Symbol rune

	// Position is the zero-based symbol index, or NoPosition.
	Position int

	// Message is a human-readable reason.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *AttemptError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Position != NoPosition {
		return fmt.Sprintf("%s: %s (symbol=%q, position=%d)", e.Code, msg, e.Symbol, e.Position)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *AttemptError) Unwrap() error {
	return e.Err
}

// NewUnknownSymbolError creates an UNKNOWN_SYMBOL error at position pos.
func NewUnknownSymbolError(symbol rune, pos int) *AttemptError {
	return &AttemptError{
		Code:     CodeUnknownSymbol,
		Symbol:   symbol,
		Position: pos,
		Message:  "symbol is not in the alphabet",
	}
}

// NewSymbolError creates an error attributed to the symbol at pos.
func NewSymbolError(code FailureCode, symbol rune, pos int, err error) *AttemptError {
	return &AttemptError{
		Code:     code,
		Symbol:   symbol,
		Position: pos,
		Err:      err,
	}
}

// NewStageError creates an error for a whole-mesh stage (unification or filter).
func NewStageError(code FailureCode, err error) *AttemptError {
	return &AttemptError{
		Code:     code,
		Position: NoPosition,
		Err:      err,
	}
}

// CodeOf returns the failure code of err, or "" if err is not an AttemptError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) FailureCode {
	var ae *AttemptError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsCode returns true if err is an AttemptError with the given code.
func IsCode(err error, code FailureCode) bool {
	return err != nil && CodeOf(err) == code
}
