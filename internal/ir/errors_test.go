package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptErrorMessage(t *testing.T) {
	err := NewSymbolError(CodeRulePrecondition, 't', 3, errors.New("no face left of edge"))
	assert.Equal(t, `RULE_PRECONDITION_VIOLATED: no face left of edge (symbol='t', position=3)`, err.Error())

	stage := NewStageError(CodeNonManifold, errors.New("edge shared by 3 faces"))
	assert.Equal(t, "NON_MANIFOLD: edge shared by 3 faces", stage.Error())
}

func TestCodeOfWrapped(t *testing.T) {
	base := NewUnknownSymbolError('x', 0)
	wrapped := fmt.Errorf("replay: %w", base)

	assert.Equal(t, CodeUnknownSymbol, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeUnknownSymbol))
	assert.False(t, IsCode(wrapped, CodeNonManifold))
	assert.False(t, IsCode(nil, CodeUnknownSymbol))
	assert.Equal(t, FailureCode(""), CodeOf(errors.New("plain")))
}

func TestAttemptErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewStageError(CodeUnificationFailed, cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsReplayFailure(t *testing.T) {
	replay := map[FailureCode]bool{
		CodeUnknownSymbol:     true,
		CodeRulePrecondition:  true,
		CodeCursorInvariant:   true,
		CodeUnificationFailed: true,
		CodeSmoothingFailed:   false,
		CodeNonManifold:       false,
		CodeBoundaryChanged:   false,
	}
	assert.Len(t, FailureCodes, len(replay))
	for _, code := range FailureCodes {
		assert.Equal(t, replay[code], code.IsReplayFailure(), code)
	}
}
