package halyard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/scanner"
)

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "scanner", ScannerErrorKind.String())
	require.Equal(t, "composer", ComposerErrorKind.String())
	require.Equal(t, "unknown", ErrorKind(99).String())
}

func TestErrorErrorIncludesContextAndProblem(t *testing.T) {
	e := &Error{
		Kind:        ParserErrorKind,
		Context:     "while parsing a block mapping",
		ContextMark: mark.Mark{Line: 1, Column: 1},
		Problem:     "did not find expected key",
		ProblemMark: mark.Mark{Line: 2, Column: 1},
	}
	msg := e.Error()
	require.Contains(t, msg, "while parsing a block mapping")
	require.Contains(t, msg, "did not find expected key")
}

func TestErrorErrorWithoutContext(t *testing.T) {
	e := &Error{Kind: ScannerErrorKind, Problem: "found character that cannot start any token"}
	msg := e.Error()
	require.Contains(t, msg, "found character that cannot start any token")
	require.NotContains(t, msg, " at : ")
}

func TestErrorUnwrapsUnderlyingStageError(t *testing.T) {
	inner := &scanner.Error{Problem: "bad indentation"}
	wrapped := wrapError(ScannerErrorKind, inner)

	var target *scanner.Error
	require.True(t, errors.As(wrapped, &target))
	require.Same(t, inner, target)
}

func TestWrapErrorPassesThroughAlreadyWrapped(t *testing.T) {
	original := &Error{Kind: ComposerErrorKind, Problem: "found duplicate anchor"}
	require.Same(t, original, wrapError(ParserErrorKind, original))
}

func TestWrapErrorNilIsNil(t *testing.T) {
	require.Nil(t, wrapError(ScannerErrorKind, nil))
}
