package halyard

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/parser"
	"github.com/halyard-yaml/halyard/internal/reader"
	"github.com/halyard-yaml/halyard/internal/scanner"
)

// ErrorKind classifies which stage raised an Error, mirroring the
// stage boundaries the teacher library keeps between its reader,
// scanner/parser, and decoder error paths.
type ErrorKind int8

const (
	ReaderErrorKind ErrorKind = iota
	ScannerErrorKind
	ParserErrorKind
	ComposerErrorKind
	ConstructorErrorKind
	EmitterErrorKind
	RepresenterErrorKind
)

func (k ErrorKind) String() string {
	switch k {
	case ReaderErrorKind:
		return "reader"
	case ScannerErrorKind:
		return "scanner"
	case ParserErrorKind:
		return "parser"
	case ComposerErrorKind:
		return "composer"
	case ConstructorErrorKind:
		return "constructor"
	case EmitterErrorKind:
		return "emitter"
	case RepresenterErrorKind:
		return "representer"
	default:
		return "unknown"
	}
}

// Error is the single error type every public entry point returns. It
// carries both the mark of the construct that was being parsed
// (Context) and the mark of the specific problem, when both are known,
// plus the underlying stage error it wraps.
type Error struct {
	Kind        ErrorKind
	Context     string
	ContextMark mark.Mark
	Problem     string
	ProblemMark mark.Mark
	Subject     *Node // node printed after the message when set; no stage of this package sets it

	err error
}

func (e *Error) Error() string {
	var subj string
	if e.Subject != nil {
		subj = "\n" + e.Subject.GoString()
	}
	if e.Context != "" {
		return fmt.Sprintf("%s: %s at %s: %s at %s%s", e.Kind, e.Context, e.ContextMark, e.Problem, e.ProblemMark, subj)
	}
	return fmt.Sprintf("%s: %s at %s%s", e.Kind, e.Problem, e.ProblemMark, subj)
}

// Unwrap exposes the underlying stage error (reader/scanner/parser) so
// callers can errors.As into it for lower-level detail.
func (e *Error) Unwrap() error { return e.err }

func wrapError(kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	if he, ok := err.(*Error); ok {
		return he
	}
	switch e := err.(type) {
	case *reader.Error:
		return &Error{Kind: kind, Problem: e.Problem, ProblemMark: e.At, err: err}
	case *scanner.Error:
		return &Error{Kind: kind, Context: e.Context, ContextMark: e.ContextMark, Problem: e.Problem, ProblemMark: e.ProblemMark, err: err}
	case *parser.Error:
		return &Error{Kind: kind, Context: e.Context, ContextMark: e.ContextMark, Problem: e.Problem, ProblemMark: e.ProblemMark, err: err}
	default:
		return &Error{Kind: kind, Problem: err.Error(), err: err}
	}
}
