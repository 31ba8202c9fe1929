package emitter

import (
	"testing"

	"github.com/halyard-yaml/halyard/internal/token"
)

func TestChooseScalarStylePlain(t *testing.T) {
	a := analyzeScalar("hello")
	if got := chooseScalarStyle(a, token.NoScalarStyle, false, false); got != token.Plain {
		t.Fatalf("chooseScalarStyle(hello) = %v, want Plain", got)
	}
}

func TestChooseScalarStyleEmptyIsQuoted(t *testing.T) {
	a := analyzeScalar("")
	if got := chooseScalarStyle(a, token.NoScalarStyle, false, false); got == token.Plain {
		t.Fatalf("chooseScalarStyle(\"\") = Plain, want a quoted style")
	}
}

func TestChooseScalarStyleLeadingIndicatorForcesQuote(t *testing.T) {
	a := analyzeScalar("- not a sequence entry")
	if got := chooseScalarStyle(a, token.NoScalarStyle, false, false); got == token.Plain {
		t.Fatal("leading '- ' should not be emitted as a plain scalar")
	}
}

func TestChooseScalarStyleCanonicalForcesDoubleQuoted(t *testing.T) {
	a := analyzeScalar("hello")
	if got := chooseScalarStyle(a, token.NoScalarStyle, true, false); got != token.DoubleQuoted {
		t.Fatalf("chooseScalarStyle(canonical) = %v, want DoubleQuoted", got)
	}
}

func TestAnalyzeScalarDetectsMultiline(t *testing.T) {
	a := analyzeScalar("line one\nline two")
	if !a.multiline {
		t.Fatal("multiline = false, want true for a value containing a line break")
	}
	if a.allowBlockPlain {
		t.Fatal("allowBlockPlain = true, want false for a multiline value")
	}
}

func TestAnalyzeScalarSpecialCharForcesQuoted(t *testing.T) {
	a := analyzeScalar("a\x01b")
	if !a.specialChars {
		t.Fatal("specialChars = false, want true for a value containing a control character")
	}
	if got := chooseScalarStyle(a, token.NoScalarStyle, false, false); got != token.DoubleQuoted {
		t.Fatalf("chooseScalarStyle with special chars = %v, want DoubleQuoted", got)
	}
}
