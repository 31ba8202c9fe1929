package token

import (
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	if got, want := Scalar.String(), "scalar"; got != want {
		t.Fatalf("Scalar.String() = %q, want %q", got, want)
	}
	if got := Kind(999).String(); !strings.HasPrefix(got, "token(") {
		t.Fatalf("out-of-range Kind.String() = %q, want token(...) form", got)
	}
}

func TestScalarStyleString(t *testing.T) {
	cases := map[ScalarStyle]string{
		Plain:        "plain",
		SingleQuoted: "single-quoted",
		DoubleQuoted: "double-quoted",
		Literal:      "literal",
		Folded:       "folded",
		NoScalarStyle: "any",
	}
	for style, want := range cases {
		if got := style.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", style, got, want)
		}
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Scalar}
	if got := tok.String(); !strings.HasPrefix(got, "scalar@") {
		t.Fatalf("Token.String() = %q, want scalar@... form", got)
	}
}
