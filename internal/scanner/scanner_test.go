package scanner

import (
	"testing"

	"github.com/halyard-yaml/halyard/internal/reader"
	"github.com/halyard-yaml/halyard/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := New(reader.NewBytes([]byte(src)))
	var toks []token.Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.StreamEnd {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func assertKinds(t *testing.T, got []token.Kind, want ...token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token kinds = %v, want %v", got, want)
		}
	}
}

func TestScanFlowMapping(t *testing.T) {
	toks := scanAll(t, "{a: 1, b: 2}\n")
	assertKinds(t, kinds(toks),
		token.StreamStart, token.FlowMappingStart,
		token.Key, token.Scalar, token.Value, token.Scalar,
		token.FlowEntry,
		token.Key, token.Scalar, token.Value, token.Scalar,
		token.FlowMappingEnd, token.StreamEnd,
	)
}

func TestScanBlockSequence(t *testing.T) {
	toks := scanAll(t, "- a\n- b\n")
	assertKinds(t, kinds(toks),
		token.StreamStart, token.BlockSequenceStart,
		token.BlockEntry, token.Scalar,
		token.BlockEntry, token.Scalar,
		token.BlockEnd, token.StreamEnd,
	)
}

func TestScanBlockMappingSimpleKey(t *testing.T) {
	toks := scanAll(t, "key: value\n")
	assertKinds(t, kinds(toks),
		token.StreamStart, token.BlockMappingStart,
		token.Key, token.Scalar, token.Value, token.Scalar,
		token.BlockEnd, token.StreamEnd,
	)
	if got, want := toks[3].Value, "key"; got != want {
		t.Fatalf("key token value = %q, want %q", got, want)
	}
}

func TestScanAnchorAliasAndTag(t *testing.T) {
	toks := scanAll(t, "- &a !!str foo\n- *a\n")
	ks := kinds(toks)
	assertKinds(t, ks,
		token.StreamStart, token.BlockSequenceStart,
		token.BlockEntry, token.Anchor, token.Tag, token.Scalar,
		token.BlockEntry, token.Alias,
		token.BlockEnd, token.StreamEnd,
	)
}

func TestScanVersionDirective(t *testing.T) {
	toks := scanAll(t, "%YAML 1.1\n---\nfoo\n")
	ks := kinds(toks)
	assertKinds(t, ks,
		token.StreamStart, token.VersionDirective, token.DocumentStart,
		token.Scalar, token.StreamEnd,
	)
	if v := toks[1].Version; v.Major != 1 || v.Minor != 1 {
		t.Fatalf("Version = %+v, want {1 1}", v)
	}
}

func TestScanDoubleQuotedEscape(t *testing.T) {
	toks := scanAll(t, "\"a\\nb\"\n")
	ks := kinds(toks)
	assertKinds(t, ks, token.StreamStart, token.Scalar, token.StreamEnd)
	if got, want := toks[1].Value, "a\nb"; got != want {
		t.Fatalf("double-quoted value = %q, want %q", got, want)
	}
}

func TestScanSingleQuotedEscape(t *testing.T) {
	toks := scanAll(t, "'c''d'\n")
	ks := kinds(toks)
	assertKinds(t, ks, token.StreamStart, token.Scalar, token.StreamEnd)
	if got, want := toks[1].Value, "c'd"; got != want {
		t.Fatalf("single-quoted value = %q, want %q", got, want)
	}
}

func TestUnrecognizedDirectiveSkipped(t *testing.T) {
	toks := scanAll(t, "%FOO bar baz\n---\nx\n")
	ks := kinds(toks)
	assertKinds(t, ks, token.StreamStart, token.DocumentStart, token.Scalar, token.StreamEnd)
}

func TestScanFoldedBlockScalarFoldsOrdinaryLines(t *testing.T) {
	toks := scanAll(t, ">\n  line one\n  line two\n")
	ks := kinds(toks)
	assertKinds(t, ks, token.StreamStart, token.Scalar, token.StreamEnd)
	if got, want := toks[1].Value, "line one line two\n"; got != want {
		t.Fatalf("folded value = %q, want %q", got, want)
	}
}

func TestScanFoldedBlockScalarDoesNotFoldMoreIndentedLines(t *testing.T) {
	// The middle line carries extra indentation beyond the block's
	// established indent (2 spaces here), so neither the break before
	// it nor the break after it is folded to a space.
	toks := scanAll(t, ">\n  normal\n    more indented\n  normal again\n")
	ks := kinds(toks)
	assertKinds(t, ks, token.StreamStart, token.Scalar, token.StreamEnd)
	want := "normal\nmore indented\nnormal again\n"
	if got := toks[1].Value; got != want {
		t.Fatalf("folded value = %q, want %q", got, want)
	}
}
