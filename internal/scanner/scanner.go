// Package scanner turns the reader's character stream into a token
// stream, tracking block indentation and simple-key candidates the way
// the teacher library's scannerc.go does, generalized to the pull-based
// NextToken contract this core exposes to the parser.
package scanner

import (
	"fmt"
	"strings"

	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/reader"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Error is a scanner-stage failure.
type Error struct {
	Context     string
	ContextMark mark.Mark
	Problem     string
	ProblemMark mark.Mark
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("scanner: %s at %s: %s at %s", e.Context, e.ContextMark, e.Problem, e.ProblemMark)
	}
	return fmt.Sprintf("scanner: %s at %s", e.Problem, e.ProblemMark)
}

// simpleKey records a candidate position for the key of an implicit
// mapping, per flow level.
type simpleKey struct {
	possible    bool
	required    bool
	tokenIndex  int // index into the absolute token stream (tokensParsed + len(pending))
	mark        mark.Mark
	charIndex   int
}

// Scanner is a pull-based tokenizer: call NextToken repeatedly until it
// returns a StreamEnd token (or an error).
type Scanner struct {
	rd *reader.Reader

	pending      []token.Token // tokens produced but not yet handed out
	tokensParsed int           // count of tokens already returned to the caller

	streamStartProduced bool
	streamEndProduced   bool

	indent  int
	indents []int

	flowLevel int

	simpleKeyAllowed bool
	simpleKeys       []simpleKey // simpleKeys[flowLevel]

	charIndex int // running count of characters consumed, for simple-key expiry

	tagDirectives []token.TagDirective
}

// New creates a Scanner pulling characters from rd.
func New(rd *reader.Reader) *Scanner {
	s := &Scanner{
		rd:               rd,
		indent:           -1,
		simpleKeyAllowed: true,
	}
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	return s
}

// NextToken returns the next token, or an error.
func (s *Scanner) NextToken() (token.Token, error) {
	if s.streamEndProduced {
		return token.Token{Kind: token.StreamEnd}, nil
	}
	for {
		waiting := len(s.pending) == 0
		if !waiting && s.pending[len(s.pending)-1].Kind != token.StreamEnd {
			// The head token may still turn out to be a simple key, and
			// then a Key token has to be inserted in front of it.
			for _, sk := range s.simpleKeys {
				if sk.possible && sk.tokenIndex == s.tokensParsed {
					waiting = true
				}
			}
		}
		if !waiting {
			break
		}
		if err := s.fetchMoreTokens(); err != nil {
			return token.Token{}, err
		}
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	s.tokensParsed++
	if t.Kind == token.StreamEnd {
		s.streamEndProduced = true
	}
	return t, nil
}

func (s *Scanner) emit(t token.Token) {
	s.pending = append(s.pending, t)
}

// nextTokenIndex is the absolute index the next emitted token will have,
// used to retroactively insert a Key token before an already-queued one.
func (s *Scanner) nextTokenIndex() int {
	return s.tokensParsed + len(s.pending)
}

func (s *Scanner) insertAt(i int, t token.Token) {
	s.pending = append(s.pending, token.Token{})
	copy(s.pending[i-s.tokensParsed+1:], s.pending[i-s.tokensParsed:])
	s.pending[i-s.tokensParsed] = t
}

func (s *Scanner) fail(problem string) error {
	return &Error{Problem: problem, ProblemMark: s.rd.Mark()}
}

func (s *Scanner) failAt(context string, contextMark mark.Mark, problem string) error {
	return &Error{Context: context, ContextMark: contextMark, Problem: problem, ProblemMark: s.rd.Mark()}
}

// fetchMoreTokens runs the scanner's token-fetch loop (spec §4.2) until
// at least one token has been queued.
func (s *Scanner) fetchMoreTokens() error {
	if !s.streamStartProduced {
		s.emit(token.Token{Kind: token.StreamStart, Start: s.rd.Mark(), End: s.rd.Mark()})
		s.streamStartProduced = true
		return nil
	}

	if err := s.scanToNextToken(); err != nil {
		return err
	}
	if err := s.staleSimpleKeys(); err != nil {
		return err
	}
	if err := s.unwindIndent(s.rd.Mark().Column); err != nil {
		return err
	}

	c := s.rd.Peek(0)
	switch {
	case c == 0:
		return s.fetchStreamEnd()
	case s.rd.Mark().Column == 0 && c == '%':
		return s.fetchDirective()
	case s.rd.Mark().Column == 0 && s.prefixIs("---") && isBlankz(s.rd.Peek(3)):
		return s.fetchDocumentIndicator(token.DocumentStart)
	case s.rd.Mark().Column == 0 && s.prefixIs("...") && isBlankz(s.rd.Peek(3)):
		return s.fetchDocumentIndicator(token.DocumentEnd)
	case c == '[':
		return s.fetchFlowCollectionStart(token.FlowSequenceStart)
	case c == '{':
		return s.fetchFlowCollectionStart(token.FlowMappingStart)
	case c == ']':
		return s.fetchFlowCollectionEnd(token.FlowSequenceEnd)
	case c == '}':
		return s.fetchFlowCollectionEnd(token.FlowMappingEnd)
	case c == ',':
		return s.fetchFlowEntry()
	case c == '-' && isBlankz(s.rd.Peek(1)):
		return s.fetchBlockEntry()
	case c == '?' && (s.flowLevel > 0 || isBlankz(s.rd.Peek(1))):
		return s.fetchKey()
	case c == ':' && (s.flowLevel > 0 || isBlankz(s.rd.Peek(1))):
		return s.fetchValue()
	case c == '*':
		return s.fetchAnchorOrAlias(token.Alias)
	case c == '&':
		return s.fetchAnchorOrAlias(token.Anchor)
	case c == '!':
		return s.fetchTag()
	case c == '|' && s.flowLevel == 0:
		return s.fetchBlockScalar(token.Literal)
	case c == '>' && s.flowLevel == 0:
		return s.fetchBlockScalar(token.Folded)
	case c == '\'':
		return s.fetchFlowScalar(token.SingleQuoted)
	case c == '"':
		return s.fetchFlowScalar(token.DoubleQuoted)
	case s.isPlainStart(c):
		return s.fetchPlainScalar()
	default:
		return s.fail(fmt.Sprintf("found character %q that cannot start any token", c))
	}
}

func (s *Scanner) prefixIs(p string) bool {
	for i, r := range p {
		if s.rd.Peek(i) != r {
			return false
		}
	}
	return true
}

func isBlankz(c rune) bool {
	return c == ' ' || c == '\t' || isBreakRune(c) || c == 0
}

func isBreakRune(c rune) bool {
	switch c {
	case '\n', '\r', 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func isSpace(c rune) bool { return c == ' ' }

// scanToNextToken skips whitespace, comments, and line breaks, allowing
// a new simple key after each line break in block context.
func (s *Scanner) scanToNextToken() error {
	for {
		for s.rd.Peek(0) == ' ' || (s.flowLevel > 0 && s.rd.Peek(0) == '\t') {
			s.skip(1)
		}
		if s.rd.Peek(0) == '#' {
			for !isBreakz(s.rd.Peek(0)) {
				s.skip(1)
			}
		}
		if isBreakz(s.rd.Peek(0)) && s.rd.Peek(0) != 0 {
			s.skipLine()
			if s.flowLevel == 0 {
				s.simpleKeyAllowed = true
			}
			continue
		}
		break
	}
	return nil
}

func isBreakz(c rune) bool { return isBreakRune(c) || c == 0 }

func (s *Scanner) skip(n int) {
	s.rd.Forward(n)
	s.charIndex += n
}

func (s *Scanner) skipLine() {
	if s.rd.Peek(0) == '\r' && s.rd.Peek(1) == '\n' {
		s.rd.Forward(2)
		s.charIndex += 2
		return
	}
	s.rd.Forward(1)
	s.charIndex++
}

// staleSimpleKeys discards simple-key candidates that can no longer be
// completed: the line changed, or more than 1024 characters passed.
func (s *Scanner) staleSimpleKeys() error {
	for i := range s.simpleKeys {
		sk := &s.simpleKeys[i]
		if sk.possible && (sk.mark.Line != s.rd.Mark().Line || s.charIndex-sk.charIndex > 1024) {
			if sk.required {
				return s.fail("could not find expected ':' for simple key")
			}
			sk.possible = false
		}
	}
	return nil
}

// unwindIndent pops the indent stack down to col, emitting BlockEnd for
// each level closed.
func (s *Scanner) unwindIndent(col int) error {
	if s.flowLevel > 0 {
		return nil
	}
	for s.indent > col {
		s.indent = s.indents[len(s.indents)-1]
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(token.Token{Kind: token.BlockEnd, Start: s.rd.Mark(), End: s.rd.Mark()})
	}
	return nil
}

func (s *Scanner) rollIndent(col, tokenNumber int, kind token.Kind, m mark.Mark) {
	if s.flowLevel > 0 {
		return
	}
	if s.indent < col {
		s.indents = append(s.indents, s.indent)
		s.indent = col
		idx := tokenNumber
		if idx < 0 {
			s.emit(token.Token{Kind: kind, Start: m, End: m})
			return
		}
		s.insertAt(idx, token.Token{Kind: kind, Start: m, End: m})
	}
}

// savePossibleSimpleKey records that the token about to be emitted might
// be the key of an implicit mapping.
func (s *Scanner) savePossibleSimpleKey() error {
	required := s.flowLevel == 0 && s.indent == s.rd.Mark().Column
	if s.simpleKeyAllowed {
		if required {
			if err := s.removeSimpleKey(); err != nil {
				return err
			}
		}
		s.simpleKeys[s.flowLevel] = simpleKey{
			possible:   true,
			required:   required,
			tokenIndex: s.nextTokenIndex(),
			mark:       s.rd.Mark(),
			charIndex:  s.charIndex,
		}
	}
	return nil
}

func (s *Scanner) removeSimpleKey() error {
	sk := &s.simpleKeys[s.flowLevel]
	if sk.possible && sk.required {
		return s.fail("could not find expected ':' for simple key")
	}
	sk.possible = false
	return nil
}

func (s *Scanner) increaseFlowLevel() {
	s.simpleKeys = append(s.simpleKeys, simpleKey{})
	s.flowLevel++
}

func (s *Scanner) decreaseFlowLevel() {
	if s.flowLevel > 0 {
		s.flowLevel--
		s.simpleKeys = s.simpleKeys[:len(s.simpleKeys)-1]
	}
}

func (s *Scanner) fetchStreamEnd() error {
	if err := s.rd.Err(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	s.simpleKeys[s.flowLevel] = simpleKey{}
	if err := s.unwindIndent(-1); err != nil {
		return err
	}
	m := s.rd.Mark()
	s.emit(token.Token{Kind: token.StreamEnd, Start: m, End: m})
	return nil
}

func (s *Scanner) fetchDocumentIndicator(kind token.Kind) error {
	if err := s.unwindIndent(-1); err != nil {
		return err
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()
	s.skip(3)
	s.emit(token.Token{Kind: kind, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchFlowCollectionStart(kind token.Kind) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.increaseFlowLevel()
	s.simpleKeyAllowed = true
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: kind, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchFlowCollectionEnd(kind token.Kind) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.decreaseFlowLevel()
	s.simpleKeyAllowed = false
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: kind, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchFlowEntry() error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: token.FlowEntry, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchBlockEntry() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return s.fail("block sequence entries are not allowed in this context")
		}
		s.rollIndent(s.rd.Mark().Column, -1, token.BlockSequenceStart, s.rd.Mark())
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: token.BlockEntry, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchKey() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return s.fail("mapping keys are not allowed in this context")
		}
		s.rollIndent(s.rd.Mark().Column, -1, token.BlockMappingStart, s.rd.Mark())
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = s.flowLevel == 0
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: token.Key, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchValue() error {
	sk := s.simpleKeys[s.flowLevel]
	if sk.possible {
		// Retroactively insert a Key token (and a block mapping start
		// if needed) before the token that turned out to be the key.
		s.simpleKeys[s.flowLevel].possible = false
		start := sk.mark
		s.insertAt(sk.tokenIndex, token.Token{Kind: token.Key, Start: start, End: start})
		if s.flowLevel == 0 {
			s.rollIndent(sk.mark.Column, sk.tokenIndex, token.BlockMappingStart, start)
		}
		s.simpleKeyAllowed = false
	} else {
		if s.flowLevel == 0 {
			if !s.simpleKeyAllowed {
				return s.fail("mapping values are not allowed in this context")
			}
			s.rollIndent(s.rd.Mark().Column, -1, token.BlockMappingStart, s.rd.Mark())
		}
		s.simpleKeyAllowed = s.flowLevel == 0
		if err := s.removeSimpleKey(); err != nil {
			return err
		}
	}
	start := s.rd.Mark()
	s.skip(1)
	s.emit(token.Token{Kind: token.Value, Start: start, End: s.rd.Mark()})
	return nil
}

func (s *Scanner) fetchAnchorOrAlias(kind token.Kind) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()
	s.skip(1)
	var sb strings.Builder
	for isAlpha(s.rd.Peek(0)) {
		sb.WriteRune(s.rd.Peek(0))
		s.skip(1)
	}
	if sb.Len() == 0 {
		what := "anchor"
		if kind == token.Alias {
			what = "alias"
		}
		return s.fail("while scanning " + what + ", did not find expected alphabetic or numeric character")
	}
	s.emit(token.Token{Kind: kind, Start: start, End: s.rd.Mark(), Value: sb.String()})
	return nil
}

func isAlpha(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' || c == '-'
}

func (s *Scanner) fetchTag() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()

	var handle, suffix string
	if s.rd.Peek(1) == '<' {
		s.skip(2)
		var sb strings.Builder
		for s.rd.Peek(0) != '>' {
			if s.rd.Peek(0) == 0 || isBlankz(s.rd.Peek(0)) {
				return s.fail("while scanning a tag, did not find the expected '>'")
			}
			sb.WriteRune(s.rd.Peek(0))
			s.skip(1)
		}
		s.skip(1)
		suffix = sb.String()
	} else {
		s.skip(1)
		var hb strings.Builder
		hb.WriteByte('!')
		if s.rd.Peek(0) == '!' {
			hb.WriteByte('!')
			s.skip(1)
		} else {
			for isAlpha(s.rd.Peek(0)) {
				hb.WriteRune(s.rd.Peek(0))
				s.skip(1)
			}
			if s.rd.Peek(0) == '!' {
				hb.WriteByte('!')
				s.skip(1)
			} else {
				// No second '!': this was the non-specific "!" plus a
				// suffix, not a handle.
				suffix = hb.String()[1:]
				hb.Reset()
				hb.WriteByte('!')
			}
		}
		if suffix == "" {
			var sb strings.Builder
			for isTagChar(s.rd.Peek(0)) {
				sb.WriteRune(s.rd.Peek(0))
				s.skip(1)
			}
			suffix = sb.String()
		}
		handle = hb.String()
	}
	if !isBlankz(s.rd.Peek(0)) {
		return s.fail("while scanning a tag, did not find expected whitespace or line break")
	}
	s.emit(token.Token{Kind: token.Tag, Start: start, End: s.rd.Mark(), Value: handle, Suffix: suffix})
	return nil
}

func isTagChar(c rune) bool {
	if isBlankz(c) {
		return false
	}
	switch c {
	case ',', '[', ']', '{', '}':
		return false
	}
	return true
}

func (s *Scanner) fetchDirective() error {
	if err := s.unwindIndent(-1); err != nil {
		return err
	}
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()
	s.skip(1)
	var name strings.Builder
	for isAlpha(s.rd.Peek(0)) {
		name.WriteRune(s.rd.Peek(0))
		s.skip(1)
	}
	switch name.String() {
	case "YAML":
		return s.scanVersionDirective(start)
	case "TAG":
		return s.scanTagDirective(start)
	default:
		// Unrecognized directive: skip its body, emit nothing.
		for !isBreakz(s.rd.Peek(0)) {
			s.skip(1)
		}
		s.scanDirectiveTail()
		_ = start
		return s.fetchMoreTokens()
	}
}

func (s *Scanner) skipBlanks() {
	for s.rd.Peek(0) == ' ' || s.rd.Peek(0) == '\t' {
		s.skip(1)
	}
}

func (s *Scanner) scanDirectiveTail() {
	s.skipBlanks()
	if isBreakz(s.rd.Peek(0)) && s.rd.Peek(0) != 0 {
		s.skipLine()
	}
}

func (s *Scanner) scanVersionDirective(start mark.Mark) error {
	s.skipBlanks()
	major, err := s.scanDecimal()
	if err != nil {
		return err
	}
	if s.rd.Peek(0) != '.' {
		return s.fail("while scanning a %YAML directive, did not find expected digit or '.' character")
	}
	s.skip(1)
	minor, err := s.scanDecimal()
	if err != nil {
		return err
	}
	if major != 1 {
		return s.fail("found incompatible YAML document (version 1.x is required)")
	}
	s.scanDirectiveTail()
	s.emit(token.Token{Kind: token.VersionDirective, Start: start, End: s.rd.Mark(), Version: token.Version{Major: int8(major), Minor: int8(minor)}})
	return nil
}

func (s *Scanner) scanDecimal() (int, error) {
	if !isDigit(s.rd.Peek(0)) {
		return 0, s.fail("while scanning a directive, did not find expected digit")
	}
	n := 0
	for isDigit(s.rd.Peek(0)) {
		n = n*10 + int(s.rd.Peek(0)-'0')
		s.skip(1)
	}
	return n, nil
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func (s *Scanner) scanTagDirective(start mark.Mark) error {
	s.skipBlanks()
	handle, err := s.scanTagHandle(true)
	if err != nil {
		return err
	}
	s.skipBlanks()
	prefix, err := s.scanTagPrefix()
	if err != nil {
		return err
	}
	s.scanDirectiveTail()
	td := token.TagDirective{Handle: handle, Prefix: prefix}
	s.tagDirectives = append(s.tagDirectives, td)
	s.emit(token.Token{Kind: token.TagDirective, Start: start, End: s.rd.Mark(), Value: handle, Prefix: prefix})
	return nil
}

func (s *Scanner) scanTagHandle(directive bool) (string, error) {
	if s.rd.Peek(0) != '!' {
		return "", s.fail("while scanning a tag, did not find expected '!'")
	}
	var sb strings.Builder
	sb.WriteByte('!')
	s.skip(1)
	for isAlpha(s.rd.Peek(0)) {
		sb.WriteRune(s.rd.Peek(0))
		s.skip(1)
	}
	if s.rd.Peek(0) == '!' {
		sb.WriteByte('!')
		s.skip(1)
	} else if directive && sb.Len() != 1 {
		return "", s.fail("while scanning a tag directive, did not find expected '!'")
	}
	return sb.String(), nil
}

func (s *Scanner) scanTagPrefix() (string, error) {
	var sb strings.Builder
	if s.rd.Peek(0) == '[' || s.rd.Peek(0) == ']' {
		return "", s.fail("while parsing a tag, found unexpected character")
	}
	for isTagChar(s.rd.Peek(0)) || s.rd.Peek(0) == '!' {
		sb.WriteRune(s.rd.Peek(0))
		s.skip(1)
	}
	if sb.Len() == 0 {
		return "", s.fail("while parsing a tag, did not find expected tag URI")
	}
	return sb.String(), nil
}

func (s *Scanner) isPlainStart(c rune) bool {
	if c == 0 {
		return false
	}
	switch c {
	case '-', '?', ':', ',', '[', ']', '{', '}', '#', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		// These may still start a plain scalar in some contexts; that
		// is decided by the caller's dispatch order (each has its own
		// case ahead of plain scalar in fetchMoreTokens), so by the
		// time we get here they've already been ruled out except where
		// explicitly permitted below.
		switch c {
		case '-', ':':
			return !isBlankz(s.rd.Peek(1))
		case '?':
			return s.flowLevel == 0 && !isBlankz(s.rd.Peek(1))
		}
		return false
	}
	return true
}
