package scanner

import (
	"strconv"
	"strings"

	"github.com/halyard-yaml/halyard/internal/token"
)

// fetchPlainScalar scans an unquoted scalar, folding line breaks the way
// a double-quoted scalar does, and stops at the first indicator that
// cannot appear in plain content (':' followed by a blank, '#' after a
// blank, ',' and the flow bracket/brace characters inside flow, a "---"
// or "..." marker at the start of a line, or a line whose indentation
// drops back to the enclosing block's).
func (s *Scanner) fetchPlainScalar() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()

	var value strings.Builder
	var pending string // blanks or folded breaks, written only if more content follows
	leadingBlanks := false
	indent := s.indent + 1

	for {
		if s.rd.Mark().Column == 0 && (s.prefixIs("---") || s.prefixIs("...")) && isBlankz(s.rd.Peek(3)) {
			break
		}
		if s.rd.Peek(0) == '#' && value.Len() > 0 {
			break
		}
		n := 0
		for {
			c := s.rd.Peek(0)
			if isBlankz(c) {
				break
			}
			if c == ':' && isBlankz(s.rd.Peek(1)) {
				break
			}
			if s.flowLevel > 0 && (c == ',' || c == '[' || c == ']' || c == '{' || c == '}') {
				break
			}
			if s.flowLevel > 0 && c == ':' && isBlankz(s.rd.Peek(1)) {
				break
			}
			if n == 0 {
				value.WriteString(pending)
			}
			value.WriteRune(c)
			s.skip(1)
			n++
		}
		if n == 0 {
			break
		}
		leadingBlanks = false
		var whitespace, breaks strings.Builder
		for {
			for isSpace(s.rd.Peek(0)) || s.rd.Peek(0) == '\t' {
				if isSpace(s.rd.Peek(0)) {
					whitespace.WriteRune(s.rd.Peek(0))
				}
				s.skip(1)
			}
			if isBreakz(s.rd.Peek(0)) && s.rd.Peek(0) != 0 {
				if leadingBlanks {
					breaks.WriteByte('\n')
				} else {
					whitespace.Reset()
					leadingBlanks = true
				}
				s.skipLine()
				continue
			}
			break
		}
		if s.flowLevel == 0 && s.rd.Mark().Column < indent {
			break
		}
		if leadingBlanks {
			if breaks.Len() > 0 {
				pending = breaks.String()
			} else {
				pending = " "
			}
		} else {
			pending = whitespace.String()
		}
	}
	if leadingBlanks {
		s.simpleKeyAllowed = true
	}
	s.emit(token.Token{Kind: token.Scalar, Start: start, End: s.rd.Mark(), Value: value.String(), ScalarStyle: token.Plain})
	return nil
}

// fetchFlowScalar scans a single- or double-quoted scalar.
func (s *Scanner) fetchFlowScalar(style token.ScalarStyle) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.rd.Mark()
	single := style == token.SingleQuoted
	s.skip(1)

	var value strings.Builder
	for {
		if s.rd.Peek(0) == 0 {
			return s.failAt("while scanning a quoted scalar", start, "found unexpected end of stream")
		}
		if !single && s.rd.Peek(0) == '"' {
			break
		}
		if single && s.rd.Peek(0) == '\'' {
			if s.rd.Peek(1) == '\'' {
				value.WriteByte('\'')
				s.skip(2)
				continue
			}
			break
		}
		if isBreakz(s.rd.Peek(0)) {
			var breaks strings.Builder
			leadingBlanks := false
			for isSpace(s.rd.Peek(0)) || s.rd.Peek(0) == '\t' {
				s.skip(1)
			}
			for isBreakz(s.rd.Peek(0)) && s.rd.Peek(0) != 0 {
				if leadingBlanks {
					breaks.WriteByte('\n')
				} else {
					leadingBlanks = true
				}
				s.skipLine()
				for isSpace(s.rd.Peek(0)) || s.rd.Peek(0) == '\t' {
					s.skip(1)
				}
			}
			if breaks.Len() > 0 {
				value.WriteString(breaks.String())
			} else {
				value.WriteByte(' ')
			}
			continue
		}
		if !single && s.rd.Peek(0) == '\\' {
			if isBreakz(s.rd.Peek(1)) {
				s.skip(1)
				s.skipLine()
				continue
			}
			r, width, err := decodeEscape(s)
			if err != nil {
				return err
			}
			value.WriteRune(r)
			s.skip(width)
			continue
		}
		value.WriteRune(s.rd.Peek(0))
		s.skip(1)
	}
	s.skip(1)
	s.emit(token.Token{Kind: token.Scalar, Start: start, End: s.rd.Mark(), Value: value.String(), ScalarStyle: style})
	return nil
}

// escapes maps the one-letter C-style escapes of a double-quoted scalar
// to their rune values, per the standard YAML escape table.
var escapes = map[rune]rune{
	'0': 0, 'a': '\a', 'b': '\b', 't': '\t', 'n': '\n', 'v': '\v', 'f': '\f',
	'r': '\r', 'e': 0x1B, ' ': ' ', '"': '"', '\\': '\\', '/': '/',
	'N': 0x85, '_': 0xA0, 'L': 0x2028, 'P': 0x2029,
}

// decodeEscape reads the escape sequence starting at the backslash
// (Peek(0) == '\\') and returns the decoded rune and the number of
// characters (including the backslash) it consumed.
func decodeEscape(s *Scanner) (rune, int, error) {
	c := s.rd.Peek(1)
	if r, ok := escapes[c]; ok {
		return r, 2, nil
	}
	var width int
	switch c {
	case 'x':
		width = 2
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, 0, s.fail("found unknown escape character")
	}
	var hex strings.Builder
	for i := 0; i < width; i++ {
		hex.WriteRune(s.rd.Peek(2 + i))
	}
	v, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil {
		return 0, 0, s.fail("while parsing a quoted scalar, did not find expected hexadecimal number")
	}
	return rune(v), 2 + width, nil
}

// fetchBlockScalar scans a literal ('|') or folded ('>') block scalar,
// handling the explicit indentation indicator and the strip/clip/keep
// chomping indicators.
func (s *Scanner) fetchBlockScalar(style token.ScalarStyle) error {
	if err := s.removeSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = true
	start := s.rd.Mark()
	s.skip(1)

	chomping := 0 // 0 = clip, 1 = strip, 2 = keep
	increment := 0
	if c := s.rd.Peek(0); c == '+' || c == '-' {
		if c == '+' {
			chomping = 2
		} else {
			chomping = 1
		}
		s.skip(1)
		if isDigit(s.rd.Peek(0)) {
			increment = int(s.rd.Peek(0) - '0')
			s.skip(1)
		}
	} else if isDigit(c) {
		increment = int(c - '0')
		s.skip(1)
		if c := s.rd.Peek(0); c == '+' || c == '-' {
			if c == '+' {
				chomping = 2
			} else {
				chomping = 1
			}
			s.skip(1)
		}
	}
	s.skipBlanks()
	if s.rd.Peek(0) == '#' {
		for !isBreakz(s.rd.Peek(0)) {
			s.skip(1)
		}
	}
	if !isBreakz(s.rd.Peek(0)) {
		return s.failAt("while scanning a block scalar", start, "did not find expected comment or line break")
	}
	s.skipLine()

	blockIndent := 0
	if increment > 0 {
		blockIndent = increment
		if s.indent >= 0 {
			blockIndent = s.indent + increment
		}
	}

	var value strings.Builder
	var trailingBreaks strings.Builder
	leadingBlank := false
	firstLine := true
	moreIndented := false

	for {
		col := s.countLeadingSpaces()
		if blockIndent == 0 && col > 0 {
			if col > s.indent {
				blockIndent = col
			}
		}
		if s.rd.Peek(0) == 0 {
			break
		}
		if blockIndent == 0 {
			// blank line before any indentation has been established
			if isBreakz(s.rd.Peek(0)) {
				trailingBreaks.WriteByte('\n')
				s.skipLine()
				continue
			}
			break
		}
		if col < blockIndent && !isBreakRune(s.rd.Peek(col)) {
			break
		}
		s.rd.Forward(col)
		s.charIndex += col

		if isBreakz(s.rd.Peek(0)) {
			trailingBreaks.WriteByte('\n')
			s.skipLine()
			leadingBlank = true
			firstLine = false
			continue
		}

		// A line more-indented than the block's established indentation
		// keeps its leading line break instead of folding it to a space,
		// and so does the line immediately following one: folding only
		// ever joins two lines that both sit at the base indentation.
		curMoreIndented := col > blockIndent
		switch {
		case style == token.Folded && !leadingBlank && !firstLine && !moreIndented && !curMoreIndented:
			value.WriteByte(' ')
		case style == token.Folded && leadingBlank && trailingBreaks.Len() > 0:
			// The break that separated the previous content line from
			// this run of blank lines is absorbed by the fold; only the
			// blank lines themselves (one break each) survive as breaks.
			value.WriteString(trailingBreaks.String()[1:])
		default:
			value.WriteString(trailingBreaks.String())
		}
		trailingBreaks.Reset()
		leadingBlank = false
		firstLine = false
		moreIndented = curMoreIndented

		for !isBreakz(s.rd.Peek(0)) {
			value.WriteRune(s.rd.Peek(0))
			s.skip(1)
		}
		if isBreakz(s.rd.Peek(0)) && s.rd.Peek(0) != 0 {
			trailingBreaks.WriteByte('\n')
			s.skipLine()
		}
	}

	switch chomping {
	case 1: // strip
	case 2: // keep
		value.WriteString(trailingBreaks.String())
	default: // clip
		if trailingBreaks.Len() > 0 {
			value.WriteByte('\n')
		}
	}

	s.emit(token.Token{Kind: token.Scalar, Start: start, End: s.rd.Mark(), Value: value.String(), ScalarStyle: style})
	return nil
}

// countLeadingSpaces reports how many space characters begin the
// current line, without consuming them.
func (s *Scanner) countLeadingSpaces() int {
	n := 0
	for s.rd.Peek(n) == ' ' {
		n++
	}
	return n
}
