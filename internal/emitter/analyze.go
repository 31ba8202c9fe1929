package emitter

import "github.com/halyard-yaml/halyard/internal/token"

// scalarAnalysis records which presentation styles a scalar's content
// would survive being written in, and what line-break folding it needs.
// It is grounded in the teacher library's analyzeScalar: the same set of
// boolean flags, computed by a single left-to-right scan of the value.
type scalarAnalysis struct {
	empty           bool
	multiline       bool
	allowFlowPlain  bool
	allowBlockPlain bool
	allowSingleQuoted bool
	allowBlock      bool
	allowFlow       bool
	leadingSpace    bool
	trailingSpace   bool
	leadingBreak    bool
	trailingBreak   bool
	breakSpace      bool
	spaceBreak      bool
	specialChars    bool
}

func analyzeScalar(value string) scalarAnalysis {
	var a scalarAnalysis
	if value == "" {
		a.empty = true
		a.allowFlowPlain = true
		a.allowBlockPlain = true
		a.allowSingleQuoted = true
		return a
	}

	runes := []rune(value)

	if runes[0] == '#' || runes[0] == ',' || runes[0] == '[' || runes[0] == ']' || runes[0] == '{' || runes[0] == '}' ||
		runes[0] == '&' || runes[0] == '*' || runes[0] == '!' || runes[0] == '|' || runes[0] == '>' ||
		runes[0] == '\'' || runes[0] == '"' || runes[0] == '%' || runes[0] == '@' || runes[0] == '`' {
		a.allowFlowPlain, a.allowBlockPlain = false, false
	} else {
		a.allowFlowPlain, a.allowBlockPlain = true, true
	}
	if runes[0] == '-' || runes[0] == '?' || runes[0] == ':' {
		if len(runes) == 1 || isBlank(runes[1]) {
			a.allowFlowPlain, a.allowBlockPlain = false, false
		}
	}
	a.allowBlock = true
	a.allowFlow = true
	a.allowSingleQuoted = true

	leadingSpace, leadingBreak := false, false
	trailingSpace, trailingBreak := false, false
	breakSpace, spaceBreak := false, false

	precededBySpace, precededByBreak := true, true
	followedBySpace := len(runes) == 1 || isBlank(runes[1])

	for i, c := range runes {
		if i == 0 {
			switch {
			case isSpace(c):
				leadingSpace = true
			case isBreak(c):
				leadingBreak = true
			}
		}

		switch {
		case isSpecial(c):
			a.specialChars = true
			a.allowBlockPlain, a.allowFlowPlain, a.allowSingleQuoted, a.allowBlock, a.allowFlow = false, false, false, false, false
		case isBreak(c):
			a.multiline = true
			if i == 0 {
				// handled above
			}
			if precededBySpace {
				breakSpace = true
			}
			if followedBySpace {
				spaceBreak = true
			}
			a.allowBlockPlain = false
			precededByBreak = true
			precededBySpace = false
		case isSpace(c):
			if i == 0 {
				a.allowFlowPlain, a.allowBlockPlain = false, false
			}
			precededBySpace = true
			precededByBreak = false
		default:
			precededBySpace = false
			precededByBreak = false
		}

		if c == ':' {
			followedBySpace = i+1 >= len(runes)-1 || isBlank(runes[minInt(i+2, len(runes)-1)])
			if i+1 < len(runes) && isBlank(runes[i+1]) {
				a.allowFlowPlain = false
			}
		}
		if c == '#' && i > 0 && isBlank(runes[i-1]) {
			a.allowFlowPlain, a.allowBlockPlain = false, false
		}
		if c == ',' || c == '[' || c == ']' || c == '{' || c == '}' {
			a.allowFlowPlain = false
		}

		if i == len(runes)-1 {
			switch {
			case isSpace(c):
				trailingSpace = true
			case isBreak(c):
				trailingBreak = true
			}
		}
	}
	_ = precededByBreak

	a.leadingSpace, a.leadingBreak = leadingSpace, leadingBreak
	a.trailingSpace, a.trailingBreak = trailingSpace, trailingBreak
	a.breakSpace, a.spaceBreak = breakSpace, spaceBreak

	if leadingSpace || leadingBreak || trailingSpace || trailingBreak {
		a.allowBlockPlain, a.allowFlowPlain = false, false
	}
	if trailingSpace {
		a.allowBlock = false
	}
	if breakSpace {
		a.allowFlow, a.allowBlock = false, false
	}
	if spaceBreak || a.specialChars {
		a.allowFlowPlain, a.allowBlockPlain, a.allowSingleQuoted, a.allowBlock = false, false, false, false
	}
	if a.multiline {
		a.allowFlowPlain, a.allowBlockPlain = false, false
	}
	return a
}

func isSpecial(c rune) bool {
	switch c {
	case 0, 0xFEFF:
		return true
	}
	if c == '\t' || isBreak(c) {
		return false
	}
	if c < 0x20 || (c >= 0x7F && c < 0xA0) {
		return true
	}
	return false
}

func isBlank(c rune) bool { return c == ' ' || c == '\t' || isBreak(c) }
func isSpace(c rune) bool { return c == ' ' }
func isBreak(c rune) bool {
	switch c {
	case '\n', '\r', 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// chooseScalarStyle picks a scalar's presentation style: double-quoted
// in canonical mode; plain when no style or plain was requested and the
// analysis allows plain in the current block or flow context; a
// requested literal or folded style in block context when the content
// has no special characters; single-quoted when no style, plain or
// single-quoted was requested and single quotes are allowed;
// double-quoted otherwise.
func chooseScalarStyle(a scalarAnalysis, requested token.ScalarStyle, canonical bool, flow bool) token.ScalarStyle {
	if canonical {
		return token.DoubleQuoted
	}
	if requested == token.NoScalarStyle || requested == token.Plain {
		if !flow && a.allowBlockPlain && !a.empty {
			return token.Plain
		}
		if flow && a.allowFlowPlain && !a.empty {
			return token.Plain
		}
	}
	// An explicit Literal/Folded request (e.g. Representer always asking
	// for Literal on !!binary data) is honored even for single-line
	// content, not just multiline: a caller that asked for a block style
	// gets one as long as the content can actually survive it.
	if requested == token.Literal && !flow && !a.specialChars {
		return token.Literal
	}
	if requested == token.Folded && !flow && !a.specialChars {
		return token.Folded
	}
	if (requested == token.NoScalarStyle || requested == token.Plain || requested == token.SingleQuoted) && a.allowSingleQuoted {
		return token.SingleQuoted
	}
	return token.DoubleQuoted
}
