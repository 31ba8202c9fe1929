// Package emitter renders an event stream as YAML text. Indentation
// bookkeeping and the event-driven write loop are grounded in the
// teacher library's internal/emitter package; scalar style selection
// follows analyze.go's flag computation, generalized from that
// package's queue-and-lookahead design to a simple walk over an
// already-built event slice, since this core's Serializer produces the
// whole document's events before handing them to the Emitter.
package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/halyard-yaml/halyard/internal/event"
	"github.com/halyard-yaml/halyard/internal/resolver"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Error is an emitter-stage failure: a value that cannot be represented
// with the requested style, or an inconsistent event stream.
type Error struct {
	Problem string
}

func (e *Error) Error() string { return "emitter: " + e.Problem }

// Option configures an Emitter.
type Option func(*Emitter)

// WithIndent sets the number of spaces used per block indentation
// level. The default is 2; values outside 2 through 9 are ignored.
func WithIndent(n int) Option {
	return func(e *Emitter) {
		if n > 1 && n < 10 {
			e.indent = n
		}
	}
}

// WithWidth records the preferred line width. The emitter does not wrap
// output: no scalar or flow collection is broken across lines to fit it.
func WithWidth(n int) Option {
	return func(e *Emitter) { e.width = n }
}

// WithCanonical forces canonical form: every scalar double-quoted, every
// collection in flow style, every tag written out explicitly.
func WithCanonical(v bool) Option {
	return func(e *Emitter) { e.canonical = v }
}

// WithCRLF selects "\r\n" line breaks instead of the default "\n".
func WithCRLF(v bool) Option {
	return func(e *Emitter) {
		if v {
			e.lineBreak = "\r\n"
		} else {
			e.lineBreak = "\n"
		}
	}
}

// Emitter writes an event stream as YAML text.
type Emitter struct {
	w *bufio.Writer

	indent    int
	width     int
	canonical bool
	lineBreak string

	column      int
	indents     []int
	curIndent   int
	whitespace  bool
	openEnded   bool
	needDocIndicator bool
}

// New creates an Emitter writing to w.
func New(w io.Writer, opts ...Option) *Emitter {
	e := &Emitter{
		w:          bufio.NewWriter(w),
		indent:     2,
		width:      80,
		lineBreak:  "\n",
		whitespace: true,
		curIndent:  -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmitAll writes the complete event stream and flushes the output.
func (e *Emitter) EmitAll(events []event.Event) error {
	i := 0
	for i < len(events) {
		ev := events[i]
		switch ev.Kind {
		case event.StreamStart:
			i++
		case event.StreamEnd:
			i++
		case event.DocumentStart:
			next, err := e.emitDocumentStart(events, i)
			if err != nil {
				return err
			}
			i = next
		default:
			return &Error{Problem: fmt.Sprintf("unexpected %s at top level", ev.Kind)}
		}
	}
	return e.w.Flush()
}

func (e *Emitter) emitDocumentStart(events []event.Event, i int) (int, error) {
	ev := events[i]
	i++

	if ev.Version != nil {
		e.writeIndicator(fmt.Sprintf("%%YAML %d.%d", ev.Version.Major, ev.Version.Minor), true, false, false)
		e.writeLineBreak()
	}
	for _, td := range ev.TagDirectives {
		if td.Handle == "!" && td.Prefix == "!" || td.Handle == "!!" && td.Prefix == "tag:yaml.org,2002:" {
			continue
		}
		e.writeIndicator(fmt.Sprintf("%%TAG %s %s", td.Handle, td.Prefix), true, false, false)
		e.writeLineBreak()
	}

	explicit := ev.ExplicitDocument || ev.Version != nil || len(ev.TagDirectives) > 2 || e.canonical
	if explicit {
		e.writeIndicator("---", true, false, false)
		if e.canonical {
			e.writeIndent()
		}
	}

	next, err := e.emitNode(events, i, false)
	if err != nil {
		return 0, err
	}
	i = next

	end := events[i]
	i++
	if end.ExplicitDocument {
		e.writeIndent()
		e.writeIndicator("...", true, false, false)
		e.writeLineBreak()
	} else {
		e.writeLineBreak()
	}
	return i, nil
}

// emitNode writes the node starting at events[i] (alias, scalar,
// sequence, or mapping) and returns the index just past its end event.
// flow reports whether the immediate enclosing collection (if any) is in
// flow style, which a plain scalar must avoid characters like ',' for.
func (e *Emitter) emitNode(events []event.Event, i int, flow bool) (int, error) {
	ev := events[i]
	switch ev.Kind {
	case event.Alias:
		e.writeIndicator("*"+ev.Anchor, true, false, false)
		return i + 1, nil
	case event.Scalar:
		return e.emitScalar(events, i, flow)
	case event.SequenceStart:
		return e.emitSequence(events, i)
	case event.MappingStart:
		return e.emitMapping(events, i)
	default:
		return 0, &Error{Problem: fmt.Sprintf("unexpected %s while emitting a node", ev.Kind)}
	}
}

func (e *Emitter) renderTag(tag string) string {
	short := resolver.ShortTag(tag)
	if short != tag {
		return short
	}
	return "!<" + tag + ">"
}

func (e *Emitter) emitScalar(events []event.Event, i int, flow bool) (int, error) {
	ev := events[i]
	a := analyzeScalar(ev.Value)
	style := chooseScalarStyle(a, ev.ScalarStyle, e.canonical, flow)
	if ev.Tag != "" && !ev.Implicit || e.canonical {
		e.writeIndicator(e.renderTag(ev.Tag), true, false, false)
	}
	if ev.Anchor != "" {
		e.writeIndicator("&"+ev.Anchor, true, false, false)
	}
	switch style {
	case token.SingleQuoted:
		e.writeSingleQuoted(ev.Value)
	case token.DoubleQuoted:
		e.writeDoubleQuoted(ev.Value)
	case token.Literal:
		e.writeBlockScalar(ev.Value, true)
	case token.Folded:
		e.writeBlockScalar(ev.Value, false)
	default:
		e.writePlain(ev.Value)
	}
	return i + 1, nil
}

func (e *Emitter) emitSequence(events []event.Event, i int) (int, error) {
	ev := events[i]
	flow := ev.CollectionStyle == token.Flow || e.canonical
	if ev.Tag != "" && !ev.Implicit || e.canonical {
		e.writeIndicator(e.renderTag(ev.Tag), true, false, false)
	}
	if ev.Anchor != "" {
		e.writeIndicator("&"+ev.Anchor, true, false, false)
	}
	i++
	if flow {
		e.writeIndicator("[", true, true, false)
		e.increaseIndent(true)
		first := true
		for events[i].Kind != event.SequenceEnd {
			if !first {
				e.writeIndicator(",", false, false, false)
			}
			first = false
			e.writeFlowSeparator()
			next, err := e.emitNode(events, i, true)
			if err != nil {
				return 0, err
			}
			i = next
		}
		e.decreaseIndent()
		if !first && e.canonical {
			e.writeIndent()
		}
		e.writeIndicator("]", false, false, false)
		return i + 1, nil
	}

	e.increaseIndent(false)
	for events[i].Kind != event.SequenceEnd {
		e.writeIndent()
		e.writeIndicator("-", true, false, true)
		next, err := e.emitNode(events, i, false)
		if err != nil {
			return 0, err
		}
		i = next
	}
	e.decreaseIndent()
	return i + 1, nil
}

func (e *Emitter) emitMapping(events []event.Event, i int) (int, error) {
	ev := events[i]
	flow := ev.CollectionStyle == token.Flow || e.canonical
	if ev.Tag != "" && !ev.Implicit || e.canonical {
		e.writeIndicator(e.renderTag(ev.Tag), true, false, false)
	}
	if ev.Anchor != "" {
		e.writeIndicator("&"+ev.Anchor, true, false, false)
	}
	i++
	if flow {
		e.writeIndicator("{", true, true, false)
		e.increaseIndent(true)
		first := true
		for events[i].Kind != event.MappingEnd {
			if !first {
				e.writeIndicator(",", false, false, false)
			}
			first = false
			e.writeFlowSeparator()
			keyEv := events[i]
			simple := isSimpleKey(keyEv)
			if !simple {
				e.writeIndicator("?", true, true, false)
			}
			next, err := e.emitNode(events, i, true)
			if err != nil {
				return 0, err
			}
			i = next
			if !simple {
				e.writeIndent()
			}
			e.writeIndicator(":", !simple, false, simple)
			next, err = e.emitNode(events, i, true)
			if err != nil {
				return 0, err
			}
			i = next
		}
		e.decreaseIndent()
		if !first && e.canonical {
			e.writeIndent()
		}
		e.writeIndicator("}", false, false, false)
		return i + 1, nil
	}

	e.increaseIndent(false)
	for events[i].Kind != event.MappingEnd {
		e.writeIndent()
		keyEv := events[i]
		simple := isSimpleKey(keyEv)
		if !simple {
			e.writeIndicator("?", true, true, false)
		}
		next, err := e.emitNode(events, i, false)
		if err != nil {
			return 0, err
		}
		i = next
		if !simple {
			e.writeIndent()
		}
		e.writeIndicator(":", !simple, false, simple)
		next, err = e.emitNode(events, i, false)
		if err != nil {
			return 0, err
		}
		i = next
	}
	e.decreaseIndent()
	return i + 1, nil
}

// isSimpleKey reports whether a key event is plain enough to be written
// without the explicit "? " indicator: a scalar, short, single line.
func isSimpleKey(ev event.Event) bool {
	if ev.Kind != event.Scalar {
		return false
	}
	return len(ev.Value) <= 128 && !strings.ContainsAny(ev.Value, "\n")
}

func (e *Emitter) increaseIndent(flow bool) {
	e.indents = append(e.indents, e.curIndent)
	if e.curIndent < 0 {
		if flow {
			e.curIndent = e.indent
		} else {
			e.curIndent = 0
		}
	} else if !flow {
		e.curIndent += e.indent
	} else {
		e.curIndent += e.indent
	}
}

func (e *Emitter) decreaseIndent() {
	e.curIndent = e.indents[len(e.indents)-1]
	e.indents = e.indents[:len(e.indents)-1]
}

func (e *Emitter) writeIndent() {
	indent := e.curIndent
	if indent < 0 {
		indent = 0
	}
	if !e.whitespace || e.column > indent {
		e.writeLineBreak()
	}
	for e.column < indent {
		e.w.WriteByte(' ')
		e.column++
	}
	e.whitespace = true
}

// writeFlowSeparator places the space (or, in canonical mode, the
// indented line break) between two entries of a flow collection.
func (e *Emitter) writeFlowSeparator() {
	if e.canonical {
		e.writeIndent()
		return
	}
	if !e.whitespace {
		e.w.WriteByte(' ')
		e.column++
		e.whitespace = true
	}
}

func (e *Emitter) writeLineBreak() {
	e.w.WriteString(e.lineBreak)
	e.column = 0
	e.whitespace = true
}

// writeIndicator writes a short fixed token like "-", ":", "[", "*anchor".
// needWhitespace requests a separating space before it if the column
// isn't already at the start of a line or just after whitespace.
func (e *Emitter) writeIndicator(s string, needWhitespace, isWhitespace, indention bool) {
	if needWhitespace && !e.whitespace {
		e.w.WriteByte(' ')
		e.column++
	}
	e.w.WriteString(s)
	e.column += len([]rune(s))
	e.whitespace = isWhitespace
}

func (e *Emitter) writePlain(value string) {
	if value == "" {
		return
	}
	if !e.whitespace {
		e.w.WriteByte(' ')
		e.column++
	}
	e.whitespace = false
	breaks := false
	for i, c := range []rune(value) {
		if c == '\n' {
			e.writeLineBreak()
			e.writeIndent()
			breaks = true
			continue
		}
		if breaks {
			breaks = false
		}
		_ = i
		e.w.WriteRune(c)
		e.column++
	}
}

func (e *Emitter) writeSingleQuoted(value string) {
	e.writeIndicator("'", true, false, false)
	for _, c := range value {
		if c == '\'' {
			e.w.WriteString("''")
			e.column += 2
			continue
		}
		if c == '\n' {
			e.writeLineBreak()
			e.writeIndent()
			continue
		}
		e.w.WriteRune(c)
		e.column++
	}
	e.w.WriteByte('\'')
	e.column++
	e.whitespace = false
}

func (e *Emitter) writeDoubleQuoted(value string) {
	e.writeIndicator(`"`, true, false, false)
	for _, c := range value {
		switch {
		case c == '"':
			e.w.WriteString(`\"`)
			e.column += 2
		case c == '\\':
			e.w.WriteString(`\\`)
			e.column += 2
		case c == '\n':
			e.w.WriteString(`\n`)
			e.column += 2
		case c == '\t':
			e.w.WriteString(`\t`)
			e.column += 2
		case c == '\r':
			e.w.WriteString(`\r`)
			e.column += 2
		case c == 0x85:
			e.w.WriteString(`\N`)
			e.column += 2
		case c == 0xA0:
			e.w.WriteString(`\_`)
			e.column += 2
		case c < 0x20 || c == 0x7F:
			e.w.WriteString(`\x` + hexPad(int(c), 2))
			e.column += 4
		case c >= 0x80 && c <= 0xFF && !isPrintableLatin1(c):
			e.w.WriteString(`\x` + hexPad(int(c), 2))
			e.column += 4
		default:
			e.w.WriteRune(c)
			e.column++
		}
	}
	e.w.WriteByte('"')
	e.column++
	e.whitespace = false
}

func isPrintableLatin1(c rune) bool { return c >= 0xA0 }

func hexPad(v, width int) string {
	s := strconv.FormatInt(int64(v), 16)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// writeBlockScalar writes value as a literal ("|") or folded (">")
// block scalar. The header's chomping indicator follows value's trailing
// line breaks: "-" when there is none, none for exactly one, "+" for more
// than one.
func (e *Emitter) writeBlockScalar(value string, literal bool) {
	indicator := "|"
	if !literal {
		indicator = ">"
	}
	switch {
	case !strings.HasSuffix(value, "\n"):
		indicator += "-"
	case strings.HasSuffix(value, "\n\n"):
		indicator += "+"
	}
	e.writeIndicator(indicator, true, false, false)
	e.increaseIndent(false)
	e.writeLineBreak()
	lines := strings.Split(strings.TrimSuffix(value, "\n"), "\n")
	for _, line := range lines {
		e.writeIndentRaw()
		e.w.WriteString(line)
		e.column += len([]rune(line))
		e.writeLineBreak()
	}
	e.decreaseIndent()
	e.whitespace = true
}

func (e *Emitter) writeIndentRaw() {
	indent := e.curIndent
	if indent < 0 {
		indent = 0
	}
	for e.column < indent {
		e.w.WriteByte(' ')
		e.column++
	}
}
