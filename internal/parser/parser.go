// Package parser turns a token stream into the grammar-level event
// stream the composer (or a hand-written consumer) walks to build
// nodes. It is grounded in the teacher library's parser.document/
// alias/scalar/sequence/mapping node-building walk, generalized from a
// single eager document build into the pull-based, multi-document
// NextEvent contract this core exposes.
package parser

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/event"
	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/scanner"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Error is a parser-stage failure, reported with both the place the
// enclosing construct started (Context) and the place the problem was
// found (Problem), the way libyaml-descended parsers do.
type Error struct {
	Context     string
	ContextMark mark.Mark
	Problem     string
	ProblemMark mark.Mark
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("parser: %s at %s: %s at %s", e.Context, e.ContextMark, e.Problem, e.ProblemMark)
	}
	return fmt.Sprintf("parser: %s at %s", e.Problem, e.ProblemMark)
}

// stateFn produces the next event, possibly pushing further states onto
// the parser's stack before returning.
type stateFn func(p *Parser) (event.Event, error)

// Parser pulls tokens from a scanner.Scanner and emits one grammar
// event at a time.
type Parser struct {
	sc *scanner.Scanner

	tok     token.Token
	tokSet  bool
	toksErr error

	states []stateFn
	state  stateFn

	// tagDirectives accumulates across a single document; it is reset
	// at each DocumentStart and always seeded with the two default
	// handles.
	tagDirectives []token.TagDirective

	streamEnded bool
}

// New creates a Parser pulling tokens from sc.
func New(sc *scanner.Scanner) *Parser {
	p := &Parser{sc: sc}
	p.state = (*Parser).parseStreamStart
	return p
}

// NextEvent returns the next event in the grammar, or an error.
func (p *Parser) NextEvent() (event.Event, error) {
	if p.state == nil {
		return event.Event{Kind: event.StreamEnd}, nil
	}
	st := p.state
	p.state = nil
	ev, err := st(p)
	if err != nil {
		return event.Event{}, err
	}
	if p.state == nil {
		if len(p.states) > 0 {
			p.state = p.states[len(p.states)-1]
			p.states = p.states[:len(p.states)-1]
		} else if ev.Kind != event.StreamEnd {
			p.state = (*Parser).parseStreamEndOrDocument
		}
	}
	return ev, nil
}

func (p *Parser) push(fn stateFn) { p.states = append(p.states, fn) }

func (p *Parser) peek() (token.Token, error) {
	if !p.tokSet {
		t, err := p.sc.NextToken()
		p.tok, p.tokSet, p.toksErr = t, true, err
	}
	return p.tok, p.toksErr
}

func (p *Parser) advance() (token.Token, error) {
	t, err := p.peek()
	if err != nil {
		return t, err
	}
	p.tokSet = false
	return t, nil
}

func (p *Parser) fail(context string, contextMark mark.Mark, problem string, problemMark mark.Mark) error {
	return &Error{Context: context, ContextMark: contextMark, Problem: problem, ProblemMark: problemMark}
}

func (p *Parser) parseStreamStart() (event.Event, error) {
	t, err := p.advance()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind != token.StreamStart {
		return event.Event{}, p.fail("", mark.Mark{}, "did not find expected stream start", t.Start)
	}
	p.push((*Parser).parseDocumentStart)
	return event.Event{Kind: event.StreamStart, Start: t.Start, End: t.End}, nil
}

func (p *Parser) parseStreamEndOrDocument() (event.Event, error) {
	return p.parseDocumentStart()
}

func (p *Parser) parseDocumentStart() (event.Event, error) {
	// Skip any number of redundant document-end markers between
	// documents; they carry no event of their own.
	for {
		t, err := p.peek()
		if err != nil {
			return event.Event{}, err
		}
		if t.Kind != token.DocumentEnd {
			break
		}
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
	}

	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.StreamEnd {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.streamEnded = true
		return event.Event{Kind: event.StreamEnd, Start: t.Start, End: t.End}, nil
	}

	p.tagDirectives = []token.TagDirective{{Handle: "!", Prefix: "!"}, {Handle: "!!", Prefix: "tag:yaml.org,2002:"}}
	var version *token.Version
	start := t.Start
	explicit := false

	for t.Kind == token.VersionDirective || t.Kind == token.TagDirective {
		if t.Kind == token.VersionDirective {
			if version != nil {
				return event.Event{}, p.fail("", mark.Mark{}, "found duplicate %YAML directive", t.Start)
			}
			v := t.Version
			version = &v
		} else {
			p.tagDirectives = append(p.tagDirectives, token.TagDirective{Handle: t.Value, Prefix: t.Prefix})
		}
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		t, err = p.peek()
		if err != nil {
			return event.Event{}, err
		}
	}
	if t.Kind == token.DocumentStart {
		explicit = true
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		t, err = p.peek()
		if err != nil {
			return event.Event{}, err
		}
	} else if version != nil || len(p.tagDirectives) > 2 {
		return event.Event{}, p.fail("", mark.Mark{}, "did not find expected '---' indicator", t.Start)
	}

	p.push((*Parser).parseDocumentEnd)
	p.push((*Parser).parseNode)
	return event.Event{
		Kind: event.DocumentStart, Start: start, End: t.Start,
		Version: version, TagDirectives: append([]token.TagDirective(nil), p.tagDirectives...),
		ExplicitDocument: explicit,
	}, nil
}

func (p *Parser) parseDocumentEnd() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	start, end := t.Start, t.Start
	explicit := false
	if t.Kind == token.DocumentEnd {
		explicit = true
		end = t.End
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
	}
	return event.Event{Kind: event.DocumentEnd, Start: start, End: end, ExplicitDocument: explicit}, nil
}

// parseNode parses a single node: an alias, or an optionally-anchored/
// tagged scalar, sequence, or mapping (block or flow), or an implicit
// empty scalar when none of those is present.
func (p *Parser) parseNode() (event.Event, error) {
	return p.parseNodeOpt(false, false)
}

func (p *Parser) parseNodeOpt(block, indentless bool) (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}

	if t.Kind == token.Alias {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		return event.Event{Kind: event.Alias, Start: t.Start, End: t.End, Anchor: t.Value}, nil
	}

	start := t.Start
	var anchor, tag string
	for t.Kind == token.Anchor || t.Kind == token.Tag {
		if t.Kind == token.Anchor {
			if anchor != "" {
				return event.Event{}, p.fail("while parsing a node", start, "found duplicate anchor", t.Start)
			}
			anchor = t.Value
		} else {
			tag, err = p.resolveTagToken(t)
			if err != nil {
				return event.Event{}, err
			}
		}
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		t, err = p.peek()
		if err != nil {
			return event.Event{}, err
		}
	}

	switch t.Kind {
	case token.Scalar:
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		implicit := tag == "" && t.ScalarStyle == token.Plain
		implicit2 := tag == ""
		return event.Event{
			Kind: event.Scalar, Start: start, End: t.End, Anchor: anchor, Tag: tag,
			Value: t.Value, ScalarStyle: t.ScalarStyle, Implicit: implicit, Implicit2: implicit2,
		}, nil

	case token.FlowSequenceStart:
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseFlowSequenceEntry)
		return event.Event{Kind: event.SequenceStart, Start: start, End: t.End, Anchor: anchor, Tag: tag,
			Implicit: tag == "", CollectionStyle: token.Flow}, nil

	case token.FlowMappingStart:
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseFlowMappingKey)
		return event.Event{Kind: event.MappingStart, Start: start, End: t.End, Anchor: anchor, Tag: tag,
			Implicit: tag == "", CollectionStyle: token.Flow}, nil

	case token.BlockSequenceStart:
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseBlockSequenceEntry)
		return event.Event{Kind: event.SequenceStart, Start: start, End: t.End, Anchor: anchor, Tag: tag,
			Implicit: tag == "", CollectionStyle: token.Block}, nil

	case token.BlockMappingStart:
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseBlockMappingKey)
		return event.Event{Kind: event.MappingStart, Start: start, End: t.End, Anchor: anchor, Tag: tag,
			Implicit: tag == "", CollectionStyle: token.Block}, nil

	case token.BlockEntry:
		// A block-entry token here (a "- " entry at its parent mapping's
		// own indentation) yields one implicit empty scalar, not a
		// sequence: indentless sequences are not parsed, and the mapping
		// holding one then fails with "did not find expected key".
		return event.Event{Kind: event.Scalar, Start: start, End: start, Anchor: anchor, Tag: tag, Implicit: true, Implicit2: true}, nil

	default:
		if anchor != "" || tag != "" {
			return event.Event{Kind: event.Scalar, Start: start, End: start, Anchor: anchor, Tag: tag, Implicit: true, Implicit2: true}, nil
		}
		return event.Event{}, p.fail("while parsing a node", start, "did not find expected node content", t.Start)
	}
}

// resolveTagToken expands a scanned Tag token's handle+suffix into the
// full tag URI, using the document's current %TAG directives.
func (p *Parser) resolveTagToken(t token.Token) (string, error) {
	if t.Value == "" {
		if t.Suffix == "" {
			return "!", nil
		}
		// Verbatim tag, !<...>: the suffix is the whole tag.
		return t.Suffix, nil
	}
	for _, td := range p.tagDirectives {
		if td.Handle == t.Value {
			return td.Prefix + t.Suffix, nil
		}
	}
	return "", p.fail("while parsing a node", t.Start, fmt.Sprintf("found undefined tag handle %q", t.Value), t.Start)
}

func (p *Parser) parseBlockSequenceEntry() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.BlockEntry {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		next, err := p.peek()
		if err != nil {
			return event.Event{}, err
		}
		if next.Kind != token.BlockEntry && next.Kind != token.BlockEnd {
			p.push((*Parser).parseBlockSequenceEntry)
			return p.parseNode()
		}
		p.push((*Parser).parseBlockSequenceEntry)
		return event.Event{Kind: event.Scalar, Start: next.Start, End: next.Start, Implicit: true, Implicit2: true}, nil
	}
	if t.Kind != token.BlockEnd {
		return event.Event{}, p.fail("while parsing a block collection", t.Start, "did not find expected '-' indicator", t.Start)
	}
	if _, err := p.advance(); err != nil {
		return event.Event{}, err
	}
	return event.Event{Kind: event.SequenceEnd, Start: t.Start, End: t.End}, nil
}

func (p *Parser) parseBlockMappingKey() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.Key {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		next, err := p.peek()
		if err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseBlockMappingValue)
		if next.Kind != token.Value && next.Kind != token.Key && next.Kind != token.BlockEnd {
			return p.parseNode()
		}
		return event.Event{Kind: event.Scalar, Start: next.Start, End: next.Start, Implicit: true, Implicit2: true}, nil
	}
	if t.Kind != token.BlockEnd {
		return event.Event{}, p.fail("while parsing a block mapping", t.Start, "did not find expected key", t.Start)
	}
	if _, err := p.advance(); err != nil {
		return event.Event{}, err
	}
	return event.Event{Kind: event.MappingEnd, Start: t.Start, End: t.End}, nil
}

func (p *Parser) parseBlockMappingValue() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.Value {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		next, err := p.peek()
		if err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseBlockMappingKey)
		if next.Kind != token.Key && next.Kind != token.Value && next.Kind != token.BlockEnd {
			return p.parseNode()
		}
		return event.Event{Kind: event.Scalar, Start: next.Start, End: next.Start, Implicit: true, Implicit2: true}, nil
	}
	p.push((*Parser).parseBlockMappingKey)
	return event.Event{Kind: event.Scalar, Start: t.Start, End: t.Start, Implicit: true, Implicit2: true}, nil
}

func (p *Parser) parseFlowSequenceEntry() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.FlowSequenceEnd {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		return event.Event{Kind: event.SequenceEnd, Start: t.Start, End: t.End}, nil
	}
	if t.Kind == token.FlowEntry {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		t, err = p.peek()
		if err != nil {
			return event.Event{}, err
		}
		if t.Kind == token.FlowSequenceEnd {
			if _, err := p.advance(); err != nil {
				return event.Event{}, err
			}
			return event.Event{Kind: event.SequenceEnd, Start: t.Start, End: t.End}, nil
		}
	}
	if t.Kind == token.Key {
		// `? key : value` (or the `key: value` shorthand below) nested
		// directly inside a flow sequence produces a single-pair mapping.
		start := t.Start
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseFlowSequenceEntry)
		p.push((*Parser).parseFlowPairMappingEnd)
		p.push((*Parser).parseFlowPairValue)
		p.push((*Parser).parseNodeFlowKey)
		return event.Event{Kind: event.MappingStart, Start: start, End: start, Implicit: true, CollectionStyle: token.Flow}, nil
	}
	p.push((*Parser).parseFlowSequenceEntry)
	return p.parseFlowSequenceEntryNodeOrPair()
}

// parseFlowSequenceEntryNodeOrPair parses one flow sequence element as a
// node. It does not handle the `key: value` single-pair shorthand; its
// caller turns a Key token into that mapping before reaching it.
func (p *Parser) parseFlowSequenceEntryNodeOrPair() (event.Event, error) {
	return p.parseNode()
}

func (p *Parser) parseNodeFlowKey() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind != token.Value && t.Kind != token.FlowEntry && t.Kind != token.FlowSequenceEnd {
		return p.parseNode()
	}
	return event.Event{Kind: event.Scalar, Start: t.Start, End: t.Start, Implicit: true, Implicit2: true}, nil
}

func (p *Parser) parseFlowPairValue() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.Value {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		return p.parseNode()
	}
	return event.Event{Kind: event.Scalar, Start: t.Start, End: t.Start, Implicit: true, Implicit2: true}, nil
}

// parseFlowPairMappingEnd closes the single-pair mapping synthesized for
// a `key: value` shorthand entry nested directly inside a flow sequence.
func (p *Parser) parseFlowPairMappingEnd() (event.Event, error) {
	return event.Event{Kind: event.MappingEnd}, nil
}

func (p *Parser) parseFlowMappingKey() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	if t.Kind == token.FlowMappingEnd {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		return event.Event{Kind: event.MappingEnd, Start: t.Start, End: t.End}, nil
	}
	if t.Kind == token.FlowEntry {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		t, err = p.peek()
		if err != nil {
			return event.Event{}, err
		}
		if t.Kind == token.FlowMappingEnd {
			if _, err := p.advance(); err != nil {
				return event.Event{}, err
			}
			return event.Event{Kind: event.MappingEnd, Start: t.Start, End: t.End}, nil
		}
	}
	if t.Kind == token.Key {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		p.push((*Parser).parseFlowMappingValue)
		return p.parseNodeFlowKey()
	}
	p.push((*Parser).parseFlowMappingValue)
	return p.parseNodeFlowKey()
}

func (p *Parser) parseFlowMappingValue() (event.Event, error) {
	t, err := p.peek()
	if err != nil {
		return event.Event{}, err
	}
	p.push((*Parser).parseFlowMappingKey)
	if t.Kind == token.Value {
		if _, err := p.advance(); err != nil {
			return event.Event{}, err
		}
		return p.parseNode()
	}
	return event.Event{Kind: event.Scalar, Start: t.Start, End: t.Start, Implicit: true, Implicit2: true}, nil
}
