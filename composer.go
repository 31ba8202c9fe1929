package halyard

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/event"
	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/parser"
	"github.com/halyard-yaml/halyard/internal/reader"
	"github.com/halyard-yaml/halyard/internal/resolver"
	"github.com/halyard-yaml/halyard/internal/scanner"
)

// eventSource is the minimal pull interface the Composer needs; it is
// satisfied by *parser.Parser and lets tests drive a Composer from a
// canned event slice without going through a real scanner.
type eventSource interface {
	NextEvent() (event.Event, error)
}

// Composer consumes a parser's event stream and builds a Node tree,
// resolving anchors/aliases and flattening merge keys along the way. It
// is grounded in the teacher library's decode.go parser type (document/
// alias/scalar/sequence/mapping/node/anchor), generalized from that
// type's single eager top-level document build to the repeatable
// GetNode/GetNodeAll pull contract this core exposes.
type Composer struct {
	src eventSource

	resolver    Resolver
	constructor *Constructor

	anchors map[string]*Node
}

// uninitialized is the placeholder value stored in the anchor table the
// instant an anchored node is entered, so a self-reference seen before
// the node finishes composing can be reported as a recursive alias.
var uninitialized = &Node{}

// NewComposer creates a Composer pulling events from src, using r to
// resolve tags and c to construct typed values.
func NewComposer(src eventSource, r Resolver, c *Constructor) *Composer {
	return &Composer{src: src, resolver: r, constructor: c, anchors: map[string]*Node{}}
}

// newPipelineComposer is the common path from raw bytes: wires a
// reader, scanner, and parser together behind a Composer.
func newPipelineComposer(rd *reader.Reader, r Resolver, c *Constructor) *Composer {
	sc := scanner.New(rd)
	p := parser.New(sc)
	return NewComposer(p, r, c)
}

func (c *Composer) next() (event.Event, error) {
	ev, err := c.src.NextEvent()
	if err != nil {
		return event.Event{}, wrapError(errKindFor(err), err)
	}
	return ev, nil
}

func errKindFor(err error) ErrorKind {
	switch err.(type) {
	case *reader.Error:
		return ReaderErrorKind
	case *scanner.Error:
		return ScannerErrorKind
	case *parser.Error:
		return ParserErrorKind
	default:
		return ComposerErrorKind
	}
}

func (c *Composer) fail(context string, contextMark mark.Mark, problem string, problemMark mark.Mark) error {
	return &Error{Kind: ComposerErrorKind, Context: context, ContextMark: contextMark, Problem: problem, ProblemMark: problemMark}
}

// GetNode composes exactly one document's root node. It returns (nil,
// nil) at end of stream.
func (c *Composer) GetNode() (*Node, error) {
	ev, err := c.next()
	if err != nil {
		return nil, err
	}
	if ev.Kind == event.StreamStart {
		ev, err = c.next()
		if err != nil {
			return nil, err
		}
	}
	if ev.Kind == event.StreamEnd {
		return nil, nil
	}
	if ev.Kind != event.DocumentStart {
		return nil, c.fail("", mark.Mark{}, fmt.Sprintf("expected document start, found %s", ev.Kind), ev.Start)
	}

	c.anchors = map[string]*Node{}
	root, err := c.composeNode()
	if err != nil {
		return nil, err
	}

	end, err := c.next()
	if err != nil {
		return nil, err
	}
	if end.Kind != event.DocumentEnd {
		return nil, c.fail("while composing a document", ev.Start, fmt.Sprintf("expected document end, found %s", end.Kind), end.Start)
	}
	return root, nil
}

// GetNodeAll composes every remaining document.
func (c *Composer) GetNodeAll() ([]*Node, error) {
	var all []*Node
	for {
		n, err := c.GetNode()
		if err != nil {
			return all, err
		}
		if n == nil {
			return all, nil
		}
		all = append(all, n)
	}
}

func (c *Composer) composeNode() (*Node, error) {
	ev, err := c.next()
	if err != nil {
		return nil, err
	}
	return c.composeNodeFromEvent(ev)
}

func (c *Composer) composeSequence(start event.Event) (*Node, error) {
	if start.Anchor != "" {
		if _, dup := c.anchors[start.Anchor]; dup {
			return nil, c.fail("while composing a sequence", start.Start, fmt.Sprintf("found duplicate anchor %q", start.Anchor), start.Start)
		}
		c.anchors[start.Anchor] = uninitialized
	}

	var items []*Node
	for {
		ev, err := c.next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == event.SequenceEnd {
			break
		}
		item, err := c.composeNodeFromEvent(ev)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	tag, _, err := c.resolver.Resolve(SequenceNode, start.Tag, "", start.Implicit)
	if err != nil {
		return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: start.Start}
	}
	typed, err := c.constructor.constructSequence(tag, items)
	if err != nil {
		return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: start.Start}
	}
	n := &Node{Kind: SequenceNode, Tag: tag, Content: items, CollectionStyle: start.CollectionStyle, Anchor: start.Anchor, Mark: start.Start, Typed: typed}
	if start.Anchor != "" {
		c.anchors[start.Anchor] = n
	}
	return n, nil
}

// composeNodeFromEvent continues composing a node whose first event has
// already been pulled (used where the caller needed to peek the Kind to
// decide sequence-vs-mapping-end first).
func (c *Composer) composeNodeFromEvent(ev event.Event) (*Node, error) {
	switch ev.Kind {
	case event.Alias:
		n, ok := c.anchors[ev.Anchor]
		if !ok {
			return nil, c.fail("while composing a node", ev.Start, fmt.Sprintf("found undefined alias %q", ev.Anchor), ev.Start)
		}
		if n == uninitialized {
			return nil, c.fail("while composing a node", ev.Start, fmt.Sprintf("found recursive alias %q", ev.Anchor), ev.Start)
		}
		return n, nil
	case event.Scalar:
		return c.composeScalarFromEvent(ev)
	case event.SequenceStart:
		return c.composeSequence(ev)
	case event.MappingStart:
		return c.composeMapping(ev)
	default:
		return nil, c.fail("while composing a node", ev.Start, fmt.Sprintf("unexpected %s", ev.Kind), ev.Start)
	}
}

func (c *Composer) composeScalarFromEvent(ev event.Event) (*Node, error) {
	if ev.Anchor != "" {
		if _, dup := c.anchors[ev.Anchor]; dup {
			return nil, c.fail("while composing a node", ev.Start, fmt.Sprintf("found duplicate anchor %q", ev.Anchor), ev.Start)
		}
		c.anchors[ev.Anchor] = uninitialized
	}
	tag, typed, err := c.resolver.Resolve(ScalarNode, ev.Tag, ev.Value, ev.Implicit)
	if err != nil {
		return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: ev.Start}
	}
	if _, custom := c.constructor.scalars[tag]; custom || (typed == nil && tag != resolver.NullTag) {
		typed, err = c.constructor.constructScalar(tag, ev.Value)
		if err != nil {
			return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: ev.Start}
		}
	}
	n := &Node{Kind: ScalarNode, Tag: tag, Value: ev.Value, ScalarStyle: ev.ScalarStyle, Anchor: ev.Anchor, Mark: ev.Start, Typed: typed}
	if ev.Anchor != "" {
		c.anchors[ev.Anchor] = n
	}
	return n, nil
}

func (c *Composer) composeMapping(start event.Event) (*Node, error) {
	if start.Anchor != "" {
		if _, dup := c.anchors[start.Anchor]; dup {
			return nil, c.fail("while composing a mapping", start.Start, fmt.Sprintf("found duplicate anchor %q", start.Anchor), start.Start)
		}
		c.anchors[start.Anchor] = uninitialized
	}

	// explicit[i] reports whether pairs[i] came from a real key in this
	// mapping rather than from flattening a merge key, so a later
	// explicit key can overwrite a merge-supplied default (in either
	// source order: "<<: *d, a: 0" and "a: 0, <<: *d" both leave the
	// explicit a in place) while two genuinely repeated explicit keys
	// still error.
	var pairs []Pair
	var explicit []bool
	for {
		kev, err := c.next()
		if err != nil {
			return nil, err
		}
		if kev.Kind == event.MappingEnd {
			break
		}
		key, err := c.composeNodeFromEvent(kev)
		if err != nil {
			return nil, err
		}
		value, err := c.composeNode()
		if err != nil {
			return nil, err
		}

		if key.Kind == ScalarNode && key.Tag == resolver.MergeTag {
			pairs, explicit, err = mergeInto(pairs, explicit, value, start.Start, c)
			if err != nil {
				return nil, err
			}
			continue
		}

		replaced := false
		for i, p := range pairs {
			if !p.Key.Equal(key) {
				continue
			}
			if explicit[i] {
				return nil, c.fail("while composing a mapping", start.Start, "found duplicate key", key.Mark)
			}
			pairs[i] = Pair{Key: key, Value: value}
			explicit[i] = true
			replaced = true
			break
		}
		if !replaced {
			pairs = append(pairs, Pair{Key: key, Value: value})
			explicit = append(explicit, true)
		}
	}

	tag, _, err := c.resolver.Resolve(MappingNode, start.Tag, "", start.Implicit)
	if err != nil {
		return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: start.Start}
	}
	typed, err := c.constructor.constructMapping(tag, pairs)
	if err != nil {
		return nil, &Error{Kind: ConstructorErrorKind, Problem: err.Error(), ProblemMark: start.Start}
	}
	n := &Node{Kind: MappingNode, Tag: tag, Pairs: pairs, CollectionStyle: start.CollectionStyle, Anchor: start.Anchor, Mark: start.Start, Typed: typed}
	if start.Anchor != "" {
		c.anchors[start.Anchor] = n
	}
	return n, nil
}

// mergeInto flattens a merge-key value (a mapping, or a sequence of
// mappings) into pairs, in order, without overriding any key pair
// already present — from an earlier merge or from an explicit key
// composed before this merge key was reached.
func mergeInto(pairs []Pair, explicit []bool, value *Node, at mark.Mark, c *Composer) ([]Pair, []bool, error) {
	var sources []*Node
	switch value.Kind {
	case MappingNode:
		sources = []*Node{value}
	case SequenceNode:
		sources = value.Content
	default:
		return nil, nil, c.fail("while composing a mapping", at, "merge value must be a mapping or a sequence of mappings", value.Mark)
	}
	for _, src := range sources {
		if src.Kind != MappingNode {
			return nil, nil, c.fail("while composing a mapping", at, "merge value must be a mapping or a sequence of mappings", src.Mark)
		}
		for _, p := range src.Pairs {
			exists := false
			for _, existing := range pairs {
				if existing.Key.Equal(p.Key) {
					exists = true
					break
				}
			}
			if !exists {
				pairs = append(pairs, p)
				explicit = append(explicit, false)
			}
		}
	}
	return pairs, explicit, nil
}
