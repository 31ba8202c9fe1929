package halyard

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/event"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Serializer walks a Node tree and produces the event sequence that
// re-creates it, assigning anchors to repeated subtrees. It is
// grounded in the teacher library's encode.go encodeNode walk,
// generalized from a single-pass, anchor-free emit (the teacher never
// shares subtrees) into the two-pass "mark repeats, then emit aliases"
// walk spec'd for this core.
type Serializer struct {
	resolver Resolver

	seen         map[*Node]int // visit count during the marking pass
	order        []*Node       // nodes in first-visit (document) order, for deterministic anchor IDs
	anchored     map[*Node]string
	nextAnchorID int
}

// NewSerializer creates a Serializer that uses r to compute each
// scalar's implicit-tag flags.
func NewSerializer(r Resolver) *Serializer {
	return &Serializer{resolver: r}
}

// anchorable mirrors spec §4.5: a node is only worth anchoring
// (even if shared) once repeating it inline would cost more than
// referencing it, which is roughly any collection of more than two
// elements, or a scalar/bytes value longer than 64 characters.
func anchorable(n *Node) bool {
	switch n.Kind {
	case ScalarNode:
		return len(n.Value) > 64
	case SequenceNode:
		return len(n.Content) > 2
	case MappingNode:
		return len(n.Pairs) > 2
	}
	return false
}

func (s *Serializer) mark(n *Node) {
	if n == nil {
		return
	}
	s.seen[n]++
	if s.seen[n] > 1 {
		return // already walked its children once; don't recurse again
	}
	s.order = append(s.order, n)
	switch n.Kind {
	case SequenceNode:
		for _, c := range n.Content {
			s.mark(c)
		}
	case MappingNode:
		for _, p := range n.Pairs {
			s.mark(p.Key)
			s.mark(p.Value)
		}
	}
}

// Events returns the full event stream (StreamStart through StreamEnd)
// for a single document wrapping root.
func (s *Serializer) Events(root *Node, opts DumperOptions) ([]event.Event, error) {
	s.seen = map[*Node]int{}
	s.order = nil
	s.anchored = map[*Node]string{}
	s.nextAnchorID = 0
	s.mark(root)
	// Walk s.order (first-visit document order) rather than ranging over
	// s.seen directly, so generated anchor IDs are assigned in the same
	// order every run instead of following Go's randomized map iteration.
	for _, n := range s.order {
		if s.seen[n] > 1 && anchorable(n) {
			s.nextAnchorID++
			s.anchored[n] = fmt.Sprintf("id%03d", s.nextAnchorID)
		}
	}

	var out []event.Event
	out = append(out, event.Event{Kind: event.StreamStart})

	var version *token.Version
	if opts.YAMLVersion != "" {
		var maj, min int
		fmt.Sscanf(opts.YAMLVersion, "%d.%d", &maj, &min)
		version = &token.Version{Major: int8(maj), Minor: int8(min)}
	}
	out = append(out, event.Event{
		Kind: event.DocumentStart, Version: version, TagDirectives: opts.TagDirectives,
		ExplicitDocument: opts.ExplicitStart,
	})

	emitted := map[*Node]bool{}
	events, err := s.serializeNode(root, emitted)
	if err != nil {
		return nil, err
	}
	out = append(out, events...)

	out = append(out, event.Event{Kind: event.DocumentEnd, ExplicitDocument: opts.ExplicitEnd})
	out = append(out, event.Event{Kind: event.StreamEnd})
	return out, nil
}

func (s *Serializer) serializeNode(n *Node, emitted map[*Node]bool) ([]event.Event, error) {
	if n == nil {
		return []event.Event{{Kind: event.Scalar, Tag: NullTag, Implicit: true, Implicit2: true}}, nil
	}

	if anchor, ok := s.anchored[n]; ok {
		if emitted[n] {
			return []event.Event{{Kind: event.Alias, Anchor: anchor}}, nil
		}
		emitted[n] = true
		return s.serializeWithAnchor(n, anchor, emitted)
	}
	return s.serializeWithAnchor(n, "", emitted)
}

func (s *Serializer) serializeWithAnchor(n *Node, anchor string, emitted map[*Node]bool) ([]event.Event, error) {
	switch n.Kind {
	case ScalarNode:
		detectedTag, _, _ := s.resolver.Resolve(ScalarNode, "", n.Value, true)
		isDetected := detectedTag == n.Tag
		isDefault := n.Tag == s.resolver.DefaultScalarTag()
		return []event.Event{{
			Kind: event.Scalar, Anchor: anchor, Tag: n.Tag, Value: n.Value,
			ScalarStyle: n.ScalarStyle, Implicit: isDetected, Implicit2: isDefault || isDetected,
		}}, nil

	case SequenceNode:
		if n.Tag == SetTag {
			return s.serializeSetAsMapping(n, anchor, emitted)
		}
		isDefault := n.Tag == s.resolver.DefaultSequenceTag()
		events := []event.Event{{Kind: event.SequenceStart, Anchor: anchor, Tag: n.Tag, Implicit: isDefault, CollectionStyle: n.CollectionStyle}}
		for _, c := range n.Content {
			sub, err := s.serializeNode(c, emitted)
			if err != nil {
				return nil, err
			}
			events = append(events, sub...)
		}
		events = append(events, event.Event{Kind: event.SequenceEnd})
		return events, nil

	case MappingNode:
		isDefault := n.Tag == s.resolver.DefaultMappingTag()
		events := []event.Event{{Kind: event.MappingStart, Anchor: anchor, Tag: n.Tag, Implicit: isDefault, CollectionStyle: n.CollectionStyle}}
		for _, p := range n.Pairs {
			keyEvents, err := s.serializeNode(p.Key, emitted)
			if err != nil {
				return nil, err
			}
			valEvents, err := s.serializeNode(p.Value, emitted)
			if err != nil {
				return nil, err
			}
			events = append(events, keyEvents...)
			events = append(events, valEvents...)
		}
		events = append(events, event.Event{Kind: event.MappingEnd})
		return events, nil
	}
	return nil, fmt.Errorf("halyard: node has unknown kind %d", n.Kind)
}

// serializeSetAsMapping renders a !!set-tagged sequence node the way
// §6.4 requires: a mapping whose keys are the set's members, each
// paired with a null value, rather than a plain sequence.
func (s *Serializer) serializeSetAsMapping(n *Node, anchor string, emitted map[*Node]bool) ([]event.Event, error) {
	events := []event.Event{{Kind: event.MappingStart, Anchor: anchor, Tag: n.Tag, CollectionStyle: n.CollectionStyle}}
	for _, key := range n.Content {
		keyEvents, err := s.serializeNode(key, emitted)
		if err != nil {
			return nil, err
		}
		events = append(events, keyEvents...)
		events = append(events, event.Event{Kind: event.Scalar, Tag: NullTag, Implicit: true, Implicit2: true})
	}
	events = append(events, event.Event{Kind: event.MappingEnd})
	return events, nil
}
