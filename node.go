// Package halyard is a YAML 1.1 processing core: a Reader/Scanner/
// Parser pipeline that turns bytes into events, a Composer that turns
// events into a Node tree, and a Serializer/Emitter pair that turns a
// Node tree back into bytes. Resolver, Constructor, and Representer are
// the extension points through which callers customize tag resolution
// and the mapping to and from Go values.
package halyard

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Kind identifies which of Node's variants is populated.
type Kind int8

const (
	ScalarNode Kind = iota
	SequenceNode
	MappingNode
)

func (k Kind) String() string {
	switch k {
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Pair is one (key, value) entry of a mapping node, kept in the order
// it was composed or appended so omap/pairs semantics are representable.
type Pair struct {
	Key   *Node
	Value *Node
}

// Node is a single vertex of a composed (or hand-built) document tree.
// Exactly one of Value, Content, Pairs applies, selected by Kind.
type Node struct {
	Kind Kind
	Tag  string
	Mark mark.Mark

	Anchor string

	// Scalar fields.
	Value       string // raw textual form
	ScalarStyle token.ScalarStyle
	Typed       interface{} // the Constructor's decoded Go value, e.g. int64, bool, time.Time, []byte

	// Sequence fields.
	Content []*Node

	// Mapping fields.
	Pairs []Pair

	CollectionStyle token.CollectionStyle
}

// NewScalar builds a scalar node with an already-resolved tag and typed
// value, the way a Representer callback does.
func NewScalar(tag, value string, typed interface{}) *Node {
	return &Node{Kind: ScalarNode, Tag: tag, Value: value, Typed: typed}
}

// NewSequence builds a sequence node from already-built child nodes.
func NewSequence(tag string, content ...*Node) *Node {
	return &Node{Kind: SequenceNode, Tag: tag, Content: content}
}

// NewMapping builds a mapping node from already-built pairs.
func NewMapping(tag string, pairs ...Pair) *Node {
	return &Node{Kind: MappingNode, Tag: tag, Pairs: pairs}
}

// IsScalar, IsSequence, IsMapping are convenience predicates.
func (n *Node) IsScalar() bool   { return n.Kind == ScalarNode }
func (n *Node) IsSequence() bool { return n.Kind == SequenceNode }
func (n *Node) IsMapping() bool  { return n.Kind == MappingNode }

// Get returns the value paired with a mapping key equal to k (by
// structural Equal), or nil if absent. It is a no-op on non-mapping
// nodes.
func (n *Node) Get(k *Node) *Node {
	if n.Kind != MappingNode {
		return nil
	}
	for _, p := range n.Pairs {
		if p.Key.Equal(k) {
			return p.Value
		}
	}
	return nil
}

// GetString is a convenience lookup for a mapping keyed by plain
// strings, the common case for configuration-shaped documents.
func (n *Node) GetString(key string) *Node {
	if n.Kind != MappingNode {
		return nil
	}
	for _, p := range n.Pairs {
		if p.Key.Kind == ScalarNode && p.Key.Value == key {
			return p.Value
		}
	}
	return nil
}

// Set inserts or replaces, by structural key equality, a pair in a
// mapping node. It is a no-op on non-mapping nodes.
func (n *Node) Set(key, value *Node) {
	if n.Kind != MappingNode {
		return
	}
	for i, p := range n.Pairs {
		if p.Key.Equal(key) {
			n.Pairs[i].Value = value
			return
		}
	}
	n.Pairs = append(n.Pairs, Pair{Key: key, Value: value})
}

// Append adds a child to a sequence node. It is a no-op on non-sequence
// nodes.
func (n *Node) Append(child *Node) {
	if n.Kind != SequenceNode {
		return
	}
	n.Content = append(n.Content, child)
}

// RemoveAt removes the i-th sequence element or mapping pair.
func (n *Node) RemoveAt(i int) {
	switch n.Kind {
	case SequenceNode:
		if i >= 0 && i < len(n.Content) {
			n.Content = append(n.Content[:i], n.Content[i+1:]...)
		}
	case MappingNode:
		if i >= 0 && i < len(n.Pairs) {
			n.Pairs = append(n.Pairs[:i], n.Pairs[i+1:]...)
		}
	}
}

// Equal reports whether n and other are structurally equal: same
// resolved kind and value, ignoring tag spelling, style, anchor, and
// position.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case ScalarNode:
		return scalarEqual(n, other)
	case SequenceNode:
		if len(n.Content) != len(other.Content) {
			return false
		}
		for i := range n.Content {
			if !n.Content[i].Equal(other.Content[i]) {
				return false
			}
		}
		return true
	case MappingNode:
		if len(n.Pairs) != len(other.Pairs) {
			return false
		}
		used := make([]bool, len(other.Pairs))
		for _, xp := range n.Pairs {
			found := false
			for j, yp := range other.Pairs {
				if used[j] {
					continue
				}
				if xp.Key.Equal(yp.Key) && xp.Value.Equal(yp.Value) {
					used[j] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return false
}

func scalarEqual(x, y *Node) bool {
	if x.Typed != nil && y.Typed != nil {
		return fmt.Sprint(x.Typed) == fmt.Sprint(y.Typed) && resolvedKind(x.Tag) == resolvedKind(y.Tag)
	}
	return x.Value == y.Value
}

func resolvedKind(tag string) string {
	switch tag {
	case "tag:yaml.org,2002:int", "tag:yaml.org,2002:float":
		return "number"
	default:
		return tag
	}
}

// GoString renders a deep, human-readable dump of the node. Error.Error
// appends it when an Error carries a Subject node; the Composer's own
// errors do not set one.
func (n *Node) GoString() string {
	return spew.Sdump(n)
}
