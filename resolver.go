package halyard

import (
	"regexp"

	"github.com/halyard-yaml/halyard/internal/resolver"
)

// Re-exported well-known tags, so callers registering Constructor or
// Representer callbacks don't need to import internal/resolver.
const (
	NullTag      = resolver.NullTag
	BoolTag      = resolver.BoolTag
	IntTag       = resolver.IntTag
	FloatTag     = resolver.FloatTag
	BinaryTag    = resolver.BinaryTag
	TimestampTag = resolver.TimestampTag
	StrTag       = resolver.StrTag
	SeqTag       = resolver.SeqTag
	MapTag       = resolver.MapTag
	OMapTag      = resolver.OMapTag
	PairsTag     = resolver.PairsTag
	SetTag       = resolver.SetTag
	MergeTag     = resolver.MergeTag
	ValueTag     = resolver.ValueTag
)

// Resolver decides a node's tag when none is given explicitly, and what
// tag a particular Go kind defaults to when representing a value with
// no Representer entry of its own.
type Resolver interface {
	// Resolve returns the canonical tag for a scalar/sequence/mapping
	// node. For Kind == ScalarNode, scalar is the raw text and implicit
	// reports whether the source left the tag unspecified (a plain
	// scalar); for collections scalar is unused.
	Resolve(kind Kind, tag string, scalar string, implicit bool) (string, interface{}, error)
	DefaultScalarTag() string
	DefaultSequenceTag() string
	DefaultMappingTag() string
}

type implicitRule struct {
	tag        string
	re         *regexp.Regexp
	firstChars string
}

// DefaultResolver is the core schema Resolver described in spec §6.3:
// the standard tag:yaml.org,2002: types, including the sexagesimal
// integer/float forms. Use AddImplicitResolver to register custom
// rules for scalars the built-in schema would otherwise leave as
// plain strings; the built-in defaults always take priority over a
// custom rule when both would match.
type DefaultResolver struct {
	custom []implicitRule
}

// NewDefaultResolver returns a Resolver implementing the standard core
// schema.
func NewDefaultResolver() *DefaultResolver { return &DefaultResolver{} }

// AddImplicitResolver registers a custom plain-scalar rule. tag is the
// canonical tag to report when re matches the scalar text and the
// scalar's first character is in firstChars (firstChars == "" means
// any character). A custom rule only applies to scalars the built-in
// core schema would otherwise resolve as a plain string; it never
// overrides a default match.
func (r *DefaultResolver) AddImplicitResolver(tag string, re *regexp.Regexp, firstChars string) {
	r.custom = append(r.custom, implicitRule{tag: tag, re: re, firstChars: firstChars})
}

func (r *DefaultResolver) Resolve(kind Kind, tag string, scalar string, implicit bool) (string, interface{}, error) {
	switch kind {
	case SequenceNode:
		if tag == "" || tag == "!" {
			return resolver.SeqTag, nil, nil
		}
		return tag, nil, nil
	case MappingNode:
		if tag == "" || tag == "!" {
			return resolver.MapTag, nil, nil
		}
		return tag, nil, nil
	}

	if !implicit && tag != "" && tag != "!" {
		return resolver.Resolve(tag, scalar)
	}
	if !implicit {
		// A quoted or block scalar with no specific tag is a string.
		return resolver.StrTag, scalar, nil
	}

	// Defaults override user-added entries (spec §6.5): try the
	// built-in core schema first, and only fall back to a custom rule
	// when nothing in the default table recognized the scalar (i.e. it
	// fell all the way through to the str catch-all).
	defaultTag, defaultValue, err := resolver.Resolve("", scalar)
	if err != nil {
		return "", nil, err
	}
	if defaultTag != resolver.StrTag {
		return defaultTag, defaultValue, nil
	}

	for _, rule := range r.custom {
		if rule.firstChars != "" && (scalar == "" || !containsByte(rule.firstChars, scalar[0])) {
			continue
		}
		if rule.re.MatchString(scalar) {
			return rule.tag, scalar, nil
		}
	}
	return defaultTag, defaultValue, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func (r *DefaultResolver) DefaultScalarTag() string   { return resolver.StrTag }
func (r *DefaultResolver) DefaultSequenceTag() string { return resolver.SeqTag }
func (r *DefaultResolver) DefaultMappingTag() string  { return resolver.MapTag }
