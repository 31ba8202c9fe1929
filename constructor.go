package halyard

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/resolver"
)

// ScalarConstructor turns a scalar's resolved tag and raw text into a
// typed Go value.
type ScalarConstructor func(tag, value string) (interface{}, error)

// SequenceConstructor turns a sequence's resolved tag and already-
// composed element nodes into a typed Go value.
type SequenceConstructor func(tag string, items []*Node) (interface{}, error)

// MappingConstructor turns a mapping's resolved tag and already-
// composed (key, value) pairs into a typed Go value.
type MappingConstructor func(tag string, pairs []Pair) (interface{}, error)

// Constructor maps a canonical tag to the callback that builds its
// typed value. At most one callback may be registered per tag per
// node kind.
type Constructor struct {
	scalars   map[string]ScalarConstructor
	sequences map[string]SequenceConstructor
	mappings  map[string]MappingConstructor
}

// NewConstructor returns an empty Constructor; combine it with
// NewDefaultConstructor's registrations or build one up from scratch.
func NewConstructor() *Constructor {
	return &Constructor{
		scalars:   map[string]ScalarConstructor{},
		sequences: map[string]SequenceConstructor{},
		mappings:  map[string]MappingConstructor{},
	}
}

// RegisterScalar installs (or replaces) the scalar constructor for tag.
func (c *Constructor) RegisterScalar(tag string, fn ScalarConstructor) { c.scalars[tag] = fn }

// RegisterSequence installs (or replaces) the sequence constructor for tag.
func (c *Constructor) RegisterSequence(tag string, fn SequenceConstructor) { c.sequences[tag] = fn }

// RegisterMapping installs (or replaces) the mapping constructor for tag.
func (c *Constructor) RegisterMapping(tag string, fn MappingConstructor) { c.mappings[tag] = fn }

func (c *Constructor) constructScalar(tag, value string) (interface{}, error) {
	if fn, ok := c.scalars[tag]; ok {
		return fn(tag, value)
	}
	_, v, err := resolver.Resolve(tag, value)
	return v, err
}

func (c *Constructor) constructSequence(tag string, items []*Node) (interface{}, error) {
	if fn, ok := c.sequences[tag]; ok {
		return fn(tag, items)
	}
	vals := make([]interface{}, len(items))
	for i, it := range items {
		vals[i] = it.Typed
	}
	return vals, nil
}

func (c *Constructor) constructMapping(tag string, pairs []Pair) (interface{}, error) {
	if fn, ok := c.mappings[tag]; ok {
		return fn(tag, pairs)
	}
	m := make(map[interface{}]interface{}, len(pairs))
	for _, p := range pairs {
		m[p.Key.Typed] = p.Value.Typed
	}
	return m, nil
}

// NewDefaultConstructor returns a Constructor implementing the standard
// core schema: null/bool/int/float/binary/timestamp/str scalars, seq
// sequences, and map/omap/pairs/set mappings.
func NewDefaultConstructor() *Constructor {
	c := NewConstructor()

	c.RegisterScalar(resolver.NullTag, func(tag, value string) (interface{}, error) { return nil, nil })
	c.RegisterScalar(resolver.StrTag, func(tag, value string) (interface{}, error) { return value, nil })
	for _, tag := range []string{resolver.BoolTag, resolver.IntTag, resolver.FloatTag, resolver.BinaryTag, resolver.TimestampTag} {
		tag := tag
		c.RegisterScalar(tag, func(_, value string) (interface{}, error) {
			_, v, err := resolver.Resolve(tag, value)
			return v, err
		})
	}

	c.RegisterSequence(resolver.SeqTag, func(tag string, items []*Node) (interface{}, error) {
		vals := make([]interface{}, len(items))
		for i, it := range items {
			vals[i] = it.Typed
		}
		return vals, nil
	})

	c.RegisterMapping(resolver.MapTag, func(tag string, pairs []Pair) (interface{}, error) {
		m := make(map[interface{}]interface{}, len(pairs))
		for _, p := range pairs {
			m[p.Key.Typed] = p.Value.Typed
		}
		return m, nil
	})

	// omap/pairs are represented compositionally (a sequence of single-
	// pair mapping nodes); the mapping constructor here runs on each of
	// those inner single-pair mappings, same as !!map.
	c.RegisterSequence(resolver.OMapTag, func(tag string, items []*Node) (interface{}, error) {
		pairs := make([]Pair, 0, len(items))
		for _, it := range items {
			if it.Kind != MappingNode || len(it.Pairs) != 1 {
				return nil, fmt.Errorf("!!omap entry must be a single-pair mapping")
			}
			pairs = append(pairs, it.Pairs[0])
		}
		return pairs, nil
	})
	c.RegisterSequence(resolver.PairsTag, func(tag string, items []*Node) (interface{}, error) {
		pairs := make([]Pair, 0, len(items))
		for _, it := range items {
			if it.Kind != MappingNode || len(it.Pairs) != 1 {
				return nil, fmt.Errorf("!!pairs entry must be a single-pair mapping")
			}
			pairs = append(pairs, it.Pairs[0])
		}
		return pairs, nil
	})
	c.RegisterMapping(resolver.SetTag, func(tag string, pairs []Pair) (interface{}, error) {
		keys := make([]interface{}, len(pairs))
		for i, p := range pairs {
			keys[i] = p.Key.Typed
		}
		return keys, nil
	})

	return c
}
