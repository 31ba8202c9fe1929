package halyard

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/halyard-yaml/halyard/internal/resolver"
	"github.com/halyard-yaml/halyard/internal/token"
)

// RepresentFunc converts a single Go value into a Node. Implementations
// call RepresentScalar, RepresentSequence, or RepresentMapping to build
// their result; style may be token.NoScalarStyle/NoCollectionStyle to
// let the Emitter choose.
type RepresentFunc func(r *Representer, v interface{}) (*Node, error)

// Representer maps the runtime type of a user value to the callback
// that turns it into a Node. At most one callback may be registered
// per type.
type Representer struct {
	byType map[reflect.Type]RepresentFunc
}

// NewRepresenter returns an empty Representer.
func NewRepresenter() *Representer {
	return &Representer{byType: map[reflect.Type]RepresentFunc{}}
}

// Register installs (or replaces) the callback for values of exactly
// sample's type.
func (r *Representer) Register(sample interface{}, fn RepresentFunc) {
	r.byType[reflect.TypeOf(sample)] = fn
}

// RepresentScalar builds a scalar Node, the way a RepresentFunc is
// expected to for scalar-shaped values.
func (r *Representer) RepresentScalar(tag, value string, style token.ScalarStyle) *Node {
	return &Node{Kind: ScalarNode, Tag: tag, Value: value, ScalarStyle: style}
}

// RepresentSequence builds a sequence Node from already-represented
// elements.
func (r *Representer) RepresentSequence(tag string, items []*Node, style token.CollectionStyle) *Node {
	return &Node{Kind: SequenceNode, Tag: tag, Content: items, CollectionStyle: style}
}

// RepresentMapping builds a mapping Node from already-represented
// pairs.
func (r *Representer) RepresentMapping(tag string, pairs []Pair, style token.CollectionStyle) *Node {
	return &Node{Kind: MappingNode, Tag: tag, Pairs: pairs, CollectionStyle: style}
}

// Represent converts v to a Node, using a registered callback for v's
// exact type if one exists, falling back to the built-in handling for
// the core schema's Go types (nil, bool, every integer/float kind,
// []byte, time.Time, string, []interface{}, map[string]interface{}, and
// []Pair, which becomes a !!map mapping that keeps the pairs' order).
// Any other type, including []*Node and maps with other key types,
// needs a registered callback.
func (r *Representer) Represent(v interface{}) (*Node, error) {
	if v == nil {
		return r.RepresentScalar(resolver.NullTag, "null", token.Plain), nil
	}
	if n, ok := v.(*Node); ok {
		return n, nil
	}
	if fn, ok := r.byType[reflect.TypeOf(v)]; ok {
		return fn(r, v)
	}

	switch x := v.(type) {
	case bool:
		s := "false"
		if x {
			s = "true"
		}
		return r.RepresentScalar(resolver.BoolTag, s, token.Plain), nil
	case string:
		return r.RepresentScalar(resolver.StrTag, x, token.NoScalarStyle), nil
	case []byte:
		return r.RepresentScalar(resolver.BinaryTag, resolver.EncodeBase64(x), token.Literal), nil
	case time.Time:
		return r.RepresentScalar(resolver.TimestampTag, x.Format(time.RFC3339Nano), token.Plain), nil
	case float32:
		return r.RepresentScalar(resolver.FloatTag, formatFloat(float64(x)), token.Plain), nil
	case float64:
		return r.RepresentScalar(resolver.FloatTag, formatFloat(x), token.Plain), nil
	case []Pair:
		pairs := make([]Pair, len(x))
		copy(pairs, x)
		return r.RepresentMapping(resolver.MapTag, pairs, token.NoCollectionStyle), nil
	case []interface{}:
		items := make([]*Node, len(x))
		for i, e := range x {
			n, err := r.Represent(e)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return r.RepresentSequence(resolver.SeqTag, items, token.NoCollectionStyle), nil
	case map[string]interface{}:
		pairs := make([]Pair, 0, len(x))
		for k, val := range x {
			kn, err := r.Represent(k)
			if err != nil {
				return nil, err
			}
			vn, err := r.Represent(val)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: kn, Value: vn})
		}
		return r.RepresentMapping(resolver.MapTag, pairs, token.NoCollectionStyle), nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64 {
		return r.RepresentScalar(resolver.IntTag, strconv.FormatInt(rv.Int(), 10), token.Plain), nil
	} else if rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uintptr {
		return r.RepresentScalar(resolver.IntTag, strconv.FormatUint(rv.Uint(), 10), token.Plain), nil
	}

	return nil, fmt.Errorf("halyard: no representer registered for type %T", v)
}

func formatFloat(f float64) string {
	switch {
	case f != f:
		return ".nan"
	case f > maxFloat:
		return ".inf"
	case f < -maxFloat:
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

const maxFloat = 1.7976931348623157e+308
