package halyard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeGetAndSet(t *testing.T) {
	m := NewMapping(MapTag,
		Pair{Key: NewScalar(StrTag, "a", "a"), Value: NewScalar(IntTag, "1", int64(1))},
	)

	got := m.GetString("a")
	require.NotNil(t, got)
	require.Equal(t, "1", got.Value)

	m.Set(NewScalar(StrTag, "a", "a"), NewScalar(IntTag, "2", int64(2)))
	require.Len(t, m.Pairs, 1)
	require.Equal(t, "2", m.GetString("a").Value)

	m.Set(NewScalar(StrTag, "b", "b"), NewScalar(IntTag, "3", int64(3)))
	require.Len(t, m.Pairs, 2)
	require.Equal(t, "3", m.GetString("b").Value)
	require.Nil(t, m.GetString("c"))
}

func TestNodeAppendAndRemoveAt(t *testing.T) {
	seq := NewSequence(SeqTag, NewScalar(IntTag, "1", int64(1)))
	seq.Append(NewScalar(IntTag, "2", int64(2)))
	require.Len(t, seq.Content, 2)

	seq.RemoveAt(0)
	require.Len(t, seq.Content, 1)
	require.Equal(t, "2", seq.Content[0].Value)
}

func TestNodeEqualScalar(t *testing.T) {
	a := NewScalar(IntTag, "1", int64(1))
	b := NewScalar(IntTag, "01", int64(1))
	require.True(t, a.Equal(b), "scalars with the same typed value should be equal regardless of raw spelling")

	c := NewScalar(StrTag, "1", "1")
	require.False(t, a.Equal(c), "an int and a string scalar must not compare equal even with matching text")
}

func TestNodeEqualMappingIgnoresPairOrder(t *testing.T) {
	a := NewMapping(MapTag,
		Pair{Key: NewScalar(StrTag, "x", "x"), Value: NewScalar(IntTag, "1", int64(1))},
		Pair{Key: NewScalar(StrTag, "y", "y"), Value: NewScalar(IntTag, "2", int64(2))},
	)
	b := NewMapping(MapTag,
		Pair{Key: NewScalar(StrTag, "y", "y"), Value: NewScalar(IntTag, "2", int64(2))},
		Pair{Key: NewScalar(StrTag, "x", "x"), Value: NewScalar(IntTag, "1", int64(1))},
	)
	require.True(t, a.Equal(b))
}

func TestNodeEqualSequenceOrderMatters(t *testing.T) {
	a := NewSequence(SeqTag, NewScalar(IntTag, "1", int64(1)), NewScalar(IntTag, "2", int64(2)))
	b := NewSequence(SeqTag, NewScalar(IntTag, "2", int64(2)), NewScalar(IntTag, "1", int64(1)))
	require.False(t, a.Equal(b))
}

func TestNodeGoStringShowsStructure(t *testing.T) {
	n := NewScalar(StrTag, "hello", "hello")
	s := n.GoString()
	require.Contains(t, s, "str")
	require.Contains(t, s, "hello")
}

func TestKindString(t *testing.T) {
	require.Equal(t, "scalar", ScalarNode.String())
	require.Equal(t, "sequence", SequenceNode.String())
	require.Equal(t, "mapping", MappingNode.String())
	require.Contains(t, Kind(99).String(), "kind")
}
