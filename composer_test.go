package halyard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halyard-yaml/halyard/internal/event"
)

// fixedEvents is an eventSource that replays a canned slice, the way a
// canned scanner/parser fixture would for a test that wants to drive a
// Composer without going through a real reader.
type fixedEvents struct {
	events []event.Event
	i      int
}

func (f *fixedEvents) NextEvent() (event.Event, error) {
	if f.i >= len(f.events) {
		return event.Event{Kind: event.StreamEnd}, nil
	}
	ev := f.events[f.i]
	f.i++
	return ev, nil
}

func newComposer(evs []event.Event) *Composer {
	return NewComposer(&fixedEvents{events: evs}, NewDefaultResolver(), NewDefaultConstructor())
}

func TestComposerScalarDocument(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.Scalar, Value: "42", Implicit: true},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	n, err := c.GetNode()
	require.NoError(t, err)
	require.NotNil(t, n)
	require.True(t, n.IsScalar())
	require.Equal(t, IntTag, n.Tag)
	require.Equal(t, int64(42), n.Typed)
}

func TestComposerEmptyStreamReturnsNilNode(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.StreamEnd},
	})
	n, err := c.GetNode()
	require.NoError(t, err)
	require.Nil(t, n)
}

func TestComposerAnchorAndAlias(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.SequenceStart, Implicit: true},
		{Kind: event.Scalar, Value: "1", Anchor: "a", Implicit: true},
		{Kind: event.Alias, Anchor: "a"},
		{Kind: event.SequenceEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	n, err := c.GetNode()
	require.NoError(t, err)
	require.Len(t, n.Content, 2)
	require.Same(t, n.Content[0], n.Content[1], "the alias should resolve to the exact same node the anchor was attached to")
}

func TestComposerUndefinedAliasErrors(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.Alias, Anchor: "missing"},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	_, err := c.GetNode()
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined alias")
}

func TestComposerDuplicateKeyErrors(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.MappingStart, Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "2", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	_, err := c.GetNode()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate key")
}

func TestComposerMergeKeyFlattensAndExistingWins(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.MappingStart, Implicit: true},
		// explicit "a: 1" comes first, so it should survive the merge
		// even though the merged-in mapping also defines "a".
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.Scalar, Value: "<<", Tag: MergeTag},
		{Kind: event.MappingStart, Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "99", Implicit: true},
		{Kind: event.Scalar, Value: "b", Implicit: true},
		{Kind: event.Scalar, Value: "2", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.MappingEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	n, err := c.GetNode()
	require.NoError(t, err)
	require.Len(t, n.Pairs, 2)
	require.Equal(t, "1", n.GetString("a").Value)
	require.Equal(t, "2", n.GetString("b").Value)
}

func TestComposerMergeKeyFirstExplicitKeyStillWins(t *testing.T) {
	// "<<: *d, a: 0" with *d = {a:1, b:2}: the canonical anchor-defaults-
	// then-override idiom. The merge runs first and would otherwise make
	// the following explicit "a: 0" look like a duplicate of the
	// merge-supplied "a"; it must instead overwrite it, not error.
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.MappingStart, Implicit: true},
		{Kind: event.Scalar, Value: "<<", Tag: MergeTag},
		{Kind: event.MappingStart, Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.Scalar, Value: "b", Implicit: true},
		{Kind: event.Scalar, Value: "2", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "0", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	n, err := c.GetNode()
	require.NoError(t, err)
	require.Len(t, n.Pairs, 2)
	require.Equal(t, "0", n.GetString("a").Value)
	require.Equal(t, "2", n.GetString("b").Value)
}

func TestComposerTwoExplicitDuplicateKeysStillError(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.MappingStart, Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "2", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	_, err := c.GetNode()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate key")
}

func TestComposerGetNodeAll(t *testing.T) {
	c := newComposer([]event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.DocumentEnd},
		{Kind: event.DocumentStart},
		{Kind: event.Scalar, Value: "b", Implicit: true},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	})
	all, err := c.GetNodeAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].Value)
	require.Equal(t, "b", all[1].Value)
}
