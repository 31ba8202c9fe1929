package halyard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoaderLoadScalar(t *testing.T) {
	n, err := NewLoaderBytes([]byte("hello\n")).Load()
	require.NoError(t, err)
	require.True(t, n.IsScalar())
	require.Equal(t, "hello", n.Value)
}

func TestLoaderLoadBlockMapping(t *testing.T) {
	n, err := NewLoaderBytes([]byte("a: 1\nb: 2\n")).Load()
	require.NoError(t, err)
	require.True(t, n.IsMapping())
	require.Equal(t, int64(1), n.GetString("a").Typed)
	require.Equal(t, int64(2), n.GetString("b").Typed)
}

func TestLoaderLoadRejectsEmptyDocument(t *testing.T) {
	_, err := NewLoaderBytes([]byte("")).Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestLoaderLoadRejectsMultipleDocuments(t *testing.T) {
	_, err := NewLoaderBytes([]byte("---\na\n---\nb\n")).Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "more than one")
}

func TestLoaderLoadAll(t *testing.T) {
	all, err := NewLoaderBytes([]byte("---\na\n---\nb\n")).LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].Value)
	require.Equal(t, "b", all[1].Value)
}

func TestLoaderNextStreamsLazily(t *testing.T) {
	l := NewLoaderBytes([]byte("---\na\n---\nb\n"))

	n, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "a", n.Value)

	n, err = l.Next()
	require.NoError(t, err)
	require.Equal(t, "b", n.Value)

	n, err = l.Next()
	require.NoError(t, err)
	require.Nil(t, n)
}

func TestLoaderMergeKeys(t *testing.T) {
	doc := "defaults: &d\n  a: 1\n  b: 2\nitem:\n  <<: *d\n  b: 3\n"
	n, err := NewLoaderBytes([]byte(doc)).Load()
	require.NoError(t, err)

	item := n.GetString("item")
	require.NotNil(t, item)
	require.Equal(t, int64(1), item.GetString("a").Typed)
	require.Equal(t, int64(3), item.GetString("b").Typed, "an explicit key should win over the merged-in default")
}

func TestLoaderSexagesimalValues(t *testing.T) {
	n, err := NewLoaderBytes([]byte("duration: 1:10:30\n")).Load()
	require.NoError(t, err)
	require.Equal(t, int64(1*3600+10*60+30), n.GetString("duration").Typed)
}
