package halyard

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultResolverImplicitScalar(t *testing.T) {
	r := NewDefaultResolver()
	tag, v, err := r.Resolve(ScalarNode, "", "42", true)
	require.NoError(t, err)
	require.Equal(t, IntTag, tag)
	require.Equal(t, int64(42), v)
}

func TestDefaultResolverExplicitTagBypassesImplicitRules(t *testing.T) {
	r := NewDefaultResolver()
	tag, v, err := r.Resolve(ScalarNode, StrTag, "42", false)
	require.NoError(t, err)
	require.Equal(t, StrTag, tag)
	require.Equal(t, "42", v)
}

func TestDefaultResolverCollectionTags(t *testing.T) {
	r := NewDefaultResolver()

	tag, _, err := r.Resolve(SequenceNode, "", "", true)
	require.NoError(t, err)
	require.Equal(t, SeqTag, tag)

	tag, _, err = r.Resolve(MappingNode, "", "", true)
	require.NoError(t, err)
	require.Equal(t, MapTag, tag)

	tag, _, err = r.Resolve(SequenceNode, "!mytag", "", false)
	require.NoError(t, err)
	require.Equal(t, "!mytag", tag)
}

func TestDefaultResolverAddImplicitResolverAppliesWhenNoDefaultMatches(t *testing.T) {
	r := NewDefaultResolver()
	r.AddImplicitResolver("!version", regexp.MustCompile(`^v\d+$`), "v")

	// "v12" isn't recognized by any built-in rule (it falls through to
	// plain str), so the custom rule gets to run.
	tag, v, err := r.Resolve(ScalarNode, "", "v12", true)
	require.NoError(t, err)
	require.Equal(t, "!version", tag)
	require.Equal(t, "v12", v)

	// A scalar that doesn't match the custom rule either still falls
	// through to the built-in str default.
	tag, _, err = r.Resolve(ScalarNode, "", "hello", true)
	require.NoError(t, err)
	require.Equal(t, StrTag, tag)
}

func TestDefaultResolverBuiltinDefaultOverridesConflictingCustomRule(t *testing.T) {
	r := NewDefaultResolver()
	// This rule would (wrongly) claim every plain scalar as !!fallback,
	// including ones the built-in schema already resolves on its own;
	// the built-in int/bool/null resolution must win regardless.
	r.AddImplicitResolver("!fallback", regexp.MustCompile(`^.*$`), "")

	tag, v, err := r.Resolve(ScalarNode, "", "42", true)
	require.NoError(t, err)
	require.Equal(t, IntTag, tag)
	require.Equal(t, int64(42), v)

	tag, v, err = r.Resolve(ScalarNode, "", "true", true)
	require.NoError(t, err)
	require.Equal(t, BoolTag, tag)
	require.Equal(t, true, v)

	// Only a scalar the defaults leave as plain str reaches the custom
	// catch-all rule.
	tag, _, err = r.Resolve(ScalarNode, "", "hello", true)
	require.NoError(t, err)
	require.Equal(t, "!fallback", tag)
}

func TestDefaultResolverDefaultTags(t *testing.T) {
	r := NewDefaultResolver()
	require.Equal(t, StrTag, r.DefaultScalarTag())
	require.Equal(t, SeqTag, r.DefaultSequenceTag())
	require.Equal(t, MapTag, r.DefaultMappingTag())
}
