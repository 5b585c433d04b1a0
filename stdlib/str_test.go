package stdlib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
)

func callBuiltin(t *testing.T, r *core.Registry, name string, args ...core.Value) core.Value {
	t.Helper()

	b, ok := r.Lookup(name)
	require.True(t, ok, "builtin %q not registered", name)
	require.NoError(t, b.CheckArity(len(args)))

	v, err := b.Fn(context.Background(), args, nil)
	require.NoError(t, err, "%s(%v)", name, args)

	return v
}

func newTestRegistry() *core.Registry {
	r := core.NewEmptyRegistry()
	registerStr(r)
	registerPath(r)

	return r
}

func TestStrUpperLower(t *testing.T) {
	r := newTestRegistry()

	require.Equal(t, "ABC", callBuiltin(t, r, "str-upper", core.String("abc")).String())
	require.Equal(t, "abc", callBuiltin(t, r, "str-lower", core.String("ABC")).String())
}

func TestStrTrim(t *testing.T) {
	r := newTestRegistry()

	require.Equal(t, "hi", callBuiltin(t, r, "str-trim", core.String("  hi  ")).String())
}

func TestStrSplitJoin(t *testing.T) {
	r := newTestRegistry()

	split := callBuiltin(t, r, "str-split", core.String("a,b,c"), core.String(","))

	vec, ok := split.(*core.Vector)
	require.True(t, ok)
	require.Len(t, vec.Items, 3)

	joined := callBuiltin(t, r, "str-join", vec, core.String("-"))
	require.Equal(t, "a-b-c", joined.String())
}

func TestStrContainsReplace(t *testing.T) {
	r := newTestRegistry()

	require.Equal(t, core.Bool(true), callBuiltin(t, r, "str-contains?", core.String("hello"), core.String("ell")))
	require.Equal(t, "heLLo", callBuiltin(t, r, "str-replace", core.String("hello"), core.String("l"), core.String("L")).String())
}

func TestPathCatAbs(t *testing.T) {
	r := newTestRegistry()

	cat := callBuiltin(t, r, "path-cat", core.String("a"), core.String("b"), core.String("c.txt"))
	require.NotEmpty(t, cat.String())

	abs := callBuiltin(t, r, "path-abs", core.String("."))
	require.NotEmpty(t, abs.String())
}

func TestPathPrepend(t *testing.T) {
	r := newTestRegistry()

	got := callBuiltin(t, r, "path-prepend", core.String("b"), core.String("a"))
	require.NotEmpty(t, got.String())
}
