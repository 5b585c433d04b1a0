package reader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
)

func mustParseOne(t *testing.T, src string) core.Value {
	t.Helper()

	v, err := ParseOne(src)
	require.NoError(t, err, "ParseOne(%q)", src)

	return v
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"3.14", "3.14"},
		{`"hi"`, "hi"},
		{":keyword", ":keyword"},
		{"nil", "nil"},
		{"true", "true"},
		{"false", "false"},
		{"symbol-name", "symbol-name"},
	}

	for _, tc := range cases {
		v := mustParseOne(t, tc.src)
		require.Equal(t, tc.want, v.String(), "ParseOne(%q)", tc.src)
	}
}

func TestParseCollections(t *testing.T) {
	v := mustParseOne(t, "(1 2 3)")

	l, ok := v.(*core.List)
	require.True(t, ok, "expected a list, got %#v", v)
	require.Len(t, l.Items, 3)

	vec := mustParseOne(t, "[1 2 3]")
	vv, ok := vec.(*core.Vector)
	require.True(t, ok, "expected a vector, got %#v", vec)
	require.Len(t, vv.Items, 3)

	m := mustParseOne(t, "{:a 1 :b 2}")
	mm, ok := m.(*core.Map)
	require.True(t, ok, "expected a map, got %#v", m)
	require.Equal(t, 2, mm.Len())
}

func TestParseQuoting(t *testing.T) {
	v := mustParseOne(t, "'x")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 2)

	sym, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "quote", sym.Name())

	q := mustParseOne(t, "`(a ~b ~@c)")

	ql, ok := q.(*core.List)
	require.True(t, ok)
	require.Len(t, ql.Items, 2)

	qsym, ok := ql.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "quasi", qsym.Name())
}

func TestParsePipeBasic(t *testing.T) {
	v := mustParseOne(t, "(x |> f)")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 2)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "f", head.Name())

	arg, ok := l.Items[1].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "x", arg.Name())
}

func TestParsePipeIntoExistingCall(t *testing.T) {
	v := mustParseOne(t, "(x |> (g a b))")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 4)

	last, ok := l.Items[3].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "x", last.Name(), "expected x appended at the tail")
}

func TestParsePipePlaceholder(t *testing.T) {
	v := mustParseOne(t, "(x |> (g a _ b))")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 4)

	mid, ok := l.Items[2].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "x", mid.Name(), "expected x inserted at the `_` position")
}

func TestParseParallelPipe(t *testing.T) {
	v := mustParseOne(t, "(xs ||> f)")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "pmap", head.Name())
}

func TestParseGoPipe(t *testing.T) {
	v := mustParseOne(t, "(x ~> f)")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 2)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "go-run", head.Name())

	inner, ok := l.Items[1].(*core.List)
	require.True(t, ok)
	require.Len(t, inner.Items, 2)
}

func TestParseErrPipeLowersToLetIf(t *testing.T) {
	v := mustParseOne(t, "(x |>? f)")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "let", head.Name())

	ifForm, ok := l.Items[2].(*core.List)
	require.True(t, ok)
	require.Len(t, ifForm.Items, 4)

	ifHead, ok := ifForm.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "if", ifHead.Name())
}

func TestParseTap(t *testing.T) {
	v := mustParseOne(t, "(x |> (tap log))")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 3)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "let", head.Name())
}

func TestParseChainedPipes(t *testing.T) {
	v := mustParseOne(t, "(x |> f |> g)")

	l, ok := v.(*core.List)
	require.True(t, ok)
	require.Len(t, l.Items, 2)

	head, ok := l.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "g", head.Name())

	inner, ok := l.Items[1].(*core.List)
	require.True(t, ok)
	require.Len(t, inner.Items, 2)

	innerHead, ok := inner.Items[0].(core.Symbol)
	require.True(t, ok)
	require.Equal(t, "f", innerHead.Name())
}

func TestParseMultipleTopLevelForms(t *testing.T) {
	forms, err := Parse("(def x 1) (def y 2)")
	require.NoError(t, err)
	require.Len(t, forms, 2)
}

func TestParseUnterminatedFormIsSyntaxError(t *testing.T) {
	_, err := ParseOne("(1 2 3")
	require.Error(t, err)

	qerr, ok := core.As(err)
	require.True(t, ok)
	require.Equal(t, core.KindSyntax, qerr.Kind())
}
