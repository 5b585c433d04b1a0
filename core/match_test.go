package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/log"
	"github.com/qi-lang/qi/reader"
)

func TestCompilePatternWildcardAndSymbol(t *testing.T) {
	wild, err := core.CompilePattern(core.NewSymbol("_"))
	require.NoError(t, err)

	env := core.NewRootEnv().Child()
	require.True(t, wild.Bind(core.Int(1), env))
	_, err = env.Lookup("_")
	require.Error(t, err, "wildcard binds nothing")

	sym, err := core.CompilePattern(core.NewSymbol("x"))
	require.NoError(t, err)

	env = core.NewRootEnv().Child()
	require.True(t, sym.Bind(core.Int(5), env))

	v, err := env.Lookup("x")
	require.NoError(t, err)
	require.Equal(t, "5", v.String())
}

func TestCompilePatternLiteral(t *testing.T) {
	lit, err := core.CompilePattern(core.Int(3))
	require.NoError(t, err)

	env := core.NewRootEnv().Child()
	require.True(t, lit.Bind(core.Int(3), env))
	require.False(t, lit.Bind(core.Int(4), env))
}

func TestCompilePatternVectorWithRest(t *testing.T) {
	pat, err := core.CompilePattern(core.NewVector(
		core.NewSymbol("head"),
		core.NewSymbol("&"),
		core.NewSymbol("tail"),
	))
	require.NoError(t, err)

	env := core.NewRootEnv().Child()
	ok := pat.Bind(core.NewVector(core.Int(1), core.Int(2), core.Int(3)), env)
	require.True(t, ok)

	head, err := env.Lookup("head")
	require.NoError(t, err)
	require.Equal(t, "1", head.String())

	tail, err := env.Lookup("tail")
	require.NoError(t, err)
	l, ok := tail.(*core.List)
	require.True(t, ok, "rest binds a List, got %#v", tail)
	require.Equal(t, 2, len(l.Items))
}

func TestEvalMatchGuard(t *testing.T) {
	got := evalAll(t, `
(match 4
  n -> "even" when (= 0 (% n 2))
  _ -> "odd")
`)
	require.Equal(t, "even", got.String())
}

func TestEvalMatchOrPattern(t *testing.T) {
	got := evalAll(t, `
(match 2
  1 | 2 | 3 -> "small"
  _ -> "large")
`)
	require.Equal(t, "small", got.String())
}

func TestEvalMatchVectorDestructure(t *testing.T) {
	got := evalAll(t, `
(match [1 2 3]
  [a b c] -> (+ a (+ b c))
  _ -> 0)
`)
	require.Equal(t, "6", got.String())
}

func TestEvalMatchNoMatchErrors(t *testing.T) {
	ev := core.NewEvaluator(log.Logger{})

	forms, err := reader.Parse(`(match 1 2 -> "two")`)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	_, err = ev.Eval(forms[0], ev.Root)
	require.ErrorIs(t, err, core.ErrNoMatch)
}
