package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/log"
	"github.com/qi-lang/qi/reader"
)

// evalAll evaluates every top-level form in src into a fresh evaluator's
// root environment and returns the value of the last form.
func evalAll(t *testing.T, src string) core.Value {
	t.Helper()

	ev := core.NewEvaluator(log.Logger{})

	forms, err := reader.Parse(src)
	require.NoError(t, err, "parse %q", src)
	require.NotEmpty(t, forms)

	var (
		result core.Value
		evErr  error
	)

	for _, form := range forms {
		result, evErr = ev.Eval(form, ev.Root)
		require.NoError(t, evErr, "eval %q", src)
	}

	return result
}

func TestEvalArithmeticAndCompare(t *testing.T) {
	require.Equal(t, "6", evalAll(t, "(+ 1 2 3)").String())
	require.Equal(t, "true", evalAll(t, "(< 1 2 3)").String())
	require.Equal(t, "false", evalAll(t, "(= 1 2)").String())
}

func TestEvalDefAndLookup(t *testing.T) {
	require.Equal(t, "42", evalAll(t, "(def x 42) x").String())
}

func TestEvalDefnAndApply(t *testing.T) {
	got := evalAll(t, "(defn square [n] (* n n)) (square 9)")
	require.Equal(t, "81", got.String())
}

func TestEvalFnClosure(t *testing.T) {
	got := evalAll(t, `
(def make-adder (fn [n] (fn [x] (+ x n))))
(def add5 (make-adder 5))
(add5 10)
`)
	require.Equal(t, "15", got.String())
}

func TestEvalLet(t *testing.T) {
	got := evalAll(t, "(let [x 1 y 2] (+ x y))")
	require.Equal(t, "3", got.String())
}

func TestEvalDo(t *testing.T) {
	got := evalAll(t, "(do 1 2 3)")
	require.Equal(t, "3", got.String())
}

func TestEvalIf(t *testing.T) {
	require.Equal(t, "1", evalAll(t, "(if true 1 2)").String())
	require.Equal(t, "2", evalAll(t, "(if false 1 2)").String())
}

func TestEvalWhen(t *testing.T) {
	require.Equal(t, "1", evalAll(t, "(when true 1)").String())
	require.Equal(t, "nil", evalAll(t, "(when false 1)").String())
}

func TestEvalWhileAccumulates(t *testing.T) {
	got := evalAll(t, `
(def i 0)
(def total 0)
(while (< i 5)
  (def total (+ total i))
  (def i (+ i 1)))
total
`)
	require.Equal(t, "10", got.String())
}

func TestEvalUntil(t *testing.T) {
	got := evalAll(t, `
(def i 0)
(until (= i 3)
  (def i (+ i 1)))
i
`)
	require.Equal(t, "3", got.String())
}

func TestEvalQuote(t *testing.T) {
	got := evalAll(t, "(quote (1 2 3))")
	_, ok := got.(*core.List)
	require.True(t, ok, "expected a list, got %#v", got)
}

func TestEvalQuasiUnquote(t *testing.T) {
	got := evalAll(t, "(def x 5) (quasi (1 (unquote x) 3))")
	l, ok := got.(*core.List)
	require.True(t, ok, "expected a list, got %#v", got)
	require.Equal(t, "5", l.Items[1].String())
}

func TestEvalMatch(t *testing.T) {
	got := evalAll(t, `
(match 2
  1 -> "one"
  2 -> "two"
  _ -> "other")
`)
	require.Equal(t, "two", got.String())
}

func TestEvalMatchFallthrough(t *testing.T) {
	got := evalAll(t, `
(match 99
  1 -> "one"
  _ -> "other")
`)
	require.Equal(t, "other", got.String())
}

func TestEvalLoopRecur(t *testing.T) {
	got := evalAll(t, `
(loop [n 5 acc 1]
  (if (= n 0)
    acc
    (recur (- n 1) (* acc n))))
`)
	require.Equal(t, "120", got.String())
}

func TestEvalMacExpandsBeforeEval(t *testing.T) {
	got := evalAll(t, `
(mac unless [cond body] (quasi (if (unquote cond) nil (unquote body))))
(unless false 7)
`)
	require.Equal(t, "7", got.String())
}

func TestEvalTryCatchesError(t *testing.T) {
	got := evalAll(t, `
(try
  (error "boom")
  (catch e (str "caught: " (get e :error))))
`)
	require.Equal(t, "caught: boom", got.String())
}

func TestEvalDeferRunsOnReturn(t *testing.T) {
	got := evalAll(t, `
(def log (atom []))
(defn f []
  (defer (swap! log conj "deferred"))
  (swap! log conj "body")
  (deref log))
(f)
`)
	v, ok := got.(*core.Vector)
	require.True(t, ok, "expected a vector, got %#v", got)
	require.Equal(t, 1, v.Len())
}

func TestApplyWithTooFewArgsErrors(t *testing.T) {
	ev := core.NewEvaluator(log.Logger{})

	forms, err := reader.Parse("(defn needs-two [a b] (+ a b))")
	require.NoError(t, err)

	for _, form := range forms {
		_, err := ev.Eval(form, ev.Root)
		require.NoError(t, err)
	}

	sym, err := ev.Root.Lookup("needs-two")
	require.NoError(t, err)

	_, err = ev.Apply(t.Context(), sym, []core.Value{core.Int(1)}, false)
	require.Error(t, err)
}
