package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
)

func TestEvalAtomSwapReset(t *testing.T) {
	got := evalAll(t, `
(def counter (atom 0))
(swap! counter (fn [n] (+ n 1)))
(swap! counter (fn [n] (+ n 1)))
(reset! counter 100)
(swap! counter (fn [n] (+ n 1)))
(deref counter)
`)
	require.Equal(t, "101", got.String())
}

func TestEvalChannelSendReceive(t *testing.T) {
	got := evalAll(t, `
(def ch (channel 1))
(send ch 7)
(receive ch)
`)
	require.Equal(t, "7", got.String())
}

func TestEvalGoRunReturnsAwaitableTask(t *testing.T) {
	got := evalAll(t, `
(def t (go-run (+ 1 2)))
(await t)
`)
	require.Equal(t, "3", got.String())
}

func TestEvalScopeGoWithScope(t *testing.T) {
	got := evalAll(t, `
(def result (atom 0))
(with-scope (fn [s]
  (scope-go s (swap! result (fn [n] (+ n 1))))
  (scope-go s (swap! result (fn [n] (+ n 1))))))
(deref result)
`)
	require.Equal(t, "2", got.String())
}

func TestEvalPmapAppliesConcurrently(t *testing.T) {
	got := evalAll(t, "(pmap (fn [x] (* x x)) [1 2 3 4])")
	v, ok := got.(*core.Vector)
	require.True(t, ok, "expected a vector, got %#v", got)
	require.Equal(t, 4, len(v.Items))
	require.Equal(t, "16", v.Items[3].String())
}

func TestEvalPreduceCombinesResults(t *testing.T) {
	got := evalAll(t, "(preduce + 0 [1 2 3 4 5])")
	require.Equal(t, "15", got.String())
}
