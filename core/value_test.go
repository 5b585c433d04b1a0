package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
)

func TestTruthy(t *testing.T) {
	require.False(t, core.Truthy(core.Nil{}))
	require.False(t, core.Truthy(core.Bool(false)))
	require.True(t, core.Truthy(core.Bool(true)))
	require.True(t, core.Truthy(core.Int(0)))
	require.True(t, core.Truthy(core.String("")))
}

func TestValueStringForms(t *testing.T) {
	require.Equal(t, "nil", core.Nil{}.String())
	require.Equal(t, "true", core.Bool(true).String())
	require.Equal(t, "42", core.Int(42).String())
	require.Equal(t, "hello", core.String("hello").String())
	require.Equal(t, `"hello"`, core.String("hello").Quote())
	require.Equal(t, "[1 2]", core.NewVector(core.Int(1), core.Int(2)).String())
	require.Equal(t, "'(1 2)", core.NewList(core.Int(1), core.Int(2)).String())
}

func TestListHeadTail(t *testing.T) {
	l := core.NewList(core.Int(1), core.Int(2), core.Int(3))
	require.Equal(t, "1", l.Head().String())
	require.Equal(t, "'(2 3)", l.Tail().String())

	empty := &core.List{}
	require.Equal(t, "nil", empty.Head().String())
	require.Equal(t, "'()", empty.Tail().String())
}

func TestMapKeyRejectsFloat(t *testing.T) {
	_, err := core.NewMapKey(core.Float(1.5))
	require.Error(t, err)
}

func TestMapSetGetDelete(t *testing.T) {
	_, err := core.NewMap(core.Int(1))
	require.Error(t, err, "odd constructor arg count must fail")

	m, err := core.NewMap()
	require.NoError(t, err)

	require.NoError(t, m.Set(core.Int(1), core.String("one")))
	require.NoError(t, m.Set(core.Int(2), core.String("two")))

	v, ok := m.Get(core.Int(1))
	require.True(t, ok)
	require.Equal(t, "one", v.String())

	require.Equal(t, 2, m.Len())

	deleted := m.Delete(core.Int(1))
	require.Equal(t, 1, deleted.Len())
	require.Equal(t, 2, m.Len(), "Delete must not mutate the receiver")
}

func TestMapIsErrorAndPayload(t *testing.T) {
	plain, err := core.NewMap(core.NewKeyword("foo"), core.Int(0))
	require.NoError(t, err)
	require.False(t, plain.IsError())
	require.Equal(t, core.Nil{}, plain.ErrorPayload())

	errMap, err := core.NewMap(core.NewKeyword("error"), core.String("boom"))
	require.NoError(t, err)
	require.True(t, errMap.IsError())
	require.Equal(t, "boom", errMap.ErrorPayload().String())
}

func TestEqual(t *testing.T) {
	require.True(t, core.Equal(core.Int(1), core.Int(1)))
	require.False(t, core.Equal(core.Int(1), core.Float(1)))
	require.True(t, core.Equal(core.NewVector(core.Int(1)), core.NewVector(core.Int(1))))
	require.False(t, core.Equal(core.NewVector(core.Int(1)), core.NewList(core.Int(1))))
	require.True(t, core.Equal(core.String("a"), core.String("a")))
}
