package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/value"
)

func TestStack(t *testing.T) {

	s := NewStack[int](2)

	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	assert.Error(t, s.Push(3))

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, 2, top)

	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = s.Pop()
	assert.True(t, basicerr.IsKind(err, basicerr.EmptyStack))
	assert.Equal(t, 0, s.Len())
}

func TestQueue(t *testing.T) {

	q := NewQueue[string]()
	q.Push("a", "b")
	q.Push("c")

	var got []string
	for {
		s, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, s)
	}

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestScalars(t *testing.T) {

	v := NewVariables()

	assert.Equal(t, value.Integer(0), v.Get("I%"))
	assert.Equal(t, value.String(""), v.Get("A$"))
	assert.Equal(t, 0, v.Len())

	require.NoError(t, v.Set("I%", value.Real(3.7)))
	assert.Equal(t, value.Integer(3), v.Get("I%"))

	require.NoError(t, v.Set("X", value.Integer(2)))
	assert.Equal(t, value.Real(2), v.Get("X"))

	err := v.Set("A$", value.Integer(1))
	assert.True(t, basicerr.IsKind(err, basicerr.TypeMismatch))

	require.NoError(t, v.Set("X", value.Integer(5)))
	assert.Equal(t, map[string]value.Value{
		"I%": value.Integer(3),
		"X":  value.Real(5),
	}, v.Snapshot())
}

func TestArrays(t *testing.T) {

	v := NewVariables()

	require.NoError(t, v.Dim("A%", []int{3, 2}))
	require.NoError(t, v.SetElement("A%", []int{3, 2}, value.Integer(7)))

	got, err := v.GetElement("A%", []int{3, 2})
	require.NoError(t, err)
	assert.Equal(t, value.Integer(7), got)

	_, err = v.GetElement("A%", []int{4, 0})
	assert.Error(t, err)

	_, err = v.GetElement("A%", []int{1})
	assert.Error(t, err)

	assert.Error(t, v.Dim("A%", []int{5}))

	// implicit DIM of 10, and scalars with the same name are separate
	require.NoError(t, v.SetElement("B", []int{10}, value.Real(1)))
	_, err = v.GetElement("B", []int{11})
	assert.Error(t, err)
	assert.Equal(t, value.Real(0), v.Get("B"))
}

func TestOptionBase(t *testing.T) {

	v := NewVariables()

	require.NoError(t, v.SetBase(1))
	_, err := v.GetElement("C", []int{0})
	assert.Error(t, err)

	_, err = v.GetElement("C", []int{1})
	assert.NoError(t, err)

	assert.Error(t, v.SetBase(2))
}

func TestTrace(t *testing.T) {

	v := NewVariables()

	var seen []string
	v.SetTrace(func(name string, subs []int, old, new value.Value) {
		seen = append(seen, name+"="+new.String())
	})

	require.NoError(t, v.Set("X", value.Integer(1)))
	require.NoError(t, v.SetElement("Y", []int{1}, value.Integer(2)))

	assert.Equal(t, []string{"X=1.0", "Y=2.0"}, seen)
}

func TestDataRestore(t *testing.T) {

	ctx := New(Options{})

	ctx.AddData(10, []value.Value{value.Integer(1), value.Integer(2)})
	ctx.AddData(20, []value.Value{value.String("x")})

	v, err := ctx.ReadData()
	require.NoError(t, err)
	assert.Equal(t, value.Integer(1), v)

	ctx.Restore(20)
	v, err = ctx.ReadData()
	require.NoError(t, err)
	assert.Equal(t, value.String("x"), v)

	_, err = ctx.ReadData()
	assert.True(t, basicerr.IsKind(err, basicerr.OutOfData))

	ctx.Restore(0)
	assert.Equal(t, 3, ctx.Data.Len())
}

func TestFunctions(t *testing.T) {

	ctx := New(Options{})

	def := &ast.Def{Name: "FNA", Params: []string{"X"}, Body: &ast.Variable{Name: "X"}}
	require.NoError(t, ctx.Define(def))
	assert.Error(t, ctx.Define(def))

	got, err := ctx.Function("FNA")
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = ctx.Function("FNB")
	assert.True(t, basicerr.IsKind(err, basicerr.UndefinedFunction))
}

func TestContextsAreIndependent(t *testing.T) {

	a := New(Options{})
	b := New(Options{})

	require.NoError(t, a.Vars.Set("X", value.Integer(1)))
	require.NoError(t, a.Stack.Push(Frame{Kind: GosubFrame, Resume: 3}))

	_, ok := b.Vars.Lookup("X")
	assert.False(t, ok)
	assert.Equal(t, 0, b.Stack.Len())

	a.Reset()
	_, ok = a.Vars.Lookup("X")
	assert.False(t, ok)
	assert.Equal(t, Loading, a.Pointer.Phase)
}
