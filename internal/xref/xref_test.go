package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linebasic/internal/basicerr"
)

func TestResolve(t *testing.T) {

	tbl := New()

	require.NoError(t, tbl.AddLine(10, 0))
	tbl.AddStatement(0, 0)
	tbl.AddStatement(1, 0)
	tbl.AddStatement(5, 1)

	require.NoError(t, tbl.AddLine(30, 9))
	tbl.AddStatement(9, 2)
	tbl.AddStatement(10, 2)

	require.NoError(t, tbl.AddLine(20, 7))
	tbl.AddStatement(7, 2)

	idx, err := tbl.Resolve(10)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = tbl.Resolve(30)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = tbl.Resolve(40)
	assert.True(t, basicerr.IsKind(err, basicerr.Runtime))

	line, ok := tbl.LineOfToken(9)
	assert.True(t, ok)
	assert.Equal(t, 30, line)

	tok, ok := tbl.TokenOfStatement(1)
	assert.True(t, ok)
	assert.Equal(t, 5, tok)

	assert.Equal(t, 3, tbl.Len())
}

func TestDuplicateLine(t *testing.T) {

	tbl := New()

	require.NoError(t, tbl.AddLine(10, 0))
	assert.Error(t, tbl.AddLine(10, 4))
}

func TestLinesInOrder(t *testing.T) {

	tbl := New()

	for i, n := range []int{50, 10, 40, 20, 30} {
		require.NoError(t, tbl.AddLine(n, i))
	}

	var got []int
	tbl.Lines(func(lineNo, _ int) bool {
		got = append(got, lineNo)
		return lineNo < 40
	})

	assert.Equal(t, []int{10, 20, 30, 40}, got)
}

func TestCheck(t *testing.T) {

	tbl := New()

	require.NoError(t, tbl.AddLine(10, 0))
	tbl.AddReference(Reference{Target: 10, Line: 10, Token: 2, Statement: 0})
	require.NoError(t, tbl.Check())

	tbl.AddReference(Reference{Target: 99, Line: 10, Source: 1, Token: 4, Statement: 1})

	err := tbl.Check()
	require.Error(t, err)

	var be *basicerr.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, basicerr.Runtime, be.Kind)
	assert.Equal(t, 10, be.Line)
	assert.Equal(t, 4, be.Token)
	assert.Equal(t, 1, be.Statement)
	assert.Contains(t, be.Msg, "99")
}

func TestReset(t *testing.T) {

	tbl := New()

	require.NoError(t, tbl.AddLine(10, 0))
	tbl.Reset()

	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.HasLine(10))
	require.NoError(t, tbl.AddLine(10, 0))
}
