package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/ast"
)

func TestTypeAllocGetOutOfRange(t *testing.T) {
	alloc := NewTypeAlloc()
	_, err := alloc.Get(99)
	assert.Error(t, err)
}

func TestTypeAllocSetInstanceOnNonVariableErrors(t *testing.T) {
	alloc := NewTypeAlloc()
	prim := alloc.NewPrimitive("int")
	err := alloc.SetInstance(prim, prim)
	assert.Error(t, err)
}

func TestTypeAllocIsGenericDetectsUnboundVariable(t *testing.T) {
	alloc := NewTypeAlloc()
	v := alloc.NewVariable()
	fn := alloc.NewFunction([]Id{v}, alloc.NewPrimitive("int"))
	assert.True(t, alloc.IsGeneric(fn))
}

func TestTypeAllocIsGenericFalseOnceBound(t *testing.T) {
	alloc := NewTypeAlloc()
	v := alloc.NewVariable()
	intType := alloc.NewPrimitive("int")
	fn := alloc.NewFunction([]Id{v}, intType)
	require.NoError(t, alloc.SetInstance(v, intType))
	assert.False(t, alloc.IsGeneric(fn))
}

func TestTypeAllocAsSexpRendersFunction(t *testing.T) {
	alloc := NewTypeAlloc()
	a := alloc.NewPrimitive("int")
	b := alloc.NewPrimitive("bool")
	fn := alloc.NewFunction([]Id{a}, b)
	expr, err := alloc.AsSexp(fn, NewIssuer())
	require.NoError(t, err)
	ft, ok := expr.(*ast.TypeFunc)
	require.True(t, ok)
	assert.Equal(t, "int", ft.Args[0].String())
	assert.Equal(t, "bool", ft.Ret.String())
}

func TestTypeAllocAsSexpNamesUnboundVariable(t *testing.T) {
	alloc := NewTypeAlloc()
	v := alloc.NewVariable()
	expr, err := alloc.AsSexp(v, NewIssuer())
	require.NoError(t, err)
	assert.Len(t, expr.String(), 1) // single-letter fresh name
}

func TestTypeAllocProjectionRendersConcreteKey(t *testing.T) {
	alloc := NewTypeAlloc()
	rec := alloc.NewRecord(map[string]Id{"a": alloc.NewPrimitive("int")})
	key := alloc.NewPrimitive(":a")
	proj := alloc.NewProjection(rec, key)
	expr, err := alloc.AsSexp(proj, NewIssuer())
	require.NoError(t, err)
	p, ok := expr.(*ast.TypeProject)
	require.True(t, ok)
	assert.Equal(t, "a", p.Key)
}
