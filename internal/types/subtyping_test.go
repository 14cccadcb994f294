package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/ast"
)

func mustType(t *testing.T, env *TypeEnv, expr ast.TypeExpr) Id {
	t.Helper()
	id, err := env.NewType(expr)
	require.NoError(t, err)
	return id
}

func TestIsSubtypeIdentity(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	ok, err := IsSubtype(env, intType, intType)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSubtypeAnyIsTop(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	anyType := env.Primitive("any")
	ok, err := IsSubtype(env, intType, anyType)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSubtype(env, anyType, intType)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubtypeLiteralToNominal(t *testing.T) {
	env := newEnv(t)
	literal := mustType(t, env, &ast.TypeName{Name: "7"})
	intType := env.Primitive("int")
	ok, err := IsSubtype(env, literal, intType)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSubtype(env, intType, literal)
	require.NoError(t, err)
	assert.False(t, ok, "nominal int is not a subtype of one specific literal")
}

func TestIsSubtypeUnionMembership(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	boolType := env.Primitive("bool")
	union := env.Alloc.NewUnion([]Id{intType, boolType})
	ok, err := IsSubtype(env, intType, union)
	require.NoError(t, err)
	assert.True(t, ok)

	strType := env.Primitive("str")
	ok, err = IsSubtype(env, strType, union)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubtypeFunctionContravariantArgsCovariantResult(t *testing.T) {
	env := newEnv(t)
	anyType := env.Primitive("any")
	intType := env.Primitive("int")

	// (any) -> int <: (int) -> any
	narrow := env.Alloc.NewFunction([]Id{anyType}, intType)
	wide := env.Alloc.NewFunction([]Id{intType}, anyType)
	ok, err := IsSubtype(env, narrow, wide)
	require.NoError(t, err)
	assert.True(t, ok)

	// the reverse does not hold
	ok, err = IsSubtype(env, wide, narrow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubtypeRecordWidthAndDepth(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	literalSeven := mustType(t, env, &ast.TypeName{Name: "7"})

	narrow := env.Alloc.NewRecord(map[string]Id{"a": intType})
	wide := env.Alloc.NewRecord(map[string]Id{"a": literalSeven, "b": env.Primitive("bool")})

	// wide (extra field b, and a narrower literal `a`) is a subtype of narrow.
	ok, err := IsSubtype(env, wide, narrow)
	require.NoError(t, err)
	assert.True(t, ok)

	// narrow lacks field `b`, so it is not a subtype of a record demanding it.
	ok, err = IsSubtype(env, narrow, wide)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubtypeContainerElementwise(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	anyType := env.Primitive("any")
	vecInt := env.Alloc.NewContainer("vec", []Id{intType})
	vecAny := env.Alloc.NewContainer("vec", []Id{anyType})
	ok, err := IsSubtype(env, vecInt, vecAny)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSubtype(env, vecAny, vecInt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubtypeDistinctVariablesUnrelated(t *testing.T) {
	env := newEnv(t)
	a := env.Alloc.NewVariable()
	b := env.Alloc.NewVariable()
	ok, err := IsSubtype(env, a, b)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnsureSubtypeErrorsOnMismatch(t *testing.T) {
	env := newEnv(t)
	err := EnsureSubtype(env, env.Primitive("bool"), env.Primitive("int"))
	assert.Error(t, err)
}

func TestEnsureSubtypeOK(t *testing.T) {
	env := newEnv(t)
	err := EnsureSubtype(env, env.Primitive("int"), env.Primitive("any"))
	assert.NoError(t, err)
}
