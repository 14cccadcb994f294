package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEvalProjectionReducesToField(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	rec := env.Alloc.NewRecord(map[string]Id{"a": intType})
	key := env.Alloc.NewPrimitive(":a")
	proj := env.Alloc.NewProjection(rec, key)

	id, err := TypeEval(env, proj)
	require.NoError(t, err)
	assert.Equal(t, intType, id)
}

func TestTypeEvalProjectionMissingFieldErrors(t *testing.T) {
	env := newEnv(t)
	rec := env.Alloc.NewRecord(map[string]Id{"a": env.Primitive("int")})
	key := env.Alloc.NewPrimitive(":b")
	proj := env.Alloc.NewProjection(rec, key)

	_, err := TypeEval(env, proj)
	assert.Error(t, err)
}

func TestTypeEvalProjectionOnNonRecordErrors(t *testing.T) {
	env := newEnv(t)
	key := env.Alloc.NewPrimitive(":a")
	proj := env.Alloc.NewProjection(env.Primitive("int"), key)

	_, err := TypeEval(env, proj)
	assert.Error(t, err)
}

// TestTypeEvalProjectionLeavesGenericKeyUnevaluated exercises the `[]`
// external's case: the key parameter is still an unbound Variable (not yet
// unified with a concrete atom literal at an application site), so the
// projection must come back unevaluated rather than erroring.
func TestTypeEvalProjectionLeavesGenericKeyUnevaluated(t *testing.T) {
	env := newEnv(t)
	rec := env.Alloc.NewRecord(map[string]Id{"a": env.Primitive("int")})
	keyVar := env.Alloc.NewVariable()
	proj := env.Alloc.NewProjection(rec, keyVar)

	id, err := TypeEval(env, proj)
	require.NoError(t, err)
	got, err := env.Alloc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, kProjection, got.Kind)
}

// TestTypeEvalPrunesVariableBeforeInspectingKind is a direct regression test
// for TypeEval's bound-Variable handling: a projection whose container is a
// Variable already unified (via SetInstance) with a record must still reduce,
// which only works if TypeEval prunes its argument before switching on Kind.
func TestTypeEvalPrunesVariableBeforeInspectingKind(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	rec := env.Alloc.NewRecord(map[string]Id{"a": intType})

	containerVar := env.Alloc.NewVariable()
	require.NoError(t, env.Alloc.SetInstance(containerVar, rec))

	key := env.Alloc.NewPrimitive(":a")
	proj := env.Alloc.NewProjection(containerVar, key)

	id, err := TypeEval(env, proj)
	require.NoError(t, err)
	assert.Equal(t, intType, id)

	// The same holds for a bare bound Variable passed straight to TypeEval,
	// not just one buried inside a projection's Container field.
	id, err = TypeEval(env, containerVar)
	require.NoError(t, err)
	assert.Equal(t, rec, id)
}

func TestTypeEvalUnionFlattensNestedMembers(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	boolType := env.Primitive("bool")
	strType := env.Primitive("str")

	inner := env.Alloc.NewUnion([]Id{intType, boolType})
	outer := env.Alloc.NewUnion([]Id{inner, strType})

	id, err := TypeEval(env, outer)
	require.NoError(t, err)
	got, err := env.Alloc.Get(id)
	require.NoError(t, err)
	require.Equal(t, KUnion, got.Kind)
	assert.ElementsMatch(t, []Id{intType, boolType, strType}, got.Members)
}

func TestTypeEvalUnionDeduplicatesMembers(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	boolType := env.Primitive("bool")

	union := env.Alloc.NewUnion([]Id{intType, boolType, intType})
	id, err := TypeEval(env, union)
	require.NoError(t, err)
	got, err := env.Alloc.Get(id)
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)
}

// TestTypeEvalUnionMemoizesByCanonicalForm checks that two separately built
// unions with the same member set (in different orders) normalise to the
// very same arena Id rather than two structurally-equal-but-distinct nodes.
func TestTypeEvalUnionMemoizesByCanonicalForm(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	boolType := env.Primitive("bool")

	first, err := TypeEval(env, env.Alloc.NewUnion([]Id{intType, boolType}))
	require.NoError(t, err)
	second, err := TypeEval(env, env.Alloc.NewUnion([]Id{boolType, intType}))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTypeEvalIsIdempotentOnAlreadyNormalType(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	id, err := TypeEval(env, intType)
	require.NoError(t, err)
	assert.Equal(t, intType, id)
}
