package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/ast"
)

func typeName(t *testing.T, env *TypeEnv, id Id) string {
	t.Helper()
	name, err := env.TypeName(id)
	require.NoError(t, err)
	return name
}

func TestTypeCheckLiterals(t *testing.T) {
	env := newEnv(t)
	id, err := TypeCheck(env, ast.NewNumber(1, ast.Pos{}))
	require.NoError(t, err)
	assert.Equal(t, "1", typeName(t, env, id))

	id, err = TypeCheck(env, ast.NewBool(true, ast.Pos{}))
	require.NoError(t, err)
	assert.Equal(t, "bool", typeName(t, env, id))
}

func TestTypeCheckIdentityFnIsGeneric(t *testing.T) {
	env := newEnv(t)
	fn := &ast.FnDef{Params: []ast.Param{{Name: "x"}}, Body: &ast.Variable{Name: "x"}}
	id, err := TypeCheck(env, fn)
	require.NoError(t, err)
	assert.True(t, env.Alloc.IsGeneric(id))
}

func TestTypeCheckLetWithAnnotationEnforcesSubtyping(t *testing.T) {
	env := newEnv(t)
	let := &ast.Let{Name: "x", Type: &ast.TypeName{Name: "any"}, Value: ast.NewNumber(1, ast.Pos{})}
	_, err := TypeCheck(env, let)
	assert.NoError(t, err)

	bad := &ast.Let{Name: "y", Type: &ast.TypeName{Name: "bool"}, Value: ast.NewNumber(1, ast.Pos{})}
	_, err = TypeCheck(env, bad)
	assert.Error(t, err)
}

func TestTypeCheckFnAppUnifiesArgumentAndParam(t *testing.T) {
	env := newEnv(t)
	// (let idInt (fn (x : int) x)), then (idInt true) should fail.
	fn := &ast.FnDef{
		Params: []ast.Param{{Name: "x", Type: &ast.TypeName{Name: "int"}}},
		Body:   &ast.Variable{Name: "x"},
	}
	_, err := TypeCheck(env, &ast.Let{Name: "idInt", Value: fn})
	require.NoError(t, err)

	_, err = TypeCheck(env, &ast.FnApp{
		Fun:  &ast.Variable{Name: "idInt"},
		Args: []ast.Expr{ast.NewBool(true, ast.Pos{})},
	})
	assert.Error(t, err)
}

func TestTypeCheckRecordWidthSubtypingAtCallSite(t *testing.T) {
	env := newEnv(t)
	// (let getA (fn (r : (record (a : int))) r)) applied to a wider record.
	fn := &ast.FnDef{
		Params: []ast.Param{{Name: "r", Type: &ast.TypeRecord{
			Fields: []ast.TypeRecordField{{Name: "a", Type: &ast.TypeName{Name: "int"}}},
		}}},
		Body: &ast.Variable{Name: "r"},
	}
	_, err := TypeCheck(env, &ast.Let{Name: "getA", Value: fn})
	require.NoError(t, err)

	wideRecord := ast.NewRecord([]string{"a", "b"}, map[string]ast.Expr{
		"a": ast.NewNumber(1, ast.Pos{}),
		"b": ast.NewBool(true, ast.Pos{}),
	}, ast.Pos{})
	_, err = TypeCheck(env, &ast.FnApp{Fun: &ast.Variable{Name: "getA"}, Args: []ast.Expr{wideRecord}})
	assert.NoError(t, err)
}

func TestTypeCheckCaseRequiresBoolGuard(t *testing.T) {
	env := newEnv(t)
	c := &ast.Case{Branches: []ast.CaseBranch{
		{Guard: ast.NewNumber(1, ast.Pos{}), Body: ast.NewNumber(1, ast.Pos{})},
	}}
	_, err := TypeCheck(env, c)
	assert.Error(t, err)
}

func TestTypeCheckCaseWidensLiteralBodiesToNominal(t *testing.T) {
	env := newEnv(t)
	c := &ast.Case{Branches: []ast.CaseBranch{
		{Guard: ast.NewBool(false, ast.Pos{}), Body: ast.NewNumber(0, ast.Pos{})},
		{Guard: ast.NewBool(true, ast.Pos{}), Body: ast.NewNumber(7, ast.Pos{})},
	}}
	id, err := TypeCheck(env, c)
	require.NoError(t, err)
	assert.Equal(t, "int", typeName(t, env, id))
}

func TestTypeCheckCaseMismatchedBranchesError(t *testing.T) {
	env := newEnv(t)
	c := &ast.Case{Branches: []ast.CaseBranch{
		{Guard: ast.NewBool(true, ast.Pos{}), Body: ast.NewNumber(1, ast.Pos{})},
		{Guard: ast.NewBool(true, ast.Pos{}), Body: ast.NewBool(true, ast.Pos{})},
	}}
	_, err := TypeCheck(env, c)
	assert.Error(t, err)
}

func TestCheckProgramThreadsOneEnv(t *testing.T) {
	env := newEnv(t)
	prog := &ast.Program{Forms: []ast.Expr{
		&ast.Let{Name: "x", Type: &ast.TypeName{Name: "int"}, Value: ast.NewNumber(5, ast.Pos{})},
		&ast.Variable{Name: "x"},
	}}
	ids, err := CheckProgram(env, prog)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "int", typeName(t, env, ids[1]))
}

func TestTypeCheckUnboundVariableErrors(t *testing.T) {
	env := newEnv(t)
	_, err := TypeCheck(env, &ast.Variable{Name: "nope"})
	assert.Error(t, err)
}
