package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/ast"
)

func TestTypeCheckExternalLiteralStaticType(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	boolType := env.Primitive("bool")
	env.SetVariable("even", env.Alloc.NewFunction([]Id{intType}, boolType))

	id, err := TypeCheck(env, &ast.FnApp{
		Fun:  ast.NewExternal("even", ast.Pos{}),
		Args: []ast.Expr{ast.NewNumber(4, ast.Pos{})},
	})
	require.NoError(t, err)
	assert.Equal(t, "bool", typeName(t, env, id))
}

func TestTypeCheckArityMismatchFallsBackToInferError(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	env.SetVariable("one", env.Alloc.NewFunction([]Id{intType}, intType))

	_, err := TypeCheck(env, &ast.FnApp{
		Fun:  &ast.Variable{Name: "one"},
		Args: []ast.Expr{ast.NewNumber(1, ast.Pos{}), ast.NewNumber(2, ast.Pos{})},
	})
	assert.Error(t, err)
}

func TestTypeCheckNestedApplicationFallsBackToInference(t *testing.T) {
	env := newEnv(t)
	intType := env.Primitive("int")
	// (let add (fn (x : int) (fn (y : int) x))) -- applying the result of
	// a nested FnApp isn't a static reference, so checkFnApp must fall
	// back to plain inference rather than treating it as static.
	inner := &ast.FnDef{Params: []ast.Param{{Name: "y", Type: &ast.TypeName{Name: "int"}}}, Body: &ast.Variable{Name: "x"}}
	outer := &ast.FnDef{Params: []ast.Param{{Name: "x", Type: &ast.TypeName{Name: "int"}}}, Body: inner}
	_, err := TypeCheck(env, &ast.Let{Name: "add", Value: outer})
	require.NoError(t, err)

	id, err := TypeCheck(env, &ast.FnApp{
		Fun: &ast.FnApp{
			Fun:  &ast.Variable{Name: "add"},
			Args: []ast.Expr{ast.NewNumber(1, ast.Pos{})},
		},
		Args: []ast.Expr{ast.NewNumber(2, ast.Pos{})},
	})
	require.NoError(t, err)
	assert.Equal(t, intType, id)
}
