package sexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/eval"
	"github.com/wakame-lang/sform/internal/externals"
	"github.com/wakame-lang/sform/internal/types"
)

// runProgram parses, type-checks and evaluates src end to end, mirroring
// the `sform run` driver's pipeline: one TypeEnv and one Environment
// threaded across every top-level form, externals seeded into both.
func runProgram(t *testing.T, src string) ([]types.Id, []ast.Expr, *types.TypeEnv) {
	t.Helper()
	prog, err := ParseProgram(src, "test.sf", nil)
	require.NoError(t, err)

	alloc := types.NewTypeAlloc()
	tenv, err := types.NewTypeEnv(alloc)
	require.NoError(t, err)
	require.NoError(t, externals.Seed(tenv))

	typeIDs, err := types.CheckProgram(tenv, prog)
	require.NoError(t, err)

	env := eval.NewRootEnvironment()
	values, err := eval.EvalProgram(env, prog)
	require.NoError(t, err)

	return typeIDs, values, tenv
}

func TestIntegrationArithmeticLet(t *testing.T) {
	_, values, _ := runProgram(t, "(let x 1) (+ x 41)")
	assert.Equal(t, int64(42), values[1].(*ast.Value).Number)
}

func TestIntegrationCurriedClosure(t *testing.T) {
	_, values, _ := runProgram(t, `
		(let add (fn x (fn y (+ x y))))
		((add 1) 2)
	`)
	assert.Equal(t, int64(3), values[1].(*ast.Value).Number)
}

// Record field access through the generic `[]` external: ([] r :a) on
// (record (a : 1) (b : true)).
func TestIntegrationRecordProjection(t *testing.T) {
	typeIDs, values, tenv := runProgram(t, `
		(let r (record (a : 1) (b : true)))
		([] r :a)
	`)
	result := values[1].(*ast.Value)
	assert.Equal(t, int64(1), result.Number)

	name, err := tenv.TypeName(typeIDs[1])
	require.NoError(t, err)
	assert.Equal(t, "int", name)
}

func TestIntegrationCaseBranching(t *testing.T) {
	_, values, _ := runProgram(t, `
		(let x 10)
		(case ((== x 1) => :one) ((== x 10) => :ten) (true => :other))
	`)
	assert.Equal(t, "ten", values[1].(*ast.Value).Text)
}

func TestIntegrationMapOverVec(t *testing.T) {
	_, values, _ := runProgram(t, `
		(let inc (fn x (+ x 1)))
		(map inc (vec 1 2 3))
	`)
	list := values[1].(*ast.Value)
	require.Len(t, list.Elems, 3)
	assert.Equal(t, int64(2), list.Elems[0].(*ast.Value).Number)
	assert.Equal(t, int64(4), list.Elems[2].(*ast.Value).Number)
}

func TestIntegrationRecordWidthSubtypingAtCallSite(t *testing.T) {
	// A function declared to take a record with just field `a` should
	// accept a wider record that also carries `b` (width subtyping).
	_, values, _ := runProgram(t, `
		(let getA (fn (r : (record (a : int))) ([] r :a)))
		(getA (record (a : 7) (b : true)))
	`)
	assert.Equal(t, int64(7), values[1].(*ast.Value).Number)
}

func TestIntegrationIncludeSplicesBeforeTypeCheck(t *testing.T) {
	files := map[string]string{
		"main.sf": `(include "lib.sf") (+ shared 1)`,
		"lib.sf":  `(let shared 9)`,
	}
	loader := func(path string) (string, error) { return files[path], nil }
	prog, err := ParseProgram(files["main.sf"], "main.sf", loader)
	require.NoError(t, err)
	require.Len(t, prog.Forms, 2)

	alloc := types.NewTypeAlloc()
	tenv, err := types.NewTypeEnv(alloc)
	require.NoError(t, err)
	require.NoError(t, externals.Seed(tenv))
	_, err = types.CheckProgram(tenv, prog)
	require.NoError(t, err)

	env := eval.NewRootEnvironment()
	values, err := eval.EvalProgram(env, prog)
	require.NoError(t, err)
	assert.Equal(t, int64(10), values[1].(*ast.Value).Number)
}
