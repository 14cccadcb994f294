package eval

import (
	"fmt"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
	"github.com/wakame-lang/sform/internal/externals"
)

// Eval reduces expr to a value (a *ast.Value, syntactically, though the
// signature returns Expr to stay uniform with the AST) under env. Literals
// already in value form are returned as-is except for records and lists,
// whose fields/elements may still contain unevaluated sub-expressions.
func Eval(env *Environment, expr ast.Expr) (ast.Expr, error) {
	switch e := expr.(type) {
	case *ast.Value:
		return evalValue(env, e)
	case *ast.Variable:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, errors.WrapReport(errors.New("eval", errors.EV002,
				fmt.Sprintf("unbound variable at runtime: %s", e.Name), nil, nil))
		}
		return v, nil
	case *ast.Let:
		val, err := Eval(env, e.Value)
		if err != nil {
			return nil, err
		}
		env.Set(e.Name, val)
		return val, nil
	case *ast.FnDef:
		return ast.NewClosure(e.Params, e.Body, env, e.Pos), nil
	case *ast.FnApp:
		return evalFnApp(env, e)
	case *ast.TypeDef:
		// No runtime effect: type aliases live only in the TypeEnv. The
		// form still needs a value so it can sit in a Program alongside
		// Let/test forms; its own name stands in for it.
		return ast.NewAtom(e.Name, e.Pos), nil
	case *ast.Case:
		return evalCase(env, e)
	case *ast.Include:
		return ast.NewString("", e.Pos), nil
	default:
		return nil, errors.WrapReport(errors.New("internal", errors.INT002,
			fmt.Sprintf("no evaluation rule for %T", expr), nil, nil))
	}
}

func evalValue(env *Environment, v *ast.Value) (ast.Expr, error) {
	switch v.Kind {
	case ast.VRecord:
		fields := make(map[string]ast.Expr, len(v.Fields))
		for _, k := range v.OrderedFields() {
			fv, err := Eval(env, v.Fields[k])
			if err != nil {
				return nil, err
			}
			fields[k] = fv
		}
		return ast.NewRecord(v.OrderedFields(), fields, v.Pos), nil
	case ast.VList:
		elems := make([]ast.Expr, len(v.Elems))
		for i, el := range v.Elems {
			ev, err := Eval(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return ast.NewList(elems, v.Pos), nil
	default:
		// Bool, Number, Atom, String, External, Closure are already values.
		return v, nil
	}
}

func evalFnApp(env *Environment, app *ast.FnApp) (ast.Expr, error) {
	fun, err := Eval(env, app.Fun)
	if err != nil {
		return nil, err
	}
	args := make([]ast.Expr, len(app.Args))
	for i, a := range app.Args {
		av, err := Eval(env, a)
		if err != nil {
			return nil, err
		}
		args[i] = av
	}
	return Apply(fun, args)
}

// Apply invokes fun (a closure or an external) on already-evaluated args.
// It doubles as the externals.Applier passed to higher-order primitives
// (map, filter), so externals can call back into user closures without
// internal/externals importing internal/eval.
func Apply(fun ast.Expr, args []ast.Expr) (ast.Expr, error) {
	v, ok := fun.(*ast.Value)
	if !ok {
		return nil, notAFunction(fun)
	}
	switch v.Kind {
	case ast.VExternal:
		return externals.Dispatch(v.Text, args, Apply)
	case ast.VClosure:
		if len(v.Params) != len(args) {
			return nil, errors.WrapReport(errors.New("eval", errors.EV001,
				fmt.Sprintf("%s: expected %d argument(s), got %d", v, len(v.Params), len(args)), nil, nil))
		}
		callEnv, ok := v.Env.(*Environment)
		if !ok {
			return nil, errors.WrapReport(errors.New("internal", errors.INT002,
				"closure captured a non-Environment value", nil, nil))
		}
		child := callEnv.Child()
		for i, p := range v.Params {
			child.Set(p.Name, args[i])
		}
		return Eval(child, v.Body)
	default:
		return nil, notAFunction(fun)
	}
}

func notAFunction(fun ast.Expr) error {
	return errors.WrapReport(errors.New("eval", errors.EV001,
		fmt.Sprintf("applied a non-function value: %s", fun), nil, nil))
}

func evalCase(env *Environment, c *ast.Case) (ast.Expr, error) {
	for _, br := range c.Branches {
		guard, err := Eval(env, br.Guard)
		if err != nil {
			return nil, err
		}
		gv, ok := guard.(*ast.Value)
		if !ok || gv.Kind != ast.VBool {
			return nil, errors.WrapReport(errors.New("eval", errors.EV001,
				"case guard did not evaluate to a bool", nil, nil))
		}
		if gv.Bool {
			return Eval(env, br.Body)
		}
	}
	return nil, errors.WrapReport(errors.New("eval", errors.EV003,
		"case had no matching guard", nil, nil))
}

// EvalProgram threads one Environment across every top-level form, mirroring
// internal/types.CheckProgram, and returns each form's resulting value in
// order.
func EvalProgram(env *Environment, prog *ast.Program) ([]ast.Expr, error) {
	results := make([]ast.Expr, len(prog.Forms))
	for i, form := range prog.Forms {
		v, err := Eval(env, form)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// NewRootEnvironment builds the Environment every program starts with,
// binding every externals.Registry name to its VExternal literal so a bare
// reference like `+` resolves the same way a user-defined Let would.
func NewRootEnvironment() *Environment {
	env := NewEnvironment(nil)
	for _, name := range externals.Names() {
		env.Set(name, ast.NewExternal(name, ast.Pos{}))
	}
	return env
}
