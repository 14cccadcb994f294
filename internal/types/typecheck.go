package types

import (
	"github.com/wakame-lang/sform/internal/ast"
)

// TypeCheck walks expr in synthesis mode by default, switching to checking
// mode wherever expr carries an annotation (handled inline by Infer for
// Let). Beyond pure inference it adds an application-site re-check: once a
// function's *declared*, non-generic type is known statically (a reference
// to a top-level Let/FnDef or an external), each argument is required to be
// a subtype of the declared parameter type — this is what lets a record
// with extra fields flow into a function that only asks for a subset,
// something plain unification alone would reject.
func TypeCheck(env *TypeEnv, expr ast.Expr) (Id, error) {
	id, err := typeCheck(env, expr, NonGeneric{})
	if err != nil {
		return 0, err
	}
	// Inference leaves compound types in whatever shape unification built
	// them (e.g. a still-unreduced `[]` projection once its key unifies
	// with a concrete atom) — normalise once at the outer boundary so the
	// type callers observe (CLI output, `Let` re-binding) is always the
	// reduced form.
	return TypeEval(env, id)
}

func typeCheck(env *TypeEnv, expr ast.Expr, nonGeneric NonGeneric) (Id, error) {
	app, ok := expr.(*ast.FnApp)
	if !ok {
		return Infer(env, expr, nonGeneric)
	}
	return checkFnApp(env, app, nonGeneric)
}

func checkFnApp(env *TypeEnv, app *ast.FnApp, nonGeneric NonGeneric) (Id, error) {
	declared, isStatic := staticFunctionType(env, app.Fun)
	if !isStatic || env.Alloc.IsGeneric(declared) {
		return inferFnApp(env, app, nonGeneric)
	}

	ft, err := env.Alloc.Get(declared)
	if err != nil {
		return 0, err
	}
	if ft.Kind != KFunction || len(ft.Args) != len(app.Args) {
		// Arity mismatch or not actually a function type — let inference
		// produce the standard unification error.
		return inferFnApp(env, app, nonGeneric)
	}
	for i, argExpr := range app.Args {
		argType, err := typeCheck(env, argExpr, nonGeneric)
		if err != nil {
			return 0, err
		}
		if err := EnsureSubtype(env, argType, ft.Args[i]); err != nil {
			return 0, err
		}
	}
	return ft.Ret, nil
}

// staticFunctionType returns the declared (pre-fresh-rename) type of fun
// when fun is a direct reference whose type is already fixed in TypeEnv — a
// named variable or an external literal — and true. Anything else (nested
// application, inline FnDef, ...) returns ok=false so the caller falls back
// to ordinary HM unification.
func staticFunctionType(env *TypeEnv, fun ast.Expr) (Id, bool) {
	switch f := fun.(type) {
	case *ast.Variable:
		id, ok := env.GetVariable(f.Name)
		return id, ok
	case *ast.Value:
		if f.Kind == ast.VExternal {
			id, ok := env.GetVariable(f.Text)
			return id, ok
		}
	}
	return 0, false
}

// CheckProgram threads one TypeEnv across every top-level form (the
// prelude's forms followed by the user program's, concatenated by the
// driver before type-checking), returning each form's type in order.
func CheckProgram(env *TypeEnv, prog *ast.Program) ([]Id, error) {
	types := make([]Id, len(prog.Forms))
	for i, form := range prog.Forms {
		t, err := TypeCheck(env, form)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}
