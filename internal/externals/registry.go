// Package externals is the primitive registry: a top-level component
// alongside the evaluator, not a file inside it. One registry, shared by
// internal/types (to seed the initial TypeEnv with every external's
// declared type — matching register_buildin_fns in
// structural-typesystem/src/type_env.rs) and internal/eval (to dispatch
// application of an External literal).
package externals

import (
	"fmt"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
	"github.com/wakame-lang/sform/internal/types"
)

// Applier invokes a (possibly closure-valued) expression as a function with
// already-evaluated arguments; it is the evaluator's Apply, threaded down so
// higher-order externals (map, filter) can call back into it without
// internal/externals importing internal/eval.
type Applier func(fn ast.Expr, args []ast.Expr) (ast.Expr, error)

// Impl is a primitive's host implementation: it receives already-evaluated
// argument expressions plus an Applier for the higher-order primitives, and
// returns a result expression (always a Value in practice, but Expr keeps
// the signature uniform with the evaluator).
type Impl func(args []ast.Expr, apply Applier) (ast.Expr, error)

// Builtin pairs one external's declared type with its Go implementation.
// Type covers every primitive expressible in surface type syntax; Seed is
// an escape hatch for the handful that are not — `[]`'s declared type is
// generic over both its container and its key (`((a b) -> ([] a b))`),
// which requires building the projection node directly against the arena
// rather than through TypeEnv.NewType.
type Builtin struct {
	Name string
	Type ast.TypeExpr
	Seed func(env *types.TypeEnv) (types.Id, error)
	Impl Impl
}

// Registry is the full set of primitives this core ships, grounded on
// interpreter/src/externals.rs's eval_externals.
var Registry = buildRegistry()

func buildRegistry() map[string]*Builtin {
	reg := map[string]*Builtin{}
	add := func(b *Builtin) { reg[b.Name] = b }

	for _, b := range arithmeticBuiltins() {
		add(b)
	}
	for _, b := range comparisonBuiltins() {
		add(b)
	}
	for _, b := range logicBuiltins() {
		add(b)
	}
	for _, b := range miscBuiltins() {
		add(b)
	}
	for _, b := range listBuiltins() {
		add(b)
	}
	for _, b := range recordBuiltins() {
		add(b)
	}
	return reg
}

// Seed registers every external's declared type into env under its name,
// so ast.Variable/ast.Value{Kind:VExternal} references to it type-check
// like any other statically-typed binding (internal/types.staticFunctionType
// picks it up for the application-site subtyping re-check).
func Seed(env *types.TypeEnv) error {
	for name, b := range Registry {
		var id types.Id
		var err error
		if b.Seed != nil {
			id, err = b.Seed(env)
		} else {
			id, err = env.NewType(b.Type)
		}
		if err != nil {
			return errors.WrapReport(errors.New("internal", errors.INT002,
				fmt.Sprintf("failed to seed external %s: %v", name, err), nil, nil))
		}
		env.SetVariable(name, id)
	}
	return nil
}

// Dispatch looks up name and invokes its implementation on args, passing
// apply through for the higher-order primitives.
func Dispatch(name string, args []ast.Expr, apply Applier) (ast.Expr, error) {
	b, ok := Registry[name]
	if !ok {
		return nil, errors.WrapReport(errors.New("eval", errors.EV004,
			fmt.Sprintf("unknown external: %s", name), nil, nil))
	}
	return b.Impl(args, apply)
}

// Names returns every registered external's name (sorted by the caller if
// needed); used by the evaluator's closure-over-externals setup and by
// `sform repl`'s `:externals` listing.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// -- type-syntax helpers, used across the per-category builtin files --

func tname(name string) ast.TypeExpr { return &ast.TypeName{Name: name} }

func tfun(ret ast.TypeExpr, args ...ast.TypeExpr) ast.TypeExpr {
	return &ast.TypeFunc{Args: args, Ret: ret}
}

func tvar(letter string) ast.TypeExpr { return &ast.TypeName{Name: letter} }

func tcontainer(head string, elem ast.TypeExpr) ast.TypeExpr {
	return &ast.TypeContainer{Head: head, Elems: []ast.TypeExpr{elem}}
}

// argError reports an external invoked with the wrong arity or a
// non-matching argument shape — an EV004-adjacent boundary error, reported
// as EV001 since it is the application (not the name lookup) that failed.
func argError(name string, args []ast.Expr, want string) error {
	return errors.WrapReport(errors.New("eval", errors.EV001,
		fmt.Sprintf("%s: expected %s, got %d argument(s)", name, want, len(args)), nil, nil))
}
