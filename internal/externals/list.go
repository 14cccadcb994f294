package externals

import (
	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/types"
)

// listBuiltins covers record field access by atom key (`[]`) and the
// higher-order vector traversal primitives (map, filter) plus range, the
// one vector constructor this core ships as an external rather than
// surface syntax.
func listBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "[]",
			// `[]`'s declared type, `((a b) -> ([] a b))`, is generic over
			// both the container and the key: it can't be written in
			// surface type syntax (TypeProject's concrete `([] R :k)` form
			// only names a literal field), so it's built directly against
			// the arena instead of through TypeEnv.NewType.
			Seed: func(env *types.TypeEnv) (types.Id, error) {
				container := env.Alloc.NewVariable()
				key := env.Alloc.NewVariable()
				result := env.Alloc.NewProjection(container, key)
				return env.Alloc.NewFunction([]types.Id{container, key}, result), nil
			},
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 2 {
					return nil, argError("[]", args, "(record, atom key)")
				}
				rec, ok := args[0].(*ast.Value)
				if !ok || rec.Kind != ast.VRecord {
					return nil, argError("[]", args, "(record, atom key)")
				}
				key, ok := args[1].(*ast.Value)
				if !ok || key.Kind != ast.VAtom {
					return nil, argError("[]", args, "(record, atom key)")
				}
				field, ok := rec.Fields[key.Text]
				if !ok {
					return nil, argError("[]", args, "record field "+key.Text)
				}
				return field, nil
			},
		},
		{
			Name: "map",
			Type: tfun(tcontainer("vec", tvar("b")), tfun(tvar("b"), tvar("a")), tcontainer("vec", tvar("a"))),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 2 {
					return nil, argError("map", args, "(fn, vec)")
				}
				fn := args[0]
				list, ok := args[1].(*ast.Value)
				if !ok || list.Kind != ast.VList {
					return nil, argError("map", args, "(fn, vec)")
				}
				out := make([]ast.Expr, len(list.Elems))
				for i, el := range list.Elems {
					r, err := apply(fn, []ast.Expr{el})
					if err != nil {
						return nil, err
					}
					out[i] = r
				}
				return ast.NewList(out, ast.Pos{}), nil
			},
		},
		{
			Name: "filter",
			Type: tfun(tcontainer("vec", tvar("a")), tfun(tname("bool"), tvar("a")), tcontainer("vec", tvar("a"))),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 2 {
					return nil, argError("filter", args, "(fn, vec)")
				}
				fn := args[0]
				list, ok := args[1].(*ast.Value)
				if !ok || list.Kind != ast.VList {
					return nil, argError("filter", args, "(fn, vec)")
				}
				out := make([]ast.Expr, 0, len(list.Elems))
				for _, el := range list.Elems {
					r, err := apply(fn, []ast.Expr{el})
					if err != nil {
						return nil, err
					}
					keep, ok := asBool(r)
					if !ok {
						return nil, argError("filter", args, "predicate returning bool")
					}
					if keep {
						out = append(out, el)
					}
				}
				return ast.NewList(out, ast.Pos{}), nil
			},
		},
		{
			Name: "range",
			Type: tfun(tcontainer("vec", tname("int")), tname("int"), tname("int")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				from, to, err := twoInts("range", args)
				if err != nil {
					return nil, err
				}
				out := make([]ast.Expr, 0)
				for i := from; i < to; i++ {
					out = append(out, ast.NewNumber(i, ast.Pos{}))
				}
				return ast.NewList(out, ast.Pos{}), nil
			},
		},
	}
}
