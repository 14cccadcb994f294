package externals

import (
	"github.com/wakame-lang/sform/internal/ast"
)

func logicBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "not",
			Type: tfun(tname("bool"), tname("bool")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				b, err := oneBool("not", args)
				if err != nil {
					return nil, err
				}
				return ast.NewBool(!b, ast.Pos{}), nil
			},
		},
		{
			Name: "&",
			Type: tfun(tname("bool"), tname("bool"), tname("bool")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				a, b, err := twoBools("&", args)
				if err != nil {
					return nil, err
				}
				return ast.NewBool(a && b, ast.Pos{}), nil
			},
		},
		{
			Name: "|",
			Type: tfun(tname("bool"), tname("bool"), tname("bool")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				a, b, err := twoBools("|", args)
				if err != nil {
					return nil, err
				}
				return ast.NewBool(a || b, ast.Pos{}), nil
			},
		},
	}
}

func oneBool(name string, args []ast.Expr) (bool, error) {
	if len(args) != 1 {
		return false, argError(name, args, "1 bool argument")
	}
	b, ok := asBool(args[0])
	if !ok {
		return false, argError(name, args, "1 bool argument")
	}
	return b, nil
}

func twoBools(name string, args []ast.Expr) (bool, bool, error) {
	if len(args) != 2 {
		return false, false, argError(name, args, "2 bool arguments")
	}
	a, ok := asBool(args[0])
	if !ok {
		return false, false, argError(name, args, "2 bool arguments")
	}
	b, ok := asBool(args[1])
	if !ok {
		return false, false, argError(name, args, "2 bool arguments")
	}
	return a, b, nil
}
