package externals

import (
	"github.com/wakame-lang/sform/internal/ast"
)

func arithmeticBuiltins() []*Builtin {
	intOp := func(name string, fn func(a, b int64) int64) *Builtin {
		return &Builtin{
			Name: name,
			Type: tfun(tname("int"), tname("int"), tname("int")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				a, b, err := twoInts(name, args)
				if err != nil {
					return nil, err
				}
				return ast.NewNumber(fn(a, b), ast.Pos{}), nil
			},
		}
	}

	return []*Builtin{
		intOp("+", func(a, b int64) int64 { return a + b }),
		intOp("-", func(a, b int64) int64 { return a - b }),
		intOp("%", func(a, b int64) int64 { return a % b }),
	}
}

func twoInts(name string, args []ast.Expr) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, argError(name, args, "2 int arguments")
	}
	a, ok := asNumber(args[0])
	if !ok {
		return 0, 0, argError(name, args, "2 int arguments")
	}
	b, ok := asNumber(args[1])
	if !ok {
		return 0, 0, argError(name, args, "2 int arguments")
	}
	return a, b, nil
}

func asNumber(e ast.Expr) (int64, bool) {
	v, ok := e.(*ast.Value)
	if !ok || v.Kind != ast.VNumber {
		return 0, false
	}
	return v.Number, true
}

func asBool(e ast.Expr) (bool, bool) {
	v, ok := e.(*ast.Value)
	if !ok || v.Kind != ast.VBool {
		return false, false
	}
	return v.Bool, true
}
