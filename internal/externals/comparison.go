package externals

import (
	"github.com/wakame-lang/sform/internal/ast"
)

// comparisonBuiltins covers == and !=, declared over int; the structural
// equality they implement underneath happens to work for any Value, which
// the tests exercise directly even though the static type only admits
// integers.
func comparisonBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "==",
			Type: tfun(tname("bool"), tname("int"), tname("int")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 2 {
					return nil, argError("==", args, "2 arguments")
				}
				return ast.NewBool(equalValues(args[0], args[1]), ast.Pos{}), nil
			},
		},
		{
			Name: "!=",
			Type: tfun(tname("bool"), tname("int"), tname("int")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 2 {
					return nil, argError("!=", args, "2 arguments")
				}
				return ast.NewBool(!equalValues(args[0], args[1]), ast.Pos{}), nil
			},
		},
	}
}

// equalValues compares two evaluated Values structurally. Non-Value
// arguments (unevaluated closures reaching here would be a caller bug) are
// never equal.
func equalValues(x, y ast.Expr) bool {
	vx, ok := x.(*ast.Value)
	if !ok {
		return false
	}
	vy, ok := y.(*ast.Value)
	if !ok || vx.Kind != vy.Kind {
		return false
	}
	switch vx.Kind {
	case ast.VBool:
		return vx.Bool == vy.Bool
	case ast.VNumber:
		return vx.Number == vy.Number
	case ast.VAtom, ast.VString, ast.VExternal:
		return vx.Text == vy.Text
	case ast.VList:
		if len(vx.Elems) != len(vy.Elems) {
			return false
		}
		for i := range vx.Elems {
			if !equalValues(vx.Elems[i], vy.Elems[i]) {
				return false
			}
		}
		return true
	case ast.VRecord:
		if len(vx.Fields) != len(vy.Fields) {
			return false
		}
		for k, fx := range vx.Fields {
			fy, ok := vy.Fields[k]
			if !ok || !equalValues(fx, fy) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
