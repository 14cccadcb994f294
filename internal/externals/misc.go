package externals

import (
	"fmt"
	"os"

	"github.com/wakame-lang/sform/internal/ast"
)

// miscBuiltins covers the primitives that don't fit arithmetic, logic, or
// the container group: identity, the debug-print passthrough, and
// stringification.
func miscBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "id",
			Type: tfun(tvar("a"), tvar("a")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 1 {
					return nil, argError("id", args, "1 argument")
				}
				return args[0], nil
			},
		},
		{
			Name: "dbg",
			Type: tfun(tvar("a"), tvar("a")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 1 {
					return nil, argError("dbg", args, "1 argument")
				}
				fmt.Fprintln(os.Stderr, args[0].String())
				return args[0], nil
			},
		},
		{
			Name: "to_string",
			Type: tfun(tname("str"), tvar("a")),
			Impl: func(args []ast.Expr, apply Applier) (ast.Expr, error) {
				if len(args) != 1 {
					return nil, argError("to_string", args, "1 argument")
				}
				return ast.NewString(displayString(args[0]), ast.Pos{}), nil
			},
		},
	}
}

// displayString renders a Value the way `to_string` presents it: atoms and
// strings lose their sigil/quoting, everything else uses the AST's own
// s-expression rendering.
func displayString(e ast.Expr) string {
	v, ok := e.(*ast.Value)
	if !ok {
		return e.String()
	}
	switch v.Kind {
	case ast.VAtom:
		return v.Text
	case ast.VString:
		return v.Text
	default:
		return v.String()
	}
}
