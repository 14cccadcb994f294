package ast

import (
	"fmt"
	"strings"
)

// TypeExpr is the surface syntax for a type annotation. It is parsed by
// internal/sexpr and interned into the type arena by
// internal/types.TypeEnv.NewType — TypeExpr itself carries no type-arena Id.
type TypeExpr interface {
	String() string
	typeExprNode()
}

// TypeName is a primitive (int, bool, atom, str, any, vec), a single
// lowercase-letter type variable, an atom/int/string literal type, or an
// aliased name — disambiguated by TypeEnv.NewType, not here.
type TypeName struct {
	Name string
}

func (t *TypeName) typeExprNode()  {}
func (t *TypeName) String() string { return t.Name }

// TypeFunc is `((t1 t2 ...) -> t)`.
type TypeFunc struct {
	Args []TypeExpr
	Ret  TypeExpr
}

func (t *TypeFunc) typeExprNode() {}
func (t *TypeFunc) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("((%s) -> %s)", strings.Join(parts, " "), t.Ret)
}

// TypeRecordField is one `(k : t)` entry of a record type.
type TypeRecordField struct {
	Name string
	Type TypeExpr
}

// TypeRecord is `(record (k : t) ...)`.
type TypeRecord struct {
	Fields []TypeRecordField
}

func (t *TypeRecord) typeExprNode() {}
func (t *TypeRecord) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("(%s : %s)", f.Name, f.Type)
	}
	return fmt.Sprintf("(record %s)", strings.Join(parts, " "))
}

// TypeContainer is `(vec t)` — a parameterised constructor applied to
// element type arguments.
type TypeContainer struct {
	Head  string
	Elems []TypeExpr
}

func (t *TypeContainer) typeExprNode() {}
func (t *TypeContainer) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s %s)", t.Head, strings.Join(parts, " "))
}

// TypeProject is `([] Container :key)` — field projection as a type.
type TypeProject struct {
	Container TypeExpr
	Key       string
}

func (t *TypeProject) typeExprNode() {}
func (t *TypeProject) String() string {
	return fmt.Sprintf("([] %s :%s)", t.Container, t.Key)
}

// TypeUnion is `(| t1 t2 ...)`.
type TypeUnion struct {
	Members []TypeExpr
}

func (t *TypeUnion) typeExprNode() {}
func (t *TypeUnion) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return fmt.Sprintf("(| %s)", strings.Join(parts, " "))
}
