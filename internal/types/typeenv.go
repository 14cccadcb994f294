package types

import (
	"fmt"
	"unicode"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
)

// TypeEnv interns surface type syntax into arena Ids, maps term-level names
// to their type Id, and records type aliases. One TypeEnv is created per
// type-check+eval session and extended — never replaced — as each
// top-level form and each FnDef body is checked; this deliberately departs
// from the original Rust implementation's "TypeEnv per FnDef" note, since a
// single session-wide environment is what lets one top-level Let's bindings
// stay visible to every form that follows it.
type TypeEnv struct {
	Alloc *TypeAlloc

	// interned memoises NewType by the surface expression's canonical
	// string form, so `int` always interns to the same Id within a session.
	interned map[string]Id

	// aliases: type name -> Id, populated by TypeDef.
	aliases map[string]Id

	// vars: term-level name -> declared/inferred type Id.
	vars map[string]Id

	Trace func(string, ...any)
}

// Primitive names seeded into every fresh TypeEnv.
var corePrimitives = []string{"any", "int", "bool", "atom", "str", "vec"}

func NewTypeEnv(alloc *TypeAlloc) (*TypeEnv, error) {
	env := &TypeEnv{
		Alloc:    alloc,
		interned: map[string]Id{},
		aliases:  map[string]Id{},
		vars:     map[string]Id{},
	}
	for _, name := range corePrimitives {
		id := alloc.NewPrimitive(name)
		env.interned[name] = id
		env.aliases[name] = id
	}
	return env, nil
}

func (e *TypeEnv) trace(format string, args ...any) {
	if e.Trace != nil {
		e.Trace(format, args...)
	}
}

// Primitive looks up one of the seeded primitive ids by name ("int", "any",
// ...); it is always present since NewTypeEnv seeds it.
func (e *TypeEnv) Primitive(name string) Id {
	id, ok := e.aliases[name]
	if !ok {
		panic("types: unseeded primitive " + name)
	}
	return id
}

func (e *TypeEnv) NewAlias(name string, id Id) {
	e.aliases[name] = id
	e.trace("new_alias: %s = #%d", name, id)
}

func (e *TypeEnv) ResolveAlias(name string) (Id, bool) {
	id, ok := e.aliases[name]
	return id, ok
}

func (e *TypeEnv) GetVariable(name string) (Id, bool) {
	id, ok := e.vars[name]
	return id, ok
}

func (e *TypeEnv) SetVariable(name string, id Id) {
	e.vars[name] = id
	e.trace("set_variable: %s : #%d", name, id)
}

func (e *TypeEnv) TypeName(id Id) (string, error) {
	return e.Alloc.AsString(id, NewIssuer())
}

func isTypeVariableName(name string) bool {
	r := []rune(name)
	return len(r) == 1 && unicode.IsLower(r[0])
}

// NewType parses a surface TypeExpr into an arena Id, constructing
// primitive/variable/function/record/container/union nodes recursively.
// Results are memoised by the expression's canonical string so repeated
// annotations of "int" always collapse to one Id.
func (e *TypeEnv) NewType(expr ast.TypeExpr) (Id, error) {
	key := expr.String()
	if id, ok := e.interned[key]; ok {
		return id, nil
	}
	id, err := e.newType(expr)
	if err != nil {
		return 0, err
	}
	e.interned[key] = id
	return id, nil
}

func (e *TypeEnv) newType(expr ast.TypeExpr) (Id, error) {
	switch te := expr.(type) {
	case *ast.TypeName:
		return e.newTypeName(te.Name)
	case *ast.TypeFunc:
		args := make([]Id, len(te.Args))
		for i, a := range te.Args {
			id, err := e.NewType(a)
			if err != nil {
				return 0, err
			}
			args[i] = id
		}
		ret, err := e.NewType(te.Ret)
		if err != nil {
			return 0, err
		}
		return e.Alloc.NewFunction(args, ret), nil
	case *ast.TypeRecord:
		fields := make(map[string]Id, len(te.Fields))
		for _, f := range te.Fields {
			id, err := e.NewType(f.Type)
			if err != nil {
				return 0, err
			}
			fields[f.Name] = id
		}
		return e.Alloc.NewRecord(fields), nil
	case *ast.TypeContainer:
		elems := make([]Id, len(te.Elems))
		for i, el := range te.Elems {
			id, err := e.NewType(el)
			if err != nil {
				return 0, err
			}
			elems[i] = id
		}
		return e.Alloc.NewContainer(te.Head, elems), nil
	case *ast.TypeProject:
		container, err := e.NewType(te.Container)
		if err != nil {
			return 0, err
		}
		// The concrete annotation syntax `([] R :k)` always names a literal
		// field, so its key interns straight to k's singleton atom type —
		// contrast the externals' generic `[]`, which builds its own
		// kProjection node directly over a still-unresolved key Variable
		// (see internal/externals/list.go).
		key, err := e.newTypeName(":" + te.Key)
		if err != nil {
			return 0, err
		}
		return e.Alloc.newProjection(container, key), nil
	case *ast.TypeUnion:
		members := make([]Id, len(te.Members))
		for i, m := range te.Members {
			id, err := e.NewType(m)
			if err != nil {
				return 0, err
			}
			members[i] = id
		}
		return e.Alloc.NewUnion(members), nil
	default:
		return 0, errors.WrapReport(errors.New("internal", errors.INT002,
			fmt.Sprintf("unknown type expression %T", expr), nil, nil))
	}
}

// newTypeName resolves a bare identifier: a single lowercase letter is a
// fresh type variable (a type parameter occurrence),
// a known alias/primitive resolves to its Id, an atom literal `:x` is
// auto-subtyped to `atom`, an integer or quoted-string literal is its own
// singleton primitive, and anything else becomes a brand new primitive.
func (e *TypeEnv) newTypeName(name string) (Id, error) {
	if id, ok := e.aliases[name]; ok {
		return id, nil
	}
	if isTypeVariableName(name) {
		return e.Alloc.NewVariable(), nil
	}
	// Literal forms double as singleton primitive types: an atom (":x"),
	// an integer ("3"), or a quoted string (`"hi"`) each get their own
	// node, subtyped to their nominal primitive by Subtyping rule 8.
	return e.Alloc.NewPrimitive(name), nil
}
