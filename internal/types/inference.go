package types

import (
	"fmt"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
)

// NonGeneric is the set of type variables that must not be generalised at a
// given point in inference — typically the Ids of enclosing function
// parameters currently being checked (the GLOSSARY's "non-generic set").
type NonGeneric map[Id]bool

func (ng NonGeneric) with(ids ...Id) NonGeneric {
	out := make(NonGeneric, len(ng)+len(ids))
	for k := range ng {
		out[k] = true
	}
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Prune follows a Variable's Instance pointer, path-compressing as it goes,
// returning the representative Id. Non-Variables are returned unchanged.
func Prune(alloc *TypeAlloc, id Id) (Id, error) {
	t, err := alloc.Get(id)
	if err != nil {
		return 0, err
	}
	if t.Kind != KVariable || t.Instance == nil {
		return id, nil
	}
	rep, err := Prune(alloc, *t.Instance)
	if err != nil {
		return 0, err
	}
	if rep != *t.Instance {
		_ = alloc.SetInstance(id, rep) // path compression
	}
	return rep, nil
}

// OccursIn reports whether Variable v appears in t's (pruned) structure.
// Called before binding v := t to keep the instance chain acyclic.
func OccursIn(alloc *TypeAlloc, v, t Id) (bool, error) {
	pruned, err := Prune(alloc, t)
	if err != nil {
		return false, err
	}
	if pruned == v {
		return true, nil
	}
	node, err := alloc.Get(pruned)
	if err != nil {
		return false, err
	}
	switch node.Kind {
	case KFunction:
		for _, a := range node.Args {
			if found, err := OccursIn(alloc, v, a); err != nil || found {
				return found, err
			}
		}
		return OccursIn(alloc, v, node.Ret)
	case KRecord:
		for _, f := range node.Fields {
			if found, err := OccursIn(alloc, v, f); err != nil || found {
				return found, err
			}
		}
		return false, nil
	case KContainer:
		for _, e := range node.Elems {
			if found, err := OccursIn(alloc, v, e); err != nil || found {
				return found, err
			}
		}
		return false, nil
	case KUnion:
		for _, m := range node.Members {
			if found, err := OccursIn(alloc, v, m); err != nil || found {
				return found, err
			}
		}
		return false, nil
	case kProjection:
		if found, err := OccursIn(alloc, v, node.Container); err != nil || found {
			return found, err
		}
		return OccursIn(alloc, v, node.Key)
	default:
		return false, nil
	}
}

// Fresh replaces every generalisable Variable (one not in nonGeneric) in
// id's structure with a newly allocated Variable, preserving sharing: the
// same source Variable maps to the same fresh Variable throughout one Fresh
// call. Primitives are returned unchanged; compound types are rebuilt.
func Fresh(alloc *TypeAlloc, id Id, nonGeneric NonGeneric) (Id, error) {
	mapping := map[Id]Id{}
	return fresh(alloc, id, nonGeneric, mapping)
}

func fresh(alloc *TypeAlloc, id Id, nonGeneric NonGeneric, mapping map[Id]Id) (Id, error) {
	pruned, err := Prune(alloc, id)
	if err != nil {
		return 0, err
	}
	t, err := alloc.Get(pruned)
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case KVariable:
		if isNonGeneric(alloc, pruned, nonGeneric) {
			return pruned, nil
		}
		if mapped, ok := mapping[pruned]; ok {
			return mapped, nil
		}
		nv := alloc.NewVariable()
		mapping[pruned] = nv
		return nv, nil
	case KPrimitive:
		return pruned, nil
	case KFunction:
		args := make([]Id, len(t.Args))
		for i, a := range t.Args {
			fa, err := fresh(alloc, a, nonGeneric, mapping)
			if err != nil {
				return 0, err
			}
			args[i] = fa
		}
		ret, err := fresh(alloc, t.Ret, nonGeneric, mapping)
		if err != nil {
			return 0, err
		}
		return alloc.NewFunction(args, ret), nil
	case KRecord:
		fields := make(map[string]Id, len(t.Fields))
		for k, v := range t.Fields {
			fv, err := fresh(alloc, v, nonGeneric, mapping)
			if err != nil {
				return 0, err
			}
			fields[k] = fv
		}
		return alloc.NewRecord(fields), nil
	case KContainer:
		elems := make([]Id, len(t.Elems))
		for i, e := range t.Elems {
			fe, err := fresh(alloc, e, nonGeneric, mapping)
			if err != nil {
				return 0, err
			}
			elems[i] = fe
		}
		return alloc.NewContainer(t.Head, elems), nil
	case KUnion:
		members := make([]Id, len(t.Members))
		for i, m := range t.Members {
			fm, err := fresh(alloc, m, nonGeneric, mapping)
			if err != nil {
				return 0, err
			}
			members[i] = fm
		}
		return alloc.NewUnion(members), nil
	case kProjection:
		container, err := fresh(alloc, t.Container, nonGeneric, mapping)
		if err != nil {
			return 0, err
		}
		key, err := fresh(alloc, t.Key, nonGeneric, mapping)
		if err != nil {
			return 0, err
		}
		return alloc.newProjection(container, key), nil
	default:
		return pruned, nil
	}
}

func isNonGeneric(alloc *TypeAlloc, v Id, nonGeneric NonGeneric) bool {
	for ng := range nonGeneric {
		occurs, err := OccursIn(alloc, v, ng)
		if err == nil && occurs {
			return true
		}
	}
	return false
}

// Unify makes a and b equal, pruning both first. A free Variable is bound
// to the other side after an occurs check; two Functions/Records/Containers
// unify structurally; anything else is a type-mismatch error.
func Unify(env *TypeEnv, a, b Id) error {
	alloc := env.Alloc
	a, err := Prune(alloc, a)
	if err != nil {
		return err
	}
	b, err = Prune(alloc, b)
	if err != nil {
		return err
	}
	if a == b {
		return nil
	}

	ta, err := alloc.Get(a)
	if err != nil {
		return err
	}
	tb, err := alloc.Get(b)
	if err != nil {
		return err
	}

	if ta.Kind == KVariable {
		return bindVariable(env, a, b)
	}
	if tb.Kind == KVariable {
		return bindVariable(env, b, a)
	}

	if ta.Kind == KFunction && tb.Kind == KFunction {
		if len(ta.Args) != len(tb.Args) {
			return mismatch(env, a, b, "function arity mismatch")
		}
		for i := range ta.Args {
			if err := Unify(env, ta.Args[i], tb.Args[i]); err != nil {
				return err
			}
		}
		return Unify(env, ta.Ret, tb.Ret)
	}

	if ta.Kind == KRecord && tb.Kind == KRecord {
		if len(ta.Fields) != len(tb.Fields) {
			return mismatch(env, a, b, "record shape mismatch")
		}
		for k, av := range ta.Fields {
			bv, ok := tb.Fields[k]
			if !ok {
				return mismatch(env, a, b, fmt.Sprintf("record shape mismatch: missing field %s", k))
			}
			if err := Unify(env, av, bv); err != nil {
				return err
			}
		}
		return nil
	}

	if ta.Kind == KContainer && tb.Kind == KContainer {
		if ta.Head != tb.Head || len(ta.Elems) != len(tb.Elems) {
			return mismatch(env, a, b, "container shape mismatch")
		}
		for i := range ta.Elems {
			if err := Unify(env, ta.Elems[i], tb.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	}

	return mismatch(env, a, b, "type mismatch")
}

func bindVariable(env *TypeEnv, v, t Id) error {
	occurs, err := OccursIn(env.Alloc, v, t)
	if err != nil {
		return err
	}
	if occurs {
		vn, _ := env.TypeName(v)
		tn, _ := env.TypeName(t)
		return errors.WrapReport(errors.New("occurs", errors.TC004,
			fmt.Sprintf("occurs check failed: %s occurs in %s", vn, tn), nil, nil))
	}
	return env.Alloc.SetInstance(v, t)
}

func mismatch(env *TypeEnv, a, b Id, reason string) error {
	an, _ := env.TypeName(a)
	bn, _ := env.TypeName(b)
	return errors.WrapReport(errors.New("typecheck", errors.TC001,
		fmt.Sprintf("%s: %s != %s", reason, an, bn), nil, map[string]any{
			"got":  an,
			"want": bn,
		}))
}

// Infer produces a type Id for expr under the given non-generic set,
// dispatching by syntax form.
func Infer(env *TypeEnv, expr ast.Expr, nonGeneric NonGeneric) (Id, error) {
	switch e := expr.(type) {
	case *ast.Value:
		return inferValue(env, e, nonGeneric)
	case *ast.Variable:
		declared, ok := env.GetVariable(e.Name)
		if !ok {
			return 0, errors.WrapReport(errors.New("lookup", errors.LK001,
				fmt.Sprintf("unbound variable: %s", e.Name), nil, nil))
		}
		return Fresh(env.Alloc, declared, nonGeneric)
	case *ast.FnDef:
		return inferFnDef(env, e, nonGeneric)
	case *ast.FnApp:
		return inferFnApp(env, e, nonGeneric)
	case *ast.Let:
		return inferLet(env, e, nonGeneric)
	case *ast.TypeDef:
		id, err := env.NewType(e.Type)
		if err != nil {
			return 0, err
		}
		env.NewAlias(e.Name, id)
		return id, nil
	case *ast.Case:
		return inferCase(env, e, nonGeneric)
	case *ast.Include:
		return env.Primitive("str"), nil
	default:
		return 0, errors.WrapReport(errors.New("internal", errors.INT002,
			fmt.Sprintf("no inference rule for %T", expr), nil, nil))
	}
}

func inferValue(env *TypeEnv, v *ast.Value, nonGeneric NonGeneric) (Id, error) {
	switch v.Kind {
	case ast.VBool:
		return env.Primitive("bool"), nil
	case ast.VNumber:
		return env.NewType(&ast.TypeName{Name: fmt.Sprintf("%d", v.Number)})
	case ast.VAtom:
		return env.NewType(&ast.TypeName{Name: ":" + v.Text})
	case ast.VString:
		return env.NewType(&ast.TypeName{Name: fmt.Sprintf("%q", v.Text)})
	case ast.VExternal:
		declared, ok := env.GetVariable(v.Text)
		if !ok {
			return 0, errors.WrapReport(errors.New("eval", errors.EV004,
				fmt.Sprintf("unknown external: %s", v.Text), nil, nil))
		}
		return Fresh(env.Alloc, declared, nonGeneric)
	case ast.VRecord:
		fields := make(map[string]Id, len(v.Fields))
		for _, k := range v.OrderedFields() {
			t, err := Infer(env, v.Fields[k], nonGeneric)
			if err != nil {
				return 0, err
			}
			// Integer and string literal fields take their nominal type.
			if nom, ok := literalNominalOf(env, t); ok && nom != env.Primitive("atom") {
				t = nom
			}
			fields[k] = t
		}
		return env.Alloc.NewRecord(fields), nil
	case ast.VList:
		if len(v.Elems) == 0 {
			elem := env.Alloc.NewVariable()
			return env.Alloc.NewContainer("vec", []Id{elem}), nil
		}
		first, err := Infer(env, v.Elems[0], nonGeneric)
		if err != nil {
			return 0, err
		}
		// Integer and string literal elements take their nominal type, so
		// (vec 1 2 3) is (vec int).
		if nom, ok := literalNominalOf(env, first); ok && nom != env.Primitive("atom") {
			first = nom
		}
		for _, el := range v.Elems[1:] {
			t, err := Infer(env, el, nonGeneric)
			if err != nil {
				return 0, err
			}
			if nom, ok := literalNominalOf(env, t); ok && nom != env.Primitive("atom") {
				t = nom
			}
			if err := Unify(env, t, first); err != nil {
				return 0, err
			}
		}
		return env.Alloc.NewContainer("vec", []Id{first}), nil
	default:
		return 0, errors.WrapReport(errors.New("internal", errors.INT002, "unknown literal kind", nil, nil))
	}
}

func inferFnDef(env *TypeEnv, f *ast.FnDef, nonGeneric NonGeneric) (Id, error) {
	argIds := make([]Id, len(f.Params))
	extended := nonGeneric
	savedVars := map[string]Id{}
	hadVar := map[string]bool{}
	for i, p := range f.Params {
		var id Id
		var err error
		if p.Type != nil {
			id, err = env.NewType(p.Type)
			if err != nil {
				return 0, err
			}
		} else {
			id = env.Alloc.NewVariable()
		}
		argIds[i] = id
		extended = extended.with(id)
		if prev, ok := env.GetVariable(p.Name); ok {
			savedVars[p.Name], hadVar[p.Name] = prev, true
		}
		env.SetVariable(p.Name, id)
	}
	ret, err := Infer(env, f.Body, extended)
	restoreParams(env, f.Params, savedVars, hadVar)
	if err != nil {
		return 0, err
	}
	return env.Alloc.NewFunction(argIds, ret), nil
}

func restoreParams(env *TypeEnv, params []ast.Param, saved map[string]Id, had map[string]bool) {
	for _, p := range params {
		if had[p.Name] {
			env.SetVariable(p.Name, saved[p.Name])
		} else {
			delete(env.vars, p.Name)
		}
	}
}

func inferFnApp(env *TypeEnv, app *ast.FnApp, nonGeneric NonGeneric) (Id, error) {
	funType, err := Infer(env, app.Fun, nonGeneric)
	if err != nil {
		return 0, err
	}
	argTypes := make([]Id, len(app.Args))
	for i, a := range app.Args {
		t, err := Infer(env, a, nonGeneric)
		if err != nil {
			return 0, err
		}
		// Integer and string literal arguments are passed at their nominal
		// type (int, str) so they unify with declared parameter types; atom
		// literals stay singletons, since projection keys rely on them.
		if nom, ok := literalNominalOf(env, t); ok && nom != env.Primitive("atom") {
			t = nom
		}
		argTypes[i] = t
	}
	result := env.Alloc.NewVariable()
	candidate := env.Alloc.NewFunction(argTypes, result)
	if err := Unify(env, funType, candidate); err != nil {
		return 0, err
	}
	return Prune(env.Alloc, result)
}

func inferLet(env *TypeEnv, l *ast.Let, nonGeneric NonGeneric) (Id, error) {
	var t Id
	var err error
	if l.Type != nil {
		t, err = env.NewType(l.Type)
		if err != nil {
			return 0, err
		}
		valueType, err := Infer(env, l.Value, nonGeneric)
		if err != nil {
			return 0, err
		}
		if err := EnsureSubtype(env, valueType, t); err != nil {
			return 0, err
		}
	} else {
		t, err = Infer(env, l.Value, nonGeneric)
		if err != nil {
			return 0, err
		}
	}
	env.SetVariable(l.Name, t)
	return t, nil
}

func inferCase(env *TypeEnv, c *ast.Case, nonGeneric NonGeneric) (Id, error) {
	if len(c.Branches) == 0 {
		return 0, errors.WrapReport(errors.New("typecheck", errors.TC001, "case has no branches", nil, nil))
	}
	boolType := env.Primitive("bool")
	var result Id
	for i, br := range c.Branches {
		guardType, err := Infer(env, br.Guard, nonGeneric)
		if err != nil {
			return 0, err
		}
		if err := Unify(env, guardType, boolType); err != nil {
			return 0, err
		}
		bodyType, err := Infer(env, br.Body, nonGeneric)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			result = bodyType
			continue
		}
		result, err = joinCaseBodies(env, result, bodyType)
		if err != nil {
			return 0, err
		}
	}
	return Prune(env.Alloc, result)
}

// joinCaseBodies unifies two branch body types, falling back to their
// common nominal supertype when they are distinct literal singletons (two
// branches each returning their own integer/atom/string literal still have
// one common type — the nominal primitive they both widen to, e.g.
// `(case (false => 0) (true => 7))` : int).
func joinCaseBodies(env *TypeEnv, a, b Id) (Id, error) {
	if err := Unify(env, a, b); err == nil {
		return Prune(env.Alloc, a)
	}
	aNom, aOk := literalNominalOf(env, a)
	bNom, bOk := literalNominalOf(env, b)
	switch {
	case aOk && bOk && aNom == bNom:
		return aNom, nil
	case aOk && !bOk:
		if err := Unify(env, aNom, b); err == nil {
			return Prune(env.Alloc, aNom)
		}
	case bOk && !aOk:
		if err := Unify(env, a, bNom); err == nil {
			return Prune(env.Alloc, bNom)
		}
	}
	return 0, mismatch(env, a, b, "case branches do not share a common type")
}

// literalNominalOf reports id's nominal supertype when id names a literal
// singleton (an integer, atom, or quoted-string primitive), false otherwise.
func literalNominalOf(env *TypeEnv, id Id) (Id, bool) {
	t, err := env.Alloc.Get(id)
	if err != nil || t.Kind != KPrimitive {
		return 0, false
	}
	nominal, ok := literalNominal(env, t.Name)
	if !ok || nominal == id {
		return 0, false
	}
	return nominal, true
}
