package types

import (
	"fmt"

	"github.com/wakame-lang/sform/internal/errors"
)

// IsSubtype decides structural a <: b, normalising both sides via TypeEval
// first. Rules are tried in a fixed order (identity, union on the right,
// functions, record width/depth, containers, variables, `any`,
// literal-to-nominal widening); the first rule that applies decides the
// answer.
func IsSubtype(env *TypeEnv, a, b Id) (bool, error) {
	a, err := TypeEval(env, a)
	if err != nil {
		return false, err
	}
	b, err = TypeEval(env, b)
	if err != nil {
		return false, err
	}

	// 1. Identity.
	if a == b {
		return true, nil
	}

	ta, err := env.Alloc.Get(a)
	if err != nil {
		return false, err
	}
	tb, err := env.Alloc.Get(b)
	if err != nil {
		return false, err
	}

	// 2. Right is Union: true iff a <: some member.
	if tb.Kind == KUnion {
		for _, m := range tb.Members {
			ok, err := IsSubtype(env, a, m)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	// 3. Both Functions: contravariant args, covariant result.
	if ta.Kind == KFunction && tb.Kind == KFunction {
		if len(ta.Args) != len(tb.Args) {
			return false, nil
		}
		for i := range ta.Args {
			// b's arg must be a subtype of a's arg (contravariance).
			ok, err := IsSubtype(env, tb.Args[i], ta.Args[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return IsSubtype(env, ta.Ret, tb.Ret)
	}

	// 4. Both Records: depth+width covariant on common fields; every
	// field b demands must be present in a.
	if ta.Kind == KRecord && tb.Kind == KRecord {
		for _, key := range tb.Order {
			bField := tb.Fields[key]
			aField, ok := ta.Fields[key]
			if !ok {
				return false, nil
			}
			sub, err := IsSubtype(env, aField, bField)
			if err != nil {
				return false, err
			}
			if !sub {
				return false, nil
			}
		}
		return true, nil
	}

	// 5. Both Containers with the same head: elementwise covariance.
	if ta.Kind == KContainer && tb.Kind == KContainer {
		if ta.Head != tb.Head || len(ta.Elems) != len(tb.Elems) {
			return false, nil
		}
		for i := range ta.Elems {
			ok, err := IsSubtype(env, ta.Elems[i], tb.Elems[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	// 6. Two Variables: true iff same Id (identity already handled this,
	// but an unresolved pair of distinct variables is never related).
	if ta.Kind == KVariable && tb.Kind == KVariable {
		return false, nil
	}

	// 7. Right is `any`, the top primitive.
	if tb.Kind == KPrimitive && tb.Name == "any" {
		return true, nil
	}

	// 8. Literal-to-nominal: recurse with the nominal type on the left.
	if ta.Kind == KPrimitive {
		if nominal, ok := literalNominal(env, ta.Name); ok && nominal != a {
			return IsSubtype(env, nominal, b)
		}
	}

	// 9. Otherwise: false.
	return false, nil
}

// literalNominal maps a literal primitive's rendered name to its nominal
// supertype: atom literals (":x") to atom, integer literals to int, quoted
// string literals to str. Returns ok=false for names that are themselves
// nominal (so rule 8 does not recurse forever on e.g. "int").
func literalNominal(env *TypeEnv, name string) (Id, bool) {
	if name == "" {
		return 0, false
	}
	switch {
	case name[0] == ':':
		return env.Primitive("atom"), true
	case name[0] == '"':
		return env.Primitive("str"), true
	case isIntegerLiteral(name):
		return env.Primitive("int"), true
	default:
		return 0, false
	}
}

func isIntegerLiteral(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// EnsureSubtype returns a *errors.Report-wrapped error if a is not a
// subtype of b, naming both types via TypeName for the message.
func EnsureSubtype(env *TypeEnv, a, b Id) error {
	ok, err := IsSubtype(env, a, b)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	an, _ := env.TypeName(a)
	bn, _ := env.TypeName(b)
	return errors.WrapReport(errors.New("typecheck", errors.TC002,
		fmt.Sprintf("%s is not a subtype of %s", an, bn), nil, map[string]any{
			"got":  an,
			"want": bn,
		}))
}
