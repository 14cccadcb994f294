package types

import (
	"fmt"
	"sort"

	"github.com/wakame-lang/sform/internal/errors"
)

// TypeEval normalises a type Id before subtyping or equality ever inspects
// it: reduces record-field projection to the projected field's type, and
// flattens/dedupes union members. Idempotent — normalising an already-normal
// type returns it unchanged.
func TypeEval(env *TypeEnv, id Id) (Id, error) {
	id, err := Prune(env.Alloc, id)
	if err != nil {
		return 0, err
	}
	t, err := env.Alloc.Get(id)
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case kProjection:
		return evalProjection(env, t)
	case KUnion:
		return evalUnion(env, t)
	default:
		return id, nil
	}
}

func evalProjection(env *TypeEnv, t Type) (Id, error) {
	container, err := TypeEval(env, t.Container)
	if err != nil {
		return 0, err
	}
	keyID, err := Prune(env.Alloc, t.Key)
	if err != nil {
		return 0, err
	}
	kt, err := env.Alloc.Get(keyID)
	if err != nil {
		return 0, err
	}
	if kt.Kind != KPrimitive || len(kt.Name) == 0 || kt.Name[0] != ':' {
		// The key parameter (generic `[]`'s second type variable) hasn't
		// been unified with a concrete atom literal yet — leave the
		// projection unevaluated rather than erroring; it normalises fully
		// once application resolves the key.
		return env.Alloc.newProjection(container, keyID), nil
	}
	key := kt.Name[1:]

	rt, err := env.Alloc.Get(container)
	if err != nil {
		return 0, err
	}
	if rt.Kind != KRecord {
		name, _ := env.TypeName(container)
		return 0, errors.WrapReport(errors.New("lookup", errors.LK003,
			fmt.Sprintf("%s is not a record type", name), nil, nil))
	}
	field, ok := rt.Fields[key]
	if !ok {
		name, _ := env.TypeName(container)
		return 0, errors.WrapReport(errors.New("lookup", errors.LK003,
			fmt.Sprintf("key :%s not found in record %s", key, name), nil, nil))
	}
	return field, nil
}

func evalUnion(env *TypeEnv, t Type) (Id, error) {
	seen := map[Id]bool{}
	flat := []Id{}
	for _, m := range t.Members {
		evaled, err := TypeEval(env, m)
		if err != nil {
			return 0, err
		}
		mt, err := env.Alloc.Get(evaled)
		if err != nil {
			return 0, err
		}
		if mt.Kind == KUnion {
			for _, inner := range mt.Members {
				if !seen[inner] {
					seen[inner] = true
					flat = append(flat, inner)
				}
			}
			continue
		}
		if !seen[evaled] {
			seen[evaled] = true
			flat = append(flat, evaled)
		}
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i] < flat[j] })

	// Memoise by canonical rendered form so repeated unions of the same
	// members collapse to one arena node.
	id := env.Alloc.NewUnion(flat)
	key, err := env.Alloc.AsString(id, NewIssuer())
	if err != nil {
		return id, nil
	}
	if existing, ok := env.interned[key]; ok && existing != id {
		// Drop the just-allocated duplicate node's identity in favour of
		// the memoised one; the arena is append-only so the duplicate
		// simply goes unreferenced.
		return existing, nil
	}
	env.interned[key] = id
	return id, nil
}
