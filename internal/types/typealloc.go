// Package types implements the structural type system: the type arena
// (TypeAlloc), the per-session environment that interns surface syntax into
// arena ids (TypeEnv), type-level normalisation (TypeEval), structural
// subtyping, Hindley-Milner inference with records/containers/unions, and
// the bidirectional checker that drives all of the above over the AST.
//
// Grounded on structural-typesystem/src/{type_alloc,type_env,type_eval,
// subtyping,infer,type_check}.rs (see DESIGN.md); built fresh rather than
// adapted from an existing Go package, since this solves a different,
// smaller problem than the usual substitution-map Algorithm-W checker
// (no type classes, effects, or row polymorphism).
package types

import (
	"fmt"
	"sort"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
)

// Id addresses a node in a TypeAlloc arena. Ids are never reused and never
// alias across nodes — the arena is append-only.
type Id int

// Kind discriminates the six exported node shapes a Type can take, plus
// the internal projection shape.
type Kind int

const (
	KPrimitive Kind = iota
	KVariable
	KFunction
	KRecord
	KContainer
	KUnion
	// kProjection is an unevaluated `([] R :k)` node; TypeEval reduces it
	// to the field's type once k is an atom literal (erroring if R is not a
	// record), and leaves it unevaluated while k is not yet an atom.
	kProjection
)

// Type is one arena node. Only the fields relevant to Kind are meaningful;
// this mirrors the tagged-operator shape of the original Rust Type enum
// (Variable/Operator) generalised to a richer node set (records, containers,
// unions, projections).
type Type struct {
	ID   Id
	Kind Kind

	// KPrimitive: Name is the primitive's name ("int", "bool", ":ok", "42", `"hi"`, ...).
	Name string

	// KVariable: Instance is set once this variable has been unified.
	Instance *Id

	// KFunction.
	Args []Id
	Ret  Id

	// KRecord: Fields maps label -> Id; Order is Fields' keys in sorted
	// label order, kept alongside the map for cheap canonical iteration.
	Fields map[string]Id
	Order  []string

	// KContainer: Head names the constructor ("vec"); Elems are its
	// element-type arguments.
	Head  string
	Elems []Id

	// KUnion: Members are deduplicated, canonically sorted by Id once
	// normalised by TypeEval; raw (pre-eval) unions may contain duplicates
	// or nested unions.
	Members []Id

	// kProjection: Key is itself a type Id, usually a singleton atom
	// primitive (the literal field name, e.g. ":a") but sometimes an
	// unresolved Variable — the externals' `[]` declared type is generic
	// over both its container and its key, and only becomes concrete once
	// application unifies the key parameter with the atom literal actually
	// passed.
	Container Id
	Key       Id
}

// TypeAlloc is the process-wide (per session) arena of type nodes.
type TypeAlloc struct {
	nodes []Type
	Trace func(string, ...any)
}

func NewTypeAlloc() *TypeAlloc {
	return &TypeAlloc{}
}

func (a *TypeAlloc) trace(format string, args ...any) {
	if a.Trace != nil {
		a.Trace(format, args...)
	}
}

// IssueID reserves the next Id without committing a node (mirrors the
// original arena's issue_id/insert split; used when a node needs to
// self-reference its own Id, e.g. Variable).
func (a *TypeAlloc) IssueID() Id {
	return Id(len(a.nodes))
}

// Insert appends node, which must carry the Id most recently issued.
func (a *TypeAlloc) Insert(node Type) Id {
	if int(node.ID) != len(a.nodes) {
		panic("types: Insert called with stale Id")
	}
	a.nodes = append(a.nodes, node)
	return node.ID
}

func (a *TypeAlloc) NewVariable() Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KVariable})
	a.trace("new_variable: #%d", id)
	return id
}

func (a *TypeAlloc) NewPrimitive(name string) Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KPrimitive, Name: name})
	a.trace("new_primitive: #%d = %s", id, name)
	return id
}

func (a *TypeAlloc) NewFunction(args []Id, ret Id) Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KFunction, Args: append([]Id(nil), args...), Ret: ret})
	a.trace("new_function: #%d = %v -> %d", id, args, ret)
	return id
}

func (a *TypeAlloc) NewRecord(fields map[string]Id) Id {
	order := make([]string, 0, len(fields))
	for k := range fields {
		order = append(order, k)
	}
	sort.Strings(order)
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KRecord, Fields: fields, Order: order})
	a.trace("new_record: #%d = %v", id, order)
	return id
}

func (a *TypeAlloc) NewContainer(head string, elems []Id) Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KContainer, Head: head, Elems: append([]Id(nil), elems...)})
	a.trace("new_container: #%d = %s %v", id, head, elems)
	return id
}

// NewUnion inserts a raw (possibly nested/duplicated) union node; callers
// normalise through TypeEval before comparing it structurally.
func (a *TypeAlloc) NewUnion(members []Id) Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: KUnion, Members: append([]Id(nil), members...)})
	a.trace("new_union: #%d = %v", id, members)
	return id
}

func (a *TypeAlloc) newProjection(container, key Id) Id {
	id := a.IssueID()
	a.Insert(Type{ID: id, Kind: kProjection, Container: container, Key: key})
	return id
}

// NewProjection is the exported form of newProjection, for callers outside
// this package that must build a generic projection type directly rather
// than through TypeEnv.NewType's surface-syntax route — namely the `[]`
// external, whose declared type is polymorphic over both its container and
// its key (see internal/externals/list.go).
func (a *TypeAlloc) NewProjection(container, key Id) Id {
	return a.newProjection(container, key)
}

// Get is a constant-time, bounds-checked lookup.
func (a *TypeAlloc) Get(id Id) (Type, error) {
	if int(id) < 0 || int(id) >= len(a.nodes) {
		return Type{}, errors.WrapReport(errors.New("internal", errors.INT001,
			fmt.Sprintf("type id %d out of range (arena has %d nodes)", id, len(a.nodes)), nil, nil))
	}
	return a.nodes[id], nil
}

// SetInstance records that Variable id has unified with inst.
func (a *TypeAlloc) SetInstance(id, inst Id) error {
	if int(id) < 0 || int(id) >= len(a.nodes) {
		return errors.WrapReport(errors.New("internal", errors.INT001,
			fmt.Sprintf("type id %d out of range", id), nil, nil))
	}
	if a.nodes[id].Kind != KVariable {
		return errors.WrapReport(errors.New("internal", errors.INT002,
			fmt.Sprintf("set_instance called on non-variable #%d", id), nil, nil))
	}
	a.nodes[id].Instance = &inst
	return nil
}

const maxRenderDepth = 10

// AsSexp renders a type as surface type syntax, naming un-unified variables
// via issuer. Depth is bounded at 10 to stop runaway recursion — a cycle
// here would mean unification's occurs check failed to do its job.
func (a *TypeAlloc) AsSexp(id Id, issuer *Issuer) (ast.TypeExpr, error) {
	return a.asSexp(id, issuer, 0)
}

func (a *TypeAlloc) asSexp(id Id, issuer *Issuer, depth int) (ast.TypeExpr, error) {
	if depth > maxRenderDepth {
		return nil, errors.WrapReport(errors.New("internal", errors.INT002,
			"type render exceeded max depth (likely a cyclic instance chain)", nil, nil))
	}
	t, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case KVariable:
		if t.Instance != nil {
			return a.asSexp(*t.Instance, issuer, depth+1)
		}
		return &ast.TypeName{Name: issuer.Name(id)}, nil
	case KPrimitive:
		return &ast.TypeName{Name: t.Name}, nil
	case KFunction:
		args := make([]ast.TypeExpr, len(t.Args))
		for i, arg := range t.Args {
			e, err := a.asSexp(arg, issuer, depth+1)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		ret, err := a.asSexp(t.Ret, issuer, depth+1)
		if err != nil {
			return nil, err
		}
		return &ast.TypeFunc{Args: args, Ret: ret}, nil
	case KRecord:
		fields := make([]ast.TypeRecordField, 0, len(t.Order))
		for _, k := range t.Order {
			e, err := a.asSexp(t.Fields[k], issuer, depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.TypeRecordField{Name: k, Type: e})
		}
		return &ast.TypeRecord{Fields: fields}, nil
	case KContainer:
		elems := make([]ast.TypeExpr, len(t.Elems))
		for i, el := range t.Elems {
			e, err := a.asSexp(el, issuer, depth+1)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &ast.TypeContainer{Head: t.Head, Elems: elems}, nil
	case KUnion:
		members := make([]ast.TypeExpr, len(t.Members))
		for i, m := range t.Members {
			e, err := a.asSexp(m, issuer, depth+1)
			if err != nil {
				return nil, err
			}
			members[i] = e
		}
		return &ast.TypeUnion{Members: members}, nil
	case kProjection:
		container, err := a.asSexp(t.Container, issuer, depth+1)
		if err != nil {
			return nil, err
		}
		keyExpr, err := a.asSexp(t.Key, issuer, depth+1)
		if err != nil {
			return nil, err
		}
		keyName := keyExpr.String()
		if len(keyName) > 0 && keyName[0] == ':' {
			keyName = keyName[1:]
		}
		return &ast.TypeProject{Container: container, Key: keyName}, nil
	default:
		return nil, errors.WrapReport(errors.New("internal", errors.INT002,
			fmt.Sprintf("unrenderable type kind %d at #%d", t.Kind, id), nil, nil))
	}
}

// AsString renders a type to its surface-syntax string.
func (a *TypeAlloc) AsString(id Id, issuer *Issuer) (string, error) {
	e, err := a.AsSexp(id, issuer)
	if err != nil {
		return "", err
	}
	return e.String(), nil
}

// FromSexp finds an existing interned node whose rendered form matches expr,
// without allocating a new node. Used for round-tripping surface type
// syntax and by callers that must not accidentally duplicate a type.
func (a *TypeAlloc) FromSexp(expr ast.TypeExpr) (Id, bool) {
	want := expr.String()
	for i := range a.nodes {
		got, err := a.AsSexp(Id(i), NewIssuer())
		if err != nil {
			continue
		}
		if got.String() == want {
			return Id(i), true
		}
	}
	return 0, false
}

// IsGeneric reports whether id's transitive structure contains any
// unbound Variable (one with no Instance).
func (a *TypeAlloc) IsGeneric(id Id) bool {
	return a.isGeneric(id, map[Id]bool{})
}

func (a *TypeAlloc) isGeneric(id Id, seen map[Id]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	t, err := a.Get(id)
	if err != nil {
		return false
	}
	switch t.Kind {
	case KVariable:
		if t.Instance != nil {
			return a.isGeneric(*t.Instance, seen)
		}
		return true
	case KFunction:
		for _, arg := range t.Args {
			if a.isGeneric(arg, seen) {
				return true
			}
		}
		return a.isGeneric(t.Ret, seen)
	case KRecord:
		for _, id := range t.Fields {
			if a.isGeneric(id, seen) {
				return true
			}
		}
		return false
	case KContainer:
		for _, e := range t.Elems {
			if a.isGeneric(e, seen) {
				return true
			}
		}
		return false
	case KUnion:
		for _, m := range t.Members {
			if a.isGeneric(m, seen) {
				return true
			}
		}
		return false
	case kProjection:
		return a.isGeneric(t.Container, seen) || a.isGeneric(t.Key, seen)
	default:
		return false
	}
}
