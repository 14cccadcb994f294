// Package ast defines the syntax tree shared by the type checker and the
// evaluator. Every variant is immutable after parsing; the evaluator
// returns fresh Exprs as values (see Value).
package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Pos is a source position, carried on every node for diagnostics.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Node is the base interface for all AST nodes.
type Node interface {
	String() string
	Position() Pos
}

// Expr is the sum type of all expressions.
type Expr interface {
	Node
	exprNode()
}

// ValueKind discriminates the literal forms a Value can take.
type ValueKind int

const (
	VBool ValueKind = iota
	VNumber
	VAtom
	VString
	VRecord
	VList
	VExternal
	VClosure
)

// Value is a literal: Bool, Number, Atom, String, Record, List, or
// External. It is itself an Expr (the Literal variant wraps one).
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number int64
	Text   string            // Atom name (without ':'), String contents, or External name
	Fields map[string]Expr   // VRecord
	Order  []string          // VRecord field insertion order, for stable rendering
	Elems  []Expr            // VList
	Params []Param           // VClosure
	Body   Expr              // VClosure
	Env    any               // VClosure: the defining *eval.Environment, opaque here
	Pos    Pos
}

func NewBool(b bool, pos Pos) *Value   { return &Value{Kind: VBool, Bool: b, Pos: pos} }
func NewNumber(n int64, pos Pos) *Value { return &Value{Kind: VNumber, Number: n, Pos: pos} }
func NewAtom(name string, pos Pos) *Value { return &Value{Kind: VAtom, Text: name, Pos: pos} }
func NewString(s string, pos Pos) *Value  { return &Value{Kind: VString, Text: s, Pos: pos} }
func NewExternal(name string, pos Pos) *Value {
	return &Value{Kind: VExternal, Text: name, Pos: pos}
}

func NewRecord(order []string, fields map[string]Expr, pos Pos) *Value {
	return &Value{Kind: VRecord, Fields: fields, Order: append([]string(nil), order...), Pos: pos}
}

func NewList(elems []Expr, pos Pos) *Value {
	return &Value{Kind: VList, Elems: elems, Pos: pos}
}

// NewClosure wraps an FnDef's params and body with the environment they
// close over. env is typed any here to keep ast free of a dependency on
// the evaluator; internal/eval type-asserts it back to *Environment.
func NewClosure(params []Param, body Expr, env any, pos Pos) *Value {
	return &Value{Kind: VClosure, Params: params, Body: body, Env: env, Pos: pos}
}

func (v *Value) exprNode()      {}
func (v *Value) Position() Pos  { return v.Pos }

func (v *Value) String() string {
	switch v.Kind {
	case VBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case VNumber:
		return fmt.Sprintf("%d", v.Number)
	case VAtom:
		return ":" + v.Text
	case VString:
		return fmt.Sprintf("%q", v.Text)
	case VExternal:
		return fmt.Sprintf("(external %s)", v.Text)
	case VClosure:
		names := make([]string, len(v.Params))
		for i, p := range v.Params {
			names[i] = p.Name
		}
		return fmt.Sprintf("(fn (%s) %s)", strings.Join(names, " "), v.Body)
	case VRecord:
		keys := v.sortedFields()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("(%s : %s)", k, v.Fields[k])
		}
		return fmt.Sprintf("(record %s)", strings.Join(parts, " "))
	case VList:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(vec %s)", strings.Join(parts, " "))
	default:
		return "<value>"
	}
}

// sortedFields returns record field names in a deterministic order,
// preferring parse order and falling back to lexical order for fields
// constructed programmatically.
func (v *Value) sortedFields() []string { return v.OrderedFields() }

// OrderedFields returns a VRecord's field names in a deterministic order:
// parse order when available, lexical order otherwise (for records built
// programmatically, e.g. by the evaluator).
func (v *Value) OrderedFields() []string {
	if len(v.Order) == len(v.Fields) {
		return v.Order
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Variable is a reference to a bound name.
type Variable struct {
	Name string
	Pos  Pos
}

func (v *Variable) exprNode()     {}
func (v *Variable) Position() Pos { return v.Pos }
func (v *Variable) String() string { return v.Name }

// Let introduces Name bound to Value in the enclosing scope.
type Let struct {
	Name  string
	Type  TypeExpr // optional declared type, nil if absent
	Value Expr
	Pos   Pos
}

func (l *Let) exprNode()     {}
func (l *Let) Position() Pos { return l.Pos }
func (l *Let) String() string {
	if l.Type != nil {
		return fmt.Sprintf("(let %s : %s %s)", l.Name, l.Type, l.Value)
	}
	return fmt.Sprintf("(let %s %s)", l.Name, l.Value)
}

// Param is one parameter of an FnDef.
type Param struct {
	Name string
	Type TypeExpr // optional, nil if absent
	Pos  Pos
}

// FnDef is an n-ary function definition. Single-argument functions are
// the canonical form; multi-argument definitions are preserved in the AST,
// and the checker and evaluator treat them directly as n-ary functions
// (no desugaring to nested single-argument closures).
type FnDef struct {
	Params []Param
	Body   Expr
	Pos    Pos
}

func (f *FnDef) exprNode()     {}
func (f *FnDef) Position() Pos { return f.Pos }
func (f *FnDef) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("(fn (%s) %s)", strings.Join(names, " "), f.Body)
}

// FnApp is function application; Args are evaluated left-to-right.
type FnApp struct {
	Fun  Expr
	Args []Expr
	Pos  Pos
}

func (a *FnApp) exprNode()     {}
func (a *FnApp) Position() Pos { return a.Pos }
func (a *FnApp) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", a.Fun)
	}
	return fmt.Sprintf("(%s %s)", a.Fun, strings.Join(parts, " "))
}

// TypeDef introduces a type alias at the current type environment.
type TypeDef struct {
	Name string
	Type TypeExpr
	Pos  Pos
}

func (t *TypeDef) exprNode()     {}
func (t *TypeDef) Position() Pos { return t.Pos }
func (t *TypeDef) String() string {
	return fmt.Sprintf("(type %s : %s)", t.Name, t.Type)
}

// CaseBranch is one (guard, body) arm of a Case.
type CaseBranch struct {
	Guard Expr
	Body  Expr
	Pos   Pos
}

// Case evaluates branches top-to-bottom; the first guard that evaluates
// to true selects the body.
type Case struct {
	Branches []CaseBranch
	Pos      Pos
}

func (c *Case) exprNode()     {}
func (c *Case) Position() Pos { return c.Pos }
func (c *Case) String() string {
	parts := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		parts[i] = fmt.Sprintf("(%s => %s)", b.Guard, b.Body)
	}
	return fmt.Sprintf("(case %s)", strings.Join(parts, " "))
}

// Include is textual source inclusion. It is resolved by the external
// loader (the sexpr parser, in this repo) before the core sees the AST,
// so the core treats any Include it does encounter as a no-op yielding
// an empty string value.
type Include struct {
	Path string
	Pos  Pos
}

func (i *Include) exprNode()     {}
func (i *Include) Position() Pos { return i.Pos }
func (i *Include) String() string { return fmt.Sprintf("(include %q)", i.Path) }

// Program is a top-level sequence of expressions (the prelude plus the
// user's file are concatenated into one Program by the driver).
type Program struct {
	Forms []Expr
}

func (p *Program) String() string {
	parts := make([]string, len(p.Forms))
	for i, f := range p.Forms {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n")
}
