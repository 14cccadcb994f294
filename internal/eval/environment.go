// Package eval is the tree-walking evaluator: it executes the same AST the
// type checker reads, threading one Environment across a program's forms
// the way internal/types threads one TypeEnv.
package eval

import "github.com/wakame-lang/sform/internal/ast"

// Environment is a parent-chain of lexical scopes binding names to already
// evaluated values. FnDef closures (ast.Value{Kind: VClosure}) capture the
// Environment active at their point of definition; FnApp opens a fresh
// child scope per call, binding parameters there.
type Environment struct {
	vars   map[string]ast.Expr
	parent *Environment
}

// NewEnvironment creates a root scope, or a child of parent when parent is
// non-nil.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: map[string]ast.Expr{}, parent: parent}
}

// Get resolves name by walking outward through enclosing scopes.
func (e *Environment) Get(name string) (ast.Expr, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in this scope (not a parent), call-by-value-with-sharing:
// later Lets in the same scope see earlier ones, and closures capturing
// this Environment observe subsequent bindings added to it.
func (e *Environment) Set(name string, val ast.Expr) {
	e.vars[name] = val
}

// Child opens a new scope nested under e, used both for function calls and
// for evaluating a FnDef body against its captured environment.
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}
