// Package errors provides the structured *Report error type shared by the
// parser, type checker, and evaluator, plus the narrow error-code taxonomy
// those phases report against.
package errors

// Error codes, organized by phase.
const (
	// Parser / AST construction.
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter

	// Type lookup: unknown variable, alias, or record field.
	LK001 = "LK001" // unbound variable
	LK002 = "LK002" // unknown type alias
	LK003 = "LK003" // unknown record field in projection

	// Type mismatch / unification / subtyping failure.
	TC001 = "TC001" // type mismatch (unification failure)
	TC002 = "TC002" // subtyping failure at binding or application site
	TC003 = "TC003" // arity mismatch (function or record shape)

	// Occurs check.
	TC004 = "TC004" // occurs check failed

	// Evaluator.
	EV001 = "EV001" // applied a non-function value
	EV002 = "EV002" // unbound variable at runtime
	EV003 = "EV003" // case with no matching guard
	EV004 = "EV004" // unknown external name

	// Internal invariant violations.
	INT001 = "INT001" // out-of-range type Id
	INT002 = "INT002" // cyclic instance chain
)

// ErrorInfo documents one error code for tooling/tests.
type ErrorInfo struct {
	Code        string
	Phase       string
	Description string
}

// Registry maps every code this core can raise to its phase and a short
// human description, so tests and the CLI can render help text in one
// place rather than duplicating the table at each call site.
var Registry = map[string]ErrorInfo{
	PAR001: {PAR001, "parser", "Unexpected token"},
	PAR002: {PAR002, "parser", "Missing closing delimiter"},

	LK001: {LK001, "lookup", "Unbound variable"},
	LK002: {LK002, "lookup", "Unknown type alias"},
	LK003: {LK003, "lookup", "Unknown record field"},

	TC001: {TC001, "typecheck", "Type mismatch"},
	TC002: {TC002, "typecheck", "Subtyping failure"},
	TC003: {TC003, "typecheck", "Arity mismatch"},
	TC004: {TC004, "occurs", "Occurs check failed"},

	EV001: {EV001, "eval", "Applied a non-function value"},
	EV002: {EV002, "eval", "Unbound variable at runtime"},
	EV003: {EV003, "eval", "No matching case guard"},
	EV004: {EV004, "eval", "Unknown external"},

	INT001: {INT001, "internal", "Out-of-range type Id"},
	INT002: {INT002, "internal", "Cyclic instance chain"},
}

// Phase reports the phase a code belongs to, per the Registry.
func Phase(code string) string {
	if info, ok := Registry[code]; ok {
		return info.Phase
	}
	return "internal"
}
