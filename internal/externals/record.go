package externals

// recordBuiltins is empty: this core has no record-specific external beyond
// the field projection `[]` already dispatches dynamically (see list.go).
// Kept as its own file/function, mirroring the grouping of arithmetic.go,
// comparison.go, and logic.go, so a future record primitive (merge, keys,
// ...) has an obvious home without touching the registry wiring.
func recordBuiltins() []*Builtin {
	return nil
}
