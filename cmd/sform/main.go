// Command sform is the CLI driver for the language: run, check, repl, and
// test subcommands over a shared parse/type-check/evaluate pipeline (see
// internal/sexpr, internal/types, internal/eval).
package main

import (
	"fmt"
	"os"

	"github.com/wakame-lang/sform/cmd/sform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
