package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
	"github.com/wakame-lang/sform/internal/eval"
	"github.com/wakame-lang/sform/internal/externals"
	"github.com/wakame-lang/sform/internal/sexpr"
	"github.com/wakame-lang/sform/internal/types"
)

// fileLoader reads path's contents for the parser's include mechanism.
func fileLoader(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// preludePath resolves the prelude to splice ahead of a user file:
// $SFORM_PRELUDE if set, otherwise ./prelude.sf next to the file.
func preludePath(file string) string {
	if p := os.Getenv("SFORM_PRELUDE"); p != "" {
		return p
	}
	candidate := filepath.Join(filepath.Dir(file), "prelude.sf")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// loadProgram parses file and, if a prelude is available, prepends its
// top-level forms so Let/TypeDef bindings the prelude introduces are in
// scope for the rest of the program — mirroring how CheckProgram/EvalProgram
// thread one environment across every form of a single Program.
func loadProgram(file string) (*ast.Program, error) {
	src, err := fileLoader(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", file, err)
	}
	prog, err := sexpr.ParseProgram(src, file, fileLoader)
	if err != nil {
		return nil, err
	}

	if pp := preludePath(file); pp != "" {
		preludeSrc, err := fileLoader(pp)
		if err != nil {
			return nil, fmt.Errorf("cannot read prelude %s: %w", pp, err)
		}
		preludeProg, err := sexpr.ParseProgram(preludeSrc, pp, fileLoader)
		if err != nil {
			return nil, fmt.Errorf("prelude %s: %w", pp, err)
		}
		prog.Forms = append(preludeProg.Forms, prog.Forms...)
	}
	return prog, nil
}

// newSession builds a fresh TypeEnv (seeded with every external's declared
// type) and a matching root evaluation Environment.
func newSession() (*types.TypeEnv, *eval.Environment, error) {
	alloc := types.NewTypeAlloc()
	alloc.Trace = traceFunc()
	tenv, err := types.NewTypeEnv(alloc)
	if err != nil {
		return nil, nil, err
	}
	tenv.Trace = traceFunc()
	if err := externals.Seed(tenv); err != nil {
		return nil, nil, err
	}
	return tenv, eval.NewRootEnvironment(), nil
}

// printReportErr formats err for stderr, unwrapping a structured
// errors.Report when present so the phase/code are visible.
func printReportErr(err error) {
	if rep, ok := errors.AsReport(err); ok {
		fmt.Fprintf(os.Stderr, "%s [%s:%s]: %s\n", red("error"), rep.Phase, rep.Code, rep.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
}
