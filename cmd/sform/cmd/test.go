package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
	"github.com/wakame-lang/sform/internal/eval"
	"github.com/wakame-lang/sform/internal/externals"
	"github.com/wakame-lang/sform/internal/test"
	"github.com/wakame-lang/sform/internal/types"
)

var testJSON bool
var testCompact bool

var testCmd = &cobra.Command{
	Use:   "test <file-or-dir>",
	Short: "Run (test \"name\" expr expected) forms and report pass/fail",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func init() {
	testCmd.Flags().BoolVar(&testJSON, "json", false, "emit a structured JSON report instead of colored lines")
	testCmd.Flags().BoolVar(&testCompact, "compact", false, "emit single-line JSON (only with --json)")
	rootCmd.AddCommand(testCmd)
}

func runTest(_ *cobra.Command, args []string) error {
	files, err := collectTestFiles(args[0])
	if err != nil {
		return err
	}

	report := test.NewReport()
	start := time.Now()

	for _, f := range files {
		if err := runTestFile(f, report); err != nil {
			printReportErr(err)
			os.Exit(1)
		}
	}
	report.Finalize(start)

	if testJSON {
		test.SetCompactMode(testCompact)
		out, err := report.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	printTestReport(report)
	if report.Counts.Failed > 0 || report.Counts.Errored > 0 {
		os.Exit(1)
	}
	return nil
}

func collectTestFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.HasSuffix(p, ".sf") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// runTestFile evaluates file's forms in order against one TypeEnv/
// Environment, reporting every (test "name" expr expected) form it finds as
// a Case; every other form is type-checked and evaluated purely to establish
// the bindings later test forms in the same file may depend on.
func runTestFile(file string, report *test.Report) error {
	prog, err := loadProgram(file)
	if err != nil {
		return err
	}
	tenv, env, err := newSession()
	if err != nil {
		return err
	}

	suite := file
	for _, form := range prog.Forms {
		name, exprForm, expectedForm, ok := asTestForm(form)
		if !ok {
			if _, err := types.TypeCheck(tenv, form); err != nil {
				return err
			}
			if _, err := eval.Eval(env, form); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		status, got, want, testErr := runTestCase(tenv, env, exprForm, expectedForm)
		report.AddCase(test.Case{
			SID:    test.GenerateTestSID(suite, name),
			Suite:  suite,
			Name:   name,
			Expr:   exprForm.String(),
			Want:   want,
			Got:    got,
			Status: status,
			TimeMs: time.Since(start).Milliseconds(),
			Error:  testErr,
		})
	}
	return nil
}

// asTestForm recognizes the (test "name" expr expected) surface form, which
// parses as an ordinary 3-argument application of the bare name `test` —
// the core grammar gains no new variant for it.
func asTestForm(form ast.Expr) (name string, exprForm, expected ast.Expr, ok bool) {
	app, isApp := form.(*ast.FnApp)
	if !isApp || len(app.Args) != 3 {
		return "", nil, nil, false
	}
	v, isVar := app.Fun.(*ast.Variable)
	if !isVar || v.Name != "test" {
		return "", nil, nil, false
	}
	nameVal, isVal := app.Args[0].(*ast.Value)
	if !isVal || nameVal.Kind != ast.VString {
		return "", nil, nil, false
	}
	return nameVal.Text, app.Args[1], app.Args[2], true
}

// runTestCase type-checks and evaluates exprForm and expectedForm against
// the file's shared session, then compares the two results with sform's own
// "==" external — the same equality a test author could call from inside
// sform. got and want are the evaluated values' renderings; they are
// returned even on a failed comparison so the Case can report both sides,
// and are empty if evaluation never produced a value.
func runTestCase(tenv *types.TypeEnv, env *eval.Environment, exprForm, expectedForm ast.Expr) (status, got, want string, errMsg any) {
	if _, err := types.TypeCheck(tenv, exprForm); err != nil {
		return "errored", "", "", errorString(err)
	}
	if _, err := types.TypeCheck(tenv, expectedForm); err != nil {
		return "errored", "", "", errorString(err)
	}

	actual, err := eval.Eval(env, exprForm)
	if err != nil {
		return "errored", "", "", errorString(err)
	}
	expected, err := eval.Eval(env, expectedForm)
	if err != nil {
		return "errored", "", "", errorString(err)
	}
	got, want = actual.String(), expected.String()

	result, err := externals.Dispatch("==", []ast.Expr{actual, expected}, eval.Apply)
	if err != nil {
		return "errored", got, want, errorString(err)
	}
	v, isVal := result.(*ast.Value)
	if !isVal || v.Kind != ast.VBool || !v.Bool {
		return "failed", got, want, fmt.Sprintf("got %s, want %s", got, want)
	}
	return "passed", got, want, nil
}

func errorString(err error) string {
	if rep, ok := errors.AsReport(err); ok {
		return rep.Code + ": " + rep.Message
	}
	return err.Error()
}

func printTestReport(report *test.Report) {
	for _, c := range report.Cases {
		switch c.Status {
		case "passed":
			fmt.Printf("%s %s :: %s\n", green("PASS"), c.Suite, c.Name)
		case "failed":
			fmt.Printf("%s %s :: %s (%v)\n", red("FAIL"), c.Suite, c.Name, c.Error)
		default:
			fmt.Printf("%s %s :: %s (%v)\n", red("ERROR"), c.Suite, c.Name, c.Error)
		}
	}
	fmt.Printf("\n%s %d passed, %d failed, %d errored, %d total\n",
		summaryIcon(report), report.Counts.Passed, report.Counts.Failed, report.Counts.Errored, report.Counts.Total)
}

func summaryIcon(report *test.Report) string {
	if report.Counts.Failed > 0 || report.Counts.Errored > 0 {
		return red("✗")
	}
	return green("✓")
}
