package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakame-lang/sform/internal/sexpr"
	"github.com/wakame-lang/sform/internal/test"
)

func TestAsTestFormRecognizesTestApplication(t *testing.T) {
	prog, err := sexpr.ParseProgram(`(test "one plus one" (+ 1 1) 2)`, "<test>", nil)
	require.NoError(t, err)
	require.Len(t, prog.Forms, 1)

	name, exprForm, expectedForm, ok := asTestForm(prog.Forms[0])
	require.True(t, ok)
	assert.Equal(t, "one plus one", name)
	assert.Equal(t, "(+ 1 1)", exprForm.String())
	assert.Equal(t, "2", expectedForm.String())
}

func TestAsTestFormRejectsOrdinaryApplication(t *testing.T) {
	prog, err := sexpr.ParseProgram(`(+ 1 2)`, "<test>", nil)
	require.NoError(t, err)

	_, _, _, ok := asTestForm(prog.Forms[0])
	assert.False(t, ok)
}

func TestRunTestFilePassingAndFailingCases(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "suite.sf", `
(let double (fn x (+ x x)))
(test "double 3" (double 3) 6)
(test "double 3 wrong" (double 3) 7)
`)

	report := test.NewReport()
	require.NoError(t, runTestFile(path, report))
	require.Len(t, report.Cases, 2)

	byName := map[string]test.Case{}
	for _, c := range report.Cases {
		byName[c.Name] = c
	}
	assert.Equal(t, "passed", byName["double 3"].Status)
	assert.Equal(t, "(double 3)", byName["double 3"].Expr)
	assert.Equal(t, "6", byName["double 3"].Got)
	assert.Equal(t, "6", byName["double 3"].Want)

	assert.Equal(t, "failed", byName["double 3 wrong"].Status)
	assert.Equal(t, "6", byName["double 3 wrong"].Got)
	assert.Equal(t, "7", byName["double 3 wrong"].Want)
	assert.Contains(t, byName["double 3 wrong"].Error, "got 6, want 7")
}

func TestCollectTestFilesWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sf", `(test "a" 1 1)`)
	writeFile(t, dir, "b.sf", `(test "b" 1 1)`)
	writeFile(t, dir, "ignore.txt", "not sform")

	files, err := collectTestFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, ".sf", filepath.Ext(f))
	}
}

func TestCollectTestFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.sf", `(test "a" 1 1)`)

	files, err := collectTestFiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}
