package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wakame-lang/sform/internal/eval"
	"github.com/wakame-lang/sform/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run <file.sf>",
	Short: "Parse, type-check, and evaluate a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	prog, err := loadProgram(args[0])
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}

	tenv, env, err := newSession()
	if err != nil {
		return err
	}

	if _, err := types.CheckProgram(tenv, prog); err != nil {
		printReportErr(err)
		os.Exit(1)
	}

	results, err := eval.EvalProgram(env, prog)
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}

	if len(results) > 0 {
		fmt.Println(results[len(results)-1].String())
	}
	return nil
}
