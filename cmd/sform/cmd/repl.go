package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wakame-lang/sform/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive REPL",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	r, err := repl.New()
	if err != nil {
		return err
	}
	r.Start(os.Stdout)
	return nil
}
