package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wakame-lang/sform/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.sf>",
	Short: "Type-check a program without evaluating it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	prog, err := loadProgram(args[0])
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}

	tenv, _, err := newSession()
	if err != nil {
		return err
	}

	ids, err := types.CheckProgram(tenv, prog)
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		fmt.Println(yellow("empty program"))
		return nil
	}

	name, err := tenv.TypeName(ids[len(ids)-1])
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", green("✓"), name)
	return nil
}
