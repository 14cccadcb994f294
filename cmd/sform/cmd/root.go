// Package cmd wires the sform CLI's subcommands onto a cobra root command.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

var (
	version = "dev"
	commit  = "unknown"
)

// traceEnabled is set by --trace and read by newSession to wire up the
// checker's Trace hooks (TypeAlloc and TypeEnv).
var traceEnabled bool

var rootCmd = &cobra.Command{
	Use:   "sform",
	Short: "sform is a statically-typed s-expression functional language",
	Long: `sform parses, type-checks, and evaluates a small s-expression
surface syntax over a Hindley-Milner core with structural subtyping.`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(bold("sform") + " version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "print type-checker tracing to stderr")
}

// traceFunc returns a Trace hook bound to stderr when --trace is set, or nil
// otherwise — TypeEnv/TypeAlloc treat a nil Trace as a no-op.
func traceFunc() func(string, ...any) {
	if !traceEnabled {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, dim("[trace] "+format+"\n"), args...)
	}
}
