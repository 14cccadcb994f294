// Package repl implements the interactive read-eval-print loop for sform,
// sharing one TypeEnv and one eval.Environment across lines the way
// internal/types.CheckProgram and eval.EvalProgram thread them across a
// file's top-level forms.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/wakame-lang/sform/internal/errors"
	"github.com/wakame-lang/sform/internal/eval"
	"github.com/wakame-lang/sform/internal/externals"
	"github.com/wakame-lang/sform/internal/sexpr"
	"github.com/wakame-lang/sform/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL holds the session state shared across lines.
type REPL struct {
	env     *eval.Environment
	typeEnv *types.TypeEnv
	history []string
	trace   bool
}

// New builds a REPL with a fresh environment seeded with every external.
func New() (*REPL, error) {
	r := &REPL{}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *REPL) reset() error {
	alloc := types.NewTypeAlloc()
	tenv, err := types.NewTypeEnv(alloc)
	if err != nil {
		return err
	}
	if err := externals.Seed(tenv); err != nil {
		return err
	}
	r.typeEnv = tenv
	r.env = eval.NewRootEnvironment()
	r.applyTrace()
	return nil
}

// applyTrace wires the TypeEnv/TypeAlloc Trace hooks to stderr when tracing
// is on, or clears them otherwise; called after every reset since reset
// rebuilds both from scratch.
func (r *REPL) applyTrace() {
	var hook func(string, ...any)
	if r.trace {
		hook = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, dim("[trace] "+format+"\n"), args...)
		}
	}
	r.typeEnv.Trace = hook
	r.typeEnv.Alloc.Trace = hook
}

// Start runs the loop, reading from a liner-backed prompt and writing
// results/errors to out. Returns when the user quits or stdin is closed.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".sform_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(text string) (c []string) {
		if !strings.HasPrefix(text, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":type", ":externals", ":history", ":clear", ":reset", ":trace"} {
			if strings.HasPrefix(cmd, text) {
				c = append(c, cmd)
			}
		}
		return c
	})

	fmt.Fprintf(out, "%s\n", bold("sform"))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("sform> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		r.processLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand processes a `:`-prefixed command. Returns true if the REPL
// should exit.
func (r *REPL) handleCommand(cmd string, out io.Writer) bool {
	parts := strings.Fields(cmd)
	switch parts[0] {
	case ":help", ":h":
		r.printHelp(out)
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":type", ":t":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :type <expression>")
			return false
		}
		r.showType(strings.Join(parts[1:], " "), out)
	case ":externals":
		names := externals.Names()
		sort.Strings(names)
		fmt.Fprintln(out, strings.Join(names, " "))
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%4d  %s\n", i+1, h)
		}
	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")
	case ":reset":
		if err := r.reset(); err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return false
		}
		fmt.Fprintln(out, green("Environment reset"))
	case ":trace":
		r.trace = !r.trace
		r.applyTrace()
		fmt.Fprintf(out, "Tracing %s\n", map[bool]string{true: "on", false: "off"}[r.trace])
	default:
		fmt.Fprintf(out, "Unknown command: %s (try :help)\n", parts[0])
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  :help, :h            Show this help")
	fmt.Fprintln(out, "  :quit, :q, :exit     Exit the REPL")
	fmt.Fprintln(out, "  :type, :t <expr>     Show the inferred type of an expression")
	fmt.Fprintln(out, "  :externals           List registered external primitives")
	fmt.Fprintln(out, "  :history             Show input history")
	fmt.Fprintln(out, "  :clear               Clear the screen")
	fmt.Fprintln(out, "  :reset               Reset the type and value environments")
	fmt.Fprintln(out, "  :trace               Toggle checker tracing to stderr")
}

func (r *REPL) showType(src string, out io.Writer) {
	prog, err := sexpr.ParseProgram(src, "<repl>", nil)
	if err != nil {
		printError(out, err)
		return
	}
	for _, form := range prog.Forms {
		id, err := types.TypeCheck(r.typeEnv, form)
		if err != nil {
			printError(out, err)
			return
		}
		name, err := r.typeEnv.TypeName(id)
		if err != nil {
			printError(out, err)
			return
		}
		fmt.Fprintf(out, "%s\n", yellow(name))
	}
}

// processLine parses, type-checks, and evaluates one line of input,
// threading r's TypeEnv/Environment across lines exactly as
// CheckProgram/EvalProgram thread them across a file's top-level forms.
func (r *REPL) processLine(src string, out io.Writer) {
	prog, err := sexpr.ParseProgram(src, "<repl>", nil)
	if err != nil {
		printError(out, err)
		return
	}
	for _, form := range prog.Forms {
		typeID, err := types.TypeCheck(r.typeEnv, form)
		if err != nil {
			printError(out, err)
			return
		}
		typeName, err := r.typeEnv.TypeName(typeID)
		if err != nil {
			printError(out, err)
			return
		}
		val, err := eval.Eval(r.env, form)
		if err != nil {
			printError(out, err)
			return
		}
		fmt.Fprintf(out, "%s : %s = %s\n", cyan("result"), yellow(typeName), green(val.String()))
	}
}

func printError(out io.Writer, err error) {
	if rep, ok := errors.AsReport(err); ok {
		fmt.Fprintf(out, "%s [%s]: %s\n", red(rep.Phase+" error"), rep.Code, rep.Message)
		return
	}
	fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
}
