package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/cobra-lang/cobra/internal/llir"
)

const debuggerHelp = `Cobra interpreter debugger commands:
    help, h:                print this help message
    quit, q:                quit the debugger
    print <var>, p <var>:   print a variable
    step, s:                step one instruction
    continue, c:            continue running
`

// RunDebuggerCLI drives an interactive step/continue/print session
// over in/out, the way the original's shrust-based shell did, minus
// the external shell dependency: a bufio.Scanner command loop,
// grounded on the teacher's prompt-per-line REPL idiom.
func RunDebuggerCLI(module *llir.Module, funcName string, args []Value, in io.Reader, out io.Writer) error {
	it := New(module)
	dbg, err := NewDebugger(it, funcName, args)
	if err != nil {
		return err
	}
	printLocation(out, dbg.Cursor())

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "dbg> ")
		}
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		cmdArgs := fields[1:]

		switch cmd {
		case "help", "h":
			fmt.Fprint(out, debuggerHelp)
		case "quit", "q":
			fmt.Fprintln(out, "quitting...")
			return nil
		case "step", "s":
			if done := doStep(dbg, out); done {
				return nil
			}
		case "continue", "c":
			v, err := dbg.Continue()
			if err != nil {
				fmt.Fprintln(out, "execution error:", err)
				return nil
			}
			fmt.Fprintln(out, "program exited with return value", v)
			return nil
		case "print", "p":
			if len(cmdArgs) != 1 {
				fmt.Fprintln(out, "usage: print <var>")
				continue
			}
			v, err := dbg.Print(cmdArgs[0])
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "%s = %s\n", cmdArgs[0], v)
		default:
			fmt.Fprintf(out, "unknown command %q, try 'help'\n", cmd)
		}
	}
}

func doStep(dbg *Debugger, out io.Writer) bool {
	res, err := dbg.Step()
	if err != nil {
		fmt.Fprintln(out, "execution error:", err)
		return true
	}
	if res.Kind == StepExit {
		fmt.Fprintln(out, "program exited with return value", res.Value)
		return true
	}
	printLocation(out, dbg.Cursor())
	return false
}

func printLocation(out io.Writer, cur Cursor) {
	fmt.Fprintf(out, "%s@%s:%d\n", cur.Function, blockLabel(cur.Block), cur.Instruction)
}

func blockLabel(ref llir.BlockRef) string {
	if ref == 0 {
		return "entry"
	}
	return fmt.Sprintf("block%d", int(ref))
}
