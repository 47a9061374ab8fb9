// Package hostfuncs supplies the CLI's host-function environment: the Go
// implementations a running program suspends into via a HOSTFUNC
// instruction. The original CLI wires exactly two, print_string and
// readline; this package reproduces both against a mainer.Stdio rather
// than the bare os.Stdin/os.Stdout the original used, so the driver loop
// in internal/maincmd can service a suspended machine.VM uniformly.
package hostfuncs

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/eon/lang/machine"
)

// Func is one host function's Go-native implementation.
type Func func(stdio mainer.Stdio, args []machine.Value) (machine.Value, error)

// Table dispatches a suspended VM's pending host call by name. Readline
// keeps a single buffered reader across calls so a program that calls it
// repeatedly resumes from where the previous line left off.
type Table struct {
	fns map[string]Func
	in  *bufio.Reader
}

// New returns a Table with the print_string/readline pair wired up,
// reading from stdio.Stdin for readline.
func New(stdio mainer.Stdio) *Table {
	t := &Table{fns: make(map[string]Func)}
	t.in = bufio.NewReader(stdio.Stdin)
	t.fns["print_string"] = printString
	t.fns["readline"] = t.readline
	return t
}

// Dispatch resolves call.Name to a registered Func and runs it. For a name
// with no registered Func it returns a plain error naming that function.
func (t *Table) Dispatch(stdio mainer.Stdio, call machine.HostCall) (machine.Value, error) {
	fn, ok := t.fns[call.Name]
	if !ok {
		return nil, fmt.Errorf("hostfuncs: no host function named %q is wired up", call.Name)
	}
	return fn(stdio, call.Args)
}

func printString(stdio mainer.Stdio, args []machine.Value) (machine.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("print_string: want 1 argument, got %d", len(args))
	}
	s, ok := args[0].(machine.String)
	if !ok {
		return nil, fmt.Errorf("print_string: want a string argument, got %T", args[0])
	}
	fmt.Fprintln(stdio.Stdout, string(s))
	return machine.Nil{}, nil
}

// readline reads one line from stdin, stripping a trailing \r\n or \n,
// matching the original CLI's Readline host function exactly.
func (t *Table) readline(_ mainer.Stdio, args []machine.Value) (machine.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("readline: want 0 arguments, got %d", len(args))
	}
	line, err := t.in.ReadString('\n')
	if line == "" && err != nil {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	return machine.String(line), nil
}
