// Package ffi implements the narrow marshalling vtable the virtual
// machine crosses into foreign code through: a CALLEXTERN instruction
// names a library and a symbol, and this package resolves that pair to a
// callable that trades in machine.Value directly, rather than the raw
// byte/pointer marshalling a real dynamic-library loader would need.
//
// Dynamic library loading itself (dlopen/dlsym or Go plugin.Open) is
// deliberately not implemented here: see DESIGN.md for why loading
// arbitrary shared objects is out of scope for this core. Table registers
// a Go-native implementation under a library/symbol pair instead, the
// seam a real embedder would widen into an actual loader.
package ffi

import "github.com/mna/eon/lang/machine"

// Func is a foreign function's Go-native implementation: it receives its
// arguments already marshalled to machine.Value and returns a single
// machine.Value result, matching the Eon core's single-return-value
// calling convention.
type Func func(args []machine.Value) (machine.Value, error)

// NotEnabledError is returned when a program calls into a library/symbol
// pair nothing registered, the condition the analyzer's diagnostics refer
// to as foreign-calling not being enabled for that build.
type NotEnabledError struct {
	Library, Symbol string
}

func (e *NotEnabledError) Error() string {
	return "ffi: " + e.Library + "::" + e.Symbol + " is not enabled for this build"
}

// Table is a registry of foreign functions, keyed by library and symbol
// name, that implements machine.ForeignCaller.
type Table struct {
	fns map[string]map[string]Func
}

func NewTable() *Table {
	return &Table{fns: make(map[string]map[string]Func)}
}

// Register binds a Go implementation to a library/symbol pair. Calling it
// twice for the same pair replaces the previous binding, the same
// last-registration-wins rule a real dynamic loader would apply across
// reloaded shared objects.
func (t *Table) Register(library, symbol string, fn Func) {
	lib, ok := t.fns[library]
	if !ok {
		lib = make(map[string]Func)
		t.fns[library] = lib
	}
	lib[symbol] = fn
}

func (t *Table) CallExtern(library, symbol string, args []machine.Value) (machine.Value, error) {
	lib, ok := t.fns[library]
	if !ok {
		return nil, &NotEnabledError{Library: library, Symbol: symbol}
	}
	fn, ok := lib[symbol]
	if !ok {
		return nil, &NotEnabledError{Library: library, Symbol: symbol}
	}
	return fn(args)
}

var (
	_ machine.ForeignCaller = (*Table)(nil)
)
