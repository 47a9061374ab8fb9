package machine

import "github.com/mna/eon/lang/compiler"

// Frame records one active call: the function being executed, its program
// counter, its local slots (parameters first, then declared locals in the
// order the translator allocated them), and, for a closure, the cells it
// captured from its enclosing frame at MAKECLOSURE time.
type Frame struct {
	Fn       *compiler.Function
	Prog     *compiler.Program
	PC       int
	Locals   []Value
	Freevars []*Cell
}

func newFrame(prog *compiler.Program, fn *compiler.Function, args []Value) *Frame {
	locals := make([]Value, len(fn.Locals))
	copy(locals, args)
	for i := len(args); i < len(locals); i++ {
		locals[i] = Nil{}
	}
	return &Frame{Fn: fn, Prog: prog, Locals: locals}
}
