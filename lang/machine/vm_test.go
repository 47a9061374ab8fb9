package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/eon/lang/compiler"
)

// These programs are hand-assembled rather than produced by the compiler
// package's translator, the same way the compiler package's own tests
// hand-build ASTs: there is no surface syntax front end yet to drive the
// VM through a real source file.

func newIntAddProgram(t *testing.T, a, b int64) *compiler.Program {
	t.Helper()
	prog := compiler.NewProgram("test.en")
	ca := prog.Constants.Int(a)
	cb := prog.Constants.Int(b)
	prog.Functions = append(prog.Functions, &compiler.Function{
		Name: "main",
		Code: []compiler.Instr{
			{Op: compiler.CONSTANT, A: ca, B: compiler.ConstInt},
			{Op: compiler.CONSTANT, A: cb, B: compiler.ConstInt},
			{Op: compiler.ADDINT},
			{Op: compiler.RETURN},
		},
	})
	return prog
}

func newIntDivProgram(t *testing.T, a, b int64) *compiler.Program {
	t.Helper()
	prog := compiler.NewProgram("test.en")
	ca := prog.Constants.Int(a)
	cb := prog.Constants.Int(b)
	prog.Functions = append(prog.Functions, &compiler.Function{
		Name: "main",
		Code: []compiler.Instr{
			{Op: compiler.CONSTANT, A: ca, B: compiler.ConstInt},
			{Op: compiler.CONSTANT, A: cb, B: compiler.ConstInt},
			{Op: compiler.DIVINT},
			{Op: compiler.RETURN},
		},
	})
	return prog
}

// newArrayProgram builds [3, 4], appends 7 and reads index 2 back, proving
// Array's reference semantics survive a DUP: both stack slots point at the
// same underlying Array after CONSTRUCTARRAY, so the append through one is
// visible through the other.
func newArrayProgram(t *testing.T) *compiler.Program {
	t.Helper()
	prog := compiler.NewProgram("test.en")
	c3 := prog.Constants.Int(3)
	c4 := prog.Constants.Int(4)
	c7 := prog.Constants.Int(7)
	c2 := prog.Constants.Int(2)
	prog.Functions = append(prog.Functions, &compiler.Function{
		Name: "main",
		Code: []compiler.Instr{
			{Op: compiler.CONSTANT, A: c3, B: compiler.ConstInt},
			{Op: compiler.CONSTANT, A: c4, B: compiler.ConstInt},
			{Op: compiler.CONSTRUCTARRAY, A: 2},
			{Op: compiler.DUP},
			{Op: compiler.CONSTANT, A: c7, B: compiler.ConstInt},
			{Op: compiler.ARRAYAPPEND},
			{Op: compiler.CONSTANT, A: c2, B: compiler.ConstInt},
			{Op: compiler.GETIDX},
			{Op: compiler.RETURN},
		},
	})
	return prog
}

// newClosureProgram builds a closure over a single captured value: main
// pushes a constant, MAKECLOSUREs over it, then calls the closure object.
// The closure body overwrites its capture with SETFREE and reads it back
// with FREE, so a correct result proves MAKECLOSURE boxed the captured
// value in a cell, CALLFUNCOBJ wired that cell into the new frame, and
// FREE/SETFREE both operate on it rather than panicking.
func newClosureProgram(t *testing.T) *compiler.Program {
	t.Helper()
	prog := compiler.NewProgram("test.en")
	c77 := prog.Constants.Int(77)
	c99 := prog.Constants.Int(99)
	prog.Functions = append(prog.Functions,
		&compiler.Function{
			Name: "main",
			Code: []compiler.Instr{
				{Op: compiler.CONSTANT, A: c77, B: compiler.ConstInt},
				{Op: compiler.MAKECLOSURE, A: 1, B: 1},
				{Op: compiler.CALLFUNCOBJ, A: 0, B: 0},
				{Op: compiler.RETURN},
			},
		},
		&compiler.Function{
			Name:     "<closure>",
			Freevars: []string{"x"},
			Code: []compiler.Instr{
				{Op: compiler.CONSTANT, A: c99, B: compiler.ConstInt},
				{Op: compiler.SETFREE, A: 0},
				{Op: compiler.FREE, A: 0},
				{Op: compiler.RETURN},
			},
		},
	)
	return prog
}

func newHostCallProgram(t *testing.T) *compiler.Program {
	t.Helper()
	prog := compiler.NewProgram("test.en")
	prog.HostFuncs = []string{"print"}
	prog.Functions = append(prog.Functions, &compiler.Function{
		Name: "main",
		Code: []compiler.Instr{
			{Op: compiler.HOSTFUNC, A: 0, B: 0},
			{Op: compiler.RETURN},
		},
	})
	return prog
}

func TestVMAddsTwoIntConstants(t *testing.T) {
	prog := newIntAddProgram(t, 2, 3)
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Done, vm.Run())
	require.Equal(t, Int(5), vm.Result())
}

func TestVMDivideByZeroIsARuntimeError(t *testing.T) {
	prog := newIntDivProgram(t, 1, 0)
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Errored, vm.Run())
	require.NotNil(t, vm.Error())
}

func TestVMArrayConstructIndexAndAppend(t *testing.T) {
	prog := newArrayProgram(t)
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Done, vm.Run())
	require.Equal(t, Int(7), vm.Result())
}

func TestVMClosureCapturesAndMutatesFreevar(t *testing.T) {
	prog := newClosureProgram(t)
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Done, vm.Run())
	require.Equal(t, Int(99), vm.Result())
}

func TestVMFreeOutOfRangePanics(t *testing.T) {
	prog := compiler.NewProgram("test.en")
	prog.Functions = append(prog.Functions, &compiler.Function{
		Name: "main",
		Code: []compiler.Instr{
			{Op: compiler.FREE, A: 0},
			{Op: compiler.RETURN},
		},
	})
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Errored, vm.Run())
	require.NotNil(t, vm.Error())
}

func TestVMSuspendsOnHostCallAndResumes(t *testing.T) {
	prog := newHostCallProgram(t)
	vm := NewVM(prog)
	require.NoError(t, vm.Call("main", nil))
	require.Equal(t, Suspended, vm.Run())
	call, ok := vm.PendingHostCall()
	require.True(t, ok)
	require.Equal(t, "print", call.Name)
	vm.ResumeHostCall(Nil{})
	require.Equal(t, Done, vm.Run())
}
