package machine

import (
	"fmt"
	"math"

	"github.com/mna/eon/lang/compiler"
	"github.com/mna/eon/lang/diag"
)

// RunState is the outcome of one VM.Run call, telling the driver loop what
// to do next: keep calling Run (never happens, Run only returns once it
// can't make further progress), service a pending host call, or stop.
type RunState int

const (
	Done RunState = iota
	Suspended
	Errored
)

// HostCall describes a pending call to a host function: the VM has popped
// its arguments off the stack and is waiting for the driver to supply a
// result via ResumeHostCall before it can continue.
type HostCall struct {
	Name string
	Args []Value
}

// ForeignCaller is the narrow vtable the VM uses to cross into foreign
// (dynamically loaded) code, implemented by lang/ffi. Keeping it as an
// interface here (rather than machine depending on ffi directly) avoids a
// cycle, since ffi's marshalling needs machine.Value.
type ForeignCaller interface {
	CallExtern(library, symbol string, args []Value) (Value, error)
}

// Collector is the minimal interface the garbage collector implements,
// consumed via dependency inversion the same way ForeignCaller is: the gc
// heap needs machine.Value to do its job, so machine cannot import it back.
type Collector interface {
	Collect(roots []Value)
}

// VM executes a single compiler.Program. It holds exactly one logical
// thread of execution; concurrent Eon programs are out of scope for this
// core (see the language core's Non-goals).
type VM struct {
	Prog    *compiler.Program
	Foreign ForeignCaller
	GC      Collector

	stack  []Value
	frames []*Frame

	pending *HostCall
	result  Value
	err     *diag.RuntimeError
}

func NewVM(prog *compiler.Program) *VM {
	return &VM{Prog: prog}
}

// Call pushes a new frame for the named top-level function and primes the
// VM to execute it on the next Run.
func (vm *VM) Call(funcName string, args []Value) error {
	for _, fn := range vm.Prog.Functions {
		if fn.Name == funcName {
			vm.frames = append(vm.frames, newFrame(vm.Prog, fn, args))
			return nil
		}
	}
	return fmt.Errorf("machine: no such function %q", funcName)
}

func (vm *VM) IsDone() bool              { return len(vm.frames) == 0 && vm.pending == nil }
func (vm *VM) Error() *diag.RuntimeError { return vm.err }
func (vm *VM) Result() Value             { return vm.result }

func (vm *VM) PendingHostCall() (HostCall, bool) {
	if vm.pending == nil {
		return HostCall{}, false
	}
	return *vm.pending, true
}

// ResumeHostCall supplies the result of a serviced host call and clears
// the suspension, so the next Run continues where HOSTFUNC left off.
func (vm *VM) ResumeHostCall(result Value) {
	vm.push(result)
	vm.pending = nil
}

// Collect asks the configured Collector to trace and reclaim garbage,
// rooted at every value currently reachable from the operand stack and
// every active frame's locals. The driver loop calls this between Run
// calls, the same point the suspension-protocol section of the core
// specifies: after a Run returns and before inspecting why.
func (vm *VM) Collect() {
	if vm.GC == nil {
		return
	}
	roots := make([]Value, 0, len(vm.stack))
	roots = append(roots, vm.stack...)
	for _, fr := range vm.frames {
		roots = append(roots, fr.Locals...)
		for _, c := range fr.Freevars {
			roots = append(roots, c.V)
		}
	}
	vm.GC.Collect(roots)
}

func (vm *VM) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) popN(n int) []Value {
	vs := make([]Value, n)
	copy(vs, vm.stack[len(vm.stack)-n:])
	vm.stack = vm.stack[:len(vm.stack)-n]
	return vs
}

func (vm *VM) top() *Frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) panicf(format string, args ...interface{}) RunState {
	vm.err = &diag.RuntimeError{Kind: diag.RuntimePanic, Message: fmt.Sprintf(format, args...)}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		vm.err.Trace = append(vm.err.Trace, diag.Frame{FuncName: vm.frames[i].Fn.Name})
	}
	vm.frames = nil
	return Errored
}

// Run executes instructions until the program returns from its last
// frame (Done), a HOSTFUNC or STOP instruction suspends it (Suspended), or
// a runtime error occurs (Errored). Only those two opcodes ever suspend
// execution, per the suspension protocol: every other instruction runs to
// completion within a single Run call.
func (vm *VM) Run() RunState {
	for len(vm.frames) > 0 {
		fr := vm.top()
		if fr.PC >= len(fr.Fn.Code) {
			return vm.panicf("pc %d out of range in %s", fr.PC, fr.Fn.Name)
		}
		in := fr.Fn.Code[fr.PC]
		fr.PC++

		switch in.Op {
		case compiler.NOP:
		case compiler.POP:
			vm.pop()
		case compiler.DUP:
			vm.push(vm.stack[len(vm.stack)-1])
		case compiler.SWAP:
			n := len(vm.stack)
			vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

		case compiler.CONSTANT:
			switch in.B {
			case compiler.ConstInt:
				vm.push(Int(fr.Prog.Constants.IntAt(in.A)))
			case compiler.ConstFloat:
				vm.push(Float(fr.Prog.Constants.FloatAt(in.A)))
			case compiler.ConstString:
				vm.push(String(fr.Prog.Constants.StringAt(in.A)))
			}
		case compiler.TRUE:
			vm.push(Bool(true))
		case compiler.FALSE:
			vm.push(Bool(false))
		case compiler.NIL:
			vm.push(Nil{})

		case compiler.LOCAL:
			vm.push(fr.Locals[in.A])
		case compiler.SETLOCAL:
			fr.Locals[in.A] = vm.pop()
		case compiler.FREE:
			if int(in.A) >= len(fr.Freevars) {
				return vm.panicf("FREE %d out of range in %s", in.A, fr.Fn.Name)
			}
			vm.push(fr.Freevars[in.A].V)
		case compiler.SETFREE:
			if int(in.A) >= len(fr.Freevars) {
				return vm.panicf("SETFREE %d out of range in %s", in.A, fr.Fn.Name)
			}
			fr.Freevars[in.A].V = vm.pop()

		case compiler.ADDINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(l + r)
		case compiler.SUBINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(l - r)
		case compiler.MULINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(l * r)
		case compiler.DIVINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			if r == 0 {
				return vm.runtimeErr(diag.RuntimeDivideByZero, "division by zero")
			}
			vm.push(l / r)
		case compiler.MODINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			if r == 0 {
				return vm.runtimeErr(diag.RuntimeDivideByZero, "modulo by zero")
			}
			vm.push(l % r)
		case compiler.POWINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Int(intPow(int64(l), int64(r))))
		case compiler.NEGINT:
			vm.push(-vm.pop().(Int))

		case compiler.ADDFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(l + r)
		case compiler.SUBFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(l - r)
		case compiler.MULFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(l * r)
		case compiler.DIVFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(l / r)
		case compiler.POWFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Float(math.Pow(float64(l), float64(r))))
		case compiler.NEGFLOAT:
			vm.push(-vm.pop().(Float))
		case compiler.SQRTFLOAT:
			vm.push(Float(math.Sqrt(float64(vm.pop().(Float)))))

		case compiler.EQLINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Bool(l == r))
		case compiler.EQLFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Bool(l == r)) // IEEE bitwise equality: NaN != NaN, matching the core's float semantics
		case compiler.EQLBOOL:
			r, l := vm.pop().(Bool), vm.pop().(Bool)
			vm.push(Bool(l == r))
		case compiler.EQLSTRING:
			r, l := vm.pop().(String), vm.pop().(String)
			vm.push(Bool(l == r))
		case compiler.LTINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Bool(l < r))
		case compiler.LEINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Bool(l <= r))
		case compiler.GTINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Bool(l > r))
		case compiler.GEINT:
			r, l := vm.pop().(Int), vm.pop().(Int)
			vm.push(Bool(l >= r))
		case compiler.LTFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Bool(l < r))
		case compiler.LEFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Bool(l <= r))
		case compiler.GTFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Bool(l > r))
		case compiler.GEFLOAT:
			r, l := vm.pop().(Float), vm.pop().(Float)
			vm.push(Bool(l >= r))

		case compiler.NOT:
			vm.push(!vm.pop().(Bool))
		case compiler.AND:
			r, l := vm.pop().(Bool), vm.pop().(Bool)
			vm.push(l && r)
		case compiler.OR:
			r, l := vm.pop().(Bool), vm.pop().(Bool)
			vm.push(l || r)

		case compiler.CONCATSTRING:
			r, l := vm.pop().(String), vm.pop().(String)
			vm.push(l + r)
		case compiler.INTTOSTRING:
			vm.push(String(vm.pop().(Int).String()))
		case compiler.FLOATTOSTRING:
			vm.push(String(vm.pop().(Float).String()))

		case compiler.CONSTRUCTARRAY:
			vm.push(&Array{Elems: vm.popN(int(in.A))})
		case compiler.ARRAYAPPEND:
			elem := vm.pop()
			arr := vm.pop().(*Array)
			arr.Elems = append(arr.Elems, elem)
		case compiler.ARRAYLENGTH:
			arr := vm.pop().(*Array)
			vm.push(Int(len(arr.Elems)))
		case compiler.ARRAYPOP:
			arr := vm.pop().(*Array)
			if len(arr.Elems) == 0 {
				return vm.runtimeErr(diag.RuntimeIndexOutOfBounds, "pop from an empty array")
			}
			arr.Elems = arr.Elems[:len(arr.Elems)-1]

		case compiler.GETIDX:
			idx := vm.pop().(Int)
			arr := vm.pop().(*Array)
			if idx < 0 || int(idx) >= len(arr.Elems) {
				return vm.runtimeErr(diag.RuntimeIndexOutOfBounds, "index %d out of range for array of length %d", idx, len(arr.Elems))
			}
			vm.push(arr.Elems[idx])
		case compiler.SETIDX:
			val := vm.pop()
			idx := vm.pop().(Int)
			arr := vm.pop().(*Array)
			if idx < 0 || int(idx) >= len(arr.Elems) {
				return vm.runtimeErr(diag.RuntimeIndexOutOfBounds, "index %d out of range for array of length %d", idx, len(arr.Elems))
			}
			arr.Elems[idx] = val

		case compiler.CONSTRUCTSTRUCT:
			fields := vm.popN(int(in.B))
			vm.push(&Struct{TypeName: fr.Prog.Structs[in.A].Name, Fields: fields})
		case compiler.DECONSTRUCTSTRUCT:
			st := vm.pop().(*Struct)
			for _, f := range st.Fields {
				vm.push(f)
			}
		case compiler.GETFIELD:
			st := vm.pop().(*Struct)
			vm.push(st.Fields[in.A])
		case compiler.SETFIELD:
			val := vm.pop()
			st := vm.pop().(*Struct)
			st.Fields[in.A] = val

		case compiler.CONSTRUCTVARIANT:
			et := fr.Prog.Enums[in.A]
			args := vm.popN(et.Arity[in.B])
			vm.push(&Variant{TypeName: et.Name, VariantIdx: in.B, VariantName: et.Variants[in.B], Payload: args})
		case compiler.TESTVARIANT:
			v := vm.stack[len(vm.stack)-1].(*Variant)
			vm.push(Bool(v.VariantIdx == in.A))
		case compiler.DECONSTRUCTVARIANT:
			v := vm.pop().(*Variant)
			for _, p := range v.Payload {
				vm.push(p)
			}

		case compiler.MAKECLOSURE:
			cells := make([]*Cell, in.B)
			vals := vm.popN(int(in.B))
			for i, v := range vals {
				cells[i] = &Cell{V: v}
			}
			vm.push(&Closure{Func: fr.Prog.Functions[in.A], Freevars: cells})

		case compiler.CALL:
			args := vm.popN(int(in.B))
			vm.frames = append(vm.frames, newFrame(fr.Prog, fr.Prog.Functions[in.A], args))
		case compiler.CALLFUNCOBJ:
			args := vm.popN(int(in.A))
			closure := vm.pop().(*Closure)
			nf := newFrame(fr.Prog, closure.Func, args)
			nf.Freevars = closure.Freevars
			vm.frames = append(vm.frames, nf)
		case compiler.CALLEXTERN:
			args := vm.popN(int(in.B))
			ext := fr.Prog.Externs[in.A]
			if vm.Foreign == nil {
				return vm.runtimeErr(diag.RuntimeForeignCallFailed, "no foreign caller configured for %s::%s", ext.Library, ext.Symbol)
			}
			res, err := vm.Foreign.CallExtern(ext.Library, ext.Symbol, args)
			if err != nil {
				return vm.runtimeErr(diag.RuntimeForeignCallFailed, "%s::%s: %v", ext.Library, ext.Symbol, err)
			}
			vm.push(res)
		case compiler.RETURN:
			ret := vm.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.result = ret
			} else {
				vm.push(ret)
			}

		case compiler.JMP:
			fr.PC = int(in.A)
		case compiler.JUMPIF:
			if vm.pop().(Bool) {
				fr.PC = int(in.A)
			}

		case compiler.HOSTFUNC:
			vm.pending = &HostCall{Name: fr.Prog.HostFuncs[in.A], Args: vm.popN(int(in.B))}
			return Suspended
		case compiler.STOP:
			return Suspended
		case compiler.PANIC:
			msg := vm.pop()
			return vm.panicf("%s", msg.String())

		default:
			return vm.panicf("unimplemented opcode %s", in.Op)
		}
	}
	return Done
}

func (vm *VM) runtimeErr(kind diag.RuntimeKind, format string, args ...interface{}) RunState {
	vm.err = &diag.RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		vm.err.Trace = append(vm.err.Trace, diag.Frame{FuncName: vm.frames[i].Fn.Name})
	}
	vm.frames = nil
	return Errored
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
