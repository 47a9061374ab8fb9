package compiler

import "fmt"

type Opcode uint8

// "x ADDINT x x" is a "stack picture" that describes the state of the stack
// before and after execution of the instruction.
//
// OP<A> / OP<A,B> indicate immediate fields of the post-link Instr struct;
// unlike the teacher's varint-encoded byte stream, a Program here is a flat,
// PC-indexed []Instr, so operands are plain int32 fields rather than a
// trailing variable-length argument.
const ( //nolint:revive
	NOP Opcode = iota // - NOP -

	// stack operations
	POP  //   x POP  -
	DUP  //   x DUP  x x
	SWAP // x y SWAP y x

	// typed arithmetic, one opcode per operand type per the instruction
	// catalogue: Eon has no implicit numeric coercion, so the translator
	// picks the opcode once the operand's solved type is known.
	ADDINT  // x y ADDINT  x+y
	SUBINT  // x y SUBINT  x-y
	MULINT  // x y MULINT  x*y
	DIVINT  // x y DIVINT  x/y
	MODINT  // x y MODINT  x%y
	POWINT  // x y POWINT  x**y
	NEGINT  //   x NEGINT  -x

	ADDFLOAT  // x y ADDFLOAT  x+y
	SUBFLOAT  // x y SUBFLOAT  x-y
	MULFLOAT  // x y MULFLOAT  x*y
	DIVFLOAT  // x y DIVFLOAT  x/y
	POWFLOAT  // x y POWFLOAT  x**y
	NEGFLOAT  //   x NEGFLOAT  -x
	SQRTFLOAT //   x SQRTFLOAT sqrt(x)

	// typed comparisons, push a bool
	EQLINT
	EQLFLOAT
	EQLBOOL
	EQLSTRING
	LTINT
	LEINT
	GTINT
	GEINT
	LTFLOAT
	LEFLOAT
	GTFLOAT
	GEFLOAT

	NOT // x NOT !x
	AND // x y AND x&&y (both operands already evaluated; short-circuit is compiled as a JUMPIF)
	OR  // x y OR  x||y

	CONCATSTRING  // x y CONCATSTRING x++y
	INTTOSTRING   //   x INTTOSTRING  string(x)
	FLOATTOSTRING //   x FLOATTOSTRING string(x)

	NIL   // - NIL Nil
	TRUE  // - TRUE True
	FALSE // - FALSE False

	RETURN //      value RETURN -
	PANIC  //    message PANIC  -   (never returns)

	// --- opcodes with operand fields go below this line ---

	// control flow
	JMP      //      - JMP<A>      -    unconditional, A = target pc
	JUMPIF   //   cond JUMPIF<A>   -    pop cond, jump to A if true
	HOSTFUNC //   args HOSTFUNC<A> ret  A = host function id, suspends the VM
	STOP     //      - STOP<A>     -    suspends the VM, A = exit code

	CONSTANT  // - CONSTANT<A>  value  A = index into the program's ConstantsHolder
	SETLOCAL  // value SETLOCAL<A> -   A = local slot
	LOCAL     //     - LOCAL<A>    value
	FREE      //     - FREE<A>     value  A = freevar cell index
	SETFREE   // value SETFREE<A>  -      set the content of a freevar cell

	MAKECLOSURE // freevars MAKECLOSURE<A,B> closure  A = function index, B = #freevars popped (cells)
	CALL        //     args CALL<A,B>        result   A = function index, B = #args
	CALLFUNCOBJ //  fn args CALLFUNCOBJ<A>   result   A = #args, fn (closure) popped below them
	CALLEXTERN  //     args CALLEXTERN<A,B>  result   A = dylib func id, B = #args

	CONSTRUCTSTRUCT    //   fields CONSTRUCTSTRUCT<A,B>    struct         A = struct type id, B = #fields
	CONSTRUCTARRAY     //    elems CONSTRUCTARRAY<A>       array          A = #elems
	CONSTRUCTVARIANT   //     args CONSTRUCTVARIANT<A,B>   variant        A = enum type id, B = variant idx
	DECONSTRUCTSTRUCT  //   struct DECONSTRUCTSTRUCT<A>    fields         A = #fields, pushed in declaration order
	TESTVARIANT        //  variant TESTVARIANT<A>    variant bool   A = variant idx to test; variant is left on the stack, bool is pushed on top (peek, not pop)
	DECONSTRUCTVARIANT //  variant DECONSTRUCTVARIANT<A>   payload...     A = #payload values; pops variant, pushes its payload in declaration order (caller must have already confirmed the tag with TESTVARIANT)
	GETFIELD           //        x GETFIELD<A>             y        A = field idx, y = x.field
	SETFIELD           //      x y SETFIELD<A>             -        A = field idx, x.field = y
	GETIDX             //      a i GETIDX                  elem
	SETIDX             //  a i val SETIDX                  -
	ARRAYAPPEND        // arr elem ARRAYAPPEND              -        mutates arr in place
	ARRAYLENGTH        //      arr ARRAYLENGTH              int
	ARRAYPOP           //      arr ARRAYPOP                 -        mutates arr in place, no return value (void)

	opcodeArgMin = JMP
	opcodeMax    = ARRAYPOP
)

var opcodeNames = [...]string{
	NOP:                "nop",
	POP:                "pop",
	DUP:                "dup",
	SWAP:               "swap",
	ADDINT:             "add_int",
	SUBINT:             "sub_int",
	MULINT:             "mul_int",
	DIVINT:             "div_int",
	MODINT:             "mod_int",
	POWINT:             "pow_int",
	NEGINT:             "neg_int",
	ADDFLOAT:           "add_float",
	SUBFLOAT:           "sub_float",
	MULFLOAT:           "mul_float",
	DIVFLOAT:           "div_float",
	POWFLOAT:           "pow_float",
	NEGFLOAT:           "neg_float",
	SQRTFLOAT:          "sqrt_float",
	EQLINT:             "eql_int",
	EQLFLOAT:           "eql_float",
	EQLBOOL:            "eql_bool",
	EQLSTRING:          "eql_string",
	LTINT:              "lt_int",
	LEINT:              "le_int",
	GTINT:              "gt_int",
	GEINT:              "ge_int",
	LTFLOAT:            "lt_float",
	LEFLOAT:            "le_float",
	GTFLOAT:            "gt_float",
	GEFLOAT:            "ge_float",
	NOT:                "not",
	AND:                "and",
	OR:                 "or",
	CONCATSTRING:       "concat_string",
	INTTOSTRING:        "int_to_string",
	FLOATTOSTRING:      "float_to_string",
	NIL:                "nil",
	TRUE:               "true",
	FALSE:              "false",
	RETURN:             "return",
	PANIC:              "panic",
	JMP:                "jmp",
	JUMPIF:             "jump_if",
	HOSTFUNC:           "host_func",
	STOP:               "stop",
	CONSTANT:           "constant",
	SETLOCAL:           "set_local",
	LOCAL:              "local",
	FREE:               "free",
	SETFREE:            "set_free",
	MAKECLOSURE:        "make_closure",
	CALL:               "call",
	CALLFUNCOBJ:        "call_func_obj",
	CALLEXTERN:         "call_extern",
	CONSTRUCTSTRUCT:    "construct_struct",
	CONSTRUCTARRAY:     "construct_array",
	CONSTRUCTVARIANT:   "construct_variant",
	DECONSTRUCTSTRUCT:  "deconstruct_struct",
	TESTVARIANT:        "test_variant",
	DECONSTRUCTVARIANT: "deconstruct_variant",
	GETFIELD:           "get_field",
	SETFIELD:           "set_field",
	GETIDX:             "get_idx",
	SETIDX:             "set_idx",
	ARRAYAPPEND:        "array_append",
	ARRAYLENGTH:        "array_length",
	ARRAYPOP:           "array_pop",
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, s := range opcodeNames {
		m[s] = Opcode(op)
	}
	return m
}()

const variableStackEffect = 0x7f

// stackEffect records the effect on the size of the operand stack of each
// kind of instruction that doesn't depend on an operand. The translator
// computes the effect of the variable-arity opcodes (CALL family,
// construct/deconstruct family) itself, since it knows the arity at
// translation time.
var stackEffect = [...]int8{
	NOP:                0,
	POP:                -1,
	DUP:                +1,
	SWAP:               0,
	ADDINT:             -1,
	SUBINT:             -1,
	MULINT:             -1,
	DIVINT:             -1,
	MODINT:             -1,
	POWINT:             -1,
	NEGINT:             0,
	ADDFLOAT:           -1,
	SUBFLOAT:           -1,
	MULFLOAT:           -1,
	DIVFLOAT:           -1,
	POWFLOAT:           -1,
	NEGFLOAT:           0,
	SQRTFLOAT:          0,
	EQLINT:             -1,
	EQLFLOAT:           -1,
	EQLBOOL:            -1,
	EQLSTRING:          -1,
	LTINT:              -1,
	LEINT:              -1,
	GTINT:              -1,
	GEINT:              -1,
	LTFLOAT:            -1,
	LEFLOAT:            -1,
	GTFLOAT:            -1,
	GEFLOAT:            -1,
	NOT:                0,
	AND:                -1,
	OR:                 -1,
	CONCATSTRING:       -1,
	INTTOSTRING:        0,
	FLOATTOSTRING:      0,
	NIL:                +1,
	TRUE:               +1,
	FALSE:              +1,
	RETURN:             -1,
	PANIC:              -1,
	JMP:                0,
	JUMPIF:             -1,
	HOSTFUNC:           variableStackEffect,
	STOP:               0,
	CONSTANT:           +1,
	SETLOCAL:           -1,
	LOCAL:              +1,
	FREE:               +1,
	SETFREE:            -1,
	MAKECLOSURE:        variableStackEffect,
	CALL:               variableStackEffect,
	CALLFUNCOBJ:        variableStackEffect,
	CALLEXTERN:         variableStackEffect,
	CONSTRUCTSTRUCT:    variableStackEffect,
	CONSTRUCTARRAY:     variableStackEffect,
	CONSTRUCTVARIANT:   variableStackEffect,
	DECONSTRUCTSTRUCT:  variableStackEffect,
	TESTVARIANT:        +1,
	DECONSTRUCTVARIANT: variableStackEffect,
	GETFIELD:           0,
	SETFIELD:           -2,
	GETIDX:             -1,
	SETIDX:             -3,
	ARRAYAPPEND:        -2,
	ARRAYLENGTH:        0,
	ARRAYPOP:           -1,
}

func (op Opcode) String() string {
	if op <= opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// hasOperand reports whether op carries A/B fields that need encoding in
// assembly form.
func hasOperand(op Opcode) bool {
	return op >= opcodeArgMin
}

// isSuspendPoint reports whether op is one of the two opcodes that can
// suspend the virtual machine mid-program: a pending host call, or an
// explicit stop.
func isSuspendPoint(op Opcode) bool {
	return op == HOSTFUNC || op == STOP
}
