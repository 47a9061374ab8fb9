package analyzer

import (
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/types"
)

// NewPrelude returns the root namespace pre-populated with the builtin
// primitive types, the Array nominal type and the fixed builtin-operation
// catalogue every program can call without declaring it, the way the
// original implementation's prelude.en virtual file wires names to
// BuiltinOperation/BuiltinType values before any user file is analyzed.
func NewPrelude() *namespace.Namespace {
	root := namespace.New("")

	prims := []struct {
		name string
		prim types.Prim
	}{
		{"int", types.Int}, {"float", types.Float}, {"bool", types.Bool},
		{"string", types.Str}, {"void", types.Void}, {"never", types.Never},
	}
	for _, p := range prims {
		root.Declare(p.name, namespace.Declaration{Kind: namespace.DeclBuiltinType, BuiltinType: p.prim})
	}
	root.Declare("Array", namespace.Declaration{Kind: namespace.DeclArrayType})

	ops := []struct {
		name string
		op   namespace.BuiltinOperation
	}{
		{"add_int", namespace.OpAddInt}, {"subtract_int", namespace.OpSubtractInt},
		{"multiply_int", namespace.OpMultiplyInt}, {"divide_int", namespace.OpDivideInt},
		{"power_int", namespace.OpPowerInt}, {"modulo", namespace.OpModulo},
		{"sqrt_int", namespace.OpSqrtInt}, {"add_float", namespace.OpAddFloat},
		{"subtract_float", namespace.OpSubtractFloat}, {"multiply_float", namespace.OpMultiplyFloat},
		{"divide_float", namespace.OpDivideFloat}, {"power_float", namespace.OpPowerFloat},
		{"sqrt_float", namespace.OpSqrtFloat}, {"less_than_int", namespace.OpLessThanInt},
		{"less_than_or_equal_int", namespace.OpLessThanOrEqualInt}, {"greater_than_int", namespace.OpGreaterThanInt},
		{"greater_than_or_equal_int", namespace.OpGreaterThanOrEqualInt}, {"less_than_float", namespace.OpLessThanFloat},
		{"less_than_or_equal_float", namespace.OpLessThanOrEqualFloat}, {"greater_than_float", namespace.OpGreaterThanFloat},
		{"greater_than_or_equal_float", namespace.OpGreaterThanOrEqualFloat}, {"equal_int", namespace.OpEqualInt},
		{"equal_float", namespace.OpEqualFloat}, {"equal_bool", namespace.OpEqualBool},
		{"equal_string", namespace.OpEqualString}, {"int_to_string", namespace.OpIntToString},
		{"float_to_string", namespace.OpFloatToString}, {"concat_strings", namespace.OpConcatStrings},
		{"array_push", namespace.OpArrayPush}, {"array_length", namespace.OpArrayLength},
		{"array_pop", namespace.OpArrayPop}, {"panic", namespace.OpPanic},
	}
	for _, o := range ops {
		root.Declare(o.name, namespace.Declaration{Kind: namespace.DeclBuiltinOperation, BuiltinOp: o.op})
	}
	root.Declare("newline", namespace.Declaration{Kind: namespace.DeclBuiltinOperation, BuiltinOp: namespace.OpNewline})

	root.Declare("print_string", namespace.Declaration{Kind: namespace.DeclHostFunction})
	root.Declare("readline", namespace.Declaration{Kind: namespace.DeclHostFunction})

	declareIteratorInterface(root)
	return root
}

// declareIteratorInterface reserves the name Iterator as an interface
// declaration. The declaration carries no interface definition and no
// methods; "for x in e" loops do not dispatch through it (the translator
// lowers them to an index loop over an array).
func declareIteratorInterface(root *namespace.Namespace) {
	root.Declare("Iterator", namespace.Declaration{
		Kind: namespace.DeclInterfaceDef,
	})
}
