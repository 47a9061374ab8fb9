// Package namespace implements the declaration table the analyzer builds
// during Phase A (scan declarations) and consults throughout Phase B
// (resolve): a tree of namespaces, each holding named declarations and
// child namespaces, plus the closed union of everything nameable in Eon.
package namespace

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/types"
)

// DeclKind is the closed set of things a name can resolve to.
type DeclKind int

const (
	DeclFreeFunction DeclKind = iota
	DeclHostFunction
	DeclForeignFunction
	DeclInterfaceDef
	DeclInterfaceMethod
	DeclInterfaceOutputType
	DeclMemberFunction
	DeclEnum
	DeclEnumVariant
	DeclStruct
	DeclArrayType
	DeclBuiltinOperation
	DeclBuiltinType
	DeclVar
	DeclPolytype
)

func (k DeclKind) String() string {
	names := [...]string{
		"free function", "host function", "foreign function", "interface",
		"interface method", "interface output type", "member function",
		"enum", "enum variant", "struct", "array type", "builtin operation",
		"builtin type", "variable", "type parameter",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown declaration"
}

// Declaration is the tagged union of everything a name can bind to. Only
// the fields relevant to Kind are meaningful, following the shape of the
// original analyzer's own closed Declaration enum.
type Declaration struct {
	Kind DeclKind

	FreeFunction *ast.FuncDecl        // DeclFreeFunction
	HostFunction *ast.HostFuncDecl    // DeclHostFunction
	ForeignFunc  *ast.ForeignFuncDecl // DeclForeignFunction

	Interface       *ast.InterfaceDef // DeclInterfaceDef, DeclInterfaceMethod, DeclInterfaceOutputType
	InterfaceMethod int               // index into Interface.Methods, DeclInterfaceMethod
	OutputTypeName  string            // DeclInterfaceOutputType

	MemberFunction *ast.MemberFuncDecl // DeclMemberFunction

	Enum        *ast.EnumDef // DeclEnum, DeclEnumVariant
	VariantIdx  int          // DeclEnumVariant

	Struct *ast.StructDef // DeclStruct

	BuiltinOp   BuiltinOperation // DeclBuiltinOperation
	BuiltinType types.Prim       // DeclBuiltinType

	VarNode ast.NodeId // DeclVar: the declaring node (DeclareStmt or Param)
	VarName string

	PolytypeName string // DeclPolytype
	PolytypeSelf bool   // true when this is an interface's implicit Self parameter
}

// BuiltinOperation enumerates the fixed set of primitive operations the
// prelude binds names to, backing the typed arithmetic/comparison/string
// opcodes the translator emits. The set matches the original reference
// implementation's builtin catalogue (typed per operand type, since Eon
// has no generic numeric tower).
type BuiltinOperation int

const (
	OpAddInt BuiltinOperation = iota
	OpSubtractInt
	OpMultiplyInt
	OpDivideInt
	OpPowerInt
	OpModulo
	OpSqrtInt
	OpAddFloat
	OpSubtractFloat
	OpMultiplyFloat
	OpDivideFloat
	OpPowerFloat
	OpSqrtFloat
	OpLessThanInt
	OpLessThanOrEqualInt
	OpGreaterThanInt
	OpGreaterThanOrEqualInt
	OpLessThanFloat
	OpLessThanOrEqualFloat
	OpGreaterThanFloat
	OpGreaterThanOrEqualFloat
	OpEqualInt
	OpEqualFloat
	OpEqualBool
	OpEqualString
	OpIntToString
	OpFloatToString
	OpConcatStrings
	OpArrayPush
	OpArrayLength
	OpArrayPop
	OpPanic
	OpNewline
)

var builtinOpNames = [...]string{
	OpAddInt: "add_int", OpSubtractInt: "subtract_int", OpMultiplyInt: "multiply_int",
	OpDivideInt: "divide_int", OpPowerInt: "power_int", OpModulo: "modulo",
	OpSqrtInt: "sqrt_int", OpAddFloat: "add_float", OpSubtractFloat: "subtract_float",
	OpMultiplyFloat: "multiply_float", OpDivideFloat: "divide_float", OpPowerFloat: "power_float",
	OpSqrtFloat: "sqrt_float", OpLessThanInt: "less_than_int", OpLessThanOrEqualInt: "less_than_or_equal_int",
	OpGreaterThanInt: "greater_than_int", OpGreaterThanOrEqualInt: "greater_than_or_equal_int",
	OpLessThanFloat: "less_than_float", OpLessThanOrEqualFloat: "less_than_or_equal_float",
	OpGreaterThanFloat: "greater_than_float", OpGreaterThanOrEqualFloat: "greater_than_or_equal_float",
	OpEqualInt: "equal_int", OpEqualFloat: "equal_float", OpEqualBool: "equal_bool",
	OpEqualString: "equal_string", OpIntToString: "int_to_string", OpFloatToString: "float_to_string",
	OpConcatStrings: "concat_strings", OpArrayPush: "array_push", OpArrayLength: "array_length",
	OpArrayPop: "array_pop", OpPanic: "panic", OpNewline: "newline",
}

func (op BuiltinOperation) String() string { return builtinOpNames[op] }

// IntoTypeKey mirrors the original analyzer's Declaration::into_type_key:
// only the declarations that name an actual nominal/primitive/structural
// type have one.
func (d Declaration) IntoTypeKey() (types.TypeKey, bool) {
	switch d.Kind {
	case DeclStruct:
		return types.NominalKeyOf(types.NominalStruct, d.Struct.Name), true
	case DeclEnum:
		return types.NominalKeyOf(types.NominalEnum, d.Enum.Name), true
	case DeclArrayType:
		return types.NominalKeyOf(types.NominalArray, "Array"), true
	case DeclBuiltinType:
		return types.PrimKey(d.BuiltinType), true
	default:
		return types.TypeKey{}, false
	}
}

// Namespace is a node of the declaration tree: the root namespace holds
// every top-level declaration plus one child namespace per module/file
// scope, and interface implementations get their own namespace of member
// functions (mirroring the original's Namespace/get_declaration design).
type Namespace struct {
	Name         string
	Declarations map[string]Declaration
	Children     map[string]*Namespace
}

// New returns an empty namespace named name.
func New(name string) *Namespace {
	return &Namespace{
		Name:         name,
		Declarations: make(map[string]Declaration),
		Children:     make(map[string]*Namespace),
	}
}

// Declare binds name to decl in ns, returning false (without overwriting)
// if name is already bound — the caller turns that into a NameClash
// diagnostic.
func (ns *Namespace) Declare(name string, decl Declaration) bool {
	if _, exists := ns.Declarations[name]; exists {
		return false
	}
	ns.Declarations[name] = decl
	return true
}

// Child returns (creating if necessary) the named child namespace.
func (ns *Namespace) Child(name string) *Namespace {
	if c, ok := ns.Children[name]; ok {
		return c
	}
	c := New(name)
	ns.Children[name] = c
	return c
}

// GetDeclaration resolves a dotted path (e.g. "std.os.read_env") by walking
// child namespaces for every segment but the last, then looking up the
// last segment as a declaration name.
func (ns *Namespace) GetDeclaration(path string) (Declaration, bool) {
	segs := strings.Split(path, ".")
	cur := ns
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.Children[seg]
		if !ok {
			return Declaration{}, false
		}
		cur = next
	}
	d, ok := cur.Declarations[segs[len(segs)-1]]
	return d, ok
}

// Display renders the namespace tree with indentation, for debugging and
// golden-file tests.
func (ns *Namespace) Display() string {
	var b strings.Builder
	ns.display(&b, 0)
	return b.String()
}

func (ns *Namespace) display(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	names := maps.Keys(ns.Declarations)
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(b, "%s%s: %s\n", indent, n, ns.Declarations[n].Kind)
	}
	childNames := maps.Keys(ns.Children)
	slices.Sort(childNames)
	for _, n := range childNames {
		fmt.Fprintf(b, "%s%s/\n", indent, n)
		ns.Children[n].display(b, depth+1)
	}
}

// MemberKey indexes the cross-cutting member-function table: which
// function implements "receiverType.name(...)", independent of whether it
// came from a plain member function or an interface implementation.
type MemberKey struct {
	Type types.TypeKey
	Name string
}

// MemberTable is backed by a swiss.Map, a high-fanout open addressing hash
// map, since a large program may register member functions for many
// distinct receiver types.
type MemberTable struct {
	m *swiss.Map[MemberKey, Declaration]
}

func NewMemberTable() *MemberTable {
	return &MemberTable{m: swiss.NewMap[MemberKey, Declaration](uint32(8))}
}

func (t *MemberTable) Put(key MemberKey, decl Declaration) { t.m.Put(key, decl) }
func (t *MemberTable) Get(key MemberKey) (Declaration, bool) {
	return t.m.Get(key)
}
func (t *MemberTable) Len() int { return t.m.Count() }
