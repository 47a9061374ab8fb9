package ast

import "fmt"

// Param is a single function parameter: a name and its declared type.
type Param struct {
	Name string
	Type TypeExpr
}

// TypeParam is a single generic type parameter, e.g. the "T" in
// "func first<T>(xs: Array<T>) -> T", optionally constrained by an
// interface bound ("T: Comparable").
type TypeParam struct {
	Name  string
	Bound string // interface name, or "" if unconstrained
}

// FuncSignature is the parameter list, type parameters and return type
// shared by free functions, member functions, host functions, foreign
// functions and closures.
type FuncSignature struct {
	TypeParams []TypeParam
	Params     []Param
	Ret        TypeExpr // nil means void
}

type (
	// FuncDecl is a top-level free function definition.
	FuncDecl struct {
		base
		Name string
		Sig  *FuncSignature
		Body *Block
	}

	// HostFuncDecl declares a function implemented by the embedder, called
	// through the suspension protocol (e.g. print_string, readline).
	HostFuncDecl struct {
		base
		Name string
		Sig  *FuncSignature
	}

	// ForeignFuncDecl declares a function implemented in a dynamically
	// loaded library, bound to a Eon name via Library/Symbol.
	ForeignFuncDecl struct {
		base
		Name    string
		Sig     *FuncSignature
		Library string
		Symbol  string
	}

	// MemberFuncDecl is a function attached to a struct or enum type,
	// callable as "receiver.name(...)" and addressed implicitly by "self"
	// inside its body.
	MemberFuncDecl struct {
		base
		RecvType string
		Name     string
		Sig      *FuncSignature
		Body     *Block
	}

	// StructDef declares a struct type and its fields.
	StructDef struct {
		base
		Name       string
		TypeParams []TypeParam
		Fields     []*FieldDef
	}

	// FieldDef is a single field of a StructDef.
	FieldDef struct {
		Name string
		Type TypeExpr
	}

	// EnumDef declares an enum type and its variants.
	EnumDef struct {
		base
		Name       string
		TypeParams []TypeParam
		Variants   []*EnumVariantDecl
	}

	// EnumVariantDecl is a single variant of an EnumDef, with its payload
	// field types (empty for a unit variant).
	EnumVariantDecl struct {
		Name   string
		Fields []TypeExpr
	}

	// InterfaceDef declares an interface: a set of method signatures every
	// implementor must provide, plus any abstract output (associated) types.
	InterfaceDef struct {
		base
		Name        string
		Methods     []*InterfaceMethodSig
		OutputTypes []string
	}

	// InterfaceMethodSig is one required method of an InterfaceDef. Self is
	// always the implicit receiver and is not listed in Sig.Params.
	InterfaceMethodSig struct {
		Name string
		Sig  *FuncSignature
	}

	// InterfaceImpl implements InterfaceName for TypeName.
	InterfaceImpl struct {
		base
		InterfaceName string
		TypeName      string
		OutputTypes   map[string]TypeExpr
		Methods       []*MemberFuncDecl
	}
)

func (n *FuncDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "func "+n.Name, nil) }
func (n *FuncDecl) Walk(v Visitor)                { Walk(v, n.Body) }
func (n *FuncDecl) DeclName() string              { return n.Name }
func (n *FuncDecl) decl()                         {}

func (n *HostFuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "host func "+n.Name, nil)
}
func (n *HostFuncDecl) Walk(v Visitor)   {}
func (n *HostFuncDecl) DeclName() string { return n.Name }
func (n *HostFuncDecl) decl()            {}

func (n *ForeignFuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "foreign func "+n.Name, nil)
}
func (n *ForeignFuncDecl) Walk(v Visitor)   {}
func (n *ForeignFuncDecl) DeclName() string { return n.Name }
func (n *ForeignFuncDecl) decl()            {}

func (n *MemberFuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.RecvType+"."+n.Name, nil)
}
func (n *MemberFuncDecl) Walk(v Visitor)   { Walk(v, n.Body) }
func (n *MemberFuncDecl) DeclName() string { return n.Name }
func (n *MemberFuncDecl) decl()            {}

func (n *StructDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct "+n.Name, map[string]int{"fields": len(n.Fields)})
}
func (n *StructDef) Walk(v Visitor) {
	for _, fd := range n.Fields {
		Walk(v, fd.Type)
	}
}
func (n *StructDef) DeclName() string { return n.Name }
func (n *StructDef) decl()            {}

func (n *EnumDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "enum "+n.Name, map[string]int{"variants": len(n.Variants)})
}
func (n *EnumDef) Walk(v Visitor) {
	for _, vr := range n.Variants {
		for _, ft := range vr.Fields {
			Walk(v, ft)
		}
	}
}
func (n *EnumDef) DeclName() string { return n.Name }
func (n *EnumDef) decl()            {}

func (n *InterfaceDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "interface "+n.Name, map[string]int{"methods": len(n.Methods)})
}
func (n *InterfaceDef) Walk(v Visitor) {}
func (n *InterfaceDef) DeclName() string { return n.Name }
func (n *InterfaceDef) decl()            {}

func (n *InterfaceImpl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "impl "+n.InterfaceName+" for "+n.TypeName, map[string]int{"methods": len(n.Methods)})
}
func (n *InterfaceImpl) Walk(v Visitor) {
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *InterfaceImpl) DeclName() string { return n.InterfaceName + " for " + n.TypeName }
func (n *InterfaceImpl) decl()            {}
