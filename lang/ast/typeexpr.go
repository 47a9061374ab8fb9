package ast

import "fmt"

// TypeExpr is the syntactic representation of a type annotation, as written
// by the programmer (e.g. in a parameter, field or return-type position).
// It is resolved to a types.SolvedType by the analyzer's type-solving
// phase; it is not itself a type.
type TypeExpr interface {
	Node
	typeExpr()
}

type (
	// NamedType is a reference to a declared type by name, optionally with
	// type arguments, e.g. "int", "Array<Point>", "T".
	NamedType struct {
		base
		Name string
		Args []TypeExpr
	}

	// FuncType is a function type, e.g. "(int, int) -> int".
	FuncType struct {
		base
		Params []TypeExpr
		Ret    TypeExpr
	}

	// TupleType is a tuple type, e.g. "(int, string)".
	TupleType struct {
		base
		Elems []TypeExpr
	}
)

func (n *NamedType) Format(f fmt.State, verb rune) { format(f, verb, n, "type "+n.Name, nil) }
func (n *NamedType) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *NamedType) typeExpr() {}

func (n *FuncType) Format(f fmt.State, verb rune) {
	format(f, verb, n, "functype", map[string]int{"params": len(n.Params)})
}
func (n *FuncType) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Ret != nil {
		Walk(v, n.Ret)
	}
}
func (n *FuncType) typeExpr() {}

func (n *TupleType) Format(f fmt.State, verb rune) {
	format(f, verb, n, "tupletype", map[string]int{"elems": len(n.Elems)})
}
func (n *TupleType) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *TupleType) typeExpr() {}
