package ast

import "fmt"

// Pattern is a match-arm or destructuring pattern. The exhaustiveness and
// usefulness checker (lang/analyzer) operates over trees of these.
type Pattern interface {
	Node
	pattern()
}

type (
	// WildcardPattern matches anything and binds nothing, e.g. "_".
	WildcardPattern struct{ base }

	// BindingPattern matches anything and binds it to Name, e.g. "x".
	BindingPattern struct {
		base
		Name string
	}

	// LiteralPattern matches a single constant value.
	LiteralPattern struct {
		base
		Value interface{} // int64 | float64 | string | bool
	}

	// StructPattern destructures a struct, e.g. "Point{x, y}".
	StructPattern struct {
		base
		TypeName string
		Fields   []*FieldPattern
	}

	// FieldPattern is a single "name" or "name: pat" entry of a StructPattern.
	FieldPattern struct {
		Name    string
		Pattern Pattern // nil means bind a local with the same name as Name
	}

	// VariantPattern destructures an enum variant, e.g. "Option.Some(x)".
	VariantPattern struct {
		base
		EnumName    string
		VariantName string
		Args        []Pattern
	}

	// TuplePattern destructures a tuple, e.g. "(a, b)".
	TuplePattern struct {
		base
		Elems []Pattern
	}
)

func (n *WildcardPattern) Format(f fmt.State, verb rune) { format(f, verb, n, "_", nil) }
func (n *WildcardPattern) Walk(v Visitor)                {}
func (n *WildcardPattern) pattern()                      {}

func (n *BindingPattern) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *BindingPattern) Walk(v Visitor)                {}
func (n *BindingPattern) pattern()                      {}

func (n *LiteralPattern) Format(f fmt.State, verb rune) {
	format(f, verb, n, fmt.Sprintf("%v", n.Value), nil)
}
func (n *LiteralPattern) Walk(v Visitor) {}
func (n *LiteralPattern) pattern()       {}

func (n *StructPattern) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.TypeName+"{}", map[string]int{"fields": len(n.Fields)})
}
func (n *StructPattern) Walk(v Visitor) {
	for _, fp := range n.Fields {
		if fp.Pattern != nil {
			Walk(v, fp.Pattern)
		}
	}
}
func (n *StructPattern) pattern() {}

func (n *VariantPattern) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.EnumName+"."+n.VariantName, map[string]int{"args": len(n.Args)})
}
func (n *VariantPattern) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *VariantPattern) pattern() {}

func (n *TuplePattern) Format(f fmt.State, verb rune) {
	format(f, verb, n, "tuple pattern", map[string]int{"elems": len(n.Elems)})
}
func (n *TuplePattern) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *TuplePattern) pattern() {}
