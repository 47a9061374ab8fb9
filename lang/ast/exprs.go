package ast

import (
	"fmt"

	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/token"
)

// IsAssignable returns true if e can be assigned to: an identifier, a
// field access, or an index expression whose receiver is itself assignable.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *FieldExpr:
		return IsAssignable(e.Recv)
	case *IndexExpr:
		return IsAssignable(e.Recv)
	default:
		return false
	}
}

type (
	// IdentExpr represents a bare identifier reference.
	IdentExpr struct {
		base
		Name string
	}

	// LiteralExpr represents an int, float, string or bool literal.
	LiteralExpr struct {
		base
		Type  token.Token // INT, FLOAT, STRING, TRUE, FALSE or NIL
		Raw   string
		Value interface{} // int64 | float64 | string | bool | nil
	}

	// BinaryExpr represents a binary operator expression, e.g. x + y.
	BinaryExpr struct {
		base
		Op          token.Token
		Left, Right Expr
	}

	// UnaryExpr represents a unary operator expression, e.g. -x or not x.
	UnaryExpr struct {
		base
		Op      token.Token
		Operand Expr
	}

	// CallExpr represents a function call, e.g. f(x, y).
	CallExpr struct {
		base
		Fn   Expr
		Args []Expr
	}

	// FieldExpr represents member access, e.g. x.y.
	FieldExpr struct {
		base
		Recv  Expr
		Field string
	}

	// IndexExpr represents an index expression, e.g. x[y].
	IndexExpr struct {
		base
		Recv  Expr
		Index Expr
	}

	// ArrayExpr represents an array literal, e.g. [1, 2, 3].
	ArrayExpr struct {
		base
		Elems []Expr
	}

	// StructLitExpr represents a struct construction expression,
	// e.g. Point{x: 1, y: 2}.
	StructLitExpr struct {
		base
		TypeName string
		Fields   []*FieldInit
	}

	// FieldInit is a single "name: value" pair in a StructLitExpr.
	FieldInit struct {
		Name  string
		Value Expr
	}

	// VariantLitExpr constructs an enum variant, e.g. Option.Some(1).
	VariantLitExpr struct {
		base
		EnumName    string
		VariantName string
		Args        []Expr
	}

	// FuncExpr represents a closure literal.
	FuncExpr struct {
		base
		Sig  *FuncSignature
		Body *Block
	}

	// SelfExpr represents the implicit receiver inside a member function or
	// interface implementation body.
	SelfExpr struct {
		base
	}

	// ParenExpr represents a parenthesized expression, kept distinct so
	// diagnostics can still point at the exact written span.
	ParenExpr struct {
		base
		Inner Expr
	}
)

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *IdentExpr) Walk(v Visitor)                {}
func (n *IdentExpr) expr()                         {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Type.String()+" "+n.Raw, nil)
}
func (n *LiteralExpr) Walk(v Visitor) {}
func (n *LiteralExpr) expr()          {}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinaryExpr) expr() {}

func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.GoString(), nil)
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (n *UnaryExpr) expr()          {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

func (n *FieldExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr."+n.Field, nil) }
func (n *FieldExpr) Walk(v Visitor)                { Walk(v, n.Recv) }
func (n *FieldExpr) expr()                         {}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Recv)
	Walk(v, n.Index)
}
func (n *IndexExpr) expr() {}

func (n *ArrayExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"elems": len(n.Elems)})
}
func (n *ArrayExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *ArrayExpr) expr() {}

func (n *StructLitExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.TypeName+"{}", map[string]int{"fields": len(n.Fields)})
}
func (n *StructLitExpr) Walk(v Visitor) {
	for _, fi := range n.Fields {
		Walk(v, fi.Value)
	}
}
func (n *StructLitExpr) expr() {}

func (n *VariantLitExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.EnumName+"."+n.VariantName, map[string]int{"args": len(n.Args)})
}
func (n *VariantLitExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *VariantLitExpr) expr() {}

func (n *FuncExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn", map[string]int{"params": len(n.Sig.Params)})
}
func (n *FuncExpr) Walk(v Visitor) {
	for _, p := range n.Sig.Params {
		if p.Type != nil {
			Walk(v, p.Type)
		}
	}
	Walk(v, n.Body)
}
func (n *FuncExpr) expr() {}

func (n *SelfExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "self", nil) }
func (n *SelfExpr) Walk(v Visitor)                {}
func (n *SelfExpr) expr()                         {}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.Inner) }
func (n *ParenExpr) expr()                         {}

// Unwrap strips any enclosing ParenExpr layers.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// NewIdentExpr is a convenience constructor used by the translator's
// desugaring passes (e.g. synthesizing the iterator temporary of a for-loop).
func NewIdentExpr(gen *IdGen, rng source.Range, name string) *IdentExpr {
	return &IdentExpr{base: base{Id: gen.Next(), Range: rng}, Name: name}
}
