package ast

import "fmt"

type (
	// ExprStmt is an expression used as a statement (only valid for calls).
	ExprStmt struct {
		base
		X Expr
	}

	// AssignStmt represents an assignment statement, e.g. x = y.
	AssignStmt struct {
		base
		Left  Expr
		Right Expr
	}

	// DeclareStmt introduces a new local binding, e.g. "let x = 1" or
	// "var x: int = 1". Mutable reports whether the binding was declared
	// with "var" (mutable) as opposed to "let" (immutable).
	DeclareStmt struct {
		base
		Name     string
		Type     TypeExpr // nil if the type is to be inferred
		Value    Expr
		Mutable  bool
	}

	// IfStmt represents an if/elif/else chain. Else may be nil, or may be a
	// *Block (plain else) or an *IfStmt (elif), matching how the surface
	// grammar desugars "elif" into a nested if inside the else branch.
	IfStmt struct {
		base
		Cond Expr
		Then *Block
		Else Stmt // nil, *Block, or *IfStmt
	}

	// WhileStmt represents a while loop.
	WhileStmt struct {
		base
		Cond Expr
		Body *Block
	}

	// ForStmt represents a "for x in iterable { ... }" loop, lowered by the
	// translator to an index loop over an array.
	ForStmt struct {
		base
		Var      string
		Iterable Expr
		Body     *Block
	}

	// MatchStmt represents a match expression used as a statement.
	MatchStmt struct {
		base
		Subject Expr
		Arms    []*MatchArm
	}

	// MatchArm is a single "pattern => body" arm of a MatchStmt.
	MatchArm struct {
		Pattern Pattern
		Guard   Expr // nil if unguarded
		Body    *Block
	}

	// ReturnStmt represents a return statement. Value is nil for a bare
	// "return".
	ReturnStmt struct {
		base
		Value Expr
	}

	// BreakStmt represents a break statement.
	BreakStmt struct{ base }

	// ContinueStmt represents a continue statement.
	ContinueStmt struct{ base }

	// DeferStmt holds a deferred Call. The translator evaluates Call at the
	// point where the statement appears; it is not postponed to the return
	// of the enclosing function.
	DeferStmt struct {
		base
		Call Expr
	}

	// GuardStmt represents "guard cond else { ... }": if cond is false, the
	// Else block runs (and must diverge), otherwise execution falls through.
	GuardStmt struct {
		base
		Cond Expr
		Else *Block
	}

	// PanicStmt represents "panic(message)" used as a statement.
	PanicStmt struct {
		base
		Message Expr
	}
)

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ExprStmt) BlockEnding() bool             { return false }

func (n *AssignStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *AssignStmt) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *AssignStmt) BlockEnding() bool { return false }

func (n *DeclareStmt) Format(f fmt.State, verb rune) {
	kw := "let"
	if n.Mutable {
		kw = "var"
	}
	format(f, verb, n, kw+" "+n.Name, nil)
}
func (n *DeclareStmt) Walk(v Visitor) {
	if n.Type != nil {
		Walk(v, n.Type)
	}
	Walk(v, n.Value)
}
func (n *DeclareStmt) BlockEnding() bool { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }

func (n *ForStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for "+n.Var, nil) }
func (n *ForStmt) Walk(v Visitor) {
	Walk(v, n.Iterable)
	Walk(v, n.Body)
}
func (n *ForStmt) BlockEnding() bool { return false }

func (n *MatchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"arms": len(n.Arms)})
}
func (n *MatchStmt) Walk(v Visitor) {
	Walk(v, n.Subject)
	for _, a := range n.Arms {
		Walk(v, a.Pattern)
		if a.Guard != nil {
			Walk(v, a.Guard)
		}
		Walk(v, a.Body)
	}
}
func (n *MatchStmt) BlockEnding() bool { return false }

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Walk(v Visitor)                {}
func (n *BreakStmt) BlockEnding() bool             { return true }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Walk(v Visitor)                {}
func (n *ContinueStmt) BlockEnding() bool             { return true }

func (n *DeferStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "defer", nil) }
func (n *DeferStmt) Walk(v Visitor)                { Walk(v, n.Call) }
func (n *DeferStmt) BlockEnding() bool             { return false }

func (n *GuardStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "guard", nil) }
func (n *GuardStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Else)
}
func (n *GuardStmt) BlockEnding() bool { return false }

func (n *PanicStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "panic", nil) }
func (n *PanicStmt) Walk(v Visitor)                { Walk(v, n.Message) }
func (n *PanicStmt) BlockEnding() bool             { return true }
