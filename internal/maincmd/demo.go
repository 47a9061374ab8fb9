package maincmd

import (
	"fmt"
	"sort"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/machine"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/token"
)

// fixture is a hand-built program exercised end to end through the
// analyzer, compiler and machine packages, standing in for source files
// until the core grows a surface-syntax front end (see DESIGN.md).
type fixture struct {
	build func(gen *ast.IdGen) []ast.Decl
	entry string
	args  []machine.Value
}

var fixtures = map[string]fixture{
	"sum":       {build: buildSumProgram, entry: "main"},
	"fib":       {build: buildFibProgram, entry: "fib", args: []machine.Value{machine.Int(10)}},
	"closure":   {build: buildClosureProgram, entry: "main"},
	"interface": {build: buildInterfaceProgram, entry: "main"},
}

func fixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFixture(name string) (fixture, error) {
	f, ok := fixtures[name]
	if !ok {
		return fixture{}, fmt.Errorf("no such fixture %q, available: %s", name, fixtureNames())
	}
	return f, nil
}

func intType(gen *ast.IdGen) *ast.NamedType {
	n := &ast.NamedType{Name: "int"}
	n.Id = gen.Next()
	return n
}

func ident(gen *ast.IdGen, name string) *ast.IdentExpr {
	n := &ast.IdentExpr{Name: name}
	n.Id = gen.Next()
	return n
}

func intLit(gen *ast.IdGen, v int64) *ast.LiteralExpr {
	n := &ast.LiteralExpr{Type: token.INT, Value: v}
	n.Id = gen.Next()
	return n
}

func binExpr(gen *ast.IdGen, op token.Token, l, r ast.Expr) *ast.BinaryExpr {
	n := &ast.BinaryExpr{Op: op, Left: l, Right: r}
	n.Id = gen.Next()
	return n
}

// buildSumProgram builds:
//
//	func main() -> int {
//	    var i = 1
//	    var total = 0
//	    while i <= 5 {
//	        total = total + i
//	        i = i + 1
//	    }
//	    return total
//	}
func buildSumProgram(gen *ast.IdGen) []ast.Decl {
	declI := &ast.DeclareStmt{Name: "i", Value: intLit(gen, 1), Mutable: true}
	declI.Id = gen.Next()
	declTotal := &ast.DeclareStmt{Name: "total", Value: intLit(gen, 0), Mutable: true}
	declTotal.Id = gen.Next()

	cond := binExpr(gen, token.LE, ident(gen, "i"), intLit(gen, 5))

	assignTotal := &ast.AssignStmt{Left: ident(gen, "total"), Right: binExpr(gen, token.PLUS, ident(gen, "total"), ident(gen, "i"))}
	assignTotal.Id = gen.Next()
	assignI := &ast.AssignStmt{Left: ident(gen, "i"), Right: binExpr(gen, token.PLUS, ident(gen, "i"), intLit(gen, 1))}
	assignI.Id = gen.Next()

	whileStmt := &ast.WhileStmt{
		Cond: cond,
		Body: ast.NewBlock(gen, source.Range{}, []ast.Stmt{assignTotal, assignI}),
	}
	whileStmt.Id = gen.Next()

	ret := &ast.ReturnStmt{Value: ident(gen, "total")}
	ret.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{declI, declTotal, whileStmt, ret})
	fn := &ast.FuncDecl{Name: "main", Sig: &ast.FuncSignature{Ret: intType(gen)}, Body: body}
	fn.Id = gen.Next()
	return []ast.Decl{fn}
}

// buildFibProgram builds:
//
//	func fib(n: int) -> int {
//	    if n <= 1 {
//	        return n
//	    }
//	    return fib(n - 1) + fib(n - 2)
//	}
func buildFibProgram(gen *ast.IdGen) []ast.Decl {
	cond := binExpr(gen, token.LE, ident(gen, "n"), intLit(gen, 1))
	baseRet := &ast.ReturnStmt{Value: ident(gen, "n")}
	baseRet.Id = gen.Next()
	ifStmt := &ast.IfStmt{Cond: cond, Then: ast.NewBlock(gen, source.Range{}, []ast.Stmt{baseRet})}
	ifStmt.Id = gen.Next()

	callLeft := &ast.CallExpr{Fn: ident(gen, "fib"), Args: []ast.Expr{binExpr(gen, token.MINUS, ident(gen, "n"), intLit(gen, 1))}}
	callLeft.Id = gen.Next()
	callRight := &ast.CallExpr{Fn: ident(gen, "fib"), Args: []ast.Expr{binExpr(gen, token.MINUS, ident(gen, "n"), intLit(gen, 2))}}
	callRight.Id = gen.Next()

	ret := &ast.ReturnStmt{Value: binExpr(gen, token.PLUS, callLeft, callRight)}
	ret.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{ifStmt, ret})
	fn := &ast.FuncDecl{
		Name: "fib",
		Sig:  &ast.FuncSignature{Params: []ast.Param{{Name: "n", Type: intType(gen)}}, Ret: intType(gen)},
		Body: body,
	}
	fn.Id = gen.Next()
	return []ast.Decl{fn}
}

// buildClosureProgram builds:
//
//	func main() -> int {
//	    var x = 10
//	    var addx = fn(y: int) -> int { return x + y }
//	    x = 20
//	    return addx(5)
//	}
//
// addx captures x by value at the point the closure is created, so the
// later reassignment of x to 20 has no effect on addx's own result: the
// expected answer is 10 + 5, not 20 + 5.
func buildClosureProgram(gen *ast.IdGen) []ast.Decl {
	declX := &ast.DeclareStmt{Name: "x", Value: intLit(gen, 10), Mutable: true}
	declX.Id = gen.Next()

	closureRet := &ast.ReturnStmt{Value: binExpr(gen, token.PLUS, ident(gen, "x"), ident(gen, "y"))}
	closureRet.Id = gen.Next()
	closureBody := ast.NewBlock(gen, source.Range{}, []ast.Stmt{closureRet})
	closure := &ast.FuncExpr{
		Sig:  &ast.FuncSignature{Params: []ast.Param{{Name: "y", Type: intType(gen)}}, Ret: intType(gen)},
		Body: closureBody,
	}
	closure.Id = gen.Next()

	declAddx := &ast.DeclareStmt{Name: "addx", Value: closure}
	declAddx.Id = gen.Next()

	reassignX := &ast.AssignStmt{Left: ident(gen, "x"), Right: intLit(gen, 20)}
	reassignX.Id = gen.Next()

	call := &ast.CallExpr{Fn: ident(gen, "addx"), Args: []ast.Expr{intLit(gen, 5)}}
	call.Id = gen.Next()
	ret := &ast.ReturnStmt{Value: call}
	ret.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{declX, declAddx, reassignX, ret})
	fn := &ast.FuncDecl{Name: "main", Sig: &ast.FuncSignature{Ret: intType(gen)}, Body: body}
	fn.Id = gen.Next()
	return []ast.Decl{fn}
}

// selfField builds "self.field" as used inside a member function body.
func selfField(gen *ast.IdGen, field string) *ast.FieldExpr {
	self := &ast.SelfExpr{}
	self.Id = gen.Next()
	fe := &ast.FieldExpr{Recv: self, Field: field}
	fe.Id = gen.Next()
	return fe
}

// buildInterfaceProgram builds:
//
//	interface Shape { area() -> int }
//
//	struct Square { side: int }
//	impl Shape for Square {
//	    func area() -> int { return self.side * self.side }
//	}
//
//	struct Rect { w: int, h: int }
//	impl Shape for Rect {
//	    func area() -> int { return self.w * self.h }
//	}
//
//	func main() -> int {
//	    var sq = Square { side: 3 }
//	    var rc = Rect { w: 2, h: 5 }
//	    return sq.area() + rc.area()
//	}
//
// sq.area() and rc.area() call the same interface method name but must
// resolve to different member functions, exercising the two-stage
// member-call resolution that waits for the receiver's solved type before
// picking which area() to dispatch to.
func buildInterfaceProgram(gen *ast.IdGen) []ast.Decl {
	shapeIface := &ast.InterfaceDef{
		Name:    "Shape",
		Methods: []*ast.InterfaceMethodSig{{Name: "area", Sig: &ast.FuncSignature{Ret: intType(gen)}}},
	}
	shapeIface.Id = gen.Next()

	squareDef := &ast.StructDef{Name: "Square", Fields: []*ast.FieldDef{{Name: "side", Type: intType(gen)}}}
	squareDef.Id = gen.Next()

	squareAreaRet := &ast.ReturnStmt{Value: binExpr(gen, token.STAR, selfField(gen, "side"), selfField(gen, "side"))}
	squareAreaRet.Id = gen.Next()
	squareArea := &ast.MemberFuncDecl{
		RecvType: "Square",
		Name:     "area",
		Sig:      &ast.FuncSignature{Ret: intType(gen)},
		Body:     ast.NewBlock(gen, source.Range{}, []ast.Stmt{squareAreaRet}),
	}
	squareArea.Id = gen.Next()
	squareImpl := &ast.InterfaceImpl{InterfaceName: "Shape", TypeName: "Square", Methods: []*ast.MemberFuncDecl{squareArea}}
	squareImpl.Id = gen.Next()

	rectDef := &ast.StructDef{Name: "Rect", Fields: []*ast.FieldDef{{Name: "w", Type: intType(gen)}, {Name: "h", Type: intType(gen)}}}
	rectDef.Id = gen.Next()

	rectAreaRet := &ast.ReturnStmt{Value: binExpr(gen, token.STAR, selfField(gen, "w"), selfField(gen, "h"))}
	rectAreaRet.Id = gen.Next()
	rectArea := &ast.MemberFuncDecl{
		RecvType: "Rect",
		Name:     "area",
		Sig:      &ast.FuncSignature{Ret: intType(gen)},
		Body:     ast.NewBlock(gen, source.Range{}, []ast.Stmt{rectAreaRet}),
	}
	rectArea.Id = gen.Next()
	rectImpl := &ast.InterfaceImpl{InterfaceName: "Shape", TypeName: "Rect", Methods: []*ast.MemberFuncDecl{rectArea}}
	rectImpl.Id = gen.Next()

	sqLit := &ast.StructLitExpr{TypeName: "Square", Fields: []*ast.FieldInit{{Name: "side", Value: intLit(gen, 3)}}}
	sqLit.Id = gen.Next()
	declSq := &ast.DeclareStmt{Name: "sq", Value: sqLit}
	declSq.Id = gen.Next()

	rcLit := &ast.StructLitExpr{TypeName: "Rect", Fields: []*ast.FieldInit{{Name: "w", Value: intLit(gen, 2)}, {Name: "h", Value: intLit(gen, 5)}}}
	rcLit.Id = gen.Next()
	declRc := &ast.DeclareStmt{Name: "rc", Value: rcLit}
	declRc.Id = gen.Next()

	sqField := &ast.FieldExpr{Recv: ident(gen, "sq"), Field: "area"}
	sqField.Id = gen.Next()
	sqArea := &ast.CallExpr{Fn: sqField}
	sqArea.Id = gen.Next()

	rcField := &ast.FieldExpr{Recv: ident(gen, "rc"), Field: "area"}
	rcField.Id = gen.Next()
	rcArea := &ast.CallExpr{Fn: rcField}
	rcArea.Id = gen.Next()

	ret := &ast.ReturnStmt{Value: binExpr(gen, token.PLUS, sqArea, rcArea)}
	ret.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{declSq, declRc, ret})
	fn := &ast.FuncDecl{Name: "main", Sig: &ast.FuncSignature{Ret: intType(gen)}, Body: body}
	fn.Id = gen.Next()

	return []ast.Decl{shapeIface, squareDef, squareImpl, rectDef, rectImpl, fn}
}
