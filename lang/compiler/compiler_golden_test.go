package compiler

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/token"
)

var updateGolden = flag.Bool("update", false, "update the golden disassembly files instead of comparing against them")

func goldenIntType(gen *ast.IdGen) *ast.NamedType {
	n := &ast.NamedType{Name: "int"}
	n.Id = gen.Next()
	return n
}

func goldenIdent(gen *ast.IdGen, name string) *ast.IdentExpr {
	n := &ast.IdentExpr{Name: name}
	n.Id = gen.Next()
	return n
}

func goldenIntLit(gen *ast.IdGen, v int64) *ast.LiteralExpr {
	n := &ast.LiteralExpr{Type: token.INT, Value: v}
	n.Id = gen.Next()
	return n
}

func goldenBinExpr(gen *ast.IdGen, op token.Token, l, r ast.Expr) *ast.BinaryExpr {
	n := &ast.BinaryExpr{Op: op, Left: l, Right: r}
	n.Id = gen.Next()
	return n
}

// buildFibDecl builds the same recursive fib(n) function the run/disasm
// CLI fixtures expose, entirely by hand since there is no surface parser
// to parse it from source text.
//
//	func fib(n: int) -> int {
//	    if n <= 1 {
//	        return n
//	    }
//	    return fib(n - 1) + fib(n - 2)
//	}
func buildFibDecl(gen *ast.IdGen) *ast.FuncDecl {
	cond := goldenBinExpr(gen, token.LE, goldenIdent(gen, "n"), goldenIntLit(gen, 1))
	baseRet := &ast.ReturnStmt{Value: goldenIdent(gen, "n")}
	baseRet.Id = gen.Next()
	ifStmt := &ast.IfStmt{Cond: cond, Then: ast.NewBlock(gen, source.Range{}, []ast.Stmt{baseRet})}
	ifStmt.Id = gen.Next()

	callLeft := &ast.CallExpr{Fn: goldenIdent(gen, "fib"), Args: []ast.Expr{goldenBinExpr(gen, token.MINUS, goldenIdent(gen, "n"), goldenIntLit(gen, 1))}}
	callLeft.Id = gen.Next()
	callRight := &ast.CallExpr{Fn: goldenIdent(gen, "fib"), Args: []ast.Expr{goldenBinExpr(gen, token.MINUS, goldenIdent(gen, "n"), goldenIntLit(gen, 2))}}
	callRight.Id = gen.Next()

	ret := &ast.ReturnStmt{Value: goldenBinExpr(gen, token.PLUS, callLeft, callRight)}
	ret.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{ifStmt, ret})
	fn := &ast.FuncDecl{
		Name: "fib",
		Sig:  &ast.FuncSignature{Params: []ast.Param{{Name: "n", Type: goldenIntType(gen)}}, Ret: goldenIntType(gen)},
		Body: body,
	}
	fn.Id = gen.Next()
	return fn
}

// TestDasmFibMatchesGolden pins the disassembly of the recursive fib
// fixture against a checked-in golden file, the same diff-against-golden
// shape the teacher ran its scanner/parser dumps through. Run with
// -update to refresh the golden file after an intentional codegen change.
func TestDasmFibMatchesGolden(t *testing.T) {
	gen := &ast.IdGen{}
	fn := buildFibDecl(gen)
	ctx, file := buildFile(t, fn)

	prog, err := Translate(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	got := Dasm(prog)

	goldPath := filepath.Join("testdata", "fib.dasm.want")
	if *updateGolden {
		if err := os.WriteFile(goldPath, []byte(got), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantBytes, err := os.ReadFile(goldPath)
	if err != nil {
		t.Fatal(err)
	}
	want := string(wantBytes)
	if patch := diff.Diff(want, got); patch != "" {
		t.Errorf("disassembly diverged from golden file, rerun with -update if intentional:\n%s", patch)
	}
}
