package compiler

import (
	"strings"
	"testing"

	"github.com/mna/eon/lang/analyzer"
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/source"
)

func TestRemoveLabelsResolvesForwardAndBackwardJumps(t *testing.T) {
	lines := []line{
		jumpLine(JMP, "end"),
		instrLine(NOP, 0, 0),
		labelLine("end"),
		instrLine(RETURN, 0, 0),
	}
	instrs, err := removeLabels(lines)
	if err != nil {
		t.Fatal(err)
	}
	if len(instrs) != 3 {
		t.Fatalf("got %d instructions, want 3", len(instrs))
	}
	if instrs[0].Op != JMP || instrs[0].A != 2 {
		t.Errorf("jmp target = %+v, want A=2 (pc of RETURN)", instrs[0])
	}
}

func TestRemoveLabelsUndefinedLabel(t *testing.T) {
	_, err := removeLabels([]line{jumpLine(JMP, "nowhere")})
	if err == nil {
		t.Fatal("expected an error for an undefined label")
	}
}

func TestConstantsHolderDedups(t *testing.T) {
	c := NewConstantsHolder()
	a := c.Int(42)
	b := c.Int(42)
	if a != b {
		t.Errorf("Int(42) returned different indices: %d vs %d", a, b)
	}
	if got := c.String("hi"); got != 0 {
		t.Errorf("first string index = %d, want 0", got)
	}
}

// buildFile mirrors analyzer's own `build` test helper: these tests
// construct ASTs by hand since the surface parser is out of scope.
func buildFile(t *testing.T, decls ...ast.Decl) (*analyzer.Context, *ast.File) {
	t.Helper()
	gen := &ast.IdGen{}
	db := source.NewFileDatabase()
	fid := db.AddFile("test.en", "")
	file := ast.NewFile(gen, "test.en", fid, source.Range{}, decls)
	ctx, errs := analyzer.Analyze([]*ast.File{file}, db)
	if errs != nil {
		t.Fatalf("unexpected analysis errors: %v", errs)
	}
	return ctx, file
}

func TestTranslateSimpleFunction(t *testing.T) {
	gen := &ast.IdGen{}
	lit := &ast.LiteralExpr{Value: int64(42)}
	lit.Id = gen.Next()
	ret := &ast.ReturnStmt{Value: lit}
	ret.Id = gen.Next()
	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{ret})
	retType := &ast.NamedType{Name: "int"}
	retType.Id = gen.Next()
	fn := &ast.FuncDecl{Name: "answer", Sig: &ast.FuncSignature{Ret: retType}, Body: body}
	fn.Id = gen.Next()

	ctx, file := buildFile(t, fn)

	prog, err := Translate(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	code := prog.Functions[0].Code
	if len(code) != 2 || code[0].Op != CONSTANT || code[1].Op != RETURN {
		t.Errorf("unexpected code: %v", code)
	}
	if got, want := prog.Constants.IntAt(code[0].A), int64(42); got != want {
		t.Errorf("constant = %d, want %d", got, want)
	}
}

func TestTranslateIfElseEmitsBalancedJumps(t *testing.T) {
	gen := &ast.IdGen{}
	cond := &ast.LiteralExpr{Value: true}
	cond.Id = gen.Next()
	thenRet := &ast.ReturnStmt{Value: &ast.LiteralExpr{Value: int64(1)}}
	thenRet.Id = gen.Next()
	thenRet.Value.(*ast.LiteralExpr).Id = gen.Next()
	elseRet := &ast.ReturnStmt{Value: &ast.LiteralExpr{Value: int64(2)}}
	elseRet.Id = gen.Next()
	elseRet.Value.(*ast.LiteralExpr).Id = gen.Next()

	ifStmt := &ast.IfStmt{
		Cond: cond,
		Then: ast.NewBlock(gen, source.Range{}, []ast.Stmt{thenRet}),
		Else: ast.NewBlock(gen, source.Range{}, []ast.Stmt{elseRet}),
	}
	ifStmt.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{ifStmt})
	retType := &ast.NamedType{Name: "int"}
	retType.Id = gen.Next()
	fn := &ast.FuncDecl{Name: "pick", Sig: &ast.FuncSignature{Ret: retType}, Body: body}
	fn.Id = gen.Next()

	ctx, file := buildFile(t, fn)
	prog, err := Translate(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	dump := Dasm(prog)
	if !strings.Contains(dump, "jump_if") || !strings.Contains(dump, "jmp") {
		t.Errorf("expected both a jump_if and a jmp in:\n%s", dump)
	}
}

func TestDasmIncludesStructsAndEnums(t *testing.T) {
	p := NewProgram("x.en")
	p.Structs = append(p.Structs, &StructType{Name: "Point", Fields: []string{"x", "y"}})
	p.Enums = append(p.Enums, &EnumType{Name: "Option", Variants: []string{"Some", "None"}, Arity: []int{1, 0}})
	out := Dasm(p)
	if !strings.Contains(out, "Point (x, y)") {
		t.Errorf("missing struct dump: %s", out)
	}
	if !strings.Contains(out, "Option (Some/1, None/0)") {
		t.Errorf("missing enum dump: %s", out)
	}
}
