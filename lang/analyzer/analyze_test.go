package analyzer

import (
	"testing"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/source"
)

// build is a tiny helper that wires up an IdGen and a FileDatabase entry
// for tests that construct ASTs by hand (the surface parser is out of
// scope for this module, so these tests stand in for it).
func build(t *testing.T, text string) (*ast.IdGen, *source.FileDatabase, source.FileId) {
	t.Helper()
	gen := &ast.IdGen{}
	db := source.NewFileDatabase()
	fid := db.AddFile("test.en", text)
	return gen, db, fid
}

func TestAnalyzeSimpleFunctionReturningInt(t *testing.T) {
	gen, db, fid := build(t, "func answer() -> int { return 42 }")

	ret := &ast.ReturnStmt{Value: &ast.LiteralExpr{Type: 0, Raw: "42", Value: int64(42)}}
	ret.Id = gen.Next()
	ret.Value.(*ast.LiteralExpr).Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{ret})
	fn := &ast.FuncDecl{
		Name: "answer",
		Sig:  &ast.FuncSignature{Ret: &ast.NamedType{Name: "int"}},
		Body: body,
	}
	fn.Id = gen.Next()
	fn.Sig.Ret.(*ast.NamedType).Id = gen.Next()

	file := ast.NewFile(gen, "test.en", fid, source.Range{}, []ast.Decl{fn})

	ctx, errs := Analyze([]*ast.File{file}, db)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sol, ok := ctx.SolutionOf(fn.ID())
	if !ok {
		t.Fatal("expected a solved return type for answer()")
	}
	if got, want := sol.String(), "int"; got != want {
		t.Errorf("answer() return type = %q, want %q", got, want)
	}
}

func TestUnresolvedIdentifierIsReported(t *testing.T) {
	gen, db, fid := build(t, "func f() { x }")

	ident := &ast.IdentExpr{Name: "x"}
	ident.Id = gen.Next()
	stmt := &ast.ExprStmt{X: ident}
	stmt.Id = gen.Next()
	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{stmt})
	fn := &ast.FuncDecl{Name: "f", Sig: &ast.FuncSignature{}, Body: body}
	fn.Id = gen.Next()
	file := ast.NewFile(gen, "test.en", fid, source.Range{}, []ast.Decl{fn})

	_, errs := Analyze([]*ast.File{file}, db)
	if errs == nil {
		t.Fatal("expected an UnresolvedIdentifier error")
	}
	if errs.Errors[0].Kind != diag.UnresolvedIdentifier {
		t.Errorf("expected UnresolvedIdentifier, got %v", errs.Errors[0].Kind)
	}
}

func TestNonExhaustiveMatchIsReported(t *testing.T) {
	gen, db, fid := build(t, "enum Option { Some, None } match-missing-variant")

	enumDef := &ast.EnumDef{Name: "Option", Variants: []*ast.EnumVariantDecl{{Name: "Some"}, {Name: "None"}}}
	enumDef.Id = gen.Next()

	subject := &ast.VariantLitExpr{EnumName: "Option", VariantName: "Some"}
	subject.Id = gen.Next()

	arm := &ast.MatchArm{
		Pattern: func() ast.Pattern { p := &ast.VariantPattern{EnumName: "Option", VariantName: "Some"}; p.Id = gen.Next(); return p }(),
		Body:    ast.NewBlock(gen, source.Range{}, nil),
	}
	match := &ast.MatchStmt{Subject: subject, Arms: []*ast.MatchArm{arm}}
	match.Id = gen.Next()

	body := ast.NewBlock(gen, source.Range{}, []ast.Stmt{match})
	fn := &ast.FuncDecl{Name: "f", Sig: &ast.FuncSignature{}, Body: body}
	fn.Id = gen.Next()
	file := ast.NewFile(gen, "test.en", fid, source.Range{}, []ast.Decl{enumDef, fn})

	_, errs := Analyze([]*ast.File{file}, db)
	if errs == nil {
		t.Fatal("expected a NonExhaustiveMatch error")
	}
	found := false
	for _, e := range errs.Errors {
		if e.Kind == diag.NonExhaustiveMatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a NonExhaustiveMatch among: %v", errs.Errors)
	}
}
