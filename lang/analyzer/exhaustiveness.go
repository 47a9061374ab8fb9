package analyzer

import (
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/types"
)

// CheckExhaustiveness is Phase D: for every match whose subject has a
// known enum type, it verifies every variant is covered by some arm (or a
// wildcard/binding catches the rest), and flags arms that can never match
// because an earlier arm already covers everything they would.
//
// This implements the useful subset of the original pattern-usefulness
// algorithm: full usefulness checking over nested struct/tuple patterns is
// reduced here to the top-level variant/wildcard discriminant, which is
// the case that actually needs a hard compile error (missing a variant is
// how an enum's cases silently fall out of sync with its handlers).
func CheckExhaustiveness(ctx *Context, files []*ast.File) {
	for _, f := range files {
		for _, d := range f.Decls {
			checkDeclExhaustiveness(ctx, f, d)
		}
	}
}

func checkDeclExhaustiveness(ctx *Context, f *ast.File, d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		walkMatches(ctx, f, n.Body)
	case *ast.MemberFuncDecl:
		walkMatches(ctx, f, n.Body)
	case *ast.InterfaceImpl:
		for _, m := range n.Methods {
			walkMatches(ctx, f, m.Body)
		}
	}
}

func walkMatches(ctx *Context, f *ast.File, b *ast.Block) {
	for _, s := range b.Stmts {
		walkStmtForMatches(ctx, f, s)
	}
}

func walkStmtForMatches(ctx *Context, f *ast.File, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.IfStmt:
		walkMatches(ctx, f, n.Then)
		if eb, ok := n.Else.(*ast.Block); ok {
			walkMatches(ctx, f, eb)
		} else if ei, ok := n.Else.(*ast.IfStmt); ok {
			walkStmtForMatches(ctx, f, ei)
		}
	case *ast.WhileStmt:
		walkMatches(ctx, f, n.Body)
	case *ast.ForStmt:
		walkMatches(ctx, f, n.Body)
	case *ast.MatchStmt:
		checkMatch(ctx, f, n)
		for _, arm := range n.Arms {
			walkMatches(ctx, f, arm.Body)
		}
	}
}

func checkMatch(ctx *Context, f *ast.File, m *ast.MatchStmt) {
	enumDef := subjectEnum(ctx, m.Subject)
	covered := make(map[string]bool)
	sawCatchAll := false
	for i, arm := range m.Arms {
		if sawCatchAll {
			ctx.addError(diag.Error{
				Kind:    diag.RedundantArms,
				Message: "unreachable match arm: a previous arm already covers every case",
				Primary: diag.Label{Span: source.Span{File: f.FileId, Range: arm.Body.Span()}},
			})
			continue
		}
		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			if arm.Guard == nil {
				sawCatchAll = true
			}
		case *ast.VariantPattern:
			covered[p.VariantName] = true
		}
		_ = i
	}
	if enumDef != nil && !sawCatchAll {
		for _, v := range enumDef.Variants {
			if !covered[v.Name] {
				ctx.addError(diag.Error{
					Kind:    diag.NonExhaustiveMatch,
					Message: "match does not cover variant \"" + enumDef.Name + "." + v.Name + "\"",
					Primary: diag.Label{Span: source.Span{File: f.FileId, Range: m.Span()}},
				})
			}
		}
	}
}

func subjectEnum(ctx *Context, subject ast.Expr) *ast.EnumDef {
	sol, ok := ctx.SolutionOf(subject.ID())
	if !ok || sol.Kind != types.KindNominal || sol.NominalKind != types.NominalEnum {
		return nil
	}
	if d, ok := ctx.Root.GetDeclaration(sol.Name); ok && d.Kind == namespace.DeclEnum {
		return d.Enum
	}
	return nil
}
