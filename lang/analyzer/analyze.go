package analyzer

import (
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/source"
)

// Analyze runs the full four-phase pipeline over every file of a
// compilation and returns the populated Context, or an ErrorSummary if any
// phase recorded a diagnostic. Every phase runs to completion regardless of
// errors found by an earlier phase, so a single compile reports as many
// independent problems as it can find in one pass.
func Analyze(files []*ast.File, db *source.FileDatabase) (*Context, *diag.ErrorSummary) {
	ctx := NewContext(db)
	ScanDeclarations(ctx, files)
	Resolve(ctx, files)
	SolveTypes(ctx, files)
	ResolveMembers(ctx, files)
	CheckUnifvarConflicts(ctx)
	CheckExhaustiveness(ctx, files)
	if err := CheckErrors(ctx); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// CheckErrors converts ctx.Errors into an ErrorSummary, or returns nil if
// none were recorded.
func CheckErrors(ctx *Context) *diag.ErrorSummary {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return &diag.ErrorSummary{Files: ctx.Files, Errors: ctx.Errors}
}
