package analyzer

import (
	"fmt"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/token"
	"github.com/mna/eon/lang/types"
)

// SolveTypes is Phase C: for every function body, it assigns a type
// variable to each expression and statement-level binding, adds candidate
// types from literals/operators/declarations, and unifies variables that
// must agree (an operand with its sibling, a return value with the
// function's declared return type, and so on). Phase D depends on the
// solved types of match subjects, so this must run to completion first.
func SolveTypes(ctx *Context, files []*ast.File) {
	for _, f := range files {
		sv := &solver{ctx: ctx, file: f}
		for _, d := range f.Decls {
			sv.decl(d)
		}
	}
	// CheckUnifvarConflicts is deliberately not run here: ResolveMembers
	// still has to union a handful of call-site variables with their
	// resolved method's return type, and running the conflict sweep before
	// that would report some classes' shapes before they are complete.
	// Analyze runs it once, after ResolveMembers.
}

// CheckUnifvarConflicts is a read-only pass over every recorded unifvar
// that turns leftover shape conflicts into diagnostics. It runs after every
// file's constraints have been generated and every call (plain or member)
// has been unified with its callee's return type, so a constraint
// discovered late can still merge into an earlier variable without
// producing a spurious conflict report mid-way.
func CheckUnifvarConflicts(ctx *Context) {
	for prov, tv := range ctx.Unifvars {
		if tv.Conflicts() {
			ctx.addError(diag.Error{
				Kind:    diag.TypeConflict,
				Message: fmt.Sprintf("conflicting types inferred for %s", prov),
			})
		}
	}
}

type solver struct {
	ctx  *Context
	file *ast.File

	// selfType names the receiver type of the member function/interface
	// impl method currently being solved, empty outside of one.
	selfType string
}

func (sv *solver) errorf(n ast.Node, kind diag.Kind, msg string) {
	sv.ctx.addError(diag.Error{
		Kind:    kind,
		Message: msg,
		Primary: diag.Label{Span: source.Span{File: sv.file.FileId, Range: n.Span()}},
	})
}

func (sv *solver) decl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		sv.function(n.Sig, n.Body, n.ID())
	case *ast.MemberFuncDecl:
		sv.selfType = n.RecvType
		sv.function(n.Sig, n.Body, n.ID())
		sv.selfType = ""
	case *ast.InterfaceImpl:
		for _, m := range n.Methods {
			sv.decl(m)
		}
	}
}

func (sv *solver) function(sig *ast.FuncSignature, body *ast.Block, fnID ast.NodeId) {
	retVar := sv.ctx.TypeVarFor(fnID)
	if sig.Ret != nil {
		types.Union(retVar, sv.typeExprVar(sig.Ret))
	} else {
		retVar.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Void})
	}
	sv.ctx.FuncRetType = append(sv.ctx.FuncRetType, retVar)
	sv.block(body)
	sv.ctx.FuncRetType = sv.ctx.FuncRetType[:len(sv.ctx.FuncRetType)-1]
}

// typeExprVar materializes a written type annotation as a TypeVar with a
// single candidate, so it can be unified against inferred expression
// variables using the same Union machinery.
func (sv *solver) typeExprVar(te ast.TypeExpr) *types.TypeVar {
	tv := types.NewTypeVar(types.NodeProv(te.ID()))
	switch n := te.(type) {
	case *ast.NamedType:
		if d, ok := sv.ctx.Root.GetDeclaration(n.Name); ok {
			switch d.Kind {
			case namespace.DeclBuiltinType:
				tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: d.BuiltinType})
				return tv
			case namespace.DeclStruct:
				tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalStruct, Name: n.Name, Args: sv.typeArgVars(n.Args)})
				return tv
			case namespace.DeclEnum:
				tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalEnum, Name: n.Name, Args: sv.typeArgVars(n.Args)})
				return tv
			case namespace.DeclArrayType:
				tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalArray, Name: "Array", Args: sv.typeArgVars(n.Args)})
				return tv
			}
		}
		// Not found in the namespace: treat as a generic type parameter
		// reference (e.g. "T"), consistent with how a Polytype declaration
		// is otherwise tracked.
		tv.AddCandidate(types.PotentialType{Kind: types.KindPoly, Name: n.Name})
	case *ast.FuncType:
		params := make([]*types.TypeVar, len(n.Params))
		for i, p := range n.Params {
			params[i] = sv.typeExprVar(p)
		}
		var ret *types.TypeVar
		if n.Ret != nil {
			ret = sv.typeExprVar(n.Ret)
		}
		tv.AddCandidate(types.PotentialType{Kind: types.KindFunc, Params: params, Ret: ret})
	case *ast.TupleType:
		elems := make([]*types.TypeVar, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = sv.typeExprVar(e)
		}
		tv.AddCandidate(types.PotentialType{Kind: types.KindTuple, Elems: elems})
	}
	return tv
}

func (sv *solver) typeArgVars(args []ast.TypeExpr) []*types.TypeVar {
	out := make([]*types.TypeVar, len(args))
	for i, a := range args {
		out[i] = sv.typeExprVar(a)
	}
	return out
}

func (sv *solver) block(b *ast.Block) {
	for _, s := range b.Stmts {
		sv.stmt(s)
	}
}

func (sv *solver) stmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.ExprStmt:
		sv.expr(n.X)
	case *ast.AssignStmt:
		l := sv.expr(n.Left)
		r := sv.expr(n.Right)
		types.Union(l, r)
	case *ast.DeclareStmt:
		v := sv.expr(n.Value)
		declVar := sv.ctx.TypeVarFor(n.ID())
		types.Union(declVar, v)
		if n.Type != nil {
			types.Union(declVar, sv.typeExprVar(n.Type))
		}
	case *ast.IfStmt:
		cond := sv.expr(n.Cond)
		cond.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		sv.block(n.Then)
		if n.Else != nil {
			sv.stmt(n.Else)
		}
	case *ast.WhileStmt:
		cond := sv.expr(n.Cond)
		cond.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		sv.block(n.Body)
	case *ast.ForStmt:
		sv.expr(n.Iterable)
		// The loop variable gets a fresh, unconstrained type variable, so the
		// body can still reference it without a spurious
		// UnresolvedIdentifier; it is not tied to the element type of the
		// iterable.
		sv.ctx.TypeVarFor(n.ID())
		sv.block(n.Body)
	case *ast.MatchStmt:
		sv.expr(n.Subject)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				g := sv.expr(arm.Guard)
				g.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
			}
			sv.block(arm.Body)
		}
	case *ast.ReturnStmt:
		if len(sv.ctx.FuncRetType) == 0 {
			return
		}
		ret := sv.ctx.FuncRetType[len(sv.ctx.FuncRetType)-1]
		if n.Value != nil {
			types.Union(ret, sv.expr(n.Value))
		} else {
			ret.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Void})
		}
	case *ast.DeferStmt:
		sv.expr(n.Call)
	case *ast.GuardStmt:
		cond := sv.expr(n.Cond)
		cond.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		sv.block(n.Else)
	case *ast.PanicStmt:
		m := sv.expr(n.Message)
		m.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Str})
	}
}

func (sv *solver) expr(e ast.Expr) *types.TypeVar {
	tv := sv.ctx.TypeVarFor(e.ID())
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch n.Value.(type) {
		case int64:
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Int})
		case float64:
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Float})
		case string:
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Str})
		case bool:
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		}
	case *ast.IdentExpr:
		if d, ok := sv.ctx.ResolutionMap[n.ID()]; ok && d.Kind == namespace.DeclVar {
			types.Union(tv, sv.ctx.TypeVarFor(d.VarNode))
		}
	case *ast.BinaryExpr:
		l, r := sv.expr(n.Left), sv.expr(n.Right)
		if isComparisonOp(n.Op) {
			types.Union(l, r)
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		} else if isBoolOp(n.Op) {
			l.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
			r.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
			tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Bool})
		} else {
			types.Union(l, r)
			types.Union(tv, l)
		}
	case *ast.UnaryExpr:
		operand := sv.expr(n.Operand)
		types.Union(tv, operand)
	case *ast.CallExpr:
		for _, a := range n.Args {
			sv.expr(a)
		}
		sv.expr(n.Fn)
		// A plain identifier call's return type flows straight into this
		// call node; a member/interface call (Fn is a FieldExpr) is only
		// resolved once the receiver's type is known, so it is unified by
		// the later ResolveMembers phase instead of here.
		if ident, ok := ast.Unwrap(n.Fn).(*ast.IdentExpr); ok {
			if d, ok := sv.ctx.ResolutionMap[ident.ID()]; ok {
				switch d.Kind {
				case namespace.DeclFreeFunction:
					types.Union(tv, sv.ctx.TypeVarFor(d.FreeFunction.ID()))
				case namespace.DeclHostFunction:
					types.Union(tv, sv.externRetVar(d.HostFunction.ID(), d.HostFunction.Sig))
				case namespace.DeclForeignFunction:
					types.Union(tv, sv.externRetVar(d.ForeignFunc.ID(), d.ForeignFunc.Sig))
				}
			}
		}
	case *ast.FieldExpr:
		sv.expr(n.Recv)
	case *ast.IndexExpr:
		sv.expr(n.Recv)
		sv.expr(n.Index)
	case *ast.ArrayExpr:
		elemVar := types.NewTypeVar(types.SynthProv("array-elem"))
		for _, el := range n.Elems {
			types.Union(elemVar, sv.expr(el))
		}
		tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalArray, Name: "Array", Args: []*types.TypeVar{elemVar}})
	case *ast.StructLitExpr:
		for _, fi := range n.Fields {
			sv.expr(fi.Value)
		}
		if d, ok := sv.ctx.ResolutionMap[n.ID()]; ok && d.Kind == namespace.DeclStruct {
			tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalStruct, Name: d.Struct.Name})
		}
	case *ast.VariantLitExpr:
		for _, a := range n.Args {
			sv.expr(a)
		}
		if d, ok := sv.ctx.ResolutionMap[n.ID()]; ok && d.Kind == namespace.DeclEnum {
			tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalEnum, Name: d.Enum.Name})
		}
	case *ast.FuncExpr:
		// The closure's own type (tv, keyed by this FuncExpr's NodeId) and
		// its return type must be distinct TypeVars: sv.function keys the
		// return variable off the same fnID a plain FuncDecl uses, which
		// here would alias it with tv and union two incompatible candidates
		// (KindFunc and whatever the body returns) into one class.
		retVar := types.NewTypeVar(types.SynthProv(fmt.Sprintf("closure-ret:%d", n.ID())))
		if n.Sig.Ret != nil {
			types.Union(retVar, sv.typeExprVar(n.Sig.Ret))
		} else {
			retVar.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Void})
		}
		sv.ctx.FuncRetType = append(sv.ctx.FuncRetType, retVar)
		sv.block(n.Body)
		sv.ctx.FuncRetType = sv.ctx.FuncRetType[:len(sv.ctx.FuncRetType)-1]

		params := make([]*types.TypeVar, len(n.Sig.Params))
		for i, p := range n.Sig.Params {
			if p.Type != nil {
				params[i] = sv.typeExprVar(p.Type)
			} else {
				params[i] = types.NewTypeVar(types.SynthProv(fmt.Sprintf("closure-param:%d:%d", n.ID(), i)))
			}
		}
		tv.AddCandidate(types.PotentialType{Kind: types.KindFunc, Params: params, Ret: retVar})
	case *ast.SelfExpr:
		if sv.selfType != "" {
			if d, ok := sv.ctx.Root.GetDeclaration(sv.selfType); ok {
				switch d.Kind {
				case namespace.DeclBuiltinType:
					tv.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: d.BuiltinType})
				case namespace.DeclStruct:
					tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalStruct, Name: sv.selfType})
				case namespace.DeclEnum:
					tv.AddCandidate(types.PotentialType{Kind: types.KindNominal, NominalKind: types.NominalEnum, Name: sv.selfType})
				}
			}
		}
	case *ast.ParenExpr:
		types.Union(tv, sv.expr(n.Inner))
	}
	return tv
}

// externRetVar materializes the return-type TypeVar of a host or foreign
// function, neither of which has a body for sv.function to walk.
func (sv *solver) externRetVar(id ast.NodeId, sig *ast.FuncSignature) *types.TypeVar {
	retVar := sv.ctx.TypeVarFor(id)
	if sig.Ret != nil {
		types.Union(retVar, sv.typeExprVar(sig.Ret))
	} else {
		retVar.AddCandidate(types.PotentialType{Kind: types.KindPrim, Prim: types.Void})
	}
	return retVar
}

func isComparisonOp(op token.Token) bool {
	switch op {
	case token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ:
		return true
	}
	return false
}

func isBoolOp(op token.Token) bool {
	switch op {
	case token.AND, token.OR, token.AMPAMP, token.PIPEPIPE:
		return true
	}
	return false
}
