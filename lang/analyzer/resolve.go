package analyzer

import (
	"fmt"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
)

// scope is one lexical block of local bindings, chained to its parent the
// way the teacher's resolver threads a block.parent pointer up to the
// enclosing function and then to the file scope.
type scope struct {
	parent   *scope
	bindings map[string]ast.NodeId // name -> declaring node (DeclareStmt, Param, or for-loop var)
	selfType string                // non-empty inside a member function / interface impl body

	// funcBoundary marks the outermost scope of a closure body: a lookup
	// that has to cross it to find a binding is a free-variable capture
	// rather than an ordinary lexical reference.
	funcBoundary bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: make(map[string]ast.NodeId)}
}

func (s *scope) bind(name string, id ast.NodeId) {
	s.bindings[name] = id
}

func (s *scope) lookup(name string) (ast.NodeId, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if id, ok := sc.bindings[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// lookupCrossing behaves like lookup but also reports whether the binding
// was found only by walking past a scope flagged funcBoundary, i.e. the
// name belongs to an enclosing function rather than the closure itself.
func (s *scope) lookupCrossing(name string) (id ast.NodeId, crossed bool, ok bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if id, ok := sc.bindings[name]; ok {
			return id, crossed, true
		}
		if sc.funcBoundary {
			crossed = true
		}
	}
	return 0, false, false
}

// Resolve is Phase B: for every function/member-function/closure body, walk
// its statements and expressions, binding local declarations into nested
// scopes and resolving every identifier either to a local binding or to a
// namespace declaration, recording the result in ctx.ResolutionMap.
func Resolve(ctx *Context, files []*ast.File) {
	for _, f := range files {
		r := &resolver{ctx: ctx, file: f}
		for _, d := range f.Decls {
			r.decl(d)
		}
	}
}

type resolver struct {
	ctx  *Context
	file *ast.File

	// closureStack holds the NodeId of every FuncExpr currently being
	// resolved, innermost last, so a captured identifier can be charged
	// against the closure whose body it was found in.
	closureStack []ast.NodeId
}

func (r *resolver) errorf(n ast.Node, kind diag.Kind, msg string) {
	r.ctx.addError(diag.Error{
		Kind:    kind,
		Message: msg,
		Primary: diag.Label{Span: source.Span{File: r.file.FileId, Range: n.Span()}},
	})
}

func (r *resolver) decl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		s := newScope(nil)
		r.bindParams(s, n.Sig)
		r.block(s, n.Body)
	case *ast.MemberFuncDecl:
		s := newScope(nil)
		s.selfType = n.RecvType
		r.bindParams(s, n.Sig)
		r.block(s, n.Body)
	case *ast.InterfaceImpl:
		for _, m := range n.Methods {
			r.decl(m)
		}
	case *ast.HostFuncDecl, *ast.ForeignFuncDecl, *ast.StructDef, *ast.EnumDef, *ast.InterfaceDef:
		// no body to resolve
	}
}

func (r *resolver) bindParams(s *scope, sig *ast.FuncSignature) {
	for _, p := range sig.Params {
		s.bind(p.Name, 0)
	}
}

func (r *resolver) block(s *scope, b *ast.Block) {
	child := newScope(s)
	for _, stmt := range b.Stmts {
		r.stmt(child, stmt)
	}
}

func (r *resolver) stmt(s *scope, stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.ExprStmt:
		r.expr(s, n.X)
	case *ast.AssignStmt:
		r.expr(s, n.Left)
		r.expr(s, n.Right)
		if !ast.IsAssignable(n.Left) {
			r.errorf(n, diag.Generic, "left-hand side of assignment is not assignable")
		}
	case *ast.DeclareStmt:
		r.expr(s, n.Value)
		s.bind(n.Name, n.ID())
	case *ast.IfStmt:
		r.expr(s, n.Cond)
		r.block(s, n.Then)
		if n.Else != nil {
			r.stmt(s, n.Else)
		}
	case *ast.WhileStmt:
		r.expr(s, n.Cond)
		r.ctx.LoopStack = append(r.ctx.LoopStack, n.ID())
		r.block(s, n.Body)
		r.ctx.LoopStack = r.ctx.LoopStack[:len(r.ctx.LoopStack)-1]
	case *ast.ForStmt:
		r.expr(s, n.Iterable)
		child := newScope(s)
		child.bind(n.Var, n.ID())
		r.ctx.LoopStack = append(r.ctx.LoopStack, n.ID())
		for _, st := range n.Body.Stmts {
			r.stmt(child, st)
		}
		r.ctx.LoopStack = r.ctx.LoopStack[:len(r.ctx.LoopStack)-1]
	case *ast.MatchStmt:
		r.expr(s, n.Subject)
		for _, arm := range n.Arms {
			child := newScope(s)
			r.pattern(child, arm.Pattern)
			if arm.Guard != nil {
				r.expr(child, arm.Guard)
			}
			r.block(child, arm.Body)
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			r.expr(s, n.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		if len(r.ctx.LoopStack) == 0 {
			r.errorf(stmt, diag.NotInLoop, "break/continue outside of a loop")
		}
	case *ast.DeferStmt:
		r.expr(s, n.Call)
	case *ast.GuardStmt:
		r.expr(s, n.Cond)
		r.block(s, n.Else)
		if len(n.Else.Stmts) == 0 || !n.Else.Stmts[len(n.Else.Stmts)-1].BlockEnding() {
			r.errorf(n, diag.Generic, "guard else block must diverge (return/break/continue/panic)")
		}
	case *ast.PanicStmt:
		r.expr(s, n.Message)
	}
}

func (r *resolver) pattern(s *scope, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.BindingPattern:
		s.bind(n.Name, n.ID())
	case *ast.StructPattern:
		for _, fp := range n.Fields {
			if fp.Pattern != nil {
				r.pattern(s, fp.Pattern)
			} else {
				s.bind(fp.Name, n.ID())
			}
		}
	case *ast.VariantPattern:
		for _, a := range n.Args {
			r.pattern(s, a)
		}
	case *ast.TuplePattern:
		for _, e := range n.Elems {
			r.pattern(s, e)
		}
	}
}

func (r *resolver) expr(s *scope, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		if id, crossed, ok := s.lookupCrossing(n.Name); ok {
			r.ctx.ResolutionMap[n.ID()] = namespace.Declaration{Kind: namespace.DeclVar, VarName: n.Name, VarNode: id}
			if crossed && len(r.closureStack) > 0 {
				r.ctx.addCapture(r.closureStack[len(r.closureStack)-1], n.Name)
			}
			return
		}
		if d, ok := r.ctx.Root.GetDeclaration(n.Name); ok {
			r.ctx.ResolutionMap[n.ID()] = d
			return
		}
		r.errorf(n, diag.UnresolvedIdentifier, "undefined name \""+n.Name+"\"")
	case *ast.LiteralExpr:
	case *ast.BinaryExpr:
		r.expr(s, n.Left)
		r.expr(s, n.Right)
	case *ast.UnaryExpr:
		r.expr(s, n.Operand)
	case *ast.CallExpr:
		r.expr(s, n.Fn)
		for _, a := range n.Args {
			r.expr(s, a)
		}
	case *ast.FieldExpr:
		// Resolving which method "recv.field(...)" calls requires the
		// receiver's solved type, which does not exist until after
		// SolveTypes; that part of member-call resolution happens in the
		// later ResolveMembers phase, keyed off the enclosing CallExpr. Here
		// we only walk the receiver so its own identifiers get resolved.
		r.expr(s, n.Recv)
	case *ast.IndexExpr:
		r.expr(s, n.Recv)
		r.expr(s, n.Index)
	case *ast.ArrayExpr:
		for _, el := range n.Elems {
			r.expr(s, el)
		}
	case *ast.StructLitExpr:
		if d, ok := r.ctx.Root.GetDeclaration(n.TypeName); ok {
			r.ctx.ResolutionMap[n.ID()] = d
		} else {
			r.errorf(n, diag.UnresolvedIdentifier, "undefined struct type \""+n.TypeName+"\"")
		}
		for _, fi := range n.Fields {
			r.expr(s, fi.Value)
		}
	case *ast.VariantLitExpr:
		if d, ok := r.ctx.Root.GetDeclaration(n.EnumName); ok {
			r.ctx.ResolutionMap[n.ID()] = d
		} else {
			r.errorf(n, diag.UnresolvedIdentifier, "undefined enum type \""+n.EnumName+"\"")
		}
		if vd, ok := r.ctx.Root.Declarations[n.EnumName+"."+n.VariantName]; ok {
			if len(n.Args) != len(vd.Enum.Variants[vd.VariantIdx].Fields) {
				r.errorf(n, diag.Generic, fmt.Sprintf("variant %q expects %d argument(s), got %d",
					n.VariantName, len(vd.Enum.Variants[vd.VariantIdx].Fields), len(n.Args)))
			}
		} else {
			r.errorf(n, diag.Generic, "enum has no variant \""+n.VariantName+"\"")
		}
		for _, a := range n.Args {
			r.expr(s, a)
		}
	case *ast.FuncExpr:
		child := newScope(s)
		child.funcBoundary = true
		r.bindParams(child, n.Sig)
		r.closureStack = append(r.closureStack, n.ID())
		r.block(child, n.Body)
		r.closureStack = r.closureStack[:len(r.closureStack)-1]
	case *ast.SelfExpr:
		if s.enclosingSelfType() == "" {
			r.errorf(n, diag.Generic, "self is only valid inside a member function")
		}
	case *ast.ParenExpr:
		r.expr(s, n.Inner)
	}
}

func (s *scope) enclosingSelfType() string {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.selfType != "" {
			return sc.selfType
		}
	}
	return ""
}
