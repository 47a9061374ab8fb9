package analyzer

import (
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/types"
)

// ResolveMembers is the deferred second stage of member-call resolution:
// unlike a plain identifier call, "recv.method(...)" cannot be resolved
// until recv's type has been solved, so this phase runs after SolveTypes,
// walking every call whose callee is a FieldExpr and looking its (type,
// name) pair up in ctx.Members. A hit records the resolution in
// ctx.ResolutionMap, keyed by the call node, for the translator to consume
// and unifies the call's TypeVar with the method's return type; a miss
// reports whichever of MemberAccessNeedsAnnotation, InterfaceNotImplemented
// or UnresolvedMemberFunction fits.
func ResolveMembers(ctx *Context, files []*ast.File) {
	ifaceMethods := collectInterfaceMethods(ctx)
	for _, f := range files {
		rm := &memberResolver{ctx: ctx, file: f, ifaceMethods: ifaceMethods}
		for _, d := range f.Decls {
			ast.Walk(rm, d)
		}
	}
}

// collectInterfaceMethods indexes every declared interface method name to
// the interfaces that require it, so a failed member lookup can tell "no
// such method anywhere" apart from "declared by an interface this type
// never implements".
func collectInterfaceMethods(ctx *Context) map[string][]string {
	out := make(map[string][]string)
	for _, d := range ctx.Root.Declarations {
		if d.Kind != namespace.DeclInterfaceDef || d.Interface == nil {
			continue
		}
		for _, m := range d.Interface.Methods {
			out[m.Name] = append(out[m.Name], d.Interface.Name)
		}
	}
	return out
}

type memberResolver struct {
	ctx          *Context
	file         *ast.File
	ifaceMethods map[string][]string
}

// Visit implements ast.Visitor, looking at every CallExpr as the walk
// passes through it and always continuing into its children.
func (rm *memberResolver) Visit(n ast.Node, dir ast.VisitDirection) ast.Visitor {
	if dir != ast.VisitEnter {
		return rm
	}
	if call, ok := n.(*ast.CallExpr); ok {
		rm.resolveCall(call)
	}
	return rm
}

func (rm *memberResolver) errorf(n ast.Node, kind diag.Kind, msg string) {
	rm.ctx.addError(diag.Error{
		Kind:    kind,
		Message: msg,
		Primary: diag.Label{Span: source.Span{File: rm.file.FileId, Range: n.Span()}},
	})
}

func (rm *memberResolver) resolveCall(call *ast.CallExpr) {
	field, ok := ast.Unwrap(call.Fn).(*ast.FieldExpr)
	if !ok {
		return
	}

	sol, ok := rm.ctx.SolutionOf(field.Recv.ID())
	if !ok {
		rm.errorf(call, diag.MemberAccessNeedsAnnotation,
			"cannot resolve call to \""+field.Field+"\": the receiver's type could not be inferred")
		return
	}
	key, ok := sol.ToTypeKey()
	if !ok {
		rm.errorf(call, diag.MemberAccessNeedsAnnotation,
			"cannot resolve call to \""+field.Field+"\" on a "+sol.String()+" value")
		return
	}

	decl, ok := rm.ctx.Members.Get(namespace.MemberKey{Type: key, Name: field.Field})
	if ok {
		rm.ctx.ResolutionMap[call.ID()] = decl
		types.Union(rm.ctx.TypeVarFor(call.ID()), rm.ctx.TypeVarFor(decl.MemberFunction.ID()))
		return
	}

	for _, iface := range rm.ifaceMethods[field.Field] {
		implemented := false
		for _, impl := range rm.ctx.InterfaceImpls[iface] {
			if impl.TypeName == sol.Name {
				implemented = true
				break
			}
		}
		if !implemented {
			rm.errorf(call, diag.InterfaceNotImplemented,
				"type \""+sol.String()+"\" does not implement interface \""+iface+"\", required for \""+field.Field+"\"")
			return
		}
	}
	rm.errorf(call, diag.UnresolvedMemberFunction,
		"no member function \""+field.Field+"\" for type \""+sol.String()+"\"")
}
