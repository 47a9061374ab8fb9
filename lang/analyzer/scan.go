package analyzer

import (
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
)

// ScanDeclarations is Phase A: it walks every top-level declaration in
// every file and registers it in ctx.Root, without yet looking inside
// function bodies. Name resolution (Phase B) and type solving (Phase C)
// assume every declaration is already visible by the time they run, which
// is exactly what lets a function call another declared later in the same
// file, or in a different file of the same compilation.
func ScanDeclarations(ctx *Context, files []*ast.File) {
	for _, f := range files {
		for _, d := range f.Decls {
			scanDecl(ctx, f, d)
		}
	}
	populateMemberTable(ctx)
}

func scanDecl(ctx *Context, f *ast.File, d ast.Decl) {
	name := d.DeclName()
	switch n := d.(type) {
	case *ast.FuncDecl:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclFreeFunction, FreeFunction: n}, n)
	case *ast.HostFuncDecl:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclHostFunction, HostFunction: n}, n)
		ctx.HostFuncs = append(ctx.HostFuncs, name)
	case *ast.ForeignFuncDecl:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclForeignFunction, ForeignFunc: n}, n)
		ctx.registerForeign(f, n)
	case *ast.StructDef:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclStruct, Struct: n}, n)
	case *ast.EnumDef:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclEnum, Enum: n}, n)
		for i, v := range n.Variants {
			declareTop(ctx, f, n.Name+"."+v.Name, namespace.Declaration{Kind: namespace.DeclEnumVariant, Enum: n, VariantIdx: i}, n)
		}
	case *ast.InterfaceDef:
		declareTop(ctx, f, name, namespace.Declaration{Kind: namespace.DeclInterfaceDef, Interface: n}, n)
		for i, m := range n.Methods {
			ctx.FullyQualifiedNames[methodNodeKey(n, i)] = name + "." + m.Name
		}
	case *ast.MemberFuncDecl:
		declareTop(ctx, f, n.RecvType+"."+n.Name, namespace.Declaration{Kind: namespace.DeclMemberFunction, MemberFunction: n}, n)
	case *ast.InterfaceImpl:
		key := ImplKey{Interface: n.InterfaceName, Type: n.TypeName}
		if ctx.InterfaceImplAnalyzed[key] {
			ctx.addError(diag.Error{
				Kind:    diag.NameClash,
				Message: "interface \"" + n.InterfaceName + "\" is already implemented for type \"" + n.TypeName + "\"",
				Primary: diag.Label{Span: source.Span{File: f.FileId, Range: n.Span()}},
			})
		} else {
			ctx.InterfaceImplAnalyzed[key] = true
		}
		ctx.InterfaceImpls[n.InterfaceName] = append(ctx.InterfaceImpls[n.InterfaceName], n)
		for _, m := range n.Methods {
			// An impl method's RecvType comes from the surrounding "impl ... for
			// TypeName" block, not from the method itself; normalize it here so
			// populateMemberTable and the translator's memberFuncKey lookups
			// don't have to special-case impl-sourced member functions.
			m.RecvType = n.TypeName
			declareTop(ctx, f, n.TypeName+"."+m.Name, namespace.Declaration{Kind: namespace.DeclMemberFunction, MemberFunction: m}, m)
		}
	}
}

// populateMemberTable fills ctx.Members from every DeclMemberFunction
// registered in ctx.Root (both bare top-level member functions and those
// declared inside an interface impl), so the member-call resolution phase
// can look up "receiver type . method name" without re-walking the impl
// blocks or re-deriving the flat "Type.method" declaration keys.
func populateMemberTable(ctx *Context) {
	for _, d := range ctx.Root.Declarations {
		if d.Kind != namespace.DeclMemberFunction {
			continue
		}
		m := d.MemberFunction
		recv, ok := ctx.Root.GetDeclaration(m.RecvType)
		if !ok {
			continue
		}
		key, ok := recv.IntoTypeKey()
		if !ok {
			continue
		}
		ctx.Members.Put(namespace.MemberKey{Type: key, Name: m.Name}, d)
	}
}

// methodNodeKey synthesizes a stable NodeId for an interface method slot
// that has no AST node of its own (it's just an entry in Methods); it is
// only ever used as a map key within this package, never compared to a
// real parser-issued NodeId.
func methodNodeKey(def *ast.InterfaceDef, idx int) ast.NodeId {
	return ast.NodeId(uint64(def.ID())<<16 | uint64(idx))
}

func declareTop(ctx *Context, f *ast.File, name string, decl namespace.Declaration, n ast.Node) {
	if !ctx.Root.Declare(name, decl) {
		ctx.addError(diag.Error{
			Kind:    diag.NameClash,
			Message: "a declaration named \"" + name + "\" already exists",
			Primary: diag.Label{Span: source.Span{File: f.FileId, Range: n.Span()}},
		})
		return
	}
	ctx.FullyQualifiedNames[n.ID()] = name
}

func (ctx *Context) registerForeign(f *ast.File, n *ast.ForeignFuncDecl) {
	if n.Library == "" {
		ctx.addError(diag.Error{
			Kind:    diag.FfiNotEnabled,
			Message: "foreign function \"" + n.Name + "\" declares no library to load it from",
			Primary: diag.Label{Span: source.Span{File: f.FileId, Range: n.Span()}},
		})
		return
	}
	for _, lib := range ctx.Dylibs {
		if lib == n.Library {
			ctx.DylibFuncs[lib] = append(ctx.DylibFuncs[lib], n.Symbol)
			return
		}
	}
	ctx.Dylibs = append(ctx.Dylibs, n.Library)
	ctx.DylibFuncs[n.Library] = append(ctx.DylibFuncs[n.Library], n.Symbol)
}
