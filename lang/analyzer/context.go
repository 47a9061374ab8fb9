package analyzer

import (
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/diag"
	"github.com/mna/eon/lang/namespace"
	"github.com/mna/eon/lang/source"
	"github.com/mna/eon/lang/types"
)

// ImplKey identifies one "impl Interface for Type" block.
type ImplKey struct {
	Interface string
	Type      string
}

// Context carries every piece of state threaded through the four analysis
// phases, field for field mirroring the shape the original analyzer's
// context object accumulates as it walks the program once per phase.
type Context struct {
	Files *source.FileDatabase

	Root *namespace.Namespace

	// ResolutionMap records, for every identifier/field/call node, which
	// declaration it was resolved to.
	ResolutionMap map[ast.NodeId]namespace.Declaration

	// FullyQualifiedNames records the dotted path a declaration node was
	// registered under, for diagnostics and the translator's symbol naming.
	FullyQualifiedNames map[ast.NodeId]string

	// InterfaceImpls indexes every InterfaceImpl block by the interface it
	// implements.
	InterfaceImpls map[string][]*ast.InterfaceImpl

	// InterfaceImplAnalyzed records which (interface, type) pairs already
	// have a registered impl, so ScanDeclarations can reject a second,
	// overlapping impl of the same interface for the same type.
	InterfaceImplAnalyzed map[ImplKey]bool

	// Members maps (receiver type, method name) to the declaration that
	// implements it, populated once at the end of ScanDeclarations and
	// consulted by the member-call resolution phase.
	Members *namespace.MemberTable

	// Captures records, for each FuncExpr node, the names of the enclosing
	// function's locals/params it reads or writes — the free variables the
	// translator must thread through MAKECLOSURE/FREE/SETFREE.
	Captures map[ast.NodeId][]string

	// Dylibs/DylibFuncs track which shared libraries and foreign symbols the
	// program references, for the translator's LoadLib/LoadForeignFunc
	// opcodes and for the loader's manifest.
	Dylibs     []string
	DylibFuncs map[string][]string

	HostFuncs []string

	Unifvars map[types.Prov]*types.TypeVar

	// LoopStack and FuncRetStack give break/continue/return statements the
	// enclosing loop/function context they need to validate against.
	LoopStack   []ast.NodeId
	FuncRetType []*types.TypeVar

	Errors []diag.Error
}

// NewContext returns a Context with its prelude declarations already
// registered in Root.
func NewContext(files *source.FileDatabase) *Context {
	return &Context{
		Files:                 files,
		Root:                  NewPrelude(),
		ResolutionMap:         make(map[ast.NodeId]namespace.Declaration),
		FullyQualifiedNames:   make(map[ast.NodeId]string),
		InterfaceImpls:        make(map[string][]*ast.InterfaceImpl),
		InterfaceImplAnalyzed: make(map[ImplKey]bool),
		Members:               namespace.NewMemberTable(),
		Captures:              make(map[ast.NodeId][]string),
		DylibFuncs:            make(map[string][]string),
		Unifvars:              make(map[types.Prov]*types.TypeVar),
	}
}

// TypeVarFor returns the TypeVar for node, creating an empty one on first
// use.
func (ctx *Context) TypeVarFor(id ast.NodeId) *types.TypeVar {
	prov := types.NodeProv(id)
	if tv, ok := ctx.Unifvars[prov]; ok {
		return tv
	}
	tv := types.NewTypeVar(prov)
	ctx.Unifvars[prov] = tv
	return tv
}

// SolutionOf returns the solved type of node, if one was recorded.
func (ctx *Context) SolutionOf(id ast.NodeId) (types.SolvedType, bool) {
	prov := types.NodeProv(id)
	tv, ok := ctx.Unifvars[prov]
	if !ok {
		return types.SolvedType{}, false
	}
	return tv.Solution()
}

func (ctx *Context) addError(e diag.Error) {
	ctx.Errors = append(ctx.Errors, e)
}

// addCapture records that the closure funcID reads or writes name from an
// enclosing function's scope, deduping repeated captures of the same name.
func (ctx *Context) addCapture(funcID ast.NodeId, name string) {
	for _, existing := range ctx.Captures[funcID] {
		if existing == name {
			return
		}
	}
	ctx.Captures[funcID] = append(ctx.Captures[funcID], name)
}
