// Package types implements the static type algebra the analyzer's
// type-solving phase operates over: type variables joined by unification
// constraints, the potential types that can flow into them, and the
// solved types that come out the other end. It does not model runtime
// values — see lang/machine for the VM's own closed value representation.
package types

import (
	"fmt"
	"strings"

	"github.com/mna/eon/lang/ast"
)

// Prim enumerates the primitive (builtin) types, matching the fixed
// BuiltinType catalogue the prelude binds names to.
type Prim int

const (
	Int Prim = iota
	Float
	Bool
	Str
	Void
	Never // the bottom type, e.g. the result of a call to panic
)

func (p Prim) String() string {
	switch p {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Str:
		return "string"
	case Void:
		return "void"
	case Never:
		return "never"
	default:
		return "?prim"
	}
}

// NominalKind distinguishes the three kinds of user-declared (or builtin
// Array) nominal type.
type NominalKind int

const (
	NominalStruct NominalKind = iota
	NominalEnum
	NominalArray
)

// TypeKey is a hashable, fully-resolved identifier for a type, used as the
// key of the member-function table and interface-impl lookups. Two types
// that key the same can share member functions and interface impls.
type TypeKey struct {
	kind string // "prim", "struct", "enum", "array", "func", "tuple"
	name string // primitive name or nominal name; empty for func/tuple
	// Arity disambiguates func/tuple keys of different shape; nominal type
	// arguments are intentionally not part of the key (impls are defined
	// per generic definition, not per instantiation).
	arity int
}

func (k TypeKey) String() string {
	if k.arity > 0 {
		return fmt.Sprintf("%s(%s)/%d", k.kind, k.name, k.arity)
	}
	return fmt.Sprintf("%s(%s)", k.kind, k.name)
}

func PrimKey(p Prim) TypeKey       { return TypeKey{kind: "prim", name: p.String()} }
func NominalKeyOf(kind NominalKind, name string) TypeKey {
	k := "struct"
	if kind == NominalEnum {
		k = "enum"
	} else if kind == NominalArray {
		k = "array"
	}
	return TypeKey{kind: k, name: name}
}
func FuncKey(arity int) TypeKey  { return TypeKey{kind: "func", arity: arity} }
func TupleKey(arity int) TypeKey { return TypeKey{kind: "tuple", arity: arity} }

// Prov (provenance) identifies why a TypeVar exists: it is almost always
// tied to the AST node whose type it represents, mirroring the original
// analyzer's TypeProv::Node case; a handful of synthetic provenances cover
// builtin operations and interface Self types that have no single node.
type Prov struct {
	Node    ast.NodeId
	Synth   string // non-empty for a synthetic provenance, e.g. "builtin:AddInt"
}

func NodeProv(id ast.NodeId) Prov   { return Prov{Node: id} }
func SynthProv(tag string) Prov     { return Prov{Synth: tag} }

func (p Prov) String() string {
	if p.Synth != "" {
		return p.Synth
	}
	return fmt.Sprintf("node#%d", p.Node)
}

// ConstraintReason records why two TypeVars were unified, purely for
// diagnostic messages ("expected int because of the left operand of +, got
// string from the right operand").
type ConstraintReason struct {
	Description string
	Span        ast.NodeId // node to blame, if any
}

// Constraint is an equation the solver must satisfy: A and B denote the
// same type.
type Constraint struct {
	A, B   *TypeVar
	Reason ConstraintReason
}

// PotentialType is one candidate shape unified into a TypeVar. Exactly one
// field group is meaningful per value of Kind.
type PotentialKind int

const (
	KindPrim PotentialKind = iota
	KindNominal
	KindFunc
	KindTuple
	KindPoly // reference to a generic type parameter, e.g. "T"
)

type PotentialType struct {
	Kind PotentialKind

	Prim Prim // KindPrim

	NominalKind NominalKind // KindNominal
	Name        string      // KindNominal, KindPoly
	Args        []*TypeVar  // KindNominal (type arguments)

	Params []*TypeVar // KindFunc
	Ret    *TypeVar   // KindFunc

	Elems []*TypeVar // KindTuple
}

func (pt PotentialType) shape() string {
	switch pt.Kind {
	case KindPrim:
		return "prim:" + pt.Prim.String()
	case KindNominal:
		return "nominal:" + pt.Name
	case KindFunc:
		return fmt.Sprintf("func/%d", len(pt.Params))
	case KindTuple:
		return fmt.Sprintf("tuple/%d", len(pt.Elems))
	case KindPoly:
		return "poly:" + pt.Name
	default:
		return "?"
	}
}

// varState is the shared, mutable backing store of a union-find class of
// TypeVars: every TypeVar in the same class points (transitively) to the
// same *varState once Union has been called.
type varState struct {
	parent *TypeVar // nil if this is the representative
	types  []PotentialType
	provs  []Prov
}

// TypeVar is a unification variable: initially empty, it accumulates
// PotentialType candidates as the solver visits expressions, and is joined
// to other TypeVars by Union when a Constraint says they must agree.
type TypeVar struct {
	state *varState
}

// NewTypeVar returns a fresh, empty type variable with the given
// provenance (for diagnostics only).
func NewTypeVar(prov Prov) *TypeVar {
	return &TypeVar{state: &varState{provs: []Prov{prov}}}
}

// find returns the representative TypeVar of tv's union-find class,
// compressing the path as it goes.
func find(tv *TypeVar) *TypeVar {
	for tv.state.parent != nil {
		tv.state.parent = find(tv.state.parent)
		tv = tv.state.parent
	}
	return tv
}

// AddCandidate records that t is one of the types this variable may denote.
func (tv *TypeVar) AddCandidate(t PotentialType) {
	r := find(tv)
	r.state.types = append(r.state.types, t)
}

// Candidates returns every PotentialType recorded against tv's class.
func (tv *TypeVar) Candidates() []PotentialType {
	return find(tv).state.types
}

// Union merges a's and b's classes, keeping every recorded candidate from
// both. It does not itself check the merged candidates are consistent; the
// solver calls Conflicts afterward to decide whether to emit a TypeConflict
// diagnostic.
func Union(a, b *TypeVar) {
	ra, rb := find(a), find(b)
	if ra == rb {
		return
	}
	ra.state.types = append(ra.state.types, rb.state.types...)
	ra.state.provs = append(ra.state.provs, rb.state.provs...)
	rb.state.parent = ra
	rb.state.types = nil
}

// Conflicts reports whether tv's class has accumulated two or more
// candidates with incompatible shapes (different primitives, a primitive
// vs. a nominal type, functions of different arity, etc).
func (tv *TypeVar) Conflicts() bool {
	cands := find(tv).state.types
	if len(cands) < 2 {
		return false
	}
	first := cands[0].shape()
	for _, c := range cands[1:] {
		if c.Kind == KindPoly || cands[0].Kind == KindPoly {
			continue // a polytype parameter is compatible with anything
		}
		if c.shape() != first {
			return true
		}
	}
	return false
}

// SolvedType is the concrete, fully-resolved type of an expression or
// declaration once the solver has finished, the value returned by
// TypeVar.Solution.
type SolvedType struct {
	Kind PotentialKind

	Prim Prim

	NominalKind NominalKind
	Name        string
	Args        []SolvedType

	Params []SolvedType
	Ret    *SolvedType

	Elems []SolvedType
}

func (st SolvedType) String() string {
	switch st.Kind {
	case KindPrim:
		return st.Prim.String()
	case KindNominal:
		if len(st.Args) == 0 {
			return st.Name
		}
		parts := make([]string, len(st.Args))
		for i, a := range st.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", st.Name, strings.Join(parts, ", "))
	case KindFunc:
		parts := make([]string, len(st.Params))
		for i, p := range st.Params {
			parts[i] = p.String()
		}
		ret := "void"
		if st.Ret != nil {
			ret = st.Ret.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
	case KindTuple:
		parts := make([]string, len(st.Elems))
		for i, e := range st.Elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case KindPoly:
		return st.Name
	default:
		return "?"
	}
}

// ToTypeKey returns the TypeKey this solved type would be looked up by in
// the member-function / interface-impl tables, or false if this shape has
// no associated key (e.g. a bare polytype parameter).
func (st SolvedType) ToTypeKey() (TypeKey, bool) {
	switch st.Kind {
	case KindPrim:
		return PrimKey(st.Prim), true
	case KindNominal:
		return NominalKeyOf(st.NominalKind, st.Name), true
	case KindFunc:
		return FuncKey(len(st.Params)), true
	case KindTuple:
		return TupleKey(len(st.Elems)), true
	default:
		return TypeKey{}, false
	}
}

// Solution resolves tv's class to a SolvedType, picking the first
// non-polytype candidate recorded (after Conflicts has been checked by the
// caller) or falling back to a bare polytype reference. Solution performs
// no mutation, so calling it any number of times on the same (stable) set
// of constraints yields the identical result.
func (tv *TypeVar) Solution() (SolvedType, bool) {
	cands := find(tv).state.types
	var chosen *PotentialType
	for i := range cands {
		if cands[i].Kind != KindPoly {
			chosen = &cands[i]
			break
		}
	}
	if chosen == nil {
		if len(cands) == 0 {
			return SolvedType{}, false
		}
		chosen = &cands[0]
	}
	return solveOne(*chosen), true
}

func solveOne(pt PotentialType) SolvedType {
	st := SolvedType{Kind: pt.Kind, Prim: pt.Prim, NominalKind: pt.NominalKind, Name: pt.Name}
	for _, a := range pt.Args {
		if s, ok := a.Solution(); ok {
			st.Args = append(st.Args, s)
		}
	}
	for _, p := range pt.Params {
		if s, ok := p.Solution(); ok {
			st.Params = append(st.Params, s)
		}
	}
	if pt.Ret != nil {
		if s, ok := pt.Ret.Solution(); ok {
			st.Ret = &s
		}
	}
	for _, e := range pt.Elems {
		if s, ok := e.Solution(); ok {
			st.Elems = append(st.Elems, s)
		}
	}
	return st
}
