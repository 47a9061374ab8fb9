// Package machine implements the stack-based virtual machine that executes
// a compiler.Program: call frames, composite values, the suspension
// protocol for host calls, and the driver loop a CLI or embedder runs to
// pump execution forward.
package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/eon/lang/compiler"
)

// Value is the closed set of runtime values a compiled Eon program can
// produce and manipulate. Unlike the teacher's open Starlark-style Value
// interface (meant to admit arbitrary host-defined types), Eon's value set
// is exactly the ten cases below, matching the statically-typed core's
// fixed set of representable shapes.
type Value interface {
	value()
	String() string
}

type (
	Nil    struct{}
	Bool   bool
	Int    int64
	Float  float64
	String string

	// Array is a resizable, reference-typed sequence. ArrayAppend/ArrayPop
	// mutate it in place, matching the instruction catalogue's void-return
	// contract for both.
	Array struct {
		Elems []Value
	}

	// Struct is an instance of a declared struct type, fields stored in
	// declaration order so field access can use a plain integer index
	// rather than a name lookup at run time.
	Struct struct {
		TypeName string
		Fields   []Value
	}

	// Variant is an instance of one case of a declared enum type.
	Variant struct {
		TypeName    string
		VariantIdx  int32
		VariantName string
		Payload     []Value
	}

	// Closure is a callable function value: a reference to its compiled
	// code plus the cells it captured when it was made.
	Closure struct {
		Func     *compiler.Function
		Freevars []*Cell
	}

	// ForeignHandle wraps an opaque pointer-sized value returned by a
	// foreign call, passed back across the FFI boundary without the VM
	// ever inspecting its bits.
	ForeignHandle struct {
		Ptr uintptr
	}
)

// Cell is a heap box for a captured value. MAKECLOSURE boxes a copy of
// each captured value into a fresh cell owned by the closure; the
// declaring frame's local is not shared with it.
type Cell struct{ V Value }

func (Nil) value()            {}
func (Bool) value()           {}
func (Int) value()            {}
func (Float) value()          {}
func (String) value()         {}
func (*Array) value()         {}
func (*Struct) value()        {}
func (*Variant) value()       {}
func (*Closure) value()       {}
func (*ForeignHandle) value() {}

func (Nil) String() string   { return "nil" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (s String) String() string { return string(s) }

func (a *Array) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s *Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return s.TypeName + "{" + strings.Join(parts, ", ") + "}"
}

func (v *Variant) String() string {
	if len(v.Payload) == 0 {
		return v.TypeName + "." + v.VariantName
	}
	parts := make([]string, len(v.Payload))
	for i, p := range v.Payload {
		parts[i] = p.String()
	}
	return v.TypeName + "." + v.VariantName + "(" + strings.Join(parts, ", ") + ")"
}

func (c *Closure) String() string { return fmt.Sprintf("<closure %s>", c.Func.Name) }

func (h *ForeignHandle) String() string { return fmt.Sprintf("<foreign %#x>", h.Ptr) }

// Truthy reports whether v is the condition-true value. Only Bool values
// are ever produced where a boolean is expected by the type checker, so
// this is a direct assertion rather than a permissive coercion.
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return ok && bool(b)
}
