package compiler

import "fmt"

// Function is the compiled code of a single Eon function: a free function,
// a host/foreign function stub, or a member function. Host and foreign
// functions carry no Code; the VM dispatches them through HostFuncs/Dylibs
// on Program instead.
type Function struct {
	Name      string
	NumParams int
	Locals    []string // names, parameters first, for diagnostics/disassembly
	Cells     []int    // indices into Locals that are closed over and need heap cells
	Freevars  []string // names of captured variables, for disassembly
	Code      []Instr
	MaxStack  int
}

// StructType and EnumType record just enough shape for the VM to construct
// and deconstruct composite values without consulting the analyzer's
// namespace at run time: field/variant names in declaration order, and the
// arity of each enum variant.
type StructType struct {
	Name   string
	Fields []string
}

type EnumType struct {
	Name     string
	Variants []string
	Arity    []int // number of payload args per variant, parallel to Variants
}

// ExternFunc is one foreign function binding: the shared-object path it is
// loaded from and the symbol name the VM's FFI layer resolves at load
// time.
type ExternFunc struct {
	Library string
	Symbol  string
}

// Program is a fully linked, directly executable compilation unit: one
// Program per source file, the way the teacher's compiler emits one
// *Program per parsed chunk.
type Program struct {
	Filename string

	Toplevel  *Function // synthetic function wrapping the file's top-level statements, nil if none
	Functions []*Function

	Structs []*StructType
	Enums   []*EnumType

	// Externs holds every foreign function reachable from this program,
	// flattened across the shared objects it loads. A CALLEXTERN
	// instruction's A field indexes into Externs directly.
	Externs []ExternFunc

	// HostFuncs names every host function a HOSTFUNC instruction can
	// suspend into, in declaration order; a HOSTFUNC instruction's A field
	// indexes into this slice.
	HostFuncs []string

	Constants *ConstantsHolder
}

func NewProgram(filename string) *Program {
	return &Program{Filename: filename, Constants: NewConstantsHolder()}
}

// Constant kinds, stored in a CONSTANT instruction's B field; A is the
// index into the matching table below.
const (
	ConstInt int32 = iota
	ConstFloat
	ConstString
)

// ConstantsHolder deduplicates the three kinds of literal constants a
// program can embed. Each kind keeps its own dedup table and its own index
// space -- a CONSTANT instruction's A field indexes into the table named by
// its B field, rather than all three kinds sharing one flattened pool.
type ConstantsHolder struct {
	ints   []int64
	intIdx map[int64]int32
	floats []float64
	fltIdx map[float64]int32
	strs   []string
	strIdx map[string]int32
}

func NewConstantsHolder() *ConstantsHolder {
	return &ConstantsHolder{
		intIdx: make(map[int64]int32),
		fltIdx: make(map[float64]int32),
		strIdx: make(map[string]int32),
	}
}

// Int returns the constant-pool index for v, adding it if not already
// present.
func (c *ConstantsHolder) Int(v int64) int32 {
	if idx, ok := c.intIdx[v]; ok {
		return idx
	}
	idx := int32(len(c.ints))
	c.ints = append(c.ints, v)
	c.intIdx[v] = idx
	return idx
}

func (c *ConstantsHolder) Float(v float64) int32 {
	if idx, ok := c.fltIdx[v]; ok {
		return idx
	}
	idx := int32(len(c.floats))
	c.floats = append(c.floats, v)
	c.fltIdx[v] = idx
	return idx
}

func (c *ConstantsHolder) String(v string) int32 {
	if idx, ok := c.strIdx[v]; ok {
		return idx
	}
	idx := int32(len(c.strs))
	c.strs = append(c.strs, v)
	c.strIdx[v] = idx
	return idx
}

func (c *ConstantsHolder) IntAt(i int32) int64     { return c.ints[i] }
func (c *ConstantsHolder) FloatAt(i int32) float64 { return c.floats[i] }
func (c *ConstantsHolder) StringAt(i int32) string { return c.strs[i] }

func (c *ConstantsHolder) Summary() string {
	return fmt.Sprintf("%d ints, %d floats, %d strings", len(c.ints), len(c.floats), len(c.strs))
}
