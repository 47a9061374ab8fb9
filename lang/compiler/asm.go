package compiler

import (
	"fmt"
	"strings"
)

// Dasm renders a Program in human-readable textual form, for golden-file
// tests and the CLI's disasm subcommand. It is output-only: there is no
// assembler that parses this form back into a Program.
//
// The format looks like:
//
//	program: path/to/file.en
//	  constants:
//	    int    0: 1
//	    string 0: "hi"
//	  structs:
//	    0 Point (x, y)
//	  enums:
//	    0 Option (Some/1, None/0)
//	  function: answer params=0 locals=[]
//	    0: constant 0 0
//	    1: return
func Dasm(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "program: %s\n", p.Filename)

	if c := p.Constants; len(c.ints)+len(c.floats)+len(c.strs) > 0 {
		b.WriteString("  constants:\n")
		for i, v := range c.ints {
			fmt.Fprintf(&b, "    int    %d: %d\n", i, v)
		}
		for i, v := range c.floats {
			fmt.Fprintf(&b, "    float  %d: %v\n", i, v)
		}
		for i, v := range c.strs {
			fmt.Fprintf(&b, "    string %d: %q\n", i, v)
		}
	}

	if len(p.Structs) > 0 {
		b.WriteString("  structs:\n")
		for i, st := range p.Structs {
			fmt.Fprintf(&b, "    %d %s (%s)\n", i, st.Name, strings.Join(st.Fields, ", "))
		}
	}

	if len(p.Enums) > 0 {
		b.WriteString("  enums:\n")
		for i, et := range p.Enums {
			parts := make([]string, len(et.Variants))
			for j, v := range et.Variants {
				parts[j] = fmt.Sprintf("%s/%d", v, et.Arity[j])
			}
			fmt.Fprintf(&b, "    %d %s (%s)\n", i, et.Name, strings.Join(parts, ", "))
		}
	}

	if len(p.Externs) > 0 {
		b.WriteString("  externs:\n")
		for i, ex := range p.Externs {
			fmt.Fprintf(&b, "    %d %s::%s\n", i, ex.Library, ex.Symbol)
		}
	}

	for _, fn := range p.Functions {
		fmt.Fprintf(&b, "  function: %s params=%d locals=[%s]\n", fn.Name, fn.NumParams, strings.Join(fn.Locals, ", "))
		for pc, in := range fn.Code {
			fmt.Fprintf(&b, "    %d: %s\n", pc, in)
		}
	}

	return b.String()
}

// Disassemble is an alias of Dasm for callers that prefer a descriptive
// name.
func Disassemble(p *Program) string { return Dasm(p) }
