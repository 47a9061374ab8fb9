package compiler

import "fmt"

// Instr is a single post-link instruction: an opcode plus up to two
// operand fields. Which fields are meaningful depends on op; see the
// comments on the Opcode constants.
type Instr struct {
	Op   Opcode
	A, B int32
}

func (in Instr) String() string {
	switch {
	case in.Op == JMP || in.Op == JUMPIF:
		return fmt.Sprintf("%s %d", in.Op, in.A)
	case in.Op == CALL || in.Op == CALLEXTERN || in.Op == MAKECLOSURE || in.Op == CONSTRUCTSTRUCT || in.Op == CONSTRUCTVARIANT || in.Op == CONSTANT:
		return fmt.Sprintf("%s %d %d", in.Op, in.A, in.B)
	case hasOperand(in.Op):
		return fmt.Sprintf("%s %d", in.Op, in.A)
	default:
		return in.Op.String()
	}
}

// line is a pre-link line of the instruction stream: either a real
// instruction (referring to jump targets by label name) or a label
// definition marking the pc that follows it. This mirrors the two-pass
// design of the original assembler: pass 1 resolves every label to a pc,
// pass 2 rewrites each instruction line into its linked form.
type line struct {
	isLabel bool
	label   string // valid when isLabel

	op      Opcode
	a, b    int32
	jumpTo  string // valid when op is JMP/JUMPIF/HOSTFUNC-with-label (none currently) -- jump target by label
	hasJump bool
}

func instrLine(op Opcode, a, b int32) line { return line{op: op, a: a, b: b} }
func jumpLine(op Opcode, target string) line {
	return line{op: op, jumpTo: target, hasJump: true}
}
func labelLine(name string) line { return line{isLabel: true, label: name} }

// removeLabels performs the two-pass link: the first pass computes each
// label's pc (a slice index into the eventual []Instr, incremented only for
// non-label lines), the second pass converts every non-label line into its
// linked Instr, resolving jump targets to their pc.
func removeLabels(lines []line) ([]Instr, error) {
	pcOf := make(map[string]int32)
	var pc int32
	for _, l := range lines {
		if l.isLabel {
			pcOf[l.label] = pc
			continue
		}
		pc++
	}

	out := make([]Instr, 0, pc)
	for _, l := range lines {
		if l.isLabel {
			continue
		}
		in := Instr{Op: l.op, A: l.a, B: l.b}
		if l.hasJump {
			target, ok := pcOf[l.jumpTo]
			if !ok {
				return nil, fmt.Errorf("compiler: undefined label %q", l.jumpTo)
			}
			in.A = target
		}
		out = append(out, in)
	}
	return out, nil
}
