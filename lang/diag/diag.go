// Package diag holds the diagnostic model shared by every analysis phase:
// a closed set of error kinds, each carrying enough context to render a
// codespan-style report, and the ErrorSummary that aggregates them the way
// the analyzer never aborts on the first error it finds.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/eon/lang/source"
)

// Kind identifies the specific diagnostic being reported. The set mirrors
// the fixed list of static errors the analyzer can produce, plus Generic
// for messages that don't need a dedicated shape.
type Kind int

const (
	Generic Kind = iota
	UnresolvedIdentifier
	NameClash
	TypeConflict
	NonExhaustiveMatch
	RedundantArms
	FfiNotEnabled
	NotInLoop
	UnresolvedMemberFunction
	MemberAccessNeedsAnnotation
	InterfaceNotImplemented
)

var kindNames = map[Kind]string{
	Generic:                     "error",
	UnresolvedIdentifier:        "unresolved identifier",
	NameClash:                   "name clash",
	TypeConflict:                "type conflict",
	NonExhaustiveMatch:          "non-exhaustive match",
	RedundantArms:               "redundant match arm",
	FfiNotEnabled:               "foreign function interface is not enabled",
	NotInLoop:                   "not inside a loop",
	UnresolvedMemberFunction:    "unresolved member function",
	MemberAccessNeedsAnnotation: "member access needs a type annotation",
	InterfaceNotImplemented:     "interface not implemented for this type",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown error"
}

// Label annotates a span within a diagnostic, either as the primary
// location of the problem or as secondary context (e.g. "previous
// declaration here").
type Label struct {
	Span    source.Span
	Message string
}

// Error is a single static diagnostic. Primary is always set; Secondary and
// Notes are optional context, following the same primary/secondary/notes
// shape the analyzer's original renderer used.
type Error struct {
	Kind      Kind
	Message   string
	Primary   Label
	Secondary []Label
	Notes     []string
}

func (e Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	return b.String()
}

// Render writes a human-readable, multi-line report for e against db,
// showing the offending source line and a caret under the primary span.
func (e Error) Render(db *source.FileDatabase) string {
	var b strings.Builder
	loc := db.String(e.Primary.Span)
	fmt.Fprintf(&b, "error[%s]: %s\n", e.Kind, e.Message)
	fmt.Fprintf(&b, "  --> %s\n", loc)

	line, col := db.Position(e.Primary.Span.File, e.Primary.Span.Range.Start)
	text := db.Line(e.Primary.Span.File, line)
	fmt.Fprintf(&b, "   |\n%3d| %s\n", line, text)
	width := e.Primary.Span.Range.Len()
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(&b, "   | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if e.Primary.Message != "" {
		fmt.Fprintf(&b, "   | %s%s\n", strings.Repeat(" ", col-1), e.Primary.Message)
	}
	for _, sec := range e.Secondary {
		fmt.Fprintf(&b, "  note: %s (%s)\n", sec.Message, db.String(sec.Span))
	}
	for _, n := range e.Notes {
		fmt.Fprintf(&b, "  = note: %s\n", n)
	}
	return b.String()
}

// ErrorSummary aggregates every error collected across a compilation, the
// terminal value returned by the analysis pipeline when it finds at least
// one error. It is never constructed for a single error in isolation so
// that every phase can keep going and report as much as possible in one
// pass, matching this module's "never abort on first error" rule.
type ErrorSummary struct {
	Files  *source.FileDatabase
	Errors []Error
}

func (s *ErrorSummary) Error() string {
	var b strings.Builder
	for i, e := range s.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		if s.Files != nil {
			b.WriteString(e.Render(s.Files))
		} else {
			b.WriteString(e.Error())
		}
	}
	return b.String()
}

// Sorted returns a copy of s.Errors ordered by file, then line, then
// column, for deterministic output and golden-file tests.
func (s *ErrorSummary) Sorted() []Error {
	out := make([]Error, len(s.Errors))
	copy(out, s.Errors)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Primary.Span, out[j].Primary.Span
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Range.Start < b.Range.Start
	})
	return out
}

// RuntimeKind identifies the category of an error raised while the VM is
// executing, as opposed to while the program is being analyzed.
type RuntimeKind int

const (
	RuntimePanic RuntimeKind = iota
	RuntimeDivideByZero
	RuntimeIndexOutOfBounds
	RuntimeStackOverflow
	RuntimeForeignCallFailed
)

var runtimeKindNames = [...]string{
	RuntimePanic:             "panic",
	RuntimeDivideByZero:      "divide by zero",
	RuntimeIndexOutOfBounds:  "index out of bounds",
	RuntimeStackOverflow:     "stack overflow",
	RuntimeForeignCallFailed: "foreign call failed",
}

func (k RuntimeKind) String() string { return runtimeKindNames[k] }

// Frame is a single entry of a RuntimeError's call trace.
type Frame struct {
	FuncName string
	Span     source.Span
}

// RuntimeError is the error surfaced by the VM when execution cannot
// continue, carrying the call trace active at the point of failure.
type RuntimeError struct {
	Kind    RuntimeKind
	Message string
	Trace   []Frame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	for _, f := range e.Trace {
		fmt.Fprintf(&b, "\n  at %s", f.FuncName)
	}
	return b.String()
}
