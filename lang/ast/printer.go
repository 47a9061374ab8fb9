package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/eon/lang/source"
)

// Printer writes an indented, human-readable dump of an AST, for
// debugging.
type Printer struct {
	Output io.Writer
	Files  *source.FileDatabase // optional, enables position printing
	Pos    bool                 // if true and Files is set, print "line:col" per node
}

// Print writes a pre-order dump of file to p.Output, one line per node,
// indented by nesting depth.
func (p Printer) Print(file *File) error {
	pr := &printerVisitor{p: p, file: file}
	Walk(pr, file)
	return pr.err
}

type printerVisitor struct {
	p     Printer
	file  *File
	depth int
	err   error
}

func (pr *printerVisitor) Visit(n Node, dir VisitDirection) Visitor {
	if pr.err != nil {
		return nil
	}
	if dir == VisitExit {
		pr.depth--
		return pr
	}
	indent := strings.Repeat("  ", pr.depth)
	pos := ""
	if pr.p.Pos && pr.p.Files != nil {
		line, col := pr.p.Files.Position(pr.file.FileId, n.Span().Start)
		pos = fmt.Sprintf(" (%d:%d)", line, col)
	}
	if _, werr := fmt.Fprintf(pr.p.Output, "%s%v%s\n", indent, n, pos); werr != nil {
		pr.err = werr
		return nil
	}
	pr.depth++
	return pr
}
