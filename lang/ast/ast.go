// Package ast defines the abstract syntax tree this module's analyzer,
// translator and pattern-exhaustiveness checker operate on. Construction of
// the tree (scanning and parsing source text) is an external collaborator;
// this package only defines the node shapes and the identity/position
// bookkeeping every later phase keys off of.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/eon/lang/source"
)

// NodeId is an opaque, process-wide unique identifier assigned to every
// node as it is constructed. The analyzer never stores owning references
// to AST nodes across its maps; it stores NodeIds and looks the node back
// up when needed, the same indirection the original implementation's arena
// gives nodes through stable ids instead of addresses.
type NodeId uint64

// IdGen hands out increasing NodeIds. The external parser owns one and
// threads it through node construction; a zero-value IdGen is ready to use.
type IdGen struct{ next uint64 }

// Next returns a fresh, never-before-returned NodeId.
func (g *IdGen) Next() NodeId {
	g.next++
	return NodeId(g.next)
}

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so they can print a
	// description of themselves. Only the 'v' and 's' verbs are supported;
	// the '#' flag prints child-count annotations.
	fmt.Formatter

	// ID returns this node's unique identity, used by the analyzer to key
	// its resolution, type-solution and diagnostic maps.
	ID() NodeId

	// Span reports the byte range of the node within its file.
	Span() source.Range

	// Walk enters each child node to implement the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	// BlockEnding returns true if the statement should only appear as the
	// last statement in a block (return, break, continue, panic).
	BlockEnding() bool
}

// Decl represents a top-level or member declaration.
type Decl interface {
	Node
	// DeclName returns the name this declaration binds in its enclosing
	// namespace.
	DeclName() string
	decl()
}

// base is embedded by every concrete node to provide ID() and Span().
type base struct {
	Id    NodeId
	Range source.Range
}

func (b base) ID() NodeId          { return b.Id }
func (b base) Span() source.Range  { return b.Range }

// File is the root of a single source file's AST: a flat list of top-level
// declarations, in source order.
type File struct {
	base
	Path  string
	FileId source.FileId
	Decls []Decl
}

func (n *File) Format(f fmt.State, verb rune) {
	format(f, verb, n, "file "+n.Path, map[string]int{"decls": len(n.Decls)})
}
func (n *File) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// NewFile constructs a File node, assigning it a NodeId from gen.
func NewFile(gen *IdGen, path string, fid source.FileId, rng source.Range, decls []Decl) *File {
	return &File{base: base{Id: gen.Next(), Range: rng}, Path: path, FileId: fid, Decls: decls}
}

// Block represents a block of statements.
type Block struct {
	base
	Stmts []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func NewBlock(gen *IdGen, rng source.Range, stmts []Stmt) *Block {
	return &Block{base: base{Id: gen.Next(), Range: rng}, Stmts: stmts}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
