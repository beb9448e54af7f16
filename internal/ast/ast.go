// Package ast defines the Datascript abstract syntax tree produced by the
// parser and walked by the evaluator. Node is a discriminated union: every
// variant implements Node, statements additionally implement Stmt and
// expressions additionally implement Expr.
package ast

import "github.com/dstanley-scripts/datascript/internal/token"

// Node is any AST node; Pos reports where it starts, for diagnostics.
type Node interface {
	Pos() token.Position
}

// Stmt is a statement-position node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression-position node.
type Expr interface {
	Node
	exprNode()
}

// TypeAnnotation is a parsed `base ('[' ']')*` type annotation.
type TypeAnnotation struct {
	Base       string
	ArrayDepth int
	Position   token.Position
}

func (t *TypeAnnotation) Pos() token.Position { return t.Position }

// Program is the root node: a flat list of top-level statements.
type Program struct {
	Statements []Stmt
	Position   token.Position
}

func (p *Program) Pos() token.Position { return p.Position }
func (p *Program) stmtNode()           {}

// Param is a function/method parameter.
type Param struct {
	Name       string
	Annotation *TypeAnnotation // nil if unannotated
	Default    Expr            // nil if no default
}
