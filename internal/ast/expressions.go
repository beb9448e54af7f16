package ast

import "github.com/dstanley-scripts/datascript/internal/token"

// NumericLiteral is a number literal.
type NumericLiteral struct {
	Value    float64
	Position token.Position
}

func (n *NumericLiteral) Pos() token.Position { return n.Position }
func (n *NumericLiteral) exprNode()           {}

// StringLiteral is a string literal.
type StringLiteral struct {
	Value    string
	Position token.Position
}

func (n *StringLiteral) Pos() token.Position { return n.Position }
func (n *StringLiteral) exprNode()           {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value    bool
	Position token.Position
}

func (n *BooleanLiteral) Pos() token.Position { return n.Position }
func (n *BooleanLiteral) exprNode()           {}

// NullLiteral is `null`.
type NullLiteral struct{ Position token.Position }

func (n *NullLiteral) Pos() token.Position { return n.Position }
func (n *NullLiteral) exprNode()           {}

// Identifier is a bare name reference.
type Identifier struct {
	Name     string
	Position token.Position
}

func (n *Identifier) Pos() token.Position { return n.Position }
func (n *Identifier) exprNode()           {}

// ObjectProperty is one `key: value` (or shorthand `key`) entry of an
// ObjectLiteral.
type ObjectProperty struct {
	Key       string
	Value     Expr // nil for shorthand `{x}` — evaluator looks up `x` in scope
	Shorthand bool
}

// ObjectLiteral is `{ key: value, ... }`.
type ObjectLiteral struct {
	Properties []ObjectProperty
	Position   token.Position
}

func (n *ObjectLiteral) Pos() token.Position { return n.Position }
func (n *ObjectLiteral) exprNode()           {}

// ArrayLiteral is `[ expr, ... ]`.
type ArrayLiteral struct {
	Elements []Expr
	Position token.Position
}

func (n *ArrayLiteral) Pos() token.Position { return n.Position }
func (n *ArrayLiteral) exprNode()           {}

// AssignmentExpr is `target = value`. Target must be an *Identifier
// (spec.md §4.5): `declare x; x = 1;`.
type AssignmentExpr struct {
	Target   *Identifier
	Value    Expr
	Position token.Position
}

func (n *AssignmentExpr) Pos() token.Position { return n.Position }
func (n *AssignmentExpr) exprNode()           {}

// BinaryExpr is `left OP right` for arithmetic/comparison/logical operators.
type BinaryExpr struct {
	Op       token.Kind
	Left     Expr
	Right    Expr
	Position token.Position
}

func (n *BinaryExpr) Pos() token.Position { return n.Position }
func (n *BinaryExpr) exprNode()           {}

// UnaryExpr is `! expr` or `- expr`.
type UnaryExpr struct {
	Op       token.Kind
	Operand  Expr
	Position token.Position
}

func (n *UnaryExpr) Pos() token.Position { return n.Position }
func (n *UnaryExpr) exprNode()           {}

// AwaitExpr is `await expr`.
type AwaitExpr struct {
	Value    Expr
	Position token.Position
}

func (n *AwaitExpr) Pos() token.Position { return n.Position }
func (n *AwaitExpr) exprNode()           {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee   Expr
	Args     []Expr
	Position token.Position
}

func (n *CallExpr) Pos() token.Position { return n.Position }
func (n *CallExpr) exprNode()           {}

// MemberExpr is `object.prop` (Computed=false) or `object[expr]` (Computed=true).
type MemberExpr struct {
	Object   Expr
	Prop     string // set when !Computed
	Index    Expr   // set when Computed
	Computed bool
	Position token.Position
}

func (n *MemberExpr) Pos() token.Position { return n.Position }
func (n *MemberExpr) exprNode()           {}

// MongoOperationExpr is `left OP right` for the DSL infix operators
// `<- ! !! ? ?? |>` (spec.md §4.7).
type MongoOperationExpr struct {
	Op       token.Kind
	Target   Expr
	Arg      Expr
	Position token.Position
}

func (n *MongoOperationExpr) Pos() token.Position { return n.Position }
func (n *MongoOperationExpr) exprNode()           {}

// MongoCondKind is a query-condition comparison operator.
type MongoCondKind int

const (
	CondEq MongoCondKind = iota
	CondNe
	CondLt
	CondLte
	CondGt
	CondGte
)

// MongoCond is one `field op value` clause of a `query { ... }` expression.
type MongoCond struct {
	Field string
	Op    MongoCondKind
	Value Expr
}

// MongoQueryExpr is `query { field op value, ... }`.
type MongoQueryExpr struct {
	Conditions []MongoCond
	Position   token.Position
}

func (n *MongoQueryExpr) Pos() token.Position { return n.Position }
func (n *MongoQueryExpr) exprNode()           {}

// MongoUpdateExpr is `target update [many] where filter set update [with opts]`.
type MongoUpdateExpr struct {
	Target   Expr
	Filter   Expr
	Update   Expr
	Options  Expr // nil if absent
	Many     bool
	Position token.Position
}

func (n *MongoUpdateExpr) Pos() token.Position { return n.Position }
func (n *MongoUpdateExpr) exprNode()           {}
