package ast

import "github.com/dstanley-scripts/datascript/internal/token"

// VarDeclaration is `declare [const] name [= init];`.
type VarDeclaration struct {
	Name     string
	Const    bool
	Init     Expr // nil if no initializer
	Position token.Position
}

func (n *VarDeclaration) Pos() token.Position { return n.Position }
func (n *VarDeclaration) stmtNode()           {}

// FunctionDeclaration is `func name(params) { body }`.
type FunctionDeclaration struct {
	Name     string
	Params   []Param
	Body     []Stmt
	Position token.Position
}

func (n *FunctionDeclaration) Pos() token.Position { return n.Position }
func (n *FunctionDeclaration) stmtNode()           {}

// ClassMemberKind distinguishes field members from method members.
type ClassMemberKind int

const (
	FieldMember ClassMemberKind = iota
	MethodMember
)

// ClassField is a `[required|optional] name [: Type] [= init];` member.
type ClassField struct {
	Name       string
	Annotation *TypeAnnotation
	Required   bool
	Init       Expr
}

// ClassMethod is a `name(params) { body }` member.
type ClassMethod struct {
	Name   string
	Params []Param
	Body   []Stmt
}

// ClassDeclaration is `class|schema Name [extends Base] [create(params)] { members }`.
type ClassDeclaration struct {
	Name              string
	Base              string // "" if no base
	ConstructorParams []Param
	HasConstructor    bool
	Fields            []ClassField
	Methods           []ClassMethod
	Position          token.Position
}

func (n *ClassDeclaration) Pos() token.Position { return n.Position }
func (n *ClassDeclaration) stmtNode()           {}

// IfStatement is `if (cond) { then } [else { alt }]`.
type IfStatement struct {
	Cond       Expr
	Then       []Stmt
	Else       []Stmt // nil if no else clause
	Position   token.Position
}

func (n *IfStatement) Pos() token.Position { return n.Position }
func (n *IfStatement) stmtNode()           {}

// WhileStatement is `while (cond) { body }`.
type WhileStatement struct {
	Cond     Expr
	Body     []Stmt
	Position token.Position
}

func (n *WhileStatement) Pos() token.Position { return n.Position }
func (n *WhileStatement) stmtNode()           {}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	Value    Expr // nil for bare `return;`
	Position token.Position
}

func (n *ReturnStatement) Pos() token.Position { return n.Position }
func (n *ReturnStatement) stmtNode()           {}

// BreakStatement is `break;`.
type BreakStatement struct{ Position token.Position }

func (n *BreakStatement) Pos() token.Position { return n.Position }
func (n *BreakStatement) stmtNode()           {}

// ContinueStatement is `continue;`.
type ContinueStatement struct{ Position token.Position }

func (n *ContinueStatement) Pos() token.Position { return n.Position }
func (n *ContinueStatement) stmtNode()           {}

// TryCatchStatement is `try { Try } catch [(Param)] { Catch }`.
type TryCatchStatement struct {
	Try        []Stmt
	CatchParam string // "" if the catch clause omits a binding
	Catch      []Stmt
	Position   token.Position
}

func (n *TryCatchStatement) Pos() token.Position { return n.Position }
func (n *TryCatchStatement) stmtNode()           {}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	Value    Expr
	Position token.Position
}

func (n *ThrowStatement) Pos() token.Position { return n.Position }
func (n *ThrowStatement) stmtNode()           {}

// ExposedName is one member of an `exposing { a, b }` clause.
type ExposedName struct {
	Name  string
	Alias string // "" if not re-aliased (reserved for future use)
}

// ImportStatement is `import "specifier" [as name] [exposing {..}] [default name];`.
type ImportStatement struct {
	Specifier   string
	Namespace   string // "" if no `as name`
	Exposing    []ExposedName
	DefaultName string // "" if no `default name`
	Position    token.Position
}

func (n *ImportStatement) Pos() token.Position { return n.Position }
func (n *ImportStatement) stmtNode()           {}

// ExportDeclaration wraps a top-level declaration (or a bare default expr)
// that should be added to the module's export table.
type ExportDeclaration struct {
	IsDefault   bool
	Decl        Stmt // the wrapped declare/func/class, nil when DefaultExpr is set
	DefaultExpr Expr // used when `export default <expr>;`
	Position    token.Position
}

func (n *ExportDeclaration) Pos() token.Position { return n.Position }
func (n *ExportDeclaration) stmtNode()           {}

// DatabaseStatement is `database ident = expr;`.
type DatabaseStatement struct {
	Name     string
	Init     Expr
	Position token.Position
}

func (n *DatabaseStatement) Pos() token.Position { return n.Position }
func (n *DatabaseStatement) stmtNode()           {}

// CollectionStatement is `collection ident [= expr];`.
type CollectionStatement struct {
	Name     string
	Init     Expr // nil if absent
	Position token.Position
}

func (n *CollectionStatement) Pos() token.Position { return n.Position }
func (n *CollectionStatement) stmtNode()           {}

// UseCollectionStatement is `use collection ident [with expr];`.
type UseCollectionStatement struct {
	Name     string
	Options  Expr // nil if absent
	Position token.Position
}

func (n *UseCollectionStatement) Pos() token.Position { return n.Position }
func (n *UseCollectionStatement) stmtNode()           {}

// UsingStatement is `using mongo from uri [database db] [as alias] [with opts] { body }`.
type UsingStatement struct {
	URI      Expr
	Database Expr // nil if absent
	Alias    string // "" defaults to "db"
	Options  Expr   // nil if absent
	Body     []Stmt
	Position token.Position
}

func (n *UsingStatement) Pos() token.Position { return n.Position }
func (n *UsingStatement) stmtNode()           {}

// ExprStatement wraps an expression used in statement position.
type ExprStatement struct {
	Expr     Expr
	Position token.Position
}

func (n *ExprStatement) Pos() token.Position { return n.Position }
func (n *ExprStatement) stmtNode()           {}
