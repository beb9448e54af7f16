// Package parser implements a recursive-descent parser that turns a
// Datascript token stream into an *ast.Program. Parse errors are fatal:
// Parse returns the first one encountered and does not attempt recovery
// (spec.md §1 Non-goals).
package parser

import (
	"fmt"

	"github.com/dstanley-scripts/datascript/internal/ast"
	derrors "github.com/dstanley-scripts/datascript/internal/errors"
	"github.com/dstanley-scripts/datascript/internal/lexer"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// Parser holds one token of lookahead over a pre-scanned token slice.
type Parser struct {
	toks   []token.Token
	pos    int
	source string
	file   string
}

// New creates a Parser over an already-scanned token slice.
func New(toks []token.Token, source, file string) *Parser {
	return &Parser{toks: toks, source: source, file: file}
}

// Parse lexes src and parses it into a Program in one step.
func Parse(src, file string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(toks, src, file).ParseProgram()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) at(kind token.Kind) bool { return p.cur().Kind == kind }

// eat consumes and returns the current token unconditionally.
func (p *Parser) eat() token.Token {
	tok := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches kind, else fails fatally.
func (p *Parser) expect(kind token.Kind, context string) (token.Token, error) {
	if !p.at(kind) {
		return token.Token{}, p.errorf(p.cur().Pos, "expected %s %s, found %s %q",
			kind, context, p.cur().Kind, p.cur().Lexeme)
	}
	return p.eat(), nil
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return derrors.New(derrors.KindParse, pos, msg, p.source, p.file)
}

// accept consumes the current token if it matches kind and reports whether
// it did.
func (p *Parser) accept(kind token.Kind) bool {
	if p.at(kind) {
		p.eat()
		return true
	}
	return false
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{Position: p.cur().Pos}
	for !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// parseStatement dispatches on the leading keyword (spec.md §4.2).
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().Kind {
	case token.DECLARE:
		return p.parseVarDeclaration()
	case token.FUNC:
		return p.parseFunctionDeclaration()
	case token.CLASS, token.SCHEMA:
		return p.parseClassDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.TRY:
		return p.parseTryCatchStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.EXPORT:
		return p.parseExportDeclaration()
	case token.DATABASE:
		return p.parseDatabaseStatement()
	case token.COLLECTION:
		return p.parseCollectionStatement()
	case token.USE:
		return p.parseUseCollectionStatement()
	case token.USING:
		return p.parseUsingStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE, "to start a block"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE, "to close a block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseExprStatement() (ast.Stmt, error) {
	pos := p.cur().Pos
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.ExprStatement{Expr: expr, Position: pos}, nil
}

// parseTypeAnnotation parses `identifier ('[' ']')*`.
func (p *Parser) parseTypeAnnotation() (*ast.TypeAnnotation, error) {
	tok, err := p.expect(token.IDENT, "as a type name")
	if err != nil {
		return nil, err
	}
	ann := &ast.TypeAnnotation{Base: tok.Lexeme, Position: tok.Pos}
	for p.at(token.LBRACKET) {
		p.eat()
		if _, err := p.expect(token.RBRACKET, "to close an array type"); err != nil {
			return nil, err
		}
		ann.ArrayDepth++
	}
	return ann, nil
}

// parseParamList parses a parenthesized, comma-separated parameter list:
// `name [: Type] [= default]`.
func (p *Parser) parseParamList() ([]ast.Param, error) {
	if _, err := p.expect(token.LPAREN, "to start a parameter list"); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(token.RPAREN) {
		name, err := p.expect(token.IDENT, "as a parameter name")
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: name.Lexeme}
		if p.accept(token.COLON) {
			ann, err := p.parseTypeAnnotation()
			if err != nil {
				return nil, err
			}
			param.Annotation = ann
		}
		if p.accept(token.ASSIGN) {
			def, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "to close a parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}
