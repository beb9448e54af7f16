package parser

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/token"
)

func (p *Parser) parseIfStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	if _, err := p.expect(token.LPAREN, "after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "to close 'if' condition"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock []ast.Stmt
	if p.accept(token.ELSE) {
		if p.at(token.IF) {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			elseBlock = []ast.Stmt{nested}
		} else {
			elseBlock, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.IfStatement{Cond: cond, Then: then, Else: elseBlock, Position: pos}, nil
}

func (p *Parser) parseWhileStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	if _, err := p.expect(token.LPAREN, "after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "to close 'while' condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Cond: cond, Body: body, Position: pos}, nil
}

func (p *Parser) parseReturnStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	if p.at(token.SEMICOLON) || p.at(token.RBRACE) {
		p.accept(token.SEMICOLON)
		return &ast.ReturnStatement{Position: pos}, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.ReturnStatement{Value: val, Position: pos}, nil
}

func (p *Parser) parseBreakStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	p.accept(token.SEMICOLON)
	return &ast.BreakStatement{Position: pos}, nil
}

func (p *Parser) parseContinueStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	p.accept(token.SEMICOLON)
	return &ast.ContinueStatement{Position: pos}, nil
}

// parseTryCatchStatement parses `try { .. } catch [(name)] { .. }`. `catch`
// is mandatory after `try` (spec.md §4.2).
func (p *Parser) parseTryCatchStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	tryBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CATCH, "after a 'try' block"); err != nil {
		return nil, err
	}
	var param string
	if p.accept(token.LPAREN) {
		name, err := p.expect(token.IDENT, "as a catch parameter name")
		if err != nil {
			return nil, err
		}
		param = name.Lexeme
		if _, err := p.expect(token.RPAREN, "to close catch parameter"); err != nil {
			return nil, err
		}
	}
	catchBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.TryCatchStatement{Try: tryBlock, CatchParam: param, Catch: catchBlock, Position: pos}, nil
}

func (p *Parser) parseThrowStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.ThrowStatement{Value: val, Position: pos}, nil
}
