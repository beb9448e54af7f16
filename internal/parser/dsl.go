package parser

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// parseDatabaseStatement parses `database ident = expr ;`.
func (p *Parser) parseDatabaseStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	name, err := p.expect(token.IDENT, "after 'database'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "in 'database' declaration"); err != nil {
		return nil, err
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	return &ast.DatabaseStatement{Name: name.Lexeme, Init: init, Position: pos}, nil
}

// parseCollectionStatement parses `collection ident [= expr] ;`.
func (p *Parser) parseCollectionStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	name, err := p.expect(token.IDENT, "after 'collection'")
	if err != nil {
		return nil, err
	}
	stmt := &ast.CollectionStatement{Name: name.Lexeme, Position: pos}
	if p.accept(token.ASSIGN) {
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	}
	p.accept(token.SEMICOLON)
	return stmt, nil
}

// parseUseCollectionStatement parses `use collection ident [with expr] ;`.
func (p *Parser) parseUseCollectionStatement() (ast.Stmt, error) {
	pos := p.eat().Pos // `use`
	if _, err := p.expect(token.COLLECTION, "after 'use'"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT, "after 'use collection'")
	if err != nil {
		return nil, err
	}
	stmt := &ast.UseCollectionStatement{Name: name.Lexeme, Position: pos}
	if p.accept(token.WITH) {
		opts, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Options = opts
	}
	p.accept(token.SEMICOLON)
	return stmt, nil
}

// parseUsingStatement parses
// `using mongo from uri [database db] [as alias] [with opts] { body }`.
// The three optional clauses may appear in any order.
func (p *Parser) parseUsingStatement() (ast.Stmt, error) {
	pos := p.eat().Pos // `using`
	if _, err := p.expect(token.MONGO, "after 'using'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FROM, "after 'using mongo'"); err != nil {
		return nil, err
	}
	uri, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	stmt := &ast.UsingStatement{URI: uri, Position: pos}

	for {
		switch {
		case p.accept(token.DATABASE):
			db, err := p.parseLogicalOr()
			if err != nil {
				return nil, err
			}
			stmt.Database = db
		case p.accept(token.AS):
			alias, err := p.expect(token.IDENT, "after 'as'")
			if err != nil {
				return nil, err
			}
			stmt.Alias = alias.Lexeme
		case p.accept(token.WITH):
			opts, err := p.parseLogicalOr()
			if err != nil {
				return nil, err
			}
			stmt.Options = opts
		default:
			goto afterClauses
		}
	}
afterClauses:
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// parseQueryExpr parses `query { field op value, ... }`.
func (p *Parser) parseQueryExpr() (ast.Expr, error) {
	pos := p.eat().Pos // `query`
	if _, err := p.expect(token.LBRACE, "after 'query'"); err != nil {
		return nil, err
	}
	q := &ast.MongoQueryExpr{Position: pos}
	for !p.at(token.RBRACE) {
		field, err := p.expect(token.IDENT, "as a query field name")
		if err != nil {
			return nil, err
		}
		opKind, err := p.parseCondOp()
		if err != nil {
			return nil, err
		}
		val, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		q.Conditions = append(q.Conditions, ast.MongoCond{Field: field.Lexeme, Op: opKind, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "to close a 'query' expression"); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseCondOp() (ast.MongoCondKind, error) {
	tok := p.cur()
	var kind ast.MongoCondKind
	switch tok.Kind {
	case token.EQ:
		kind = ast.CondEq
	case token.NEQ:
		kind = ast.CondNe
	case token.LT:
		kind = ast.CondLt
	case token.LTE:
		kind = ast.CondLte
	case token.GT:
		kind = ast.CondGt
	case token.GTE:
		kind = ast.CondGte
	default:
		return 0, p.errorf(tok.Pos, "expected a comparison operator in 'query', found %s %q", tok.Kind, tok.Lexeme)
	}
	p.eat()
	return kind, nil
}
