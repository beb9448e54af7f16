package parser

import (
	"strconv"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// parseExpression enters the precedence chain at its lowest level:
// assignment.
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignExpr()
}

// parseAssignExpr parses `target = value`, otherwise falls through to the
// DSL layer. Assignment targets must be identifiers (spec.md §4.5).
func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	left, err := p.parseDSLLayer()
	if err != nil {
		return nil, err
	}
	if p.at(token.ASSIGN) {
		pos := p.eat().Pos
		ident, ok := left.(*ast.Identifier)
		if !ok {
			return nil, p.errorf(pos, "assignment target must be an identifier")
		}
		value, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpr{Target: ident, Value: value, Position: pos}, nil
	}
	return left, nil
}

// parseDSLLayer handles the infix DSL operators `<- ! !! ? ?? |>` and the
// postfix `update [many] where .. set .. [with ..]` construct, sitting just
// below assignment and above logical-or in precedence (spec.md §4.2).
func (p *Parser) parseDSLLayer() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	for isDSLOperator(p.cur().Kind) {
		op := p.eat()
		right, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		left = &ast.MongoOperationExpr{Op: op.Kind, Target: left, Arg: right, Position: op.Pos}
	}

	if p.at(token.UPDATE) {
		return p.parseUpdateExpr(left)
	}
	return left, nil
}

func isDSLOperator(kind token.Kind) bool {
	switch kind {
	case token.ARROW, token.BANG, token.BANG2, token.QUESTION, token.DBLQST, token.PIPE:
		return true
	}
	return false
}

// parseUpdateExpr parses `target update [many] where filter set update [with opts]`.
func (p *Parser) parseUpdateExpr(target ast.Expr) (ast.Expr, error) {
	pos := p.eat().Pos // `update`
	many := p.accept(token.MANY)
	if _, err := p.expect(token.WHERE, "after 'update'"); err != nil {
		return nil, err
	}
	var filter ast.Expr
	var err error
	if p.at(token.QUERY) {
		filter, err = p.parseQueryExpr()
	} else {
		filter, err = p.parseLogicalOr()
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET, "after the 'where' clause"); err != nil {
		return nil, err
	}
	update, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	expr := &ast.MongoUpdateExpr{Target: target, Filter: filter, Update: update, Many: many, Position: pos}
	if p.accept(token.WITH) {
		opts, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		expr.Options = opts
	}
	return expr, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OR) {
		op := p.eat()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.AND) {
		op := p.eat()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.EQ) || p.at(token.NEQ) {
		op := p.eat()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.LT) || p.at(token.LTE) || p.at(token.GT) || p.at(token.GTE) {
		op := p.eat()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.eat()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		op := p.eat()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, Position: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case token.BANG, token.MINUS:
		op := p.eat()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Kind, Operand: operand, Position: op.Pos}, nil
	case token.AWAIT:
		pos := p.eat().Pos
		value, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpr{Value: value, Position: pos}, nil
	}
	return p.parseCallOrMember()
}

func (p *Parser) parseCallOrMember() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.LPAREN:
			pos := p.eat().Pos
			var args []ast.Expr
			for !p.at(token.RPAREN) {
				arg, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.accept(token.COMMA) {
					break
				}
			}
			if _, err := p.expect(token.RPAREN, "to close a call's arguments"); err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Callee: expr, Args: args, Position: pos}
		case token.DOT:
			pos := p.eat().Pos
			name, err := p.expect(token.IDENT, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Object: expr, Prop: name.Lexeme, Position: pos}
		case token.LBRACKET:
			pos := p.eat().Pos
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "to close an index expression"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Object: expr, Index: index, Computed: true, Position: pos}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.NUMBER:
		p.eat()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid numeric literal %q", tok.Lexeme)
		}
		return &ast.NumericLiteral{Value: val, Position: tok.Pos}, nil
	case token.STRING:
		p.eat()
		return &ast.StringLiteral{Value: tok.Lexeme, Position: tok.Pos}, nil
	case token.TRUE:
		p.eat()
		return &ast.BooleanLiteral{Value: true, Position: tok.Pos}, nil
	case token.FALSE:
		p.eat()
		return &ast.BooleanLiteral{Value: false, Position: tok.Pos}, nil
	case token.NULL:
		p.eat()
		return &ast.NullLiteral{Position: tok.Pos}, nil
	case token.IDENT:
		p.eat()
		return &ast.Identifier{Name: tok.Lexeme, Position: tok.Pos}, nil
	case token.LPAREN:
		p.eat()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "to close a parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.QUERY:
		return p.parseQueryExpr()
	}
	return nil, p.errorf(tok.Pos, "unexpected token %s %q", tok.Kind, tok.Lexeme)
}

func (p *Parser) parseObjectLiteral() (ast.Expr, error) {
	pos := p.eat().Pos // `{`
	obj := &ast.ObjectLiteral{Position: pos}
	for !p.at(token.RBRACE) {
		key, err := p.expect(token.IDENT, "as an object literal key")
		if err != nil {
			return nil, err
		}
		if p.accept(token.COLON) {
			val, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, ast.ObjectProperty{Key: key.Lexeme, Value: val})
		} else {
			obj.Properties = append(obj.Properties, ast.ObjectProperty{Key: key.Lexeme, Shorthand: true})
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "to close an object literal"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	pos := p.eat().Pos // `[`
	arr := &ast.ArrayLiteral{Position: pos}
	for !p.at(token.RBRACKET) {
		el, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, el)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET, "to close an array literal"); err != nil {
		return nil, err
	}
	return arr, nil
}
