package parser

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// parseImportStatement parses `import "specifier" [as name] [exposing {a,b}] [default name];`.
// The optional clauses may appear in either order after the specifier.
func (p *Parser) parseImportStatement() (ast.Stmt, error) {
	pos := p.eat().Pos
	spec, err := p.expect(token.STRING, "as an import specifier")
	if err != nil {
		return nil, err
	}
	imp := &ast.ImportStatement{Specifier: spec.Lexeme, Position: pos}

	for {
		switch {
		case p.accept(token.AS):
			name, err := p.expect(token.IDENT, "after 'as'")
			if err != nil {
				return nil, err
			}
			imp.Namespace = name.Lexeme
		case p.accept(token.EXPOSING):
			if _, err := p.expect(token.LBRACE, "after 'exposing'"); err != nil {
				return nil, err
			}
			for !p.at(token.RBRACE) {
				name, err := p.expect(token.IDENT, "in 'exposing' clause")
				if err != nil {
					return nil, err
				}
				imp.Exposing = append(imp.Exposing, ast.ExposedName{Name: name.Lexeme})
				if !p.accept(token.COMMA) {
					break
				}
			}
			if _, err := p.expect(token.RBRACE, "to close 'exposing' clause"); err != nil {
				return nil, err
			}
		case p.accept(token.DEFAULT):
			name, err := p.expect(token.IDENT, "after 'default'")
			if err != nil {
				return nil, err
			}
			imp.DefaultName = name.Lexeme
		default:
			p.accept(token.SEMICOLON)
			return imp, nil
		}
	}
}

// parseExportDeclaration parses `export` followed by a default expr/decl or
// a declaration (declare, func, class, schema). A specifier list
// (`export { a, b }`) is not accepted and is a parse error.
func (p *Parser) parseExportDeclaration() (ast.Stmt, error) {
	pos := p.eat().Pos

	if p.accept(token.DEFAULT) {
		switch p.cur().Kind {
		case token.FUNC, token.CLASS, token.SCHEMA:
			decl, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return &ast.ExportDeclaration{IsDefault: true, Decl: decl, Position: pos}, nil
		default:
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.accept(token.SEMICOLON)
			return &ast.ExportDeclaration{IsDefault: true, DefaultExpr: expr, Position: pos}, nil
		}
	}

	switch p.cur().Kind {
	case token.DECLARE, token.FUNC, token.CLASS, token.SCHEMA:
		decl, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.ExportDeclaration{Decl: decl, Position: pos}, nil
	}
	return nil, p.errorf(p.cur().Pos, "expected a declaration after 'export', found %s %q", p.cur().Kind, p.cur().Lexeme)
}
