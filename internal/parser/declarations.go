package parser

import (
	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/token"
)

// parseVarDeclaration parses `declare [const] name [= expr] ;`.
func (p *Parser) parseVarDeclaration() (ast.Stmt, error) {
	pos := p.eat().Pos // `declare`
	isConst := p.accept(token.CONST)

	name, err := p.expect(token.IDENT, "after 'declare'")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.accept(token.ASSIGN) {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if isConst {
		return nil, p.errorf(pos, "'const' declaration of %q requires an initializer", name.Lexeme)
	}
	p.accept(token.SEMICOLON)

	return &ast.VarDeclaration{Name: name.Lexeme, Const: isConst, Init: init, Position: pos}, nil
}

// parseFunctionDeclaration parses `func name(params) { body }`.
func (p *Parser) parseFunctionDeclaration() (ast.Stmt, error) {
	pos := p.eat().Pos // `func`
	name, err := p.expect(token.IDENT, "as a function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{Name: name.Lexeme, Params: params, Body: body, Position: pos}, nil
}

// parseClassDeclaration parses `class|schema Name [extends Base] [create(params)] { member* }`.
func (p *Parser) parseClassDeclaration() (ast.Stmt, error) {
	pos := p.eat().Pos // `class` or `schema`
	name, err := p.expect(token.IDENT, "as a class name")
	if err != nil {
		return nil, err
	}

	decl := &ast.ClassDeclaration{Name: name.Lexeme, Position: pos}

	if p.accept(token.EXTENDS) {
		base, err := p.expect(token.IDENT, "after 'extends'")
		if err != nil {
			return nil, err
		}
		decl.Base = base.Lexeme
	}

	if p.at(token.CREATE) {
		p.eat()
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		decl.ConstructorParams = params
		decl.HasConstructor = true
	}

	if _, err := p.expect(token.LBRACE, "to start class members"); err != nil {
		return nil, err
	}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if err := p.parseClassMember(decl); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE, "to close class members"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseClassMember parses one field or method member and appends it to decl.
// A leading `required`/`optional` forces the field's Required flag;
// otherwise Required defaults to "initializer absent" once the member is
// fully parsed. A member followed by '(' is a method.
func (p *Parser) parseClassMember(decl *ast.ClassDeclaration) error {
	var forced *bool
	if p.at(token.REQUIRED) {
		p.eat()
		t := true
		forced = &t
	} else if p.at(token.OPTIONAL) {
		p.eat()
		f := false
		forced = &f
	}

	name, err := p.expect(token.IDENT, "as a class member name")
	if err != nil {
		return err
	}

	if p.at(token.LPAREN) {
		params, err := p.parseParamList()
		if err != nil {
			return err
		}
		body, err := p.parseBlock()
		if err != nil {
			return err
		}
		decl.Methods = append(decl.Methods, ast.ClassMethod{Name: name.Lexeme, Params: params, Body: body})
		return nil
	}

	field := ast.ClassField{Name: name.Lexeme}
	if p.accept(token.COLON) {
		ann, err := p.parseTypeAnnotation()
		if err != nil {
			return err
		}
		field.Annotation = ann
	}
	if p.accept(token.ASSIGN) {
		init, err := p.parseExpression()
		if err != nil {
			return err
		}
		field.Init = init
	}
	p.accept(token.SEMICOLON)

	if forced != nil {
		field.Required = *forced
	} else {
		field.Required = field.Init == nil
	}
	decl.Fields = append(decl.Fields, field)
	return nil
}
