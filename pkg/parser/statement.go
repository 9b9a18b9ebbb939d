package parser

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
)

// parseTopLevelStatement parses one item of a compilation unit: an optional
// attribute list followed by a declaration (spec.md §4.2's top-level
// grammar: fn/struct/enum/impl/mod/use/type/contract/const/static).
func (p *Parser) parseTopLevelStatement() (ast.Statement, *errors.Diagnostic) {
	attrs, err := p.parseAttributes()
	if err != nil {
		return ast.Statement{}, err
	}

	stmt, err := p.parseItemStatement()
	if err != nil {
		return ast.Statement{}, err
	}

	stmt.Attributes = attrs

	return stmt, nil
}

// parseAttributes parses a run of zero or more `#[...]` annotations
// preceding a declaration (spec.md §4.3 item 7).
func (p *Parser) parseAttributes() ([]ast.Attribute, *errors.Diagnostic) {
	var attrs []ast.Attribute

	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		if !p.isSymbol(tok, lexer.SymHash) {
			break
		}

		attr, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, attr)
	}

	return attrs, nil
}

func (p *Parser) parseAttribute() (ast.Attribute, *errors.Diagnostic) {
	hash, err := p.expectSymbol(lexer.SymHash)
	if err != nil {
		return ast.Attribute{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBracketLeft); err != nil {
		return ast.Attribute{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Attribute{}, err
	}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Attribute{}, err
		}

		if !p.isSymbol(tok, lexer.SymColonColon) {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Attribute{}, err
		}

		seg, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Attribute{}, err
		}

		name = name + "::" + seg
	}

	var fields []ast.AttributeField

	tok, err := p.peek(1)
	if err != nil {
		return ast.Attribute{}, err
	}

	if p.isSymbol(tok, lexer.SymParenLeft) {
		if _, err := p.next(); err != nil {
			return ast.Attribute{}, err
		}

		for {
			tok, err := p.peek(1)
			if err != nil {
				return ast.Attribute{}, err
			}

			if p.isSymbol(tok, lexer.SymParenRight) {
				break
			}

			key, _, err := p.expectIdentifier()
			if err != nil {
				return ast.Attribute{}, err
			}

			if _, err := p.expectSymbol(lexer.SymEquals); err != nil {
				return ast.Attribute{}, err
			}

			value, err := p.parseExpression()
			if err != nil {
				return ast.Attribute{}, err
			}

			fields = append(fields, ast.AttributeField{Key: key, Value: value})

			tok, err = p.peek(1)
			if err != nil {
				return ast.Attribute{}, err
			}

			if p.isSymbol(tok, lexer.SymComma) {
				if _, err := p.next(); err != nil {
					return ast.Attribute{}, err
				}

				continue
			}

			break
		}

		if _, err := p.expectSymbol(lexer.SymParenRight); err != nil {
			return ast.Attribute{}, err
		}
	}

	if _, err := p.expectSymbol(lexer.SymBracketRight); err != nil {
		return ast.Attribute{}, err
	}

	return ast.Attribute{Loc: hash.Location, Name: name, Fields: fields}, nil
}

// parseItemStatement dispatches on the next keyword to one of the
// declaration forms. Shared between top-level and block-local item
// declarations (spec.md permits `fn`/`struct`/etc. nested in a block).
func (p *Parser) parseItemStatement() (ast.Statement, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	isPublic := false

	if p.isKeyword(tok, lexer.KwPub) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		isPublic = true

		tok, err = p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}
	}

	switch {
	case p.isKeyword(tok, lexer.KwFn):
		return p.parseFnDecl(isPublic, false)
	case p.isKeyword(tok, lexer.KwConst):
		return p.parseConstOrConstFnDecl(isPublic)
	case p.isKeyword(tok, lexer.KwStatic):
		return p.parseStaticDecl(isPublic)
	case p.isKeyword(tok, lexer.KwStruct):
		return p.parseStructDecl(isPublic)
	case p.isKeyword(tok, lexer.KwEnum):
		return p.parseEnumDecl(isPublic)
	case p.isKeyword(tok, lexer.KwImpl):
		return p.parseImplDecl()
	case p.isKeyword(tok, lexer.KwMod):
		return p.parseModDecl()
	case p.isKeyword(tok, lexer.KwUse):
		return p.parseUseDecl()
	case p.isKeyword(tok, lexer.KwType):
		return p.parseTypeAliasDecl(isPublic)
	case p.isKeyword(tok, lexer.KwContract):
		return p.parseContractDecl()
	default:
		return ast.Statement{}, expected(tok, []string{
			"`fn`", "`const`", "`static`", "`struct`", "`enum`", "`impl`", "`mod`", "`use`", "`type`", "`contract`",
		}, "")
	}
}

// parseBlockStatement parses one element of a block body: either an item
// declaration, a `let`/`for`/`while` statement, or an expression statement.
// The last of these returns trailing != nil if no semicolon follows and the
// block closes immediately after, making the parsed expression the block's
// tail value (spec.md §3.5's "semicolon-omitted trailing expression").
func (p *Parser) parseBlockStatement() (stmt ast.Statement, hadSemicolon bool, trailing *ast.Expression, err *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, false, nil, err
	}

	switch {
	case p.isKeyword(tok, lexer.KwLet):
		stmt, err = p.parseLetDecl()
	case p.isKeyword(tok, lexer.KwFor):
		stmt, err = p.parseForDecl()
	case p.isKeyword(tok, lexer.KwWhile):
		stmt, err = p.parseWhileDecl()
	case p.isKeyword(tok, lexer.KwReturn):
		stmt, err = p.parseReturnDecl()
	case p.isKeyword(tok, lexer.KwFn), p.isKeyword(tok, lexer.KwConst), p.isKeyword(tok, lexer.KwStatic),
		p.isKeyword(tok, lexer.KwStruct), p.isKeyword(tok, lexer.KwEnum), p.isKeyword(tok, lexer.KwImpl),
		p.isKeyword(tok, lexer.KwMod), p.isKeyword(tok, lexer.KwUse), p.isKeyword(tok, lexer.KwType),
		p.isKeyword(tok, lexer.KwContract), p.isKeyword(tok, lexer.KwPub):
		stmt, err = p.parseItemStatement()
	default:
		expr, perr := p.parseExpression()
		if perr != nil {
			return ast.Statement{}, false, nil, perr
		}

		next, perr := p.peek(1)
		if perr != nil {
			return ast.Statement{}, false, nil, perr
		}

		if p.isSymbol(next, lexer.SymSemicolon) {
			if _, perr := p.next(); perr != nil {
				return ast.Statement{}, false, nil, perr
			}

			return ast.Statement{Loc: expr.Loc, Kind: ast.StmtExpr, Expr: &expr}, true, nil, nil
		}

		if p.isSymbol(next, lexer.SymBraceRight) {
			return ast.Statement{}, false, &expr, nil
		}

		return ast.Statement{Loc: expr.Loc, Kind: ast.StmtExpr, Expr: &expr}, false, nil, nil
	}

	if err != nil {
		return ast.Statement{}, false, nil, err
	}

	next, perr := p.peek(1)
	if perr != nil {
		return ast.Statement{}, false, nil, perr
	}

	if p.isSymbol(next, lexer.SymSemicolon) {
		if _, perr := p.next(); perr != nil {
			return ast.Statement{}, false, nil, perr
		}

		hadSemicolon = true
	}

	return stmt, hadSemicolon, nil, nil
}

func (p *Parser) parseLetDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwLet)
	if err != nil {
		return ast.Statement{}, err
	}

	isMutable := false

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isKeyword(tok, lexer.KwMut) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		isMutable = true
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	var declType *ast.Type

	tok, err = p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isSymbol(tok, lexer.SymColon) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		t, err := p.parseType()
		if err != nil {
			return ast.Statement{}, err
		}

		declType = &t
	}

	if _, err := p.expectSymbol(lexer.SymEquals); err != nil {
		return ast.Statement{}, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtLet, Name: name, IsMutable: isMutable, DeclaredType: declType, Value: &value}, nil
}

func (p *Parser) parseConstOrConstFnDecl(isPublic bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwConst)
	if err != nil {
		return ast.Statement{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isKeyword(tok, lexer.KwFn) {
		stmt, err := p.parseFnDecl(isPublic, false)
		if err != nil {
			return ast.Statement{}, err
		}

		stmt.Loc = kw.Location
		stmt.IsConstFn = true

		return stmt, nil
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymColon); err != nil {
		return ast.Statement{}, err
	}

	t, err := p.parseType()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymEquals); err != nil {
		return ast.Statement{}, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtConst, Name: name, DeclaredType: &t, Value: &value, IsPublic: isPublic}, nil
}

func (p *Parser) parseStaticDecl(isPublic bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwStatic)
	if err != nil {
		return ast.Statement{}, err
	}

	isMutable := false

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isKeyword(tok, lexer.KwMut) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		isMutable = true
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymColon); err != nil {
		return ast.Statement{}, err
	}

	t, err := p.parseType()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymEquals); err != nil {
		return ast.Statement{}, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtStatic, Name: name, IsMutable: isMutable, DeclaredType: &t, Value: &value, IsPublic: isPublic}, nil
}

// parseForDecl parses both bounded-range loops (`for i in a..b { }`,
// spec.md §4.2's total-loop form) and the array-iteration sugar of
// SPEC_FULL.md §4 item 3 (`for x in array { }`), either one optionally
// followed by a `while cond` clause before the body.
func (p *Parser) parseForDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwFor)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectKeyword(lexer.KwIn); err != nil {
		return ast.Statement{}, err
	}

	source, err := p.parseExpressionNoStruct()
	if err != nil {
		return ast.Statement{}, err
	}

	var whileCond *ast.Expression

	if tok, err := p.peek(1); err != nil {
		return ast.Statement{}, err
	} else if p.isKeyword(tok, lexer.KwWhile) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		cond, err := p.parseExpressionNoStruct()
		if err != nil {
			return ast.Statement{}, err
		}

		whileCond = &cond
	}

	body, err := p.parseBlockExpr()
	if err != nil {
		return ast.Statement{}, err
	}

	stmt := ast.Statement{Loc: kw.Location, Kind: ast.StmtFor, LoopVar: name, WhileCond: whileCond, Body: &body}

	if source.Kind == ast.ExprKindOperator && (source.Op == ast.OpRange || source.Op == ast.OpRangeInclusive) {
		stmt.RangeStart = source.Left
		stmt.RangeEnd = source.Right

		if source.Op == ast.OpRangeInclusive {
			// Normalise `a..=b` to the exclusive form by bumping the bound, so
			// pkg/semantic only ever has to reason about one range shape.
			one := ast.Expression{Loc: source.Loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral,
				Literal: ast.Literal{Kind: ast.LiteralInteger, IntegerText: "1"}}
			bumped := ast.Expression{Loc: source.Loc, Kind: ast.ExprKindOperator, Op: ast.OpAdd, Left: source.Right, Right: &one}
			stmt.RangeEnd = &bumped
		}

		return stmt, nil
	}

	stmt.RangeIsArray = true
	stmt.ArrayExpr = &source

	return stmt, nil
}

// parseWhileDecl parses `while cond { }`, which pkg/semantic requires to
// carry a compile-time-provable iteration bound (spec.md's total-loop
// invariant); the parser itself imposes no bound.
func (p *Parser) parseWhileDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwWhile)
	if err != nil {
		return ast.Statement{}, err
	}

	cond, err := p.parseExpressionNoStruct()
	if err != nil {
		return ast.Statement{}, err
	}

	body, err := p.parseBlockExpr()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtFor, WhileCond: &cond, Body: &body}, nil
}

// parseReturnDecl parses `return [expr];`. pkg/semantic emits no instruction
// of its own for it: the value is left on the stack for the function's
// epilogue, like a block's tail expression, and is not checked against the
// declared return type on its own (see lowerStmt).
func (p *Parser) parseReturnDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwReturn)
	if err != nil {
		return ast.Statement{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isSymbol(tok, lexer.SymSemicolon) {
		return ast.Statement{Loc: kw.Location, Kind: ast.StmtReturn}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtReturn, Value: &value}, nil
}

func (p *Parser) parseFnDecl(isPublic, isConst bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwFn)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	generics, err := p.parseOptionalGenericParams()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymParenLeft); err != nil {
		return ast.Statement{}, err
	}

	var params []ast.Param

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymParenRight) {
			break
		}

		pname, ploc, err := p.expectIdentifier()
		if err != nil {
			return ast.Statement{}, err
		}

		if _, err := p.expectSymbol(lexer.SymColon); err != nil {
			return ast.Statement{}, err
		}

		ptype, err := p.parseType()
		if err != nil {
			return ast.Statement{}, err
		}

		params = append(params, ast.Param{Loc: ploc, Name: pname, Type: ptype})

		tok, err = p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Statement{}, err
			}

			continue
		}

		break
	}

	if _, err := p.expectSymbol(lexer.SymParenRight); err != nil {
		return ast.Statement{}, err
	}

	var retType *ast.Type

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isSymbol(tok, lexer.SymArrow) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		t, err := p.parseType()
		if err != nil {
			return ast.Statement{}, err
		}

		retType = &t
	}

	body, err := p.parseBlockExpr()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{
		Loc: kw.Location, Kind: ast.StmtFn, Name: name, IsPublic: isPublic, IsConstFn: isConst,
		Generics: generics, Params: params, ReturnType: retType, FnBody: &body,
	}, nil
}

func (p *Parser) parseOptionalGenericParams() ([]ast.GenericParam, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}

	if !p.isSymbol(tok, lexer.SymLess) {
		return nil, nil
	}

	if _, err := p.next(); err != nil {
		return nil, err
	}

	var generics []ast.GenericParam

	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymGreater) {
			break
		}

		name, loc, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}

		generics = append(generics, ast.GenericParam{Loc: loc, Name: name})

		tok, err = p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return nil, err
			}

			continue
		}

		break
	}

	if err := p.closeGenericArgumentList(); err != nil {
		return nil, err
	}

	return generics, nil
}

func (p *Parser) parseStructDecl(isPublic bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwStruct)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	fields, err := p.parseFieldList()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtStruct, Name: name, IsPublic: isPublic, Fields: fields}, nil
}

func (p *Parser) parseFieldList() ([]ast.Field, *errors.Diagnostic) {
	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return nil, err
	}

	var fields []ast.Field

	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		name, loc, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectSymbol(lexer.SymColon); err != nil {
			return nil, err
		}

		t, err := p.parseType()
		if err != nil {
			return nil, err
		}

		fields = append(fields, ast.Field{Loc: loc, Name: name, Type: t})

		tok, err = p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return nil, err
			}

			continue
		}

		break
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return nil, err
	}

	return fields, nil
}

func (p *Parser) parseEnumDecl(isPublic bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwEnum)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	var bitlength uint

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isSymbol(tok, lexer.SymColon) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		t, err := p.parseType()
		if err != nil {
			return ast.Statement{}, err
		}

		bitlength = t.Bitlength
	}

	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Statement{}, err
	}

	var variants []ast.EnumVariant

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		vname, vloc, err := p.expectIdentifier()
		if err != nil {
			return ast.Statement{}, err
		}

		var value *ast.Expression

		tok, err = p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymEquals) {
			if _, err := p.next(); err != nil {
				return ast.Statement{}, err
			}

			v, err := p.parseExpression()
			if err != nil {
				return ast.Statement{}, err
			}

			value = &v
		}

		variants = append(variants, ast.EnumVariant{Loc: vloc, Name: vname, Value: value})

		tok, err = p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Statement{}, err
			}

			continue
		}

		break
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtEnum, Name: name, IsPublic: isPublic, EnumBitlength: bitlength, Variants: variants}, nil
}

func (p *Parser) parseImplDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwImpl)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Statement{}, err
	}

	var items []ast.Statement

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		item, err := p.parseTopLevelStatement()
		if err != nil {
			return ast.Statement{}, err
		}

		items = append(items, item)
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtImpl, ImplTarget: name, ImplItems: items}, nil
}

func (p *Parser) parseModDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwMod)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Statement{}, err
	}

	var items []ast.Statement

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		item, err := p.parseTopLevelStatement()
		if err != nil {
			return ast.Statement{}, err
		}

		items = append(items, item)
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtMod, ModName: name, ModItems: items}, nil
}

func (p *Parser) parseUseDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwUse)
	if err != nil {
		return ast.Statement{}, err
	}

	first, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	path := []string{first}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if !p.isSymbol(tok, lexer.SymColonColon) {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		seg, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Statement{}, err
		}

		path = append(path, seg)
	}

	var alias string

	tok, err := p.peek(1)
	if err != nil {
		return ast.Statement{}, err
	}

	if p.isKeyword(tok, lexer.KwAs) {
		if _, err := p.next(); err != nil {
			return ast.Statement{}, err
		}

		a, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Statement{}, err
		}

		alias = a
	}

	if _, err := p.expectSymbol(lexer.SymSemicolon); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtUse, UsePath: path, UseAlias: alias}, nil
}

func (p *Parser) parseTypeAliasDecl(isPublic bool) (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwType)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymEquals); err != nil {
		return ast.Statement{}, err
	}

	target, err := p.parseType()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymSemicolon); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtType, Name: name, IsPublic: isPublic, AliasTarget: target}, nil
}

// parseContractDecl parses the `contract Name { fields... methods... }` form
// of SPEC_FULL.md §4 item 2, including the implicit constructor of item 4:
// a method named `new` is its constructor, enforced by pkg/semantic rather
// than the parser.
func (p *Parser) parseContractDecl() (ast.Statement, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwContract)
	if err != nil {
		return ast.Statement{}, err
	}

	name, _, err := p.expectIdentifier()
	if err != nil {
		return ast.Statement{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Statement{}, err
	}

	var (
		fields  []ast.Field
		methods []ast.Statement
	)

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		if p.isKeyword(tok, lexer.KwPub) || p.isKeyword(tok, lexer.KwFn) || p.isSymbol(tok, lexer.SymHash) {
			method, err := p.parseTopLevelStatement()
			if err != nil {
				return ast.Statement{}, err
			}

			methods = append(methods, method)

			continue
		}

		fname, floc, err := p.expectIdentifier()
		if err != nil {
			return ast.Statement{}, err
		}

		if _, err := p.expectSymbol(lexer.SymColon); err != nil {
			return ast.Statement{}, err
		}

		ftype, err := p.parseType()
		if err != nil {
			return ast.Statement{}, err
		}

		fields = append(fields, ast.Field{Loc: floc, Name: fname, Type: ftype})

		tok, err = p.peek(1)
		if err != nil {
			return ast.Statement{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Statement{}, err
			}
		}
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Loc: kw.Location, Kind: ast.StmtContract, ContractName: name, ContractFields: fields, ContractMethods: methods}, nil
}
