package parser

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
	"github.com/zinclang/zinc/pkg/source"
)

// parseTerminal parses the lowest level of the precedence cascade: literals,
// paths/calls-to-be, parenthesised/tuple expressions, array literals, block
// expressions, `if`, `match`, and `dbg!`/`require!` built-ins.
func (p *Parser) parseTerminal(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	switch {
	case tok.Lexeme.Kind == lexer.KindLiteralBoolean:
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral,
			Literal: ast.Literal{Kind: ast.LiteralBoolean, BooleanValue: tok.Lexeme.BooleanValue}}, nil

	case tok.Lexeme.Kind == lexer.KindLiteralInteger:
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral,
			Literal: ast.Literal{Kind: ast.LiteralInteger, IntegerText: tok.Lexeme.Text}}, nil

	case tok.Lexeme.Kind == lexer.KindLiteralString:
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral,
			Literal: ast.Literal{Kind: ast.LiteralString, StringValue: tok.Lexeme.StringValue}}, nil

	case p.isSymbol(tok, lexer.SymParenLeft):
		return p.parseTupleOrParenExpr()

	case p.isSymbol(tok, lexer.SymBracketLeft):
		return p.parseArrayExpr()

	case p.isSymbol(tok, lexer.SymBraceLeft):
		return p.parseBlockExpr()

	case p.isKeyword(tok, lexer.KwIf):
		return p.parseIfExpr()

	case p.isKeyword(tok, lexer.KwMatch):
		return p.parseMatchExpr()

	case p.isKeyword(tok, lexer.KwDbg):
		return p.parseDbgExpr()

	case p.isKeyword(tok, lexer.KwRequire):
		return p.parseRequireExpr()

	case tok.Lexeme.Kind == lexer.KindIdentifier:
		return p.parsePathOrStructExpr(noStruct)

	default:
		return ast.Expression{}, expected(tok, []string{"expression"}, "")
	}
}

// parseTupleOrParenExpr disambiguates `(expr)` from `(e1, e2, ...)` and the
// unit literal `()`, per spec.md §3.5's tuple-operand description.
func (p *Parser) parseTupleOrParenExpr() (ast.Expression, *errors.Diagnostic) {
	open, err := p.expectSymbol(lexer.SymParenLeft)
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if p.isSymbol(tok, lexer.SymParenRight) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandTuple}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err = p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if p.isSymbol(tok, lexer.SymParenRight) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return first, nil
	}

	elements := []ast.Expression{first}

	for p.isSymbol(tok, lexer.SymComma) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymParenRight) {
			break
		}

		elem, err := p.parseExpression()
		if err != nil {
			return ast.Expression{}, err
		}

		elements = append(elements, elem)

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}
	}

	if _, err := p.expectSymbol(lexer.SymParenRight); err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandTuple, Elements: elements}, nil
}

// parseArrayExpr parses both `[e1, e2, ...]` and the repeat form `[value; N]`.
func (p *Parser) parseArrayExpr() (ast.Expression, *errors.Diagnostic) {
	open, err := p.expectSymbol(lexer.SymBracketLeft)
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if p.isSymbol(tok, lexer.SymBracketRight) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandArray}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err = p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if p.isSymbol(tok, lexer.SymSemicolon) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		size, err := p.parseExpression()
		if err != nil {
			return ast.Expression{}, err
		}

		if _, err := p.expectSymbol(lexer.SymBracketRight); err != nil {
			return ast.Expression{}, err
		}

		elem := first

		return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandArray,
			Elements: []ast.Expression{elem}, RepeatSize: &size}, nil
	}

	elements := []ast.Expression{first}

	for p.isSymbol(tok, lexer.SymComma) {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymBracketRight) {
			break
		}

		elem, err := p.parseExpression()
		if err != nil {
			return ast.Expression{}, err
		}

		elements = append(elements, elem)

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}
	}

	if _, err := p.expectSymbol(lexer.SymBracketRight); err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandArray, Elements: elements}, nil
}

// parseBlockExpr parses `{ stmt* tail? }`: a sequence of statements followed
// by an optional semicolon-omitted trailing expression, per spec.md §4.2's
// block-expression production.
func (p *Parser) parseBlockExpr() (ast.Expression, *errors.Diagnostic) {
	open, err := p.expectSymbol(lexer.SymBraceLeft)
	if err != nil {
		return ast.Expression{}, err
	}

	var (
		stmts []ast.Statement
		tail  *ast.Expression
	)

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		stmt, hadSemicolon, trailing, err := p.parseBlockStatement()
		if err != nil {
			return ast.Expression{}, err
		}

		if trailing != nil {
			tail = trailing
			break
		}

		stmt.SemicolonOmitted = !hadSemicolon
		stmts = append(stmts, stmt)
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: open.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandBlock, Statements: stmts, Tail: tail}, nil
}

// parseIfExpr parses `if cond { then } [else (if ... | { ... })]`, lowering
// directly to the Conditional operand shape (spec.md §4.3 item 1: `match` is
// the one lowered to this, `if` already has this shape natively).
func (p *Parser) parseIfExpr() (ast.Expression, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwIf)
	if err != nil {
		return ast.Expression{}, err
	}

	cond, err := p.parseExpressionNoStruct()
	if err != nil {
		return ast.Expression{}, err
	}

	then, err := p.parseBlockExpr()
	if err != nil {
		return ast.Expression{}, err
	}

	result := ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandConditional, Cond: &cond, Then: &then}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if !p.isKeyword(tok, lexer.KwElse) {
		return result, nil
	}

	if _, err := p.next(); err != nil {
		return ast.Expression{}, err
	}

	tok, err = p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	var elseExpr ast.Expression

	if p.isKeyword(tok, lexer.KwIf) {
		elseExpr, err = p.parseIfExpr()
	} else {
		elseExpr, err = p.parseBlockExpr()
	}

	if err != nil {
		return ast.Expression{}, err
	}

	result.Else = &elseExpr

	return result, nil
}

// parseMatchExpr parses `match scrutinee { pattern => expr, ... }`.
func (p *Parser) parseMatchExpr() (ast.Expression, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwMatch)
	if err != nil {
		return ast.Expression{}, err
	}

	scrutinee, err := p.parseExpressionNoStruct()
	if err != nil {
		return ast.Expression{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Expression{}, err
	}

	var arms []ast.MatchArm

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		arm, err := p.parseMatchArm()
		if err != nil {
			return ast.Expression{}, err
		}

		arms = append(arms, arm)

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Expression{}, err
			}
		}
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandMatch, Scrutinee: &scrutinee, Arms: arms}, nil
}

func (p *Parser) parseMatchArm() (ast.MatchArm, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.MatchArm{}, err
	}

	var pattern ast.MatchPattern

	switch {
	case tok.Lexeme.Kind == lexer.KindIdentifier && tok.Lexeme.Text == "_":
		if _, err := p.next(); err != nil {
			return ast.MatchArm{}, err
		}

		pattern = ast.MatchPattern{Kind: ast.PatternWildcard}

	case tok.Lexeme.Kind == lexer.KindLiteralInteger:
		if _, err := p.next(); err != nil {
			return ast.MatchArm{}, err
		}

		pattern = ast.MatchPattern{Kind: ast.PatternLiteral, Literal: ast.Literal{Kind: ast.LiteralInteger, IntegerText: tok.Lexeme.Text}}

	case tok.Lexeme.Kind == lexer.KindLiteralBoolean:
		if _, err := p.next(); err != nil {
			return ast.MatchArm{}, err
		}

		pattern = ast.MatchPattern{Kind: ast.PatternLiteral, Literal: ast.Literal{Kind: ast.LiteralBoolean, BooleanValue: tok.Lexeme.BooleanValue}}

	case tok.Lexeme.Kind == lexer.KindIdentifier:
		name, _, err := p.expectIdentifier()
		if err != nil {
			return ast.MatchArm{}, err
		}

		pattern = ast.MatchPattern{Kind: ast.PatternBinding, Name: name}

	default:
		return ast.MatchArm{}, expectedBindingPattern(tok)
	}

	if _, err := p.expectSymbol(lexer.SymFatArrow); err != nil {
		return ast.MatchArm{}, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return ast.MatchArm{}, err
	}

	return ast.MatchArm{Loc: tok.Location, Pattern: pattern, Body: body}, nil
}

// parseDbgExpr parses `dbg!("fmt", args...)`, spec.md §4.3 item 6.
func (p *Parser) parseDbgExpr() (ast.Expression, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwDbg)
	if err != nil {
		return ast.Expression{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBang); err != nil {
		return ast.Expression{}, err
	}

	args, err := p.parseArgumentList()
	if err != nil {
		return ast.Expression{}, err
	}

	callee := ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandIdentifier, Path: []string{"dbg"}}
	argList := ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandList, Elements: args}

	return ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperator, Op: ast.OpCall, Left: &callee, Right: &argList}, nil
}

// parseRequireExpr parses `require!(cond)`, a compile-time-checked runtime
// assertion lowered to a `Require` VM instruction by pkg/semantic.
func (p *Parser) parseRequireExpr() (ast.Expression, *errors.Diagnostic) {
	kw, err := p.expectKeyword(lexer.KwRequire)
	if err != nil {
		return ast.Expression{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBang); err != nil {
		return ast.Expression{}, err
	}

	args, err := p.parseArgumentList()
	if err != nil {
		return ast.Expression{}, err
	}

	callee := ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandIdentifier, Path: []string{"require"}}
	argList := ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandList, Elements: args}

	return ast.Expression{Loc: kw.Location, Kind: ast.ExprKindOperator, Op: ast.OpCall, Left: &callee, Right: &argList}, nil
}

// parsePathOrStructExpr parses `a::b::c`, and — unless noStruct forbids it —
// disambiguates a following `{` as a structure literal (spec.md §9's
// struct-vs-block ambiguity) rather than the start of a block.
func (p *Parser) parsePathOrStructExpr(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	name, loc, err := p.expectIdentifier()
	if err != nil {
		return ast.Expression{}, err
	}

	path := []string{name}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if !p.isSymbol(tok, lexer.SymColonColon) {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		seg, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Expression{}, err
		}

		path = append(path, seg)
	}

	if noStruct {
		return ast.Expression{Loc: loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandIdentifier, Path: path}, nil
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if !p.isSymbol(tok, lexer.SymBraceLeft) {
		return ast.Expression{Loc: loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandIdentifier, Path: path}, nil
	}

	return p.parseStructureLiteral(loc, path)
}

// parseStructureLiteral parses `Name { field: value, ... }`, where Name is
// the already-consumed path.
func (p *Parser) parseStructureLiteral(loc source.Location, path []string) (ast.Expression, *errors.Diagnostic) {
	if _, err := p.expectSymbol(lexer.SymBraceLeft); err != nil {
		return ast.Expression{}, err
	}

	var fields []ast.StructureField

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymBraceRight) {
			break
		}

		name, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Expression{}, err
		}

		if _, err := p.expectSymbol(lexer.SymColon); err != nil {
			return ast.Expression{}, err
		}

		value, err := p.parseExpression()
		if err != nil {
			return ast.Expression{}, err
		}

		fields = append(fields, ast.StructureField{Name: name, Value: value})

		tok, err = p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Expression{}, err
			}

			continue
		}

		break
	}

	if _, err := p.expectSymbol(lexer.SymBraceRight); err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandStructure, StructPath: path, Fields: fields}, nil
}
