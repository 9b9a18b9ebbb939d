package parser

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
)

// parseExpression is the entry point of the precedence cascade described in
// spec.md §4.2: assignment → range → or → xor → and → comparison →
// bitwise-or → bitwise-xor → bitwise-and → bitwise-shift → add/sub →
// mul/div/rem → casting → access → terminal.
func (p *Parser) parseExpression() (ast.Expression, *errors.Diagnostic) {
	return p.parseAssignment(false)
}

// parseExpressionNoStruct behaves like parseExpression but forbids a bare
// structure literal at the top level, used for `if`/`match`/`for` scrutinees
// to resolve the `if value { … }` ambiguity of spec.md §9 ("Ambiguity:
// struct name followed by `{` in expression context").
func (p *Parser) parseExpressionNoStruct() (ast.Expression, *errors.Diagnostic) {
	return p.parseAssignment(true)
}

type binaryLevel struct {
	next func(noStruct bool) (ast.Expression, *errors.Diagnostic)
	ops  map[lexer.Symbol]ast.Operator
}

func assignmentOps() map[lexer.Symbol]ast.Operator {
	return map[lexer.Symbol]ast.Operator{
		lexer.SymEquals:               ast.OpAssign,
		lexer.SymPlusEquals:           ast.OpAssignAdd,
		lexer.SymMinusEquals:          ast.OpAssignSub,
		lexer.SymStarEquals:           ast.OpAssignMul,
		lexer.SymSlashEquals:          ast.OpAssignDiv,
		lexer.SymPercentEquals:        ast.OpAssignRem,
		lexer.SymAmpersandEquals:      ast.OpAssignBitAnd,
		lexer.SymPipeEquals:           ast.OpAssignBitOr,
		lexer.SymCaretEquals:          ast.OpAssignBitXor,
		lexer.SymLessLessEquals:       ast.OpAssignShl,
		lexer.SymGreaterGreaterEquals: ast.OpAssignShr,
	}
}

func (p *Parser) parseAssignment(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	left, err := p.parseRange(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	if op, ok := assignmentOps()[tok.Lexeme.Symbol]; ok && tok.Lexeme.Kind == lexer.KindSymbol {
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		right, err := p.parseAssignment(noStruct)
		if err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: left.Loc, Kind: ast.ExprKindOperator, Op: op, Left: &left, Right: &right}, nil
	}

	return left, nil
}

func (p *Parser) parseRange(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	left, err := p.parseOr(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	var op ast.Operator

	switch {
	case p.isSymbol(tok, lexer.SymDotDot):
		op = ast.OpRange
	case p.isSymbol(tok, lexer.SymDotDotEquals):
		op = ast.OpRangeInclusive
	default:
		return left, nil
	}

	if _, err := p.next(); err != nil {
		return ast.Expression{}, err
	}

	right, err := p.parseOr(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: left.Loc, Kind: ast.ExprKindOperator, Op: op, Left: &left, Right: &right}, nil
}

// binaryLeftAssoc implements one precedence level of the cascade: parse a
// left operand via `next`, then repeatedly eat a same-level operator via the
// ExpressionTreeBuilder, which guarantees left-associativity.
func (p *Parser) binaryLeftAssoc(noStruct bool, next func(bool) (ast.Expression, *errors.Diagnostic), ops map[lexer.Symbol]ast.Operator) (ast.Expression, *errors.Diagnostic) {
	first, err := next(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	builder := NewExpressionTreeBuilder(first)

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		op, ok := ops[tok.Lexeme.Symbol]
		if !ok || tok.Lexeme.Kind != lexer.KindSymbol {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		right, err := next(noStruct)
		if err != nil {
			return ast.Expression{}, err
		}

		builder.EatOperator(op, right)
	}

	return builder.Tree(), nil
}

func (p *Parser) parseOr(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseXor, map[lexer.Symbol]ast.Operator{lexer.SymPipePipe: ast.OpOr})
}

func (p *Parser) parseXor(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseAnd, map[lexer.Symbol]ast.Operator{lexer.SymCaretCaret: ast.OpXor})
}

func (p *Parser) parseAnd(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseComparison, map[lexer.Symbol]ast.Operator{lexer.SymAmpersandAmpersand: ast.OpAnd})
}

func (p *Parser) parseComparison(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseBitOr, map[lexer.Symbol]ast.Operator{
		lexer.SymEqualsEquals: ast.OpEq, lexer.SymBangEquals: ast.OpNe,
		lexer.SymLess: ast.OpLt, lexer.SymLessEquals: ast.OpLe,
		lexer.SymGreater: ast.OpGt, lexer.SymGreaterEquals: ast.OpGe,
	})
}

func (p *Parser) parseBitOr(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseBitXor, map[lexer.Symbol]ast.Operator{lexer.SymPipe: ast.OpBitOr})
}

func (p *Parser) parseBitXor(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseBitAnd, map[lexer.Symbol]ast.Operator{lexer.SymCaret: ast.OpBitXor})
}

func (p *Parser) parseBitAnd(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseShift, map[lexer.Symbol]ast.Operator{lexer.SymAmpersand: ast.OpBitAnd})
}

func (p *Parser) parseShift(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseAddSub, map[lexer.Symbol]ast.Operator{
		lexer.SymLessLess: ast.OpShl, lexer.SymGreaterGreater: ast.OpShr,
	})
}

func (p *Parser) parseAddSub(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseMulDivRem, map[lexer.Symbol]ast.Operator{
		lexer.SymPlus: ast.OpAdd, lexer.SymMinus: ast.OpSub,
	})
}

func (p *Parser) parseMulDivRem(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	return p.binaryLeftAssoc(noStruct, p.parseCast, map[lexer.Symbol]ast.Operator{
		lexer.SymStar: ast.OpMul, lexer.SymSlash: ast.OpDiv, lexer.SymPercent: ast.OpRem,
	})
}

func (p *Parser) parseCast(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	left, err := p.parseUnary(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		if !(tok.Lexeme.Kind == lexer.KindKeyword && tok.Lexeme.Keyword == lexer.KwAs) {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		target, err := p.parseType()
		if err != nil {
			return ast.Expression{}, err
		}

		leftCopy := left
		left = ast.Expression{Loc: leftCopy.Loc, Kind: ast.ExprKindOperator, Op: ast.OpCast, Left: &leftCopy, CastType: &target}
	}

	return left, nil
}

// parseUnary handles the prefix operators `-`, `!`, `~`, which spec.md's
// table folds into the cascade just above "access" (they bind tighter than
// any binary operator but must still be checked before descending to
// access/terminal parsing).
func (p *Parser) parseUnary(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	var op ast.Operator

	switch {
	case p.isSymbol(tok, lexer.SymMinus):
		op = ast.OpNeg
	case p.isSymbol(tok, lexer.SymBang):
		op = ast.OpNot
	case p.isSymbol(tok, lexer.SymTilde):
		op = ast.OpBitNot
	default:
		return p.parseAccess(noStruct)
	}

	if _, err := p.next(); err != nil {
		return ast.Expression{}, err
	}

	operand, err := p.parseUnary(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperator, Op: op, Left: &operand}, nil
}

// parseAccess handles postfix `.field`, `[index]`, and `(args)` call
// syntax, left-associatively.
func (p *Parser) parseAccess(noStruct bool) (ast.Expression, *errors.Diagnostic) {
	left, err := p.parseTerminal(noStruct)
	if err != nil {
		return ast.Expression{}, err
	}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Expression{}, err
		}

		switch {
		case p.isSymbol(tok, lexer.SymDot):
			if _, err := p.next(); err != nil {
				return ast.Expression{}, err
			}

			field, err := p.parseFieldSelector()
			if err != nil {
				return ast.Expression{}, err
			}

			leftCopy := left
			left = ast.Expression{Loc: leftCopy.Loc, Kind: ast.ExprKindOperator, Op: ast.OpField, Left: &leftCopy, Right: &field}
		case p.isSymbol(tok, lexer.SymBracketLeft):
			if _, err := p.next(); err != nil {
				return ast.Expression{}, err
			}

			index, err := p.parseExpression()
			if err != nil {
				return ast.Expression{}, err
			}

			if _, err := p.expectSymbol(lexer.SymBracketRight); err != nil {
				return ast.Expression{}, err
			}

			leftCopy := left
			left = ast.Expression{Loc: leftCopy.Loc, Kind: ast.ExprKindOperator, Op: ast.OpIndex, Left: &leftCopy, Right: &index}
		case p.isSymbol(tok, lexer.SymParenLeft):
			args, err := p.parseArgumentList()
			if err != nil {
				return ast.Expression{}, err
			}

			argList := ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandList, Elements: args}
			leftCopy := left
			left = ast.Expression{Loc: leftCopy.Loc, Kind: ast.ExprKindOperator, Op: ast.OpCall, Left: &leftCopy, Right: &argList}
		default:
			return left, nil
		}
	}
}

// parseFieldSelector parses either a named field (`.name`) or a tuple index
// (`.0`), both represented as an identifier-operand carrying the selector
// text, which pkg/semantic disambiguates by looking up the operand type.
func (p *Parser) parseFieldSelector() (ast.Expression, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Expression{}, err
	}

	switch tok.Lexeme.Kind {
	case lexer.KindIdentifier:
		name, loc, err := p.expectIdentifier()
		if err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandIdentifier, Path: []string{name}}, nil
	case lexer.KindLiteralInteger:
		if _, err := p.next(); err != nil {
			return ast.Expression{}, err
		}

		return ast.Expression{Loc: tok.Location, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral, Literal: ast.Literal{Kind: ast.LiteralInteger, IntegerText: tok.Lexeme.Text}}, nil
	default:
		return ast.Expression{}, expected(tok, []string{"field name", "tuple index"}, "")
	}
}

func (p *Parser) parseArgumentList() ([]ast.Expression, *errors.Diagnostic) {
	if _, err := p.expectSymbol(lexer.SymParenLeft); err != nil {
		return nil, err
	}

	var args []ast.Expression

	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymParenRight) {
			break
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

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

	if _, err := p.expectSymbol(lexer.SymParenRight); err != nil {
		return nil, err
	}

	return args, nil
}
