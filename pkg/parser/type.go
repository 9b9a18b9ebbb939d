package parser

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
)

func (p *Parser) parseType() (ast.Type, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return ast.Type{}, err
	}

	switch {
	case p.isSymbol(tok, lexer.SymParenLeft):
		return p.parseTupleType()
	case p.isSymbol(tok, lexer.SymBracketLeft):
		return p.parseArrayType()
	case tok.Lexeme.Kind == lexer.KindKeyword && tok.Lexeme.Keyword == lexer.KwBool:
		if _, err := p.next(); err != nil {
			return ast.Type{}, err
		}

		return ast.Type{Loc: tok.Location, Kind: ast.TypeKindBool}, nil
	case tok.Lexeme.Kind == lexer.KindKeyword && tok.Lexeme.Keyword == lexer.KwField:
		if _, err := p.next(); err != nil {
			return ast.Type{}, err
		}

		return ast.Type{Loc: tok.Location, Kind: ast.TypeKindField}, nil
	case tok.Lexeme.Kind == lexer.KindKeyword && tok.Lexeme.Keyword == lexer.KwIntegerType:
		if _, err := p.next(); err != nil {
			return ast.Type{}, err
		}

		word, _ := integerKeywordText(tok.Lexeme.Text)
		return ast.Type{Loc: tok.Location, Kind: ast.TypeKindInteger, IsSigned: word.IsSigned, Bitlength: word.Bitlength}, nil
	case tok.Lexeme.Kind == lexer.KindIdentifier:
		return p.parsePathType()
	default:
		return ast.Type{}, expectedType(tok)
	}
}

func integerKeywordText(text string) (lexer.IntegerTypeWord, bool) {
	return lexer.DecodeIntegerTypeWord(text)
}

func (p *Parser) parseTupleType() (ast.Type, *errors.Diagnostic) {
	open, err := p.expectSymbol(lexer.SymParenLeft)
	if err != nil {
		return ast.Type{}, err
	}

	var elements []ast.Type

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Type{}, err
		}

		if p.isSymbol(tok, lexer.SymParenRight) {
			break
		}

		elem, err := p.parseType()
		if err != nil {
			return ast.Type{}, err
		}

		elements = append(elements, elem)

		tok, err = p.peek(1)
		if err != nil {
			return ast.Type{}, err
		}

		if p.isSymbol(tok, lexer.SymComma) {
			if _, err := p.next(); err != nil {
				return ast.Type{}, err
			}

			continue
		}

		break
	}

	if _, err := p.expectSymbol(lexer.SymParenRight); err != nil {
		return ast.Type{}, err
	}

	if len(elements) == 0 {
		return ast.Type{Loc: open.Location, Kind: ast.TypeKindUnit}, nil
	}

	return ast.Type{Loc: open.Location, Kind: ast.TypeKindTuple, Elements: elements}, nil
}

func (p *Parser) parseArrayType() (ast.Type, *errors.Diagnostic) {
	open, err := p.expectSymbol(lexer.SymBracketLeft)
	if err != nil {
		return ast.Type{}, err
	}

	element, err := p.parseType()
	if err != nil {
		return ast.Type{}, err
	}

	if _, err := p.expectSymbol(lexer.SymSemicolon); err != nil {
		return ast.Type{}, err
	}

	size, err := p.parseExpression()
	if err != nil {
		return ast.Type{}, err
	}

	if _, err := p.expectSymbol(lexer.SymBracketRight); err != nil {
		return ast.Type{}, err
	}

	return ast.Type{Loc: open.Location, Kind: ast.TypeKindArray, Element: &element, Size: size}, nil
}

func (p *Parser) parsePathType() (ast.Type, *errors.Diagnostic) {
	name, loc, err := p.expectIdentifier()
	if err != nil {
		return ast.Type{}, err
	}

	path := []string{name}

	for {
		tok, err := p.peek(1)
		if err != nil {
			return ast.Type{}, err
		}

		if !p.isSymbol(tok, lexer.SymColonColon) {
			break
		}

		if _, err := p.next(); err != nil {
			return ast.Type{}, err
		}

		seg, _, err := p.expectIdentifier()
		if err != nil {
			return ast.Type{}, err
		}

		path = append(path, seg)
	}

	result := ast.Type{Loc: loc, Kind: ast.TypeKindPath, Path: path}

	tok, err := p.peek(1)
	if err != nil {
		return ast.Type{}, err
	}

	if p.isSymbol(tok, lexer.SymLess) {
		if _, err := p.next(); err != nil {
			return ast.Type{}, err
		}

		generics, err := p.parseGenericArgumentList()
		if err != nil {
			return ast.Type{}, err
		}

		result.Generics = generics
	}

	return result, nil
}

// parseGenericArgumentList parses a comma-separated list of types up to a
// closing `>`, implementing the `>>`-splitting rule of spec.md §4.3 item 5:
// a nested argument list (`Map<u8, Map<u8, u248>>`) lexes its closer as a
// single `>>` symbol, which the innermost call here must treat as "my `>`,
// then hand the outer `>` back to my caller".
func (p *Parser) parseGenericArgumentList() ([]ast.Type, *errors.Diagnostic) {
	var args []ast.Type

	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		if p.isSymbol(tok, lexer.SymGreater) || p.isSymbol(tok, lexer.SymGreaterGreater) || p.isSymbol(tok, lexer.SymGreaterGreaterEquals) {
			break
		}

		arg, err := p.parseType()
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

	if err := p.closeGenericArgumentList(); err != nil {
		return nil, err
	}

	return args, nil
}

// closeGenericArgumentList consumes a closing `>`. If the stream instead
// holds a lexed `>>` (or `>>=`) — which happens whenever a generic argument
// list is itself the last argument of an enclosing one, e.g.
// `Map<u8, Map<u8, u248>>` — it consumes that one token from the stream and
// stashes the remaining `>` (or `>=`) as p.pending, so the enclosing
// argument list's own call to closeGenericArgumentList sees a fresh `>`
// token next, per spec.md §4.3 item 5.
func (p *Parser) closeGenericArgumentList() *errors.Diagnostic {
	tok, err := p.peek(1)
	if err != nil {
		return err
	}

	if p.isSymbol(tok, lexer.SymGreater) {
		_, err := p.next()
		return err
	}

	if tok.Lexeme.Kind == lexer.KindSymbol {
		if first, second, ok := lexer.SplitNestedGreaterGreater(tok.Lexeme.Symbol); ok && first == lexer.SymGreater {
			if _, err := p.next(); err != nil {
				return err
			}

			loc := tok.Location.ShiftedRight(1)
			p.pending = &lexer.Token{
				Lexeme:   lexer.Lexeme{Kind: lexer.KindSymbol, Symbol: second, Text: second.String()},
				Location: loc,
			}

			return nil
		}
	}

	return expected(tok, []string{"`>`"}, "")
}
