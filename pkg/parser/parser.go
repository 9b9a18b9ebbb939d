package parser

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
	"github.com/zinclang/zinc/pkg/source"
)

// Parser drives a lexer.Stream through the cascade of sub-parsers described
// in spec.md §4.2. Each sub-parser method follows the universal signature
// described there, adapted to Go: it consumes what it needs from p.stream
// and returns either a node or a *errors.Diagnostic; callers that need to
// peek beyond a production read p.peek() themselves rather than threading a
// trailing token explicitly, since Go gives every method direct access to
// the shared stream.
type Parser struct {
	stream *lexer.Stream
	file   source.FileID
	// pending holds a synthetic token injected ahead of the stream, used
	// solely by the `>>`-splitting rule of spec.md §4.3 item 5 (see
	// closeGenericArgumentList): when a nested generic argument list closes
	// on a lexed `>>`, the second `>` is stashed here for the enclosing
	// argument list to consume next, since the lexer itself has no rewind.
	pending *lexer.Token
}

// New constructs a Parser over a registered file's contents.
func New(file source.FileID, contents []rune) *Parser {
	return &Parser{stream: lexer.NewStream(file, contents), file: file}
}

// ParseModule parses an entire compilation unit (spec.md §6.1): a flat
// sequence of top-level statements/declarations, terminated by Eof.
func ParseModule(file source.FileID, contents []rune) (ast.Module, errors.List) {
	p := New(file, contents)

	var (
		items []ast.Statement
		diags errors.List
	)

	for {
		tok, err := p.peek(1)
		if err != nil {
			diags = append(diags, err)
			return ast.Module{File: file, Items: items}, diags
		}

		if tok.IsEof() {
			break
		}

		stmt, err := p.parseTopLevelStatement()
		if err != nil {
			diags = append(diags, err)
			return ast.Module{File: file, Items: items}, diags
		}

		items = append(items, stmt)
	}

	return ast.Module{File: file, Items: items}, diags
}

// --- token-stream helpers -------------------------------------------------

func (p *Parser) peek(k uint) (lexer.Token, *errors.Diagnostic) {
	if k == 1 && p.pending != nil {
		return *p.pending, nil
	}

	tok, err := p.stream.LookAhead(k)
	if err != nil {
		return lexer.Token{}, err
	}

	if tok.Lexeme.Kind == lexer.KindComment {
		// Comments never participate in grammar; splice them out by advancing
		// past them transparently. This keeps every sub-parser free of
		// comment-skipping logic, matching spec.md §4.1's "whitespace is
		// skipped" treatment (comments are skipped the same way once lexed).
		if _, err := p.stream.Next(); err != nil {
			return lexer.Token{}, err
		}

		return p.peek(k)
	}

	return tok, nil
}

func (p *Parser) next() (lexer.Token, *errors.Diagnostic) {
	if p.pending != nil {
		tok := *p.pending
		p.pending = nil

		return tok, nil
	}

	tok, err := p.peek(1)
	if err != nil {
		return lexer.Token{}, err
	}

	if _, err := p.stream.Next(); err != nil {
		return lexer.Token{}, err
	}

	return tok, nil
}

func (p *Parser) expectSymbol(sym lexer.Symbol) (lexer.Token, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return lexer.Token{}, err
	}

	if tok.Lexeme.Kind != lexer.KindSymbol || tok.Lexeme.Symbol != sym {
		return tok, expected(tok, []string{"`" + sym.String() + "`"}, "")
	}

	return p.next()
}

func (p *Parser) expectKeyword(kw lexer.Keyword) (lexer.Token, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return lexer.Token{}, err
	}

	if tok.Lexeme.Kind != lexer.KindKeyword || tok.Lexeme.Keyword != kw {
		return tok, expected(tok, []string{"keyword"}, "")
	}

	return p.next()
}

func (p *Parser) expectIdentifier() (string, source.Location, *errors.Diagnostic) {
	tok, err := p.peek(1)
	if err != nil {
		return "", source.Location{}, err
	}

	if tok.Lexeme.Kind != lexer.KindIdentifier {
		return "", tok.Location, expectedIdentifier(tok)
	}

	if _, err := p.next(); err != nil {
		return "", source.Location{}, err
	}

	return tok.Lexeme.Text, tok.Location, nil
}

func (p *Parser) isSymbol(tok lexer.Token, sym lexer.Symbol) bool {
	return tok.Lexeme.Kind == lexer.KindSymbol && tok.Lexeme.Symbol == sym
}

func (p *Parser) isKeyword(tok lexer.Token, kw lexer.Keyword) bool {
	return tok.Lexeme.Kind == lexer.KindKeyword && tok.Lexeme.Keyword == kw
}
