package parser

import (
	"fmt"
	"strings"

	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/lexer"
	"github.com/zinclang/zinc/pkg/source"
)

func spanOf(tok lexer.Token) source.Span {
	width := uint(len(tok.Lexeme.Text))
	if width == 0 {
		width = 1
	}

	return source.SingleToken(tok.Location, width)
}

// expected builds the `Expected{location, expected, found, hint}` diagnostic
// family of spec.md §4.2.
func expected(tok lexer.Token, wanted []string, hint string) *errors.Diagnostic {
	msg := fmt.Sprintf("expected %s, found %s", strings.Join(wanted, " or "), describe(tok))
	d := errors.New(errors.Syntax, "P0001", msg, spanOf(tok))

	if hint != "" {
		d.WithHint(hint)
	}

	return d
}

func expectedIdentifier(tok lexer.Token) *errors.Diagnostic {
	return errors.New(errors.Syntax, "P0002", fmt.Sprintf("expected identifier, found %s", describe(tok)), spanOf(tok)).
		WithHint("an identifier must start with a letter or underscore")
}

func expectedType(tok lexer.Token) *errors.Diagnostic {
	return errors.New(errors.Syntax, "P0003", fmt.Sprintf("expected type, found %s", describe(tok)), spanOf(tok))
}

func expectedBindingPattern(tok lexer.Token) *errors.Diagnostic {
	return errors.New(errors.Syntax, "P0004", fmt.Sprintf("expected binding pattern, found %s", describe(tok)), spanOf(tok))
}

func expectedLiteral(tok lexer.Token) *errors.Diagnostic {
	return errors.New(errors.Syntax, "P0005", fmt.Sprintf("expected literal, found %s", describe(tok)), spanOf(tok))
}

func unexpectedEnd(tok lexer.Token) *errors.Diagnostic {
	return errors.New(errors.Syntax, "P0006", "unexpected end of file", spanOf(tok))
}

func describe(tok lexer.Token) string {
	switch tok.Lexeme.Kind {
	case lexer.KindEof:
		return "end of file"
	case lexer.KindKeyword:
		return fmt.Sprintf("keyword `%s`", tok.Lexeme.Text)
	case lexer.KindSymbol:
		return fmt.Sprintf("`%s`", tok.Lexeme.Text)
	case lexer.KindIdentifier:
		return fmt.Sprintf("identifier `%s`", tok.Lexeme.Text)
	default:
		return tok.Lexeme.Kind.String()
	}
}
