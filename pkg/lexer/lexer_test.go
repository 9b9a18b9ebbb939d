package lexer

import (
	"math/big"
	"testing"

	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/util/assert"
)

// collect runs src through a fresh Stream and returns every token up to and
// including the first Eof, failing the test on any diagnostic.
func collect(t *testing.T, src string) []Token {
	t.Helper()

	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(src))
	stream := NewStream(file, reg.Contents(file))

	var tokens []Token

	for {
		tok, err := stream.Next()
		if err != nil {
			t.Fatalf("unexpected lexical error: %s", err.Message)
		}

		tokens = append(tokens, tok)

		if tok.IsEof() {
			return tokens
		}
	}
}

func TestLexerEmptyInputIsJustEof(t *testing.T) {
	tokens := collect(t, "")

	if len(tokens) != 1 || !tokens[0].IsEof() {
		t.Fatalf("expected a single Eof token, got %v", tokens)
	}
}

func TestLexerSkipsWhitespaceAndEmitsComments(t *testing.T) {
	tokens := collect(t, "  \t\nlet // trailing comment\n  x")

	kinds := []Kind{KindKeyword, KindComment, KindIdentifier, KindEof}
	if len(tokens) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(tokens), tokens)
	}

	for i, k := range kinds {
		if tokens[i].Lexeme.Kind != k {
			t.Fatalf("token %d: expected kind %s, got %s", i, k, tokens[i].Lexeme.Kind)
		}
	}
}

func TestLexerKeywordVersusIdentifier(t *testing.T) {
	tokens := collect(t, "fn letter")

	assert.Equal(t, KindKeyword, tokens[0].Lexeme.Kind)
	assert.Equal(t, KwFn, tokens[0].Lexeme.Keyword)

	// "letter" has "let" as a prefix but must classify whole-word as an
	// identifier, not split into the KwLet keyword plus a trailing "ter".
	assert.Equal(t, KindIdentifier, tokens[1].Lexeme.Kind)
	assert.Equal(t, "letter", tokens[1].Lexeme.Text)
}

func TestLexerIntegerLiteralRadixes(t *testing.T) {
	cases := []struct {
		src  string
		base IntegerBase
		want int64
	}{
		{"0", BaseDecimal, 0},
		{"42", BaseDecimal, 42},
		{"0b101", BaseBinary, 5},
		{"0o17", BaseOctal, 15},
		{"0xFF", BaseHexadecimal, 255},
		{"1_000", BaseDecimal, 1000},
	}

	for _, c := range cases {
		tokens := collect(t, c.src)

		lex := tokens[0].Lexeme

		assert.Equal(t, KindLiteralInteger, lex.Kind, "%q: expected integer literal", c.src)
		assert.Equal(t, c.base, lex.IntegerBase, "%q: unexpected base", c.src)

		if lex.IntegerValue.Cmp(big.NewInt(c.want)) != 0 {
			t.Fatalf("%q: expected value %d, got %s", c.src, c.want, lex.IntegerValue)
		}
	}
}

func TestLexerRangeDotDotIsNotSwallowedByDecimal(t *testing.T) {
	tokens := collect(t, "0..4")

	want := []struct {
		kind Kind
		sym  Symbol
	}{
		{KindLiteralInteger, 0},
		{KindSymbol, SymDotDot},
		{KindLiteralInteger, 0},
		{KindEof, 0},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}

	for i, w := range want {
		if tokens[i].Lexeme.Kind != w.kind {
			t.Fatalf("token %d: expected kind %s, got %s", i, w.kind, tokens[i].Lexeme.Kind)
		}

		if w.kind == KindSymbol && tokens[i].Lexeme.Symbol != w.sym {
			t.Fatalf("token %d: expected symbol %s, got %s", i, w.sym, tokens[i].Lexeme.Symbol)
		}
	}
}

func TestLexerMultiCharSymbolsPreferLongestMatch(t *testing.T) {
	cases := []struct {
		src string
		sym Symbol
	}{
		{"->", SymArrow},
		{"=>", SymFatArrow},
		{"==", SymEqualsEquals},
		{"<<=", SymLessLessEquals},
		{"&&", SymAmpersandAmpersand},
	}

	for _, c := range cases {
		tokens := collect(t, c.src)

		if tokens[0].Lexeme.Kind != KindSymbol || tokens[0].Lexeme.Symbol != c.sym {
			t.Fatalf("%q: expected symbol %s, got %+v", c.src, c.sym, tokens[0].Lexeme)
		}

		if len(tokens) != 2 {
			t.Fatalf("%q: expected exactly one symbol then Eof, got %v", c.src, tokens)
		}
	}
}

func TestLexerStringLiteralStripsQuotes(t *testing.T) {
	tokens := collect(t, `"hello"`)

	lex := tokens[0].Lexeme
	if lex.Kind != KindLiteralString || lex.StringValue != "hello" {
		t.Fatalf("expected string literal \"hello\", got %+v", lex)
	}
}

func TestLexerBooleanLiteralsAreLiterals(t *testing.T) {
	tokens := collect(t, "true false")

	if tokens[0].Lexeme.Kind != KindLiteralBoolean || !tokens[0].Lexeme.BooleanValue {
		t.Fatalf("expected boolean literal true, got %+v", tokens[0].Lexeme)
	}

	if tokens[1].Lexeme.Kind != KindLiteralBoolean || tokens[1].Lexeme.BooleanValue {
		t.Fatalf("expected boolean literal false, got %+v", tokens[1].Lexeme)
	}
}

func TestLexerInvalidCharacterIsLexicalError(t *testing.T) {
	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune("let x = `"))
	stream := NewStream(file, reg.Contents(file))

	for i := 0; i < 3; i++ {
		if _, err := stream.Next(); err != nil {
			t.Fatalf("unexpected error on token %d: %s", i, err.Message)
		}
	}

	if _, err := stream.Next(); err == nil {
		t.Fatal("expected a lexical error for '`'")
	}
}

func TestLexerEofIsStickyOnceReached(t *testing.T) {
	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(""))
	stream := NewStream(file, reg.Contents(file))

	for i := 0; i < 3; i++ {
		tok, err := stream.Next()
		if err != nil {
			t.Fatalf("unexpected error: %s", err.Message)
		}

		if !tok.IsEof() {
			t.Fatalf("call %d: expected Eof, got %+v", i, tok)
		}
	}
}

func TestLexerLookAheadDoesNotConsume(t *testing.T) {
	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune("fn main"))
	stream := NewStream(file, reg.Contents(file))

	first, err := stream.LookAhead(1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Message)
	}

	second, err := stream.LookAhead(2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Message)
	}

	if first.Lexeme.Keyword != KwFn || second.Lexeme.Text != "main" {
		t.Fatalf("unexpected look-ahead tokens: %+v, %+v", first, second)
	}

	// LookAhead must not have consumed anything: Next() still returns "fn".
	next, err := stream.Next()
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Message)
	}

	if next.Lexeme.Keyword != KwFn {
		t.Fatalf("expected Next() to still return \"fn\" after LookAhead, got %+v", next)
	}
}
