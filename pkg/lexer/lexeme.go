// Package lexer implements the tokenizer of spec.md §4.1: a token stream with
// a one-token (in practice, multi-token) look-ahead buffer, producing
// Keyword/Identifier/Literal/Symbol/Comment/Eof lexemes tagged with a precise
// source.Location. Modeled on the teacher's rule-dispatch scanner
// (pkg/util/source/lex/lexer.go) but hand-written per sub-parser, the way
// spec.md §4.1 describes ("hand-coded DFA", "state machine").
package lexer

import (
	"math/big"

	"github.com/zinclang/zinc/pkg/source"
)

// Kind tags the variant of a Lexeme.
type Kind uint

// The lexeme kinds of spec.md §3.2.
const (
	KindKeyword Kind = iota
	KindIdentifier
	KindLiteralBoolean
	KindLiteralInteger
	KindLiteralString
	KindSymbol
	KindComment
	KindEof
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindIdentifier:
		return "identifier"
	case KindLiteralBoolean:
		return "boolean literal"
	case KindLiteralInteger:
		return "integer literal"
	case KindLiteralString:
		return "string literal"
	case KindSymbol:
		return "symbol"
	case KindComment:
		return "comment"
	case KindEof:
		return "end of file"
	default:
		return "?"
	}
}

// IntegerBase records which lexical radix an integer literal was written in,
// since spec.md §3.2 requires the lexeme to preserve its lexical form.
type IntegerBase uint

// The four integer radixes recognised by spec.md §4.1.
const (
	BaseDecimal IntegerBase = iota
	BaseBinary
	BaseOctal
	BaseHexadecimal
)

// Lexeme is the tagged-union payload of a Token. Exactly one of the
// variant-specific fields is meaningful, selected by Kind.
type Lexeme struct {
	Kind Kind
	// Text is the literal source text of the lexeme (used for Identifier,
	// Symbol, Comment, and for re-rendering Keyword/Literal lexemes verbatim
	// in diagnostics).
	Text string
	// Keyword is populated when Kind == KindKeyword.
	Keyword Keyword
	// Symbol is populated when Kind == KindSymbol.
	Symbol Symbol
	// BooleanValue is populated when Kind == KindLiteralBoolean.
	BooleanValue bool
	// IntegerValue is populated when Kind == KindLiteralInteger.
	IntegerValue *big.Int
	// IntegerBase records the literal's lexical radix.
	IntegerBase IntegerBase
	// IsE18 marks a decimal literal written with the wei-sized `E18` exponent
	// suffix form of spec.md §3.2.
	IsE18 bool
	// StringValue is populated when Kind == KindLiteralString; it is the
	// literal's contents with the surrounding quotes stripped. Spec.md §4.1
	// defines no escape handling beyond the closing quote.
	StringValue string
}

// Token pairs a Lexeme with the Location at which it begins.
type Token struct {
	Lexeme   Lexeme
	Location source.Location
}

// IsEof reports whether this token is one of the infinite Eof tokens emitted
// once the stream is exhausted (spec.md §4.1: "never a stream-end error at
// EOF").
func (t Token) IsEof() bool {
	return t.Lexeme.Kind == KindEof
}
