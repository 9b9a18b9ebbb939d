package lexer

// Keyword enumerates the closed set of reserved words of spec.md §4.1.
type Keyword uint

// The keyword set: control/item keywords, then the type keywords
// (bool, u8..u248, i8..i248, field), then the intrinsics.
const (
	KwFn Keyword = iota
	KwLet
	KwMut
	KwIf
	KwElse
	KwFor
	KwIn
	KwWhile
	KwMatch
	KwAs
	KwStruct
	KwEnum
	KwImpl
	KwUse
	KwMod
	KwPub
	KwConst
	KwStatic
	KwTrue
	KwFalse
	KwContract
	KwType
	KwReturn
	KwBool
	KwField
	KwDbg
	KwRequire
	// KwIntegerType is a sentinel used by integerKeyword; the concrete
	// bitlength/signedness of u1..u248/u254 and i1..i248 is carried out of
	// band by the lexer (see integerKeyword), since there is one keyword per
	// bitlength rather than one enum constant per bitlength.
	KwIntegerType
)

// keywords maps reserved-word spelling to its Keyword constant. Integer type
// keywords (u8, i16, field aside) are recognised dynamically by
// integerKeyword, not through this table.
var keywords = map[string]Keyword{
	"fn":       KwFn,
	"let":      KwLet,
	"mut":      KwMut,
	"if":       KwIf,
	"else":     KwElse,
	"for":      KwFor,
	"in":       KwIn,
	"while":    KwWhile,
	"match":    KwMatch,
	"as":       KwAs,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"impl":     KwImpl,
	"use":      KwUse,
	"mod":      KwMod,
	"pub":      KwPub,
	"const":    KwConst,
	"static":   KwStatic,
	"true":     KwTrue,
	"false":    KwFalse,
	"contract": KwContract,
	"type":     KwType,
	"return":   KwReturn,
	"bool":     KwBool,
	"field":    KwField,
	"dbg":      KwDbg,
	"require":  KwRequire,
}

// IntegerTypeWord is the decoded shape of an integer-type keyword such as
// "u248" or "i8".
type IntegerTypeWord struct {
	IsSigned  bool
	Bitlength uint
}

// DecodeIntegerTypeWord exposes integerKeyword to other packages (the parser
// needs it to turn a KwIntegerType token's text back into a bitlength/sign).
func DecodeIntegerTypeWord(word string) (IntegerTypeWord, bool) {
	return integerKeyword(word)
}

// integerKeyword attempts to parse word as an integer type keyword
// (u1..u248, u254, i1..i248). Returns ok=false for anything else, including
// out-of-range bitlengths, which the caller treats as a plain identifier.
func integerKeyword(word string) (IntegerTypeWord, bool) {
	if len(word) < 2 {
		return IntegerTypeWord{}, false
	}

	var signed bool

	switch word[0] {
	case 'u':
		signed = false
	case 'i':
		signed = true
	default:
		return IntegerTypeWord{}, false
	}

	digits := word[1:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return IntegerTypeWord{}, false
		}
	}

	var bitlength uint
	for _, c := range digits {
		bitlength = bitlength*10 + uint(c-'0')
		if bitlength > 1000 {
			return IntegerTypeWord{}, false
		}
	}

	if bitlength == 0 {
		return IntegerTypeWord{}, false
	}

	if signed && bitlength > 248 {
		return IntegerTypeWord{}, false
	}

	if !signed && bitlength > 248 && bitlength != 254 {
		return IntegerTypeWord{}, false
	}

	return IntegerTypeWord{signed, bitlength}, true
}

// classifyWord decides whether word is a keyword, an integer-type keyword,
// or a plain identifier.
func classifyWord(word string) Lexeme {
	if word == "true" || word == "false" {
		return Lexeme{Kind: KindLiteralBoolean, Text: word, BooleanValue: word == "true"}
	}

	if kw, ok := keywords[word]; ok {
		return Lexeme{Kind: KindKeyword, Text: word, Keyword: kw}
	}

	if _, ok := integerKeyword(word); ok {
		return Lexeme{Kind: KindKeyword, Text: word, Keyword: KwIntegerType}
	}

	return Lexeme{Kind: KindIdentifier, Text: word}
}
