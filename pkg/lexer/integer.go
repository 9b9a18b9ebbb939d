package lexer

import (
	"math/big"
	"strings"

	"github.com/zinclang/zinc/pkg/errors"
)

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isBinDigit(r rune) bool   { return r == '0' || r == '1' }
func isOctDigit(r rune) bool   { return r >= '0' && r <= '7' }
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanInteger recognises the numeric-literal grammar of spec.md §4.1: `0`,
// radix-prefixed `0b`/`0o`/`0x` forms, plain decimal, decimal with a
// fractional `.` tail, and decimal with an `E<digits>` exponent (the
// wei-sized `E18` suffix form). `_` is a digit-group delimiter anywhere in
// the body. Encountering `..` inside a decimal tail backs up one character so
// a range operator is not swallowed (spec.md: "backs up one character so a
// range operator is not swallowed").
func scanInteger(runes []rune, col uint) (consumed uint, lex Lexeme, err *errors.Diagnostic) {
	if len(runes) == 0 || !isDigit(runes[0]) {
		return 0, Lexeme{}, nil
	}

	if runes[0] == '0' && len(runes) > 1 {
		switch runes[1] {
		case 'b':
			return scanRadix(runes, col, 2, BaseBinary, isBinDigit, 2)
		case 'o':
			return scanRadix(runes, col, 2, BaseOctal, isOctDigit, 8)
		case 'x':
			return scanRadix(runes, col, 2, BaseHexadecimal, isHexDigit, 16)
		}
	}

	return scanDecimal(runes, col)
}

func scanRadix(runes []rune, col uint, prefixLen uint, base IntegerBase, digit func(rune) bool, radix int64) (uint, Lexeme, *errors.Diagnostic) {
	i := prefixLen
	var digits strings.Builder

	for i < uint(len(runes)) && (digit(runes[i]) || runes[i] == '_') {
		if runes[i] != '_' {
			digits.WriteRune(runes[i])
		}

		i++
	}

	if digits.Len() == 0 {
		return i, Lexeme{}, errors.New(errors.Lexical, "E0003", "expected digits after radix prefix", singleLine(col, i))
	}

	value := new(big.Int)
	value.SetString(digits.String(), int(radix))

	return i, Lexeme{Kind: KindLiteralInteger, Text: string(runes[:i]), IntegerValue: value, IntegerBase: base}, nil
}

func scanDecimal(runes []rune, col uint) (uint, Lexeme, *errors.Diagnostic) {
	i := uint(0)
	var intPart strings.Builder

	for i < uint(len(runes)) && (isDigit(runes[i]) || runes[i] == '_') {
		if runes[i] != '_' {
			intPart.WriteRune(runes[i])
		}

		i++
	}

	var fracPart strings.Builder

	hasFrac := false

	if i < uint(len(runes)) && runes[i] == '.' {
		// Range-operator backoff: ".." must not be consumed as a fractional
		// marker.
		if i+1 < uint(len(runes)) && runes[i+1] == '.' {
			// leave the '.' alone; it belongs to the range operator.
		} else {
			hasFrac = true
			i++

			for i < uint(len(runes)) && (isDigit(runes[i]) || runes[i] == '_') {
				if runes[i] != '_' {
					fracPart.WriteRune(runes[i])
				}

				i++
			}
		}
	}

	isE18 := false

	if i < uint(len(runes)) && (runes[i] == 'E' || runes[i] == 'e') {
		start := i
		i++

		var expPart strings.Builder

		for i < uint(len(runes)) && isDigit(runes[i]) {
			expPart.WriteRune(runes[i])
			i++
		}

		if expPart.Len() == 0 {
			return i, Lexeme{}, errors.New(errors.Lexical, "E0004", "empty exponent", singleLine(col, i))
		}

		isE18 = expPart.String() == "18"
		_ = start
	}

	value := new(big.Int)
	value.SetString(intPart.String(), 10)

	if hasFrac && fracPart.Len() > 0 {
		// A fractional decimal such as `1.5E18` is only valid as an E18-scaled
		// wei constant; scale the integer part up and fold in the fraction as
		// whole units, since the VM only ever sees field-element integers. The
		// E18 scale below is reduced by the fraction's digit count to match,
		// so `1.5E18` is 1.5·10^18.
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fracPart.Len())), nil)
		value.Mul(value, scale)

		frac := new(big.Int)
		frac.SetString(fracPart.String(), 10)
		value.Add(value, frac)
	}

	if isE18 {
		exp := int64(18)
		if hasFrac {
			exp -= int64(fracPart.Len())
		}

		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
		value.Mul(value, scale)
	}

	return i, Lexeme{Kind: KindLiteralInteger, Text: string(runes[:i]), IntegerValue: value, IntegerBase: BaseDecimal, IsE18: isE18}, nil
}
