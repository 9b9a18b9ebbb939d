package lexer

import "github.com/zinclang/zinc/pkg/errors"

// scanString recognises a double-quoted string literal with no escape
// handling beyond locating the closing quote (spec.md §4.1: "`"…"` with no
// escape handling beyond the closing quote"). Returns the number of runes
// consumed (including both quotes) and the literal's contents with quotes
// stripped.
func scanString(runes []rune, startLine, startColumn uint) (consumed uint, value string, err *errors.Diagnostic) {
	if len(runes) == 0 || runes[0] != '"' {
		return 0, "", nil
	}

	i := uint(1)
	for i < uint(len(runes)) && runes[i] != '"' && runes[i] != '\n' {
		i++
	}

	if i >= uint(len(runes)) || runes[i] != '"' {
		endCol := startColumn + i
		return i, "", errors.New(errors.Lexical, "E0002", "unterminated string literal", unterminatedSpan(startLine, startColumn, startLine, endCol))
	}

	return i + 1, string(runes[1:i]), nil
}
