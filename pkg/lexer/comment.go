package lexer

import "github.com/zinclang/zinc/pkg/errors"

// scanComment recognises `// ...` line comments (terminated by a newline,
// not consumed) and `/* ... */` block comments (which may nest, and track
// their own line/column so an unterminated comment reports the span of the
// whole construct, per spec.md §4.1). It returns the number of runes
// consumed, the number of embedded newlines (for location bookkeeping), and
// an error if the comment was never closed.
func scanComment(runes []rune, startLine, startColumn uint) (consumed uint, newlines uint, lastColumn uint, err *errors.Diagnostic) {
	if len(runes) < 2 || runes[0] != '/' {
		return 0, 0, 0, nil
	}

	switch runes[1] {
	case '/':
		i := uint(2)
		for i < uint(len(runes)) && runes[i] != '\n' {
			i++
		}

		return i, 0, startColumn + i, nil
	case '*':
		depth := 1
		i := uint(2)
		line := startLine
		col := startColumn + 2

		for i < uint(len(runes)) && depth > 0 {
			switch {
			case runes[i] == '\n':
				line++
				col = 0
				i++
				newlines++
			case i+1 < uint(len(runes)) && runes[i] == '/' && runes[i+1] == '*':
				depth++
				i += 2
				col += 2
			case i+1 < uint(len(runes)) && runes[i] == '*' && runes[i+1] == '/':
				depth--
				i += 2
				col += 2
			default:
				i++
				col++
			}
		}

		if depth > 0 {
			return i, newlines, col, errors.New(errors.Lexical, "E0001", "unterminated block comment", unterminatedSpan(startLine, startColumn, line, col))
		}

		return i, newlines, col, nil
	default:
		return 0, 0, 0, nil
	}
}
