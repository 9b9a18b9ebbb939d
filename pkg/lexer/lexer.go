package lexer

import (
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/source"
)

// maxLookAhead bounds the internal FIFO buffer. Spec.md §5 notes that 16
// tokens is ample for this grammar.
const maxLookAhead = 16

// Stream tokenizes a single source file, buffering up to maxLookAhead tokens
// so that LookAhead(k) and Next() stay consistent (spec.md §4.1).
type Stream struct {
	file     source.FileID
	runes    []rune
	offset   int
	line     uint
	column   uint
	buffer   []Token
	lastLoc  source.Location
	atEof    bool
}

// NewStream constructs a token Stream over the contents of a registered file.
func NewStream(file source.FileID, contents []rune) *Stream {
	return &Stream{
		file:   file,
		runes:  contents,
		offset: 0,
		line:   1,
		column: 1,
	}
}

// Next consumes and returns the next token, or a *errors.Diagnostic of kind
// Lexical if the upcoming text cannot be tokenized.
func (s *Stream) Next() (Token, *errors.Diagnostic) {
	if err := s.fill(1); err != nil {
		return Token{}, err
	}

	t := s.buffer[0]
	s.buffer = s.buffer[1:]

	return t, nil
}

// LookAhead peeks k tokens ahead (1-based: LookAhead(1) is the same token
// that Next() would return next) without consuming anything.
func (s *Stream) LookAhead(k uint) (Token, *errors.Diagnostic) {
	if err := s.fill(k); err != nil {
		return Token{}, err
	}

	return s.buffer[k-1], nil
}

// fill ensures the buffer holds at least n tokens (or is exhausted at Eof).
func (s *Stream) fill(n uint) *errors.Diagnostic {
	for uint(len(s.buffer)) < n {
		tok, err := s.scanOne()
		if err != nil {
			return err
		}

		s.buffer = append(s.buffer, tok)

		if tok.IsEof() {
			// Once Eof is reached, keep re-appending Eof tokens forever rather
			// than trying to scan past the end of the rune slice again.
			for uint(len(s.buffer)) < n {
				s.buffer = append(s.buffer, tok)
			}

			break
		}
	}

	return nil
}

func (s *Stream) loc() source.Location {
	return source.NewLocation(s.file, s.line, s.column)
}

func (s *Stream) advance(n uint) {
	for i := uint(0); i < n && s.offset < len(s.runes); i++ {
		if s.runes[s.offset] == '\n' {
			s.line++
			s.column = 1
		} else if s.runes[s.offset] == '\r' {
			// \r is ignored for column accounting per spec.md §4.1.
		} else {
			s.column++
		}

		s.offset++
	}
}

func (s *Stream) skipWhitespace() {
	for s.offset < len(s.runes) {
		switch s.runes[s.offset] {
		case ' ', '\t', '\n', '\r':
			s.advance(1)
		default:
			return
		}
	}
}

func (s *Stream) scanOne() (Token, *errors.Diagnostic) {
	s.skipWhitespace()

	loc := s.loc()
	s.lastLoc = loc

	if s.offset >= len(s.runes) {
		s.atEof = true
		return Token{Lexeme{Kind: KindEof}, loc}, nil
	}

	remaining := s.runes[s.offset:]
	r := remaining[0]

	switch {
	case r == '/' && len(remaining) > 1 && (remaining[1] == '/' || remaining[1] == '*'):
		n, newlines, lastCol, err := scanComment(remaining, s.line, s.column)
		if err != nil {
			s.advance(n)
			return Token{}, s.withFile(err)
		}

		text := string(remaining[:n])
		s.advanceRaw(n, newlines, lastCol)

		return Token{Lexeme{Kind: KindComment, Text: text}, loc}, nil

	case r == '"':
		n, value, err := scanString(remaining, s.line, s.column)
		if err != nil {
			s.advance(n)
			return Token{}, s.withFile(err)
		}

		s.advance(n)

		return Token{Lexeme{Kind: KindLiteralString, Text: string(remaining[:n]), StringValue: value}, loc}, nil

	case isDigit(r):
		n, lex, err := scanInteger(remaining, s.column)
		if err != nil {
			s.advance(n)
			return Token{}, s.withFile(err)
		}

		s.advance(n)

		return Token{lex, loc}, nil

	case isIdentStart(r):
		n := scanWord(remaining)
		word := string(remaining[:n])
		s.advance(n)

		return Token{classifyWord(word), loc}, nil

	default:
		if sym, n, ok := scanSymbol(remaining); ok {
			s.advance(n)
			return Token{Lexeme{Kind: KindSymbol, Text: string(remaining[:n]), Symbol: sym}, loc}, nil
		}

		s.advance(1)

		return Token{}, errors.New(errors.Lexical, "E0000", "invalid character", source.SingleToken(loc, 1))
	}
}

// advanceRaw is used by the comment sub-parser, which already computed its
// own newline count and final column (since block comments may span
// multiple lines and the generic advance() loop would have to re-scan the
// same runes to reach the same answer).
func (s *Stream) advanceRaw(n, newlines uint, lastColumn uint) {
	s.offset += int(n)

	if newlines > 0 {
		s.line += newlines
		s.column = lastColumn + 1
	} else {
		s.column = lastColumn
	}
}

// withFile stamps a diagnostic produced by a file-agnostic sub-parser with
// this stream's FileID, since the sub-parsers only ever see line/column.
func (s *Stream) withFile(d *errors.Diagnostic) *errors.Diagnostic {
	d.Span.Start.FileID = s.file
	d.Span.End.FileID = s.file

	return d
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func scanWord(runes []rune) uint {
	i := uint(0)
	for i < uint(len(runes)) && isIdentContinue(runes[i]) {
		i++
	}

	return i
}

func unterminatedSpan(startLine, startCol, endLine, endCol uint) source.Span {
	// FileID is left zero here; the
	// sub-parsers operate purely on line/column since they don't carry a
	// FileID of their own. The Stream attaches FileID when it wraps these into
	// a located error — see scanOne, which passes every sub-parser error
	// through withFile to stamp the FileID onto this span.
	return source.Span{
		Start: source.Location{Line: startLine, Column: startCol},
		End:   source.Location{Line: endLine, Column: endCol},
	}
}

func singleLine(col, width uint) source.Span {
	return source.Span{
		Start: source.Location{Column: col},
		End:   source.Location{Column: col + width},
	}
}
