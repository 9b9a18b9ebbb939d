// Package source provides the shared source-location model used by every
// stage of the pipeline: the lexer, the parser, the semantic analyzer and the
// constraint VM all attach a Location to the nodes and instructions they
// produce, so that a diagnostic can always be traced back to a precise file,
// line and column.
package source

import "fmt"

// FileID indexes into the process-wide file Registry.
type FileID uint

// Location identifies a single character position within a registered source
// file.
type Location struct {
	FileID FileID
	Line   uint
	Column uint
}

// NewLocation constructs a Location at the given 1-indexed line/column within
// file.
func NewLocation(file FileID, line, column uint) Location {
	return Location{FileID: file, Line: line, Column: column}
}

// ShiftedRight returns a copy of this location advanced by n columns on the
// same line. Used by sub-parsers (e.g. the integer lexer) to report errors
// part-way through a token they are still consuming.
func (l Location) ShiftedRight(n uint) Location {
	return Location{l.FileID, l.Line, l.Column + n}
}

// ShiftedDown returns a copy of this location advanced by the given number of
// lines, with the column reset. Used when a sub-parser's error spans multiple
// physical lines (e.g. an unterminated block comment).
func (l Location) ShiftedDown(lines, column uint) Location {
	return Location{l.FileID, l.Line + lines, column}
}

// String renders the location as "path:line:column" using the Registry to
// resolve FileID to a path.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", Default.Path(l.FileID), l.Line, l.Column)
}

// Span covers a contiguous range of source text, from Start (inclusive) to
// End (exclusive in the column dimension on the same line, or covering
// multiple lines for constructs such as unterminated block comments).
type Span struct {
	Start Location
	End   Location
}

// NewSpan constructs a Span between two locations within the same file.
func NewSpan(start, end Location) Span {
	return Span{start, end}
}

// SingleToken constructs a Span covering exactly one token of the given
// width starting at loc.
func SingleToken(loc Location, width uint) Span {
	end := loc
	end.Column += width
	return Span{loc, end}
}
