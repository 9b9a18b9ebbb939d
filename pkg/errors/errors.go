// Package errors implements the categorical error model of spec.md §7: every
// diagnostic the pipeline produces belongs to one of five kinds (File,
// Lexical, Syntax, Semantic, Runtime), carries a source.Location, and renders
// itself in the caret-style format the teacher's own SyntaxError used
// (pkg/util/source/source_file.go in the teacher), generalized here to all
// five kinds instead of a single one.
package errors

import (
	"fmt"
	"strings"

	"github.com/zinclang/zinc/pkg/source"
)

// Kind categorizes a diagnostic by pipeline stage, not by concrete Go type —
// spec.md §7 is explicit that errors are "enumerated categorically, not by
// type-name".
type Kind uint

// The five error kinds of spec.md §7.
const (
	File Kind = iota
	Lexical
	Syntax
	Semantic
	Runtime
)

// String renders the Kind as the label used in diagnostic output.
func (k Kind) String() string {
	switch k {
	case File:
		return "file error"
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Runtime:
		return "runtime error"
	default:
		return "error"
	}
}

// Diagnostic is a single located error. Hint is an optional short
// human-readable suggestion, matching the parser's "hint" strings from
// spec.md §4.2.
type Diagnostic struct {
	Kind    Kind
	Code    string
	Message string
	Span    source.Span
	Hint    string
}

// New constructs a Diagnostic with no hint.
func New(kind Kind, code, message string, span source.Span) *Diagnostic {
	return &Diagnostic{kind, code, message, span, ""}
}

// WithHint attaches a hint to d and returns it, for chaining at the call
// site (mirrors the parser's practice of attaching a short example snippet).
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Code)
}

// Render produces the full multi-line user-visible diagnostic described in
// spec.md §7: a header line, a "-->" caret pointing at file:line:column, the
// offending source line(s), and an underline spanning the affected token.
func (d *Diagnostic) Render(registry *source.Registry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", d.Kind, d.Message)
	fmt.Fprintf(&b, "  --> %s\n", d.Span.Start)

	startLine, endLine := d.Span.Start.Line, d.Span.End.Line
	if endLine < startLine {
		endLine = startLine
	}

	for line := startLine; line <= endLine; line++ {
		loc := d.Span.Start
		loc.Line = line

		text := registry.Line(loc)
		fmt.Fprintf(&b, "%5d | %s\n", line, text)

		if line == startLine {
			col := int(d.Span.Start.Column) - 1
			if col < 0 {
				col = 0
			}

			width := 1
			if line == endLine && d.Span.End.Column > d.Span.Start.Column {
				width = int(d.Span.End.Column - d.Span.Start.Column)
			}

			fmt.Fprintf(&b, "      | %s%s\n", strings.Repeat(" ", col), strings.Repeat("^", width))
		}
	}

	if d.Hint != "" {
		fmt.Fprintf(&b, "      = hint: %s\n", d.Hint)
	}

	return b.String()
}

// List is a collection of diagnostics, used by the parser and semantic
// analyzer to accumulate multiple errors before reporting (spec.md §7
// "Propagation policy").
type List []*Diagnostic

// Error implements the error interface by rendering every diagnostic's short
// form, one per line.
func (l List) Error() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.Error()
	}

	return strings.Join(lines, "\n")
}

// HasErrors reports whether the list is non-empty.
func (l List) HasErrors() bool {
	return len(l) > 0
}
