// Package ast defines the syntax tree produced by pkg/parser: the surface
// Type syntax, the Expression binary tree of spec.md §3.5, and the tagged
// Statement/Declaration records of spec.md §4.2. Every node carries its
// source.Location, matching the teacher's own `pkg/corset/ast.go` /
// `pkg/zkc/compiler/ast/expr` convention of a small tagged struct per node
// kind.
package ast

import "github.com/zinclang/zinc/pkg/source"

// Type is the surface syntax for a type expression, before name resolution.
// It is deliberately thinner than pkg/types.Type (the resolved type
// algebra): a TypePath here might resolve to a struct, an enum, a contract,
// or a type alias — that's pkg/semantic's job.
type Type struct {
	Loc  source.Location
	Kind TypeKind
	// Bitlength/IsSigned are populated for TypeInteger.
	Bitlength uint
	IsSigned  bool
	// Element/Size are populated for TypeArray.
	Element *Type
	Size    Expression
	// Elements are populated for TypeTuple.
	Elements []Type
	// Path and Generics are populated for TypePath (named type, possibly
	// generic, e.g. `Map<u8, u248>`).
	Path     []string
	Generics []Type
}

// TypeKind tags the variant of a Type.
type TypeKind uint

// Surface type-syntax kinds.
const (
	TypeKindUnit TypeKind = iota
	TypeKindBool
	TypeKindInteger
	TypeKindField
	TypeKindArray
	TypeKindTuple
	TypeKindPath
)

// Location implements Node.
func (t Type) Location() source.Location { return t.Loc }
