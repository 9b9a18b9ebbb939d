// Package types implements the resolved type algebra of spec.md §3.3: the
// closed set of types a value or storage slot can have after semantic
// analysis, each with a statically known size in field elements.
package types

import "fmt"

// Kind tags a resolved Type's variant.
type Kind uint

// The type variants of spec.md §3.3.
const (
	Unit Kind = iota
	Boolean
	IntegerUnsigned
	IntegerSigned
	Field
	Enumeration
	Array
	Tuple
	Structure
	Contract
	String
	Range
	Function
)

// EnumVariant is one named constant of an Enumeration type.
type EnumVariant struct {
	Name  string
	Value int64
}

// StructField is one named, ordered field of a Structure or Contract type.
type StructField struct {
	Name string
	Type Type
}

// Type is the resolved representation of every value the analyzer and VM
// manipulate. Only the fields relevant to Kind are populated, mirroring the
// tagged-struct convention used throughout pkg/ast.
type Type struct {
	Kind Kind

	// IntegerUnsigned / IntegerSigned / Enumeration / Field(implicitly 254).
	Bitlength uint

	// Enumeration.
	Variants []EnumVariant

	// Array.
	Element *Type
	Length  uint

	// Tuple.
	Elements []Type

	// Structure / Contract.
	Name   string
	Fields []StructField
}

// Field is the bn256/bn254 scalar field: treated as unsigned, bitlength 254,
// per spec.md §3.3 "Invariants".
func NewField() Type { return Type{Kind: Field, Bitlength: 254} }

// NewUnsigned constructs an IntegerUnsigned type of the given bitlength
// (1..248, or 254 to alias the field).
func NewUnsigned(bitlength uint) Type {
	if bitlength == 254 {
		return NewField()
	}

	return Type{Kind: IntegerUnsigned, Bitlength: bitlength}
}

// NewSigned constructs an IntegerSigned type of the given bitlength (1..248).
func NewSigned(bitlength uint) Type {
	return Type{Kind: IntegerSigned, Bitlength: bitlength}
}

// NewArray constructs an Array type with a compile-time-known size.
func NewArray(element Type, size uint) Type {
	return Type{Kind: Array, Element: &element, Length: size}
}

// NewTuple constructs a Tuple type over an ordered list of element types.
func NewTuple(elements []Type) Type {
	return Type{Kind: Tuple, Elements: elements}
}

// NewStructure constructs a Structure type with ordered named fields.
func NewStructure(name string, fields []StructField) Type {
	return Type{Kind: Structure, Name: name, Fields: fields}
}

// NewContract constructs a Contract type: a structure of persistent storage
// fields plus the synthesized `address` field every contract carries.
func NewContract(name string, fields []StructField) Type {
	all := append([]StructField{{Name: "address", Type: NewUnsigned(160)}}, fields...)
	return Type{Kind: Contract, Name: name, Fields: all}
}

// NewEnumeration constructs an Enumeration type of the given bitlength and
// named variants.
func NewEnumeration(name string, bitlength uint, variants []EnumVariant) Type {
	return Type{Kind: Enumeration, Name: name, Bitlength: bitlength, Variants: variants}
}

// IsInteger reports whether t is one of IntegerUnsigned/IntegerSigned/Field.
func (t Type) IsInteger() bool {
	return t.Kind == IntegerUnsigned || t.Kind == IntegerSigned || t.Kind == Field
}

// IsSigned reports whether t is a signed integer type. Field and
// IntegerUnsigned are both treated as unsigned per spec.md §3.3.
func (t Type) IsSigned() bool {
	return t.Kind == IntegerSigned
}

// Size returns the type's size in whole field elements, per spec.md §3.3
// "Invariants": every runtime value has a size expressible in whole field
// elements.
func (t Type) Size() uint {
	switch t.Kind {
	case Unit:
		return 0
	case Boolean, IntegerUnsigned, IntegerSigned, Field, Enumeration:
		return 1
	case Array:
		return t.Element.Size() * t.Length
	case Tuple:
		var total uint
		for _, e := range t.Elements {
			total += e.Size()
		}

		return total
	case Structure, Contract:
		var total uint
		for _, f := range t.Fields {
			total += f.Type.Size()
		}

		return total
	default:
		// String, Range, Function: compile-time only, not representable in
		// the VM (spec.md §3.3).
		return 0
	}
}

// IsVMRepresentable reports whether values of this type can exist at
// runtime inside the VM (spec.md §3.3: "String, Range, Function... not
// representable in VM").
func (t Type) IsVMRepresentable() bool {
	return t.Kind != String && t.Kind != Range && t.Kind != Function
}

// Equal implements the type-equality rule of spec.md §3.3: "Two integer
// types are equal iff (is_signed, bitlength) match", extended structurally
// to aggregates.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case IntegerUnsigned, IntegerSigned, Field, Enumeration:
		return t.Bitlength == other.Bitlength && t.Name == other.Name
	case Array:
		return t.Length == other.Length && t.Element.Equal(*other.Element)
	case Tuple:
		if len(t.Elements) != len(other.Elements) {
			return false
		}

		for i := range t.Elements {
			if !t.Elements[i].Equal(other.Elements[i]) {
				return false
			}
		}

		return true
	case Structure, Contract:
		return t.Name == other.Name
	default:
		return true
	}
}

// String renders the type in the language's own surface syntax, for use in
// diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case Unit:
		return "()"
	case Boolean:
		return "bool"
	case IntegerUnsigned:
		return fmt.Sprintf("u%d", t.Bitlength)
	case IntegerSigned:
		return fmt.Sprintf("i%d", t.Bitlength)
	case Field:
		return "field"
	case Enumeration:
		return t.Name
	case Array:
		return fmt.Sprintf("[%s; %d]", t.Element, t.Length)
	case Tuple:
		s := "("
		for i, e := range t.Elements {
			if i > 0 {
				s += ", "
			}

			s += e.String()
		}

		return s + ")"
	case Structure:
		return t.Name
	case Contract:
		return t.Name
	case String:
		return "str"
	case Range:
		return "range"
	case Function:
		return "fn"
	default:
		return "?"
	}
}
