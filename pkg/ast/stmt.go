package ast

import "github.com/zinclang/zinc/pkg/source"

// StmtKind tags the shape of a Statement, matching the table in spec.md
// §4.2.
type StmtKind uint

// Statement shapes.
const (
	StmtLet StmtKind = iota
	StmtConst
	StmtStatic
	StmtFor
	StmtFn
	StmtStruct
	StmtEnum
	StmtImpl
	StmtMod
	StmtUse
	StmtType
	StmtContract
	StmtExpr
	StmtReturn
)

// Param is a single function/method parameter.
type Param struct {
	Loc  source.Location
	Name string
	Type Type
}

// GenericParam is a generic type parameter on a function or type alias
// (spec.md §4.3 item 5).
type GenericParam struct {
	Loc  source.Location
	Name string
}

// Field is a named, typed field of a struct/enum-variant/contract.
type Field struct {
	Loc  source.Location
	Name string
	Type Type
}

// EnumVariant is one `Name = value` member of an enum declaration.
type EnumVariant struct {
	Loc   source.Location
	Name  string
	Value *Expression // nil if the discriminant is implicit (previous + 1)
}

// Attribute is a recognised `#[...]` annotation (spec.md §4.3 item 7):
// `test`, `should_panic`, `ignore`, or `zksync::msg(sender=…, recipient=…,
// token_address=…, amount=…)`.
type Attribute struct {
	Loc    source.Location
	Name   string // "test" | "should_panic" | "ignore" | "zksync::msg"
	Fields []AttributeField
}

// AttributeField is one `key=value` pair of an attribute's argument list.
// Positional arity (fixed at 4 for zksync::msg per spec.md §4.3) is checked
// by pkg/semantic, not by the parser.
type AttributeField struct {
	Key   string
	Value Expression
}

// Statement is a single statement/declaration node. As with Expression and
// Type, exactly the fields relevant to Kind are populated.
type Statement struct {
	Loc        source.Location
	Kind       StmtKind
	Attributes []Attribute

	// let / const / static
	Name         string
	IsMutable    bool
	DeclaredType *Type // nil if the type annotation was omitted (let only)
	Value        *Expression

	// for
	LoopVar    string
	RangeStart *Expression
	RangeEnd   *Expression
	RangeIsArray bool // `for x in array { }` sugar, see SPEC_FULL.md §4 item 3
	ArrayExpr  *Expression
	WhileCond  *Expression
	Body       *Expression // block operand

	// fn
	IsPublic    bool
	IsConstFn   bool
	Generics    []GenericParam
	Params      []Param
	ReturnType  *Type
	FnBody      *Expression

	// struct / contract
	Fields []Field

	// enum
	EnumBitlength uint
	Variants      []EnumVariant

	// impl
	ImplTarget string
	ImplItems  []Statement

	// mod
	ModName  string
	ModItems []Statement

	// use
	UsePath  []string
	UseAlias string

	// type alias
	AliasTarget Type

	// contract
	ContractName    string
	ContractFields  []Field
	ContractMethods []Statement

	// expression statement
	Expr               *Expression
	SemicolonOmitted   bool
}

// Location implements Node.
func (s Statement) Location() source.Location { return s.Loc }

// Module is a parsed compilation unit: a flat list of top-level statements
// (spec.md §6.1's "compilation unit rooted at a file").
type Module struct {
	File  source.FileID
	Items []Statement
}
