package ast

import "github.com/zinclang/zinc/pkg/source"

// ExprKind distinguishes the two node shapes of the binary expression tree
// described in spec.md §3.5: a node is either a terminal Operand or an
// Operator applying to one or two sub-expressions.
type ExprKind uint

// The two node shapes of spec.md §3.5.
const (
	ExprKindOperand ExprKind = iota
	ExprKindOperator
)

// Operator enumerates every operator spec.md's precedence cascade (§4.2)
// recognises, plus the access-level pseudo-operators (index/field/call/cast)
// which the "access" precedence level folds into the same tree shape.
type Operator uint

// The operator set. Grouped by the precedence level that introduces them in
// spec.md §4.2's cascade, from lowest to highest.
const (
	OpAssign Operator = iota
	OpAssignAdd
	OpAssignSub
	OpAssignMul
	OpAssignDiv
	OpAssignRem
	OpAssignBitAnd
	OpAssignBitOr
	OpAssignBitXor
	OpAssignShl
	OpAssignShr
	OpRange
	OpRangeInclusive
	OpOr
	OpXor
	OpAnd
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpBitOr
	OpBitXor
	OpBitAnd
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpCast
	OpIndex
	OpField
	OpCall
	OpNeg  // unary
	OpNot  // unary
	OpBitNot // unary
)

// IsAssignment reports whether op is one of the compound/simple assignment
// operators, which spec.md's analyzer requires a place expression on the
// left of.
func (op Operator) IsAssignment() bool {
	return op >= OpAssign && op <= OpAssignShr
}

// IsUnary reports whether op takes only a Left operand (Right is nil).
func (op Operator) IsUnary() bool {
	return op == OpNeg || op == OpNot || op == OpBitNot
}

// OperandKind distinguishes the terminal operand shapes of spec.md §3.5.
type OperandKind uint

// The terminal operand kinds.
const (
	OperandLiteral OperandKind = iota
	OperandIdentifier
	OperandBlock
	OperandConditional
	OperandMatch
	OperandTuple
	OperandArray
	OperandStructure
	OperandList
)

// LiteralKind tags which kind of literal an OperandLiteral carries.
type LiteralKind uint

// Literal kinds, mirroring lexer.Kind's literal variants.
const (
	LiteralBoolean LiteralKind = iota
	LiteralInteger
	LiteralString
)

// Literal is the value carried by an OperandLiteral node.
type Literal struct {
	Kind         LiteralKind
	BooleanValue bool
	IntegerText  string // preserves lexical form, per spec.md §3.2
	StringValue  string
}

// MatchArm is one branch of a match expression: a pattern and its body.
type MatchArm struct {
	Loc     source.Location
	Pattern MatchPattern
	Body    Expression
}

// MatchPatternKind tags a match arm's pattern shape.
type MatchPatternKind uint

// The three pattern shapes spec.md §4.3 lowers into a chain of If/Else.
const (
	PatternLiteral MatchPatternKind = iota
	PatternBinding
	PatternWildcard
)

// MatchPattern is a single match-arm pattern.
type MatchPattern struct {
	Kind    MatchPatternKind
	Literal Literal // when Kind == PatternLiteral
	Name    string  // when Kind == PatternBinding
}

// StructureField is one `name: value` pair of a structure-literal operand.
type StructureField struct {
	Name  string
	Value Expression
}

// Expression is a single node of the binary expression tree. Exactly one of
// the Operator-node fields or the Operand-node fields is meaningful,
// selected by Kind and (for operands) OperandKind.
type Expression struct {
	Loc  source.Location
	Kind ExprKind

	// --- Operator node ---
	Op    Operator
	Left  *Expression
	Right *Expression

	// --- Operand node ---
	OperandKind OperandKind
	Literal     Literal
	Path        []string // identifier / path operand, e.g. ["a","b","c"] for a::b::c
	Statements  []Statement
	Tail        *Expression // block's trailing (semicolon-omitted) expression, or nil
	Cond        *Expression // conditional guard
	Then        *Expression // conditional then-branch (a block operand)
	Else        *Expression // conditional else-branch (block or nested conditional), nil if absent
	Scrutinee   *Expression
	Arms        []MatchArm
	Elements    []Expression     // tuple / array / list elements
	RepeatSize  *Expression      // array repeat-form size, e.g. `[0; N]`
	Fields      []StructureField // structure literal
	StructPath  []string         // structure literal's type path
	CastType    *Type            // `as` cast target, when Op == OpCast
}

// Location implements Node.
func (e *Expression) Location() source.Location { return e.Loc }
