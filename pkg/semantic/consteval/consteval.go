// Package consteval implements the constant-folding evaluator of spec.md
// §9's design note: a small tree-walking interpreter over BigInt/bool/
// aggregate values, kept entirely separate from the constraint-synthesizing
// VM in pkg/vm. Nothing in this package ever touches a constraint system —
// it exists solely to decide array sizes, `const`/`static` initializers,
// enum discriminants, for-loop bounds and std::array length arguments at
// compile time.
package consteval

import (
	"fmt"
	"math/big"

	"github.com/zinclang/zinc/pkg/ast"
)

// Kind tags the variant of a Value.
type Kind uint

// The value shapes a constant expression can reduce to.
const (
	KindBool Kind = iota
	KindInt
	KindTuple
	KindArray
	KindStruct
)

// Value is a constant-folded result. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    *big.Int
	Tuple  []Value
	Array  []Value
	Struct map[string]Value
}

// Bool constructs a boolean constant.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int constructs an integer constant.
func Int(v *big.Int) Value { return Value{Kind: KindInt, Int: v} }

// NonConstantError is returned when an expression reaches a sub-expression
// that cannot be reduced at compile time (a variable read, a non-const
// function call, ...). spec.md §4.3 item 3 names this
// ExpressionNonConstantElement.
type NonConstantError struct {
	Reason string
}

func (e *NonConstantError) Error() string {
	return fmt.Sprintf("expression is not a compile-time constant: %s", e.Reason)
}

// Lookup resolves a named constant (a `const`, a `static`, an enum variant,
// or a loop/match binding already folded into the environment) to its
// value. The caller (pkg/semantic) supplies this, since only it knows the
// scope chain; consteval itself carries no notion of scoping.
type Lookup func(path []string) (Value, bool)

// Eval folds expr to a constant Value, or returns a *NonConstantError (or a
// more specific arithmetic error, e.g. division by zero) if it cannot.
func Eval(expr *ast.Expression, lookup Lookup) (Value, error) {
	if expr == nil {
		return Value{}, &NonConstantError{Reason: "missing expression"}
	}

	if expr.Kind == ast.ExprKindOperand {
		return evalOperand(expr, lookup)
	}

	return evalOperator(expr, lookup)
}

func evalOperand(expr *ast.Expression, lookup Lookup) (Value, error) {
	switch expr.OperandKind {
	case ast.OperandLiteral:
		return evalLiteral(expr.Literal)

	case ast.OperandIdentifier:
		if v, ok := lookup(expr.Path); ok {
			return v, nil
		}

		return Value{}, &NonConstantError{Reason: fmt.Sprintf("`%s` is not a compile-time constant", joinPath(expr.Path))}

	case ast.OperandTuple:
		vals := make([]Value, len(expr.Elements))

		for i := range expr.Elements {
			v, err := Eval(&expr.Elements[i], lookup)
			if err != nil {
				return Value{}, err
			}

			vals[i] = v
		}

		return Value{Kind: KindTuple, Tuple: vals}, nil

	case ast.OperandArray:
		if expr.RepeatSize != nil {
			size, err := Eval(expr.RepeatSize, lookup)
			if err != nil {
				return Value{}, err
			}

			if size.Kind != KindInt {
				return Value{}, &NonConstantError{Reason: "array repeat size must be an integer"}
			}

			elem, err := Eval(&expr.Elements[0], lookup)
			if err != nil {
				return Value{}, err
			}

			n := int(size.Int.Int64())
			arr := make([]Value, n)

			for i := range arr {
				arr[i] = elem
			}

			return Value{Kind: KindArray, Array: arr}, nil
		}

		vals := make([]Value, len(expr.Elements))

		for i := range expr.Elements {
			v, err := Eval(&expr.Elements[i], lookup)
			if err != nil {
				return Value{}, err
			}

			vals[i] = v
		}

		return Value{Kind: KindArray, Array: vals}, nil

	case ast.OperandStructure:
		fields := make(map[string]Value, len(expr.Fields))

		for _, f := range expr.Fields {
			v, err := Eval(&f.Value, lookup)
			if err != nil {
				return Value{}, err
			}

			fields[f.Name] = v
		}

		return Value{Kind: KindStruct, Struct: fields}, nil

	default:
		return Value{}, &NonConstantError{Reason: "this expression form has no compile-time value"}
	}
}

func evalLiteral(lit ast.Literal) (Value, error) {
	switch lit.Kind {
	case ast.LiteralBoolean:
		return Bool(lit.BooleanValue), nil

	case ast.LiteralInteger:
		n, ok := new(big.Int).SetString(lit.IntegerText, 0)
		if !ok {
			return Value{}, fmt.Errorf("malformed integer literal %q", lit.IntegerText)
		}

		return Int(n), nil

	default:
		return Value{}, &NonConstantError{Reason: "string literals have no constant integer/bool value"}
	}
}

func evalOperator(expr *ast.Expression, lookup Lookup) (Value, error) {
	if expr.Op.IsUnary() {
		v, err := Eval(expr.Left, lookup)
		if err != nil {
			return Value{}, err
		}

		switch expr.Op {
		case ast.OpNeg:
			if v.Kind != KindInt {
				return Value{}, &NonConstantError{Reason: "unary `-` requires an integer"}
			}

			return Int(new(big.Int).Neg(v.Int)), nil
		case ast.OpNot:
			if v.Kind != KindBool {
				return Value{}, &NonConstantError{Reason: "unary `!` requires a bool"}
			}

			return Bool(!v.Bool), nil
		case ast.OpBitNot:
			if v.Kind != KindInt {
				return Value{}, &NonConstantError{Reason: "unary `~` requires an integer"}
			}

			return Int(new(big.Int).Not(v.Int)), nil
		}
	}

	left, err := Eval(expr.Left, lookup)
	if err != nil {
		return Value{}, err
	}

	right, err := Eval(expr.Right, lookup)
	if err != nil {
		return Value{}, err
	}

	switch expr.Op {
	case ast.OpAdd:
		return intOp(left, right, (*big.Int).Add)
	case ast.OpSub:
		return intOp(left, right, (*big.Int).Sub)
	case ast.OpMul:
		return intOp(left, right, (*big.Int).Mul)
	case ast.OpDiv:
		if right.Kind == KindInt && right.Int.Sign() == 0 {
			return Value{}, fmt.Errorf("division by zero in constant expression")
		}

		return intOp(left, right, func(z, x, y *big.Int) *big.Int { return z.Div(x, y) })
	case ast.OpRem:
		if right.Kind == KindInt && right.Int.Sign() == 0 {
			return Value{}, fmt.Errorf("division by zero in constant expression")
		}

		return intOp(left, right, func(z, x, y *big.Int) *big.Int { return z.Mod(x, y) })
	case ast.OpBitAnd:
		return intOp(left, right, (*big.Int).And)
	case ast.OpBitOr:
		return intOp(left, right, (*big.Int).Or)
	case ast.OpBitXor:
		return intOp(left, right, (*big.Int).Xor)
	case ast.OpShl:
		return Int(new(big.Int).Lsh(left.Int, uint(right.Int.Int64()))), nil
	case ast.OpShr:
		return Int(new(big.Int).Rsh(left.Int, uint(right.Int.Int64()))), nil
	case ast.OpEq:
		return Bool(equal(left, right)), nil
	case ast.OpNe:
		return Bool(!equal(left, right)), nil
	case ast.OpLt:
		return Bool(left.Int.Cmp(right.Int) < 0), nil
	case ast.OpLe:
		return Bool(left.Int.Cmp(right.Int) <= 0), nil
	case ast.OpGt:
		return Bool(left.Int.Cmp(right.Int) > 0), nil
	case ast.OpGe:
		return Bool(left.Int.Cmp(right.Int) >= 0), nil
	case ast.OpAnd:
		return Bool(left.Bool && right.Bool), nil
	case ast.OpOr:
		return Bool(left.Bool || right.Bool), nil
	case ast.OpXor:
		return Bool(left.Bool != right.Bool), nil
	default:
		return Value{}, &NonConstantError{Reason: "operator has no compile-time evaluation rule"}
	}
}

func intOp(left, right Value, f func(z, x, y *big.Int) *big.Int) (Value, error) {
	if left.Kind != KindInt || right.Kind != KindInt {
		return Value{}, &NonConstantError{Reason: "arithmetic operator requires integer operands"}
	}

	return Int(f(new(big.Int), left.Int, right.Int)), nil
}

func equal(a, b Value) bool {
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int.Cmp(b.Int) == 0
	default:
		return false
	}
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "::"
		}

		s += p
	}

	return s
}
