package semantic

import (
	"math/big"

	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/types"
)

// analyzeExpr type-checks expr and emits the instructions that leave its
// value on the data stack (unless it is being evaluated purely for its
// place — callers that need an assignable target inspect the returned
// result instead of consuming a pushed value).
func (an *Analyzer) analyzeExpr(scope ScopeID, expr *ast.Expression) result {
	if expr.Kind == ast.ExprKindOperand {
		return an.analyzeOperand(scope, expr)
	}

	return an.analyzeOperator(scope, expr)
}

func (an *Analyzer) analyzeOperand(scope ScopeID, expr *ast.Expression) result {
	switch expr.OperandKind {
	case ast.OperandLiteral:
		return an.analyzeLiteral(expr)

	case ast.OperandIdentifier:
		return an.analyzeIdentifier(scope, expr)

	case ast.OperandBlock:
		return an.analyzeBlock(scope, expr)

	case ast.OperandConditional:
		return an.analyzeConditional(scope, expr)

	case ast.OperandMatch:
		return an.analyzeMatch(scope, expr)

	case ast.OperandTuple:
		elemTypes := make([]types.Type, len(expr.Elements))

		for i := range expr.Elements {
			r := an.analyzeExpr(scope, &expr.Elements[i])
			elemTypes[i] = r.Type
		}

		return result{Type: types.NewTuple(elemTypes)}

	case ast.OperandArray:
		return an.analyzeArrayLiteral(scope, expr)

	case ast.OperandStructure:
		return an.analyzeStructLiteral(scope, expr)

	default:
		an.error(errUnresolvedName(expr.Loc, "<expression>"))
		return result{}
	}
}

func (an *Analyzer) analyzeLiteral(expr *ast.Expression) result {
	lit := expr.Literal

	switch lit.Kind {
	case ast.LiteralBoolean:
		text := "0"
		if lit.BooleanValue {
			text = "1"
		}

		t := types.Type{Kind: types.Boolean}
		an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: text, Type: scalarOf(t), Loc: expr.Loc})

		return result{Type: t}

	case ast.LiteralInteger:
		n, ok := new(big.Int).SetString(lit.IntegerText, 0)
		if !ok {
			an.error(errIntegerOverflow(expr.Loc, lit.IntegerText, "<malformed>"))
			return result{}
		}

		t := widestFitting(n)
		an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: n.String(), Type: scalarOf(t), Loc: expr.Loc})

		return result{Type: t}

	default:
		an.error(errUnresolvedName(expr.Loc, "<string literal>"))
		return result{}
	}
}

func (an *Analyzer) analyzeIdentifier(scope ScopeID, expr *ast.Expression) result {
	path := expr.Path

	if an.fn != nil && an.fn.contract != nil && len(path) == 2 && path[0] == "self" {
		se, ok := an.fn.contract.storage[path[1]]
		if !ok {
			an.error(errNoSuchField(expr.Loc, an.fn.contract.name, path[1]))
			return result{}
		}

		t := scalarToType(se.Type)
		an.emit(ir.Instruction{Op: ir.OpStorageLoad, Addr: se.Slot, Size: 1, Loc: expr.Loc})

		return result{Type: t, IsPlace: true, SelfField: path[1], BindName: path[1]}
	}

	if len(path) == 1 {
		if b, ok := an.arena.Lookup(scope, path[0]); ok && (b.Kind == BindingVariable && !b.IsConst) {
			an.emit(ir.Instruction{Op: ir.OpLoad, Addr: b.Addr, Loc: expr.Loc})
			return result{Type: b.Type, IsPlace: true, Addr: b.Addr, Mutable: b.Mutable, BindName: b.Name}
		}
	}

	b, ok := an.arena.Resolve(scope, path)
	if !ok {
		an.error(errUnresolvedName(expr.Loc, joinPath(path)))
		return result{}
	}

	switch b.Kind {
	case BindingConst, BindingVariable:
		an.pushConst(expr.Loc, b.Type, b.ConstVal)
		return result{Type: b.Type}

	case BindingEnumVariant:
		t := types.Type{Kind: types.IntegerUnsigned, Bitlength: 32}
		an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: big.NewInt(b.EnumValue).String(), Type: scalarOf(t), Loc: expr.Loc})

		return result{Type: t}

	default:
		an.error(errNotCallable(expr.Loc, joinPath(path)))
		return result{}
	}
}

// pushConst emits a Push instruction for an already-folded constant value
// (a `const`/`static` binding's initializer, read back at its use site).
func (an *Analyzer) pushConst(loc source.Location, t types.Type, v consteval.Value) {
	text := "0"

	switch v.Kind {
	case consteval.KindBool:
		if v.Bool {
			text = "1"
		}
	case consteval.KindInt:
		text = v.Int.String()
	}

	an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: text, Type: scalarOf(t), Loc: loc})
}

func (an *Analyzer) analyzeBlock(scope ScopeID, expr *ast.Expression) result {
	inner := an.arena.Push(scope)

	for i := range expr.Statements {
		an.lowerStmt(inner, &expr.Statements[i])
	}

	if expr.Tail != nil {
		return an.analyzeExpr(inner, expr.Tail)
	}

	return result{Type: types.Type{Kind: types.Unit}}
}

func (an *Analyzer) analyzeConditional(scope ScopeID, expr *ast.Expression) result {
	cond := an.analyzeExpr(scope, expr.Cond)
	if cond.Type.Kind != types.Boolean {
		an.error(errConditionNotBool(expr.Cond.Location(), cond.Type.String()))
	}

	an.emit(ir.Instruction{Op: ir.OpIf, Loc: expr.Loc})
	then := an.analyzeExpr(scope, expr.Then)

	var els result

	if expr.Else != nil {
		an.emit(ir.Instruction{Op: ir.OpElse, Loc: expr.Loc})
		els = an.analyzeExpr(scope, expr.Else)

		if then.Type.Kind != types.Unit && !then.Type.Equal(els.Type) {
			an.error(errIfBranchMismatch(expr.Loc, then.Type.String(), els.Type.String()))
		}
	}

	an.emit(ir.Instruction{Op: ir.OpEndIf, Loc: expr.Loc})

	return result{Type: then.Type}
}

// analyzeMatch lowers `match` into a chain of If/Else/EndIf over Eq against
// each literal pattern, per spec.md §4.3's IR emission rule. The scrutinee
// is evaluated once into a fresh temporary so each branch's comparison
// re-reads the same value instead of re-evaluating a (possibly
// side-effecting) expression.
func (an *Analyzer) analyzeMatch(scope ScopeID, expr *ast.Expression) result {
	scrutinee := an.analyzeExpr(scope, expr.Scrutinee)
	if !scrutinee.Type.IsInteger() && scrutinee.Type.Kind != types.Boolean && scrutinee.Type.Kind != types.Enumeration {
		an.error(errMatchInvalidScrutinee(expr.Loc, scrutinee.Type.String()))
	}

	tmp := an.alloc(1)
	an.emit(ir.Instruction{Op: ir.OpStore, Addr: tmp, Loc: expr.Loc})

	if len(expr.Arms) < 2 {
		an.error(errMatchNonExhaustive(expr.Loc))
	}

	var resultType types.Type

	exhausted := false
	depth := 0

	for i, arm := range expr.Arms {
		if exhausted {
			an.error(errMatchUnreachable(arm.Loc))
		}

		switch arm.Pattern.Kind {
		case ast.PatternLiteral:
			an.emit(ir.Instruction{Op: ir.OpLoad, Addr: tmp, Loc: arm.Loc})
			an.analyzeLiteral(&ast.Expression{Loc: arm.Loc, Kind: ast.ExprKindOperand, OperandKind: ast.OperandLiteral, Literal: arm.Pattern.Literal})
			an.emit(ir.Instruction{Op: ir.OpEq, Loc: arm.Loc})
			an.emit(ir.Instruction{Op: ir.OpIf, Loc: arm.Loc})

			bodyScope := an.arena.Push(scope)
			r := an.analyzeExpr(bodyScope, &arm.Body)

			if i == 0 {
				resultType = r.Type
			} else if !r.Type.Equal(resultType) {
				an.error(errMatchBranchTypeMismatch(arm.Loc, resultType.String(), r.Type.String()))
			}

			an.emit(ir.Instruction{Op: ir.OpElse, Loc: arm.Loc})
			depth++

		case ast.PatternBinding, ast.PatternWildcard:
			bodyScope := an.arena.Push(scope)

			if arm.Pattern.Kind == ast.PatternBinding {
				addr := an.alloc(1)
				an.emit(ir.Instruction{Op: ir.OpLoad, Addr: tmp, Loc: arm.Loc})
				an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr, Loc: arm.Loc})
				an.arena.Declare(bodyScope, Binding{Name: arm.Pattern.Name, Kind: BindingVariable, Type: scrutinee.Type, Addr: addr})
			}

			r := an.analyzeExpr(bodyScope, &arm.Body)

			if i == 0 {
				resultType = r.Type
			} else if !r.Type.Equal(resultType) {
				an.error(errMatchBranchTypeMismatch(arm.Loc, resultType.String(), r.Type.String()))
			}

			exhausted = true
		}
	}

	for ; depth > 0; depth-- {
		an.emit(ir.Instruction{Op: ir.OpEndIf, Loc: expr.Loc})
	}

	if len(expr.Arms) >= 2 && !exhausted {
		an.error(errMatchNonExhaustive(expr.Loc))
	}

	return result{Type: resultType}
}

func (an *Analyzer) analyzeArrayLiteral(scope ScopeID, expr *ast.Expression) result {
	if expr.RepeatSize != nil {
		size, err := an.evalConst(scope, expr.RepeatSize)
		if err != nil {
			an.error(errNonConstant(expr.Loc, err.Error()))
			return result{}
		}

		n := uint(size.Int.Uint64())
		var elem result

		for i := uint(0); i < n; i++ {
			elem = an.analyzeExpr(scope, &expr.Elements[0])
		}

		return result{Type: types.NewArray(elem.Type, n)}
	}

	var elem result

	for i := range expr.Elements {
		elem = an.analyzeExpr(scope, &expr.Elements[i])
	}

	return result{Type: types.NewArray(elem.Type, uint(len(expr.Elements)))}
}

func (an *Analyzer) analyzeStructLiteral(scope ScopeID, expr *ast.Expression) result {
	b, ok := an.arena.Resolve(scope, expr.StructPath)
	if !ok {
		an.error(errUnresolvedName(expr.Loc, joinPath(expr.StructPath)))
	}

	for i := range expr.Fields {
		an.analyzeExpr(scope, &expr.Fields[i].Value)
	}

	if ok {
		return result{Type: types.NewStructure(b.Name, b.Fields)}
	}

	return result{}
}

func scalarToType(s ir.ScalarType) types.Type {
	switch s.Kind {
	case ir.ScalarBool:
		return types.Type{Kind: types.Boolean}
	case ir.ScalarField:
		return types.NewField()
	default:
		if s.IsSigned {
			return types.NewSigned(s.Bitlength)
		}

		return types.NewUnsigned(s.Bitlength)
	}
}
