package semantic

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/types"
)

func (an *Analyzer) analyzeOperator(scope ScopeID, expr *ast.Expression) result {
	switch {
	case expr.Op.IsAssignment():
		return an.analyzeAssignment(scope, expr)
	case expr.Op.IsUnary():
		return an.analyzeUnary(scope, expr)
	case expr.Op == ast.OpIndex:
		return an.analyzeIndex(scope, expr)
	case expr.Op == ast.OpField:
		return an.analyzeField(scope, expr)
	case expr.Op == ast.OpCall:
		return an.analyzeCall(scope, expr)
	case expr.Op == ast.OpCast:
		return an.analyzeCast(scope, expr)
	default:
		return an.analyzeBinary(scope, expr)
	}
}

func (an *Analyzer) analyzeUnary(scope ScopeID, expr *ast.Expression) result {
	left := an.analyzeExpr(scope, expr.Left)

	switch expr.Op {
	case ast.OpNeg:
		if !left.Type.IsInteger() || !left.Type.IsSigned() {
			an.error(errTypeMismatch(expr.Loc, "-", left.Type.String(), "signed integer"))
		}

		an.emit(ir.Instruction{Op: ir.OpNeg, Type: scalarOf(left.Type), Loc: expr.Loc})
	case ast.OpNot:
		if left.Type.Kind != types.Boolean {
			an.error(errTypeMismatch(expr.Loc, "!", left.Type.String(), "bool"))
		}

		an.emit(ir.Instruction{Op: ir.OpNot, Loc: expr.Loc})
	case ast.OpBitNot:
		if !left.Type.IsInteger() {
			an.error(errTypeMismatch(expr.Loc, "~", left.Type.String(), "integer"))
		}

		an.emit(ir.Instruction{Op: ir.OpBitNot, Type: scalarOf(left.Type), Loc: expr.Loc})
	}

	return result{Type: left.Type}
}

// binaryOpcode maps an ast.Operator to its IR opcode for the families
// sharing a uniform `evaluate both sides, emit one instruction` shape.
var binaryOpcode = map[ast.Operator]ir.Op{
	ast.OpAdd: ir.OpAdd, ast.OpSub: ir.OpSub, ast.OpMul: ir.OpMul,
	ast.OpDiv: ir.OpDiv, ast.OpRem: ir.OpRem,
	ast.OpBitAnd: ir.OpBitAnd, ast.OpBitOr: ir.OpBitOr, ast.OpBitXor: ir.OpBitXor,
	ast.OpShl: ir.OpShl, ast.OpShr: ir.OpShr,
	ast.OpEq: ir.OpEq, ast.OpNe: ir.OpNe,
	ast.OpLt: ir.OpLt, ast.OpLe: ir.OpLe, ast.OpGt: ir.OpGt, ast.OpGe: ir.OpGe,
	ast.OpAnd: ir.OpAnd, ast.OpOr: ir.OpOr, ast.OpXor: ir.OpXor,
}

func (an *Analyzer) analyzeBinary(scope ScopeID, expr *ast.Expression) result {
	left := an.analyzeExpr(scope, expr.Left)
	right := an.analyzeExpr(scope, expr.Right)

	op, ok := binaryOpcode[expr.Op]
	if !ok {
		an.error(errUnresolvedName(expr.Loc, "<operator>"))
		return result{}
	}

	switch expr.Op {
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		if left.Type.Kind != types.Boolean || right.Type.Kind != types.Boolean {
			an.error(errTypeMismatch(expr.Loc, opName(expr.Op), left.Type.String(), right.Type.String()))
		}

		an.emit(ir.Instruction{Op: op, Loc: expr.Loc})

		return result{Type: types.Type{Kind: types.Boolean}}

	case ast.OpEq, ast.OpNe:
		if !left.Type.Equal(right.Type) {
			an.error(errTypeMismatch(expr.Loc, opName(expr.Op), left.Type.String(), right.Type.String()))
		}

		an.emit(ir.Instruction{Op: op, Type: scalarOf(left.Type), Loc: expr.Loc})

		return result{Type: types.Type{Kind: types.Boolean}}

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !left.Type.Equal(right.Type) || !left.Type.IsInteger() {
			an.error(errTypeMismatch(expr.Loc, opName(expr.Op), left.Type.String(), right.Type.String()))
		}

		an.emit(ir.Instruction{Op: op, Type: scalarOf(left.Type), Loc: expr.Loc})

		return result{Type: types.Type{Kind: types.Boolean}}

	default: // arithmetic / bitwise / shift
		if !left.Type.Equal(right.Type) {
			an.error(errTypeMismatch(expr.Loc, opName(expr.Op), left.Type.String(), right.Type.String()))
		}

		an.emit(ir.Instruction{Op: op, Type: scalarOf(left.Type), Loc: expr.Loc})

		return result{Type: left.Type}
	}
}

func opName(op ast.Operator) string {
	names := map[ast.Operator]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpRem: "%",
		ast.OpBitAnd: "&", ast.OpBitOr: "|", ast.OpBitXor: "^", ast.OpShl: "<<", ast.OpShr: ">>",
		ast.OpEq: "==", ast.OpNe: "!=", ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
		ast.OpAnd: "&&", ast.OpOr: "||", ast.OpXor: "^^",
	}

	return names[op]
}

// compoundOp maps a compound-assignment operator to the arithmetic/bitwise
// operator it implicitly applies: `x op= e` lowers to `x = x op e`.
var compoundOp = map[ast.Operator]ast.Operator{
	ast.OpAssignAdd: ast.OpAdd, ast.OpAssignSub: ast.OpSub, ast.OpAssignMul: ast.OpMul,
	ast.OpAssignDiv: ast.OpDiv, ast.OpAssignRem: ast.OpRem,
	ast.OpAssignBitAnd: ast.OpBitAnd, ast.OpAssignBitOr: ast.OpBitOr, ast.OpAssignBitXor: ast.OpBitXor,
	ast.OpAssignShl: ast.OpShl, ast.OpAssignShr: ast.OpShr,
}

func (an *Analyzer) analyzeAssignment(scope ScopeID, expr *ast.Expression) result {
	// Evaluate the LHS once. For a plain `=`, the resulting Load is unused
	// (popDiscard erases it); for a compound `op=`, it supplies the left
	// operand already sitting on the stack.
	place := an.analyzeExpr(scope, expr.Left)
	if !place.IsPlace {
		an.error(errNotAPlace(expr.Loc))
	}

	if place.SelfField == "" && !place.Mutable {
		an.error(errImmutableAssign(expr.Loc, place.BindName))
	}

	if place.SelfField == "address" {
		an.error(errAddressAssign(expr.Loc))
	}

	if expr.Op == ast.OpAssign {
		an.popDiscard()

		an.analyzeExpr(scope, expr.Right)
		an.storeTo(place, expr.Loc)

		// storeTo consumed the value, so the assignment itself leaves nothing.
		return result{Type: types.Type{Kind: types.Unit}}
	}

	right := an.analyzeExpr(scope, expr.Right)

	if !place.Type.Equal(right.Type) {
		an.error(errTypeMismatch(expr.Loc, opName(compoundOp[expr.Op]), place.Type.String(), right.Type.String()))
	}

	an.emit(ir.Instruction{Op: binaryOpcode[compoundOp[expr.Op]], Type: scalarOf(place.Type), Loc: expr.Loc})
	an.storeTo(place, expr.Loc)

	return result{Type: types.Type{Kind: types.Unit}}
}

// popDiscard removes the last-emitted Load when the caller only needed the
// place information, not the loaded value itself, by erasing the trailing
// instruction rather than emitting a runtime Pop (the VM never sees a value
// it didn't need).
func (an *Analyzer) popDiscard() {
	body := an.fn.prog.Body

	if n := len(body); n > 0 && body[n-1].Op == ir.OpLoadByIndex {
		body = body[:n-1]
		// The index-reload Load immediately preceding it is paired with
		// this LoadByIndex; the OpStore that fed it (holding the index in
		// its memory temporary) stays, for storeTo to reload later.
		if n := len(body); n > 0 && body[n-1].Op == ir.OpLoad {
			body = body[:n-1]
		}

		an.fn.prog.Body = body

		return
	}

	if len(body) > 0 && (body[len(body)-1].Op == ir.OpLoad || body[len(body)-1].Op == ir.OpStorageLoad) {
		an.fn.prog.Body = body[:len(body)-1]
	}
}

// storeTo emits the Store/StorageStore that writes the top-of-stack value
// into place.
func (an *Analyzer) storeTo(place result, loc source.Location) {
	if place.SelfField != "" {
		an.emit(ir.Instruction{Op: ir.OpStorageStore, Addr: an.fn.contract.storage[place.SelfField].Slot, Size: 1, Loc: loc})
		return
	}

	if place.HasIndex {
		an.emit(ir.Instruction{Op: ir.OpLoad, Addr: place.IndexAddr, Loc: loc})
		an.emit(ir.Instruction{Op: ir.OpStoreByIndex, Addr: place.Addr, Loc: loc})

		return
	}

	an.emit(ir.Instruction{Op: ir.OpStore, Addr: place.Addr, Loc: loc})
}
