package semantic

import (
	"math/big"

	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/types"
)

// lowerTopLevel walks the already-declared items a second time, emitting
// each function/contract method body. Declaration (declareTopLevel) and
// lowering are split into two passes so forward references between
// top-level items resolve regardless of source order.
func (an *Analyzer) lowerTopLevel(scope ScopeID, items []ast.Statement) {
	for i := range items {
		an.lowerItem(scope, &items[i])
	}
}

func (an *Analyzer) lowerItem(scope ScopeID, item *ast.Statement) {
	switch item.Kind {
	case ast.StmtFn:
		b, ok := an.arena.Lookup(scope, item.Name)
		if !ok {
			return
		}

		an.lowerFn(scope, item, b.EntryIndex, b.ParamTypes, b.ReturnType, item.Name == "main", nil)

	case ast.StmtContract:
		ci := an.contractByName[item.ContractName]
		contractScope := scope

		if b, ok := an.arena.Lookup(scope, item.ContractName); ok {
			contractScope = b.Child
		}

		for i := range item.ContractMethods {
			method := &item.ContractMethods[i]

			b, ok := an.arena.Lookup(contractScope, method.Name)
			if !ok {
				continue
			}

			an.lowerFn(contractScope, method, b.EntryIndex, b.ParamTypes, b.ReturnType, true, ci)
		}

		if ci != nil && ci.implicitNew != nil {
			an.lowerImplicitConstructor(ci, item.Loc)
		}

	case ast.StmtMod:
		if b, ok := an.arena.Lookup(scope, item.ModName); ok {
			an.lowerTopLevel(b.Child, item.ModItems)
		}

	case ast.StmtImpl:
		// An impl block's associated functions are subroutines hung off the
		// target type's own namespace (`Point::new(...)`), not circuit
		// entries: they were never walked by declareTopLevel, so both passes
		// run here, against the target's own child scope.
		b, ok := an.arena.Lookup(scope, item.ImplTarget)
		if !ok {
			return
		}

		an.declareTopLevel(b.Child, item.ImplItems)
		an.lowerTopLevel(b.Child, item.ImplItems)
	}
}

// lowerFn lowers one function/contract-method body. isEntry distinguishes a
// circuit boundary (`fn main`, every contract method — parameters/returns
// crossing via OpInput/OpOutput) from an ordinary subroutine, whose
// parameters/returns cross via pkg/vm/calls.go's call()/ret() copying the
// data stack directly into/out of the callee's own frame.
func (an *Analyzer) lowerFn(
	scope ScopeID, item *ast.Statement, entryIndex uint,
	params []types.Type, ret types.Type, isEntry bool, ci *contractInfo,
) {
	prog := &an.unit.Entries[entryIndex]
	fnScope := an.arena.Push(scope)

	prev := an.fn
	an.fn = &funcState{prog: prog, scope: fnScope, contract: ci}
	defer func() { an.fn = prev }()

	if ci != nil {
		if tb, ok := an.txBindings[entryIndex]; ok {
			prog.ParamTypes = append(prog.ParamTypes, an.lowerTxParam(fnScope, tb, item.Loc)...)
		}
	}

	for i, p := range item.Params {
		t := params[i]
		addr := an.alloc(t.Size())
		prog.ParamTypes = append(prog.ParamTypes, scalarOf(t))

		if isEntry {
			for k := uint(0); k < t.Size(); k++ {
				an.emit(ir.Instruction{Op: ir.OpInput, Loc: p.Loc})
				an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr + k, Loc: p.Loc})
			}
		}

		an.arena.Declare(fnScope, Binding{Name: p.Name, Kind: BindingVariable, Type: t, Addr: addr})
	}

	prog.ReturnType = scalarOf(ret)
	prog.IsConstructor = ci != nil && item.Name == "new"

	body := an.analyzeExpr(fnScope, item.FnBody)
	if ret.Kind != types.Unit && !body.Type.Equal(ret) {
		an.error(errTypeMismatch(item.Loc, "return", body.Type.String(), ret.String()))
	}

	if isEntry {
		for k := uint(0); k < ret.Size(); k++ {
			an.emit(ir.Instruction{Op: ir.OpOutput, Loc: item.Loc})
		}

		return
	}

	an.emit(ir.Instruction{Op: ir.OpReturn, ArgsSize: ret.Size(), Loc: item.Loc})
}

// transactionType is the synthesized input struct a #[zksync::msg]-attributed
// contract method's caller-supplied message decodes into (SPEC_FULL.md §4
// item 2), mirroring zinc-vm's contract_exec message struct: an on-chain
// address for the caller and the token transfer's counterparty/token/amount.
func transactionType() types.Type {
	return types.NewStructure("Transaction", []types.StructField{
		{Name: "sender", Type: types.NewUnsigned(160)},
		{Name: "recipient", Type: types.NewUnsigned(160)},
		{Name: "token_address", Type: types.NewUnsigned(160)},
		{Name: "amount", Type: types.NewField()},
	})
}

// lowerTxParam emits the boundary-input sequence for the synthesized
// Transaction parameter a #[zksync::msg] attribute prepends to a contract
// method's input list, and declares tb's four local names against the
// field each was bound to. Returns the field types in declaration order, to
// prepend to the method's ir.Program.ParamTypes.
func (an *Analyzer) lowerTxParam(fnScope ScopeID, tb txBinding, loc source.Location) []ir.ScalarType {
	txType := transactionType()
	names := [4]string{tb.sender, tb.recipient, tb.tokenAddress, tb.amount}

	paramTypes := make([]ir.ScalarType, len(txType.Fields))

	for i, f := range txType.Fields {
		addr := an.alloc(f.Type.Size())
		paramTypes[i] = scalarOf(f.Type)

		for k := uint(0); k < f.Type.Size(); k++ {
			an.emit(ir.Instruction{Op: ir.OpInput, Loc: loc})
			an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr + k, Loc: loc})
		}

		if names[i] != "" {
			an.arena.Declare(fnScope, Binding{Name: names[i], Kind: BindingVariable, Type: f.Type, Addr: addr})
		}
	}

	return paramTypes
}

// lowerImplicitConstructor emits the body of a contract's synthesized
// zero-initializing constructor (SPEC_FULL.md §4 item 4): one Push(0)/
// StorageStore pair per storage slot, including the synthesized "address"
// slot, in declaration order.
func (an *Analyzer) lowerImplicitConstructor(ci *contractInfo, loc source.Location) {
	prog := &an.unit.Entries[*ci.implicitNew]

	prev := an.fn
	an.fn = &funcState{prog: prog, scope: ci.scope, contract: ci}
	defer func() { an.fn = prev }()

	for _, se := range ci.entries {
		an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: "0", Type: se.Type, Loc: loc})
		an.emit(ir.Instruction{Op: ir.OpStorageStore, Addr: se.Slot, Size: 1, Loc: loc})
	}
}

// lowerStmt lowers one statement inside a function/method body.
func (an *Analyzer) lowerStmt(scope ScopeID, stmt *ast.Statement) {
	switch stmt.Kind {
	case ast.StmtLet:
		an.lowerLet(scope, stmt)

	case ast.StmtConst, ast.StmtStatic:
		an.declareConstOrStatic(scope, stmt)

	case ast.StmtFor:
		an.lowerFor(scope, stmt)

	case ast.StmtExpr:
		r := an.analyzeExpr(scope, stmt.Expr)
		an.discard(r.Type, stmt.Loc)

	case ast.StmtReturn:
		// The IR has no jump/goto, so `return` is only valid in tail
		// position — its value simply stays on the stack for the entry's
		// own epilogue (OpOutput/OpReturn), exactly like a block tail
		// expression. Early return from inside a conditional is rejected by
		// construction: nothing re-reads the pushed value past this point.
		if stmt.Value != nil {
			an.analyzeExpr(scope, stmt.Value)
		}

	case ast.StmtFn, ast.StmtStruct, ast.StmtEnum, ast.StmtContract, ast.StmtType, ast.StmtImpl, ast.StmtMod, ast.StmtUse:
		// A nested item declaration inside a block body (spec.md permits a
		// local `fn`/`struct`/`const`): declare then immediately lower, since
		// there is no separate walk over statement-level items.
		an.declareItem(scope, stmt)
		an.lowerItem(scope, stmt)
	}
}

// discard erases the value an expression-statement's expression left on the
// stack, when that value is never consumed. Mirrors popDiscard's "erase the
// instruction rather than emit a runtime Pop" approach where the value was
// just produced by a Load; a general expression may leave an arbitrary
// instruction on top, so an explicit Pop is emitted instead.
func (an *Analyzer) discard(t types.Type, loc source.Location) {
	for k := uint(0); k < t.Size(); k++ {
		an.emit(ir.Instruction{Op: ir.OpPop, Loc: loc})
	}
}

func (an *Analyzer) lowerLet(scope ScopeID, stmt *ast.Statement) {
	var t types.Type

	hasValue := stmt.Value != nil
	var val result

	if hasValue {
		val = an.analyzeExpr(scope, stmt.Value)
	}

	if stmt.DeclaredType != nil {
		rt, errs := an.resolveType(scope, stmt.DeclaredType)
		an.reportAll(errs)
		t = rt

		if hasValue && !val.Type.Equal(t) {
			an.error(errTypeMismatch(stmt.Loc, "let", val.Type.String(), t.String()))
		}
	} else {
		t = val.Type
	}

	addr := an.alloc(t.Size())

	if hasValue {
		// The value's scalars are already on the stack in evaluation order
		// (first element pushed first, so it now sits deepest); store them
		// back to front so each lands at its matching offset.
		for k := t.Size(); k > 0; k-- {
			an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr + k - 1, Loc: stmt.Loc})
		}
	}

	an.arena.Declare(scope, Binding{Name: stmt.Name, Kind: BindingVariable, Type: t, Addr: addr, Mutable: stmt.IsMutable})
}

// lowerFor lowers a `for` loop. The VM has no branch/jump instructions for
// loop control (OpLoopBegin/OpLoopEnd are disassembly markers only — see
// pkg/vm/vm.go), so the loop is unrolled here at compile time into LoopCount
// literal copies of the body, each with its own fresh index binding.
func (an *Analyzer) lowerFor(scope ScopeID, stmt *ast.Statement) {
	if stmt.RangeIsArray {
		an.lowerForArray(scope, stmt)
		return
	}

	startV, err1 := an.evalConst(scope, stmt.RangeStart)
	endV, err2 := an.evalConst(scope, stmt.RangeEnd)

	if err1 != nil || err2 != nil {
		an.error(errNonConstant(stmt.Loc, "for-loop bounds must be compile-time constants"))
		return
	}

	if startV.Kind != consteval.KindInt || endV.Kind != consteval.KindInt {
		an.error(errForRangeNotInteger(stmt.Loc))
		return
	}

	start := startV.Int.Int64()
	end := endV.Int.Int64()

	n := end - start
	if n < 0 {
		n = 0
	}

	idxType := loopIndexType(startV.Int, endV.Int)

	latch := an.allowedLatch(scope, stmt)

	an.emit(ir.Instruction{Op: ir.OpLoopBegin, LoopCount: uint(n), Loc: stmt.Loc})

	for i := start; i < end; i++ {
		bodyScope := an.arena.Push(scope)
		addr := an.alloc(1)

		an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: big.NewInt(i).String(), Type: scalarOf(idxType), Loc: stmt.Loc})
		an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr, Loc: stmt.Loc})
		an.arena.Declare(bodyScope, Binding{Name: stmt.LoopVar, Kind: BindingVariable, Type: idxType, Addr: addr})

		an.lowerLoopBody(bodyScope, stmt, latch)
	}

	an.emit(ir.Instruction{Op: ir.OpLoopEnd, Loc: stmt.Loc})
}

// lowerForArray lowers the `for x in array { }` sugar (SPEC_FULL.md §4 item
// 3): the array must be a place (a local variable, a parameter, ...) so its
// elements can be read by static offset at each unrolled iteration.
func (an *Analyzer) lowerForArray(scope ScopeID, stmt *ast.Statement) {
	arr := an.analyzeExpr(scope, stmt.ArrayExpr)
	an.popDiscard()

	if arr.Type.Kind != types.Array {
		an.error(errIndexNotArray(stmt.Loc, arr.Type.String()))
		return
	}

	if !arr.IsPlace {
		an.error(errNotAPlace(stmt.Loc))
		return
	}

	elemType := *arr.Type.Element
	elemSize := elemType.Size()
	n := arr.Type.Length

	latch := an.allowedLatch(scope, stmt)

	an.emit(ir.Instruction{Op: ir.OpLoopBegin, LoopCount: n, Loc: stmt.Loc})

	for i := uint(0); i < n; i++ {
		bodyScope := an.arena.Push(scope)
		addr := an.alloc(elemSize)

		for k := uint(0); k < elemSize; k++ {
			an.emit(ir.Instruction{Op: ir.OpLoad, Addr: arr.Addr + i*elemSize + k, Loc: stmt.Loc})
			an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr + k, Loc: stmt.Loc})
		}

		an.arena.Declare(bodyScope, Binding{Name: stmt.LoopVar, Kind: BindingVariable, Type: elemType, Addr: addr})

		an.lowerLoopBody(bodyScope, stmt, latch)
	}

	an.emit(ir.Instruction{Op: ir.OpLoopEnd, Loc: stmt.Loc})
}

// allowedLatch allocates and initializes the sticky "allowed" boolean a
// `while`-qualified loop gates its body on, per original_source/zinc-compiler's
// for.rs: a single memory cell allocated once before the loop begins, set
// true here, and from then on only ever ANDed with the freshly evaluated
// condition — once the condition first fails the latch is false for every
// remaining iteration, it is never set back to true. Returns an invalid
// address (noAddr) when the loop carries no `while` clause.
func (an *Analyzer) allowedLatch(scope ScopeID, stmt *ast.Statement) uint {
	if stmt.WhileCond == nil {
		return noAddr
	}

	addr := an.alloc(1)

	an.emit(ir.Instruction{Op: ir.OpPush, ConstantText: "1", Type: scalarOf(types.Type{Kind: types.Boolean}), Loc: stmt.Loc})
	an.emit(ir.Instruction{Op: ir.OpStore, Addr: addr, Loc: stmt.Loc})

	return addr
}

// noAddr marks the absence of a while-latch address; 0 is a valid memory
// address in this VM, so allowedLatch's caller distinguishes "no while
// clause" explicitly rather than by a zero check.
const noAddr = ^uint(0)

// lowerLoopBody evaluates one unrolled iteration's body, wrapping it in an
// If guard gated on the loop's sticky "allowed" latch when the loop carries
// a `while` early-exit condition: the latch is ANDed with this iteration's
// freshly evaluated condition and stored back before the guard reads it, so
// once the condition first fails the body stops running for every
// subsequent iteration even if the condition later becomes true again.
func (an *Analyzer) lowerLoopBody(bodyScope ScopeID, stmt *ast.Statement, latch uint) {
	if stmt.WhileCond != nil {
		cond := an.analyzeExpr(bodyScope, stmt.WhileCond)
		if cond.Type.Kind != types.Boolean {
			an.error(errConditionNotBool(stmt.WhileCond.Loc, cond.Type.String()))
		}

		an.emit(ir.Instruction{Op: ir.OpLoad, Addr: latch, Loc: stmt.Loc})
		an.emit(ir.Instruction{Op: ir.OpAnd, Loc: stmt.Loc})
		an.emit(ir.Instruction{Op: ir.OpStore, Addr: latch, Loc: stmt.Loc})
		an.emit(ir.Instruction{Op: ir.OpLoad, Addr: latch, Loc: stmt.Loc})

		an.emit(ir.Instruction{Op: ir.OpIf, Loc: stmt.Loc})
		r := an.analyzeExpr(bodyScope, stmt.Body)
		an.discard(r.Type, stmt.Loc)
		an.emit(ir.Instruction{Op: ir.OpEndIf, Loc: stmt.Loc})

		return
	}

	r := an.analyzeExpr(bodyScope, stmt.Body)
	an.discard(r.Type, stmt.Loc)
}

// loopIndexType picks the smallest integer type (signed if either bound is
// negative) fitting both ends of a for-loop range, per SPEC_FULL.md's
// carried-over index-typing rule.
func loopIndexType(start, end *big.Int) types.Type {
	if start.Sign() < 0 || end.Sign() < 0 {
		bits := maxAbsBitLen(start, end) + 1
		return types.NewSigned(signedWidthFor(bits))
	}

	return widestFitting(maxMagnitude(start, end))
}

func maxAbsBitLen(a, b *big.Int) int {
	ba := new(big.Int).Abs(a).BitLen()
	bb := new(big.Int).Abs(b).BitLen()

	if ba > bb {
		return ba
	}

	return bb
}

func maxMagnitude(a, b *big.Int) *big.Int {
	if a.CmpAbs(b) >= 0 {
		return a
	}

	return b
}

func signedWidthFor(bits int) uint {
	for _, w := range []uint{8, 16, 32, 64, 128, 248} {
		if uint(bits) <= w {
			return w
		}
	}

	return 248
}
