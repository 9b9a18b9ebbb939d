package semantic

import (
	"math/big"
	"strings"

	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/types"
)

// analyzeIndex lowers `base[index]`. The index value is stashed in a fresh
// memory temporary (idxTmp) rather than consumed immediately: as a plain
// read it is reloaded right away, but when this expression turns out to be
// an assignment target, storeTo reloads idxTmp *after* the right-hand side
// has been evaluated, matching OpStoreByIndex's (value, index) pop order.
func (an *Analyzer) analyzeIndex(scope ScopeID, expr *ast.Expression) result {
	base := an.analyzeExpr(scope, expr.Left)
	an.popDiscard()

	if base.Type.Kind != types.Array {
		an.error(errIndexNotArray(expr.Loc, base.Type.String()))
		return result{}
	}

	idx := an.analyzeExpr(scope, expr.Right)
	if !idx.Type.IsInteger() {
		an.error(errTypeMismatch(expr.Loc, "[]", idx.Type.String(), "integer"))
	}

	idxTmp := an.alloc(1)
	an.emit(ir.Instruction{Op: ir.OpStore, Addr: idxTmp, Loc: expr.Loc})
	an.emit(ir.Instruction{Op: ir.OpLoad, Addr: idxTmp, Loc: expr.Loc})
	an.emit(ir.Instruction{Op: ir.OpLoadByIndex, Addr: base.Addr, Loc: expr.Loc})

	return result{
		Type: *base.Type.Element, IsPlace: true, Addr: base.Addr,
		HasIndex: true, IndexAddr: idxTmp, Mutable: base.Mutable, BindName: base.BindName,
	}
}

// fieldSelectorName reports the named-field selector text of a `.name`
// access, as opposed to a `.0` tuple index (see tupleSelectorIndex) —
// pkg/parser's parseFieldSelector represents both as operand expressions,
// disambiguated by OperandKind.
func fieldSelectorName(sel *ast.Expression) (string, bool) {
	if sel.OperandKind == ast.OperandIdentifier && len(sel.Path) == 1 {
		return sel.Path[0], true
	}

	return "", false
}

func tupleSelectorIndex(sel *ast.Expression) (int, bool) {
	if sel.OperandKind != ast.OperandLiteral || sel.Literal.Kind != ast.LiteralInteger {
		return 0, false
	}

	n, ok := new(big.Int).SetString(sel.Literal.IntegerText, 0)
	if !ok {
		return 0, false
	}

	return int(n.Int64()), true
}

// structFieldOffset returns the flattened memory offset and type of a named
// field, walking the preceding fields' sizes (spec.md §3.3's "every value
// has a size expressible in whole field elements").
func structFieldOffset(fields []types.StructField, name string) (uint, types.Type, bool) {
	var offset uint

	for _, f := range fields {
		if f.Name == name {
			return offset, f.Type, true
		}

		offset += f.Type.Size()
	}

	return 0, types.Type{}, false
}

func isSelfOperand(e *ast.Expression) bool {
	return e.Kind == ast.ExprKindOperand && e.OperandKind == ast.OperandIdentifier &&
		len(e.Path) == 1 && e.Path[0] == "self"
}

// analyzeField lowers `base.name` / `base.0`. A `self.field` base is routed
// through contract storage (OpStorageLoad) rather than ordinary memory,
// regardless of whether the parser folds `self.x` into a single identifier
// path (handled by analyzeIdentifier) or an explicit OpField node over a
// `self` operand (handled here) — both shapes are supported defensively.
func (an *Analyzer) analyzeField(scope ScopeID, expr *ast.Expression) result {
	if isSelfOperand(expr.Left) && an.fn != nil && an.fn.contract != nil {
		name, ok := fieldSelectorName(expr.Right)
		if !ok {
			an.error(errNoSuchField(expr.Loc, an.fn.contract.name, "<tuple index>"))
			return result{}
		}

		se, ok := an.fn.contract.storage[name]
		if !ok {
			an.error(errNoSuchField(expr.Loc, an.fn.contract.name, name))
			return result{}
		}

		t := scalarToType(se.Type)
		an.emit(ir.Instruction{Op: ir.OpStorageLoad, Addr: se.Slot, Size: 1, Loc: expr.Loc})

		return result{Type: t, IsPlace: true, SelfField: name, BindName: name}
	}

	base := an.analyzeExpr(scope, expr.Left)
	an.popDiscard()

	switch base.Type.Kind {
	case types.Structure, types.Contract:
		name, ok := fieldSelectorName(expr.Right)
		if !ok {
			an.error(errNoSuchField(expr.Loc, base.Type.String(), "<tuple index>"))
			return result{}
		}

		offset, fieldType, ok := structFieldOffset(base.Type.Fields, name)
		if !ok {
			an.error(errNoSuchField(expr.Loc, base.Type.String(), name))
			return result{}
		}

		an.emit(ir.Instruction{Op: ir.OpLoad, Addr: base.Addr + offset, Loc: expr.Loc})

		return result{Type: fieldType, IsPlace: true, Addr: base.Addr + offset, Mutable: base.Mutable, BindName: base.BindName}

	case types.Tuple:
		idx, ok := tupleSelectorIndex(expr.Right)
		if !ok || idx < 0 || idx >= len(base.Type.Elements) {
			an.error(errTupleIndexOutOfRange(expr.Loc, idx, len(base.Type.Elements)))
			return result{}
		}

		var offset uint
		for _, e := range base.Type.Elements[:idx] {
			offset += e.Size()
		}

		fieldType := base.Type.Elements[idx]
		an.emit(ir.Instruction{Op: ir.OpLoad, Addr: base.Addr + offset, Loc: expr.Loc})

		return result{Type: fieldType, IsPlace: true, Addr: base.Addr + offset, Mutable: base.Mutable, BindName: base.BindName}

	default:
		an.error(errFieldAccessNotAStruct(expr.Loc, base.Type.String()))
		return result{}
	}
}

// analyzeCast lowers `expr as T`, rejecting everything but strict integer
// widenings per spec.md §4.3 item 8.
func (an *Analyzer) analyzeCast(scope ScopeID, expr *ast.Expression) result {
	operand := an.analyzeExpr(scope, expr.Left)

	target, errs := an.resolveType(scope, expr.CastType)
	an.reportAll(errs)

	if !castLegal(operand.Type, target) {
		an.error(errCastIllegal(expr.Loc, operand.Type.String(), target.String()))
	}

	an.emit(ir.Instruction{Op: ir.OpCast, TargetType: scalarOf(target), Loc: expr.Loc})

	return result{Type: target}
}

// analyzeCall lowers a call expression. Its callee shape determines the
// dispatch: `require`/`dbg` are recognized by literal name (spec.md's
// intrinsics are call-lowered specially, not scope-bound); a field-selector
// callee is a method/library call (`self.method(...)`,
// `self.balances.get(...)`, `some_contract.fetch(...)`); anything else is a
// plain path naming a free function or a `std::` library routine.
func (an *Analyzer) analyzeCall(scope ScopeID, expr *ast.Expression) result {
	args := expr.Right.Elements

	if callee := expr.Left; callee.Kind == ast.ExprKindOperand && callee.OperandKind == ast.OperandIdentifier && len(callee.Path) == 1 {
		switch callee.Path[0] {
		case "require":
			if len(args) != 1 {
				an.error(errCallArity(expr.Loc, "require", 1, len(args)))
			}

			for i := range args {
				an.analyzeExpr(scope, &args[i])
			}

			an.emit(ir.Instruction{Op: ir.OpRequire, Loc: expr.Loc})

			return result{Type: types.Type{Kind: types.Unit}}

		case "dbg":
			return an.analyzeDbg(scope, expr, args)
		}
	}

	if expr.Left.Kind == ast.ExprKindOperator && expr.Left.Op == ast.OpField {
		return an.analyzeMethodCall(scope, expr, args)
	}

	path := expr.Left.Path

	b, ok := an.arena.Resolve(scope, path)
	if !ok {
		an.error(errUnresolvedName(expr.Loc, joinPath(path)))

		for i := range args {
			an.analyzeExpr(scope, &args[i])
		}

		return result{}
	}

	switch b.Kind {
	case BindingFunction:
		return an.emitCall(scope, expr.Loc, joinPath(path), b.EntryIndex, b.ParamTypes, b.ReturnType, args)
	case BindingLibrary:
		return an.emitLibraryCall(scope, expr.Loc, joinPath(path), b, args)
	default:
		an.error(errNotCallable(expr.Loc, joinPath(path)))
		return result{}
	}
}

// analyzeDbg lowers `dbg!(fmt, values...)`. The leading argument must be a
// string literal carrying one `{}` placeholder per trailing value argument;
// the placeholder count is checked against the trailing argument count here,
// at compile time, rather than left to the logger at runtime.
func (an *Analyzer) analyzeDbg(scope ScopeID, expr *ast.Expression, args []ast.Expression) result {
	if len(args) == 0 {
		an.error(errCallArity(expr.Loc, "dbg", 1, 0))
		return result{Type: types.Type{Kind: types.Unit}}
	}

	format := args[0]

	var fmtText string

	if format.Kind != ast.ExprKindOperand || format.OperandKind != ast.OperandLiteral || format.Literal.Kind != ast.LiteralString {
		an.error(errDbgFormatNotString(format.Loc))
	} else {
		fmtText = format.Literal.StringValue
	}

	values := args[1:]
	sizes := make([]uint, 0, len(values))

	for i := range values {
		r := an.analyzeExpr(scope, &values[i])
		sizes = append(sizes, r.Type.Size())
	}

	if placeholders := strings.Count(fmtText, "{}"); placeholders != len(values) {
		an.error(errDbgArity(expr.Loc, placeholders, len(values)))
	}

	an.emit(ir.Instruction{Op: ir.OpDbg, DbgFmt: fmtText, DbgSizes: sizes, Loc: expr.Loc})

	return result{Type: types.Type{Kind: types.Unit}}
}

// emitCall type-checks arguments against params and emits a Call targeting
// entryIndex; ArgsSize is the flattened scalar width of the arguments,
// matching pkg/vm/calls.go's call() copying exactly that many popped values
// into the callee's fresh memory frame.
func (an *Analyzer) emitCall(
	scope ScopeID, loc source.Location, name string,
	entryIndex uint, params []types.Type, ret types.Type, args []ast.Expression,
) result {
	if len(args) != len(params) {
		an.error(errCallArity(loc, name, len(params), len(args)))
	}

	var argsSize uint

	for i := range args {
		r := an.analyzeExpr(scope, &args[i])

		if i < len(params) && !r.Type.Equal(params[i]) {
			an.error(errTypeMismatch(args[i].Loc, "argument", r.Type.String(), params[i].String()))
		}

		argsSize += r.Type.Size()
	}

	an.emit(ir.Instruction{Op: ir.OpCall, CallAddr: entryIndex, ArgsSize: argsSize, Loc: loc})

	return result{Type: ret}
}

// emitLibraryCall lowers a `std::` intrinsic call. Push/pop shapes vary by
// routine (pkg/vm/calls.go's libraryCall): hashing reads ArgsSize field
// elements, bit conversions read/produce Size bits, and array
// truncate/pad additionally fold a compile-time target length into Offset.
func (an *Analyzer) emitLibraryCall(scope ScopeID, loc source.Location, name string, b Binding, args []ast.Expression) result {
	if len(args) != len(b.ParamTypes) {
		an.error(errCallArity(loc, name, len(b.ParamTypes), len(args)))
	}

	argResults := make([]result, len(args))
	for i := range args {
		argResults[i] = an.analyzeExpr(scope, &args[i])
	}

	inst := ir.Instruction{Op: ir.OpLibraryCall, Library: b.Library, Loc: loc}

	switch b.Library {
	case ir.LibCryptoSha256, ir.LibCryptoPedersen, ir.LibCryptoSchnorrSignatureVerify:
		inst.ArgsSize = uint(len(args))

	case ir.LibConvertToBits:
		if len(argResults) > 0 {
			inst.Size = argResults[0].Type.Bitlength
		}

	case ir.LibConvertFromBitsUnsigned, ir.LibConvertFromBitsSigned, ir.LibConvertFromBitsField:
		if len(argResults) > 0 {
			inst.Size = argResults[0].Type.Length
		}

	case ir.LibArrayReverse:
		if len(argResults) > 0 {
			inst.Size = argResults[0].Type.Length
		}

	case ir.LibArrayTruncate, ir.LibArrayPad:
		if len(argResults) > 0 {
			inst.Size = argResults[0].Type.Length
		}

		// The target length is a compile-time-constant second argument in
		// the surface call (e.g. `std::array::pad(a, 8)`); the VM's Offset
		// field is static, not stack-supplied.
		if len(args) > 1 {
			if v, err := an.evalConst(scope, &args[1]); err == nil && v.Kind == consteval.KindInt {
				inst.Offset = uint(v.Int.Uint64())
			}
		}

	case ir.LibFfInvert:
		// unary; no Size/Offset needed.
	}

	an.emit(inst)

	retT := b.ReturnType
	if b.Library == ir.LibArrayTruncate || b.Library == ir.LibArrayPad {
		elem := types.Type{}
		if len(argResults) > 0 && argResults[0].Type.Element != nil {
			elem = *argResults[0].Type.Element
		}

		retT = types.NewArray(elem, inst.Offset)
	}

	return result{Type: retT}
}

// analyzeMethodCall handles a call whose callee is `base.name(...)`:
// `self.method(...)` (an ordinary intra-contract call), `self.field.op(...)`
// (a `std::collections::MTreeMap` operation rooted at a storage slot), and
// `contract_value.fetch/transfer(...)` (the cross-contract intrinsics).
func (an *Analyzer) analyzeMethodCall(scope ScopeID, expr *ast.Expression, args []ast.Expression) result {
	field := expr.Left

	name, ok := fieldSelectorName(field.Right)
	if !ok {
		an.error(errNotCallable(field.Loc, "<tuple index>"))
		return result{}
	}

	if name == "fetch" || name == "transfer" {
		base := an.analyzeExpr(scope, field.Left)
		an.popDiscard()

		lib := ir.LibContractFetch
		if name == "transfer" {
			lib = ir.LibContractTransfer
		}

		for i := range args {
			an.analyzeExpr(scope, &args[i])
		}

		an.emit(ir.Instruction{Op: ir.OpLibraryCall, Library: lib, ArgsSize: uint(len(args)), Loc: expr.Loc})

		return result{Type: base.Type}
	}

	if isSelfOperand(field.Left) && an.fn != nil && an.fn.contract != nil {
		if b, ok := an.arena.Lookup(an.fn.contract.scope, name); ok && b.Kind == BindingFunction {
			return an.emitCall(scope, expr.Loc, name, b.EntryIndex, b.ParamTypes, b.ReturnType, args)
		}
	}

	// self.<field>.<op>(...): a std::collections::MTreeMap operation rooted
	// at the field's storage slot.
	if field.Left.Kind == ast.ExprKindOperator && field.Left.Op == ast.OpField && isSelfOperand(field.Left.Left) &&
		an.fn != nil && an.fn.contract != nil {
		mapName, ok := fieldSelectorName(field.Left.Right)
		if !ok {
			an.error(errNoSuchField(field.Loc, an.fn.contract.name, "<tuple index>"))
			return result{}
		}

		se, ok := an.fn.contract.storage[mapName]
		if !ok {
			an.error(errNoSuchField(field.Loc, an.fn.contract.name, mapName))
			return result{}
		}

		lib, ok := mtreeMapLibrary(name)
		if !ok {
			an.error(errNotCallable(field.Loc, name))
			return result{}
		}

		for i := range args {
			an.analyzeExpr(scope, &args[i])
		}

		an.emit(ir.Instruction{Op: ir.OpLibraryCall, Library: lib, Addr: se.Slot, Loc: expr.Loc})

		switch lib {
		case ir.LibCollectionsMTreeMapGet:
			return result{Type: types.NewField()}
		case ir.LibCollectionsMTreeMapContains:
			return result{Type: types.Type{Kind: types.Boolean}}
		default:
			return result{Type: types.Type{Kind: types.Unit}}
		}
	}

	an.error(errNotCallable(field.Loc, name))

	return result{}
}

func mtreeMapLibrary(method string) (ir.LibraryID, bool) {
	switch method {
	case "get":
		return ir.LibCollectionsMTreeMapGet, true
	case "contains":
		return ir.LibCollectionsMTreeMapContains, true
	case "insert":
		return ir.LibCollectionsMTreeMapInsert, true
	case "remove":
		return ir.LibCollectionsMTreeMapRemove, true
	default:
		return 0, false
	}
}
