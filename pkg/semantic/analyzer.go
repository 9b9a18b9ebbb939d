// Package semantic implements the name resolver, type checker, constant
// folder, and IR emitter of spec.md §4.3: it walks the ast.Module produced
// by pkg/parser and lowers it to the flat ir.Unit pkg/vm executes.
package semantic

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/types"
)

// evalConst folds expr at compile time against scope's constant bindings.
func (an *Analyzer) evalConst(scope ScopeID, expr *ast.Expression) (consteval.Value, error) {
	return consteval.Eval(expr, an.constLookup(scope))
}

// funcState is the mutable emission context for the entry point currently
// being lowered: its instruction buffer, its local scope, and the
// bump-allocated memory cursor `let`/parameters draw from.
type funcState struct {
	prog     *ir.Program
	scope    ScopeID
	nextAddr uint
	// contract is non-nil while lowering a contract method, enabling
	// `self.field` to resolve through the storage table instead of memory.
	contract *contractInfo
}

// contractInfo records a contract's storage layout for `self.field`
// resolution inside its methods.
type contractInfo struct {
	name    string
	storage map[string]ir.StorageEntry
	// entries is storage in declaration order (including the synthesized
	// "address" slot first), for deterministic iteration; storage's map
	// order isn't.
	entries []ir.StorageEntry
	scope   ScopeID
	hasNew  bool

	// implicitNew is set to the entry index of the synthesized zero-init
	// constructor when the contract declares no explicit `fn new`; the
	// lowering pass emits its body against this index.
	implicitNew *uint
}

// Analyzer holds all state for one compilation unit's analysis pass.
type Analyzer struct {
	arena *Arena
	diags errors.List
	unit  ir.Unit
	fn    *funcState

	contractInfos  []*contractInfo
	contractByName map[string]*contractInfo

	// txBindings maps an entry's index to the local names its #[zksync::msg]
	// attribute bound the synthesized Transaction parameter's fields to.
	txBindings map[uint]txBinding
}

// txBinding is the field-name -> local-binding-name mapping parsed from one
// #[zksync::msg(sender=…, recipient=…, token_address=…, amount=…)] attribute.
type txBinding struct {
	sender, recipient, tokenAddress, amount string
}

// Analyze resolves, type-checks, and lowers module to a compiled ir.Unit.
// Analysis continues past individual errors where possible (spec.md §7:
// "Semantic errors are collected... and all are reported"), returning
// every diagnostic accumulated.
func Analyze(module ast.Module) (*ir.Unit, errors.List) {
	an := &Analyzer{arena: NewArena(), contractByName: make(map[string]*contractInfo), txBindings: make(map[uint]txBinding)}
	root := an.arena.Push(an.arena.Root())

	an.declareTopLevel(root, module.Items)
	an.lowerTopLevel(root, module.Items)

	return &an.unit, an.diags
}

func (an *Analyzer) error(d *errors.Diagnostic) {
	an.diags = append(an.diags, d)
}

// declareTopLevel performs a first pass registering every name a module
// introduces (functions, structs, enums, contracts, type aliases, consts,
// statics, modules, use-imports) before any body is type-checked, so
// forward references and mutual recursion between top-level items resolve.
func (an *Analyzer) declareTopLevel(scope ScopeID, items []ast.Statement) {
	for i := range items {
		an.declareItem(scope, &items[i])
	}
}

func (an *Analyzer) declareItem(scope ScopeID, item *ast.Statement) {
	switch item.Kind {
	case ast.StmtFn:
		an.declareFn(scope, item)

	case ast.StmtStruct:
		an.declareStruct(scope, item)

	case ast.StmtEnum:
		an.declareEnum(scope, item)

	case ast.StmtContract:
		an.declareContract(scope, item)

	case ast.StmtType:
		an.declareTypeAlias(scope, item)

	case ast.StmtConst, ast.StmtStatic:
		an.declareConstOrStatic(scope, item)

	case ast.StmtMod:
		child := an.arena.Push(scope)
		an.arena.DeclareChild(scope, item.ModName, child)
		an.arena.Declare(scope, Binding{Name: item.ModName, Kind: BindingModule, Child: child})
		an.declareTopLevel(child, item.ModItems)

	case ast.StmtUse:
		// `use` paths are resolved lazily at reference time via the scope
		// tree's path-stepping Resolve; no separate alias table is needed
		// since the root scope already carries the whole std:: tree.
	}
}

func (an *Analyzer) declareFn(scope ScopeID, item *ast.Statement) {
	an.declareFnIn(scope, item, "")
}

// declareFnIn is declareFn generalized with the owning contract's name
// (empty for a free function): contract methods additionally get a
// MethodSelector-derived dispatch selector recorded on their ir.Program, per
// SPEC_FULL.md's contract dispatch table.
func (an *Analyzer) declareFnIn(scope ScopeID, item *ast.Statement, contract string) {
	params := make([]types.Type, len(item.Params))

	for i, p := range item.Params {
		t, errs := an.resolveType(scope, &p.Type)
		an.reportAll(errs)
		params[i] = t
	}

	ret := types.Type{Kind: types.Unit}

	if item.ReturnType != nil {
		t, errs := an.resolveType(scope, item.ReturnType)
		an.reportAll(errs)
		ret = t
	}

	entryIndex := uint(len(an.unit.Entries))
	prog := ir.Program{Name: item.Name}

	if contract != "" {
		prog.Contract = contract
		prog.Selector = ir.MethodSelector(contract + "::" + item.Name)
	}

	an.unit.Entries = append(an.unit.Entries, prog)

	if !an.arena.Declare(scope, Binding{
		Name: item.Name, Kind: BindingFunction,
		EntryIndex: entryIndex, ParamTypes: params, ReturnType: ret,
	}) {
		an.error(errRedeclared(item.Loc, item.Name))
	}

	an.declareAttributes(item, entryIndex)
}

// declareAttributes records `#[test]`/`#[should_panic]`/`#[ignore]`/
// `#[zksync::msg(...)]` against entryIndex (spec.md §4.3 item 7); these are
// tooling metadata, not IR, so they live on ir.Unit.Tests rather than in the
// instruction stream.
func (an *Analyzer) declareAttributes(item *ast.Statement, entryIndex uint) {
	for _, attr := range item.Attributes {
		switch attr.Name {
		case "test":
			an.unit.Tests = append(an.unit.Tests, ir.TestCase{Name: item.Name, EntryIndex: entryIndex})
		case "should_panic":
			markTest(&an.unit, entryIndex, func(tc *ir.TestCase) { tc.ShouldPanic = true })
		case "ignore":
			markTest(&an.unit, entryIndex, func(tc *ir.TestCase) { tc.Ignore = true })
		case "zksync::msg":
			if len(attr.Fields) != 4 {
				an.error(errAttributeArity(attr.Loc, "zksync::msg", 4, len(attr.Fields)))
				continue
			}

			an.txBindings[entryIndex] = an.parseTxBinding(attr)
		default:
			an.error(errAttributeUnknown(attr.Loc, attr.Name))
		}
	}
}

// parseTxBinding reads a #[zksync::msg(sender=…, recipient=…,
// token_address=…, amount=…)] attribute's four fields into a txBinding: each
// field's key names which Transaction field it binds, and its value must be
// a plain identifier naming the method-local variable that field is exposed
// as (SPEC_FULL.md §4 item 2).
func (an *Analyzer) parseTxBinding(attr ast.Attribute) txBinding {
	var tb txBinding

	for _, f := range attr.Fields {
		name, ok := identifierName(&f.Value)
		if !ok {
			an.error(errAttributeFieldNotIdent(attr.Loc, f.Key))
			continue
		}

		switch f.Key {
		case "sender":
			tb.sender = name
		case "recipient":
			tb.recipient = name
		case "token_address":
			tb.tokenAddress = name
		case "amount":
			tb.amount = name
		default:
			an.error(errAttributeFieldUnknown(attr.Loc, "zksync::msg", f.Key))
		}
	}

	return tb
}

// identifierName reports the single-segment path name of expr, if expr is a
// bare identifier operand.
func identifierName(expr *ast.Expression) (string, bool) {
	if expr.Kind == ast.ExprKindOperand && expr.OperandKind == ast.OperandIdentifier && len(expr.Path) == 1 {
		return expr.Path[0], true
	}

	return "", false
}

func markTest(unit *ir.Unit, entryIndex uint, f func(*ir.TestCase)) {
	for i := range unit.Tests {
		if unit.Tests[i].EntryIndex == entryIndex {
			f(&unit.Tests[i])
			return
		}
	}

	tc := ir.TestCase{EntryIndex: entryIndex}
	f(&tc)
	*unit = ir.Unit{Entries: unit.Entries, Types: unit.Types, Storage: unit.Storage, Tests: append(unit.Tests, tc)}
}

func (an *Analyzer) declareStruct(scope ScopeID, item *ast.Statement) {
	fields := an.resolveFields(scope, item.Fields)
	child := an.arena.Push(scope)
	an.arena.DeclareChild(scope, item.Name, child)

	if !an.arena.Declare(scope, Binding{Name: item.Name, Kind: BindingStruct, Fields: fields, Child: child}) {
		an.error(errRedeclared(item.Loc, item.Name))
	}
}

func (an *Analyzer) declareContract(scope ScopeID, item *ast.Statement) {
	fields := an.resolveFields(scope, item.ContractFields)

	storage := make(map[string]ir.StorageEntry, len(fields)+1)
	entries := []ir.StorageEntry{{Name: "address", Type: scalarOf(types.NewUnsigned(160)), Slot: 0}}
	storage["address"] = entries[0]

	for i, f := range fields {
		se := ir.StorageEntry{Name: f.Name, Type: scalarOf(f.Type), Slot: uint(i + 1)}
		entries = append(entries, se)
		storage[f.Name] = se
	}

	an.unit.Storage = append(an.unit.Storage, entries...)

	child := an.arena.Push(scope)
	an.arena.DeclareChild(scope, item.ContractName, child)
	allFields := append([]types.StructField{{Name: "address", Type: types.NewUnsigned(160)}}, fields...)

	if !an.arena.Declare(scope, Binding{Name: item.ContractName, Kind: BindingContract, Fields: allFields, Child: child}) {
		an.error(errRedeclared(item.Loc, item.ContractName))
	}

	ci := &contractInfo{name: item.ContractName, storage: storage, entries: entries, scope: child}

	for i := range item.ContractMethods {
		an.declareFnIn(child, &item.ContractMethods[i], item.ContractName)

		if item.ContractMethods[i].Name == "new" {
			ci.hasNew = true
		}
	}

	if !ci.hasNew {
		an.declareImplicitConstructor(ci)
	}

	an.contractInfos = append(an.contractInfos, ci)
	an.contractByName[item.ContractName] = ci
}

// declareImplicitConstructor registers the synthesized "new" entry point a
// contract gets when it declares no explicit `fn new` (SPEC_FULL.md §4 item
// 4): it zero-initializes every storage slot and is lowered the same way an
// explicit constructor is, but has no source statement of its own, so its
// body is emitted directly by lowerImplicitConstructor rather than by
// lowerFn walking an ast.Statement.
func (an *Analyzer) declareImplicitConstructor(ci *contractInfo) {
	entryIndex := uint(len(an.unit.Entries))
	an.unit.Entries = append(an.unit.Entries, ir.Program{
		Name:          "new",
		Contract:      ci.name,
		Selector:      ir.MethodSelector(ci.name + "::new"),
		IsConstructor: true,
		ReturnType:    scalarOf(types.Type{Kind: types.Unit}),
	})

	an.arena.Declare(ci.scope, Binding{
		Name: "new", Kind: BindingFunction,
		EntryIndex: entryIndex, ReturnType: types.Type{Kind: types.Unit},
	})

	ci.implicitNew = &entryIndex
}

func (an *Analyzer) resolveFields(scope ScopeID, fields []ast.Field) []types.StructField {
	out := make([]types.StructField, len(fields))

	for i, f := range fields {
		t, errs := an.resolveType(scope, &f.Type)
		an.reportAll(errs)
		out[i] = types.StructField{Name: f.Name, Type: t}
	}

	return out
}

func (an *Analyzer) declareEnum(scope ScopeID, item *ast.Statement) {
	child := an.arena.Push(scope)
	an.arena.DeclareChild(scope, item.Name, child)

	var next int64

	for _, v := range item.Variants {
		val := next

		if v.Value != nil {
			folded, err := an.evalConst(scope, v.Value)
			if err != nil {
				an.error(errNonConstant(v.Loc, err.Error()))
			} else if folded.Kind == consteval.KindInt {
				val = folded.Int.Int64()
			}
		}

		an.arena.Declare(child, Binding{Name: v.Name, Kind: BindingEnumVariant, EnumValue: val})
		next = val + 1
	}

	an.arena.Declare(scope, Binding{
		Name: item.Name, Kind: BindingEnum, Child: child,
		ReturnType: types.Type{Bitlength: item.EnumBitlength},
	})
}

func (an *Analyzer) declareTypeAlias(scope ScopeID, item *ast.Statement) {
	generics := make([]string, len(item.Generics))
	for i, g := range item.Generics {
		generics[i] = g.Name
	}

	target := item.AliasTarget

	if !an.arena.Declare(scope, Binding{Name: item.Name, Kind: BindingTypeAlias, Generics: generics, AliasAST: &target}) {
		an.error(errRedeclared(item.Loc, item.Name))
	}
}

func (an *Analyzer) declareConstOrStatic(scope ScopeID, item *ast.Statement) {
	val, err := an.evalConst(scope, item.Value)
	if err != nil {
		an.error(errNonConstant(item.Loc, err.Error()))
		return
	}

	var t types.Type

	if item.DeclaredType != nil {
		rt, errs := an.resolveType(scope, item.DeclaredType)
		an.reportAll(errs)
		t = rt
	} else if val.Kind == consteval.KindInt {
		t = widestFitting(val.Int)
	} else {
		t = types.Type{Kind: types.Boolean}
	}

	kind := BindingConst
	if item.Kind == ast.StmtStatic {
		kind = BindingVariable
	}

	if !an.arena.Declare(scope, Binding{Name: item.Name, Kind: kind, Type: t, ConstVal: val, IsConst: true}) {
		an.error(errRedeclared(item.Loc, item.Name))
	}
}

// reportAll appends every diagnostic in errs to an.diags.
func (an *Analyzer) reportAll(errs errors.List) {
	an.diags = append(an.diags, errs...)
}

// scalarOf flattens a resolved types.Type down to the IR's scalar tag. Only
// scalar (size-1) types can occupy a single storage/memory slot this way;
// callers needing aggregate layout walk types.Type.Size()/Fields directly.
func scalarOf(t types.Type) ir.ScalarType {
	switch t.Kind {
	case types.Boolean:
		return ir.ScalarType{Kind: ir.ScalarBool, Size: 1}
	case types.Field:
		return ir.ScalarType{Kind: ir.ScalarField, Size: 1}
	case types.IntegerSigned:
		return ir.ScalarType{Kind: ir.ScalarInteger, Bitlength: t.Bitlength, IsSigned: true, Size: 1}
	default:
		return ir.ScalarType{Kind: ir.ScalarInteger, Bitlength: t.Bitlength, Size: t.Size()}
	}
}
