package semantic

import (
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/types"
)

// module declares a named submodule scope under parent and returns its id,
// used only while wiring up the fixed std:: tree below.
func module(a *Arena, parent ScopeID, name string) ScopeID {
	id := a.Push(parent)
	a.Declare(parent, Binding{Name: name, Kind: BindingModule, Child: id})

	return id
}

func lib(a *Arena, scope ScopeID, name string, id ir.LibraryID, params []types.Type, ret types.Type) {
	a.Declare(scope, Binding{Name: name, Kind: BindingLibrary, Library: id, ParamTypes: params, ReturnType: ret})
}

// populateBuiltins pre-registers the standard library of spec.md §3.4 into
// root, so every compilation unit's scope tree is rooted at the same
// built-in surface: `std::crypto::{sha256, pedersen,
// schnorr::Signature::verify}`, `std::convert::{to_bits,
// from_bits_unsigned/signed/field}`, `std::array::{reverse, truncate,
// pad}`, `std::ff::invert`, `std::collections::MTreeMap::{get, contains,
// insert, remove}`. The intrinsics `require`, `dbg` and contract
// `fetch`/`transfer` get no binding here (see the notes at the end).
func populateBuiltins(a *Arena, root ScopeID) {
	field := types.NewField()
	boolT := types.Type{Kind: types.Boolean}
	anyInt := types.NewUnsigned(248) // placeholder signature type; call-site checks actual widths

	std := module(a, root, "std")

	crypto := module(a, std, "crypto")
	lib(a, crypto, "sha256", ir.LibCryptoSha256, []types.Type{field, field}, field)
	lib(a, crypto, "pedersen", ir.LibCryptoPedersen, []types.Type{field, field}, field)

	schnorr := module(a, crypto, "schnorr")
	signature := module(a, schnorr, "Signature")
	lib(a, signature, "verify", ir.LibCryptoSchnorrSignatureVerify,
		[]types.Type{field, field, field}, boolT)

	convert := module(a, std, "convert")
	lib(a, convert, "to_bits", ir.LibConvertToBits, []types.Type{anyInt}, types.NewArray(boolT, 0))
	lib(a, convert, "from_bits_unsigned", ir.LibConvertFromBitsUnsigned, []types.Type{types.NewArray(boolT, 0)}, anyInt)
	lib(a, convert, "from_bits_signed", ir.LibConvertFromBitsSigned, []types.Type{types.NewArray(boolT, 0)}, anyInt)
	lib(a, convert, "from_bits_field", ir.LibConvertFromBitsField, []types.Type{types.NewArray(boolT, 0)}, field)

	array := module(a, std, "array")
	lib(a, array, "reverse", ir.LibArrayReverse, []types.Type{types.NewArray(anyInt, 0)}, types.NewArray(anyInt, 0))
	lib(a, array, "truncate", ir.LibArrayTruncate, []types.Type{types.NewArray(anyInt, 0)}, types.NewArray(anyInt, 0))
	lib(a, array, "pad", ir.LibArrayPad, []types.Type{types.NewArray(anyInt, 0)}, types.NewArray(anyInt, 0))

	ff := module(a, std, "ff")
	lib(a, ff, "invert", ir.LibFfInvert, []types.Type{field}, field)

	collections := module(a, std, "collections")
	mtreeMap := module(a, collections, "MTreeMap")
	lib(a, mtreeMap, "get", ir.LibCollectionsMTreeMapGet, []types.Type{field}, field)
	lib(a, mtreeMap, "contains", ir.LibCollectionsMTreeMapContains, []types.Type{field}, boolT)
	lib(a, mtreeMap, "insert", ir.LibCollectionsMTreeMapInsert, []types.Type{field, field}, types.Type{Kind: types.Unit})
	lib(a, mtreeMap, "remove", ir.LibCollectionsMTreeMapRemove, []types.Type{field}, types.Type{Kind: types.Unit})

	// require/dbg are recognised by name directly in pkg/semantic's call
	// lowering (their signatures are variadic/format-checked, unlike the
	// fixed-arity std:: library), so no binding is needed for them here.

	// Contract `fetch`/`transfer` are method-call-syntax intrinsics resolved
	// against a contract-typed receiver, not a scope path; see
	// pkg/semantic/access.go's analyzeMethodCall.
	_ = ir.LibContractFetch
	_ = ir.LibContractTransfer
}
