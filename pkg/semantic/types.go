package semantic

import (
	"math/big"

	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/types"
)

// resolveType turns a surface ast.Type into the resolved types.Type algebra,
// stepping through named paths (struct/enum/contract/alias) via the scope
// tree, per spec.md §4.3 item 1.
func (an *Analyzer) resolveType(scope ScopeID, t *ast.Type) (types.Type, errors.List) {
	switch t.Kind {
	case ast.TypeKindUnit:
		return types.Type{Kind: types.Unit}, nil

	case ast.TypeKindBool:
		return types.Type{Kind: types.Boolean}, nil

	case ast.TypeKindInteger:
		if t.IsSigned {
			return types.NewSigned(t.Bitlength), nil
		}

		return types.NewUnsigned(t.Bitlength), nil

	case ast.TypeKindField:
		return types.NewField(), nil

	case ast.TypeKindArray:
		elem, errs := an.resolveType(scope, t.Element)
		if errs != nil {
			return types.Type{}, errs
		}

		size, err := consteval.Eval(&t.Size, an.constLookup(scope))
		if err != nil {
			return types.Type{}, errors.List{errNonConstant(t.Loc, err.Error())}
		}

		if size.Kind != consteval.KindInt {
			return types.Type{}, errors.List{errNonConstant(t.Loc, "array size must be an integer")}
		}

		return types.NewArray(elem, uint(size.Int.Uint64())), nil

	case ast.TypeKindTuple:
		elems := make([]types.Type, len(t.Elements))

		for i := range t.Elements {
			e, errs := an.resolveType(scope, &t.Elements[i])
			if errs != nil {
				return types.Type{}, errs
			}

			elems[i] = e
		}

		return types.NewTuple(elems), nil

	case ast.TypeKindPath:
		return an.resolvePathType(scope, t)

	default:
		return types.Type{}, errors.List{errUnresolvedName(t.Loc, "<type>")}
	}
}

// resolvePathType resolves a named type reference, specialising generic
// type aliases against their call-site arguments.
func (an *Analyzer) resolvePathType(scope ScopeID, t *ast.Type) (types.Type, errors.List) {
	if len(t.Path) == 1 && t.Path[0] == "Map" && len(t.Generics) == 2 {
		key, errs := an.resolveType(scope, &t.Generics[0])
		if errs != nil {
			return types.Type{}, errs
		}

		val, errs := an.resolveType(scope, &t.Generics[1])
		if errs != nil {
			return types.Type{}, errs
		}

		return types.NewStructure("Map", []types.StructField{{Name: "key", Type: key}, {Name: "value", Type: val}}), nil
	}

	b, ok := an.arena.Resolve(scope, t.Path)
	if !ok {
		return types.Type{}, errors.List{errUnresolvedName(t.Loc, joinPath(t.Path))}
	}

	switch b.Kind {
	case BindingStruct:
		return types.NewStructure(b.Name, b.Fields), nil
	case BindingContract:
		return types.NewContract(b.Name, b.Fields[1:]), nil // Fields[0] is the synthesized address field
	case BindingEnum:
		return types.Type{Kind: types.Enumeration, Name: b.Name, Bitlength: b.ReturnType.Bitlength, Variants: enumVariantsOf(an, b)}, nil
	case BindingTypeAlias:
		if len(b.Generics) != len(t.Generics) {
			return types.Type{}, errors.List{errGenericsArity(t.Loc, b.Name, len(b.Generics), len(t.Generics))}
		}

		sub := an.arena.Push(an.arena.Root())

		for i, g := range b.Generics {
			argType, errs := an.resolveType(scope, &t.Generics[i])
			if errs != nil {
				return types.Type{}, errs
			}

			an.arena.Declare(sub, Binding{Name: g, Kind: BindingTypeAlias, AliasAST: scalarAliasAST(argType)})
		}

		return an.resolveType(sub, b.AliasAST)
	default:
		return types.Type{}, errors.List{errUnresolvedName(t.Loc, joinPath(t.Path))}
	}
}

// scalarAliasAST wraps an already-resolved types.Type back into a surface
// ast.Type so a generic parameter can be re-substituted through
// resolveType's normal path, without a second parallel representation.
func scalarAliasAST(t types.Type) *ast.Type {
	switch t.Kind {
	case types.Boolean:
		return &ast.Type{Kind: ast.TypeKindBool}
	case types.IntegerUnsigned:
		return &ast.Type{Kind: ast.TypeKindInteger, Bitlength: t.Bitlength, IsSigned: false}
	case types.IntegerSigned:
		return &ast.Type{Kind: ast.TypeKindInteger, Bitlength: t.Bitlength, IsSigned: true}
	case types.Field:
		return &ast.Type{Kind: ast.TypeKindField}
	default:
		return &ast.Type{Kind: ast.TypeKindField}
	}
}

func enumVariantsOf(an *Analyzer, b Binding) []types.EnumVariant {
	variants := make([]types.EnumVariant, 0)

	for _, name := range an.arena.scopes[b.Child].orderedNames() {
		v := an.arena.scopes[b.Child].names[name]
		variants = append(variants, types.EnumVariant{Name: v.Name, Value: v.EnumValue})
	}

	return variants
}

// constLookup adapts the scope tree into the consteval.Lookup signature:
// resolve a path to a binding, and fold it to a consteval.Value if it names
// a const/enum-variant binding (variable reads are deliberately rejected —
// spec.md §4.3 item 3's ExpressionNonConstantElement).
func (an *Analyzer) constLookup(scope ScopeID) consteval.Lookup {
	return func(path []string) (consteval.Value, bool) {
		b, ok := an.arena.Resolve(scope, path)
		if !ok {
			return consteval.Value{}, false
		}

		switch b.Kind {
		case BindingConst:
			return b.ConstVal, true
		case BindingEnumVariant:
			return consteval.Int(big.NewInt(b.EnumValue)), true
		default:
			return consteval.Value{}, false
		}
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

// widestFitting returns the smallest unsigned integer type that fits v,
// per spec.md §4.2's literal-inference rule ("infer to the smallest
// unsigned width that fits, unless context dictates otherwise").
func widestFitting(v *big.Int) types.Type {
	bits := v.BitLen()
	if bits == 0 {
		bits = 1
	}

	for _, w := range []uint{8, 16, 32, 64, 128, 248} {
		if uint(bits) <= w {
			return types.NewUnsigned(w)
		}
	}

	return types.NewField()
}

// castLegal implements spec.md §4.3 item 8: only strict widenings between
// integer types are permitted, `field` counting as a 254-bit integer (so an
// integer may widen to `field`, and `field` never casts to an integer);
// bool<->integer and narrowing/same-width casts are rejected.
func castLegal(from, to types.Type) bool {
	if from.Kind == types.Boolean || to.Kind == types.Boolean {
		return false
	}

	if !from.IsInteger() || !to.IsInteger() {
		return false
	}

	return to.Bitlength > from.Bitlength
}
