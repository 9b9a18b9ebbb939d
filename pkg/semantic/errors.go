package semantic

import (
	"fmt"

	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/source"
)

// Every diagnostic the analyzer raises is errors.Semantic, per spec.md §7 —
// distinguished by code, not by Go type, matching pkg/parser's errors.go
// convention.

func locSpan(loc source.Location) source.Span { return source.SingleToken(loc, 1) }

func errUnresolvedName(loc source.Location, name string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0001", fmt.Sprintf("cannot find `%s` in this scope", name), locSpan(loc))
}

func errRedeclared(loc source.Location, name string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0002", fmt.Sprintf("`%s` is already declared in this scope", name), locSpan(loc))
}

func errTypeMismatch(loc source.Location, op string, left, right string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0003",
		fmt.Sprintf("operand type mismatch for `%s`: %s vs %s", op, left, right), locSpan(loc))
}

func errIntegerOverflow(loc source.Location, value, typ string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0004", fmt.Sprintf("literal %s does not fit in type %s", value, typ), locSpan(loc))
}

func errNotAPlace(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0005", "left-hand side of assignment is not a place expression", locSpan(loc))
}

func errImmutableAssign(loc source.Location, name string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0006", fmt.Sprintf("cannot assign to immutable binding `%s`", name), locSpan(loc))
}

func errAddressAssign(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0007", "cannot assign to a contract's reserved `address` field", locSpan(loc))
}

func errNonConstant(loc source.Location, reason string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0008", fmt.Sprintf("expression is not a compile-time constant: %s", reason), locSpan(loc))
}

func errMatchNonExhaustive(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0009", "match expression is not exhaustive", locSpan(loc)).
		WithHint("add a binding or `_` wildcard branch")
}

func errMatchInvalidScrutinee(loc source.Location, typ string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0010", fmt.Sprintf("match scrutinee must be a scalar type, found %s", typ), locSpan(loc))
}

func errMatchUnreachable(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0011", "match branch is unreachable (a previous branch already exhausted the match)", locSpan(loc))
}

func errMatchBranchTypeMismatch(loc source.Location, first, this string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0012",
		fmt.Sprintf("match branch type %s does not match the first branch's type %s", this, first), locSpan(loc))
}

func errCastIllegal(loc source.Location, from, to string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0013",
		fmt.Sprintf("cannot cast %s to %s: only strict integer widenings are permitted", from, to), locSpan(loc))
}

func errFieldAccessNotAStruct(loc source.Location, typ string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0014", fmt.Sprintf("%s has no fields (not a structure or contract)", typ), locSpan(loc))
}

func errNoSuchField(loc source.Location, typ, field string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0015", fmt.Sprintf("%s has no field `%s`", typ, field), locSpan(loc))
}

func errTupleIndexOutOfRange(loc source.Location, index, size int) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0016",
		fmt.Sprintf("tuple index %d out of range for a %d-element tuple", index, size), locSpan(loc))
}

func errGenericsArity(loc source.Location, name string, want, got int) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0017",
		fmt.Sprintf("`%s` expects %d generic argument(s), found %d", name, want, got), locSpan(loc))
}

func errAttributeUnknown(loc source.Location, name string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0018", fmt.Sprintf("unknown attribute `%s`", name), locSpan(loc))
}

func errAttributeArity(loc source.Location, name string, want, got int) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0019",
		fmt.Sprintf("attribute `%s` expects %d field(s), found %d", name, want, got), locSpan(loc))
}

func errCallArity(loc source.Location, name string, want, got int) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0020",
		fmt.Sprintf("`%s` expects %d argument(s), found %d", name, want, got), locSpan(loc))
}

func errNotCallable(loc source.Location, name string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0021", fmt.Sprintf("`%s` is not callable", name), locSpan(loc))
}

func errConditionNotBool(loc source.Location, typ string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0022", fmt.Sprintf("condition must be `bool`, found %s", typ), locSpan(loc))
}

func errIfBranchMismatch(loc source.Location, then, els string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0023",
		fmt.Sprintf("`if`/`else` branches have different types: %s vs %s", then, els), locSpan(loc))
}

func errIndexNotArray(loc source.Location, typ string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0024", fmt.Sprintf("cannot index into %s (not an array)", typ), locSpan(loc))
}

func errForRangeNotInteger(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0025", "`for` range bounds must be integer-typed", locSpan(loc))
}

func errDbgFormatNotString(loc source.Location) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0026", "`dbg!`'s first argument must be a string literal", locSpan(loc))
}

func errDbgArity(loc source.Location, placeholders, got int) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0027",
		fmt.Sprintf("`dbg!` format string has %d `{}` placeholder(s), found %d trailing argument(s)", placeholders, got), locSpan(loc))
}

func errAttributeFieldUnknown(loc source.Location, name, key string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0028", fmt.Sprintf("attribute `%s` has no field `%s`", name, key), locSpan(loc))
}

func errAttributeFieldNotIdent(loc source.Location, key string) *errors.Diagnostic {
	return errors.New(errors.Semantic, "S0029", fmt.Sprintf("field `%s` must bind a plain identifier", key), locSpan(loc))
}
