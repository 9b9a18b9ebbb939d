// Package compare implements the comparison gadgets spec.md §3.6's
// Eq/Ne/Lt/Le/Gt/Ge instructions lower to: R1CS has no native ordering, so
// equality is proven with the standard "is-zero" trick and ordering with a
// bit-decomposition of a shifted difference, extracting its sign bit.
package compare

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/vm/constraint"
)

// IsZero proves `out == 1` iff v's concrete value is zero, using the
// standard `out = 1 - v*inv` / `v*out = 0` pair: inv is witnessed as v's
// field inverse when v != 0 and zero otherwise, which makes `v*inv` equal 1
// exactly when v != 0.
func IsZero(sys constraint.System, v constraint.Variable, concrete fr.Element) (constraint.Variable, fr.Element) {
	var inv fr.Element
	var outConcrete fr.Element

	if concrete.IsZero() {
		outConcrete = fr.One()
	} else {
		inv.Inverse(&concrete)
	}

	invVar := sys.AllocateWitness(func() fr.Element { return inv })
	outVar := sys.AllocateWitness(func() fr.Element { return outConcrete })

	// v*inv = 1-out
	one := fr.One()
	oneLC := constraint.FromConstant(one)
	sys.Enforce(constraint.FromVariable(v), constraint.FromVariable(invVar), sub(oneLC, constraint.FromVariable(outVar)))

	// v*out = 0
	sys.Enforce(constraint.FromVariable(v), constraint.FromVariable(outVar), constraint.LinearCombination{})

	return outVar, outConcrete
}

// LessThan proves `out == 1` iff ca < cb, where both a and b are assumed (by
// the caller's type, per spec.md's bounded-integer semantics) to lie in
// `[0, 2^bits)`. It decomposes `shifted = a + 2^bits - b`, which lands in
// `[0, 2^bits)` exactly when a < b and in `[2^bits, 2^(bits+1))` otherwise,
// into bits+1 boolean witnesses and reads off the complement of the top bit.
func LessThan(sys constraint.System, a, b constraint.Variable, ca, cb fr.Element, bits uint) (constraint.Variable, fr.Element) {
	var pow fr.Element
	pow.SetBigInt(new(big.Int).Lsh(big.NewInt(1), bits))

	var shifted fr.Element
	shifted.Add(&ca, &pow)
	shifted.Sub(&shifted, &cb)

	shiftedAsInt := new(big.Int)
	shifted.BigInt(shiftedAsInt)

	shiftedVar := sys.AllocateWitness(func() fr.Element { return shifted })

	// shiftedVar = a + 2^bits - b
	sumLC := constraint.FromVariable(a).Add(constraint.One, pow)
	sumLC = sub(sumLC, constraint.FromVariable(b))
	sys.Enforce(sumLC, constraint.FromConstant(fr.One()), constraint.FromVariable(shiftedVar))

	sum := constraint.LinearCombination{}

	var topBitConcrete fr.Element
	var topBitVar constraint.Variable

	for i := uint(0); i <= bits; i++ {
		bitVal := shiftedAsInt.Bit(int(i)) == 1

		bv := sys.AllocateWitness(func() fr.Element {
			if bitVal {
				return fr.One()
			}

			return fr.Element{}
		})

		sys.Enforce(constraint.FromVariable(bv), constraint.FromVariable(bv), constraint.FromVariable(bv))

		var weight fr.Element
		weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), i))
		sum = sum.Add(bv, weight)

		if i == bits {
			topBitVar = bv

			if bitVal {
				topBitConcrete = fr.One()
			}
		}
	}

	sys.Enforce(sum, constraint.FromConstant(fr.One()), constraint.FromVariable(shiftedVar))

	var outConcrete fr.Element
	one := fr.One()
	outConcrete.Sub(&one, &topBitConcrete)

	outVar := sys.AllocateWitness(func() fr.Element { return outConcrete })

	// out + topBit = 1, i.e. out = 1 - topBit.
	outPlusTop := constraint.FromVariable(outVar).Add(topBitVar, fr.One())
	sys.Enforce(constraint.FromConstant(fr.One()), constraint.FromConstant(fr.One()), outPlusTop)

	return outVar, outConcrete
}

// sub returns lc - rhs as a LinearCombination.
func sub(lc, rhs constraint.LinearCombination) constraint.LinearCombination {
	out := append(constraint.LinearCombination{}, lc...)

	for _, t := range rhs {
		var neg fr.Element
		neg.Neg(&t.Coeff)
		out = out.Add(t.Variable, neg)
	}

	return out
}
