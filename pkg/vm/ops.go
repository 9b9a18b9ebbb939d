package vm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/vm/compare"
	"github.com/zinclang/zinc/pkg/vm/constraint"
	"github.com/zinclang/zinc/pkg/vm/rangecheck"
)

func sub(lc, rhs constraint.LinearCombination) constraint.LinearCombination {
	out := append(constraint.LinearCombination{}, lc...)

	for _, t := range rhs {
		var neg fr.Element
		neg.Neg(&t.Coeff)
		out = out.Add(t.Variable, neg)
	}

	return out
}

// enforceEq enforces the linear equality lhs == rhs.
func (m *Machine) enforceEq(lhs, rhs constraint.LinearCombination) {
	m.sys.Enforce(lhs, constraint.FromConstant(fr.One()), rhs)
}

// diffVar allocates and ties a fresh variable to a-b.
func (m *Machine) diffVar(a, b Value, diffConcrete fr.Element) constraint.Variable {
	v := m.sys.AllocateWitness(func() fr.Element { return diffConcrete })

	lc := constraint.FromVariable(a.Var)
	var negOne fr.Element
	one := fr.One()
	negOne.Neg(&one)
	lc = lc.Add(b.Var, negOne)

	m.enforceEq(lc, constraint.FromVariable(v))

	return v
}

// bitWidth returns the number of bits a scalar of this type occupies for
// decomposition purposes: 1 for bool, Bitlength for integer, the full field
// width for field (254, per spec.md §3.3).
func bitWidth(t ir.ScalarType) uint {
	switch t.Kind {
	case ir.ScalarBool:
		return 1
	case ir.ScalarField:
		return 254
	default:
		return t.Bitlength
	}
}

// decomposeBits allocates `bits` boolean witnesses for value and ties their
// weighted sum back to value.Var, returning the individual bit Values for
// the caller to recombine (used by bitwise operators and casts, which need
// per-bit access that rangecheck's tie-only gadget doesn't expose).
func (m *Machine) decomposeBits(value Value, bits uint) []Value {
	asInt := new(big.Int)
	value.Concrete.BigInt(asInt)

	out := make([]Value, bits)
	sum := constraint.LinearCombination{}

	for i := uint(0); i < bits; i++ {
		bitVal := asInt.Bit(int(i)) == 1

		bv := m.sys.AllocateWitness(func() fr.Element {
			if bitVal {
				return fr.One()
			}

			return fr.Element{}
		})
		m.sys.Enforce(constraint.FromVariable(bv), constraint.FromVariable(bv), constraint.FromVariable(bv))

		var c fr.Element
		if bitVal {
			c = fr.One()
		}

		var weight fr.Element
		weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), i))
		sum = sum.Add(bv, weight)

		out[i] = Value{Concrete: c, Var: bv}
	}

	m.enforceEq(sum, constraint.FromVariable(value.Var))

	return out
}

func recombine(bits []Value) fr.Element {
	var acc fr.Element

	for i, b := range bits {
		var weight fr.Element
		weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(i)))

		var term fr.Element
		term.Mul(&b.Concrete, &weight)
		acc.Add(&acc, &term)
	}

	return acc
}

func (m *Machine) binaryArith(inst ir.Instruction) error {
	b, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	a, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	var resultC fr.Element
	var resultVar constraint.Variable

	switch inst.Op {
	case ir.OpAdd:
		resultC.Add(&a.Concrete, &b.Concrete)
		resultVar = m.sys.AllocateWitness(func() fr.Element { return resultC })
		sum := constraint.FromVariable(a.Var).Add(b.Var, fr.One())
		m.enforceEq(sum, constraint.FromVariable(resultVar))

	case ir.OpSub:
		resultC.Sub(&a.Concrete, &b.Concrete)
		resultVar = m.sys.AllocateWitness(func() fr.Element { return resultC })

		var negOne fr.Element
		one := fr.One()
		negOne.Neg(&one)
		diff := constraint.FromVariable(a.Var).Add(b.Var, negOne)
		m.enforceEq(diff, constraint.FromVariable(resultVar))

	case ir.OpMul:
		resultC.Mul(&a.Concrete, &b.Concrete)
		resultVar = m.sys.AllocateWitness(func() fr.Element { return resultC })
		m.sys.Enforce(constraint.FromVariable(a.Var), constraint.FromVariable(b.Var), constraint.FromVariable(resultVar))
	}

	result := Value{Concrete: resultC, Var: resultVar}

	if inst.Type.Kind == ir.ScalarInteger && inst.Type.Bitlength > 0 {
		var err error
		if inst.Type.IsSigned {
			err = rangecheck.Signed(m.sys, result.Var, result.Concrete, inst.Type.Bitlength)
		} else {
			err = rangecheck.Unsigned(m.sys, result.Var, result.Concrete, inst.Type.Bitlength)
		}

		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}
	}

	m.push(result)

	return nil
}

// divRem implements spec.md §9's Euclidean-division decision: `q*d + r = n`
// with `0 <= r < d`, the divisor's non-zero-ness checked at runtime here.
// A literal zero divisor in ordinary code also reaches this check; only
// constant expressions folded by pkg/semantic/consteval reject it at
// compile time.
func (m *Machine) divRem(inst ir.Instruction) error {
	b, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	a, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	if b.Concrete.IsZero() {
		return m.runtimeError(inst.Loc, "division by zero")
	}

	var na, nb big.Int
	a.Concrete.BigInt(&na)
	b.Concrete.BigInt(&nb)

	q, r := new(big.Int), new(big.Int)
	q.DivMod(&na, &nb, r)

	var qc, rc fr.Element
	qc.SetBigInt(q)
	rc.SetBigInt(r)

	qVar := m.sys.AllocateWitness(func() fr.Element { return qc })
	rVar := m.sys.AllocateWitness(func() fr.Element { return rc })

	// q*b + r = a, i.e. q*b = a-r.
	var negOne fr.Element
	one := fr.One()
	negOne.Neg(&one)
	aMinusR := constraint.FromVariable(a.Var).Add(rVar, negOne)
	m.sys.Enforce(constraint.FromVariable(qVar), constraint.FromVariable(b.Var), aMinusR)

	bits := inst.Type.Bitlength
	if bits == 0 {
		bits = 254
	}

	// 0 <= r < b, proven as `(b - r - 1)` fitting in `bits` unsigned bits.
	var diffC fr.Element
	diffC.Sub(&b.Concrete, &rc)
	diffC.Sub(&diffC, &one)

	diffVar := m.sys.AllocateWitness(func() fr.Element { return diffC })

	bMinusR := constraint.FromVariable(b.Var).Add(rVar, negOne).Add(constraint.One, negOne)
	m.enforceEq(bMinusR, constraint.FromVariable(diffVar))

	if err := rangecheck.Unsigned(m.sys, diffVar, diffC, bits); err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	if inst.Op == ir.OpDiv {
		m.push(Value{Concrete: qc, Var: qVar})
	} else {
		m.push(Value{Concrete: rc, Var: rVar})
	}

	return nil
}

func (m *Machine) binaryBits(inst ir.Instruction) error {
	b, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	a, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	bits := bitWidth(inst.Type)

	switch inst.Op {
	case ir.OpShl:
		shiftN := fieldToUint(b.Concrete)

		var pow fr.Element
		pow.SetBigInt(new(big.Int).Lsh(big.NewInt(1), shiftN))

		var resultC fr.Element
		resultC.Mul(&a.Concrete, &pow)

		resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })
		m.sys.Enforce(constraint.FromVariable(a.Var), constraint.FromConstant(pow), constraint.FromVariable(resultVar))

		if bits > 0 {
			if err := rangecheck.Unsigned(m.sys, resultVar, resultC, bits); err != nil {
				return m.internalError(inst.Loc, err.Error())
			}
		}

		m.push(Value{Concrete: resultC, Var: resultVar})

	case ir.OpShr:
		shiftN := fieldToUint(b.Concrete)

		var na big.Int
		a.Concrete.BigInt(&na)

		shifted := new(big.Int).Rsh(&na, shiftN)
		mod := new(big.Int).Lsh(big.NewInt(1), shiftN)
		dropped := new(big.Int).Mod(&na, mod)

		var resultC, droppedC fr.Element
		resultC.SetBigInt(shifted)
		droppedC.SetBigInt(dropped)

		resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })
		droppedVar := m.sys.AllocateWitness(func() fr.Element { return droppedC })

		if shiftN > 0 {
			if err := rangecheck.Unsigned(m.sys, droppedVar, droppedC, shiftN); err != nil {
				return m.internalError(inst.Loc, err.Error())
			}
		}

		var pow fr.Element
		pow.SetBigInt(mod)

		aMinusDropped := sub(constraint.FromVariable(a.Var), constraint.FromVariable(droppedVar))
		m.sys.Enforce(constraint.FromVariable(resultVar), constraint.FromConstant(pow), aMinusDropped)

		m.push(Value{Concrete: resultC, Var: resultVar})

	case ir.OpBitAnd, ir.OpBitOr, ir.OpBitXor:
		aBits := m.decomposeBits(a, bits)
		bBits := m.decomposeBits(b, bits)

		outBits := make([]Value, bits)

		for i := uint(0); i < bits; i++ {
			ab := aBits[i]
			bb := bBits[i]

			var abC fr.Element
			abC.Mul(&ab.Concrete, &bb.Concrete)
			abVar := m.sys.AllocateWitness(func() fr.Element { return abC })
			m.sys.Enforce(constraint.FromVariable(ab.Var), constraint.FromVariable(bb.Var), constraint.FromVariable(abVar))

			var outC fr.Element
			var outVar constraint.Variable

			sumAB := constraint.FromVariable(ab.Var).Add(bb.Var, fr.One())

			switch inst.Op {
			case ir.OpBitAnd:
				outC = abC
				outVar = abVar
			case ir.OpBitOr:
				outC.Sub(&ab.Concrete, &abC)
				outC.Add(&outC, &bb.Concrete)
				outVar = m.sys.AllocateWitness(func() fr.Element { return outC })
				m.enforceEq(sumAB, constraint.FromVariable(outVar).Add(abVar, fr.One()))
			case ir.OpBitXor:
				var twoAB fr.Element
				two := fr.NewElement(2)
				twoAB.Mul(&abC, &two)
				outC.Add(&ab.Concrete, &bb.Concrete)
				outC.Sub(&outC, &twoAB)
				outVar = m.sys.AllocateWitness(func() fr.Element { return outC })
				m.enforceEq(sumAB, constraint.FromVariable(outVar).Add(abVar, two))
			}

			outBits[i] = Value{Concrete: outC, Var: outVar}
		}

		resultC := recombine(outBits)
		resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })

		sum := constraint.LinearCombination{}
		for i, bv := range outBits {
			var weight fr.Element
			weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(i)))
			sum = sum.Add(bv.Var, weight)
		}
		m.enforceEq(sum, constraint.FromVariable(resultVar))

		m.push(Value{Concrete: resultC, Var: resultVar})
	}

	return nil
}

func (m *Machine) bitNot(v Value, bits uint) (Value, error) {
	if bits == 0 {
		bits = 254
	}

	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	mod.Sub(mod, big.NewInt(1))

	var maskC fr.Element
	maskC.SetBigInt(mod)

	var resultC fr.Element
	resultC.Sub(&maskC, &v.Concrete)

	resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })

	sum := constraint.FromVariable(resultVar).Add(v.Var, fr.One())
	m.enforceEq(sum, constraint.FromConstant(maskC))

	return Value{Concrete: resultC, Var: resultVar}, nil
}

func (m *Machine) compareOp(inst ir.Instruction) error {
	b, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	a, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	bits := bitWidth(inst.Type)
	if bits == 0 || bits > 253 {
		bits = 253
	}

	switch inst.Op {
	case ir.OpLt:
		v, c := compare.LessThan(m.sys, a.Var, b.Var, a.Concrete, b.Concrete, bits)
		m.push(Value{Concrete: c, Var: v})

	case ir.OpGt:
		v, c := compare.LessThan(m.sys, b.Var, a.Var, b.Concrete, a.Concrete, bits)
		m.push(Value{Concrete: c, Var: v})

	case ir.OpGe:
		v, c := compare.LessThan(m.sys, a.Var, b.Var, a.Concrete, b.Concrete, bits)
		m.push(m.invertBool(v, c))

	case ir.OpLe:
		v, c := compare.LessThan(m.sys, b.Var, a.Var, b.Concrete, a.Concrete, bits)
		m.push(m.invertBool(v, c))
	}

	return nil
}

func (m *Machine) invertBool(v constraint.Variable, c fr.Element) Value {
	var outC fr.Element
	one := fr.One()
	outC.Sub(&one, &c)

	outVar := m.sys.AllocateWitness(func() fr.Element { return outC })
	sum := constraint.FromVariable(v).Add(outVar, fr.One())
	m.enforceEq(sum, constraint.FromConstant(fr.One()))

	return Value{Concrete: outC, Var: outVar}
}

func (m *Machine) booleanOp(inst ir.Instruction) error {
	b, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	a, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	var abC fr.Element
	abC.Mul(&a.Concrete, &b.Concrete)
	abVar := m.sys.AllocateWitness(func() fr.Element { return abC })
	m.sys.Enforce(constraint.FromVariable(a.Var), constraint.FromVariable(b.Var), constraint.FromVariable(abVar))

	sumAB := constraint.FromVariable(a.Var).Add(b.Var, fr.One())

	switch inst.Op {
	case ir.OpAnd:
		m.push(Value{Concrete: abC, Var: abVar})

	case ir.OpOr:
		var outC fr.Element
		outC.Add(&a.Concrete, &b.Concrete)
		outC.Sub(&outC, &abC)

		outVar := m.sys.AllocateWitness(func() fr.Element { return outC })
		m.enforceEq(sumAB, constraint.FromVariable(outVar).Add(abVar, fr.One()))

		m.push(Value{Concrete: outC, Var: outVar})

	case ir.OpXor:
		var twoAB, outC fr.Element
		two := fr.NewElement(2)
		twoAB.Mul(&abC, &two)

		outC.Add(&a.Concrete, &b.Concrete)
		outC.Sub(&outC, &twoAB)

		outVar := m.sys.AllocateWitness(func() fr.Element { return outC })
		m.enforceEq(sumAB, constraint.FromVariable(outVar).Add(abVar, two))

		m.push(Value{Concrete: outC, Var: outVar})
	}

	return nil
}

// cast reinterprets v under targetType. Casts to field (or to any target at
// least 254 bits wide) are free: the field representation is unchanged.
// Every other cast decomposes the value into 254 bits and recombines only
// the low target-width bits, which simultaneously proves the truncation
// relationship between old and new representations; the source type is not
// known here, so a widening integer cast pays for the same decomposition
// and leaves the value unchanged (spec.md §4.3 item 8's cast-legality rules are enforced
// earlier, by pkg/semantic; the VM only needs to perform the bit-level
// truncation).
func (m *Machine) cast(v Value, target ir.ScalarType) (Value, error) {
	if target.Kind == ir.ScalarField {
		return v, nil
	}

	srcBits := uint(254)
	targetBits := bitWidth(target)

	if targetBits >= srcBits {
		return v, nil
	}

	bits := m.decomposeBits(v, srcBits)
	kept := bits[:targetBits]

	resultC := recombine(kept)
	resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })

	sum := constraint.LinearCombination{}
	for i, bv := range kept {
		var weight fr.Element
		weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(i)))
		sum = sum.Add(bv.Var, weight)
	}
	m.enforceEq(sum, constraint.FromVariable(resultVar))

	return Value{Concrete: resultC, Var: resultVar}, nil
}

func (m *Machine) blend(newV, oldV Value) (Value, error) {
	if m.mask.Var == constraint.One {
		return newV, nil
	}

	var diffC fr.Element
	diffC.Sub(&newV.Concrete, &oldV.Concrete)
	diffVar := m.diffVar(newV, oldV, diffC)

	var termC fr.Element
	termC.Mul(&diffC, &m.mask.Concrete)

	var blendedC fr.Element
	blendedC.Add(&oldV.Concrete, &termC)

	blendedVar := m.sys.AllocateWitness(func() fr.Element { return blendedC })

	blendedMinusOld := sub(constraint.FromVariable(blendedVar), constraint.FromVariable(oldV.Var))
	m.sys.Enforce(constraint.FromVariable(diffVar), constraint.FromVariable(m.mask.Var), blendedMinusOld)

	return Value{Concrete: blendedC, Var: blendedVar}, nil
}

func (m *Machine) pushMask(cond Value) {
	m.maskStack.Push(maskEntry{parent: m.mask, cond: cond})

	var newC fr.Element
	newC.Mul(&m.mask.Concrete, &cond.Concrete)

	newVar := m.sys.AllocateWitness(func() fr.Element { return newC })
	m.sys.Enforce(constraint.FromVariable(m.mask.Var), constraint.FromVariable(cond.Var), constraint.FromVariable(newVar))

	m.mask = Value{Concrete: newC, Var: newVar}
}

func (m *Machine) invertMask() {
	entry := m.maskStack.Peek(0)

	var invC fr.Element
	one := fr.One()
	invC.Sub(&one, &entry.cond.Concrete)

	invVar := m.sys.AllocateWitness(func() fr.Element { return invC })
	sum := constraint.FromVariable(entry.cond.Var).Add(invVar, fr.One())
	m.enforceEq(sum, constraint.FromConstant(fr.One()))

	var newC fr.Element
	newC.Mul(&entry.parent.Concrete, &invC)

	newVar := m.sys.AllocateWitness(func() fr.Element { return newC })
	m.sys.Enforce(constraint.FromVariable(entry.parent.Var), constraint.FromVariable(invVar), constraint.FromVariable(newVar))

	m.mask = Value{Concrete: newC, Var: newVar}
}

func (m *Machine) popMask() {
	entry := m.maskStack.Pop()
	m.mask = entry.parent
}
