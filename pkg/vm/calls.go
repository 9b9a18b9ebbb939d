package vm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/vm/constraint"
	"github.com/zinclang/zinc/pkg/vm/merkle"
)

// call pushes a new activation record for the target entry, binding the
// caller's pc past the Call instruction before the callee frame is pushed
// (the frame stack's "top" changes underneath step()'s generic pc-advance
// logic, so Call must advance its own caller explicitly).
func (m *Machine) call(inst ir.Instruction) error {
	if inst.CallAddr >= uint(len(m.unit.Entries)) {
		return m.internalError(inst.Loc, "call: no such entry point index")
	}

	callee := &m.unit.Entries[inst.CallAddr]

	args := make([]Value, inst.ArgsSize)
	for i := int(inst.ArgsSize) - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}

		args[i] = v
	}

	caller := m.frames.Pop()
	caller.pc++
	m.frames.Push(caller)

	mem := make([]Value, callee.MemorySize)
	copy(mem, args)

	m.frames.Push(frame{program: callee, pc: 0, memory: mem})

	return nil
}

// ret pops the current activation record. Its return values were already
// produced onto the (machine-wide, frame-independent) data stack by the
// instructions preceding Return, so there is nothing left to move.
func (m *Machine) ret(inst ir.Instruction) error {
	m.frames.Pop()
	return nil
}

func (m *Machine) libraryCall(inst ir.Instruction) error {
	switch inst.Library {
	case ir.LibCryptoSha256, ir.LibCryptoPedersen:
		return m.hashLibraryCall(inst)

	case ir.LibConvertToBits:
		v, err := m.pop()
		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}

		bits := m.decomposeBits(v, inst.Size)
		for _, b := range bits {
			m.push(b)
		}

	case ir.LibConvertFromBitsUnsigned, ir.LibConvertFromBitsSigned, ir.LibConvertFromBitsField:
		bits := make([]Value, inst.Size)
		for i := int(inst.Size) - 1; i >= 0; i-- {
			v, err := m.pop()
			if err != nil {
				return m.internalError(inst.Loc, err.Error())
			}

			bits[i] = v
		}

		resultC := recombine(bits)
		resultVar := m.sys.AllocateWitness(func() fr.Element { return resultC })

		sum := constraint.LinearCombination{}
		for i, bv := range bits {
			var weight fr.Element
			weight.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(i)))
			sum = sum.Add(bv.Var, weight)
		}
		m.enforceEq(sum, constraint.FromVariable(resultVar))

		if inst.Library == ir.LibConvertFromBitsSigned && len(bits) > 0 {
			var offset fr.Element
			offset.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(len(bits)-1)))
			resultC.Sub(&resultC, &offset)
			resultVar = m.sys.AllocateWitness(func() fr.Element { return resultC })
		}

		m.push(Value{Concrete: resultC, Var: resultVar})

	case ir.LibArrayReverse:
		elems := make([]Value, inst.Size)
		for i := int(inst.Size) - 1; i >= 0; i-- {
			v, err := m.pop()
			if err != nil {
				return m.internalError(inst.Loc, err.Error())
			}

			elems[i] = v
		}

		for i := len(elems) - 1; i >= 0; i-- {
			m.push(elems[i])
		}

	case ir.LibArrayTruncate:
		elems := make([]Value, inst.Size)
		for i := int(inst.Size) - 1; i >= 0; i-- {
			v, err := m.pop()
			if err != nil {
				return m.internalError(inst.Loc, err.Error())
			}

			elems[i] = v
		}

		for _, v := range elems[:inst.Offset] {
			m.push(v)
		}

	case ir.LibArrayPad:
		elems := make([]Value, inst.Size)
		for i := int(inst.Size) - 1; i >= 0; i-- {
			v, err := m.pop()
			if err != nil {
				return m.internalError(inst.Loc, err.Error())
			}

			elems[i] = v
		}

		for _, v := range elems {
			m.push(v)
		}

		for i := inst.Size; i < inst.Offset; i++ {
			m.push(constVal(m.sys, fr.Element{}))
		}

	case ir.LibFfInvert:
		v, err := m.pop()
		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}

		if v.Concrete.IsZero() {
			return m.runtimeError(inst.Loc, "field inversion of zero")
		}

		var invC fr.Element
		invC.Inverse(&v.Concrete)

		invVar := m.sys.AllocateWitness(func() fr.Element { return invC })
		m.sys.Enforce(constraint.FromVariable(v.Var), constraint.FromVariable(invVar), constraint.FromConstant(fr.One()))

		m.push(Value{Concrete: invC, Var: invVar})

	case ir.LibCollectionsMTreeMapGet, ir.LibCollectionsMTreeMapContains,
		ir.LibCollectionsMTreeMapInsert, ir.LibCollectionsMTreeMapRemove:
		return m.mapLibraryCall(inst)

	case ir.LibContractFetch, ir.LibContractTransfer:
		return m.runtimeError(inst.Loc, "cross-contract state is not modeled by this constraint VM")

	default:
		return m.internalError(inst.Loc, "unimplemented library call")
	}

	return nil
}

func (m *Machine) hashLibraryCall(inst ir.Instruction) error {
	args := make([]fr.Element, inst.ArgsSize)
	for i := int(inst.ArgsSize) - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}

		args[i] = v.Concrete
	}

	acc := args[0]
	for _, next := range args[1:] {
		acc = m.hasher.Absorb([]fr.Element{acc, next})
	}

	if len(args) == 1 {
		acc = m.hasher.Absorb([]fr.Element{acc, fr.Element{}})
	}

	// The hash function's internal structure is not itself decomposed into
	// constraints here (that would require a full in-circuit SHA-256/Pedersen
	// implementation); the result is witnessed directly, matching the
	// hasher's role as an external collaborator at the storage layer.
	m.push(constVal(m.sys, acc))

	return nil
}

func (m *Machine) mapLibraryCall(inst ir.Instruction) error {
	if m.storage == nil {
		return m.internalError(inst.Loc, "map operation requires contract storage")
	}

	key, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	slot := fieldToUint(key.Concrete) + inst.Addr

	switch inst.Library {
	case ir.LibCollectionsMTreeMapGet:
		m.push(constVal(m.sys, m.storage.Get(uint64(slot))))

	case ir.LibCollectionsMTreeMapContains:
		v := m.storage.Get(uint64(slot))
		if v.IsZero() {
			m.push(constVal(m.sys, fr.Element{}))
		} else {
			m.push(constVal(m.sys, fr.One()))
		}

	case ir.LibCollectionsMTreeMapInsert:
		val, err := m.pop()
		if err != nil {
			return m.internalError(inst.Loc, err.Error())
		}

		m.storage.Set(uint64(slot), val.Concrete)

	case ir.LibCollectionsMTreeMapRemove:
		m.storage.Set(uint64(slot), fr.Element{})
	}

	return nil
}

func (m *Machine) storageLoad(inst ir.Instruction) (Value, error) {
	if m.storage == nil {
		return Value{}, m.internalError(inst.Loc, "no contract storage configured")
	}

	leaf := m.storage.Get(uint64(inst.Addr))
	path := m.storage.Path(uint64(inst.Addr))
	root := m.storage.Root()

	rootVar := m.sys.AllocateWitness(func() fr.Element { return root })

	if err := merkle.VerifyPath(m.sys, m.hasher, leaf, path, rootVar, root); err != nil {
		return Value{}, m.runtimeError(inst.Loc, err.Error())
	}

	return constVal(m.sys, leaf), nil
}

func (m *Machine) storageStore(inst ir.Instruction) error {
	if m.storage == nil {
		return m.internalError(inst.Loc, "no contract storage configured")
	}

	v, err := m.pop()
	if err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	newRoot := m.storage.Set(uint64(inst.Addr), v.Concrete)
	path := m.storage.Path(uint64(inst.Addr))

	rootVar := m.sys.AllocateWitness(func() fr.Element { return newRoot })

	if err := merkle.VerifyPath(m.sys, m.hasher, v.Concrete, path, rootVar, newRoot); err != nil {
		return m.internalError(inst.Loc, err.Error())
	}

	return nil
}
