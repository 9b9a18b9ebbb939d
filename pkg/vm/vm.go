// Package vm implements the constraint-synthesizing machine of spec.md
// §4.4: it walks a compiled ir.Program's flat instruction stream, driving a
// constraint.System to allocate variables and emit rank-1 constraints for
// every arithmetic, comparison, and control-flow operation, and produces
// both a concrete output and the synthesized constraint count.
package vm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	log "github.com/sirupsen/logrus"

	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/hasher"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/util/collection/stack"
	"github.com/zinclang/zinc/pkg/vm/compare"
	"github.com/zinclang/zinc/pkg/vm/constraint"
	"github.com/zinclang/zinc/pkg/vm/merkle"
)

// Value pairs a concrete field-element witness with the constraint-system
// variable that represents it, the unit the data stack, memory and storage
// all traffic in.
type Value struct {
	Concrete fr.Element
	Var      constraint.Variable
}

func constVal(sys constraint.System, c fr.Element) Value {
	v := sys.AllocateWitness(func() fr.Element { return c })
	return Value{Concrete: c, Var: v}
}

// frame is one activation record on the call stack: the program being run,
// its program counter, and its private memory region. Since the call graph is a DAG (spec.md §9 "no
// recursion"), a callee's memory never aliases a live caller's.
type frame struct {
	program *ir.Program
	pc      uint
	memory  []Value
}

// maskEntry is one level of the conditional-execution stack: the parent's
// active mask (restored on EndIf) and the branch condition (inverted on
// Else per spec.md §4.4).
type maskEntry struct {
	parent Value
	cond   Value
}

// Machine is one execution of a compiled ir.Unit against a constraint
// system. It is not safe for concurrent use; spec.md §5 assigns one Machine
// per goroutine; only the append-only source.Registry and constraint.System
// backing store are shared.
type Machine struct {
	sys     constraint.System
	hasher  hasher.Hasher
	storage *merkle.Tree
	unit    *ir.Unit

	data   []Value
	frames *stack.Stack[frame]

	mask      Value
	maskStack *stack.Stack[maskEntry]

	inputs   []fr.Element
	inputPos int
	outputs  []Value
}

// New constructs a Machine ready to run entries of unit. storage may be nil
// if unit declares no contract storage.
func New(sys constraint.System, h hasher.Hasher, storage *merkle.Tree, unit *ir.Unit) *Machine {
	return &Machine{
		sys:       sys,
		hasher:    h,
		storage:   storage,
		unit:      unit,
		frames:    stack.NewStack[frame](),
		maskStack: stack.NewStack[maskEntry](),
		mask:      Value{Concrete: fr.One(), Var: constraint.One},
	}
}

// Run executes the named entry point to completion and returns its
// flattened output values.
func (m *Machine) Run(entry string, inputs []fr.Element) ([]fr.Element, error) {
	prog := m.lookup(entry)
	if prog == nil {
		return nil, fmt.Errorf("vm: no such entry point %q", entry)
	}

	return m.runProgram(prog, inputs)
}

// RunSelector resolves a contract's method by its 4-byte dispatch selector
// (see ir.MethodSelector) rather than by name, the way a transaction
// dispatches into a deployed contract, and executes it to completion.
func (m *Machine) RunSelector(contract string, selector uint32, inputs []fr.Element) ([]fr.Element, error) {
	prog, ok := Dispatch(m.unit, contract, selector)
	if !ok {
		return nil, fmt.Errorf("vm: no method of %q with selector %08x", contract, selector)
	}

	return m.runProgram(prog, inputs)
}

func (m *Machine) runProgram(prog *ir.Program, inputs []fr.Element) ([]fr.Element, error) {
	m.inputs = inputs
	m.inputPos = 0
	m.outputs = nil

	m.frames.Push(frame{program: prog, pc: 0, memory: make([]Value, prog.MemorySize)})

	if err := m.loop(); err != nil {
		return nil, err
	}

	out := make([]fr.Element, len(m.outputs))
	for i, v := range m.outputs {
		out[i] = v.Concrete
	}

	return out, nil
}

// Dispatch finds the contract method whose 4-byte selector (ir.MethodSelector
// of its qualified "Contract::method" name) matches selector, mirroring the
// Zinc VM's ContractMethod table.
func Dispatch(unit *ir.Unit, contract string, selector uint32) (*ir.Program, bool) {
	for i := range unit.Entries {
		e := &unit.Entries[i]
		if e.Contract == contract && e.Selector == selector {
			return e, true
		}
	}

	return nil, false
}

func (m *Machine) lookup(name string) *ir.Program {
	for i := range m.unit.Entries {
		if m.unit.Entries[i].Name == name {
			return &m.unit.Entries[i]
		}
	}

	return nil
}

// loop interprets instructions until the frame stack empties.
func (m *Machine) loop() error {
	for !m.frames.IsEmpty() {
		top := m.frames.Peek(0)

		if top.pc >= uint(len(top.program.Body)) {
			// implicit return with nothing on the stack
			m.frames.Pop()
			continue
		}

		inst := top.program.Body[top.pc]

		advance, err := m.step(inst)
		if err != nil {
			return err
		}

		if advance {
			top := m.frames.Pop()
			top.pc++
			m.frames.Push(top)
		}
	}

	return nil
}

func (m *Machine) internalError(loc source.Location, msg string) error {
	return errors.New(errors.Runtime, "E-VM-INTERNAL", msg, source.SingleToken(loc, 1))
}

func (m *Machine) runtimeError(loc source.Location, msg string) error {
	return errors.New(errors.Runtime, "E-VM-UNSAT", msg, source.SingleToken(loc, 1))
}

func (m *Machine) push(v Value)  { m.data = append(m.data, v) }
func (m *Machine) pop() (Value, error) {
	if len(m.data) == 0 {
		return Value{}, fmt.Errorf("vm: data stack underflow")
	}

	v := m.data[len(m.data)-1]
	m.data = m.data[:len(m.data)-1]

	return v, nil
}

// step executes one instruction against the frame currently on top of the
// call stack. It returns whether the interpreter should advance the
// program counter (false for instructions, like Call, that redirect control
// flow themselves).
func (m *Machine) step(inst ir.Instruction) (bool, error) {
	top := m.frames.Peek(0)

	switch inst.Op {
	case ir.OpPush:
		c, err := parseConstant(inst.ConstantText, inst.Type)
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		m.push(constVal(m.sys, c))

	case ir.OpPop:
		if _, err := m.pop(); err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

	case ir.OpCopy:
		if len(m.data) == 0 {
			return false, m.internalError(inst.Loc, "copy: empty stack")
		}

		m.push(m.data[len(m.data)-1])

	case ir.OpSlice:
		if uint(len(m.data)) < inst.Size {
			return false, m.internalError(inst.Loc, "slice: insufficient stack depth")
		}

		start := uint(len(m.data)) - inst.Size + inst.Offset
		if start >= uint(len(m.data)) {
			return false, m.internalError(inst.Loc, "slice: offset out of range")
		}

		m.push(m.data[start])

	case ir.OpLoad:
		if inst.Addr >= uint(len(top.memory)) {
			return false, m.internalError(inst.Loc, "load: address out of range")
		}

		m.push(top.memory[inst.Addr])

	case ir.OpStore:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		if inst.Addr >= uint(len(top.memory)) {
			return false, m.internalError(inst.Loc, "store: address out of range")
		}

		blended, err := m.blend(v, top.memory[inst.Addr])
		if err != nil {
			return false, err
		}

		mutTop := m.frames.Pop()
		mutTop.memory[inst.Addr] = blended
		m.frames.Push(mutTop)

	case ir.OpLoadByIndex:
		idxVal, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		addr := inst.Addr + fieldToUint(idxVal.Concrete)
		if addr >= uint(len(top.memory)) {
			return false, m.runtimeError(inst.Loc, "index out of range")
		}

		m.push(top.memory[addr])

	case ir.OpStoreByIndex:
		idxVal, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		addr := inst.Addr + fieldToUint(idxVal.Concrete)
		if addr >= uint(len(top.memory)) {
			return false, m.runtimeError(inst.Loc, "index out of range")
		}

		blended, err := m.blend(v, top.memory[addr])
		if err != nil {
			return false, err
		}

		mutTop := m.frames.Pop()
		mutTop.memory[addr] = blended
		m.frames.Push(mutTop)

	case ir.OpAdd, ir.OpSub, ir.OpMul:
		if err := m.binaryArith(inst); err != nil {
			return false, err
		}

	case ir.OpDiv, ir.OpRem:
		if err := m.divRem(inst); err != nil {
			return false, err
		}

	case ir.OpNeg:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		var negC fr.Element
		negC.Neg(&v.Concrete)

		out := m.sys.AllocateWitness(func() fr.Element { return negC })
		sum := constraint.FromVariable(v.Var).Add(out, fr.One())
		m.sys.Enforce(sum, constraint.FromConstant(fr.One()), constraint.LinearCombination{})

		m.push(Value{Concrete: negC, Var: out})

	case ir.OpBitAnd, ir.OpBitOr, ir.OpBitXor, ir.OpShl, ir.OpShr:
		if err := m.binaryBits(inst); err != nil {
			return false, err
		}

	case ir.OpBitNot:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		result, err := m.bitNot(v, inst.Type.Bitlength)
		if err != nil {
			return false, err
		}

		m.push(result)

	case ir.OpEq, ir.OpNe:
		b, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		a, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		var diff fr.Element
		diff.Sub(&a.Concrete, &b.Concrete)
		diffVar := m.diffVar(a, b, diff)

		eqVar, eqConcrete := compare.IsZero(m.sys, diffVar, diff)

		if inst.Op == ir.OpEq {
			m.push(Value{Concrete: eqConcrete, Var: eqVar})
		} else {
			var neConcrete fr.Element
			one := fr.One()
			neConcrete.Sub(&one, &eqConcrete)

			neVar := m.sys.AllocateWitness(func() fr.Element { return neConcrete })
			sum := constraint.FromVariable(eqVar).Add(neVar, fr.One())
			m.sys.Enforce(sum, constraint.FromConstant(fr.One()), constraint.FromConstant(fr.One()))

			m.push(Value{Concrete: neConcrete, Var: neVar})
		}

	case ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		if err := m.compareOp(inst); err != nil {
			return false, err
		}

	case ir.OpNot:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		var outC fr.Element
		one := fr.One()
		outC.Sub(&one, &v.Concrete)

		out := m.sys.AllocateWitness(func() fr.Element { return outC })
		sum := constraint.FromVariable(v.Var).Add(out, fr.One())
		m.sys.Enforce(sum, constraint.FromConstant(fr.One()), constraint.FromConstant(fr.One()))

		m.push(Value{Concrete: outC, Var: out})

	case ir.OpAnd, ir.OpOr, ir.OpXor:
		if err := m.booleanOp(inst); err != nil {
			return false, err
		}

	case ir.OpCast:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		out, err := m.cast(v, inst.TargetType)
		if err != nil {
			return false, err
		}

		m.push(out)

	case ir.OpIf:
		cond, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		m.pushMask(cond)

	case ir.OpElse:
		m.invertMask()

	case ir.OpEndIf:
		m.popMask()

	case ir.OpLoopBegin:
		// Static unrolling: a LoopBegin(n)/LoopEnd pair is expanded by the
		// compiler into n literal copies of the loop body, so at VM level
		// LoopBegin/LoopEnd are no-ops retained only for disassembly
		// readability.

	case ir.OpLoopEnd:
		// see OpLoopBegin

	case ir.OpCall:
		if err := m.call(inst); err != nil {
			return false, err
		}

		return false, nil

	case ir.OpReturn:
		if err := m.ret(inst); err != nil {
			return false, err
		}

		return false, nil

	case ir.OpLibraryCall:
		if err := m.libraryCall(inst); err != nil {
			return false, err
		}

	case ir.OpRequire:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		if v.Concrete.IsZero() {
			return false, m.runtimeError(inst.Loc, "require(false)")
		}

		// Proving v has a multiplicative inverse binds non-zero-ness into
		// the circuit itself, not just this synthesis-time check.
		var inv fr.Element
		inv.Inverse(&v.Concrete)

		invVar := m.sys.AllocateWitness(func() fr.Element { return inv })
		m.sys.Enforce(constraint.FromVariable(v.Var), constraint.FromVariable(invVar), constraint.FromConstant(fr.One()))

	case ir.OpDbg:
		// Formatting is a logging side-effect outside the constraint system:
		// dbg! pops its trailing arguments in reverse-push order and, in
		// ModeProve ("debug" runs, as opposed to ModeSetup's proof-key
		// synthesis where no concrete witness exists to print), logs the
		// formatted message through logrus at Info level.
		values := make([]fr.Element, len(inst.DbgSizes))

		for i := len(inst.DbgSizes) - 1; i >= 0; i-- {
			v, err := m.pop()
			if err != nil {
				return false, m.internalError(inst.Loc, err.Error())
			}

			values[i] = v.Concrete
		}

		if m.sys.Mode() == constraint.ModeProve {
			log.Info(formatDbg(inst.DbgFmt, values))
		}

	case ir.OpInput:
		if m.inputPos >= len(m.inputs) {
			return false, m.internalError(inst.Loc, "input: exhausted the supplied input vector")
		}

		c := m.inputs[m.inputPos]
		m.inputPos++

		v := m.sys.AllocateInput(func() fr.Element { return c })
		m.push(Value{Concrete: c, Var: v})

	case ir.OpOutput:
		v, err := m.pop()
		if err != nil {
			return false, m.internalError(inst.Loc, err.Error())
		}

		m.outputs = append(m.outputs, v)

	case ir.OpStorageLoad:
		v, err := m.storageLoad(inst)
		if err != nil {
			return false, err
		}

		m.push(v)

	case ir.OpStorageStore:
		if err := m.storageStore(inst); err != nil {
			return false, err
		}

	default:
		return false, m.internalError(inst.Loc, fmt.Sprintf("unimplemented opcode %d", inst.Op))
	}

	return true, nil
}

// formatDbg substitutes each value's decimal text for one "{}" placeholder
// in fmtText, left to right. Arity (one placeholder per value) is checked at
// compile time, so this never runs out of values or placeholders.
func formatDbg(fmtText string, values []fr.Element) string {
	var out strings.Builder

	rest := fmtText

	for _, v := range values {
		i := strings.Index(rest, "{}")
		if i < 0 {
			break
		}

		var b big.Int
		v.BigInt(&b)

		out.WriteString(rest[:i])
		out.WriteString(b.String())
		rest = rest[i+2:]
	}

	out.WriteString(rest)

	return out.String()
}

func fieldToUint(f fr.Element) uint {
	var b big.Int
	f.BigInt(&b)

	return uint(b.Uint64())
}

func parseConstant(text string, t ir.ScalarType) (fr.Element, error) {
	var out fr.Element

	switch t.Kind {
	case ir.ScalarBool:
		if text == "true" {
			return fr.One(), nil
		}

		return fr.Element{}, nil
	default:
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return out, fmt.Errorf("vm: malformed numeric literal %q", text)
		}

		out.SetBigInt(n)

		return out, nil
	}
}
