// Package constraint implements the abstract rank-1 constraint system
// interface of spec.md §6.3: allocate a witness or public-input variable,
// and enforce an `a·b = c` linear-combination equality over the bn256
// (bn254) scalar field. pkg/vm is written against the System interface
// only; Builder is the one concrete implementation the VM drives today.
// Groth16 setup/prove/verify themselves live behind cmd/zinc's own
// ErrNotImplemented stubs until a backend is wired in.
package constraint

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Variable names one wire of the constraint system. Variable zero is
// reserved for the constant wire (always valued 1), the standard R1CS
// convention for expressing constant terms inside a LinearCombination.
type Variable uint32

// One is the reserved constant-1 wire every LinearCombination's constant
// term is expressed against.
const One Variable = 0

// Term is one `coefficient * variable` summand of a LinearCombination.
type Term struct {
	Variable Variable
	Coeff    fr.Element
}

// LinearCombination is a sum of Terms, the `a`/`b`/`c` operand shape of
// System.Enforce.
type LinearCombination []Term

// FromVariable builds the trivial linear combination `1 * v`.
func FromVariable(v Variable) LinearCombination {
	return LinearCombination{{Variable: v, Coeff: fr.One()}}
}

// FromConstant builds a linear combination equal to the constant value c,
// expressed as `c * One`.
func FromConstant(c fr.Element) LinearCombination {
	return LinearCombination{{Variable: One, Coeff: c}}
}

// Add returns a new LinearCombination with an additional `coeff * v` term.
func (lc LinearCombination) Add(v Variable, coeff fr.Element) LinearCombination {
	return append(append(LinearCombination{}, lc...), Term{Variable: v, Coeff: coeff})
}

// Scale returns lc with every coefficient multiplied by factor.
func (lc LinearCombination) Scale(factor fr.Element) LinearCombination {
	out := make(LinearCombination, len(lc))
	for i, t := range lc {
		var c fr.Element
		c.Mul(&t.Coeff, &factor)
		out[i] = Term{Variable: t.Variable, Coeff: c}
	}

	return out
}

// System is the constraint-system interface consumed from the pairing
// library, taken verbatim from spec.md §6.3.
type System interface {
	AllocateInput(f func() fr.Element) Variable
	AllocateWitness(f func() fr.Element) Variable
	Enforce(a, b, c LinearCombination)
	Namespace(name string) System
	Mode() Mode
}

// Mode selects how a Builder treats the closures passed to Allocate*: in
// ModeProve every closure is evaluated immediately to populate a concrete
// witness; in ModeSetup allocation only reserves a wire, per spec.md §4.4
// ("during setup, only the variable exists").
type Mode uint

const (
	ModeProve Mode = iota
	ModeSetup
)

// constraintRecord is one enforced `a·b=c` triple, labeled with the
// namespace path active when it was recorded (for UnsatisfiedConstraint
// diagnostics).
type constraintRecord struct {
	A, B, C   LinearCombination
	Namespace string
}

// builderState is the mutable storage shared by a Builder and every System
// returned from its Namespace calls, so that allocations/constraints made
// through a namespaced view are visible to the root Builder.
type builderState struct {
	mode        Mode
	values      []fr.Element
	inputCount  int
	constraints []constraintRecord
}

// Builder is the System implementation the VM drives: it synthesizes the
// circuit (recording one constraintRecord per Enforce call) and, in
// ModeProve, simultaneously evaluates concrete values so that Check can
// detect an UnsatisfiedConstraint before a real prover ever sees the
// circuit.
type Builder struct {
	state     *builderState
	namespace []string
}

// NewBuilder constructs an empty Builder. Variable One (the constant wire)
// is allocated automatically.
func NewBuilder(mode Mode) *Builder {
	return &Builder{state: &builderState{mode: mode, values: []fr.Element{fr.One()}}}
}

func (b *Builder) currentNamespace() string {
	out := ""

	for i, n := range b.namespace {
		if i > 0 {
			out += "/"
		}

		out += n
	}

	return out
}

// AllocateInput reserves a public-input wire.
func (b *Builder) AllocateInput(f func() fr.Element) Variable {
	b.state.inputCount++
	return b.allocate(f)
}

// AllocateWitness reserves a private-witness wire.
func (b *Builder) AllocateWitness(f func() fr.Element) Variable {
	return b.allocate(f)
}

func (b *Builder) allocate(f func() fr.Element) Variable {
	var v fr.Element

	if b.state.mode == ModeProve {
		v = f()
	}

	b.state.values = append(b.state.values, v)

	return Variable(len(b.state.values) - 1)
}

// Enforce records the constraint `a·b = c`.
func (b *Builder) Enforce(a, bb, c LinearCombination) {
	b.state.constraints = append(b.state.constraints, constraintRecord{A: a, B: bb, C: c, Namespace: b.currentNamespace()})
}

// Namespace returns a System that prefixes every subsequently recorded
// constraint's label with name, for debuggability (spec.md §6.3). The
// returned System shares this Builder's wire/constraint storage.
func (b *Builder) Namespace(name string) System {
	return &Builder{
		state:     b.state,
		namespace: append(append([]string{}, b.namespace...), name),
	}
}

// Mode reports whether this Builder is evaluating concrete witness values
// (ModeProve) or only reserving wires (ModeSetup).
func (b *Builder) Mode() Mode {
	return b.state.mode
}

// Eval computes the concrete value of a linear combination under the
// Builder's current witness assignment. Only meaningful in ModeProve.
func (b *Builder) Eval(lc LinearCombination) fr.Element {
	var acc fr.Element

	for _, t := range lc {
		var term fr.Element
		term.Mul(&b.state.values[t.Variable], &t.Coeff)
		acc.Add(&acc, &term)
	}

	return acc
}

// Check verifies every recorded constraint against the concrete witness,
// surfacing the constraint-unsatisfied failure class of spec.md §4.4 item 3.
// Only meaningful in ModeProve; in ModeSetup there is no witness to check
// against, so Check always succeeds trivially.
func (b *Builder) Check() error {
	if b.state.mode == ModeSetup {
		return nil
	}

	for i, rec := range b.state.constraints {
		a, bb, c := b.Eval(rec.A), b.Eval(rec.B), b.Eval(rec.C)

		var lhs fr.Element
		lhs.Mul(&a, &bb)

		if !lhs.Equal(&c) {
			label := rec.Namespace
			if label == "" {
				label = fmt.Sprintf("constraint#%d", i)
			}

			return fmt.Errorf("unsatisfied constraint %q: %s * %s != %s", label, a.String(), bb.String(), c.String())
		}
	}

	return nil
}

// NumConstraints reports how many constraints have been recorded, used for
// the VM's `run` return value (spec.md §6.5 `run(...) → (output, constraints)`).
func (b *Builder) NumConstraints() int {
	return len(b.state.constraints)
}

// InputCount reports how many public-input wires have been allocated.
func (b *Builder) InputCount() int {
	return b.state.inputCount
}
