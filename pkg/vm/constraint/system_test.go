package constraint

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestBuilderSatisfiedConstraint(t *testing.T) {
	b := NewBuilder(ModeProve)

	two := fr.NewElement(2)
	three := fr.NewElement(3)
	six := fr.NewElement(6)

	a := b.AllocateWitness(func() fr.Element { return two })
	c := b.AllocateWitness(func() fr.Element { return three })
	out := b.AllocateWitness(func() fr.Element { return six })

	b.Enforce(FromVariable(a), FromVariable(c), FromVariable(out))

	if err := b.Check(); err != nil {
		t.Fatalf("expected satisfied constraint, got %v", err)
	}
}

func TestBuilderUnsatisfiedConstraint(t *testing.T) {
	b := NewBuilder(ModeProve)

	two := fr.NewElement(2)
	three := fr.NewElement(3)
	seven := fr.NewElement(7)

	a := b.AllocateWitness(func() fr.Element { return two })
	c := b.AllocateWitness(func() fr.Element { return three })
	out := b.AllocateWitness(func() fr.Element { return seven })

	ns := b.Namespace("mul")
	ns.Enforce(FromVariable(a), FromVariable(c), FromVariable(out))

	if err := b.Check(); err == nil {
		t.Fatal("expected unsatisfied constraint error")
	}
}

func TestBuilderSetupModeSkipsWitness(t *testing.T) {
	b := NewBuilder(ModeSetup)

	v := b.AllocateWitness(func() fr.Element {
		t.Fatal("closure should not be evaluated in ModeSetup")
		return fr.Element{}
	})

	b.Enforce(FromVariable(v), FromVariable(One), FromVariable(v))

	if err := b.Check(); err != nil {
		t.Fatalf("setup mode Check should always succeed, got %v", err)
	}
}
