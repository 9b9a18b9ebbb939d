package compare

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/vm/constraint"
)

func TestIsZeroTrueCase(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	v := sys.AllocateWitness(func() fr.Element { return fr.Element{} })
	_, out := IsZero(sys, v, fr.Element{})

	one := fr.One()
	if !out.Equal(&one) {
		t.Fatal("expected IsZero(0) == 1")
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}

func TestIsZeroFalseCase(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	five := fr.NewElement(5)
	v := sys.AllocateWitness(func() fr.Element { return five })
	_, out := IsZero(sys, v, five)

	if !out.IsZero() {
		t.Fatal("expected IsZero(5) == 0")
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}

func TestLessThanTrueAndFalse(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	three := fr.NewElement(3)
	five := fr.NewElement(5)

	a := sys.AllocateWitness(func() fr.Element { return three })
	b := sys.AllocateWitness(func() fr.Element { return five })

	_, ltOut := LessThan(sys, a, b, three, five, 8)

	one := fr.One()
	if !ltOut.Equal(&one) {
		t.Fatal("expected 3 < 5 to be true")
	}

	_, geOut := LessThan(sys, b, a, five, three, 8)
	if !geOut.IsZero() {
		t.Fatal("expected 5 < 3 to be false")
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}
