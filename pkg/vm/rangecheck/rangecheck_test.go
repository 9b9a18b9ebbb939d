package rangecheck

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/vm/constraint"
)

func TestUnsignedInRange(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	val := fr.NewElement(200)
	v := sys.AllocateWitness(func() fr.Element { return val })

	if err := Unsigned(sys, v, val, 8); err != nil {
		t.Fatalf("Unsigned: %v", err)
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected in-range value to satisfy, got %v", err)
	}
}

func TestUnsignedOutOfRangeFailsCheck(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	// 300 doesn't fit in 8 bits; the weighted-sum constraint must fail since
	// no 8-bit decomposition sums to it.
	val := fr.NewElement(300)
	v := sys.AllocateWitness(func() fr.Element { return val })

	if err := Unsigned(sys, v, val, 8); err != nil {
		t.Fatalf("Unsigned: %v", err)
	}

	if err := sys.Check(); err == nil {
		t.Fatal("expected out-of-range value to fail Check")
	}
}

func TestSignedNegativeInRange(t *testing.T) {
	sys := constraint.NewBuilder(constraint.ModeProve)

	var neg fr.Element
	neg.SetInt64(-5)

	v := sys.AllocateWitness(func() fr.Element { return neg })

	if err := Signed(sys, v, neg, 8); err != nil {
		t.Fatalf("Signed: %v", err)
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected -5 to fit in i8, got %v", err)
	}
}
