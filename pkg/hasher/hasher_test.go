package hasher

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestSHA256HasherDeterministic(t *testing.T) {
	h := SHA256Hasher{}

	a := fr.NewElement(1)
	b := fr.NewElement(2)

	out1 := h.Absorb([]fr.Element{a, b})
	out2 := h.Absorb([]fr.Element{a, b})

	if !out1.Equal(&out2) {
		t.Fatal("expected Absorb to be deterministic")
	}
}

func TestSHA256HasherOrderSensitive(t *testing.T) {
	h := SHA256Hasher{}

	a := fr.NewElement(1)
	b := fr.NewElement(2)

	ab := h.Absorb([]fr.Element{a, b})
	ba := h.Absorb([]fr.Element{b, a})

	if ab.Equal(&ba) {
		t.Fatal("expected Absorb(a,b) != Absorb(b,a)")
	}
}

func TestPedersenHasherDeterministicAndOrderSensitive(t *testing.T) {
	h := NewPedersenHasher(2)

	a := fr.NewElement(5)
	b := fr.NewElement(9)

	out1 := h.Absorb([]fr.Element{a, b})
	out2 := h.Absorb([]fr.Element{a, b})

	if !out1.Equal(&out2) {
		t.Fatal("expected Absorb to be deterministic")
	}

	ba := h.Absorb([]fr.Element{b, a})
	if out1.Equal(&ba) {
		t.Fatal("expected Absorb(a,b) != Absorb(b,a)")
	}
}
