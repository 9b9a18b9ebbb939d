// Package hasher implements the abstract hasher interface of spec.md §6.4,
// used by pkg/vm's Merkle-tree-backed contract storage: a fixed-arity
// `Absorb(fields) -> field` contract with a SHA-256 default and a Pedersen
// alternative, selected as a compile-time parameter of the circuit.
package hasher

import (
	"crypto/sha256"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Hasher absorbs a fixed-arity slice of field elements and returns a single
// field element, the two-child-to-parent step of the Merkle tree pkg/vm's
// contract storage is backed by (spec.md §9 "Merkle-tree storage generics":
// "arity is fixed per hasher, so the Merkle tree is a binary tree of
// arity-2 hashers").
type Hasher interface {
	// Arity is the number of field elements Absorb expects.
	Arity() int
	// Absorb combines exactly Arity() field elements into one.
	Absorb(fields []fr.Element) fr.Element
}

// SHA256Hasher is the default hasher of spec.md §6.4: SHA-256 over the
// canonical little-endian serialisation of the field elements, reduced back
// into the scalar field.
type SHA256Hasher struct{}

// Arity implements Hasher.
func (SHA256Hasher) Arity() int { return 2 }

// Absorb implements Hasher.
func (SHA256Hasher) Absorb(fields []fr.Element) fr.Element {
	h := sha256.New()

	for _, f := range fields {
		b := f.Bytes() // big-endian canonical form
		reversed := make([]byte, len(b))

		for i, c := range b {
			reversed[len(b)-1-i] = c
		}

		h.Write(reversed)
	}

	digest := h.Sum(nil)

	var out fr.Element
	out.SetBigInt(new(big.Int).SetBytes(digest))

	return out
}

// PedersenHasher hashes by summing each input scaled onto a fixed
// generator point and reducing the resulting point's x-coordinate back into
// the scalar field — a Pedersen-style commitment over the bn254 G1 group,
// the alternative construction spec.md §6.4 names.
type PedersenHasher struct {
	generators []bn254.G1Affine
}

// NewPedersenHasher derives `arity` independent generator points by scalar
// multiplication of the canonical generator by a fixed distinguishing
// exponent, so the construction needs no trusted setup beyond the curve
// itself.
func NewPedersenHasher(arity int) *PedersenHasher {
	_, _, g1gen, _ := bn254.Generators()

	gens := make([]bn254.G1Affine, arity)

	for i := 0; i < arity; i++ {
		var scalar big.Int
		scalar.SetInt64(int64(i + 2))

		var p bn254.G1Jac
		p.ScalarMultiplication(&g1gen, &scalar)

		var affine bn254.G1Affine
		affine.FromJacobian(&p)
		gens[i] = affine
	}

	return &PedersenHasher{generators: gens}
}

// Arity implements Hasher.
func (p *PedersenHasher) Arity() int { return len(p.generators) }

// Absorb implements Hasher.
func (p *PedersenHasher) Absorb(fields []fr.Element) fr.Element {
	var acc bn254.G1Jac

	for i, f := range fields {
		var scalar big.Int
		f.BigInt(&scalar)

		var term bn254.G1Jac
		term.ScalarMultiplication(&p.generators[i], &scalar)
		acc.AddAssign(&term)
	}

	var affine bn254.G1Affine
	affine.FromJacobian(&acc)

	var out fr.Element
	out.SetBigInt(affine.X.BigInt(new(big.Int)))

	return out
}
