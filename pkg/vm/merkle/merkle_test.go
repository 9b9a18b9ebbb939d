package merkle

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/hasher"
	"github.com/zinclang/zinc/pkg/vm/constraint"
)

func TestTreeSetGetRoundTrip(t *testing.T) {
	tree := NewTree(hasher.SHA256Hasher{}, 8)

	val := fr.NewElement(42)
	tree.Set(5, val)

	got := tree.Get(5)
	if !got.Equal(&val) {
		t.Fatalf("expected stored value to round-trip")
	}
}

func TestEmptyTreeRootIsDeterministic(t *testing.T) {
	t1 := NewTree(hasher.SHA256Hasher{}, 8)
	t2 := NewTree(hasher.SHA256Hasher{}, 8)

	r1 := t1.Root()
	r2 := t2.Root()

	if !r1.Equal(&r2) {
		t.Fatal("expected two empty trees of the same depth to share a root")
	}
}

func TestSetChangesRoot(t *testing.T) {
	tree := NewTree(hasher.SHA256Hasher{}, 8)
	before := tree.Root()

	tree.Set(3, fr.NewElement(7))
	after := tree.Root()

	if before.Equal(&after) {
		t.Fatal("expected writing a leaf to change the root")
	}
}

func TestVerifyPathAcceptsGenuineMembership(t *testing.T) {
	h := hasher.SHA256Hasher{}
	tree := NewTree(h, 8)

	leaf := fr.NewElement(99)
	root := tree.Set(12, leaf)

	path := tree.Path(12)

	sys := constraint.NewBuilder(constraint.ModeProve)
	rootVar := sys.AllocateInput(func() fr.Element { return root })

	if err := VerifyPath(sys, h, leaf, path, rootVar, root); err != nil {
		t.Fatalf("expected genuine membership path to verify, got %v", err)
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}

func TestVerifyPathRejectsWrongLeaf(t *testing.T) {
	h := hasher.SHA256Hasher{}
	tree := NewTree(h, 8)

	leaf := fr.NewElement(99)
	root := tree.Set(12, leaf)
	path := tree.Path(12)

	sys := constraint.NewBuilder(constraint.ModeProve)
	rootVar := sys.AllocateInput(func() fr.Element { return root })

	wrongLeaf := fr.NewElement(100)

	if err := VerifyPath(sys, h, wrongLeaf, path, rootVar, root); err == nil {
		t.Fatal("expected mismatched leaf to fail verification")
	}
}
