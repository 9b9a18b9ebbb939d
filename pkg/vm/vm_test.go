package vm

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zinclang/zinc/pkg/hasher"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/source"
	"github.com/zinclang/zinc/pkg/vm/constraint"
)

var u8 = ir.ScalarType{Kind: ir.ScalarInteger, Bitlength: 8}

// add(a: u8, b: u8) -> u8 { a + b }
func TestAddEntryPoint(t *testing.T) {
	prog := ir.Program{
		Name:       "add",
		MemorySize: 2,
		Body: []ir.Instruction{
			{Op: ir.OpInput, Type: u8},
			{Op: ir.OpInput, Type: u8},
			{Op: ir.OpAdd, Type: u8},
			{Op: ir.OpOutput},
		},
	}

	sys := constraint.NewBuilder(constraint.ModeProve)
	m := New(sys, hasher.SHA256Hasher{}, nil, &ir.Unit{Entries: []ir.Program{prog}})

	out, err := m.Run("add", []fr.Element{fr.NewElement(3), fr.NewElement(4)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 output, got %d", len(out))
	}

	seven := fr.NewElement(7)
	if !out[0].Equal(&seven) {
		t.Fatalf("expected 3+4=7, got %s", out[0].String())
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}

// overflow(a: u8) -> u8 { a + 1 }, called with a = 255 must fail Check.
func TestAddOverflowFailsCheck(t *testing.T) {
	prog := ir.Program{
		Name:       "overflow",
		MemorySize: 1,
		Body: []ir.Instruction{
			{Op: ir.OpInput, Type: u8},
			{Op: ir.OpPush, ConstantText: "1", Type: u8},
			{Op: ir.OpAdd, Type: u8},
			{Op: ir.OpOutput},
		},
	}

	sys := constraint.NewBuilder(constraint.ModeProve)
	m := New(sys, hasher.SHA256Hasher{}, nil, &ir.Unit{Entries: []ir.Program{prog}})

	_, err := m.Run("overflow", []fr.Element{fr.NewElement(255)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := sys.Check(); err == nil {
		t.Fatal("expected 255+1 to fail the u8 overflow range check")
	}
}

// select(cond: bool, a: u8) -> u8 { mem[0] = a; if cond { mem[0] = 99 }; mem[0] }
func TestConditionalStoreBlending(t *testing.T) {
	boolType := ir.ScalarType{Kind: ir.ScalarBool, Bitlength: 1}

	prog := ir.Program{
		Name:       "select",
		MemorySize: 2,
		Body: []ir.Instruction{
			{Op: ir.OpInput, Type: boolType}, // stack: [cond]
			{Op: ir.OpInput, Type: u8},       // stack: [cond, a]
			{Op: ir.OpStore, Addr: 1},        // mem[1] = a; stack: [cond]
			{Op: ir.OpLoad, Addr: 1},         // stack: [cond, a]
			{Op: ir.OpStore, Addr: 0},        // mem[0] = a (result slot); stack: [cond]
			{Op: ir.OpIf},                    // pops cond, pushes mask
			{Op: ir.OpPush, ConstantText: "99", Type: u8},
			{Op: ir.OpStore, Addr: 0},
			{Op: ir.OpEndIf},
			{Op: ir.OpLoad, Addr: 0},
			{Op: ir.OpOutput},
		},
	}

	sys := constraint.NewBuilder(constraint.ModeProve)
	m := New(sys, hasher.SHA256Hasher{}, nil, &ir.Unit{Entries: []ir.Program{prog}})

	out, err := m.Run("select", []fr.Element{fr.One(), fr.NewElement(5)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	ninetyNine := fr.NewElement(99)
	if !out[0].Equal(&ninetyNine) {
		t.Fatalf("expected branch taken to store 99, got %s", out[0].String())
	}

	if err := sys.Check(); err != nil {
		t.Fatalf("expected satisfied constraints, got %v", err)
	}
}

func TestRequireFalseIsRuntimeError(t *testing.T) {
	prog := ir.Program{
		Name:       "requireFalse",
		MemorySize: 0,
		Body: []ir.Instruction{
			{Op: ir.OpPush, ConstantText: "0", Type: ir.ScalarType{Kind: ir.ScalarBool}, Loc: source.Location{}},
			{Op: ir.OpRequire},
		},
	}

	sys := constraint.NewBuilder(constraint.ModeProve)
	m := New(sys, hasher.SHA256Hasher{}, nil, &ir.Unit{Entries: []ir.Program{prog}})

	if _, err := m.Run("requireFalse", nil); err == nil {
		t.Fatal("expected require(false) to produce a runtime error")
	}
}
