package semantic

import (
	"testing"

	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/parser"
	"github.com/zinclang/zinc/pkg/source"
)

// compile parses and analyzes src as a standalone compilation unit against a
// fresh registry, failing the test if either stage reports a diagnostic.
func compile(t *testing.T, src string) *ir.Unit {
	t.Helper()

	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(src))

	module, errs := parser.ParseModule(file, reg.Contents(file))
	if errs.HasErrors() {
		t.Fatalf("parse errors: %v", errs)
	}

	unit, errs := Analyze(module)
	if errs.HasErrors() {
		t.Fatalf("analysis errors: %v", errs)
	}

	return unit
}

// compileExpectError parses and analyzes src, requiring analysis to report
// at least one diagnostic (parse errors are still a hard failure: the test
// is meant to exercise a semantic, not syntax, rejection).
func compileExpectError(t *testing.T, src string) {
	t.Helper()

	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(src))

	module, errs := parser.ParseModule(file, reg.Contents(file))
	if errs.HasErrors() {
		t.Fatalf("parse errors: %v", errs)
	}

	_, errs = Analyze(module)
	if !errs.HasErrors() {
		t.Fatalf("expected a semantic error, got none")
	}
}

func entry(t *testing.T, unit *ir.Unit, name string) *ir.Program {
	t.Helper()

	for i := range unit.Entries {
		if unit.Entries[i].Name == name {
			return &unit.Entries[i]
		}
	}

	t.Fatalf("no entry point named %q", name)

	return nil
}

func countOps(prog *ir.Program, op ir.Op) int {
	n := 0

	for _, inst := range prog.Body {
		if inst.Op == op {
			n++
		}
	}

	return n
}

func TestMainEntryLowering(t *testing.T) {
	unit := compile(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)

	prog := entry(t, unit, "main")

	if len(prog.ParamTypes) != 2 {
		t.Fatalf("expected 2 params, got %d", len(prog.ParamTypes))
	}

	// main is a circuit boundary: each scalar parameter crosses via an
	// explicit Input/Store pair, and the tail expression's value leaves
	// through a matching Output rather than a subroutine's Return.
	if got := countOps(prog, ir.OpInput); got != 2 {
		t.Fatalf("expected 2 OpInput, got %d", got)
	}

	if got := countOps(prog, ir.OpOutput); got != 1 {
		t.Fatalf("expected 1 OpOutput, got %d", got)
	}

	if got := countOps(prog, ir.OpReturn); got != 0 {
		t.Fatalf("expected 0 OpReturn for an entry point, got %d", got)
	}

	if got := countOps(prog, ir.OpAdd); got != 1 {
		t.Fatalf("expected 1 OpAdd, got %d", got)
	}
}

func TestSubroutineUsesReturnNotOutput(t *testing.T) {
	unit := compile(t, `fn doubled(a: u8) -> u8 { let x = a + a; x }`)

	prog := entry(t, unit, "doubled")

	// An ordinary (non-main, non-contract-method) function is an internal
	// subroutine: its parameter crosses via pkg/vm's call()/ret() copying
	// the caller's stack values directly into the callee's frame, so there
	// is no Input/Output pair — only the let binding's own Store, and a
	// single trailing Return.
	if got := countOps(prog, ir.OpInput); got != 0 {
		t.Fatalf("expected 0 OpInput for a subroutine, got %d", got)
	}

	if got := countOps(prog, ir.OpStore); got != 1 {
		t.Fatalf("expected exactly 1 OpStore (the let binding), got %d", got)
	}

	if got := countOps(prog, ir.OpReturn); got != 1 {
		t.Fatalf("expected exactly 1 OpReturn, got %d", got)
	}

	if prog.MemorySize < 2 {
		t.Fatalf("expected at least 2 memory slots (param + let binding), got %d", prog.MemorySize)
	}
}

func TestForLoopUnrollsToLoopCount(t *testing.T) {
	unit := compile(t, `fn sum() -> u8 { let mut acc = 0; for i in 0..4 { acc = acc + 1; }; acc }`)

	prog := entry(t, unit, "sum")

	if got := countOps(prog, ir.OpLoopBegin); got != 1 {
		t.Fatalf("expected 1 OpLoopBegin, got %d", got)
	}

	for _, inst := range prog.Body {
		if inst.Op == ir.OpLoopBegin && inst.LoopCount != 4 {
			t.Fatalf("expected LoopCount 4, got %d", inst.LoopCount)
		}
	}

	// The body (`acc = acc + 1;`) is unrolled once per iteration: one Add
	// and at least one Store per copy.
	if got := countOps(prog, ir.OpAdd); got != 4 {
		t.Fatalf("expected 4 unrolled OpAdd, got %d", got)
	}
}

func TestContractMethodUsesStorageAndConstructor(t *testing.T) {
	src := `
contract Counter {
    count: u64,

    fn new() -> u64 {
        self.count
    }

    fn increment(by: u64) -> u64 {
        self.count = self.count + by;
        self.count
    }
}
`
	unit := compile(t, src)

	if len(unit.Storage) != 2 { // implicit address slot + declared field
		t.Fatalf("expected 2 storage entries, got %d", len(unit.Storage))
	}

	ctor := entry(t, unit, "new")
	if !ctor.IsConstructor {
		t.Fatal("expected fn new to be marked IsConstructor")
	}

	inc := entry(t, unit, "increment")
	if inc.IsConstructor {
		t.Fatal("increment must not be marked IsConstructor")
	}

	if got := countOps(inc, ir.OpStorageLoad); got == 0 {
		t.Fatal("expected increment to read self.count via OpStorageLoad")
	}

	if got := countOps(inc, ir.OpStorageStore); got == 0 {
		t.Fatal("expected increment to write self.count via OpStorageStore")
	}
}

func TestImmutableAssignmentIsRejected(t *testing.T) {
	compileExpectError(t, `fn f() -> u8 { let x = 1; x = 2; x }`)
}

func TestTypeMismatchInLetIsRejected(t *testing.T) {
	compileExpectError(t, `fn f() -> bool { let x: u8 = true; x == 0 }`)
}

func TestReturnTypeMismatchIsRejected(t *testing.T) {
	compileExpectError(t, `fn f() -> u8 { true }`)
}
