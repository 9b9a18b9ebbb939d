package semantic

import (
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/types"
)

// emit appends inst to the function currently being lowered.
func (an *Analyzer) emit(inst ir.Instruction) {
	an.fn.prog.Body = append(an.fn.prog.Body, inst)
}

// alloc bumps the current function's memory cursor by size slots and
// returns the base address, implementing the "allocate sizeof(T) slots at
// the next free memory address" rule of spec.md §4.3's `let` lowering.
func (an *Analyzer) alloc(size uint) uint {
	addr := an.fn.nextAddr
	an.fn.nextAddr += size

	if size == 0 {
		an.fn.nextAddr++
	}

	if an.fn.nextAddr > an.fn.prog.MemorySize {
		an.fn.prog.MemorySize = an.fn.nextAddr
	}

	return addr
}

// result is the outcome of analyzing one expression: its resolved type,
// whether it denotes an assignable place, and (for places) the memory
// address/size pair backing it, so assignment can emit a matching Store.
type result struct {
	Type    types.Type
	IsPlace bool
	Addr    uint
	// SelfField is set when the place is a contract's own storage field
	// (`self.field`), routing Store/Load through StorageStore/StorageLoad
	// instead of ordinary memory.
	SelfField string
	Mutable   bool
	BindName  string
	// HasIndex/IndexAddr are set for an array-index place (`a[i]`): Addr is
	// the array's base address, and IndexAddr names the memory temporary
	// holding the already-evaluated index, reloaded by storeTo after the
	// assignment's right-hand side so OpStoreByIndex sees (value, index).
	HasIndex  bool
	IndexAddr uint
}

func scalarTypeOf(t types.Type) ir.ScalarType { return scalarOf(t) }
