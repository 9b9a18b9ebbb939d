package cmd

import (
	"fmt"

	"github.com/zinclang/zinc/pkg/ir"
)

var opNames = map[ir.Op]string{
	ir.OpPush: "push", ir.OpPop: "pop", ir.OpCopy: "copy", ir.OpSlice: "slice",
	ir.OpLoad: "load", ir.OpStore: "store", ir.OpLoadByIndex: "load_idx", ir.OpStoreByIndex: "store_idx",
	ir.OpAdd: "add", ir.OpSub: "sub", ir.OpMul: "mul", ir.OpDiv: "div", ir.OpRem: "rem", ir.OpNeg: "neg",
	ir.OpBitAnd: "bit_and", ir.OpBitOr: "bit_or", ir.OpBitXor: "bit_xor", ir.OpBitNot: "bit_not",
	ir.OpShl: "shl", ir.OpShr: "shr",
	ir.OpEq: "eq", ir.OpNe: "ne", ir.OpLt: "lt", ir.OpLe: "le", ir.OpGt: "gt", ir.OpGe: "ge",
	ir.OpNot: "not", ir.OpAnd: "and", ir.OpOr: "or", ir.OpXor: "xor",
	ir.OpCast: "cast",
	ir.OpIf: "if", ir.OpElse: "else", ir.OpEndIf: "end_if",
	ir.OpLoopBegin: "loop_begin", ir.OpLoopEnd: "loop_end",
	ir.OpCall: "call", ir.OpReturn: "return",
	ir.OpLibraryCall: "library_call", ir.OpRequire: "require", ir.OpDbg: "dbg",
	ir.OpInput: "input", ir.OpOutput: "output",
	ir.OpStorageLoad: "storage_load", ir.OpStorageStore: "storage_store",
}

// disassembleOp formats one instruction for a build --ir listing, printing
// only the operand fields meaningful to its Op.
func disassembleOp(inst ir.Instruction) string {
	name := opNames[inst.Op]

	switch inst.Op {
	case ir.OpPush:
		return fmt.Sprintf("%s %s", name, inst.ConstantText)
	case ir.OpLoad, ir.OpStore, ir.OpLoadByIndex, ir.OpStoreByIndex, ir.OpStorageLoad, ir.OpStorageStore:
		return fmt.Sprintf("%s @%d", name, inst.Addr)
	case ir.OpSlice:
		return fmt.Sprintf("%s +%d", name, inst.Offset)
	case ir.OpCast:
		return fmt.Sprintf("%s -> %s", name, scalarKindName(inst.TargetType))
	case ir.OpLoopBegin:
		return fmt.Sprintf("%s x%d", name, inst.LoopCount)
	case ir.OpCall:
		return fmt.Sprintf("%s @%d (%d)", name, inst.CallAddr, inst.ArgsSize)
	case ir.OpReturn:
		return fmt.Sprintf("%s (%d)", name, inst.ArgsSize)
	case ir.OpLibraryCall:
		return fmt.Sprintf("%s #%d", name, inst.Library)
	case ir.OpDbg:
		return fmt.Sprintf("%s %q", name, inst.DbgFmt)
	default:
		return name
	}
}

func scalarKindName(t ir.ScalarType) string {
	switch t.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarField:
		return "field"
	default:
		if t.IsSigned {
			return fmt.Sprintf("i%d", t.Bitlength)
		}

		return fmt.Sprintf("u%d", t.Bitlength)
	}
}
