// Package ir defines the flat, addressable instruction sequence emitted by
// pkg/semantic and consumed by pkg/vm: a single data stack plus addressable
// memory and storage regions, closed over the instruction family of
// spec.md §3.6.
package ir

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/zinclang/zinc/pkg/source"
)

// Op tags the variant of an Instruction. One Instruction struct carries every
// operand shape; Op selects which fields are meaningful, mirroring the
// tagged-struct convention used throughout pkg/ast.
type Op uint

// The closed instruction set of spec.md §3.6, grouped by family.
const (
	// stack
	OpPush Op = iota
	OpPop
	OpCopy
	OpSlice

	// memory
	OpLoad
	OpStore
	OpLoadByIndex
	OpStoreByIndex

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg

	// bits
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr

	// comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// logic
	OpNot
	OpAnd
	OpOr
	OpXor

	// cast
	OpCast

	// control
	OpIf
	OpElse
	OpEndIf
	OpLoopBegin
	OpLoopEnd
	OpCall
	OpReturn

	// intrinsics
	OpLibraryCall
	OpRequire
	OpDbg

	// boundary
	OpInput
	OpOutput
	OpStorageLoad
	OpStorageStore
)

// LibraryID enumerates the closed set of standard-library routines
// dispatchable via OpLibraryCall (spec.md §4.3 "Intrinsics").
type LibraryID uint

// The standard-library call targets of spec.md's built-in scope.
const (
	LibCryptoSha256 LibraryID = iota
	LibCryptoPedersen
	LibCryptoSchnorrSignatureVerify
	LibConvertToBits
	LibConvertFromBitsUnsigned
	LibConvertFromBitsSigned
	LibConvertFromBitsField
	LibArrayReverse
	LibArrayTruncate
	LibArrayPad
	LibFfInvert
	LibCollectionsMTreeMapGet
	LibCollectionsMTreeMapContains
	LibCollectionsMTreeMapInsert
	LibCollectionsMTreeMapRemove
	LibContractFetch
	LibContractTransfer
)

// ScalarType is the IR-level type tag carried by Push/Input/Output/Cast: a
// size in field elements plus, for integers, a bitlength/signedness.
type ScalarType struct {
	Kind      ScalarKind
	Bitlength uint // meaningful when Kind == ScalarInteger
	IsSigned  bool // meaningful when Kind == ScalarInteger
	// Size is the number of field elements this scalar occupies once
	// flattened (1 for bool/integer/field; the product of element sizes for
	// composite types, whose shape the caller already knows from pkg/types).
	Size uint
}

// ScalarKind tags the IR-level representation family.
type ScalarKind uint

// The three representation families the VM's Value pair can carry.
const (
	ScalarBool ScalarKind = iota
	ScalarInteger
	ScalarField
)

// Instruction is one entry of the flat IR sequence. Every instruction
// carries the source.Location of the construct that emitted it, per
// spec.md §3.6 ("Each instruction carries its source Location").
type Instruction struct {
	Op  Op
	Loc source.Location

	// Push
	ConstantText string // preserves lexical form; parsed lazily against Type
	Type         ScalarType

	// memory / storage (Load, Store, LoadByIndex, StoreByIndex,
	// StorageLoad, StorageStore)
	Addr uint
	Size uint

	// Slice
	Offset uint

	// Cast
	TargetType ScalarType

	// control
	LoopCount uint // LoopBegin(n)
	CallAddr  uint // Call(addr, args_size)
	ArgsSize  uint // Call args_size / Return size

	// intrinsics
	Library  LibraryID
	DbgFmt   string
	DbgSizes []uint
}

// Program is the flat IR of one compiled entry point (a free function or a
// contract method), addressed by instruction index.
type Program struct {
	Name           string
	ParamTypes     []ScalarType
	ReturnType     ScalarType
	Body           []Instruction
	MemorySize     uint // number of memory slots this entry point's frame needs
	IsConstructor  bool

	// Contract is the owning contract's name, empty for a free function.
	// Selector is this method's 4-byte dispatch selector, valid only when
	// Contract is non-empty; see MethodSelector and vm.Dispatch.
	Contract string
	Selector uint32
}

// MethodSelector derives a contract method's 4-byte dispatch selector from
// its qualified "Contract::method" name, mirroring the Zinc VM's
// ContractMethod table: the first 4 bytes of the name's hash, big-endian.
// This is off-circuit dispatch metadata (like an ABI function selector), not
// a constraint-system value, so it uses a plain hash rather than the
// pluggable circuit Hasher.
func MethodSelector(qualifiedName string) uint32 {
	sum := sha256.Sum256([]byte(qualifiedName))
	return binary.BigEndian.Uint32(sum[:4])
}

// Unit is the compiled output of one compilation unit: every entry point, the
// resolved type table, and the contract storage layout (spec.md §6.2's
// `{version, entries, types, storage}` record).
type Unit struct {
	Entries []Program
	Types   []TypeEntry
	Storage []StorageEntry
	// Tests records `#[test]`-attributed entries for the test runner
	// (spec.md §4.3 item 7); it is tooling metadata, not consumed by pkg/vm.
	Tests []TestCase
}

// TestCase names one `#[test]`-attributed entry point, with its
// `#[should_panic]`/`#[ignore]` modifiers (spec.md §4.3 item 7).
type TestCase struct {
	Name        string
	EntryIndex  uint
	ShouldPanic bool
	Ignore      bool
}

// TypeEntry names a resolved type for use in diagnostics and the bytecode's
// type table.
type TypeEntry struct {
	Name string
	Type ScalarType
}

// StorageEntry is one `(name, type)` contract storage slot (spec.md §6.2).
type StorageEntry struct {
	Name string
	Type ScalarType
	Slot uint
}
