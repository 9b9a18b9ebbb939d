package parser

import (
	"testing"

	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/source"
)

// parseOK parses src as a standalone file and fails the test on any
// diagnostic, returning the resulting module.
func parseOK(t *testing.T, src string) ast.Module {
	t.Helper()

	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(src))

	module, errs := ParseModule(file, reg.Contents(file))
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	return module
}

func parseExpectError(t *testing.T, src string) {
	t.Helper()

	reg := source.NewRegistry()
	file := reg.Register("test.zn", []rune(src))

	_, errs := ParseModule(file, reg.Contents(file))
	if !errs.HasErrors() {
		t.Fatalf("expected a parse error for %q, got none", src)
	}
}

func TestParseFnDecl(t *testing.T) {
	module := parseOK(t, `fn add(a: u8, b: u8) -> u8 { a + b }`)

	if len(module.Items) != 1 {
		t.Fatalf("expected 1 top-level item, got %d", len(module.Items))
	}

	fn := module.Items[0]
	if fn.Kind != ast.StmtFn {
		t.Fatalf("expected StmtFn, got %v", fn.Kind)
	}

	if fn.Name != "add" {
		t.Fatalf("expected name %q, got %q", "add", fn.Name)
	}

	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}

	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("unexpected param names: %+v", fn.Params)
	}

	if fn.ReturnType == nil {
		t.Fatal("expected a return type")
	}

	body := fn.FnBody
	if body == nil || body.OperandKind != ast.OperandBlock {
		t.Fatalf("expected fn body to be a block operand, got %+v", body)
	}

	if body.Tail == nil || body.Tail.Kind != ast.ExprKindOperator || body.Tail.Op != ast.OpAdd {
		t.Fatalf("expected tail expression a + b, got %+v", body.Tail)
	}
}

func TestParseLetDecl(t *testing.T) {
	module := parseOK(t, `fn f() -> u8 { let mut x: u8 = 1; x }`)

	block := module.Items[0].FnBody
	if len(block.Statements) != 1 {
		t.Fatalf("expected 1 statement in block, got %d", len(block.Statements))
	}

	let := block.Statements[0]
	if let.Kind != ast.StmtLet {
		t.Fatalf("expected StmtLet, got %v", let.Kind)
	}

	if !let.IsMutable {
		t.Fatal("expected IsMutable to be true")
	}

	if let.Name != "x" {
		t.Fatalf("expected name %q, got %q", "x", let.Name)
	}

	if let.DeclaredType == nil {
		t.Fatal("expected an explicit declared type")
	}

	if let.Value == nil {
		t.Fatal("expected a let value expression")
	}
}

func TestParseForRangeLoop(t *testing.T) {
	module := parseOK(t, `fn f() { for i in 0..4 { } }`)

	block := module.Items[0].FnBody
	loop := block.Statements[0]

	if loop.Kind != ast.StmtFor {
		t.Fatalf("expected StmtFor, got %v", loop.Kind)
	}

	if loop.LoopVar != "i" {
		t.Fatalf("expected loop variable %q, got %q", "i", loop.LoopVar)
	}

	if loop.RangeStart == nil || loop.RangeEnd == nil {
		t.Fatal("expected both RangeStart and RangeEnd to be set")
	}

	if loop.RangeIsArray {
		t.Fatal("a numeric range loop must not be marked RangeIsArray")
	}

	if loop.WhileCond != nil {
		t.Fatal("a for-range loop must not populate WhileCond")
	}
}

func TestParseForArraySugar(t *testing.T) {
	module := parseOK(t, `fn f() { let a = [1, 2, 3]; for x in a { } }`)

	loop := module.Items[0].FnBody.Statements[1]
	if loop.Kind != ast.StmtFor {
		t.Fatalf("expected StmtFor, got %v", loop.Kind)
	}

	if !loop.RangeIsArray {
		t.Fatal("expected RangeIsArray to be true for a for-in-array loop")
	}

	if loop.ArrayExpr == nil {
		t.Fatal("expected ArrayExpr to be populated")
	}

	if loop.RangeStart != nil || loop.RangeEnd != nil {
		t.Fatal("a for-array loop must not populate RangeStart/RangeEnd")
	}
}

func TestParseWhileLoopReusesStmtFor(t *testing.T) {
	module := parseOK(t, `fn f() { while true { } }`)

	loop := module.Items[0].FnBody.Statements[0]
	if loop.Kind != ast.StmtFor {
		t.Fatalf("expected StmtFor, got %v", loop.Kind)
	}

	if loop.WhileCond == nil {
		t.Fatal("expected WhileCond to be populated for a while loop")
	}

	if loop.RangeStart != nil || loop.RangeEnd != nil {
		t.Fatal("a while loop must not populate RangeStart/RangeEnd")
	}
}

func TestParseContractDecl(t *testing.T) {
	src := `
contract Counter {
    count: u64,

    fn increment(by: u64) -> u64 {
        self.count = self.count + by;
        self.count
    }
}
`
	module := parseOK(t, src)

	if len(module.Items) != 1 {
		t.Fatalf("expected 1 top-level item, got %d", len(module.Items))
	}

	c := module.Items[0]
	if c.Kind != ast.StmtContract {
		t.Fatalf("expected StmtContract, got %v", c.Kind)
	}

	if c.ContractName != "Counter" {
		t.Fatalf("expected contract name %q, got %q", "Counter", c.ContractName)
	}

	if len(c.ContractFields) != 1 || c.ContractFields[0].Name != "count" {
		t.Fatalf("unexpected contract fields: %+v", c.ContractFields)
	}

	if len(c.ContractMethods) != 1 || c.ContractMethods[0].Name != "increment" {
		t.Fatalf("unexpected contract methods: %+v", c.ContractMethods)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3): the root node is the lowest-
	// precedence operator, Add, with Mul nested under its right operand.
	module := parseOK(t, `fn f() -> u8 { 1 + 2 * 3 }`)

	tail := module.Items[0].FnBody.Tail
	if tail.Op != ast.OpAdd {
		t.Fatalf("expected root operator Add, got %v", tail.Op)
	}

	if tail.Right.Op != ast.OpMul {
		t.Fatalf("expected right-hand side Mul, got %v", tail.Right.Op)
	}
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	module := parseOK(t, `fn f() -> u8 { let a = [1, 2, 3]; a[0] }`)

	block := module.Items[0].FnBody
	let := block.Statements[0]

	if let.Value.OperandKind != ast.OperandArray {
		t.Fatalf("expected array literal, got %+v", let.Value)
	}

	if len(let.Value.Elements) != 3 {
		t.Fatalf("expected 3 array elements, got %d", len(let.Value.Elements))
	}

	index := block.Tail
	if index.Op != ast.OpIndex {
		t.Fatalf("expected OpIndex, got %v", index.Op)
	}
}

func TestParseMissingClosingBraceIsSyntaxError(t *testing.T) {
	parseExpectError(t, `fn f() -> u8 { 1 + 1`)
}

func TestParseMissingArrowReturnTypeIsSyntaxError(t *testing.T) {
	parseExpectError(t, `fn f() u8 { 1 }`)
}
