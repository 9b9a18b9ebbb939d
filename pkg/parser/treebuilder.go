// Package parser implements the recursive-descent parser of spec.md §4.2: a
// family of sub-parsers, one per grammar production, written as methods on
// one Parser that share its look-ahead buffer over a lexer.Stream and each
// return `(node, *errors.Diagnostic)`. No unconsumed token is passed between
// sub-parsers, apart from the split-`>>` remainder that
// closeGenericArgumentList stashes in p.pending.
// Modeled on the teacher's pkg/zkc/compiler/parser/parser.go (lookahead-
// dispatch-on-keyword shape) and on original_source/zinc-compiler's
// expression precedence cascade.
package parser

import "github.com/zinclang/zinc/pkg/ast"

// ExpressionTreeBuilder accumulates a left-associative expression tree one
// operator at a time, as described in spec.md §3.5/§4.2: "The tree builder's
// eat_operator(op) rotates the current tree into the left subtree of a new
// node with op as value — a standard shunting-yard transposition —
// guaranteeing left-associativity by default."
type ExpressionTreeBuilder struct {
	tree *ast.Expression
}

// NewExpressionTreeBuilder seeds the builder with the first operand parsed
// at a given precedence level.
func NewExpressionTreeBuilder(first ast.Expression) *ExpressionTreeBuilder {
	return &ExpressionTreeBuilder{tree: &first}
}

// EatOperator rotates the accumulated tree into the left subtree of a new
// node with op at the root and right as the new right subtree. Because this
// always attaches the existing (possibly already-built) tree as Left, chains
// of same-precedence operators associate left-to-right without any separate
// post-pass over the tree.
func (b *ExpressionTreeBuilder) EatOperator(op ast.Operator, right ast.Expression) {
	left := b.tree
	b.tree = &ast.Expression{
		Loc:   left.Loc,
		Kind:  ast.ExprKindOperator,
		Op:    op,
		Left:  left,
		Right: &right,
	}
}

// Tree returns the accumulated expression tree.
func (b *ExpressionTreeBuilder) Tree() ast.Expression {
	return *b.tree
}
