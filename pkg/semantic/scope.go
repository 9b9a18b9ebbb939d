package semantic

import (
	"github.com/zinclang/zinc/pkg/ast"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/semantic/consteval"
	"github.com/zinclang/zinc/pkg/types"
)

// ScopeID indexes into an Arena's flat slice of scopes, mirroring the
// teacher's ModuleScope tree (pkg/corset/scope.go) but flattened into an
// arena rather than linked via pointers, per spec.md §4.3's "arena-allocated
// scope tree" requirement.
type ScopeID int

// noScope is the sentinel for "no parent" (the root scope).
const noScope ScopeID = -1

// BindingKind tags what a name in scope refers to.
type BindingKind uint

// The categories of thing a scope entry can name.
const (
	BindingVariable BindingKind = iota
	BindingConst
	BindingFunction
	BindingStruct
	BindingEnum
	BindingEnumVariant
	BindingContract
	BindingModule
	BindingTypeAlias
	BindingLibrary
	BindingGenericParam
)

// Binding is one resolved scope entry. Only the fields relevant to Kind are
// populated, following the tagged-struct convention the rest of this module
// uses.
type Binding struct {
	Name string
	Kind BindingKind

	// BindingVariable / BindingConst
	Type      types.Type
	Mutable   bool
	Addr      uint
	ConstVal  consteval.Value
	IsConst   bool

	// BindingFunction
	EntryIndex uint
	ParamTypes []types.Type
	ReturnType types.Type

	// BindingEnumVariant
	EnumValue int64

	// BindingLibrary (std:: intrinsic)
	Library ir.LibraryID

	// BindingTypeAlias: `type Name<G...> = Target;` — resolved lazily,
	// against a substitution scope built from the call site's generic
	// arguments, since the alias body may itself reference the generic
	// parameters (spec.md §4.3 item 5).
	Generics []string
	AliasAST *ast.Type

	// BindingStruct / BindingContract: the field list, resolved once at
	// declaration time.
	Fields []types.StructField

	// BindingModule / BindingStruct / BindingEnum / BindingContract: the
	// nested scope holding this item's members (submodule items, enum
	// variants, impl-block associated functions).
	Child ScopeID
}

// scope is one node of the arena-allocated scope tree.
type scope struct {
	parent   ScopeID
	names    map[string]Binding
	order    []string
	children map[string]ScopeID
}

// orderedNames returns the names declared directly in this scope, in
// declaration order (used where order is semantically meaningful, e.g. an
// enum's implicit-discriminant variants).
func (s *scope) orderedNames() []string { return s.order }

// Arena owns every scope allocated for one compilation unit, plus a shared
// root populated once with the built-in/std-lib scope (spec.md §3.4:
// "Scopes form a tree rooted at the built-in scope").
type Arena struct {
	scopes []scope
	root   ScopeID
}

// NewArena constructs an arena whose root scope already has the
// built-in/std-lib bindings of spec.md §3.4 pre-populated.
func NewArena() *Arena {
	a := &Arena{}
	a.root = a.newScope(noScope)
	populateBuiltins(a, a.root)

	return a
}

// Root returns the arena's root (built-in) scope.
func (a *Arena) Root() ScopeID { return a.root }

func (a *Arena) newScope(parent ScopeID) ScopeID {
	a.scopes = append(a.scopes, scope{
		parent:   parent,
		names:    make(map[string]Binding),
		children: make(map[string]ScopeID),
	})

	return ScopeID(len(a.scopes) - 1)
}

// Push creates a new child scope of parent and returns its id.
func (a *Arena) Push(parent ScopeID) ScopeID {
	return a.newScope(parent)
}

// Declare binds name within scope. Returns false if name is already bound
// directly in this scope (shadowing an outer scope's binding is allowed;
// redeclaring within the same scope is not).
func (a *Arena) Declare(id ScopeID, b Binding) bool {
	s := &a.scopes[id]
	if _, exists := s.names[b.Name]; exists {
		return false
	}

	s.names[b.Name] = b
	s.order = append(s.order, b.Name)

	return true
}

// DeclareChild registers a named nested scope (a submodule, an enum's
// variant namespace, a struct/contract's associated-function namespace)
// reachable from id by stepping through a `::` path segment.
func (a *Arena) DeclareChild(id ScopeID, name string, child ScopeID) {
	a.scopes[id].children[name] = child
}

// Lookup resolves a single (unqualified) name by walking the scope chain
// from id up through its parents, stopping at the first match.
func (a *Arena) Lookup(id ScopeID, name string) (Binding, bool) {
	for cur := id; cur != noScope; cur = a.scopes[cur].parent {
		if b, ok := a.scopes[cur].names[name]; ok {
			return b, true
		}
	}

	return Binding{}, false
}

// Resolve steps through a qualified path (`a::b::c`), per spec.md §4.3 item
// 1: the first segment is resolved via the normal scope chain (Lookup);
// every subsequent segment steps into the previous segment's named child
// scope (a submodule, an enum's variants, a type's associated functions),
// without re-walking enclosing scopes.
func (a *Arena) Resolve(id ScopeID, path []string) (Binding, bool) {
	if len(path) == 0 {
		return Binding{}, false
	}

	b, ok := a.Lookup(id, path[0])
	if !ok {
		return Binding{}, false
	}

	for _, seg := range path[1:] {
		if b.Kind != BindingModule && b.Kind != BindingEnum && b.Kind != BindingStruct && b.Kind != BindingContract {
			return Binding{}, false
		}

		next, ok := a.scopes[b.Child].names[seg]
		if !ok {
			return Binding{}, false
		}

		b = next
	}

	return b, true
}
