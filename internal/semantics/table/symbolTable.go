package table

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/hashicorp/go-set/v3"

	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// ScopeKind describes why a scope was derived.
type ScopeKind int

const (
	ScopeUniverse ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
	ScopeBranch
	ScopeLoop
	// ScopeSequence is derived for a statement that introduces a declaration.
	ScopeSequence
	// ScopeJoin merges the effect histories of alternative branches.
	ScopeJoin
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUniverse:
		return "universe"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeBranch:
		return "branch"
	case ScopeLoop:
		return "loop"
	case ScopeSequence:
		return "sequence"
	case ScopeJoin:
		return "join"
	default:
		return "unknown"
	}
}

// SymbolTable is one lexical scope with a chain to parent scopes. Besides
// declarations it records the effect history of variables (initialization and
// lifetime ends) as seen at this point of the program.
//
// Derived tables never mutate their parent's declarations, so sibling branches
// do not observe each other.
type SymbolTable struct {
	parent *SymbolTable
	kind   ScopeKind
	root   *root

	variables map[string]*symbols.Variable
	declared  *set.Set[*symbols.Variable]
	types     map[string]*symbols.TypeSymbol
	generics  map[string]*types.TypeParameter
	functions map[string][]*symbols.Function

	function *symbols.Function
	loop     any

	events   []event
	branches []*SymbolTable
}

type root struct {
	seq     Sequencer
	byBase  map[*types.BaseType]*symbols.TypeSymbol
	catalog *types.Catalog
}

// NewSymbolTable creates a root scope for the given catalog.
func NewSymbolTable(catalog *types.Catalog) *SymbolTable {
	return newTable(nil, ScopeUniverse, &root{
		byBase:  make(map[*types.BaseType]*symbols.TypeSymbol),
		catalog: catalog,
	})
}

func newTable(parent *SymbolTable, kind ScopeKind, r *root) *SymbolTable {
	return &SymbolTable{
		parent:    parent,
		kind:      kind,
		root:      r,
		variables: make(map[string]*symbols.Variable),
		declared:  set.New[*symbols.Variable](0),
		types:     make(map[string]*symbols.TypeSymbol),
		generics:  make(map[string]*types.TypeParameter),
		functions: make(map[string][]*symbols.Function),
	}
}

// Kind returns the kind of this scope
func (st *SymbolTable) Kind() ScopeKind {
	return st.kind
}

// Parent returns the lexically enclosing scope
func (st *SymbolTable) Parent() *SymbolTable {
	return st.parent
}

// Catalog returns the intrinsic types visible from this scope
func (st *SymbolTable) Catalog() *types.Catalog {
	return st.root.catalog
}

// Derive creates a child scope.
func (st *SymbolTable) Derive(kind ScopeKind) *SymbolTable {
	return newTable(st, kind, st.root)
}

// DeriveFunction creates the scope of a function body.
func (st *SymbolTable) DeriveFunction(fn *symbols.Function) *SymbolTable {
	child := st.Derive(ScopeFunction)
	child.function = fn
	return child
}

// DeriveLoop creates the scope of a loop body. owner identifies the loop for
// break and continue.
func (st *SymbolTable) DeriveLoop(owner any) *SymbolTable {
	child := st.Derive(ScopeLoop)
	child.loop = owner
	return child
}

// Join creates a scope continuing st after control flow took exactly one of
// the given branches. Each branch must be derived from st (or be st itself).
// The effect histories of the branches are merged lazily on query.
func (st *SymbolTable) Join(branches ...*SymbolTable) *SymbolTable {
	child := st.Derive(ScopeJoin)
	child.branches = branches
	return child
}

// EnclosingFunction returns the innermost function whose body contains this scope.
func (st *SymbolTable) EnclosingFunction() *symbols.Function {
	for s := st; s != nil; s = s.parent {
		if s.kind == ScopeFunction {
			return s.function
		}
	}
	return nil
}

// EnclosingLoop returns the owner of the innermost loop within the current function.
func (st *SymbolTable) EnclosingLoop() (any, bool) {
	for s := st; s != nil && s.kind != ScopeFunction; s = s.parent {
		if s.kind == ScopeLoop {
			return s.loop, true
		}
	}
	return nil, false
}

// NextSeq hands out evaluation order ids, shared by all scopes of one root.
func (st *SymbolTable) NextSeq() uint32 {
	return st.root.seq.Next()
}

// DeclareVariable adds a variable to this scope. Shadowing a variable of the
// same function is an error; the previous declaration is returned.
func (st *SymbolTable) DeclareVariable(v *symbols.Variable) (*symbols.Variable, error) {
	for s := st; s != nil; s = s.parent {
		if prev, ok := s.variables[v.Name]; ok {
			return prev, fmt.Errorf("variable '%s' already declared", v.Name)
		}
		if s.kind == ScopeFunction || s.kind == ScopeModule {
			break
		}
	}
	if v.Owner == nil {
		v.Owner = st.EnclosingFunction()
	}
	st.variables[v.Name] = v
	st.declared.Insert(v)
	return nil, nil
}

// DeclareType adds a class or interface to this scope
func (st *SymbolTable) DeclareType(ts *symbols.TypeSymbol) error {
	if _, exists := st.types[ts.Base.Name]; exists {
		return fmt.Errorf("type '%s' already declared", ts.Base.Name)
	}
	st.types[ts.Base.Name] = ts
	st.root.byBase[ts.Base] = ts
	return nil
}

// DeclareTypeParameter makes a generic parameter visible in this scope
func (st *SymbolTable) DeclareTypeParameter(p *types.TypeParameter) error {
	if _, exists := st.generics[p.Name]; exists {
		return fmt.Errorf("type parameter '%s' already declared", p.Name)
	}
	st.generics[p.Name] = p
	return nil
}

// ResolveTypeParameter finds a generic parameter in this scope or parent scopes
func (st *SymbolTable) ResolveTypeParameter(name string) (*types.TypeParameter, bool) {
	for s := st; s != nil; s = s.parent {
		if p, ok := s.generics[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// DeclareFunction adds an overload to this scope
func (st *SymbolTable) DeclareFunction(fn *symbols.Function) {
	st.functions[fn.Name] = append(st.functions[fn.Name], fn)
}

// ResolveVariable finds a variable in this scope or parent scopes
func (st *SymbolTable) ResolveVariable(name string) (*symbols.Variable, bool) {
	for s := st; s != nil; s = s.parent {
		if v, ok := s.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// ResolveType finds a type in this scope or parent scopes
func (st *SymbolTable) ResolveType(name string) (*symbols.TypeSymbol, bool) {
	for s := st; s != nil; s = s.parent {
		if t, ok := s.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ResolveFunctions lists all top-level overloads of name, innermost scope
// first, each scope in declaration order.
func (st *SymbolTable) ResolveFunctions(name string) []*symbols.Function {
	var result []*symbols.Function
	for s := st; s != nil; s = s.parent {
		result = append(result, s.functions[name]...)
	}
	return result
}

// FunctionNames lists the names of top-level functions declared in this scope.
func (st *SymbolTable) FunctionNames() []string {
	names := make([]string, 0, len(st.functions))
	for name := range st.functions {
		names = append(names, name)
	}
	return names
}

// FunctionsNamed lists the overloads declared directly in this scope.
func (st *SymbolTable) FunctionsNamed(name string) []*symbols.Function {
	return st.functions[name]
}

// TypeSymbolOf finds the declaration of a base type, including intrinsic ones.
func (st *SymbolTable) TypeSymbolOf(base *types.BaseType) (*symbols.TypeSymbol, bool) {
	ts, ok := st.root.byBase[base]
	return ts, ok
}

// IsLoopBetween reports whether a loop scope lies between this scope and the
// scope declaring v. Code in such a loop may run more than once per lifetime of v.
func (st *SymbolTable) IsLoopBetween(v *symbols.Variable) bool {
	for s := st; s != nil; s = s.parent {
		if s.declared.Contains(v) {
			return false
		}
		if s.kind == ScopeLoop {
			return true
		}
	}
	return false
}

// Sequencer hands out increasing ids in evaluation order.
type Sequencer struct {
	next int
}

// Next returns the next id.
func (s *Sequencer) Next() uint32 {
	s.next++
	return safecast.MustConv[uint32](s.next)
}

func (st *SymbolTable) String() string {
	depth := 0
	for s := st.parent; s != nil; s = s.parent {
		depth++
	}
	return fmt.Sprintf("%s scope (depth %d)", st.kind, depth)
}
