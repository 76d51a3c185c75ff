// Package unification solves generic type parameters from the types of the
// values passed for them.
package unification

import (
	"strings"

	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Bounds constrain one type parameter within an inference attempt.
type Bounds struct {
	// Lower is nil while unconstrained (Nothing).
	Lower types.Type
	// Upper is nil while unconstrained (Any).
	Upper types.Type
	// Explicit bounds come from written type arguments.
	Explicit bool
}

func (b Bounds) String() string {
	lower, upper := "Nothing", "Any"
	if b.Lower != nil {
		lower = b.Lower.String()
	}
	if b.Upper != nil {
		upper = b.Upper.String()
	}
	return lower + " <: _ <: " + upper
}

// State is the immutable result of the unifications done so far. Every
// operation returns a new State.
type State struct {
	catalog *types.Catalog
	params  []*types.TypeParameter
	bounds  map[*types.TypeParameter]Bounds
}

// NewState starts inference for params. Upper bounds start at the declared bounds.
func NewState(catalog *types.Catalog, params []*types.TypeParameter) *State {
	s := &State{
		catalog: catalog,
		params:  params,
		bounds:  make(map[*types.TypeParameter]Bounds, len(params)),
	}
	for _, p := range params {
		s.bounds[p] = Bounds{Upper: p.Bound}
	}
	return s
}

func (s *State) with(p *types.TypeParameter, b Bounds) *State {
	bounds := make(map[*types.TypeParameter]Bounds, len(s.bounds))
	for k, v := range s.bounds {
		bounds[k] = v
	}
	bounds[p] = b
	return &State{catalog: s.catalog, params: s.params, bounds: bounds}
}

// WithExplicit seeds p with a written type argument.
func (s *State) WithExplicit(p *types.TypeParameter, arg types.Type) *State {
	return s.with(p, Bounds{Lower: arg, Upper: arg, Explicit: true})
}

// Parameters lists the variables being solved.
func (s *State) Parameters() []*types.TypeParameter {
	return s.params
}

// IsVariable reports whether p is solved by this state.
func (s *State) IsVariable(p *types.TypeParameter) bool {
	_, ok := s.bounds[p]
	return ok
}

// Bounds returns the current bounds of p.
func (s *State) Bounds(p *types.TypeParameter) Bounds {
	return s.bounds[p]
}

// Binding is the solution for p: the lower bound when constrained from below,
// the upper bound otherwise. A provisional integer literal takes the integer
// type of the upper bound if it fits, the default integer type otherwise.
func (s *State) Binding(p *types.TypeParameter) types.Type {
	b := s.bounds[p]
	if lit, ok := b.Lower.(*types.UntypedInteger); ok {
		if upper, ok := b.Upper.(*types.RootRef); ok && upper.Base.IsInteger() && upper.Base.Holds(lit.Value) {
			return upper.Base.Ref(types.Immutable)
		}
		return s.catalog.Finalize(lit)
	}
	switch {
	case b.Lower != nil:
		return b.Lower
	case b.Upper != nil:
		return b.Upper
	}
	return s.catalog.AnyRef()
}

// Bindings maps every variable to its solution.
func (s *State) Bindings() map[*types.TypeParameter]types.Type {
	result := make(map[*types.TypeParameter]types.Type, len(s.params))
	for _, p := range s.params {
		result[p] = s.Binding(p)
	}
	return result
}

// Instantiate substitutes the solutions into t.
func (s *State) Instantiate(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return types.Substitute(t, s.Bindings())
}

func (s *State) String() string {
	parts := make([]string, 0, len(s.params))
	for _, p := range s.params {
		parts = append(parts, p.Name+": "+s.bounds[p].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
