package overload

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

type setKey struct {
	name  string
	arity int
}

// Set is the overloads sharing a name and an arity, in declaration order.
type Set struct {
	Name      string
	Arity     int
	Functions []*symbols.Function
}

// Group splits functions into overload sets, ordered by first declaration.
func Group(functions []*symbols.Function) []*Set {
	var result []*Set
	index := make(map[setKey]*Set)
	for _, fn := range functions {
		key := setKey{fn.Name, fn.Arity()}
		s, ok := index[key]
		if !ok {
			s = &Set{Name: fn.Name, Arity: key.arity}
			index[key] = s
			result = append(result, s)
		}
		s.Functions = append(s.Functions, fn)
	}
	return result
}

// Disjoint reports whether some parameter position tells a and b apart.
func Disjoint(a, b *symbols.Function) bool {
	pa, pb := a.AllParameters(), b.AllParameters()
	if len(pa) != len(pb) {
		return true
	}
	for i := range pa {
		if pa[i].Type == nil || pb[i].Type == nil {
			// unknown after an earlier error
			return true
		}
		if types.IsDisjoint(pa[i].Type, pb[i].Type) {
			return true
		}
	}
	return false
}

// ValidateSet reports an overload set mixing receiver declarations and the
// first pair of overloads that are not disjoint. Each set is reported at most
// once for each problem.
func ValidateSet(s *Set, sink diagnostics.Sink) bool {
	ok := true
	first := s.Functions[0]
	for _, fn := range s.Functions[1:] {
		if (fn.Receiver != nil) != (first.Receiver != nil) {
			sink.Add(diagnostics.InconsistentReceiver(fn.Location, s.Name))
			ok = false
			break
		}
	}
	for i, a := range s.Functions {
		for _, b := range s.Functions[i+1:] {
			if !Disjoint(a, b) {
				sink.Add(diagnostics.OverloadSetNotDisjoint(b.Location, a.Location, s.Name, s.Arity))
				return false
			}
		}
	}
	return ok
}

// ValidateFunctions checks every overload set formed by functions.
func ValidateFunctions(functions []*symbols.Function, sink diagnostics.Sink) bool {
	ok := true
	for _, s := range Group(functions) {
		if !ValidateSet(s, sink) {
			ok = false
		}
	}
	return ok
}

// ValidateType checks the member overload sets of ts. Conflicts among the
// members ts declares are reported at the members. Conflicts that involve
// inherited members are reported once per set at ts, naming the smallest
// group of direct supertypes whose members cause them.
func ValidateType(env Environment, ts *symbols.TypeSymbol, sink diagnostics.Sink) bool {
	ok := ValidateFunctions(ts.Members, sink)

	seen := set.New[string](len(ts.Members))
	var names []string
	collect := func(fns []*symbols.Function) {
		for _, fn := range fns {
			if seen.Insert(fn.Name) {
				names = append(names, fn.Name)
			}
		}
	}
	collect(ts.Members)
	for _, super := range ts.Base.Supertypes {
		for _, n := range inheritedNames(env, super.Base) {
			if seen.Insert(n) {
				names = append(names, n)
			}
		}
	}

	for _, name := range names {
		visible := Members(env, ts.Base, name)
		origins := originsOf(env, ts, name)
		for _, s := range Group(visible) {
			culprits := attribute(s.Functions, origins)
			if culprits == nil {
				continue
			}
			sink.Add(diagnostics.AmbiguousInheritedOverload(ts.Location, ts.Base.Name, name, culprits))
			ok = false
		}
	}
	return ok
}

func inheritedNames(env Environment, base *types.BaseType) []string {
	visited := set.New[*types.BaseType](4)
	var names []string
	var walk func(b *types.BaseType)
	walk = func(b *types.BaseType) {
		if !visited.Insert(b) {
			return
		}
		if ts, ok := env.TypeSymbolOf(b); ok {
			for _, m := range ts.Members {
				names = append(names, m.Name)
			}
		}
		for _, s := range b.Supertypes {
			walk(s.Base)
		}
	}
	walk(base)
	return names
}

// originsOf maps every inherited member named name to the direct supertypes
// of ts it is inherited through.
func originsOf(env Environment, ts *symbols.TypeSymbol, name string) map[*symbols.Function]*set.Set[*types.BaseType] {
	origins := make(map[*symbols.Function]*set.Set[*types.BaseType])
	for _, super := range ts.Base.Supertypes {
		for _, fn := range Members(env, super.Base, name) {
			if origins[fn] == nil {
				origins[fn] = set.New[*types.BaseType](2)
			}
			origins[fn].Insert(super.Base)
		}
	}
	return origins
}

// attribute returns the names of the smallest set of direct supertypes whose
// removal makes the conflicts among fns that involve inherited members go
// away, or nil when there are none.
func attribute(fns []*symbols.Function, origins map[*symbols.Function]*set.Set[*types.BaseType]) []string {
	type conflict struct{ a, b *symbols.Function }
	var conflicts []conflict
	contributors := set.New[*types.BaseType](4)
	for i, a := range fns {
		for _, b := range fns[i+1:] {
			if origins[a] == nil && origins[b] == nil {
				// both declared by the type itself, reported at the members
				continue
			}
			if Disjoint(a, b) {
				continue
			}
			conflicts = append(conflicts, conflict{a, b})
			for _, f := range []*symbols.Function{a, b} {
				if o := origins[f]; o != nil {
					contributors.InsertSet(o)
				}
			}
		}
	}
	if len(conflicts) == 0 {
		return nil
	}

	candidates := contributors.Slice()
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	// removing a supertype drops a member only if it is not inherited through
	// another remaining supertype
	resolves := func(removed *set.Set[*types.BaseType]) bool {
		gone := func(f *symbols.Function) bool {
			o := origins[f]
			return o != nil && removed.Subset(o)
		}
		for _, c := range conflicts {
			if !gone(c.a) && !gone(c.b) {
				return false
			}
		}
		return true
	}

	for size := 1; size <= len(candidates); size++ {
		if found := smallestSubset(candidates, size, resolves); found != nil {
			return found
		}
	}
	return baseNames(candidates)
}

func smallestSubset(candidates []*types.BaseType, size int, resolves func(*set.Set[*types.BaseType]) bool) []string {
	chosen := make([]*types.BaseType, 0, size)
	var search func(start int) []string
	search = func(start int) []string {
		if len(chosen) == size {
			if resolves(set.From(chosen)) {
				return baseNames(chosen)
			}
			return nil
		}
		for i := start; i < len(candidates); i++ {
			chosen = append(chosen, candidates[i])
			if found := search(i + 1); found != nil {
				return found
			}
			chosen = chosen[:len(chosen)-1]
		}
		return nil
	}
	return search(0)
}

func baseNames(bases []*types.BaseType) []string {
	result := make([]string, len(bases))
	for i, b := range bases {
		result[i] = b.Name
	}
	return result
}
