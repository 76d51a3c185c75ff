// Package overload picks the function a call site invokes among all
// functions sharing its name.
package overload

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Environment is the lookup surface resolution needs.
type Environment interface {
	Catalog() *types.Catalog
	ResolveType(name string) (*symbols.TypeSymbol, bool)
	ResolveFunctions(name string) []*symbols.Function
	TypeSymbolOf(base *types.BaseType) (*symbols.TypeSymbol, bool)
}

// CallSite describes one invocation.
type CallSite struct {
	// Receiver is the type of the value left of the dot, nil without one.
	Receiver types.Type
	Name     string
	// Arguments holds one type per argument. A nil entry is an argument
	// whose type is unknown after an earlier error.
	Arguments []types.Type
	// ExplicitTypeArgs are written type arguments, nil when omitted.
	ExplicitTypeArgs []types.Type
	// Expected is the type the parent wants the result to have, nil if none.
	Expected types.Type
	Location *source.Location
	// ArgumentLocations parallels Arguments; entries may be nil.
	ArgumentLocations []*source.Location
}

// HasReceiver reports whether the call names a receiver.
func (cs *CallSite) HasReceiver() bool {
	return cs.Receiver != nil
}

// all returns the receiver followed by the arguments.
func (cs *CallSite) all() []types.Type {
	if cs.Receiver == nil {
		return cs.Arguments
	}
	return append([]types.Type{cs.Receiver}, cs.Arguments...)
}

func (cs *CallSite) argumentLocation(i int) *source.Location {
	if cs.Receiver != nil {
		i--
	}
	if i >= 0 && i < len(cs.ArgumentLocations) && cs.ArgumentLocations[i] != nil {
		return cs.ArgumentLocations[i]
	}
	return cs.Location
}

func (cs *CallSite) describeArguments() string {
	parts := make([]string, 0, len(cs.Arguments)+1)
	for _, a := range cs.all() {
		if a == nil {
			parts = append(parts, "?")
		} else {
			parts = append(parts, a.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Gather lists every function named like the call, in the order ties are
// broken: constructors and top-level functions without a receiver; members
// of the receiver type (own first, then inherited) and top-level functions
// with a receiver otherwise.
func Gather(env Environment, cs *CallSite) []*symbols.Function {
	var result []*symbols.Function
	if cs.Receiver == nil {
		if ts, ok := env.ResolveType(cs.Name); ok {
			result = append(result, ts.Constructors...)
		}
		return append(result, env.ResolveFunctions(cs.Name)...)
	}

	if base := receiverBase(env.Catalog(), cs.Receiver); base != nil {
		result = append(result, Members(env, base, cs.Name)...)
	}
	for _, fn := range env.ResolveFunctions(cs.Name) {
		if fn.Receiver != nil {
			result = append(result, fn)
		}
	}
	return result
}

func receiverBase(c *types.Catalog, t types.Type) *types.BaseType {
	switch r := c.Finalize(t).(type) {
	case *types.RootRef:
		return r.Base
	case *types.VariableRef:
		if bound, ok := r.UpperBound().(*types.RootRef); ok {
			return bound.Base
		}
		return c.Any
	}
	return nil
}

// Members lists the member functions named name that are visible on base:
// those it declares, then inherited ones it does not override.
func Members(env Environment, base *types.BaseType, name string) []*symbols.Function {
	return members(env, base, name, set.New[*types.BaseType](4))
}

func members(env Environment, base *types.BaseType, name string, visited *set.Set[*types.BaseType]) []*symbols.Function {
	if !visited.Insert(base) {
		return nil
	}
	var own []*symbols.Function
	if ts, ok := env.TypeSymbolOf(base); ok {
		own = ts.MembersNamed(name)
	}
	result := append([]*symbols.Function(nil), own...)
	for _, super := range base.Supertypes {
		for _, inherited := range members(env, super.Base, name, visited) {
			if containsFunction(result, inherited) || overridden(base, inherited, own) {
				continue
			}
			result = append(result, inherited)
		}
	}
	return result
}

func containsFunction(fns []*symbols.Function, fn *symbols.Function) bool {
	for _, f := range fns {
		if f == fn {
			return true
		}
	}
	return false
}

// Overrides reports whether fn, declared on base, overrides inherited.
func Overrides(base *types.BaseType, inherited, fn *symbols.Function) bool {
	return overridden(base, inherited, []*symbols.Function{fn})
}

// overridden reports whether one of own has the parameters of inherited as
// seen from base.
func overridden(base *types.BaseType, inherited *symbols.Function, own []*symbols.Function) bool {
	var bindings map[*types.TypeParameter]types.Type
	if inherited.DeclaringType != nil {
		if view := types.AsSupertype(base.SelfRef(types.ReadOnly), inherited.DeclaringType.Base); view != nil {
			bindings = types.Bind(view.Base.Parameters, view.Args)
		}
	}
	for _, o := range own {
		if len(o.Parameters) != len(inherited.Parameters) || (o.Receiver == nil) != (inherited.Receiver == nil) {
			continue
		}
		same := true
		for i, p := range inherited.Parameters {
			pt, ot := p.Type, o.Parameters[i].Type
			if pt == nil || ot == nil {
				continue
			}
			if bindings != nil {
				pt = types.Substitute(pt, bindings)
			}
			if !pt.Equals(ot) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// filter keeps the candidates whose receiver declaration and arity fit the call.
func filter(candidates []*symbols.Function, cs *CallSite) []*symbols.Function {
	arity := len(cs.Arguments)
	if cs.Receiver != nil {
		arity++
	}
	var result []*symbols.Function
	for _, fn := range candidates {
		if (fn.Receiver != nil) != cs.HasReceiver() {
			continue
		}
		if fn.Arity() != arity {
			continue
		}
		result = append(result, fn)
	}
	return result
}
