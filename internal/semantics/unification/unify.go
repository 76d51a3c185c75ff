package unification

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Unify constrains the variables of state so that a value of type src can
// be used where dst is required. Either side may mention the variables.
//
// A structural mismatch anywhere inside the types is reported once, for the
// whole pair. Variables whose bounds contradict each other are reported as
// unsatisfiable. Absent types (after earlier errors) unify with anything.
func Unify(src, dst types.Type, state *State, loc *source.Location) (*State, []*diagnostics.Diagnostic) {
	if src == nil || dst == nil {
		return state, nil
	}
	if !state.mentions(src) && !state.mentions(dst) {
		if src.Equals(dst) || types.IsAssignableTo(src, dst) {
			return state, nil
		}
		return state, []*diagnostics.Diagnostic{mismatch(src, dst, loc)}
	}

	u := &unifier{state: state, loc: loc}
	if !u.unify(src, dst) {
		u.diags = append([]*diagnostics.Diagnostic{mismatch(src, dst, loc)}, u.diags...)
	}
	return u.state, u.diags
}

func mismatch(src, dst types.Type, loc *source.Location) *diagnostics.Diagnostic {
	if lit, ok := src.(*types.UntypedInteger); ok {
		if ref, ok := dst.(*types.RootRef); ok && ref.Base.IsInteger() {
			return diagnostics.IntegerOutOfRange(loc, lit.Value.String(), ref.String())
		}
	}
	return diagnostics.TypeMismatch(loc, src.String(), dst.String())
}

func (s *State) mentions(t types.Type) bool {
	return types.ContainsVariables(t, s.params)
}

type unifier struct {
	state *State
	loc   *source.Location
	diags []*diagnostics.Diagnostic
}

// unify establishes sub <: super. It returns false on a structural mismatch.
func (u *unifier) unify(sub, super types.Type) bool {
	if v, ok := super.(*types.VariableRef); ok && u.state.IsVariable(v.Param) {
		return u.raiseLower(v, sub)
	}
	if v, ok := sub.(*types.VariableRef); ok && u.state.IsVariable(v.Param) {
		return u.lowerUpper(v, super)
	}
	if !u.state.mentions(sub) && !u.state.mentions(super) {
		return types.IsAssignableTo(sub, super)
	}

	subRef, ok := sub.(*types.RootRef)
	if !ok {
		if v, ok := sub.(*types.VariableRef); ok {
			bound := v.UpperBound()
			if bound == nil {
				bound = u.state.catalog.AnyRef().WithNullability(v.Nullable)
			}
			return u.unify(bound, super)
		}
		return false
	}
	superRef, ok := super.(*types.RootRef)
	if !ok {
		return false
	}

	if subRef.Nullable && !superRef.Nullable {
		return false
	}
	if subRef.Base.Kind == types.Bottom {
		return true
	}
	if !subRef.Base.ValueType && !subRef.Mut.IsAssignableTo(superRef.Mut) {
		return false
	}
	if superRef.Base.Kind == types.Top {
		return true
	}
	view := types.AsSupertype(subRef, superRef.Base)
	if view == nil {
		return false
	}

	result := true
	for i, p := range superRef.Base.Parameters {
		if i >= len(view.Args) || i >= len(superRef.Args) {
			break
		}
		a, b := view.Args[i], superRef.Args[i]
		switch p.Variance {
		case types.Out:
			result = u.unify(a, b) && result
		case types.In:
			result = u.unify(b, a) && result
		default:
			result = u.unify(a, b) && result
			result = u.unify(b, a) && result
		}
	}
	return result
}

// raiseLower handles sub <: v: the lower bound of v grows to include sub.
// An untyped integer stays provisional until Binding picks its width.
func (u *unifier) raiseLower(v *types.VariableRef, sub types.Type) bool {
	if ref, ok := sub.(*types.RootRef); ok && ref.Base.Kind == types.Bottom {
		return !ref.Nullable || v.Nullable
	}
	if v.Nullable {
		sub = sub.WithNullability(false)
	}

	p := v.Param
	b := u.state.Bounds(p)
	_, untyped := sub.(*types.UntypedInteger)
	switch {
	case b.Lower == nil:
		b.Lower = sub
	case untyped && types.IsAssignableTo(sub, b.Lower):
	default:
		b.Lower = u.state.catalog.CommonSupertype(b.Lower, sub)
	}
	u.state = u.state.with(p, b)
	u.check(p)
	return true
}

// lowerUpper handles v <: super: the upper bound of v shrinks to fit super.
func (u *unifier) lowerUpper(v *types.VariableRef, super types.Type) bool {
	if v.Nullable && !super.IsNullable() {
		return false
	}
	if ref, ok := super.(*types.RootRef); ok && ref.Base.Kind == types.Top {
		return true
	}
	target := super
	if v.Nullable {
		target = super.WithNullability(false)
	}

	p := v.Param
	b := u.state.Bounds(p)
	switch {
	case b.Upper == nil:
		b.Upper = target
	case types.IsAssignableTo(target, b.Upper):
		b.Upper = target
	case types.IsAssignableTo(b.Upper, target):
	default:
		u.diags = append(u.diags, diagnostics.UnsatisfiableConstraints(u.loc, p.Name, lowerName(b), b.Upper.String()+" and "+target.String()))
		return true
	}
	u.state = u.state.with(p, b)
	u.check(p)
	return true
}

func (u *unifier) check(p *types.TypeParameter) {
	b := u.state.Bounds(p)
	if b.Lower == nil || b.Upper == nil {
		return
	}
	if !types.IsAssignableTo(b.Lower, b.Upper) {
		u.diags = append(u.diags, diagnostics.UnsatisfiableConstraints(u.loc, p.Name, b.Lower.String(), b.Upper.String()))
	}
}

func lowerName(b Bounds) string {
	if b.Lower == nil {
		return "Nothing"
	}
	return b.Lower.String()
}
