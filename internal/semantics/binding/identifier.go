package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Referral is what an identifier names. At most one field is set.
type Referral struct {
	Variable *symbols.Variable
	Type     *symbols.TypeSymbol
}

// IdentifierExpression reads a variable.
type IdentifierExpression struct {
	expression
	leaf
	Name     string
	Referral Referral
}

func (i *IdentifierExpression) resolve(sink diagnostics.Sink) {
	if v, ok := i.scope.ResolveVariable(i.Name); ok {
		i.Referral.Variable = v
		return
	}
	if ts, ok := i.scope.ResolveType(i.Name); ok {
		i.Referral.Type = ts
		return
	}
	sink.Add(diagnostics.UndefinedVariable(i.loc, i.Name))
}

func (i *IdentifierExpression) infer(sink diagnostics.Sink) {
	switch {
	case i.Referral.Variable != nil:
		i.typ = i.Referral.Variable.Type
	case i.Referral.Type != nil:
		sink.Add(diagnostics.TypeUsedAsValue(i.loc, i.Name))
	}
}

func (i *IdentifierExpression) validate(sink diagnostics.Sink) {
	v := i.Referral.Variable
	if v == nil {
		return
	}
	usage := i.Usage()
	if usage.Kind == effects.WriteTarget {
		return
	}

	state := i.scope.State(v)
	switch state.Initialized {
	case table.Not:
		sink.Add(diagnostics.UninitializedUse(i.loc, v.Name, false))
		return
	case table.Maybe:
		sink.Add(diagnostics.UninitializedUse(i.loc, v.Name, true))
		return
	}
	if state.Ended != nil {
		sink.Add(diagnostics.UseAfterLifetimeEnd(i.loc, state.Ended.Location, v.Name))
		return
	}

	if usage.Kind != effects.Capture || v.Type == nil {
		return
	}
	if v.Ownership == symbols.Borrowed && capturesBorrow(v.Type) {
		sink.Add(diagnostics.BorrowedValueCaptured(i.loc, v.Name))
		return
	}
	if v.Type.Mutability() == types.Exclusive && types.IsReferenceCounted(v.Type) {
		if i.scope.IsLoopBetween(v) {
			sink.Add(diagnostics.LifetimeEndInLoop(i.loc, v.Name))
		}
		i.scope.EndLifetime(v, i.loc, i)
	}
}

// capturesBorrow reports whether storing a borrowed value of type t would let
// it escape the borrow: shared heap objects that someone may still mutate.
func capturesBorrow(t types.Type) bool {
	return types.IsReferenceCounted(t) && t.Mutability() != types.Immutable
}

// ResultReferenceCounted is false: reading a variable does not take a count.
func (i *IdentifierExpression) ResultReferenceCounted() bool { return false }

func (i *IdentifierExpression) sideEffects(boundary effects.SideEffectBoundary) []effects.Violation {
	v := i.Referral.Variable
	if v == nil || i.Usage().Kind == effects.WriteTarget {
		return nil
	}
	if !boundary.IsOutside(v) || isConstant(v) {
		return nil
	}
	return []effects.Violation{{Kind: effects.ReadViolation, Location: i.loc, Variable: v}}
}
