package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// MemberAccessExpression reads a field of an object.
type MemberAccessExpression struct {
	expression
	Object Expression
	Member string
	// Field is set in phase 2 when the member exists.
	Field *symbols.Field
	// objectType is the type of Object with nullability checked
	objectType *types.RootRef
}

func (m *MemberAccessExpression) Children() []Node { return []Node{m.Object} }

func (m *MemberAccessExpression) ThrowPrediction() effects.Prediction {
	return m.Object.ThrowPrediction()
}

func (m *MemberAccessExpression) ReturnPrediction() effects.Prediction {
	return m.Object.ReturnPrediction()
}

func (m *MemberAccessExpression) resolve(sink diagnostics.Sink) {
	Resolve(m.Object, sink)
}

func (m *MemberAccessExpression) infer(sink diagnostics.Sink) {
	Infer(m.Object, sink)
	ot := m.Object.Type()
	if ot == nil {
		return
	}
	if v, ok := ot.(*types.VariableRef); ok {
		ot = v.UpperBound()
	}
	ref, ok := ot.(*types.RootRef)
	if !ok {
		sink.Add(diagnostics.UndefinedMember(m.loc, ot.String(), m.Member))
		return
	}
	if ref.Nullable {
		sink.Add(diagnostics.TypeMismatch(m.Object.Location(), ref.String(), ref.WithNullability(false).String()))
		return
	}
	m.objectType = ref

	ts, ok := m.scope.TypeSymbolOf(ref.Base)
	if ok {
		m.Field, ok = ts.Field(m.Member)
	}
	if !ok {
		sink.Add(diagnostics.UndefinedMember(m.loc, ref.Base.Name, m.Member))
		return
	}
	if m.Field.Type == nil {
		return
	}
	ft := types.Substitute(m.Field.Type, types.Bind(ref.Base.Parameters, ref.Args))
	m.typ = ft.WithMutability(viewMutability(ref.Mut, ft.Mutability()))
}

// viewMutability is the mutability of a field as seen through a reference to
// its object: an immutable object has immutable fields, a readonly view only
// grants reading, and an exclusive field is shared once it is read.
func viewMutability(object, field types.Mutability) types.Mutability {
	switch {
	case object == types.Immutable || field == types.Immutable:
		return types.Immutable
	case object == types.ReadOnly || field == types.ReadOnly:
		return types.ReadOnly
	}
	return types.Mutable
}

func (m *MemberAccessExpression) validate(sink diagnostics.Sink) {
	Validate(m.Object, sink)
}

func (m *MemberAccessExpression) ResultReferenceCounted() bool { return false }
