package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// VariableDeclaration declares a local or a global variable. The variable
// is visible in the scope after the declaration, not in its initializer.
type VariableDeclaration struct {
	nodeBase
	Variable *symbols.Variable
	// Initializer is nil when the variable is assigned later.
	Initializer Expression
	typeNode    syntax.TypeNode
	declared    types.Type
	out         *table.SymbolTable
}

func (d *VariableDeclaration) stmt() {}

// OutScope is the scope holding the variable.
func (d *VariableDeclaration) OutScope() *table.SymbolTable { return d.out }

func (d *VariableDeclaration) Children() []Node {
	if d.Initializer == nil {
		return nil
	}
	return []Node{d.Initializer}
}

func (d *VariableDeclaration) ThrowPrediction() effects.Prediction {
	if d.Initializer == nil {
		return effects.Never
	}
	return d.Initializer.ThrowPrediction()
}

func (d *VariableDeclaration) ReturnPrediction() effects.Prediction {
	if d.Initializer == nil {
		return effects.Never
	}
	return d.Initializer.ReturnPrediction()
}

func (d *VariableDeclaration) resolve(sink diagnostics.Sink) {
	if d.typeNode != nil {
		d.declared = resolveType(d.scope, d.typeNode, sink)
	}
	if d.Initializer != nil {
		Resolve(d.Initializer, sink)
	}
	if prev, err := d.out.DeclareVariable(d.Variable); err != nil {
		sink.Add(diagnostics.RedeclaredSymbol(d.loc, prev.Location, d.Variable.Name))
	}
}

func (d *VariableDeclaration) infer(sink diagnostics.Sink) {
	c := d.scope.Catalog()
	if d.Initializer == nil {
		d.Variable.Type = d.declared
		return
	}
	d.Initializer.SetExpectedType(d.declared)
	Infer(d.Initializer, sink)
	if d.typeNode != nil {
		checkAssignable(c, d.Initializer.Type(), d.declared, d.Initializer.Location(), cascade(d.Initializer, sink))
		d.Variable.Type = d.declared
		return
	}
	if t := d.Initializer.Type(); t != nil {
		d.Variable.Type = c.Finalize(t)
	}
}

func (d *VariableDeclaration) validate(sink diagnostics.Sink) {
	if d.Initializer == nil {
		return
	}
	d.Initializer.SetUsage(effects.CaptureAs(d.Variable.Type, d.loc))
	Validate(d.Initializer, sink)
	d.out.MarkInitialized(d.Variable)
}

// AssignmentTarget is the place an assignment stores to. Exactly one field
// is set.
type AssignmentTarget struct {
	Variable *IdentifierExpression
	Member   *MemberAccessExpression
	// Index invokes the set operator; the assigned value is its last argument.
	Index *InvocationExpression
}

// AssignmentStatement stores a value into a variable, a field or an element.
type AssignmentStatement struct {
	nodeBase
	Target AssignmentTarget
	Value  Expression
	// invalid is set when the written target is not a place
	invalid Expression
}

func (a *AssignmentStatement) stmt() {}

func (a *AssignmentStatement) Children() []Node {
	switch {
	case a.Target.Variable != nil:
		return []Node{a.Value, a.Target.Variable}
	case a.Target.Member != nil:
		return []Node{a.Target.Member, a.Value}
	case a.Target.Index != nil:
		return []Node{a.Target.Index}
	}
	return []Node{a.invalid, a.Value}
}

func (a *AssignmentStatement) ThrowPrediction() effects.Prediction {
	p := effects.Never
	for _, c := range a.Children() {
		p = effects.Seq(p, c.ThrowPrediction())
	}
	return p
}

func (a *AssignmentStatement) ReturnPrediction() effects.Prediction {
	p := effects.Never
	for _, c := range a.Children() {
		p = effects.Seq(p, c.ReturnPrediction())
	}
	return p
}

func (a *AssignmentStatement) resolve(sink diagnostics.Sink) {
	if a.invalid != nil {
		sink.Add(diagnostics.InvalidAssignmentTarget(a.invalid.Location()))
	}
	for _, c := range a.Children() {
		Resolve(c, sink)
	}
}

func (a *AssignmentStatement) infer(sink diagnostics.Sink) {
	var target Expression
	switch {
	case a.Target.Variable != nil:
		target = a.Target.Variable
	case a.Target.Member != nil:
		target = a.Target.Member
	case a.Target.Index != nil:
		Infer(a.Target.Index, sink)
		return
	default:
		target = a.invalid
	}
	Infer(target, sink)
	a.Value.SetExpectedType(target.Type())
	Infer(a.Value, sink)
	checkAssignable(a.scope.Catalog(), a.Value.Type(), target.Type(), a.Value.Location(), cascade(a.Value, sink))
}

func (a *AssignmentStatement) validate(sink diagnostics.Sink) {
	switch {
	case a.Target.Variable != nil:
		a.validateVariable(sink)
	case a.Target.Member != nil:
		a.validateMember(sink)
	case a.Target.Index != nil:
		Validate(a.Target.Index, sink)
	default:
		Validate(a.invalid, sink)
		Validate(a.Value, sink)
	}
}

func (a *AssignmentStatement) validateVariable(sink diagnostics.Sink) {
	ident := a.Target.Variable
	a.Value.SetUsage(effects.CaptureAs(ident.Type(), a.loc))
	Validate(a.Value, sink)
	Validate(ident, sink)

	v := ident.Referral.Variable
	if v == nil {
		return
	}
	if !v.Reassignable && (a.scope.State(v).Initialized != table.Not || a.scope.IsLoopBetween(v)) {
		sink.Add(diagnostics.ReassignFinal(ident.loc, v.Location, v.Name))
	}
	a.scope.MarkInitialized(v)
}

func (a *AssignmentStatement) validateMember(sink diagnostics.Sink) {
	member := a.Target.Member
	Validate(member, sink)
	a.Value.SetUsage(effects.CaptureAs(member.Type(), a.loc))
	Validate(a.Value, sink)

	if member.objectType == nil || member.Field == nil {
		return
	}
	if m := member.objectType.Mut; m != types.Mutable && m != types.Exclusive {
		sink.Add(diagnostics.MutabilityViolation(member.Object.Location(), member.objectType.String()))
	}
	if !member.Field.Reassignable {
		sink.Add(diagnostics.ReassignFinal(member.loc, member.Field.Location, member.Field.Name))
	}
}

func (a *AssignmentStatement) sideEffects(boundary effects.SideEffectBoundary) []effects.Violation {
	var v *symbols.Variable
	switch {
	case a.Target.Variable != nil:
		v = a.Target.Variable.Referral.Variable
	case a.Target.Member != nil:
		v = rootVariable(a.Target.Member.Object)
	case a.Target.Index != nil:
		v = rootVariable(a.Target.Index.Receiver)
	}
	if v == nil || !boundary.IsOutside(v) {
		return nil
	}
	return []effects.Violation{{Kind: effects.WriteViolation, Location: a.loc, Variable: v}}
}

// rootVariable finds the variable a chain of member and element accesses
// starts at, nil if it starts elsewhere.
func rootVariable(e Expression) *symbols.Variable {
	for {
		switch n := e.(type) {
		case *IdentifierExpression:
			return n.Referral.Variable
		case *MemberAccessExpression:
			e = n.Object
		case *IndexExpression:
			e = n.Object
		default:
			return nil
		}
	}
}
