package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/overload"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// ClassDeclaration binds a class or an interface. Classes are final; only
// interfaces can be supertypes.
type ClassDeclaration struct {
	nodeBase
	Symbol    *symbols.TypeSymbol
	Variables []*MemberVariable
	Members   []*FunctionDeclaration

	syntax     *syntax.ClassDeclaration
	classScope *table.SymbolTable
}

func newClassDeclaration(b *Binder, scope *table.SymbolTable, syn *syntax.ClassDeclaration) *ClassDeclaration {
	base := &types.BaseType{Name: syn.Name, Kind: types.Class, Location: syn.Loc()}
	if syn.Interface {
		base.Kind = types.Interface
	}
	for _, tp := range syn.TypeParameters {
		base.Parameters = append(base.Parameters, newTypeParameter(tp))
	}

	c := &ClassDeclaration{
		nodeBase:   newNodeBase(b, scope, syn.Loc()),
		Symbol:     &symbols.TypeSymbol{Base: base, Location: syn.Loc()},
		syntax:     syn,
		classScope: scope.Derive(table.ScopeBlock),
	}
	for _, f := range syn.Fields {
		c.Variables = append(c.Variables, newMemberVariable(b, c.classScope, f, syn.Name))
	}
	for _, m := range syn.Members {
		c.Members = append(c.Members, newFunctionDeclaration(b, c.classScope, m, c))
	}
	return c
}

// declare makes the type visible to the whole unit. It runs before any
// declaration resolves.
func (c *ClassDeclaration) declare(sink diagnostics.Sink) {
	if err := c.scope.DeclareType(c.Symbol); err != nil {
		prev, _ := c.scope.ResolveType(c.Symbol.Base.Name)
		sink.Add(diagnostics.RedeclaredSymbol(c.loc, prev.Location, c.Symbol.Base.Name))
	}
}

// resolveHeader resolves type parameter bounds and supertypes. It runs once
// all types of the unit are declared.
func (c *ClassDeclaration) resolveHeader(sink diagnostics.Sink) {
	base := c.Symbol.Base
	declareTypeParameters(c.classScope, base.Parameters, c.syntax.TypeParameters, sink)
	for _, st := range c.syntax.Supertypes {
		ref, ok := resolveType(c.classScope, st, sink).(*types.RootRef)
		if !ok {
			continue
		}
		if ref.Base.Kind != types.Interface {
			sink.Add(diagnostics.ClassAsSupertype(st.Loc(), ref.Base.Name))
			continue
		}
		base.Supertypes = append(base.Supertypes, ref)
	}
}

func (c *ClassDeclaration) Children() []Node {
	nodes := make([]Node, 0, len(c.Variables)+len(c.Members))
	for _, v := range c.Variables {
		nodes = append(nodes, v)
	}
	for _, m := range c.Members {
		nodes = append(nodes, m)
	}
	return nodes
}

func (c *ClassDeclaration) ThrowPrediction() effects.Prediction  { return effects.Never }
func (c *ClassDeclaration) ReturnPrediction() effects.Prediction { return effects.Never }

func (c *ClassDeclaration) resolve(sink diagnostics.Sink) {
	ts := c.Symbol
	for _, v := range c.Variables {
		Resolve(v, sink)
		if prev, exists := ts.Field(v.Field.Name); exists {
			sink.Add(diagnostics.RedeclaredSymbol(v.loc, prev.Location, v.Field.Name))
			continue
		}
		ts.Fields = append(ts.Fields, v.Field)
	}
	for _, m := range c.Members {
		Resolve(m, sink)
		if ts.Base.Kind == types.Interface {
			m.Function.Virtual = true
		}
		ts.AddMember(m.Function)
	}
	if ts.Base.Kind == types.Class {
		ts.Constructors = []*symbols.Function{c.constructor()}
	}
}

// constructor takes the fields without initializer in declaration order and
// returns the only reference to the new object.
func (c *ClassDeclaration) constructor() *symbols.Function {
	ts := c.Symbol
	ctor := &symbols.Function{
		Name:          ts.Base.Name,
		ReturnType:    ts.Base.SelfRef(types.Exclusive),
		Purity:        symbols.Pure,
		Nothrow:       true,
		Constructor:   true,
		DeclaringType: ts,
		Location:      ts.Location,
	}
	for _, f := range ts.Fields {
		if f.HasInitializer {
			continue
		}
		ctor.Parameters = append(ctor.Parameters, &symbols.Variable{
			Name:      f.Name,
			Kind:      symbols.SymbolParameter,
			Type:      f.Type,
			Ownership: symbols.Owned,
			Owner:     ctor,
			Location:  f.Location,
		})
	}
	return ctor
}

// validateMembers marks overriding members virtual and checks the member
// overload sets. It runs once all declarations of the unit are resolved.
func (c *ClassDeclaration) validateMembers(sink diagnostics.Sink) {
	base := c.Symbol.Base
	for _, m := range c.Members {
		fn := m.Function
		for _, super := range base.Supertypes {
			for _, inherited := range overload.Members(c.scope, super.Base, fn.Name) {
				if overload.Overrides(base, inherited, fn) {
					fn.Virtual = true
				}
			}
		}
	}
	overload.ValidateType(c.scope, c.Symbol, sink)
}

func (c *ClassDeclaration) infer(sink diagnostics.Sink) {
	for _, v := range c.Variables {
		Infer(v, sink)
	}
	for _, m := range c.Members {
		Infer(m, c.binder.declarationSink(sink))
	}
}

func (c *ClassDeclaration) validate(sink diagnostics.Sink) {
	for _, v := range c.Variables {
		Validate(v, sink)
	}
	for _, m := range c.Members {
		Validate(m, sink)
	}
}

// MemberVariable binds a field and its initializer. Initializers run in the
// constructor: they must be pure and must not throw.
type MemberVariable struct {
	nodeBase
	Field *symbols.Field
	// Initializer is nil when the constructor sets the field.
	Initializer Expression
	typeNode    syntax.TypeNode
	className   string
}

func newMemberVariable(b *Binder, scope *table.SymbolTable, syn *syntax.FieldDeclaration, className string) *MemberVariable {
	v := &MemberVariable{
		nodeBase: newNodeBase(b, scope, syn.Loc()),
		Field: &symbols.Field{
			Name:           syn.Name,
			Reassignable:   syn.Reassignable,
			HasInitializer: syn.Initializer != nil,
			Location:       syn.Loc(),
		},
		typeNode:  syn.Type,
		className: className,
	}
	if syn.Initializer != nil {
		v.Initializer = bindExpression(b, scope, syn.Initializer)
	}
	return v
}

func (v *MemberVariable) Children() []Node {
	if v.Initializer == nil {
		return nil
	}
	return []Node{v.Initializer}
}

func (v *MemberVariable) ThrowPrediction() effects.Prediction {
	if v.Initializer == nil {
		return effects.Never
	}
	return v.Initializer.ThrowPrediction()
}

func (v *MemberVariable) ReturnPrediction() effects.Prediction { return effects.Never }

func (v *MemberVariable) resolve(sink diagnostics.Sink) {
	v.Field.Type = resolveType(v.scope, v.typeNode, sink)
	if v.Initializer != nil {
		Resolve(v.Initializer, sink)
	}
}

func (v *MemberVariable) infer(sink diagnostics.Sink) {
	if v.Initializer == nil {
		return
	}
	v.Initializer.SetExpectedType(v.Field.Type)
	Infer(v.Initializer, sink)
	checkAssignable(v.scope.Catalog(), v.Initializer.Type(), v.Field.Type, v.Initializer.Location(), cascade(v.Initializer, sink))
}

func (v *MemberVariable) validate(sink diagnostics.Sink) {
	if v.Initializer == nil {
		return
	}
	v.Initializer.SetUsage(effects.CaptureAs(v.Field.Type, v.loc))
	pushNothrow(v.Initializer, &effects.NothrowBoundary{Kind: effects.NothrowConstructor, Name: v.className})
	Validate(v.Initializer, sink)

	boundary := effects.MemberInitializerBoundary(v.Field)
	for _, violation := range effects.Filter(boundary, SideEffects(v.Initializer, boundary)) {
		sink.Add(diagnostics.PurityViolation(violation.Location, violation.Kind == effects.WriteViolation, violation.Describe(), boundary.String()))
	}
}
