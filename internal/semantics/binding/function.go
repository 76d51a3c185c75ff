package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// FunctionDeclaration binds a top-level or member function. Its symbol is
// complete after phase 1 except for an inferred return type, which is known
// after phase 2.
type FunctionDeclaration struct {
	nodeBase
	Function *symbols.Function
	// Body is nil for abstract members.
	Body *CodeChunk

	syntax  *syntax.FunctionDeclaration
	owner   *ClassDeclaration
	fnScope *table.SymbolTable
}

func newFunctionDeclaration(b *Binder, scope *table.SymbolTable, syn *syntax.FunctionDeclaration, owner *ClassDeclaration) *FunctionDeclaration {
	fn := &symbols.Function{
		Name:     syn.Name,
		Nothrow:  syn.Attributes.Nothrow,
		Operator: syn.Attributes.Operator,
		Location: syn.Loc(),
	}
	switch {
	case syn.Attributes.Pure:
		fn.Purity = symbols.Pure
	case syn.Attributes.ReadOnly:
		fn.Purity = symbols.ReadOnly
	}
	for _, tp := range syn.TypeParameters {
		fn.TypeParameters = append(fn.TypeParameters, newTypeParameter(tp))
	}

	d := &FunctionDeclaration{
		nodeBase: newNodeBase(b, scope, syn.Loc()),
		Function: fn,
		syntax:   syn,
		owner:    owner,
	}
	d.fnScope = scope.DeriveFunction(fn)
	if syn.ReturnType == nil && syn.Body != nil {
		fn.Inferrer = d
	}
	if syn.Body != nil {
		d.Body = newCodeChunk(b, d.fnScope, syn.Body)
	}
	return d
}

func newTypeParameter(tp *syntax.TypeParameter) *types.TypeParameter {
	p := &types.TypeParameter{Name: tp.Name, Location: tp.Loc()}
	switch tp.Variance {
	case "in":
		p.Variance = types.In
	case "out":
		p.Variance = types.Out
	}
	return p
}

// declareTypeParameters makes params visible in scope and resolves their bounds.
func declareTypeParameters(scope *table.SymbolTable, params []*types.TypeParameter, syns []*syntax.TypeParameter, sink diagnostics.Sink) {
	for _, p := range params {
		if err := scope.DeclareTypeParameter(p); err != nil {
			prev, _ := scope.ResolveTypeParameter(p.Name)
			sink.Add(diagnostics.RedeclaredSymbol(p.Location, prev.Location, p.Name))
		}
	}
	for i, tp := range syns {
		if tp.Bound != nil {
			params[i].Bound = resolveType(scope, tp.Bound, sink)
		}
	}
}

func (d *FunctionDeclaration) Children() []Node {
	if d.Body == nil {
		return nil
	}
	return []Node{d.Body}
}

// A declaration neither throws nor returns when control passes it.
func (d *FunctionDeclaration) ThrowPrediction() effects.Prediction  { return effects.Never }
func (d *FunctionDeclaration) ReturnPrediction() effects.Prediction { return effects.Never }

func (d *FunctionDeclaration) resolve(sink diagnostics.Sink) {
	fn, syn := d.Function, d.syntax
	declareTypeParameters(d.fnScope, fn.TypeParameters, syn.TypeParameters, sink)

	if syn.Receiver != nil || d.owner != nil {
		fn.Receiver = d.receiver(sink)
	}
	for _, p := range syn.Parameters {
		fn.Parameters = append(fn.Parameters, d.parameter(p, resolveType(d.fnScope, p.Type, sink)))
	}
	for _, p := range fn.AllParameters() {
		if prev, err := d.fnScope.DeclareVariable(p); err != nil {
			sink.Add(diagnostics.RedeclaredSymbol(p.Location, prev.Location, p.Name))
		}
	}

	switch {
	case syn.ReturnType != nil:
		fn.ReturnType = resolveType(d.fnScope, syn.ReturnType, sink)
	case syn.Body == nil:
		fn.ReturnType = d.scope.Catalog().UnitRef()
	}

	if d.Body != nil {
		Resolve(d.Body, sink)
	}
}

// receiver declares self. A receiver without a written type is a readonly
// reference to the enclosing class.
func (d *FunctionDeclaration) receiver(sink diagnostics.Sink) *symbols.Variable {
	syn := d.syntax.Receiver
	if syn == nil {
		syn = &syntax.Parameter{Name: "self", Location: d.syntax.Location}
	}
	var t types.Type
	switch {
	case syn.Type != nil:
		t = resolveType(d.fnScope, syn.Type, sink)
	case d.owner != nil:
		t = d.owner.Symbol.Base.SelfRef(types.ReadOnly)
	}
	return d.parameter(syn, t)
}

func (d *FunctionDeclaration) parameter(p *syntax.Parameter, t types.Type) *symbols.Variable {
	v := &symbols.Variable{
		Name:      p.Name,
		Kind:      symbols.SymbolParameter,
		Type:      t,
		Ownership: symbols.Borrowed,
		Owner:     d.Function,
		Location:  p.Loc(),
	}
	if p.Capture {
		v.Ownership = symbols.Owned
	}
	return v
}

func (d *FunctionDeclaration) infer(sink diagnostics.Sink) {
	if d.Body == nil {
		return
	}
	fn := d.Function
	inferring := fn.ReturnType == nil && fn.Inferrer != nil
	if inferring {
		d.binder.inferring.Insert(fn)
	}
	Infer(d.Body, sink)
	if !inferring {
		return
	}
	d.binder.inferring.Remove(fn)
	fn.ReturnType = d.inferredReturnType()
	fn.Inferrer = nil
}

// inferredReturnType is the closest common supertype of all returned values.
func (d *FunctionDeclaration) inferredReturnType() types.Type {
	c := d.scope.Catalog()
	returned := d.binder.returns[d.Function]
	if len(returned) == 0 {
		if d.Body.ThrowPrediction() == effects.Guaranteed {
			return c.NothingRef()
		}
		return c.UnitRef()
	}
	t := returned[0]
	for _, r := range returned[1:] {
		t = c.CommonSupertype(t, r)
	}
	return t
}

// InferReturnType infers the return type on demand of a call site. A call
// site inside the inference itself is a cycle.
func (d *FunctionDeclaration) InferReturnType(sink diagnostics.Sink) types.Type {
	if d.binder.inferring.Contains(d.Function) {
		if d.binder.cyclic.Insert(d.Function) {
			sink.Add(diagnostics.CyclicInference(d.Function.Location, d.Function.Name))
		}
		return nil
	}
	Infer(d, d.binder.declarationSink(sink))
	return d.Function.ReturnType
}

func (d *FunctionDeclaration) validate(sink diagnostics.Sink) {
	if d.Body == nil {
		return
	}
	fn := d.Function
	for _, p := range fn.AllParameters() {
		d.fnScope.MarkInitialized(p)
	}
	if fn.Nothrow {
		pushNothrow(d.Body, &effects.NothrowBoundary{Kind: effects.NothrowFunction, Name: fn.Name})
	}
	Validate(d.Body, sink)

	boundary := effects.FunctionBoundary(fn)
	for _, v := range effects.Filter(boundary, SideEffects(d.Body, boundary)) {
		sink.Add(diagnostics.PurityViolation(v.Location, v.Kind == effects.WriteViolation, v.Describe(), boundary.String()))
	}

	c := d.scope.Catalog()
	if rt := fn.ReturnType; rt != nil && !c.IsUnit(rt) && exits(d.Body) != effects.Guaranteed {
		sink.Add(diagnostics.MissingReturn(d.endLocation(), fn.Name, rt.String()))
	}
}

func (d *FunctionDeclaration) endLocation() *source.Location {
	loc := d.Body.Location()
	if loc.IsSynthetic() {
		return d.loc
	}
	return source.NewLocation(loc.Filename, loc.End, loc.End)
}
