package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/overload"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Dispatch says how an invocation reaches its function at run time.
type Dispatch int

const (
	StaticDispatch Dispatch = iota
	// DynamicDispatch looks the function up on the receiver's run time type.
	DynamicDispatch
)

func (d Dispatch) String() string {
	if d == DynamicDispatch {
		return "dynamic"
	}
	return "static"
}

// InvocationExpression calls a function, a member function or a constructor.
// Operators are invocations of operator functions.
type InvocationExpression struct {
	expression
	// Receiver is nil for plain calls.
	Receiver  Expression
	Name      string
	Arguments []Expression
	// Result is set in phase 2; its Function is nil when nothing matched.
	Result   *overload.Result
	Dispatch Dispatch

	typeArgs     []syntax.TypeNode
	explicitArgs []types.Type
	operator     bool
}

// Function is the invoked function, nil when resolution failed.
func (i *InvocationExpression) Function() *symbols.Function {
	if i.Result == nil {
		return nil
	}
	return i.Result.Function
}

// Bindings are the solved type parameters of the invoked function.
func (i *InvocationExpression) Bindings() map[*types.TypeParameter]types.Type {
	if i.Result == nil {
		return nil
	}
	return i.Result.Bindings()
}

// all returns the receiver, if any, followed by the arguments.
func (i *InvocationExpression) all() []Expression {
	if i.Receiver == nil {
		return i.Arguments
	}
	return append([]Expression{i.Receiver}, i.Arguments...)
}

func (i *InvocationExpression) Children() []Node {
	all := i.all()
	nodes := make([]Node, len(all))
	for k, e := range all {
		nodes[k] = e
	}
	return nodes
}

func (i *InvocationExpression) ThrowPrediction() effects.Prediction {
	p := effects.Never
	for _, e := range i.all() {
		p = effects.Seq(p, e.ThrowPrediction())
	}
	if fn := i.Function(); fn != nil && !fn.Nothrow {
		p = effects.Seq(p, effects.Maybe)
	}
	return p
}

func (i *InvocationExpression) ReturnPrediction() effects.Prediction {
	p := effects.Never
	for _, e := range i.all() {
		p = effects.Seq(p, e.ReturnPrediction())
	}
	return p
}

func (i *InvocationExpression) resolve(sink diagnostics.Sink) {
	for _, e := range i.all() {
		Resolve(e, sink)
	}
	if i.typeArgs == nil {
		return
	}
	i.explicitArgs = make([]types.Type, len(i.typeArgs))
	for k, t := range i.typeArgs {
		if i.explicitArgs[k] = resolveType(i.scope, t, sink); i.explicitArgs[k] == nil {
			i.explicitArgs = nil
			return
		}
	}
}

func (i *InvocationExpression) infer(sink diagnostics.Sink) {
	all := i.all()
	argTypes := make([]types.Type, len(all))
	for k, e := range all {
		if u, ok := e.(untyped); ok {
			argTypes[k] = u.provisionalType()
			continue
		}
		Infer(e, sink)
		argTypes[k] = e.Type()
	}

	if i.Receiver != nil && argTypes[0] == nil {
		i.inferRemaining(all, sink)
		return
	}

	cs := &overload.CallSite{
		Name:             i.Name,
		ExplicitTypeArgs: i.explicitArgs,
		Expected:         i.expected,
		Location:         i.loc,
	}
	args := argTypes
	if i.Receiver != nil {
		cs.Receiver = argTypes[0]
		args = argTypes[1:]
	}
	cs.Arguments = args
	cs.ArgumentLocations = make([]*source.Location, len(i.Arguments))
	for k, a := range i.Arguments {
		cs.ArgumentLocations[k] = a.Location()
	}

	rsink := sink
	for _, e := range all {
		if fromFallback(e) {
			rsink = diagnostics.ConsecutiveSink{Next: sink}
			break
		}
	}
	i.Result = overload.Resolve(i.scope, cs, rsink)
	fn := i.Result.Function
	if fn == nil {
		i.inferRemaining(all, sink)
		return
	}
	if i.operator && !fn.Operator {
		sink.Add(diagnostics.NotAnOperator(i.loc, fn.String()))
	}

	params := fn.AllParameters()
	eval := i.Result.Evaluation
	for k, e := range all {
		pt := eval.ParameterType(k)
		if _, ok := e.(untyped); ok {
			if !eval.FailedArguments.Has(k) {
				e.SetExpectedType(pt)
			}
			Infer(e, sink)
		}
		if k < len(params) && params[k].Ownership == symbols.Owned {
			e.SetUsage(effects.CaptureAs(pt, i.loc))
		} else {
			e.SetUsage(effects.BorrowAs(pt, i.loc))
		}
	}
	i.typ = i.Result.ReturnType

	if fn.Virtual && i.Receiver != nil && dynamicReceiver(argTypes[0]) {
		i.Dispatch = DynamicDispatch
	}
}

// inferRemaining completes phase 2 of literal arguments that were held back
// for overload resolution.
func (i *InvocationExpression) inferRemaining(all []Expression, sink diagnostics.Sink) {
	for _, e := range all {
		if _, ok := e.(untyped); ok {
			Infer(e, sink)
		}
	}
}

func dynamicReceiver(t types.Type) bool {
	switch r := t.(type) {
	case *types.RootRef:
		return r.Base.Kind == types.Interface || r.Base.Kind == types.Top
	case *types.VariableRef:
		return true
	}
	return false
}

func (i *InvocationExpression) validate(sink diagnostics.Sink) {
	for _, e := range i.all() {
		Validate(e, sink)
	}
	i.checkBorrows(sink)

	fn := i.Function()
	if i.nothrow != nil && fn != nil && !fn.Nothrow {
		sink.Add(diagnostics.NothrowViolation(i.loc, "invocation of "+fn.Name, i.nothrow.String()))
	}
}

// checkBorrows reports variables handed to one call twice where at least one
// use may modify the object.
func (i *InvocationExpression) checkBorrows(sink diagnostics.Sink) {
	type use struct {
		ident    *IdentifierExpression
		mutating bool
	}
	seen := make(map[*symbols.Variable]use)
	for _, e := range i.all() {
		ident, ok := e.(*IdentifierExpression)
		if !ok || ident.Referral.Variable == nil || !types.IsReferenceCounted(ident.typ) {
			continue
		}
		v := ident.Referral.Variable
		usage := ident.Usage()
		mutating := usage.Mutability == types.Mutable || usage.Mutability == types.Exclusive
		if prev, ok := seen[v]; ok {
			if prev.mutating || mutating {
				sink.Add(diagnostics.ConflictingBorrow(ident.loc, prev.ident.loc, v.Name))
			}
			continue
		}
		seen[v] = use{ident: ident, mutating: mutating}
	}
}

// ResultReferenceCounted is true for counted return values: the callee hands
// over its reference.
func (i *InvocationExpression) ResultReferenceCounted() bool {
	return i.typ != nil && types.IsReferenceCounted(i.typ)
}

func (i *InvocationExpression) sideEffects(effects.SideEffectBoundary) []effects.Violation {
	fn := i.Function()
	if fn == nil {
		return nil
	}
	return effects.InvocationViolations(fn, i.loc)
}
