// Package binding turns syntax nodes into bound nodes and binds them in three
// phases: resolve (declare and look up names), infer (compute types, resolve
// overloads) and validate (check the effect contracts). Every phase of every
// node runs at most once; diagnostics go to the sink passed in.
package binding

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/phase"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/unification"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Options configure one binder.
type Options struct {
	// Tracef receives phase traces. Nil disables tracing.
	Tracef func(format string, args ...any)
}

// Binder holds the state shared by the nodes of one compilation unit.
type Binder struct {
	catalog *types.Catalog
	tracef  func(format string, args ...any)

	// inferring holds the functions whose return type is being inferred
	inferring    *set.Set[*symbols.Function]
	// cyclic holds the functions already reported as cyclic
	cyclic       *set.Set[*symbols.Function]
	returns      map[*symbols.Function][]types.Type
	// declarations is the sink phase 2 of declarations reports to, also when
	// a call site triggers it early
	declarations diagnostics.Sink
}

func newBinder(catalog *types.Catalog, opts Options) *Binder {
	return &Binder{
		catalog:   catalog,
		tracef:    opts.Tracef,
		inferring: set.New[*symbols.Function](4),
		cyclic:    set.New[*symbols.Function](0),
		returns:   make(map[*symbols.Function][]types.Type),
	}
}

// declarationSink is the sink phase 2 of a function declaration reports to.
// Declarations can be inferred early on demand of a call site; reporting to
// one sink keeps the guard from replaying their diagnostics.
func (b *Binder) declarationSink(fallback diagnostics.Sink) diagnostics.Sink {
	if b.declarations != nil {
		return b.declarations
	}
	return fallback
}

func (b *Binder) trace(format string, args ...any) {
	if b.tracef != nil {
		b.tracef(format, args...)
	}
}

// Node is a bound node. The set of node kinds is closed.
type Node interface {
	Location() *source.Location
	// Scope is the environment the node binds in.
	Scope() *table.SymbolTable
	// Children lists the directly nested bound nodes in evaluation order.
	Children() []Node
	// ThrowPrediction and ReturnPrediction are final after phase 2.
	ThrowPrediction() effects.Prediction
	ReturnPrediction() effects.Prediction

	base() *nodeBase
	resolve(sink diagnostics.Sink)
	infer(sink diagnostics.Sink)
	validate(sink diagnostics.Sink)
}

// Expression is a bound node producing a value.
type Expression interface {
	Node
	// Type is final after phase 2. It is nil when an error made it unknown.
	Type() types.Type
	// SetExpectedType hints the type the parent wants. Call before phase 2.
	SetExpectedType(t types.Type)
	// SetResultUsed tells whether the parent consumes the value. Call before phase 2.
	SetResultUsed(used bool)
	// SetUsage tells how the parent consumes the value. Call before phase 3.
	SetUsage(u effects.ValueUsage)
	// ResultReferenceCounted reports whether the value is handed over with a
	// reference count already taken for the consumer.
	ResultReferenceCounted() bool

	expr() *expression
}

// Statement is a bound node of a code chunk.
type Statement interface {
	Node
	stmt()
}

// Resolve runs phase 1 of n. Repeated calls replay the recorded diagnostics
// into a different sink and do nothing otherwise.
func Resolve(n Node, sink diagnostics.Sink) []*diagnostics.Diagnostic {
	return n.base().guard.Run(phase.PhaseResolved, describe(n), sink, n.resolve)
}

// Infer runs phase 2 of n; phase 1 must have completed.
func Infer(n Node, sink diagnostics.Sink) []*diagnostics.Diagnostic {
	return n.base().guard.Run(phase.PhaseInferred, describe(n), sink, n.infer)
}

// Validate runs phase 3 of n; phase 2 must have completed.
func Validate(n Node, sink diagnostics.Sink) []*diagnostics.Diagnostic {
	return n.base().guard.Run(phase.PhaseValidated, describe(n), sink, n.validate)
}

// Reached returns the last phase n completed.
func Reached(n Node) phase.BindingPhase {
	return n.base().guard.Reached()
}

func describe(n Node) string {
	return fmt.Sprintf("%T at %s", n, n.Location())
}

type nodeBase struct {
	binder  *Binder
	guard   phase.Guard
	loc     *source.Location
	scope   *table.SymbolTable
	nothrow *effects.NothrowBoundary
}

func newNodeBase(b *Binder, scope *table.SymbolTable, loc *source.Location) nodeBase {
	return nodeBase{binder: b, loc: loc, scope: scope}
}

func (n *nodeBase) Location() *source.Location { return n.loc }
func (n *nodeBase) Scope() *table.SymbolTable  { return n.scope }
func (n *nodeBase) base() *nodeBase            { return n }

// Nothrow returns the boundary promising that n does not throw, nil if none.
func (n *nodeBase) Nothrow() *effects.NothrowBoundary { return n.nothrow }

type expression struct {
	nodeBase
	typ        types.Type
	expected   types.Type
	usage      *effects.ValueUsage
	resultUsed bool
}

func newExpression(b *Binder, scope *table.SymbolTable, loc *source.Location) expression {
	return expression{nodeBase: newNodeBase(b, scope, loc), resultUsed: true}
}

func (e *expression) Type() types.Type              { return e.typ }
func (e *expression) SetExpectedType(t types.Type)  { e.expected = t }
func (e *expression) SetResultUsed(used bool)       { e.resultUsed = used }
func (e *expression) SetUsage(u effects.ValueUsage) { e.usage = &u }
func (e *expression) expr() *expression             { return e }

// Usage is what the parent pushed, a plain read if nothing was pushed.
func (e *expression) Usage() effects.ValueUsage {
	if e.usage == nil {
		return effects.ReadUsage(e.loc)
	}
	return *e.usage
}

// RequiresIncrement reports whether the consumer of e must increment the
// reference count of its value.
func RequiresIncrement(e Expression) bool {
	return effects.RequiresIncrement(e.expr().Usage(), e.ResultReferenceCounted())
}

// RequiresDecrement reports whether the value of e must be released after
// the consumer is done with it.
func RequiresDecrement(e Expression) bool {
	return effects.RequiresDecrement(e.expr().Usage(), e.ResultReferenceCounted())
}

// untyped is implemented by literals whose type depends on the context.
type untyped interface {
	Expression
	provisionalType() types.Type
}

// leaf supplies the parts of a node without children.
type leaf struct{}

func (leaf) Children() []Node                    { return nil }
func (leaf) ThrowPrediction() effects.Prediction  { return effects.Never }
func (leaf) ReturnPrediction() effects.Prediction { return effects.Never }

// checkAssignable reports a mismatch when a value of type src is stored where
// dst is expected. Unknown types are accepted silently.
func checkAssignable(c *types.Catalog, src, dst types.Type, loc *source.Location, sink diagnostics.Sink) bool {
	if src == nil || dst == nil {
		return true
	}
	_, diags := unification.Unify(src, dst, unification.NewState(c, nil), loc)
	for _, d := range diags {
		sink.Add(d)
	}
	return len(diags) == 0
}

// fromFallback reports whether the type of e comes from an overload that was
// picked as a fallback after a resolution error.
func fromFallback(e Expression) bool {
	switch n := e.(type) {
	case *InvocationExpression:
		return n != nil && n.Result != nil && n.Result.Ambiguous
	case *BinaryExpression:
		return n.Invocation != nil && fromFallback(n.Invocation)
	case *UnaryExpression:
		return n.Invocation != nil && fromFallback(n.Invocation)
	case *IndexExpression:
		return n.Invocation != nil && fromFallback(n.Invocation)
	}
	return false
}

// cascade returns the sink for checks on the value of e. Errors about a
// fallback value are consecutive.
func cascade(e Expression, sink diagnostics.Sink) diagnostics.Sink {
	if fromFallback(e) {
		return diagnostics.ConsecutiveSink{Next: sink}
	}
	return sink
}

// resolveType turns a written type into a type reference. Problems are
// reported and yield nil.
func resolveType(scope *table.SymbolTable, node syntax.TypeNode, sink diagnostics.Sink) types.Type {
	named, ok := node.(*syntax.NamedType)
	if !ok || named == nil {
		return nil
	}
	if p, ok := scope.ResolveTypeParameter(named.Name); ok {
		if len(named.Args) > 0 {
			sink.Add(diagnostics.TypeArgumentCount(named.Loc(), named.Name, 0, len(named.Args)))
			return nil
		}
		return &types.VariableRef{Param: p, Nullable: named.Nullable}
	}

	var base *types.BaseType
	if ts, ok := scope.ResolveType(named.Name); ok {
		base = ts.Base
	} else if b, ok := scope.Catalog().Lookup(named.Name); ok {
		base = b
	} else {
		sink.Add(diagnostics.UndefinedType(named.Loc(), named.Name))
		return nil
	}

	args := make([]types.Type, len(named.Args))
	for i, a := range named.Args {
		if args[i] = resolveType(scope, a, sink); args[i] == nil {
			return nil
		}
	}
	if len(args) != len(base.Parameters) {
		sink.Add(diagnostics.TypeArgumentCount(named.Loc(), named.Name, len(base.Parameters), len(args)))
		return nil
	}
	bindings := types.Bind(base.Parameters, args)
	for i, p := range base.Parameters {
		if p.Bound == nil {
			continue
		}
		bound := types.Substitute(p.Bound, bindings)
		if !types.IsAssignableTo(args[i], bound) {
			sink.Add(diagnostics.TypeMismatch(named.Args[i].Loc(), args[i].String(), bound.String()))
		}
	}

	mut := types.ReadOnly
	if named.Mutability != "" {
		if m, ok := types.ParseMutability(named.Mutability); ok {
			mut = m
		}
	}
	if base.ValueType {
		mut = types.Immutable
	}
	ref := base.Ref(mut, args...)
	ref.Nullable = named.Nullable
	return ref
}

// isValueType reports whether values of t are copied rather than referenced.
func isValueType(t types.Type) bool {
	r, ok := t.(*types.RootRef)
	return ok && r.Base.ValueType
}

// isConstant reports whether reading v can never observe a change.
func isConstant(v *symbols.Variable) bool {
	if v.Reassignable || v.Type == nil {
		return false
	}
	return v.Type.Mutability() == types.Immutable || isValueType(v.Type)
}
