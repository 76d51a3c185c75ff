package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Operator functions invoked by operator syntax.
var binaryOperators = map[string]string{
	"+":  "plus",
	"-":  "minus",
	"*":  "times",
	"/":  "divideBy",
	"%":  "rem",
	"==": "equals",
	"!=": "equals",
	"<":  "less",
	">":  "greater",
	"<=": "lessOrEqual",
	">=": "greaterOrEqual",
}

var unaryOperators = map[string]string{
	"-": "negate",
	"!": "not",
}

// OperatorFunction returns the name of the function implementing a binary
// operator. native is set for && and ||, which have no function.
func OperatorFunction(op string) (name string, native bool) {
	if op == "&&" || op == "||" {
		return "", true
	}
	if fn, ok := binaryOperators[op]; ok {
		return fn, false
	}
	return op, false
}

func newOperatorInvocation(b *Binder, scope *table.SymbolTable, loc *source.Location, name string, receiver Expression, args ...Expression) *InvocationExpression {
	return &InvocationExpression{
		expression: newExpression(b, scope, loc),
		Receiver:   receiver,
		Name:       name,
		Arguments:  args,
		operator:   true,
	}
}

// BinaryExpression is an infix operation. Arithmetic and comparisons invoke
// the operator function of the left operand; && and || are evaluated natively.
type BinaryExpression struct {
	expression
	Operator    string
	Left, Right Expression
	// Invocation is nil for && and ||.
	Invocation *InvocationExpression
	// Negated is set for != which inverts the result of equals.
	Negated bool
}

func (e *BinaryExpression) Children() []Node {
	if e.Invocation != nil {
		return []Node{e.Invocation}
	}
	return []Node{e.Left, e.Right}
}

func (e *BinaryExpression) ThrowPrediction() effects.Prediction {
	if e.Invocation != nil {
		return e.Invocation.ThrowPrediction()
	}
	return effects.Seq(e.Left.ThrowPrediction(), effects.Optional(e.Right.ThrowPrediction()))
}

func (e *BinaryExpression) ReturnPrediction() effects.Prediction {
	if e.Invocation != nil {
		return e.Invocation.ReturnPrediction()
	}
	return effects.Seq(e.Left.ReturnPrediction(), effects.Optional(e.Right.ReturnPrediction()))
}

func (e *BinaryExpression) resolve(sink diagnostics.Sink) {
	for _, c := range e.Children() {
		Resolve(c, sink)
	}
}

func (e *BinaryExpression) infer(sink diagnostics.Sink) {
	if e.Invocation != nil {
		e.Invocation.SetExpectedType(e.expected)
		Infer(e.Invocation, sink)
		e.typ = e.Invocation.Type()
		return
	}
	boolean := e.scope.Catalog().BoolRef()
	for _, operand := range []Expression{e.Left, e.Right} {
		operand.SetExpectedType(boolean)
		Infer(operand, sink)
		checkAssignable(e.scope.Catalog(), operand.Type(), boolean, operand.Location(), cascade(operand, sink))
	}
	e.typ = boolean
}

func (e *BinaryExpression) validate(sink diagnostics.Sink) {
	if e.Invocation != nil {
		e.Invocation.SetUsage(e.Usage())
	}
	for _, c := range e.Children() {
		Validate(c, sink)
	}
}

func (e *BinaryExpression) ResultReferenceCounted() bool {
	return e.Invocation != nil && e.Invocation.ResultReferenceCounted()
}

// UnaryExpression invokes negate or not on its operand.
type UnaryExpression struct {
	expression
	Operator   string
	Operand    Expression
	Invocation *InvocationExpression
}

func (e *UnaryExpression) Children() []Node { return []Node{e.Invocation} }

func (e *UnaryExpression) ThrowPrediction() effects.Prediction {
	return e.Invocation.ThrowPrediction()
}

func (e *UnaryExpression) ReturnPrediction() effects.Prediction {
	return e.Invocation.ReturnPrediction()
}

func (e *UnaryExpression) resolve(sink diagnostics.Sink) { Resolve(e.Invocation, sink) }

func (e *UnaryExpression) infer(sink diagnostics.Sink) {
	e.Invocation.SetExpectedType(e.expected)
	Infer(e.Invocation, sink)
	e.typ = e.Invocation.Type()
}

func (e *UnaryExpression) validate(sink diagnostics.Sink) {
	e.Invocation.SetUsage(e.Usage())
	Validate(e.Invocation, sink)
}

func (e *UnaryExpression) ResultReferenceCounted() bool {
	return e.Invocation.ResultReferenceCounted()
}

// IndexExpression reads an element through the get operator.
type IndexExpression struct {
	expression
	Object, Index Expression
	Invocation    *InvocationExpression
}

func (e *IndexExpression) Children() []Node { return []Node{e.Invocation} }

func (e *IndexExpression) ThrowPrediction() effects.Prediction {
	return e.Invocation.ThrowPrediction()
}

func (e *IndexExpression) ReturnPrediction() effects.Prediction {
	return e.Invocation.ReturnPrediction()
}

func (e *IndexExpression) resolve(sink diagnostics.Sink) { Resolve(e.Invocation, sink) }

func (e *IndexExpression) infer(sink diagnostics.Sink) {
	e.Invocation.SetExpectedType(e.expected)
	Infer(e.Invocation, sink)
	e.typ = e.Invocation.Type()
}

func (e *IndexExpression) validate(sink diagnostics.Sink) {
	e.Invocation.SetUsage(e.Usage())
	Validate(e.Invocation, sink)
}

func (e *IndexExpression) ResultReferenceCounted() bool {
	return e.Invocation.ResultReferenceCounted()
}
