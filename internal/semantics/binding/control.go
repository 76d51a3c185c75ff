package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// CodeChunk is a sequence of statements. Each statement binds in the scope
// the previous one left behind.
type CodeChunk struct {
	nodeBase
	Statements []Statement
	out        *table.SymbolTable
}

func (c *CodeChunk) stmt() {}

// OutScope is the scope after the last statement.
func (c *CodeChunk) OutScope() *table.SymbolTable { return c.out }

func (c *CodeChunk) Children() []Node {
	nodes := make([]Node, len(c.Statements))
	for i, s := range c.Statements {
		nodes[i] = s
	}
	return nodes
}

func (c *CodeChunk) ThrowPrediction() effects.Prediction {
	p := effects.Never
	for _, s := range c.Statements {
		p = effects.Seq(p, s.ThrowPrediction())
	}
	return p
}

func (c *CodeChunk) ReturnPrediction() effects.Prediction {
	p := effects.Never
	for _, s := range c.Statements {
		p = effects.Seq(p, s.ReturnPrediction())
	}
	return p
}

func (c *CodeChunk) resolve(sink diagnostics.Sink) {
	for _, s := range c.Statements {
		Resolve(s, sink)
	}
}

func (c *CodeChunk) infer(sink diagnostics.Sink) {
	for _, s := range c.Statements {
		Infer(s, sink)
	}
}

func (c *CodeChunk) validate(sink diagnostics.Sink) {
	warned := false
	for i, s := range c.Statements {
		Validate(s, sink)
		if !warned && i+1 < len(c.Statements) && divergence(s, true) == effects.Guaranteed {
			sink.Add(diagnostics.UnreachableCode(c.Statements[i+1].Location()))
			warned = true
		}
	}
}

// result is the expression whose value the chunk yields, nil if none.
func (c *CodeChunk) result() Expression {
	if len(c.Statements) == 0 {
		return nil
	}
	switch s := c.Statements[len(c.Statements)-1].(type) {
	case *ExpressionStatement:
		return s.Expression
	case *IfExpression:
		return s
	}
	return nil
}

// ExpressionStatement evaluates an expression and drops its value.
type ExpressionStatement struct {
	nodeBase
	Expression Expression
}

func (s *ExpressionStatement) stmt()            {}
func (s *ExpressionStatement) Children() []Node { return []Node{s.Expression} }

func (s *ExpressionStatement) ThrowPrediction() effects.Prediction {
	return s.Expression.ThrowPrediction()
}

func (s *ExpressionStatement) ReturnPrediction() effects.Prediction {
	return s.Expression.ReturnPrediction()
}

func (s *ExpressionStatement) resolve(sink diagnostics.Sink) { Resolve(s.Expression, sink) }
func (s *ExpressionStatement) infer(sink diagnostics.Sink)   { Infer(s.Expression, sink) }

func (s *ExpressionStatement) validate(sink diagnostics.Sink) {
	Validate(s.Expression, sink)
}

// IfExpression runs one of two chunks. With both branches it can be used as
// a value: the last expression of each branch.
type IfExpression struct {
	expression
	Condition  Expression
	Then, Else *CodeChunk
	out        *table.SymbolTable
}

func (e *IfExpression) stmt() {}

// OutScope joins the effect histories of both branches.
func (e *IfExpression) OutScope() *table.SymbolTable { return e.out }

func (e *IfExpression) Children() []Node {
	if e.Else == nil {
		return []Node{e.Condition, e.Then}
	}
	return []Node{e.Condition, e.Then, e.Else}
}

func (e *IfExpression) ThrowPrediction() effects.Prediction {
	els := effects.Never
	if e.Else != nil {
		els = e.Else.ThrowPrediction()
	}
	return effects.Seq(e.Condition.ThrowPrediction(), effects.Branch(e.Then.ThrowPrediction(), els))
}

func (e *IfExpression) ReturnPrediction() effects.Prediction {
	els := effects.Never
	if e.Else != nil {
		els = e.Else.ReturnPrediction()
	}
	return effects.Seq(e.Condition.ReturnPrediction(), effects.Branch(e.Then.ReturnPrediction(), els))
}

func (e *IfExpression) resolve(sink diagnostics.Sink) {
	for _, c := range e.Children() {
		Resolve(c, sink)
	}
}

func (e *IfExpression) infer(sink diagnostics.Sink) {
	c := e.scope.Catalog()
	e.Condition.SetExpectedType(c.BoolRef())
	Infer(e.Condition, sink)
	checkAssignable(c, e.Condition.Type(), c.BoolRef(), e.Condition.Location(), cascade(e.Condition, sink))

	valued := e.resultUsed && e.Else != nil
	for _, branch := range []*CodeChunk{e.Then, e.Else} {
		if branch == nil {
			continue
		}
		if r := branch.result(); r != nil {
			r.SetResultUsed(valued)
			if valued {
				r.SetExpectedType(e.expected)
			}
		}
		Infer(branch, sink)
	}

	e.typ = c.UnitRef()
	if !valued {
		return
	}
	var t types.Type
	for _, branch := range []*CodeChunk{e.Then, e.Else} {
		if divergence(branch, true) == effects.Guaranteed {
			continue
		}
		bt := types.Type(c.UnitRef())
		if r := branch.result(); r != nil {
			bt = r.Type()
		}
		if bt == nil {
			return
		}
		if t == nil {
			t = bt
		} else {
			t = c.CommonSupertype(t, bt)
		}
	}
	if t == nil {
		t = c.NothingRef()
	}
	e.typ = t
}

func (e *IfExpression) validate(sink diagnostics.Sink) {
	if e.resultUsed && e.Else != nil {
		for _, branch := range []*CodeChunk{e.Then, e.Else} {
			if r := branch.result(); r != nil {
				r.SetUsage(e.Usage())
			}
		}
	}
	for _, c := range e.Children() {
		Validate(c, sink)
	}
}

func (e *IfExpression) ResultReferenceCounted() bool {
	if !e.resultUsed || e.Else == nil {
		return false
	}
	for _, branch := range []*CodeChunk{e.Then, e.Else} {
		if r := branch.result(); r != nil && r.ResultReferenceCounted() {
			return true
		}
	}
	return false
}

// WhileLoop repeats its body while the condition holds.
type WhileLoop struct {
	nodeBase
	Condition Expression
	Body      *CodeChunk
	out       *table.SymbolTable
}

func (w *WhileLoop) stmt() {}

// OutScope joins skipping the loop with running the body.
func (w *WhileLoop) OutScope() *table.SymbolTable { return w.out }

func (w *WhileLoop) Children() []Node { return []Node{w.Condition, w.Body} }

func (w *WhileLoop) ThrowPrediction() effects.Prediction {
	return effects.Seq(w.Condition.ThrowPrediction(), effects.Optional(w.Body.ThrowPrediction()))
}

func (w *WhileLoop) ReturnPrediction() effects.Prediction {
	return effects.Seq(w.Condition.ReturnPrediction(), effects.Optional(w.Body.ReturnPrediction()))
}

func (w *WhileLoop) resolve(sink diagnostics.Sink) {
	Resolve(w.Condition, sink)
	Resolve(w.Body, sink)
}

func (w *WhileLoop) infer(sink diagnostics.Sink) {
	c := w.scope.Catalog()
	w.Condition.SetExpectedType(c.BoolRef())
	Infer(w.Condition, sink)
	checkAssignable(c, w.Condition.Type(), c.BoolRef(), w.Condition.Location(), cascade(w.Condition, sink))
	Infer(w.Body, sink)
}

func (w *WhileLoop) validate(sink diagnostics.Sink) {
	Validate(w.Condition, sink)
	Validate(w.Body, sink)
}

// BreakStatement leaves the innermost loop.
type BreakStatement struct {
	nodeBase
	leaf
	// Loop is set in phase 1 when there is an enclosing loop.
	Loop *WhileLoop
}

func (s *BreakStatement) stmt() {}
func (s *BreakStatement) resolve(sink diagnostics.Sink) {
	s.Loop = enclosingLoop(&s.nodeBase, "break", sink)
}
func (s *BreakStatement) infer(diagnostics.Sink)    {}
func (s *BreakStatement) validate(diagnostics.Sink) {}

// ContinueStatement starts the next iteration of the innermost loop.
type ContinueStatement struct {
	nodeBase
	leaf
	Loop *WhileLoop
}

func (s *ContinueStatement) stmt() {}
func (s *ContinueStatement) resolve(sink diagnostics.Sink) {
	s.Loop = enclosingLoop(&s.nodeBase, "continue", sink)
}
func (s *ContinueStatement) infer(diagnostics.Sink)    {}
func (s *ContinueStatement) validate(diagnostics.Sink) {}

func enclosingLoop(n *nodeBase, keyword string, sink diagnostics.Sink) *WhileLoop {
	owner, ok := n.scope.EnclosingLoop()
	if !ok {
		sink.Add(diagnostics.JumpOutsideLoop(n.loc, keyword))
		return nil
	}
	loop, _ := owner.(*WhileLoop)
	return loop
}

// ReturnStatement leaves the enclosing function with a value.
type ReturnStatement struct {
	nodeBase
	// Value is nil for a return of Unit.
	Value    Expression
	function *symbols.Function
}

func (s *ReturnStatement) stmt() {}

func (s *ReturnStatement) Children() []Node {
	if s.Value == nil {
		return nil
	}
	return []Node{s.Value}
}

func (s *ReturnStatement) ThrowPrediction() effects.Prediction {
	if s.Value == nil {
		return effects.Never
	}
	return s.Value.ThrowPrediction()
}

func (s *ReturnStatement) ReturnPrediction() effects.Prediction { return effects.Guaranteed }

func (s *ReturnStatement) resolve(sink diagnostics.Sink) {
	s.function = s.scope.EnclosingFunction()
	if s.Value != nil {
		Resolve(s.Value, sink)
	}
}

func (s *ReturnStatement) infer(sink diagnostics.Sink) {
	c := s.scope.Catalog()
	var declared types.Type
	if s.function != nil {
		declared = s.function.ReturnType
	}
	t := types.Type(c.UnitRef())
	if s.Value != nil {
		s.Value.SetExpectedType(declared)
		Infer(s.Value, sink)
		t = s.Value.Type()
	}
	if s.function == nil {
		return
	}
	if declared != nil {
		loc := s.loc
		if s.Value != nil {
			loc = s.Value.Location()
		}
		checkAssignable(c, t, declared, loc, cascade(s.Value, sink))
		return
	}
	if t != nil {
		s.binder.returns[s.function] = append(s.binder.returns[s.function], c.Finalize(t))
	}
}

func (s *ReturnStatement) validate(sink diagnostics.Sink) {
	if s.Value == nil {
		return
	}
	var declared types.Type
	if s.function != nil {
		declared = s.function.ReturnType
	}
	s.Value.SetUsage(effects.CaptureAs(declared, s.loc))
	Validate(s.Value, sink)
}

// ThrowStatement raises a Throwable.
type ThrowStatement struct {
	nodeBase
	Value Expression
}

func (s *ThrowStatement) stmt()                                {}
func (s *ThrowStatement) Children() []Node                     { return []Node{s.Value} }
func (s *ThrowStatement) ThrowPrediction() effects.Prediction  { return effects.Guaranteed }
func (s *ThrowStatement) ReturnPrediction() effects.Prediction { return s.Value.ReturnPrediction() }

func (s *ThrowStatement) resolve(sink diagnostics.Sink) { Resolve(s.Value, sink) }

func (s *ThrowStatement) infer(sink diagnostics.Sink) {
	throwable := s.scope.Catalog().ThrowableRef()
	s.Value.SetExpectedType(throwable)
	Infer(s.Value, sink)
	if t := s.Value.Type(); t != nil && !types.IsAssignableTo(t, throwable) {
		sink.Add(diagnostics.NotThrowable(s.Value.Location(), t.String()))
	}
}

func (s *ThrowStatement) validate(sink diagnostics.Sink) {
	s.Value.SetUsage(effects.CaptureAs(s.scope.Catalog().ThrowableRef(), s.loc))
	Validate(s.Value, sink)
	if s.nothrow != nil {
		sink.Add(diagnostics.NothrowViolation(s.loc, "throw statement", s.nothrow.String()))
	}
}
