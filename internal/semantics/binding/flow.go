package binding

import (
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
)

// Walk visits n and every node below it, parents first. Returning false from
// visit skips the children of that node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// divergence predicts whether control leaves n other than by completing it
// normally. With jumps, break and continue count as leaving.
func divergence(n Node, jumps bool) effects.Prediction {
	switch n := n.(type) {
	case *ReturnStatement, *ThrowStatement:
		return effects.Guaranteed
	case *BreakStatement, *ContinueStatement:
		if jumps {
			return effects.Guaranteed
		}
		return effects.Never
	case *CodeChunk:
		p := effects.Never
		for _, s := range n.Statements {
			p = effects.Seq(p, divergence(s, jumps))
		}
		return p
	case *ExpressionStatement:
		return divergence(n.Expression, jumps)
	case *IfExpression:
		els := effects.Never
		if n.Else != nil {
			els = divergence(n.Else, jumps)
		}
		return effects.Seq(exits(n.Condition), effects.Branch(divergence(n.Then, jumps), els))
	case *WhileLoop:
		return effects.Seq(exits(n.Condition), effects.Optional(divergence(n.Body, false)))
	}
	return exits(n)
}

// exits predicts whether n leaves the enclosing function by returning or
// throwing.
func exits(n Node) effects.Prediction {
	return effects.Seq(n.ThrowPrediction(), n.ReturnPrediction())
}

// pushNothrow marks n and all nodes below it as bound by boundary.
func pushNothrow(n Node, boundary *effects.NothrowBoundary) {
	Walk(n, func(c Node) bool {
		c.base().nothrow = boundary
		return true
	})
}

// effectful is implemented by nodes that touch state on their own, apart
// from their children.
type effectful interface {
	sideEffects(boundary effects.SideEffectBoundary) []effects.Violation
}

// SideEffects collects the accesses to state outside boundary made by n and
// the nodes below it, in evaluation order.
func SideEffects(n Node, boundary effects.SideEffectBoundary) []effects.Violation {
	var result []effects.Violation
	Walk(n, func(c Node) bool {
		if e, ok := c.(effectful); ok {
			result = append(result, e.sideEffects(boundary)...)
		}
		return true
	})
	return result
}
