package overload

import (
	"golang.org/x/tools/container/intsets"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Result of resolving a call site.
type Result struct {
	// Function is the chosen candidate. It is set after an ambiguity too, as
	// a deterministic fallback; nil only when there was nothing to choose from.
	Function   *symbols.Function
	Evaluation *Evaluation
	// ReturnType is the declared return type with the bindings substituted,
	// nil when unknown.
	ReturnType types.Type
	// Ambiguous is set when Function is a fallback.
	Ambiguous bool
	// Evaluations holds all evaluated candidates in declaration order.
	Evaluations []*Evaluation
}

// Bindings of the chosen candidate, nil without one.
func (r *Result) Bindings() map[*types.TypeParameter]types.Type {
	if r.Evaluation == nil {
		return nil
	}
	return r.Evaluation.Bindings()
}

// Resolve picks the function cs invokes. All problems are reported to sink.
func Resolve(env Environment, cs *CallSite, sink diagnostics.Sink) *Result {
	gathered := Gather(env, cs)
	if len(gathered) == 0 {
		sink.Add(diagnostics.UnknownFunction(cs.Location, cs.Name))
		return &Result{}
	}

	candidates := filter(gathered, cs)
	if len(candidates) == 0 {
		sink.Add(diagnostics.NoMatchingOverload(cs.Location, cs.Name, cs.describeArguments(), describe(gathered)))
		return &Result{}
	}

	evals := make([]*Evaluation, len(candidates))
	for i, fn := range candidates {
		evals[i] = Evaluate(env.Catalog(), fn, cs)
	}
	result := &Result{Evaluations: evals}

	var viable []*Evaluation
	for _, e := range evals {
		if !e.HasErrors() {
			viable = append(viable, e)
		}
	}

	switch {
	case len(viable) == 1:
		result.accept(viable[0], sink)
	case len(viable) > 1:
		sink.Add(diagnostics.AmbiguousInvocation(cs.Location, cs.Name, describeEvaluations(viable)))
		result.Ambiguous = true
		result.accept(viable[0], sink)
	case len(evals) == 1:
		for _, d := range evals[0].Diagnostics {
			sink.Add(d)
		}
		result.accept(evals[0], sink)
	default:
		rescued := rescue(evals)
		if len(rescued) == 1 {
			for _, d := range rescued[0].Diagnostics {
				sink.Add(d)
			}
			result.accept(rescued[0], sink)
			break
		}
		sink.Add(diagnostics.NoMatchingOverload(cs.Location, cs.Name, cs.describeArguments(), describe(candidates)))
		result.Ambiguous = true
		result.accept(evals[0], sink)
	}
	return result
}

func (r *Result) accept(e *Evaluation, sink diagnostics.Sink) {
	r.Function = e.Candidate
	r.Evaluation = e
	r.ReturnType = e.State.Instantiate(e.Candidate.ResolvedReturnType(sink))
}

// rescue keeps the evaluations that failed only at positions where the
// candidates' parameter types overlap. A failure at a position where all
// candidates are disjoint rules the candidate out; one at an overlapping
// position may be a problem of the argument itself.
func rescue(evals []*Evaluation) []*Evaluation {
	disjoint := DisjointPositions(candidatesOf(evals))
	var kept []*Evaluation
	for _, e := range evals {
		if !e.FailedArguments.Intersects(disjoint) {
			kept = append(kept, e)
		}
	}
	return kept
}

// DisjointPositions returns the parameter positions (receiver first) at which
// the types of every pair of candidates are disjoint.
func DisjointPositions(candidates []*symbols.Function) *intsets.Sparse {
	result := &intsets.Sparse{}
	if len(candidates) < 2 {
		return result
	}
	arity := candidates[0].Arity()
	for i := 0; i < arity; i++ {
		if positionDisjoint(candidates, i) {
			result.Insert(i)
		}
	}
	return result
}

func positionDisjoint(candidates []*symbols.Function, i int) bool {
	for a := 0; a < len(candidates); a++ {
		for b := a + 1; b < len(candidates); b++ {
			pa, pb := candidates[a].AllParameters(), candidates[b].AllParameters()
			if i >= len(pa) || i >= len(pb) || pa[i].Type == nil || pb[i].Type == nil {
				return false
			}
			if !types.IsDisjoint(pa[i].Type, pb[i].Type) {
				return false
			}
		}
	}
	return true
}

func candidatesOf(evals []*Evaluation) []*symbols.Function {
	result := make([]*symbols.Function, len(evals))
	for i, e := range evals {
		result[i] = e.Candidate
	}
	return result
}

func describe(fns []*symbols.Function) []string {
	result := make([]string, len(fns))
	for i, fn := range fns {
		result[i] = fn.String()
	}
	return result
}

func describeEvaluations(evals []*Evaluation) []string {
	return describe(candidatesOf(evals))
}
