package overload

import (
	"golang.org/x/tools/container/intsets"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/unification"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Evaluation is the outcome of matching one candidate against one call site.
type Evaluation struct {
	Candidate   *symbols.Function
	State       *unification.State
	Diagnostics []*diagnostics.Diagnostic
	// FailedArguments holds the positions (receiver first) whose unification
	// reported errors.
	FailedArguments *intsets.Sparse
}

// HasErrors reports whether the candidate does not accept the call.
func (e *Evaluation) HasErrors() bool {
	for _, d := range e.Diagnostics {
		if d.Severity.IsError() {
			return true
		}
	}
	return false
}

// Bindings are the solved type parameters of the candidate.
func (e *Evaluation) Bindings() map[*types.TypeParameter]types.Type {
	return e.State.Bindings()
}

// ParameterType is the instantiated type of parameter i (receiver first).
func (e *Evaluation) ParameterType(i int) types.Type {
	params := e.Candidate.AllParameters()
	if i < 0 || i >= len(params) {
		return nil
	}
	return e.State.Instantiate(params[i].Type)
}

// Evaluate unifies the parameters of fn with the arguments of the call.
func Evaluate(c *types.Catalog, fn *symbols.Function, cs *CallSite) *Evaluation {
	eval := &Evaluation{
		Candidate:       fn,
		State:           unification.NewState(c, fn.InferenceVariables()),
		FailedArguments: &intsets.Sparse{},
	}

	if cs.ExplicitTypeArgs != nil {
		if len(cs.ExplicitTypeArgs) != len(fn.TypeParameters) {
			eval.Diagnostics = append(eval.Diagnostics, diagnostics.TypeArgumentCount(cs.Location, fn.Name, len(fn.TypeParameters), len(cs.ExplicitTypeArgs)))
		} else {
			for i, p := range fn.TypeParameters {
				eval.State = eval.State.WithExplicit(p, cs.ExplicitTypeArgs[i])
			}
		}
	}

	args := cs.all()
	for i, param := range fn.AllParameters() {
		if i >= len(args) || args[i] == nil || param.Type == nil {
			continue
		}
		state, diags := unification.Unify(args[i], param.Type, eval.State, cs.argumentLocation(i))
		eval.State = state
		if hasErrors(diags) {
			eval.FailedArguments.Insert(i)
		}
		eval.Diagnostics = append(eval.Diagnostics, diags...)
	}

	if cs.Expected != nil && fn.ReturnType != nil {
		// the expected type only refines the bindings; a mismatch is reported
		// by whoever consumes the result
		if state, diags := unification.Unify(fn.ReturnType, cs.Expected, eval.State, cs.Location); !hasErrors(diags) {
			eval.State = state
		}
	}
	return eval
}

func hasErrors(diags []*diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity.IsError() {
			return true
		}
	}
	return false
}
