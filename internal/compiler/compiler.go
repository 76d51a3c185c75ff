package compiler

import (
	"sync"

	"github.com/emerge-lang/compiler-sub000/internal/context_v2"
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/phase"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/binding"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/source/spanindex"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
)

// Result of binding one compilation unit
type Result struct {
	Success bool
	Module  *context_v2.Module
	Unit    *binding.CompilationUnit
	// Spans maps source positions to the innermost bound node
	Spans *spanindex.Index[binding.Node]
}

// NodeAt returns the innermost bound node covering pos.
func (r *Result) NodeAt(pos source.Position) (binding.Node, bool) {
	return r.Spans.At(pos)
}

// Bind registers unit with ctx and runs all three binding phases on it.
// Diagnostics go to the module's own bag.
func Bind(ctx *context_v2.CompilerContext, unit *syntax.CompilationUnit) *Result {
	module := ctx.AddModule(unit)
	bound := binding.New(unit, module.Scope, binding.Options{Tracef: ctx.Tracef})
	sink := module.Diagnostics

	steps := []struct {
		phase phase.BindingPhase
		run   func(binding.Node, diagnostics.Sink) []*diagnostics.Diagnostic
	}{
		{phase.PhaseResolved, binding.Resolve},
		{phase.PhaseInferred, binding.Infer},
		{phase.PhaseValidated, binding.Validate},
	}
	for _, step := range steps {
		step.run(bound, sink)
		ctx.AdvanceModulePhase(module.Path, step.phase)
	}

	return &Result{
		Success: !sink.HasErrors(),
		Module:  module,
		Unit:    bound,
		Spans:   indexSpans(bound),
	}
}

// BindAll binds units concurrently. Every unit gets its own module scope and
// diagnostic bag; results are in input order.
func BindAll(ctx *context_v2.CompilerContext, units []*syntax.CompilationUnit) []*Result {
	results := make([]*Result, len(units))
	var wg sync.WaitGroup
	for i, unit := range units {
		wg.Add(1)
		go func(i int, unit *syntax.CompilationUnit) {
			defer wg.Done()
			results[i] = Bind(ctx, unit)
		}(i, unit)
	}
	wg.Wait()
	return results
}

// indexSpans registers every bound node by its location. Parents are visited
// before their children, so enclosing spans are added first.
func indexSpans(unit *binding.CompilationUnit) *spanindex.Index[binding.Node] {
	index := spanindex.New[binding.Node]()
	binding.Walk(unit, func(n binding.Node) bool {
		index.Add(n.Location(), n)
		return true
	})
	return index
}
