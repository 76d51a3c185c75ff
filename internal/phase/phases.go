package phase

import (
	"fmt"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
)

// BindingPhase tracks how far a bound node has been analyzed.
//
// Phase progression must be sequential:
// - NotStarted -> Resolved -> Inferred -> Validated
//
// Transitions are validated by Guard.Run, which checks that prerequisites
// are satisfied via the PhasePrerequisites map.
type BindingPhase int

const (
	PhaseNotStarted BindingPhase = iota // Node created from syntax
	PhaseResolved                       // Names bound to symbols
	PhaseInferred                       // Type computed, calls resolved
	PhaseValidated                      // Effect contracts checked
)

// PhasePrerequisites maps each phase to its required predecessor phase
var PhasePrerequisites = map[BindingPhase]BindingPhase{
	PhaseResolved:  PhaseNotStarted,
	PhaseInferred:  PhaseResolved,
	PhaseValidated: PhaseInferred,
}

func (p BindingPhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseResolved:
		return "Resolved"
	case PhaseInferred:
		return "Inferred"
	case PhaseValidated:
		return "Validated"
	default:
		return "Unknown"
	}
}

// OrderViolation is the panic value of a phase invoked out of order. It is
// always a compiler bug.
type OrderViolation struct {
	Node      string
	Requested BindingPhase
	Reached   BindingPhase
	Reentrant bool
}

func (e *OrderViolation) Error() string {
	if e.Reentrant {
		return fmt.Sprintf("phase %s of %s re-entered while running", e.Requested, e.Node)
	}
	return fmt.Sprintf("phase %s of %s requested, but the node only reached %s", e.Requested, e.Node, e.Reached)
}

type record struct {
	sink        diagnostics.Sink
	diagnostics []*diagnostics.Diagnostic
}

// Guard enforces the phase order of one node and makes phases idempotent.
// The zero value is ready to use.
type Guard struct {
	reached BindingPhase
	running BindingPhase
	records map[BindingPhase]*record
}

// Reached returns the last completed phase.
func (g *Guard) Reached() BindingPhase {
	return g.reached
}

// Run executes body as phase p. The first call runs body and records what it
// reports. Later calls do not run body again; they return the recorded
// diagnostics and replay them into sink when it is not the sink of the first
// call. node names the node in order violations.
func (g *Guard) Run(p BindingPhase, node string, sink diagnostics.Sink, body func(sink diagnostics.Sink)) []*diagnostics.Diagnostic {
	if rec, done := g.records[p]; done {
		if rec.sink != sink {
			for _, d := range rec.diagnostics {
				sink.Add(d)
			}
		}
		return rec.diagnostics
	}
	prerequisite, known := PhasePrerequisites[p]
	if !known {
		panic(&OrderViolation{Node: node, Requested: p, Reached: g.reached})
	}
	if g.running == p {
		panic(&OrderViolation{Node: node, Requested: p, Reached: g.reached, Reentrant: true})
	}
	if g.reached != prerequisite {
		panic(&OrderViolation{Node: node, Requested: p, Reached: g.reached})
	}

	recorder := &diagnostics.Recorder{Next: sink}
	g.running = p
	body(recorder)
	g.running = PhaseNotStarted

	if g.records == nil {
		g.records = make(map[BindingPhase]*record, len(PhasePrerequisites))
	}
	g.records[p] = &record{sink: sink, diagnostics: recorder.Recorded}
	g.reached = p
	return recorder.Recorded
}
