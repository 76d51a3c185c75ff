package diagnostics

import "fmt"

// Sink receives diagnostics. One sink belongs to one compilation pass.
type Sink interface {
	Add(diag *Diagnostic)
}

// InternalCompilerError is the panic value raised by FailOnErrorSink.
type InternalCompilerError struct {
	Diagnostic *Diagnostic
}

func (e *InternalCompilerError) Error() string {
	return fmt.Sprintf("internal compiler error: synthesized code is invalid: %s", e.Diagnostic)
}

// FailOnErrorSink is used for code the compiler synthesizes itself. Any
// error-level diagnostic is a compiler bug and panics with *InternalCompilerError.
// Other diagnostics go to Next, when set.
type FailOnErrorSink struct {
	Next Sink
}

func (s FailOnErrorSink) Add(diag *Diagnostic) {
	if diag.Severity.IsError() {
		panic(&InternalCompilerError{Diagnostic: diag})
	}
	if s.Next != nil {
		s.Next.Add(diag)
	}
}

// Recorder forwards to Next and remembers what passed through.
type Recorder struct {
	Next     Sink
	Recorded []*Diagnostic
}

func (r *Recorder) Add(diag *Diagnostic) {
	r.Recorded = append(r.Recorded, diag)
	if r.Next != nil {
		r.Next.Add(diag)
	}
}

// HasErrors reports whether an error-level diagnostic was recorded.
func (r *Recorder) HasErrors() bool {
	for _, d := range r.Recorded {
		if d.Severity.IsError() {
			return true
		}
	}
	return false
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(*Diagnostic) {}

// ConsecutiveSink demotes errors to Consecutive before passing them to Next.
// It wraps checks of values whose type an earlier error already made up.
type ConsecutiveSink struct {
	Next Sink
}

func (s ConsecutiveSink) Add(diag *Diagnostic) {
	s.Next.Add(diag.AsConsecutive())
}
