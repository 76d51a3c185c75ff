package table

import (
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Certainty of a flow fact at some point of the program.
type Certainty int

const (
	Not Certainty = iota
	Maybe
	Definitely
)

func (c Certainty) String() string {
	switch c {
	case Definitely:
		return "definitely"
	case Maybe:
		return "maybe"
	default:
		return "not"
	}
}

type eventKind int

const (
	eventInitialized eventKind = iota
	eventLifetimeEnded
)

type event struct {
	kind     eventKind
	variable *symbols.Variable
	seq      uint32
	end      *LifetimeEnd
}

// LifetimeEnd records where the value of a variable stopped being usable,
// e.g. because an exclusive reference was captured.
type LifetimeEnd struct {
	Seq      uint32
	Location *source.Location
	// Node is the bound node that ended the lifetime.
	Node any
}

// VariableState is the effect history of one variable at some point.
type VariableState struct {
	Initialized Certainty
	// Ended is set when the lifetime possibly ended and was not revived since.
	Ended *LifetimeEnd
}

// MarkInitialized records that v holds a value from here on.
func (st *SymbolTable) MarkInitialized(v *symbols.Variable) {
	st.events = append(st.events, event{kind: eventInitialized, variable: v, seq: st.NextSeq()})
}

// EndLifetime records that v must not be used from here on.
func (st *SymbolTable) EndLifetime(v *symbols.Variable, loc *source.Location, node any) *LifetimeEnd {
	end := &LifetimeEnd{Seq: st.NextSeq(), Location: loc, Node: node}
	st.events = append(st.events, event{kind: eventLifetimeEnded, variable: v, seq: end.Seq, end: end})
	return end
}

// State computes the effect history of v as visible from this scope. Events
// are inspected newest first; join scopes merge their branches.
func (st *SymbolTable) State(v *symbols.Variable) VariableState {
	var (
		state           VariableState
		lifetimeDecided bool
	)
	for s := st; s != nil; s = s.parent {
		for i := len(s.events) - 1; i >= 0; i-- {
			e := s.events[i]
			if e.variable != v {
				continue
			}
			switch e.kind {
			case eventInitialized:
				state.Initialized = Definitely
				lifetimeDecided = true
			case eventLifetimeEnded:
				if !lifetimeDecided {
					state.Ended = e.end
					lifetimeDecided = true
				}
			}
			if state.Initialized == Definitely && lifetimeDecided {
				return state
			}
		}

		if s.kind == ScopeJoin {
			joined := joinStates(s.branches, v)
			if state.Initialized != Definitely {
				state.Initialized = joined.Initialized
			}
			if !lifetimeDecided {
				state.Ended = joined.Ended
			}
			return state
		}
	}
	return state
}

// joinStates takes the intersection of definite facts and the union of
// possible ones.
func joinStates(branches []*SymbolTable, v *symbols.Variable) VariableState {
	var joined VariableState
	definitely, not := true, true
	for _, b := range branches {
		s := b.State(v)
		definitely = definitely && s.Initialized == Definitely
		not = not && s.Initialized == Not
		if s.Ended != nil && (joined.Ended == nil || s.Ended.Seq > joined.Ended.Seq) {
			joined.Ended = s.Ended
		}
	}
	switch {
	case len(branches) == 0 || not:
		joined.Initialized = Not
	case definitely:
		joined.Initialized = Definitely
	default:
		joined.Initialized = Maybe
	}
	return joined
}
